package mdtransform

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func testSweeper(t *testing.T, now time.Time) *Sweeper {
	t.Helper()
	s := NewSweeper(t.TempDir(), "", slog.New(slog.NewTextHandler(os.Stderr, nil)))
	s.now = func() time.Time { return now }
	return s
}

func TestSweepRemovesYesterday(t *testing.T) {
	now := time.Date(2024, 6, 16, 1, 0, 0, 0, time.Local)
	s := testSweeper(t, now)

	yesterdayDirs := []string{
		"20240615-aaa",
		"20240615-aaa_out",
		"20240615-aaa_template",
	}
	todayDirs := []string{
		"20240616-bbb",
		"20240616-bbb_out",
	}
	for _, d := range append(append([]string{}, yesterdayDirs...), todayDirs...) {
		mustMkdir(t, filepath.Join(s.Root, d))
	}

	ledger := filepath.Join(s.Root, "uploaded_files_2024-06-15.txt")
	if err := os.WriteFile(ledger, []byte("20240615-aaa,doc.md\n"), 0o640); err != nil {
		t.Fatal(err)
	}
	todayLedger := filepath.Join(s.Root, "uploaded_files_2024-06-16.txt")
	if err := os.WriteFile(todayLedger, []byte("20240616-bbb,doc.md\n"), 0o640); err != nil {
		t.Fatal(err)
	}

	s.Sweep()

	for _, d := range yesterdayDirs {
		if _, err := os.Stat(filepath.Join(s.Root, d)); !os.IsNotExist(err) {
			t.Errorf("Sweep() kept expired dir %q", d)
		}
	}
	for _, d := range todayDirs {
		if _, err := os.Stat(filepath.Join(s.Root, d)); err != nil {
			t.Errorf("Sweep() removed live dir %q: %v", d, err)
		}
	}
	if _, err := os.Stat(ledger); !os.IsNotExist(err) {
		t.Error("Sweep() kept yesterday's ledger")
	}
	if _, err := os.Stat(todayLedger); err != nil {
		t.Errorf("Sweep() removed today's ledger: %v", err)
	}
}

func TestSweepIgnoresOtherDays(t *testing.T) {
	now := time.Date(2024, 6, 16, 1, 0, 0, 0, time.Local)
	s := testSweeper(t, now)

	// Two days old: left for the operator, the daily sweep only retires
	// yesterday.
	old := filepath.Join(s.Root, "20240610-old")
	mustMkdir(t, old)

	s.Sweep()

	if _, err := os.Stat(old); err != nil {
		t.Errorf("Sweep() removed out-of-window dir: %v", err)
	}
}

func TestSweepPrunesLogBackups(t *testing.T) {
	now := time.Date(2024, 6, 16, 1, 0, 0, 0, time.Local)
	s := testSweeper(t, now)
	s.LogDir = t.TempDir()
	s.LogMaxAgeDays = 7

	oldBackup := filepath.Join(s.LogDir, "upload-2024-06-01T10-00-00.000.log")
	freshBackup := filepath.Join(s.LogDir, "upload-2024-06-14T10-00-00.000.log")
	active := filepath.Join(s.LogDir, "upload.log")
	for _, f := range []string{oldBackup, freshBackup, active} {
		if err := os.WriteFile(f, []byte("x"), 0o640); err != nil {
			t.Fatal(err)
		}
	}

	s.Sweep()

	if _, err := os.Stat(oldBackup); !os.IsNotExist(err) {
		t.Error("Sweep() kept an expired log backup")
	}
	if _, err := os.Stat(freshBackup); err != nil {
		t.Errorf("Sweep() removed a fresh log backup: %v", err)
	}
	if _, err := os.Stat(active); err != nil {
		t.Errorf("Sweep() removed the active log file: %v", err)
	}
}

func TestSweeperRunFiresOncePerDay(t *testing.T) {
	var mu sync.Mutex
	current := time.Date(2024, 6, 16, 0, 59, 0, 0, time.Local)

	s := testSweeper(t, current)
	s.Interval = time.Millisecond
	s.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	target := filepath.Join(s.Root, "20240615-aaa")
	mustMkdir(t, target)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	// Not yet 01:00.
	time.Sleep(20 * time.Millisecond)
	if _, err := os.Stat(target); err != nil {
		t.Fatal("sweeper fired ahead of schedule")
	}

	mu.Lock()
	current = time.Date(2024, 6, 16, 1, 0, 0, 0, time.Local)
	mu.Unlock()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(target); os.IsNotExist(err) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("sweeper did not fire at the scheduled time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
