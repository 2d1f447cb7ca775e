package mdtransform

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/LoserCoderLi/markdown-transform/internal/logutil"
)

// Sweeper retires expired sessions once a day: every directory triple
// whose token carries yesterday's date prefix, yesterday's ledger file,
// and rotated log backups past their age limit. Today's sessions are never
// touched, so a document uploaded just before midnight stays downloadable
// until the following sweep.
type Sweeper struct {
	// Root is the data root holding session directories and ledgers.
	Root string
	// LogDir holds the rotated log streams; empty disables log pruning.
	LogDir string
	// LogMaxAgeDays bounds how long rotated log backups are kept.
	LogMaxAgeDays int
	// At is the local wall-clock time of the daily sweep, "15:04" form.
	At string
	// Interval is how often the clock is checked. Zero means one minute.
	Interval time.Duration

	Logger *slog.Logger

	now func() time.Time
}

// NewSweeper creates a sweeper with the default 01:00 schedule.
func NewSweeper(root, logDir string, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		Root:          root,
		LogDir:        logDir,
		LogMaxAgeDays: 7,
		At:            "01:00",
		Logger:        logger,
		now:           time.Now,
	}
}

// Run blocks, firing Sweep once per day at the configured time, until ctx
// is canceled. A sweep that errors is logged and retried the next day.
func (s *Sweeper) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastFired string
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := s.now()
			day := now.Format("2006-01-02")
			if now.Format("15:04") != s.At || day == lastFired {
				continue
			}
			lastFired = day
			s.Sweep()
		}
	}
}

// Sweep removes yesterday's sessions and ledger, then prunes old log
// backups. Each item is independent: one failure is logged and the rest of
// the sweep continues.
func (s *Sweeper) Sweep() {
	yesterday := s.now().AddDate(0, 0, -1)
	prefix := yesterday.Format(tokenDateLayout)

	entries, err := os.ReadDir(s.Root)
	if err != nil {
		s.Logger.Error("sweep: reading data root", "error", err)
		return
	}

	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		path := filepath.Join(s.Root, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			s.Logger.Error("sweep: removing session dir", "dir", entry.Name(), "error", err)
			continue
		}
		removed++
	}

	ledgerPath := filepath.Join(s.Root, "uploaded_files_"+yesterday.Format(ledgerDateLayout)+".txt")
	if err := os.Remove(ledgerPath); err != nil && !os.IsNotExist(err) {
		s.Logger.Error("sweep: removing ledger", "path", ledgerPath, "error", err)
	}

	s.pruneLogs()
	s.Logger.Info("sweep finished", "day", prefix, "removed", removed)
}

// pruneLogs deletes rotated log backups older than LogMaxAgeDays. Active
// log files carry no rotation stamp and are skipped.
func (s *Sweeper) pruneLogs() {
	if s.LogDir == "" || s.LogMaxAgeDays <= 0 {
		return
	}
	cutoff := s.now().AddDate(0, 0, -s.LogMaxAgeDays)

	entries, err := os.ReadDir(s.LogDir)
	if err != nil {
		s.Logger.Error("sweep: reading log dir", "error", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		stamp, ok := logutil.BackupTime(entry.Name())
		if !ok || !stamp.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.LogDir, entry.Name())); err != nil {
			s.Logger.Error("sweep: removing log backup", "file", entry.Name(), "error", err)
		}
	}
}
