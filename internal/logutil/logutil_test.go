package logutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewStreamWritesJSON(t *testing.T) {
	dir := t.TempDir()

	logger := NewStream(dir, "convert")
	logger.Info("conversion finished", "token", "20240615-abc", "format", "pdf")

	data, err := os.ReadFile(filepath.Join(dir, "convert.log"))
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, data)
	}
	if entry["msg"] != "conversion finished" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["token"] != "20240615-abc" {
		t.Errorf("token = %v", entry["token"])
	}
}

func TestNewStreamStderrFallback(t *testing.T) {
	// Must not panic or create files anywhere.
	logger := NewStream("", "upload")
	logger.Info("hello")
}

func TestBackupTime(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     time.Time
		wantOK   bool
	}{
		{
			name:     "rotated backup",
			filename: "convert-2024-06-01T10-30-00.000.log",
			want:     time.Date(2024, 6, 1, 10, 30, 0, 0, time.Local),
			wantOK:   true,
		},
		{
			name:     "active log file",
			filename: "convert.log",
			wantOK:   false,
		},
		{
			name:     "foreign file",
			filename: "notes.txt",
			wantOK:   false,
		},
		{
			name:     "stamp-length garbage",
			filename: "x-abcd-ef-ghTij-kl-mn.opq.log",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BackupTime(tt.filename)
			if ok != tt.wantOK {
				t.Fatalf("BackupTime(%q) ok = %v, want %v", tt.filename, ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("BackupTime(%q) = %v, want %v", tt.filename, got, tt.want)
			}
		})
	}
}
