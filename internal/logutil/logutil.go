// Package logutil builds the per-stream rotating loggers used across the
// service: one size-rotated JSON log file per concern (upload, convert,
// download, sweep), with a console fallback when no log directory is set.
package logutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation bounds per log stream.
const (
	MaxSizeMB  = 1 // rotate at ~1MB
	MaxBackups = 5
)

// backupStampLayout is the timestamp lumberjack embeds in rotated backup
// filenames, e.g. "convert-2025-01-01T01-00-00.000.log".
const backupStampLayout = "2006-01-02T15-04-05.000"

// NewStream returns a logger for one named stream. With a non-empty dir the
// stream writes JSON lines to dir/<name>.log, rotated by size with a bounded
// number of backups; otherwise it logs text to stderr.
func NewStream(dir, name string) *slog.Logger {
	if dir == "" {
		h := slog.NewTextHandler(os.Stderr, nil)
		return slog.New(h).With("stream", name)
	}
	w := &lumberjack.Logger{
		Filename:   filepath.Join(dir, name+".log"),
		MaxSize:    MaxSizeMB,
		MaxBackups: MaxBackups,
	}
	return slog.New(slog.NewJSONHandler(w, nil))
}

// BackupTime parses the rotation timestamp out of a rotated backup
// filename. Returns false for active log files and foreign names.
func BackupTime(filename string) (time.Time, bool) {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	// The stamp contains '-' separators of its own, so locate it by length
	// from the end rather than splitting on '-'.
	if len(base) < len(backupStampLayout)+1 {
		return time.Time{}, false
	}
	stamp := base[len(base)-len(backupStampLayout):]
	t, err := time.ParseInLocation(backupStampLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
