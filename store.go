package mdtransform

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ledgerDateLayout names one ledger file per calendar day.
const ledgerDateLayout = "2006-01-02"

// Ledger is the durable, day-scoped record of token→source-filename pairs.
// It is an append-only flat file guarded by advisory locks: writers hold an
// exclusive lock for the duration of an append, readers a shared lock for
// the duration of a scan, so no record is ever partially visible. The file
// is authoritative across process restarts; daily rotation bounds its size
// and gives the retention sweeper a natural deletion unit.
//
// Crash-safety is whatever the filesystem's append semantics guarantee,
// nothing more.
type Ledger struct {
	// Dir is the directory holding the ledger files (the data root).
	Dir string
	// Logger receives append/scan failures; they are never propagated.
	Logger *slog.Logger

	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

// NewLedger creates a ledger rooted at dir.
func NewLedger(dir string, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{Dir: dir, Logger: logger, now: time.Now}
}

// Path returns the ledger file for the given day.
func (l *Ledger) Path(day time.Time) string {
	return filepath.Join(l.Dir, "uploaded_files_"+day.Format(ledgerDateLayout)+".txt")
}

// Record appends one token,filename line to the current day's ledger under
// an exclusive lock. Failures are logged, not returned: a failed record
// means later lookups for the token report not-found.
func (l *Ledger) Record(token, filename string) {
	if err := l.record(token, filename); err != nil {
		l.Logger.Error("ledger record failed", "token", token, "error", err)
	}
}

func (l *Ledger) record(token, filename string) error {
	f, err := os.OpenFile(l.Path(l.now()), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	if err := lockExclusive(f); err != nil {
		return fmt.Errorf("locking ledger: %w", err)
	}
	defer unlock(f)

	if _, err := fmt.Fprintf(f, "%s,%s\n", token, filename); err != nil {
		return fmt.Errorf("appending record: %w", err)
	}
	return nil
}

// Remove drops every record for token from its day's ledger, rewriting
// the file in place under the exclusive lock. A missing ledger is fine;
// other failures are logged, not returned, matching Record's posture.
func (l *Ledger) Remove(token string) {
	if err := l.remove(token); err != nil {
		l.Logger.Error("ledger remove failed", "token", token, "error", err)
	}
}

func (l *Ledger) remove(token string) error {
	day, err := TokenDate(token)
	if err != nil {
		day = l.now()
	}

	f, err := os.OpenFile(l.Path(day), os.O_RDWR, 0o640)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	if err := lockExclusive(f); err != nil {
		return fmt.Errorf("locking ledger: %w", err)
	}
	defer unlock(f)

	var kept strings.Builder
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		recToken, _, ok := strings.Cut(strings.TrimSpace(line), ",")
		if ok && recToken == token {
			continue
		}
		kept.WriteString(line)
		kept.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanning ledger: %w", err)
	}

	if err := f.Truncate(0); err != nil {
		return fmt.Errorf("truncating ledger: %w", err)
	}
	if _, err := f.WriteAt([]byte(kept.String()), 0); err != nil {
		return fmt.Errorf("rewriting ledger: %w", err)
	}
	return nil
}

// Lookup scans the current day's ledger under a shared lock for the first
// record matching token. A missing ledger, malformed lines, and I/O errors
// all fold into not-found (logged, non-fatal).
func (l *Ledger) Lookup(token string) (string, bool) {
	f, err := os.Open(l.Path(l.now()))
	if err != nil {
		if !os.IsNotExist(err) {
			l.Logger.Error("ledger open failed", "error", err)
		}
		return "", false
	}
	defer f.Close()

	if err := lockShared(f); err != nil {
		l.Logger.Error("ledger shared lock failed", "error", err)
		return "", false
	}
	defer unlock(f)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		recToken, filename, ok := strings.Cut(strings.TrimSpace(scanner.Text()), ",")
		if !ok {
			continue
		}
		if recToken == token {
			return filename, true
		}
	}
	if err := scanner.Err(); err != nil {
		l.Logger.Error("ledger scan failed", "error", err)
	}
	return "", false
}
