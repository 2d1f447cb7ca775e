package mdtransform

import (
	"testing"
)

func TestFilenameCacheRecordLookup(t *testing.T) {
	c := newFilenameCache(testLedger(t))

	c.record("20240615-aaa", "report.md")

	got, found := c.lookup("20240615-aaa")
	if !found || got != "report.md" {
		t.Errorf("lookup() = %q, %v, want %q, true", got, found, "report.md")
	}
}

func TestFilenameCacheLedgerFallback(t *testing.T) {
	l := testLedger(t)
	c := newFilenameCache(l)

	// Recorded through the ledger directly, bypassing the memo. The cache
	// must fall through and backfill.
	l.Record("20240615-aaa", "report.md")

	got, found := c.lookup("20240615-aaa")
	if !found || got != "report.md" {
		t.Fatalf("lookup() = %q, %v, want %q, true", got, found, "report.md")
	}

	if _, ok := c.mem.Get("20240615-aaa"); !ok {
		t.Error("lookup() did not backfill the memo")
	}
}

func TestFilenameCacheInvalidate(t *testing.T) {
	c := newFilenameCache(testLedger(t))

	c.record("20240615-aaa", "report.md")
	c.invalidate("20240615-aaa")

	if _, ok := c.mem.Get("20240615-aaa"); ok {
		t.Error("invalidate() left the memo entry in place")
	}

	// The ledger record survives: the daily sweep owns durable retirement.
	got, found := c.lookup("20240615-aaa")
	if !found || got != "report.md" {
		t.Errorf("lookup() after invalidate = %q, %v, want ledger fallback", got, found)
	}
}

func TestFilenameCacheMiss(t *testing.T) {
	c := newFilenameCache(testLedger(t))

	if _, found := c.lookup("20240615-zzz"); found {
		t.Error("lookup() on unknown token found = true, want false")
	}
}
