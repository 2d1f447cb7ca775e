package mdtransform

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache entries live one retention window; expired entries are purged
// hourly. Values are only ever backfilled from the ledger, so expiry is a
// memory bound, not a correctness mechanism.
const (
	cacheTTL   = 24 * time.Hour
	cachePurge = 1 * time.Hour
)

// filenameCache is a best-effort in-memory memoization layer in front of
// the durable ledger. It is invalidated by restart and never consulted as
// a source of truth: every miss falls through to the ledger, and hits are
// only values the ledger produced earlier in this process's lifetime.
type filenameCache struct {
	mem    *gocache.Cache
	ledger *Ledger
}

func newFilenameCache(ledger *Ledger) *filenameCache {
	return &filenameCache{
		mem:    gocache.New(cacheTTL, cachePurge),
		ledger: ledger,
	}
}

// record persists the pair durably and memoizes it.
func (c *filenameCache) record(token, filename string) {
	c.ledger.Record(token, filename)
	c.mem.Set(token, filename, gocache.DefaultExpiration)
}

// lookup consults the memo first, then the ledger, backfilling on a hit.
func (c *filenameCache) lookup(token string) (string, bool) {
	if v, ok := c.mem.Get(token); ok {
		if name, ok := v.(string); ok {
			return name, true
		}
	}
	name, ok := c.ledger.Lookup(token)
	if ok {
		c.mem.Set(token, name, gocache.DefaultExpiration)
	}
	return name, ok
}

// invalidate drops the memo entry (explicit cleanup path).
func (c *filenameCache) invalidate(token string) {
	c.mem.Delete(token)
}
