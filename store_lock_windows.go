//go:build windows

package mdtransform

import (
	"os"
	"sync"
)

// Windows lacks flock semantics over os.File without LockFileEx plumbing,
// so the ledger falls back to a process-wide mutex (shared access degrades
// to exclusive). This protects concurrent requests within one process
// only; multi-process deployments on Windows are not supported.
var ledgerMu sync.Mutex

func lockExclusive(_ *os.File) error {
	ledgerMu.Lock()
	return nil
}

func lockShared(_ *os.File) error {
	ledgerMu.Lock()
	return nil
}

func unlock(_ *os.File) {
	ledgerMu.Unlock()
}
