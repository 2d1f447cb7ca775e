//go:build !windows

package mdtransform

import (
	"os"

	"golang.org/x/sys/unix"
)

// Advisory flock wrappers for the ledger file. Blocking acquisition is
// intentional: appends and scans are short, and contention only arises
// between concurrent requests on the same day's ledger.

func lockExclusive(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX)
}

func lockShared(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_SH)
}

func unlock(f *os.File) {
	_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
