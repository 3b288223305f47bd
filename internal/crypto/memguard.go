//go:build linux || darwin

package crypto

import "golang.org/x/sys/unix"

// LockMemory keeps b out of swap. Callers treat failure as non-fatal.
func LockMemory(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Mlock(b)
}

func UnlockMemory(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Munlock(b)
}
