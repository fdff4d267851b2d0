//go:build unix

package flock

import "syscall"

// lockFile takes an exclusive lock on fd without blocking.
func lockFile(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_EX|syscall.LOCK_NB) //nolint:gosec // fd fits in int
}

// unlockFile releases the lock on fd.
func unlockFile(fd uintptr) error {
	return syscall.Flock(int(fd), syscall.LOCK_UN) //nolint:gosec // fd fits in int
}
