// Package flock guards a forja project against two writers. `forja run`
// and `forja serve` hold the project lock while they can change files, so
// a second writer fails fast instead of overwriting the saved snapshot.
//
//	lock, err := flock.Acquire(".forja/forja.lock")
//	if err != nil {
//	    return err // errors.ErrProjectLocked when another process holds it
//	}
//	defer lock.Release()
package flock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/mrz1836/forja/internal/errors"
)

// Lock is a held project lock.
type Lock struct {
	file *os.File
	once sync.Once
}

// Acquire creates path if needed and takes an exclusive, non-blocking lock
// on it. The holder's pid is written into the file for diagnostics.
// Returns errors.ErrProjectLocked when another process holds the lock.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600) //nolint:gosec // project-relative path
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := lockFile(f.Fd()); err != nil {
		holder := readHolder(f)
		_ = f.Close()
		if holder != "" {
			return nil, errors.Wrapf(errors.ErrProjectLocked, "held by pid %s", holder)
		}
		return nil, errors.ErrProjectLocked
	}

	if err := f.Truncate(0); err == nil {
		_, _ = f.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0)
	}
	return &Lock{file: f}, nil
}

// Release unlocks and closes the lock file. Safe to call more than once.
func (l *Lock) Release() error {
	var err error
	l.once.Do(func() {
		if uerr := unlockFile(l.file.Fd()); uerr != nil {
			err = uerr
		}
		if cerr := l.file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	})
	return err
}

func readHolder(f *os.File) string {
	buf := make([]byte, 32)
	n, _ := f.ReadAt(buf, 0)
	return strings.TrimSpace(string(buf[:n]))
}
