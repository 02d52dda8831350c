// Package lock provides a filesystem-based mutual-exclusion token so two
// mailsync instances never run against the same directory concurrently.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrHeld is returned by Acquire when another instance already holds the
// lock for this directory.
var ErrHeld = errors.New("lock: another instance is already running against this directory")

// Lock is an acquired directory lock. The zero value is not usable; obtain
// one via Acquire.
type Lock struct {
	path string
}

// Acquire creates "<dir>/lock" as an atomic mutual-exclusion token.
// Acquire fails with ErrHeld if the directory already exists.
func Acquire(dir string) (*Lock, error) {
	path := filepath.Join(dir, "lock")
	if err := os.Mkdir(path, 0700); err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, ErrHeld
		}
		return nil, fmt.Errorf("lock: %w", err)
	}
	return &Lock{path: path}, nil
}

// Release removes the lock directory. Safe to call once; callers
// typically defer it immediately after a successful Acquire.
func (l *Lock) Release() error {
	if err := os.Remove(l.path); err != nil {
		return fmt.Errorf("lock: release: %w", err)
	}
	return nil
}
