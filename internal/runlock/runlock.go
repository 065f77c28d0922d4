// Package runlock guards an output directory against concurrent batch runs
// with an advisory file lock.
package runlock

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrHeld is returned when another process holds the lock.
var ErrHeld = errors.New("another swextract run holds the lock")

// Lock is an acquired run lock.
type Lock struct {
	path string
	lock *flock.Flock
}

// Acquire takes the lock at path without blocking.
func Acquire(path string) (*Lock, error) {
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHeld, path)
	}
	return &Lock{path: path, lock: lock}, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }

// Release unlocks. The lock file itself is left in place.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	return l.lock.Unlock()
}
