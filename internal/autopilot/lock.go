package autopilot

import (
	"fmt"

	"github.com/gofrs/flock"

	"audiopilot/internal/services"
)

// ErrCycleInProgress reports that another process holds the library lock.
var ErrCycleInProgress = fmt.Errorf("%w: autopilot cycle already running", services.ErrConflict)

// CycleLock serializes cycles for one library across processes.
type CycleLock struct {
	path string
	lock *flock.Flock
}

// NewCycleLock prepares a lock backed by the file at path.
func NewCycleLock(path string) *CycleLock {
	return &CycleLock{path: path, lock: flock.New(path)}
}

// Path returns the lock file location.
func (l *CycleLock) Path() string {
	return l.path
}

// Acquire takes the lock without waiting.
func (l *CycleLock) Acquire() error {
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrCycleInProgress
	}
	return nil
}

// Release drops the lock. Releasing an unheld lock is a no-op.
func (l *CycleLock) Release() error {
	return l.lock.Unlock()
}
