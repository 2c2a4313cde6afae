// Package lock provides the single cross-process lock that serializes
// all compound accesses to shared cache state: entry checks and
// inserts, statistics and configuration mutation, and eviction.
//
// Concurrency here is multi-process (parallel build drivers invoking
// the cache at once), not multi-thread, so an in-process mutex is not
// enough; the lock is a file lock on cache.lock inside the cache root.
package lock

import (
	"context"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	cerrors "github.com/jonastr/clcache/pkg/errors"
)

// FileName is the lock file inside the cache root. Its content is
// irrelevant; only the lock on it matters.
const FileName = "cache.lock"

const (
	// DefaultTimeout bounds how long an invocation waits for the cache
	// before giving up; parallel builds hold the lock only briefly.
	DefaultTimeout = 2 * time.Second

	retryInterval = 50 * time.Millisecond
)

// Lock is the named cache lock. The zero value is not usable; call New.
type Lock struct {
	fl *flock.Flock

	// Timeout may be lowered in tests.
	Timeout time.Duration
}

// New returns the lock guarding the cache rooted at dir.
func New(dir string) *Lock {
	return &Lock{
		fl:      flock.New(filepath.Join(dir, FileName)),
		Timeout: DefaultTimeout,
	}
}

// Acquire takes the lock, retrying until the timeout elapses. On
// success it returns a release function that must be called on every
// exit path; on timeout it returns a LOCK_TIMEOUT error and the caller
// must not touch shared state.
func (l *Lock) Acquire(ctx context.Context) (func(), error) {
	ctx, cancel := context.WithTimeout(ctx, l.Timeout)
	defer cancel()

	ok, err := l.fl.TryLockContext(ctx, retryInterval)
	if err != nil || !ok {
		return nil, cerrors.Wrap(cerrors.CodeLockTimeout,
			"cache lock not acquired within "+l.Timeout.String(), err)
	}
	return func() { _ = l.fl.Unlock() }, nil
}
