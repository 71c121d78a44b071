package ports

import (
	"context"
	"errors"
	"time"
)

// ErrLockHeld is returned by TryLock when the key is already held.
var ErrLockHeld = errors.New("lock already held")

// UnlockFunc releases a held lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker defines the interface for distributed concurrency
// control. The session manager uses it to serialize edit-session mutations
// for one diagram across multiple engine instances (replicas).
type DistributedLocker interface {
	// Lock acquires the lock for the given key (e.g. a session ID). It
	// blocks until acquired or the context is canceled; the TTL bounds how
	// long a crashed holder can keep the lock. The returned UnlockFunc MUST
	// be called to release it.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}

// TryLocker is an optional capability of a DistributedLocker: a single
// acquisition attempt that returns ErrLockHeld instead of waiting.
// Consumers discover it by type assertion.
type TryLocker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
