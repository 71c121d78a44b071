package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/aretw0/easel/pkg/ports"
)

// Locker implements ports.DistributedLocker within a single process. It
// mirrors the redis locker's semantics (TTL expiry, token-checked release)
// so code exercised against it behaves the same in production.
type Locker struct {
	mu    sync.Mutex
	held  map[string]lockEntry
	token uint64
}

type lockEntry struct {
	token  string
	expiry time.Time
}

// NewLocker creates an in-process locker.
func NewLocker() *Locker {
	return &Locker{held: make(map[string]lockEntry)}
}

// Lock acquires the key, waiting until it frees up, its TTL lapses, or the
// context ends.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		unlock, err := l.TryLock(ctx, key, ttl)
		if err == nil {
			return unlock, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// TryLock attempts a single acquisition and returns ports.ErrLockHeld when
// the key is already held.
func (l *Locker) TryLock(_ context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	token, ok := l.tryAcquire(key, ttl)
	if !ok {
		return nil, ports.ErrLockHeld
	}
	return func(context.Context) error {
		l.release(key, token)
		return nil
	}, nil
}

func (l *Locker) tryAcquire(key string, ttl time.Duration) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.held[key]; ok && time.Now().Before(e.expiry) {
		return "", false
	}
	l.token++
	token := strconv.FormatUint(l.token, 10)
	l.held[key] = lockEntry{token: token, expiry: time.Now().Add(ttl)}
	return token, true
}

// release only drops the lock if the token still matches, so an unlock
// arriving after expiry cannot free a lock someone else re-acquired.
func (l *Locker) release(key, token string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.held[key]; ok && e.token == token {
		delete(l.held, key)
	}
}
