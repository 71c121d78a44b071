package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/aretw0/easel/internal/logging"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/aretw0/easel/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed editor can keep a diagram's edit
// lock before another replica may take over.
const DefaultLockTTL = 15 * time.Minute

// Manager drives the edit-session lifecycle for one diagram: open, save,
// cancel, resume. It implements ports.EditSource, so the interaction layer
// consults it on every pointer sample and observes closes mid-gesture.
//
// At most one session is current per Manager. With a distributed locker
// configured, opening also acquires the diagram's edit lock, serializing
// editors across replicas.
type Manager struct {
	diagramID string
	store     ports.SessionStore

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	current *domain.EditSession
	unlock  ports.UnlockFunc // Releases the edit lock when the session closes
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking of the diagram while a session is
// open.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides the edit lock's expiry.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a session Manager for the given diagram backed by the
// persistence store.
func NewManager(diagramID string, store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		diagramID: diagramID,
		store:     store,
		lockTTL:   DefaultLockTTL,
		logger:    logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CurrentSession returns a copy of the session the engine is operating
// under, or nil when none has been opened. Implements ports.EditSource.
func (m *Manager) CurrentSession(ctx context.Context) (*domain.EditSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil, nil
	}
	ret := *m.current
	return &ret, nil
}

// EditingActive reports whether an open session is current.
func (m *Manager) EditingActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.Active()
}

// Open starts a fresh edit session. It fails with domain.ErrSessionActive
// while another session is open, and with ports.ErrLockHeld when a fail-fast
// locker reports the diagram already being edited elsewhere.
func (m *Manager) Open(ctx context.Context, name, note string) (*domain.EditSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.Active() {
		return nil, domain.ErrSessionActive
	}

	unlock, err := m.acquire(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sess := &domain.EditSession{
		ID:        ulid.Make().String(),
		Name:      name,
		Note:      note,
		Status:    domain.EditSessionOpen,
		DiagramID: m.diagramID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.Save(ctx, sess); err != nil {
		m.release(ctx, unlock)
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	m.current = sess
	m.unlock = unlock
	m.logger.Info("edit session opened", "session_id", sess.ID, "name", name)

	ret := *sess
	return &ret, nil
}

// Save closes the current session as saved and releases the edit lock. The
// session stays current (inactive) so callers can still read its ID.
func (m *Manager) Save(ctx context.Context) (*domain.EditSession, error) {
	return m.transition(ctx, domain.EditSessionSaved)
}

// Cancel closes the current session as canceled and releases the edit lock.
func (m *Manager) Cancel(ctx context.Context) (*domain.EditSession, error) {
	return m.transition(ctx, domain.EditSessionCanceled)
}

func (m *Manager) transition(ctx context.Context, status domain.EditSessionStatus) (*domain.EditSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.current.Active() {
		return nil, domain.ErrNoEditSession
	}
	m.current.Status = status
	m.current.UpdatedAt = time.Now().UTC()
	if err := m.store.Save(ctx, m.current); err != nil {
		// Roll the status back so a retry is possible.
		m.current.Status = domain.EditSessionOpen
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	m.release(ctx, m.unlock)
	m.unlock = nil
	m.logger.Info("edit session closed", "session_id", m.current.ID, "status", status)

	ret := *m.current
	return &ret, nil
}

// Resume reopens a stored session under its original ID. Saved sessions can
// be resumed; canceled ones cannot.
func (m *Manager) Resume(ctx context.Context, id string) (*domain.EditSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.Active() {
		return nil, domain.ErrSessionActive
	}

	sess, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status == domain.EditSessionCanceled {
		return nil, fmt.Errorf("session %q was canceled: %w", id, domain.ErrSessionClosed)
	}

	unlock, err := m.acquire(ctx)
	if err != nil {
		return nil, err
	}

	sess.Status = domain.EditSessionOpen
	sess.UpdatedAt = time.Now().UTC()
	if err := m.store.Save(ctx, sess); err != nil {
		m.release(ctx, unlock)
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	m.current = sess
	m.unlock = unlock
	m.logger.Info("edit session resumed", "session_id", sess.ID)

	ret := *sess
	return &ret, nil
}

// List loads every stored session, oldest first.
func (m *Manager) List(ctx context.Context) ([]*domain.EditSession, error) {
	ids, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	sessions := make([]*domain.EditSession, 0, len(ids))
	for _, id := range ids {
		sess, err := m.store.Load(ctx, id)
		if err != nil {
			// Expired between List and Load.
			m.logger.Warn("skipping unloadable session", "session_id", id, "err", err)
			continue
		}
		sessions = append(sessions, sess)
	}
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
	return sessions, nil
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// acquire takes the diagram's edit lock. Lockers that support TryLock fail
// fast with ports.ErrLockHeld; plain lockers block until the context gives
// up. Callers already hold m.mu.
func (m *Manager) acquire(ctx context.Context) (ports.UnlockFunc, error) {
	if m.locker == nil {
		return nil, nil
	}
	key := lockKey(m.diagramID)
	if tl, ok := m.locker.(ports.TryLocker); ok {
		unlock, err := tl.TryLock(ctx, key, m.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("diagram %q: %w", m.diagramID, err)
		}
		return unlock, nil
	}
	unlock, err := m.locker.Lock(ctx, key, m.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("diagram %q: %w", m.diagramID, err)
	}
	return unlock, nil
}

func (m *Manager) release(ctx context.Context, unlock ports.UnlockFunc) {
	if unlock == nil {
		return
	}
	if err := unlock(ctx); err != nil {
		m.logger.Warn("failed to release edit lock (will expire via TTL)",
			"diagram_id", m.diagramID,
			"err", err,
		)
	}
}

func lockKey(diagramID string) string {
	return "edit:" + diagramID
}
