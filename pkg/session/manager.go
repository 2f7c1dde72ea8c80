package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/historyviewer/internal/logging"
	"github.com/aretw0/historyviewer/pkg/domain"
	"github.com/aretw0/historyviewer/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.SelectionStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
	streams *Broadcaster
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the lease of distributed locks.
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

// WithHooks registers observability hooks fired after each action.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.SelectionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.streams = NewBroadcaster(m.logger)
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Load retrieves an existing selection from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.CompareSelection, error) {
	var sel *domain.CompareSelection
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		sel, err = m.store.Load(ctx, sessionID)
		return err
	})
	return sel, err
}

// Selection returns the session's snapshot, or an idle selection for an
// unknown session.
func (m *Manager) Selection(ctx context.Context, sessionID string) (domain.CompareSelection, error) {
	sel, err := m.store.Load(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return domain.CompareSelection{}, nil
	}
	if err != nil {
		return domain.CompareSelection{}, err
	}
	return *sel, nil
}

// Dispatch applies actions to the session's selection in order and persists
// the result. A session that does not exist yet starts idle.
func (m *Manager) Dispatch(ctx context.Context, sessionID string, actions ...domain.Action) (domain.CompareSelection, error) {
	var (
		prev *domain.CompareSelection
		next domain.CompareSelection
	)

	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		loaded, err := m.store.Load(ctx, sessionID)
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			loaded = nil
		case err != nil:
			return fmt.Errorf("failed to load selection: %w", err)
		}

		var current domain.CompareSelection
		if loaded != nil {
			current = *loaded
		}
		prev = loaded
		next = current
		for _, a := range actions {
			next = domain.Reduce(next, a)
			m.fireAction(ctx, sessionID, a, next)
		}

		if err := m.store.Save(ctx, sessionID, &next); err != nil {
			return fmt.Errorf("failed to save selection: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.CompareSelection{}, err
	}

	if delta := domain.DiffSelection(sessionID, prev, next); delta != nil {
		m.logger.Debug("selection changed", "session_id", sessionID, "phase", next.Phase())
		m.streams.Broadcast(sessionID, Update{Selection: next, Delta: delta})
	}
	return next, nil
}

func (m *Manager) fireAction(ctx context.Context, sessionID string, a domain.Action, next domain.CompareSelection) {
	if m.hooks.OnAction == nil {
		return
	}
	m.hooks.OnAction(ctx, &domain.ActionEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventAction},
		SessionID: sessionID,
		Action:    a.Type(),
		Selection: next,
	})
}

// Subscribe streams every selection change of a session until cancel is called.
func (m *Manager) Subscribe(sessionID string) (<-chan Update, func()) {
	return m.streams.Subscribe(sessionID)
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying selection store.
func (m *Manager) Store() ports.SelectionStore {
	return m.store
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
