// Package session owns the process-wide authenticated session.
//
// The in-memory record is swapped atomically, so readers never observe a
// mix of old and new fields. Every change is written to the durable mirror
// before it becomes visible.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dtroode/ats-client/internal/apierr"
	"github.com/dtroode/ats-client/internal/logger"
	"github.com/dtroode/ats-client/internal/model"
)

// Listener receives the session after every change.
type Listener func(model.Session)

// Option configures a Manager.
type Option func(*Manager)

// WithExpiryReader lets Restore drop mirrored sessions whose token expired.
func WithExpiryReader(r model.ExpiryReader) Option {
	return func(m *Manager) {
		m.expiry = r
	}
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// Manager holds the current session and keeps its durable mirror in sync.
type Manager struct {
	store  model.SessionStore
	expiry model.ExpiryReader
	now    func() time.Time
	logger *logger.Logger

	current atomic.Pointer[model.Session]

	// writeMu serializes persist+swap so the mirror and memory agree.
	writeMu sync.Mutex

	listenersMu sync.RWMutex
	listeners   map[int]Listener
	nextID      int
}

// NewManager creates a Manager with an empty session. Call Restore to load
// the mirrored one.
func NewManager(store model.SessionStore, logger *logger.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		now:       time.Now,
		logger:    logger,
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.current.Store(&model.Session{})
	return m
}

// Snapshot returns a copy of the current session.
func (m *Manager) Snapshot() model.Session {
	return *m.current.Load()
}

// AuthToken returns the bearer token of the current session.
func (m *Manager) AuthToken() string {
	return m.current.Load().Token
}

// Authenticated reports whether a session is present.
func (m *Manager) Authenticated() bool {
	return m.current.Load().Complete()
}

// Replace installs s as the current session. All four fields must be set.
// The mirror is written first; if that fails the in-memory session is left
// untouched.
func (m *Manager) Replace(ctx context.Context, s model.Session) error {
	if !s.Complete() {
		return apierr.NewValidationError("session", "token, user id, email and name are required")
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if err := m.store.Save(ctx, s); err != nil {
		m.logger.Error("Session: failed to persist session", "error", err.Error())
		return fmt.Errorf("failed to persist session: %w", err)
	}
	m.current.Store(&s)
	m.notify(s)
	return nil
}

// Clear removes the session from memory and from the mirror.
func (m *Manager) Clear(ctx context.Context) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error("Session: failed to clear mirror", "error", err.Error())
		return fmt.Errorf("failed to clear session: %w", err)
	}
	m.current.Store(&model.Session{})
	m.notify(model.Session{})
	return nil
}

// Restore loads the mirrored session. Partial records and records with an
// expired token are treated as absent and removed from the mirror.
func (m *Manager) Restore(ctx context.Context) (model.Session, error) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	s, err := m.store.Load(ctx)
	if errors.Is(err, model.ErrNotFound) {
		return model.Session{}, nil
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	if s.Empty() {
		return model.Session{}, nil
	}

	if reason := m.stale(s); reason != "" {
		m.logger.Warn("Session: discarding mirrored session", "reason", reason)
		if err := m.store.Clear(ctx); err != nil {
			return model.Session{}, fmt.Errorf("failed to clear stale session: %w", err)
		}
		return model.Session{}, nil
	}

	m.current.Store(&s)
	m.notify(s)
	return s, nil
}

func (m *Manager) stale(s model.Session) string {
	if !s.Complete() {
		return "incomplete"
	}
	if m.expiry == nil {
		return ""
	}
	if exp, ok := m.expiry.ExpiresAt(s.Token); ok && !m.now().Before(exp) {
		return "expired"
	}
	return ""
}

// Subscribe registers fn for session changes and returns a function that
// removes it.
func (m *Manager) Subscribe(fn Listener) func() {
	m.listenersMu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.listenersMu.Unlock()

	return func() {
		m.listenersMu.Lock()
		delete(m.listeners, id)
		m.listenersMu.Unlock()
	}
}

func (m *Manager) notify(s model.Session) {
	m.listenersMu.RLock()
	defer m.listenersMu.RUnlock()
	for _, fn := range m.listeners {
		fn(s)
	}
}
