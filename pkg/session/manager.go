package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/fatefinder"
	"github.com/aretw0/fatefinder/internal/logging"
	"github.com/aretw0/fatefinder/pkg/domain"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// DefaultIdleTTL is how long an untouched session survives a prune.
const DefaultIdleTTL = 30 * time.Minute

// Factory builds the session for a freshly allocated ID.
type Factory func(id string) (*fatefinder.Session, error)

// DefaultFactory creates sessions with the given options plus the ID.
func DefaultFactory(opts ...fatefinder.Option) Factory {
	return func(id string) (*fatefinder.Session, error) {
		all := append(append([]fatefinder.Option{}, opts...), fatefinder.WithSessionID(id))
		return fatefinder.New(all...)
	}
}

type entry struct {
	sess       *fatefinder.Session
	lastAccess time.Time
}

// Manager maps session IDs to live sessions.
// Safe for concurrent use.
type Manager struct {
	factory Factory
	idleTTL time.Duration
	now     func() time.Time
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[string]*entry
	cron     *cron.Cron
	closed   bool
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithIdleTTL sets the idle time after which the janitor closes a session.
func WithIdleTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.idleTTL = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates an empty registry.
func NewManager(factory Factory, opts ...Option) *Manager {
	m := &Manager{
		factory:  factory,
		idleTTL:  DefaultIdleTTL,
		now:      time.Now,
		logger:   logging.NewNop(),
		sessions: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create allocates an ID and starts a session on the Home screen.
// It fails with domain.ErrSessionClosed once the Manager is closed.
func (m *Manager) Create(ctx context.Context) (*fatefinder.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	id := uuid.NewString()
	sess, err := m.factory(id)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		_ = sess.Close()
		return nil, domain.ErrSessionClosed
	}
	m.sessions[id] = &entry{sess: sess, lastAccess: m.now()}
	m.mu.Unlock()

	m.logger.Debug("session created", "session_id", id)
	return sess, nil
}

// Get returns a live session and marks it as used.
func (m *Manager) Get(id string) (*fatefinder.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	e.lastAccess = m.now()
	return e.sess, nil
}

// Delete closes and forgets a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return domain.ErrSessionNotFound
	}
	m.logger.Debug("session deleted", "session_id", id)
	return e.sess.Close()
}

// List returns the live session IDs in lexical order.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Prune closes sessions idle for longer than idle. Sessions waiting on the
// fortune API are kept. It returns the number of sessions removed.
func (m *Manager) Prune(idle time.Duration) int {
	cutoff := m.now().Add(-idle)

	m.mu.Lock()
	var stale []*entry
	for id, e := range m.sessions {
		if e.lastAccess.Before(cutoff) && !e.sess.InFlight() {
			stale = append(stale, e)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, e := range stale {
		if err := e.sess.Close(); err != nil {
			m.logger.Warn("failed to close idle session", "session_id", e.sess.ID(), "err", err)
		}
	}
	if len(stale) > 0 {
		m.logger.Info("pruned idle sessions", "count", len(stale))
	}
	return len(stale)
}

// StartJanitor prunes idle sessions on a cron schedule such as "@every 1m".
func (m *Manager) StartJanitor(schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { m.Prune(m.idleTTL) }); err != nil {
		return fmt.Errorf("register janitor: %w", err)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return domain.ErrSessionClosed
	}
	if m.cron != nil {
		m.mu.Unlock()
		return fmt.Errorf("janitor already running")
	}
	m.cron = c
	m.mu.Unlock()

	c.Start()
	m.logger.Debug("session janitor started", "schedule", schedule, "idle_ttl", m.idleTTL)
	return nil
}

// Close stops the janitor and closes every session.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.closed = true
	c := m.cron
	m.cron = nil
	all := m.sessions
	m.sessions = make(map[string]*entry)
	m.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
	for _, e := range all {
		_ = e.sess.Close()
	}
	return nil
}
