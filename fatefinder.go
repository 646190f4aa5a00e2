package fatefinder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/fatefinder/internal/logging"
	"github.com/aretw0/fatefinder/internal/runtime"
	"github.com/aretw0/fatefinder/pkg/adapters/memory"
	"github.com/aretw0/fatefinder/pkg/client"
	"github.com/aretw0/fatefinder/pkg/domain"
	"github.com/aretw0/fatefinder/pkg/ports"
)

// Session is the entry point for presentations.
// It wraps one navigation machine together with its fetcher and result store.
type Session struct {
	machine *runtime.Machine
	fetcher ports.FortuneFetcher
	store   ports.ResultStore
	hooks   domain.LifecycleHooks
	logger  *slog.Logger

	id           string
	endpoint     string
	fetchTimeout time.Duration
	clock        func() time.Time
}

// Option defines a functional option for configuring the Session.
type Option func(*Session)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithFetcher injects the fortune fetcher, bypassing the default HTTP client.
func WithFetcher(f ports.FortuneFetcher) Option {
	return func(s *Session) {
		s.fetcher = f
	}
}

// WithEndpoint points the default HTTP client at another fortune API.
func WithEndpoint(url string) Option {
	return func(s *Session) {
		s.endpoint = url
	}
}

// WithStore sets where the latest result is saved. Defaults to memory.
func WithStore(store ports.ResultStore) Option {
	return func(s *Session) {
		s.store = store
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Session) {
		s.hooks = s.hooks.Merge(hooks)
	}
}

// WithSessionID labels snapshots, events and log lines.
func WithSessionID(id string) Option {
	return func(s *Session) {
		s.id = id
	}
}

// WithFetchTimeout bounds each fetch on top of the client's own timeout.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.fetchTimeout = d
	}
}

// WithClock replaces time.Now for defaulting today's date.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.clock = now
	}
}

// New starts a session on the Home screen.
func New(opts ...Option) (*Session, error) {
	s := &Session{}
	for _, opt := range opts {
		opt(s)
	}
	if s.fetchTimeout < 0 {
		return nil, fmt.Errorf("fetch timeout must not be negative: %s", s.fetchTimeout)
	}

	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.fetcher == nil {
		s.fetcher = client.New(s.endpoint, client.WithLogger(s.logger))
	}
	if s.store == nil {
		s.store = memory.NewStore()
	}

	s.machine = runtime.NewMachine(s.fetcher, s.store,
		runtime.WithLogger(s.logger),
		runtime.WithLifecycleHooks(s.hooks),
		runtime.WithSessionID(s.id),
		runtime.WithFetchTimeout(s.fetchTimeout),
		runtime.WithClock(s.clock),
	)
	return s, nil
}

// ID returns the session identifier, possibly empty.
func (s *Session) ID() string {
	return s.id
}

// StartInput moves from Home to Input.
func (s *Session) StartInput(ctx context.Context) (domain.Snapshot, error) {
	return s.machine.StartInput(ctx)
}

// Submit validates the form and starts the fortune request.
// The Result or Error screen is delivered through Subscribe.
func (s *Session) Submit(ctx context.Context, form domain.Form) (domain.Snapshot, error) {
	return s.machine.Submit(ctx, form)
}

// Restart returns from Result to Input, keeping the last result.
func (s *Session) Restart(ctx context.Context) (domain.Snapshot, error) {
	return s.machine.Restart(ctx)
}

// Retry returns from Error to Home.
func (s *Session) Retry(ctx context.Context) (domain.Snapshot, error) {
	return s.machine.Retry(ctx)
}

// Snapshot returns a copy of the current navigation state.
func (s *Session) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	return s.machine.Snapshot(ctx)
}

// Subscribe streams snapshots, starting with the current one.
func (s *Session) Subscribe() (<-chan domain.Snapshot, func()) {
	return s.machine.Subscribe()
}

// InFlight reports whether a fortune request is outstanding.
func (s *Session) InFlight() bool {
	return s.machine.InFlight()
}

// SavedResult loads the most recently persisted result.
func (s *Session) SavedResult(ctx context.Context) (*domain.FortuneResult, error) {
	return s.store.Load(ctx, domain.SavedResultsKey)
}

// Done is closed when the session has stopped.
func (s *Session) Done() <-chan struct{} {
	return s.machine.Done()
}

// Close stops the session. It does not close the store.
func (s *Session) Close() error {
	return s.machine.Close()
}
