// Package runtime implements the navigation state machine that drives the
// five screens from the outcome of a single fortune fetch.
package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/fatefinder/internal/logging"
	"github.com/aretw0/fatefinder/pkg/domain"
	"github.com/aretw0/fatefinder/pkg/ports"
	"go.uber.org/atomic"
)

// DefaultSubscriberBuffer is the capacity of each Subscribe channel.
const DefaultSubscriberBuffer = 16

// Machine owns one NavigationState. All mutations happen on its event loop.
type Machine struct {
	sessionID    string
	fetcher      ports.FortuneFetcher
	store        ports.ResultStore
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	fetchTimeout time.Duration
	subBuffer    int
	now          func() time.Time

	ctx       context.Context
	cancel    context.CancelFunc
	cmds      chan func()
	fetchDone chan fetchOutcome
	done      chan struct{}
	closeOnce sync.Once

	inFlight *atomic.Bool

	// lastMu guards last, the most recently published snapshot.
	lastMu sync.RWMutex
	last   domain.Snapshot

	// Loop-owned.
	state   *domain.NavigationState
	version uint64
	subs    map[int]chan domain.Snapshot
	nextSub int
}

type fetchOutcome struct {
	result   *domain.FortuneResult
	err      error
	duration time.Duration
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(h domain.LifecycleHooks) Option {
	return func(m *Machine) {
		m.hooks = m.hooks.Merge(h)
	}
}

// WithSessionID tags snapshots, events and logs.
func WithSessionID(id string) Option {
	return func(m *Machine) {
		m.sessionID = id
	}
}

// WithFetchTimeout bounds each fetch. Zero leaves the fetcher's own timeout in charge.
func WithFetchTimeout(d time.Duration) Option {
	return func(m *Machine) {
		m.fetchTimeout = d
	}
}

// WithSubscriberBuffer sets the per-subscriber channel capacity.
func WithSubscriberBuffer(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.subBuffer = n
		}
	}
}

// WithClock replaces time.Now, used to default a form's today field.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMachine starts a machine on Home. A nil store disables persistence.
// Call Close to stop its event loop.
func NewMachine(fetcher ports.FortuneFetcher, store ports.ResultStore, opts ...Option) *Machine {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Machine{
		fetcher:   fetcher,
		store:     store,
		logger:    logging.NewNop(),
		subBuffer: DefaultSubscriberBuffer,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
		cmds:      make(chan func()),
		fetchDone: make(chan fetchOutcome),
		done:      make(chan struct{}),
		inFlight:  atomic.NewBool(false),
		state:     domain.NewNavigationState(),
		subs:      make(map[int]chan domain.Snapshot),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("session_id", m.sessionID)
	m.last = m.state.Snapshot(m.sessionID, m.version)

	go m.loop()
	return m
}

// SessionID returns the identifier the machine was created with.
func (m *Machine) SessionID() string {
	return m.sessionID
}

// InFlight reports whether a fetch is outstanding without a loop round trip.
func (m *Machine) InFlight() bool {
	return m.inFlight.Load()
}

// Done is closed once the event loop has stopped.
func (m *Machine) Done() <-chan struct{} {
	return m.done
}

// Close stops the event loop and closes all subscriber channels.
// An outstanding fetch finishes without side effects.
func (m *Machine) Close() error {
	m.closeOnce.Do(func() {
		m.cancel()
	})
	<-m.done
	return nil
}

func (m *Machine) loop() {
	defer close(m.done)
	for {
		select {
		case cmd := <-m.cmds:
			cmd()
		case out := <-m.fetchDone:
			m.completeFetch(out)
		case <-m.ctx.Done():
			for id, ch := range m.subs {
				close(ch)
				delete(m.subs, id)
			}
			m.inFlight.Store(false)
			m.logger.Debug("machine stopped")
			return
		}
	}
}

// do runs fn on the event loop and waits for its result.
func (m *Machine) do(ctx context.Context, fn func() error) error {
	errc := make(chan error, 1)
	select {
	case m.cmds <- func() { errc <- fn() }:
	case <-m.done:
		return domain.ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	// The loop accepted the command and runs it to completion.
	return <-errc
}
