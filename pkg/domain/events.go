package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTransition EventType = "transition"
	EventFetchStart EventType = "fetch_start"
	EventFetchEnd   EventType = "fetch_end"
	EventPersist    EventType = "persist"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// TransitionEvent is emitted after the state machine changes screen.
type TransitionEvent struct {
	EventBase
	From    Screen  `json:"from"`
	To      Screen  `json:"to"`
	Trigger Trigger `json:"trigger"`
}

// FetchEvent is emitted around a fortune fetch.
type FetchEvent struct {
	EventBase
	Duration time.Duration `json:"duration,omitempty"`
	Err      error         `json:"-"`
}

// PersistEvent is emitted after the result store write.
type PersistEvent struct {
	EventBase
	Key string `json:"key"`
	Err error  `json:"-"`
}

// LifecycleHooks defines callbacks for state machine observability.
// Hooks run on the session's event loop and must not block.
type LifecycleHooks struct {
	OnTransition func(context.Context, *TransitionEvent)
	OnFetchStart func(context.Context, *FetchEvent)
	OnFetchEnd   func(context.Context, *FetchEvent)
	OnPersist    func(context.Context, *PersistEvent)
}

// Merge chains two hook sets; h runs before other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTransition: chain(h.OnTransition, other.OnTransition),
		OnFetchStart: chain(h.OnFetchStart, other.OnFetchStart),
		OnFetchEnd:   chain(h.OnFetchEnd, other.OnFetchEnd),
		OnPersist:    chain(h.OnPersist, other.OnPersist),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
