package runtime

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/fatefinder/pkg/domain"
)

// StartInput moves Home to Input.
func (m *Machine) StartInput(ctx context.Context) (domain.Snapshot, error) {
	return m.fire(ctx, domain.TriggerStartInput, func(s *domain.NavigationState) {
		s.Validation = nil
	})
}

// Restart moves Result back to Input. The last result is retained.
func (m *Machine) Restart(ctx context.Context) (domain.Snapshot, error) {
	return m.fire(ctx, domain.TriggerRestart, func(s *domain.NavigationState) {
		s.Validation = nil
		s.PersistError = ""
	})
}

// Retry moves Error back to Home and clears the error.
func (m *Machine) Retry(ctx context.Context) (domain.Snapshot, error) {
	return m.fire(ctx, domain.TriggerRetry, func(s *domain.NavigationState) {
		s.LastError = ""
	})
}

// Submit validates form and, when valid, starts the fetch and moves to Loading.
// It returns once the Loading transition is applied; the outcome arrives through Subscribe.
// An invalid form stays on Input and returns the *domain.ValidationError.
func (m *Machine) Submit(ctx context.Context, form domain.Form) (domain.Snapshot, error) {
	if m.inFlight.Load() {
		snap, _ := m.Snapshot(ctx)
		return snap, domain.ErrRequestInFlight
	}

	var snap *domain.Snapshot
	err := m.do(ctx, func() error {
		defer func() { s := m.current(); snap = &s }()

		from := m.state.Screen
		if m.state.IsRequestInFlight {
			return domain.ErrRequestInFlight
		}
		to, ok := domain.Next(from, domain.TriggerSubmit)
		if !ok {
			return &domain.TransitionError{From: from, Trigger: domain.TriggerSubmit}
		}

		if form.Today == (domain.YearMonthDay{}) {
			form.Today = domain.DateOf(m.now())
		}
		req, err := form.Request()
		if err != nil {
			var ve *domain.ValidationError
			if errors.As(err, &ve) {
				v := *ve
				m.state.Validation = &v
				m.publish(from, domain.TriggerSubmit)
			}
			return err
		}

		m.state.Screen = to
		m.state.IsRequestInFlight = true
		m.state.Validation = nil
		m.state.PersistError = ""
		m.inFlight.Store(true)
		m.publish(from, domain.TriggerSubmit)
		m.startFetch(req)
		return nil
	})
	return m.settle(snap, err)
}

// Snapshot returns a copy of the current state. After Close it returns the
// last published state.
func (m *Machine) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := m.do(ctx, func() error {
		snap = m.current()
		return nil
	})
	if errors.Is(err, domain.ErrSessionClosed) {
		return m.lastSnapshot(), nil
	}
	return snap, err
}

// fire applies a user trigger according to domain.Transitions.
func (m *Machine) fire(ctx context.Context, trigger domain.Trigger, apply func(*domain.NavigationState)) (domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := m.do(ctx, func() error {
		defer func() { s := m.current(); snap = &s }()
		from := m.state.Screen
		to, ok := domain.Next(from, trigger)
		if !ok {
			return &domain.TransitionError{From: from, Trigger: trigger}
		}
		m.state.Screen = to
		apply(m.state)
		m.publish(from, trigger)
		return nil
	})
	return m.settle(snap, err)
}

// settle falls back to the last published snapshot when the command never ran.
func (m *Machine) settle(snap *domain.Snapshot, err error) (domain.Snapshot, error) {
	if snap == nil {
		return m.lastSnapshot(), err
	}
	return *snap, err
}

func (m *Machine) startFetch(req *domain.FortuneRequest) {
	m.emitFetchStart()
	m.logger.Info("fortune request started", "screen", m.state.Screen)

	go func() {
		ctx := m.ctx
		if m.fetchTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, m.fetchTimeout)
			defer cancel()
		}

		start := time.Now()
		res, err := m.fetcher.Fetch(ctx, req)
		out := fetchOutcome{result: res, err: err, duration: time.Since(start)}
		if err == nil && res == nil {
			out.err = &domain.FetchError{Op: "decode", Err: errors.New("empty result")}
		}

		select {
		case m.fetchDone <- out:
		case <-m.done:
		}
	}()
}

// completeFetch applies the fetch outcome on the loop goroutine.
func (m *Machine) completeFetch(out fetchOutcome) {
	m.emitFetchEnd(out)
	from := m.state.Screen
	m.state.IsRequestInFlight = false
	m.inFlight.Store(false)

	if out.err != nil {
		m.state.Screen = domain.ScreenError
		m.state.LastError = out.err.Error()
		m.logger.Warn("fortune request failed", "err", out.err, "duration", out.duration)
		m.publish(from, domain.TriggerFetchFailure)
		return
	}

	result := out.result.Clone()
	if m.store != nil {
		err := m.store.Save(m.ctx, domain.SavedResultsKey, result)
		m.emitPersist(err)
		if err != nil {
			m.state.PersistError = err.Error()
			m.logger.Error("failed to save result", "key", domain.SavedResultsKey, "err", err)
		}
	}

	m.state.LastResult = result
	m.state.LastError = ""
	m.state.Screen = domain.ScreenResult
	m.logger.Info("fortune received", "prefecture", result.Name, "duration", out.duration)
	m.publish(from, domain.TriggerFetchSuccess)
}
