package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/fatefinder/pkg/domain"
)

// Subscribe returns a channel of snapshots, starting with the current one.
// The channel is closed by cancel or by Close. A subscriber that falls behind
// misses snapshots instead of blocking the machine.
func (m *Machine) Subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, m.subBuffer)
	id := -1
	err := m.do(context.Background(), func() error {
		id = m.nextSub
		m.nextSub++
		m.subs[id] = ch
		ch <- m.current()
		return nil
	})
	if err != nil {
		close(ch)
		return ch, func() {}
	}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			_ = m.do(context.Background(), func() error {
				if c, ok := m.subs[id]; ok {
					delete(m.subs, id)
					close(c)
				}
				return nil
			})
		})
	}
	return ch, cancel
}

func (m *Machine) current() domain.Snapshot {
	return m.state.Snapshot(m.sessionID, m.version)
}

func (m *Machine) lastSnapshot() domain.Snapshot {
	m.lastMu.RLock()
	defer m.lastMu.RUnlock()
	return m.last
}

// publish bumps the version, checks invariants, fires the transition hook
// and fans the new snapshot out to subscribers.
func (m *Machine) publish(from domain.Screen, trigger domain.Trigger) {
	m.version++
	if err := m.state.CheckInvariants(); err != nil {
		m.logger.Error("navigation state is inconsistent", "err", err, "screen", m.state.Screen)
	}

	to := m.state.Screen
	if from != to {
		m.logger.Debug("screen changed", "from", from, "to", to, "trigger", trigger)
	}
	if m.hooks.OnTransition != nil {
		m.hooks.OnTransition(m.ctx, &domain.TransitionEvent{
			EventBase: m.base(domain.EventTransition),
			From:      from,
			To:        to,
			Trigger:   trigger,
		})
	}

	snap := m.current()
	m.lastMu.Lock()
	m.last = snap
	m.lastMu.Unlock()

	for id, ch := range m.subs {
		select {
		case ch <- snap:
		default:
			m.logger.Warn("subscriber is not keeping up, snapshot skipped", "subscriber", id, "version", snap.Version)
		}
	}
}

func (m *Machine) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp: time.Now(),
		Type:      t,
		SessionID: m.sessionID,
	}
}

func (m *Machine) emitFetchStart() {
	if m.hooks.OnFetchStart != nil {
		m.hooks.OnFetchStart(m.ctx, &domain.FetchEvent{EventBase: m.base(domain.EventFetchStart)})
	}
}

func (m *Machine) emitFetchEnd(out fetchOutcome) {
	if m.hooks.OnFetchEnd != nil {
		m.hooks.OnFetchEnd(m.ctx, &domain.FetchEvent{
			EventBase: m.base(domain.EventFetchEnd),
			Duration:  out.duration,
			Err:       out.err,
		})
	}
}

func (m *Machine) emitPersist(err error) {
	if m.hooks.OnPersist != nil {
		m.hooks.OnPersist(m.ctx, &domain.PersistEvent{
			EventBase: m.base(domain.EventPersist),
			Key:       domain.SavedResultsKey,
			Err:       err,
		})
	}
}
