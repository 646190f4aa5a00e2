package observability

import (
	"context"

	"github.com/aretw0/fatefinder/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors fed by LifecycleHooks.
type Metrics struct {
	Transitions   *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	InFlight      prometheus.Gauge
	Persists      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fatefinder_transitions_total",
				Help: "Screen transitions by origin, destination and trigger",
			},
			[]string{"from", "to", "trigger"},
		),
		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fatefinder_fetch_duration_seconds",
				Help:    "Duration of fortune API calls",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fatefinder_fetches_in_flight",
			Help: "Fortune requests currently outstanding",
		}),
		Persists: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fatefinder_result_saves_total",
				Help: "Result store writes by outcome",
			},
			[]string{"outcome"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Transitions, m.FetchDuration, m.InFlight, m.Persists)
	}
	return m
}

// Hooks binds the collectors to session events.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			m.Transitions.WithLabelValues(string(e.From), string(e.To), string(e.Trigger)).Inc()
		},
		OnFetchStart: func(context.Context, *domain.FetchEvent) {
			m.InFlight.Inc()
		},
		OnFetchEnd: func(_ context.Context, e *domain.FetchEvent) {
			m.InFlight.Dec()
			m.FetchDuration.WithLabelValues(outcome(e.Err)).Observe(e.Duration.Seconds())
		},
		OnPersist: func(_ context.Context, e *domain.PersistEvent) {
			m.Persists.WithLabelValues(outcome(e.Err)).Inc()
		},
	}
}

func outcome(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
