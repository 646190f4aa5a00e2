package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/fatefinder/pkg/domain"
)

// LogHooks writes one structured line per lifecycle event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.InfoContext(ctx, "transition",
				"session_id", e.SessionID,
				"from", e.From,
				"to", e.To,
				"trigger", e.Trigger)
		},
		OnFetchEnd: func(ctx context.Context, e *domain.FetchEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "fetch_end", "session_id", e.SessionID, "duration", e.Duration, "err", e.Err)
				return
			}
			logger.InfoContext(ctx, "fetch_end", "session_id", e.SessionID, "duration", e.Duration)
		},
		OnPersist: func(ctx context.Context, e *domain.PersistEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "persist", "session_id", e.SessionID, "key", e.Key, "err", e.Err)
			}
		},
	}
}
