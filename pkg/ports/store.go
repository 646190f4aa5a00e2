package ports

import (
	"context"

	"github.com/aretw0/fatefinder/pkg/domain"
)

// ResultStore persists fortune results under a key.
// Each key holds at most one value; Save overwrites (last write wins).
type ResultStore interface {
	// Save persists the result under key, replacing any previous value.
	Save(ctx context.Context, key string, result *domain.FortuneResult) error

	// Load retrieves the result stored under key.
	// Returns domain.ErrResultNotFound if nothing is stored.
	Load(ctx context.Context, key string) (*domain.FortuneResult, error)

	// Delete removes the value under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
