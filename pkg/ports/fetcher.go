package ports

import (
	"context"

	"github.com/aretw0/fatefinder/pkg/domain"
)

// FortuneFetcher performs a single fortune request.
// Every failure is reported as a *domain.FetchError.
type FortuneFetcher interface {
	Fetch(ctx context.Context, req *domain.FortuneRequest) (*domain.FortuneResult, error)
}

// FetcherFunc adapts a plain function to FortuneFetcher.
type FetcherFunc func(ctx context.Context, req *domain.FortuneRequest) (*domain.FortuneResult, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, req *domain.FortuneRequest) (*domain.FortuneResult, error) {
	return f(ctx, req)
}
