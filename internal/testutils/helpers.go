// Package testutils holds fixtures shared by package tests.
package testutils

import (
	"context"
	"testing"

	"github.com/aretw0/fatefinder"
	"github.com/aretw0/fatefinder/pkg/adapters/memory"
	"github.com/aretw0/fatefinder/pkg/domain"
	"github.com/aretw0/fatefinder/pkg/ports"
	"github.com/stretchr/testify/require"
)

// Toyama returns the prefecture from the public API's documented example.
func Toyama() *domain.FortuneResult {
	return &domain.FortuneResult{
		Name:         "富山県",
		Capital:      "富山市",
		HasCoastLine: true,
		LogoURL:      "https://japan-map.com/wp-content/uploads/toyama.png",
		Brief:        "富山県の概要",
	}
}

// FixedFetcher answers every request with a copy of res.
func FixedFetcher(res *domain.FortuneResult) ports.FortuneFetcher {
	return ports.FetcherFunc(func(ctx context.Context, req *domain.FortuneRequest) (*domain.FortuneResult, error) {
		return res.Clone(), nil
	})
}

// FailingFetcher fails every request with an HTTP status error.
func FailingFetcher(code int) ports.FortuneFetcher {
	return ports.FetcherFunc(func(ctx context.Context, req *domain.FortuneRequest) (*domain.FortuneResult, error) {
		return nil, &domain.FetchError{Op: "status", Err: &domain.StatusError{Code: code}}
	})
}

// NewSession starts a session on a fresh memory store and closes it with the test.
func NewSession(t *testing.T, fetcher ports.FortuneFetcher, opts ...fatefinder.Option) (*fatefinder.Session, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	all := append([]fatefinder.Option{fatefinder.WithFetcher(fetcher), fatefinder.WithStore(store)}, opts...)
	sess, err := fatefinder.New(all...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })
	return sess, store
}
