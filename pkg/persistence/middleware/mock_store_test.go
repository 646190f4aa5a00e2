package middleware_test

import (
	"context"

	"github.com/aretw0/fatefinder/pkg/domain"
	"github.com/aretw0/fatefinder/pkg/ports"
	"github.com/stretchr/testify/mock"
)

// MockStore records calls so tests can assert what reached the backend.
type MockStore struct {
	mock.Mock
}

func (s *MockStore) Save(ctx context.Context, key string, result *domain.FortuneResult) error {
	args := s.Called(ctx, key, result)
	return args.Error(0)
}

func (s *MockStore) Load(ctx context.Context, key string) (*domain.FortuneResult, error) {
	args := s.Called(ctx, key)
	res, _ := args.Get(0).(*domain.FortuneResult)
	return res, args.Error(1)
}

func (s *MockStore) Delete(ctx context.Context, key string) error {
	args := s.Called(ctx, key)
	return args.Error(0)
}

var _ ports.ResultStore = (*MockStore)(nil)
