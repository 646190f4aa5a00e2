package middleware_test

import (
	"context"
	"crypto/rand"
	"errors"
	"io"
	"testing"

	"github.com/aretw0/fatefinder/pkg/adapters/memory"
	"github.com/aretw0/fatefinder/pkg/domain"
	"github.com/aretw0/fatefinder/pkg/persistence/middleware"
	"github.com/aretw0/fatefinder/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func secure(t *testing.T, next ports.ResultStore, cfg middleware.EncryptionConfig) ports.ResultStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw(next)
}

func toyama() *domain.FortuneResult {
	return &domain.FortuneResult{
		Name:         "富山県",
		Capital:      "富山市",
		CitizenDay:   &domain.MonthDay{Month: 5, Day: 9},
		HasCoastLine: true,
		LogoURL:      "https://example.com/toyama.png",
		Brief:        "富山県の概要",
	}
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	store := secure(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunResultStoreContract(t, store)
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	store := secure(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.SavedResultsKey, toyama()))

	raw, err := underlying.Load(ctx, domain.SavedResultsKey)
	require.NoError(t, err)
	assert.NotEqual(t, "富山県", raw.Name)
	assert.NotContains(t, raw.Brief, "富山")
	assert.Empty(t, raw.Capital)
	assert.Nil(t, raw.CitizenDay)

	loaded, err := store.Load(ctx, domain.SavedResultsKey)
	require.NoError(t, err)
	assert.Equal(t, toyama(), loaded)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	oldStore := secure(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey})
	require.NoError(t, oldStore.Save(ctx, domain.SavedResultsKey, toyama()))

	newStore := secure(t, underlying, middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})
	loaded, err := newStore.Load(ctx, domain.SavedResultsKey)
	require.NoError(t, err, "fallback key should decrypt")
	assert.Equal(t, "富山県", loaded.Name)

	require.NoError(t, newStore.Save(ctx, domain.SavedResultsKey, loaded))
	_, err = oldStore.Load(ctx, domain.SavedResultsKey)
	assert.Error(t, err, "old key alone must not decrypt new envelopes")
}

func TestEncryptionMiddleware_RejectsPlaintext(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, domain.SavedResultsKey, toyama()))

	store := secure(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	_, err := store.Load(ctx, domain.SavedResultsKey)
	assert.Error(t, err)
}

func TestEncryptionMiddleware_PropagatesBackendErrors(t *testing.T) {
	backend := new(MockStore)
	boom := errors.New("disk full")
	backend.On("Save", mock.Anything, domain.SavedResultsKey, mock.AnythingOfType("*domain.FortuneResult")).Return(boom)
	backend.On("Load", mock.Anything, domain.SavedResultsKey).Return(nil, domain.ErrResultNotFound)
	backend.On("Delete", mock.Anything, domain.SavedResultsKey).Return(nil)

	store := secure(t, backend, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	assert.ErrorIs(t, store.Save(ctx, domain.SavedResultsKey, toyama()), boom)
	_, err := store.Load(ctx, domain.SavedResultsKey)
	assert.ErrorIs(t, err, domain.ErrResultNotFound)
	assert.NoError(t, store.Delete(ctx, domain.SavedResultsKey))
	backend.AssertExpectations(t)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.Error(t, err)
}

func TestDeriveKey(t *testing.T) {
	a, err := middleware.DeriveKey("correct horse battery staple")
	require.NoError(t, err)
	assert.Len(t, a, 32)

	b, err := middleware.DeriveKey("correct horse battery staple")
	require.NoError(t, err)
	assert.Equal(t, a, b, "derivation must be deterministic")

	_, err = middleware.DeriveKey("")
	assert.Error(t, err)
}

func TestChain_Order(t *testing.T) {
	var calls []string
	tag := func(name string) middleware.Middleware {
		return func(next ports.ResultStore) ports.ResultStore {
			return recordingStore{ResultStore: next, name: name, calls: &calls}
		}
	}
	store := middleware.Chain(memory.NewStore(), tag("outer"), tag("inner"))
	require.NoError(t, store.Save(context.Background(), "k", toyama()))
	assert.Equal(t, []string{"outer", "inner"}, calls)
}

type recordingStore struct {
	ports.ResultStore
	name  string
	calls *[]string
}

func (r recordingStore) Save(ctx context.Context, key string, result *domain.FortuneResult) error {
	*r.calls = append(*r.calls, r.name)
	return r.ResultStore.Save(ctx, key, result)
}
