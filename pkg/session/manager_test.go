package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/fatefinder"
	"github.com/aretw0/fatefinder/pkg/adapters/memory"
	"github.com/aretw0/fatefinder/pkg/domain"
	"github.com/aretw0/fatefinder/pkg/ports"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stubFetcher = ports.FetcherFunc(func(ctx context.Context, req *domain.FortuneRequest) (*domain.FortuneResult, error) {
	return &domain.FortuneResult{Name: "富山県", Capital: "富山市", LogoURL: "https://example.com/t.png"}, nil
})

func newTestManager(opts ...Option) *Manager {
	return NewManager(DefaultFactory(
		fatefinder.WithFetcher(stubFetcher),
		fatefinder.WithStore(memory.NewStore()),
	), opts...)
}

func TestManager_CreateGetDelete(t *testing.T) {
	mgr := newTestManager()
	defer mgr.Close()
	ctx := context.Background()

	sess, err := mgr.Create(ctx)
	require.NoError(t, err)
	_, err = uuid.Parse(sess.ID())
	assert.NoError(t, err, "session IDs are UUIDs")

	got, err := mgr.Get(sess.ID())
	require.NoError(t, err)
	assert.Same(t, sess, got)

	snap, err := got.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess.ID(), snap.SessionID)

	require.NoError(t, mgr.Delete(sess.ID()))
	_, err = mgr.Get(sess.ID())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, mgr.Delete(sess.ID()), domain.ErrSessionNotFound)

	select {
	case <-sess.Done():
	default:
		t.Error("deleted session should be closed")
	}
}

func TestManager_ListIsSorted(t *testing.T) {
	mgr := newTestManager()
	defer mgr.Close()

	for i := 0; i < 5; i++ {
		_, err := mgr.Create(context.Background())
		require.NoError(t, err)
	}
	ids := mgr.List()
	assert.Len(t, ids, 5)
	assert.IsIncreasing(t, ids)
}

func TestManager_Prune(t *testing.T) {
	now := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(d time.Duration) {
		mu.Lock()
		now = now.Add(d)
		mu.Unlock()
	}

	mgr := newTestManager(WithClock(clock))
	defer mgr.Close()
	ctx := context.Background()

	old, err := mgr.Create(ctx)
	require.NoError(t, err)
	advance(20 * time.Minute)
	fresh, err := mgr.Create(ctx)
	require.NoError(t, err)
	advance(15 * time.Minute)

	assert.Equal(t, 1, mgr.Prune(30*time.Minute))
	_, err = mgr.Get(old.ID())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = mgr.Get(fresh.ID())
	assert.NoError(t, err)

	// Get refreshed the surviving session.
	advance(29 * time.Minute)
	assert.Zero(t, mgr.Prune(30*time.Minute))
}

func TestManager_Janitor(t *testing.T) {
	mgr := newTestManager(WithIdleTTL(time.Nanosecond))
	_, err := mgr.Create(context.Background())
	require.NoError(t, err)

	require.NoError(t, mgr.StartJanitor("@every 1s"))
	assert.Error(t, mgr.StartJanitor("@every 1s"), "only one janitor")

	assert.Eventually(t, func() bool { return mgr.Len() == 0 }, 3*time.Second, 50*time.Millisecond)
	require.NoError(t, mgr.Close())
}

func TestManager_JanitorBadSchedule(t *testing.T) {
	mgr := newTestManager()
	defer mgr.Close()
	assert.Error(t, mgr.StartJanitor("whenever"))
}

func TestManager_ConcurrentCreate(t *testing.T) {
	mgr := newTestManager()
	defer mgr.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess, err := mgr.Create(context.Background())
			if assert.NoError(t, err) {
				_, err = mgr.Get(sess.ID())
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, mgr.Len())
}

func TestManager_CloseClosesSessions(t *testing.T) {
	mgr := newTestManager()
	sess, err := mgr.Create(context.Background())
	require.NoError(t, err)

	require.NoError(t, mgr.Close())
	<-sess.Done()
	assert.Zero(t, mgr.Len())
}

func TestManager_CreateAfterClose(t *testing.T) {
	mgr := newTestManager()
	require.NoError(t, mgr.Close())

	sess, err := mgr.Create(context.Background())
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
	assert.Nil(t, sess)
	assert.Zero(t, mgr.Len())
	assert.ErrorIs(t, mgr.StartJanitor("@every 1m"), domain.ErrSessionClosed)
	assert.NoError(t, mgr.Close(), "closing twice is harmless")
}
