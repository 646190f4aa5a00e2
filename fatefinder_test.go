package fatefinder_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/fatefinder"
	"github.com/aretw0/fatefinder/pkg/adapters/memory"
	"github.com/aretw0/fatefinder/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_EndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"name":"富山県","capital":"富山市","citizen_day":{"month":5,"day":9},"has_coast_line":true,"logo_url":"https://japan-map.com/wp-content/uploads/toyama.png","brief":"富山県の概要"}`)
	}))
	defer srv.Close()

	store := memory.NewStore()
	sess, err := fatefinder.New(
		fatefinder.WithEndpoint(srv.URL),
		fatefinder.WithStore(store),
		fatefinder.WithSessionID("e2e"),
	)
	require.NoError(t, err)
	defer sess.Close()

	updates, cancel := sess.Subscribe()
	defer cancel()

	ctx := context.Background()
	_, err = sess.StartInput(ctx)
	require.NoError(t, err)
	_, err = sess.Submit(ctx, domain.Form{
		Name:      "ゆめみん",
		Birthday:  domain.YearMonthDay{Year: 2000, Month: 1, Day: 27},
		BloodType: "a",
		Today:     domain.YearMonthDay{Year: 2023, Month: 5, Day: 5},
	})
	require.NoError(t, err)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case snap := <-updates:
			assert.Equal(t, "e2e", snap.SessionID)
			if snap.Screen != domain.ScreenResult {
				continue
			}
			assert.Equal(t, "富山県", snap.LastResult.Name)
			saved, err := sess.SavedResult(ctx)
			require.NoError(t, err)
			assert.Equal(t, "富山市", saved.Capital)
			return
		case <-deadline:
			t.Fatal("no result screen")
		}
	}
}

func TestSession_NegativeTimeout(t *testing.T) {
	_, err := fatefinder.New(fatefinder.WithFetchTimeout(-time.Second))
	assert.Error(t, err)
}

func TestSession_SavedResultEmpty(t *testing.T) {
	sess, err := fatefinder.New()
	require.NoError(t, err)
	defer sess.Close()

	_, err = sess.SavedResult(context.Background())
	assert.ErrorIs(t, err, domain.ErrResultNotFound)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, fatefinder.Version)
}
