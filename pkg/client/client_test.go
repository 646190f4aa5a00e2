package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/fatefinder/pkg/client"
	"github.com/aretw0/fatefinder/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const toyamaBody = `{
	"name": "富山県",
	"capital": "富山市",
	"citizen_day": {"month": 5, "day": 9},
	"has_coast_line": true,
	"logo_url": "https://japan-map.com/wp-content/uploads/toyama.png",
	"brief": "富山県の概要"
}`

func yumemi(t *testing.T) *domain.FortuneRequest {
	t.Helper()
	req, err := domain.NewFortuneRequest("Yumemi",
		domain.YearMonthDay{Year: 2000, Month: 1, Day: 1},
		"A",
		domain.YearMonthDay{Year: 2024, Month: 1, Day: 8})
	require.NoError(t, err)
	return req
}

func TestFetch_Success(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, client.DefaultAPIVersion, r.Header.Get("API-Version"))
		b, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(b, &gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, toyamaBody)
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	res, err := c.Fetch(context.Background(), yumemi(t))
	require.NoError(t, err)

	assert.Equal(t, "富山県", res.Name)
	assert.Equal(t, "富山市", res.Capital)
	require.NotNil(t, res.CitizenDay)
	assert.Equal(t, domain.MonthDay{Month: 5, Day: 9}, *res.CitizenDay)
	assert.True(t, res.HasCoastLine)

	assert.Equal(t, "Yumemi", gotBody["name"])
	assert.Equal(t, "A", gotBody["bloodType"])
	assert.Equal(t, map[string]any{"year": 2000.0, "month": 1.0, "day": 1.0}, gotBody["birthday"])
	assert.Equal(t, map[string]any{"year": 2024.0, "month": 1.0, "day": 8.0}, gotBody["today"])
}

func TestFetch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := client.New(srv.URL).Fetch(context.Background(), yumemi(t))
	require.Error(t, err)
	assert.True(t, domain.IsFetchError(err))

	var se *domain.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Code)
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := client.New(srv.URL, client.WithTimeout(50*time.Millisecond))
	_, err := c.Fetch(context.Background(), yumemi(t))
	require.Error(t, err)
	assert.True(t, domain.IsFetchError(err))
}

func TestFetch_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := client.New(url).Fetch(context.Background(), yumemi(t))
	require.Error(t, err)
	assert.True(t, domain.IsFetchError(err))
}

func TestFetch_CustomAPIVersion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "v9", r.Header.Get("API-Version"))
		_, _ = io.WriteString(w, toyamaBody)
	}))
	defer srv.Close()

	_, err := client.New(srv.URL, client.WithAPIVersion("v9")).Fetch(context.Background(), yumemi(t))
	require.NoError(t, err)
}

func TestNew_DefaultEndpoint(t *testing.T) {
	assert.Equal(t, client.DefaultEndpoint, client.New("").Endpoint())
}
