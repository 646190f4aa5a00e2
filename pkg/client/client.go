// Package client implements the single-shot HTTP call to the fortune API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/aretw0/fatefinder/internal/logging"
	"github.com/aretw0/fatefinder/pkg/domain"
)

const (
	// DefaultEndpoint is the production fortune API.
	DefaultEndpoint = "https://yumemi-ios-junior-engineer-codecheck.app.swift.cloud/my_fortune"

	// DefaultAPIVersion is sent in the API-Version header.
	DefaultAPIVersion = "v5"

	// DefaultTimeout bounds one fetch end to end.
	DefaultTimeout = 10 * time.Second

	// maxLoggedBody caps how much of a failed response body reaches the logs.
	maxLoggedBody = 512

	// maxBody caps how much of a response is read.
	maxBody = 1 << 20
)

// Client posts fortune requests. It never retries.
type Client struct {
	endpoint   string
	apiVersion string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithAPIVersion overrides the API-Version header value.
func WithAPIVersion(v string) Option {
	return func(c *Client) {
		if v != "" {
			c.apiVersion = v
		}
	}
}

// WithProxy routes requests through the given proxy URL.
// An unparsable URL is ignored.
func WithProxy(proxyURL string) Option {
	return func(c *Client) {
		if proxyURL == "" {
			return
		}
		u, err := url.Parse(proxyURL)
		if err != nil {
			c.logger.Warn("ignoring invalid proxy url", "proxy", proxyURL, "err", err)
			return
		}
		c.httpClient.Transport = &http.Transport{Proxy: http.ProxyURL(u)}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client for endpoint. An empty endpoint selects DefaultEndpoint.
func New(endpoint string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint:   endpoint,
		apiVersion: DefaultAPIVersion,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the URL requests are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Fetch sends req and decodes the prefecture. All failures are *domain.FetchError.
func (c *Client) Fetch(ctx context.Context, req *domain.FortuneRequest) (*domain.FortuneResult, error) {
	if req == nil {
		return nil, &domain.FetchError{Op: "encode", Err: fmt.Errorf("nil request")}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &domain.FetchError{Op: "encode", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &domain.FetchError{Op: "build request", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("API-Version", c.apiVersion)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug("fortune request failed", "endpoint", c.endpoint, "err", err)
		return nil, &domain.FetchError{Op: "post", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, &domain.FetchError{Op: "read body", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("fortune api returned error status",
			"status", resp.StatusCode,
			"body", truncate(raw),
			"duration", time.Since(start))
		return nil, &domain.FetchError{
			Op:  "status",
			Err: &domain.StatusError{Code: resp.StatusCode, Body: truncate(raw)},
		}
	}

	result, err := Decode(raw)
	if err != nil {
		c.logger.Debug("received unexpected fortune payload", "body", truncate(raw), "err", err)
		return nil, &domain.FetchError{Op: "decode", Err: err}
	}

	c.logger.Debug("fortune received", "prefecture", result.Name, "duration", time.Since(start))
	return result, nil
}

func truncate(b []byte) string {
	if len(b) <= maxLoggedBody {
		return string(b)
	}
	return string(b[:maxLoggedBody]) + "..."
}
