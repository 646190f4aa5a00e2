package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/fatefinder/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, client.DefaultEndpoint, cfg.API.Endpoint)
	assert.Equal(t, "v5", cfg.API.APIVersion)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, BackendFile, cfg.Store.Backend)
	assert.Equal(t, ".fatefinder", cfg.Store.Path)
	assert.Equal(t, "ja", cfg.Locale)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "@every 1m", cfg.Server.JanitorSchedule)
	assert.Equal(t, DefaultRateLimitRPS, cfg.RateLimit())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_RateLimitZeroDisables(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "fatefinder.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  rate_limit_rps: 0\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Zero(t, cfg.RateLimit(), "an explicit zero is kept")
	assert.NoError(t, cfg.Validate())

	t.Setenv("FATEFINDER_RATE_LIMIT_RPS", "2.5")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.RateLimit())
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "fatefinder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api:
  endpoint: http://localhost:9999/my_fortune
  timeout: 3s
store:
  backend: redis
  redis:
    addr: redis:6379
    db: 2
    ttl: 24h
server:
  port: 9000
  session_idle_ttl: 5m
locale: en
`), 0o644))

	t.Setenv("FATEFINDER_PORT", "9100")
	t.Setenv("FATEFINDER_API_VERSION", "v6")
	t.Setenv("HTTPS_PROXY", "http://proxy.internal:3128")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999/my_fortune", cfg.API.Endpoint)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, "v6", cfg.API.APIVersion)
	assert.Equal(t, "http://proxy.internal:3128", cfg.API.Proxy)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.Equal(t, 24*time.Hour, cfg.Store.Redis.TTL)
	assert.Equal(t, 9100, cfg.Server.Port, "env overrides file")
	assert.Equal(t, 5*time.Minute, cfg.Server.SessionIdleTTL)
	assert.Equal(t, "en", cfg.Locale)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FATEFINDER_LOG_LEVEL=debug\n"), 0o644))
	t.Setenv("FATEFINDER_LOG_LEVEL", "")
	os.Unsetenv("FATEFINDER_LOG_LEVEL")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_BadEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FATEFINDER_API_TIMEOUT", "soon")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api: [unterminated"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Store.Backend = "cassandra" }},
		{"postgres without dsn", func(c *Config) { c.Store.Backend = BackendPostgres }},
		{"negative timeout", func(c *Config) { c.API.Timeout = -time.Second }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
