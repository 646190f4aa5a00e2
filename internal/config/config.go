// Package config loads fatefinder settings from YAML, .env and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aretw0/fatefinder/pkg/client"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultRateLimitRPS applies when server.rate_limit_rps is not set.
const DefaultRateLimitRPS = 1.0

// Store backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	API struct {
		Endpoint   string        `yaml:"endpoint"`
		APIVersion string        `yaml:"api_version"`
		Timeout    time.Duration `yaml:"timeout"`
		Proxy      string        `yaml:"proxy"`
	} `yaml:"api"`
	Store struct {
		Backend string `yaml:"backend"`
		Path    string `yaml:"path"`
		Redis   struct {
			Addr     string        `yaml:"addr"`
			Password string        `yaml:"password"`
			DB       int           `yaml:"db"`
			Prefix   string        `yaml:"prefix"`
			TTL      time.Duration `yaml:"ttl"`
		} `yaml:"redis"`
		DSN           string `yaml:"dsn"`
		EncryptionKey string `yaml:"encryption_key"`
	} `yaml:"store"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Locale string `yaml:"locale"`
	Server struct {
		Port            int           `yaml:"port"`
		RateLimitRPS    *float64      `yaml:"rate_limit_rps"` // 0 disables limiting
		RateBurst       int           `yaml:"rate_burst"`
		SessionIdleTTL  time.Duration `yaml:"session_idle_ttl"`
		JanitorSchedule string        `yaml:"janitor_schedule"`
	} `yaml:"server"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides, then fills defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	// .env never overrides variables already set in the process.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	// Later entries win, so FATEFINDER_PROXY beats HTTPS_PROXY.
	for _, o := range []struct {
		env string
		dst *string
	}{
		{"FATEFINDER_API_ENDPOINT", &c.API.Endpoint},
		{"FATEFINDER_API_VERSION", &c.API.APIVersion},
		{"HTTPS_PROXY", &c.API.Proxy},
		{"FATEFINDER_PROXY", &c.API.Proxy},
		{"FATEFINDER_STORE_BACKEND", &c.Store.Backend},
		{"FATEFINDER_STORE_PATH", &c.Store.Path},
		{"FATEFINDER_STORE_DSN", &c.Store.DSN},
		{"FATEFINDER_ENCRYPTION_KEY", &c.Store.EncryptionKey},
		{"FATEFINDER_REDIS_ADDR", &c.Store.Redis.Addr},
		{"FATEFINDER_REDIS_PASSWORD", &c.Store.Redis.Password},
		{"FATEFINDER_REDIS_PREFIX", &c.Store.Redis.Prefix},
		{"FATEFINDER_LOG_LEVEL", &c.Log.Level},
		{"FATEFINDER_LOCALE", &c.Locale},
		{"FATEFINDER_JANITOR_SCHEDULE", &c.Server.JanitorSchedule},
	} {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}

	if v := os.Getenv("FATEFINDER_API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("FATEFINDER_API_TIMEOUT: %w", err)
		}
		c.API.Timeout = d
	}
	if v := os.Getenv("FATEFINDER_SESSION_IDLE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("FATEFINDER_SESSION_IDLE_TTL: %w", err)
		}
		c.Server.SessionIdleTTL = d
	}
	if v := os.Getenv("FATEFINDER_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FATEFINDER_REDIS_DB: %w", err)
		}
		c.Store.Redis.DB = n
	}
	if v := os.Getenv("FATEFINDER_RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("FATEFINDER_RATE_LIMIT_RPS: %w", err)
		}
		c.Server.RateLimitRPS = &f
	}
	if v := os.Getenv("FATEFINDER_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FATEFINDER_PORT: %w", err)
		}
		c.Server.Port = n
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.Endpoint == "" {
		c.API.Endpoint = client.DefaultEndpoint
	}
	if c.API.APIVersion == "" {
		c.API.APIVersion = client.DefaultAPIVersion
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = client.DefaultTimeout
	}
	if c.Store.Backend == "" {
		c.Store.Backend = BackendFile
	}
	if c.Store.Path == "" {
		c.Store.Path = ".fatefinder"
	}
	if c.Store.Redis.Addr == "" {
		c.Store.Redis.Addr = "localhost:6379"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Locale == "" {
		c.Locale = "ja"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.RateLimitRPS == nil {
		rps := DefaultRateLimitRPS
		c.Server.RateLimitRPS = &rps
	}
	if c.Server.RateBurst == 0 {
		c.Server.RateBurst = 3
	}
	if c.Server.SessionIdleTTL == 0 {
		c.Server.SessionIdleTTL = 30 * time.Minute
	}
	if c.Server.JanitorSchedule == "" {
		c.Server.JanitorSchedule = "@every 1m"
	}
}

// RateLimit returns the submit rate per client in requests per second.
// Zero means unlimited.
func (c *Config) RateLimit() float64 {
	if c.Server.RateLimitRPS == nil {
		return DefaultRateLimitRPS
	}
	return *c.Server.RateLimitRPS
}

// Validate checks that the settings are usable.
func (c *Config) Validate() error {
	if c.API.Endpoint == "" {
		return fmt.Errorf("api.endpoint is required")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendRedis:
	case BackendSQLite:
		if c.Store.DSN == "" && c.Store.Path == "" {
			return fmt.Errorf("store.dsn or store.path is required for sqlite")
		}
	case BackendPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("unknown store.backend %q", c.Store.Backend)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.RateLimit() < 0 || c.Server.RateBurst < 0 {
		return fmt.Errorf("server rate limit must not be negative")
	}
	return nil
}
