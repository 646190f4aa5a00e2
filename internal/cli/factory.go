package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/fatefinder"
	"github.com/aretw0/fatefinder/internal/config"
	"github.com/aretw0/fatefinder/pkg/adapters/file"
	"github.com/aretw0/fatefinder/pkg/adapters/memory"
	"github.com/aretw0/fatefinder/pkg/adapters/redis"
	"github.com/aretw0/fatefinder/pkg/adapters/sqlstore"
	"github.com/aretw0/fatefinder/pkg/client"
	"github.com/aretw0/fatefinder/pkg/domain"
	"github.com/aretw0/fatefinder/pkg/persistence/middleware"
	"github.com/aretw0/fatefinder/pkg/ports"
)

// sqliteFile is the database created under store.path when no DSN is set.
const sqliteFile = "fatefinder.db"

// OpenStore builds the configured result store, wrapped in encryption when a
// key is set. The returned close func releases backend connections.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.ResultStore, func() error, error) {
	var (
		store   ports.ResultStore
		closeFn = func() error { return nil }
	)

	switch cfg.Store.Backend {
	case config.BackendMemory:
		store = memory.NewStore()
	case config.BackendFile:
		store = file.New(cfg.Store.Path)
	case config.BackendRedis:
		var opts []redis.Option
		if cfg.Store.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Store.Redis.Prefix))
		}
		if cfg.Store.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.Store.Redis.TTL))
		}
		rs := redis.New(cfg.Store.Redis.Addr, cfg.Store.Redis.Password, cfg.Store.Redis.DB, opts...)
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.Store.Redis.Addr, err)
		}
		store, closeFn = rs, rs.Close
	case config.BackendSQLite, config.BackendPostgres:
		driver := sqlstore.DriverSQLite
		dsn := cfg.Store.DSN
		if cfg.Store.Backend == config.BackendPostgres {
			driver = sqlstore.DriverPostgres
		} else if dsn == "" {
			if err := os.MkdirAll(cfg.Store.Path, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create store dir: %w", err)
			}
			dsn = filepath.Join(cfg.Store.Path, sqliteFile)
		}
		ss, err := sqlstore.Open(ctx, driver, dsn)
		if err != nil {
			return nil, nil, err
		}
		store, closeFn = ss, ss.Close
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	if cfg.Store.EncryptionKey != "" {
		key, err := middleware.DeriveKey(cfg.Store.EncryptionKey)
		if err != nil {
			_ = closeFn()
			return nil, nil, err
		}
		enc, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			_ = closeFn()
			return nil, nil, err
		}
		store = middleware.Chain(store, enc)
	}

	logger.Debug("result store ready", "backend", cfg.Store.Backend, "encrypted", cfg.Store.EncryptionKey != "")
	return store, closeFn, nil
}

// NewFetcher builds the fortune API client from the api section.
func NewFetcher(cfg *config.Config, logger *slog.Logger) ports.FortuneFetcher {
	opts := []client.Option{
		client.WithTimeout(cfg.API.Timeout),
		client.WithAPIVersion(cfg.API.APIVersion),
		client.WithLogger(logger),
	}
	if cfg.API.Proxy != "" {
		opts = append(opts, client.WithProxy(cfg.API.Proxy))
	}
	return client.New(cfg.API.Endpoint, opts...)
}

// SessionOptions returns the options shared by every session the CLI creates.
func SessionOptions(cfg *config.Config, logger *slog.Logger, store ports.ResultStore, hooks ...domain.LifecycleHooks) []fatefinder.Option {
	opts := []fatefinder.Option{
		fatefinder.WithLogger(logger),
		fatefinder.WithFetcher(NewFetcher(cfg, logger)),
		fatefinder.WithStore(store),
		fatefinder.WithFetchTimeout(cfg.API.Timeout),
	}
	for _, h := range hooks {
		opts = append(opts, fatefinder.WithLifecycleHooks(h))
	}
	return opts
}
