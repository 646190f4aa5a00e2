package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/fatefinder/internal/config"
	"github.com/aretw0/fatefinder/internal/i18n"
	httpAdapter "github.com/aretw0/fatefinder/pkg/adapters/http"
	mcpAdapter "github.com/aretw0/fatefinder/pkg/adapters/mcp"
	"github.com/aretw0/fatefinder/pkg/observability"
	"github.com/aretw0/fatefinder/pkg/ports"
	"github.com/aretw0/fatefinder/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 5 * time.Second

// newManager builds the session registry and starts its janitor.
func newManager(cfg *config.Config, logger *slog.Logger, store ports.ResultStore, metrics *observability.Metrics) (*session.Manager, error) {
	hooks := observability.LogHooks(logger)
	if metrics != nil {
		hooks = hooks.Merge(metrics.Hooks())
	}
	mgr := session.NewManager(
		session.DefaultFactory(SessionOptions(cfg, logger, store, hooks)...),
		session.WithLogger(logger),
		session.WithIdleTTL(cfg.Server.SessionIdleTTL),
	)
	if err := mgr.StartJanitor(cfg.Server.JanitorSchedule); err != nil {
		_ = mgr.Close()
		return nil, err
	}
	return mgr, nil
}

// Serve runs the HTTP API until ctx is cancelled, then drains connections
// and closes every session.
func Serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, closeStore, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	mgr, err := newManager(cfg, logger, store, metrics)
	if err != nil {
		return err
	}
	defer mgr.Close()

	handler := httpAdapter.NewHandler(mgr, store,
		httpAdapter.WithLogger(logger),
		httpAdapter.WithCatalog(i18n.MustLoad()),
		httpAdapter.WithRateLimit(cfg.RateLimit(), cfg.Server.RateBurst),
		httpAdapter.WithGatherer(reg),
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting fatefinder server", "addr", srv.Addr, "store", cfg.Store.Backend)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("close server: %w", err)
			}
		}
		logger.Info("server stopped gracefully")
		return nil
	}
}

// MCPOptions selects the MCP transport.
type MCPOptions struct {
	Transport string
	Port      int
}

// ServeMCP exposes sessions as MCP tools over stdio or SSE.
func ServeMCP(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts MCPOptions) error {
	store, closeStore, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	mgr, err := newManager(cfg, logger, store, nil)
	if err != nil {
		return err
	}
	defer mgr.Close()

	srv := mcpAdapter.NewServer(mgr, store,
		mcpAdapter.WithLogger(logger),
		mcpAdapter.WithLocalizer(i18n.MustLoad().Localizer(cfg.Locale)),
		mcpAdapter.WithWaitTimeout(cfg.API.Timeout+5*time.Second),
	)

	switch opts.Transport {
	case "stdio", "":
		logger.Info("starting MCP server (stdio)")
		return srv.ServeStdio()
	case "sse":
		port := opts.Port
		if port == 0 {
			port = cfg.Server.Port
		}
		err := srv.ServeSSE(ctx, port)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	default:
		return fmt.Errorf("unknown transport %q (supported: stdio, sse)", opts.Transport)
	}
}
