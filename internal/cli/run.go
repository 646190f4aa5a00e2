package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/fatefinder"
	"github.com/aretw0/fatefinder/internal/config"
	"github.com/aretw0/fatefinder/internal/i18n"
	"github.com/aretw0/fatefinder/internal/presentation/tui"
	"github.com/aretw0/fatefinder/pkg/observability"
)

// RunOptions configures the interactive terminal session.
type RunOptions struct {
	Locale   string
	NoBanner bool
	Plain    bool
	In       io.Reader
	Out      io.Writer
}

// Run opens the configured store and drives one session from the terminal
// until the user quits or ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts RunOptions) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	locale := cfg.Locale
	if opts.Locale != "" {
		locale = opts.Locale
	}

	store, closeStore, err := OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	sess, err := fatefinder.New(SessionOptions(cfg, logger, store, observability.LogHooks(logger))...)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	defer sess.Close()

	renderer := tui.PlainRenderer
	if !opts.Plain {
		renderer = tui.NewRenderer(80)
	}

	app := tui.NewApp(sess, opts.In, opts.Out,
		tui.WithLocalizer(i18n.MustLoad().Localizer(locale)),
		tui.WithRenderer(renderer),
		tui.WithBanner(!opts.NoBanner),
	)
	err = app.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
