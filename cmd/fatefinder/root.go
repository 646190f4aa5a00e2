package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/fatefinder/internal/config"
	"github.com/aretw0/fatefinder/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fatefinder",
	Short: "Find the Japanese prefecture that suits you",
	Long: `FateFinder asks the fortune API which prefecture matches a person's
name, birthday and blood type, and keeps the latest result.

Run it interactively, serve it over HTTP, or expose it to agents over MCP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "fatefinder.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); overrides the config")
}

// setup loads the config and builds the stderr logger shared by every command.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(level)
	slog.SetDefault(logger)
	return cfg, logger, nil
}
