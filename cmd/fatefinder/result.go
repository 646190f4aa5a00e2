package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/fatefinder/internal/cli"
	"github.com/aretw0/fatefinder/internal/i18n"
	"github.com/aretw0/fatefinder/internal/presentation/tui"
	"github.com/aretw0/fatefinder/pkg/domain"
	"github.com/spf13/cobra"
)

var resultCmd = &cobra.Command{
	Use:   "result",
	Short: "Inspect or remove the saved result",
}

var resultShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the most recently saved result",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		store, closeStore, err := cli.OpenStore(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		loc := i18n.MustLoad().Localizer(cfg.Locale)
		res, err := store.Load(cmd.Context(), domain.SavedResultsKey)
		if errors.Is(err, domain.ErrResultNotFound) {
			fmt.Fprintln(cmd.OutOrStdout(), loc.T(i18n.ResultNoneSaved))
			return nil
		}
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			data, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}
		out, err := tui.NewRenderer(80)(tui.ResultMarkdown(res, loc))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var resultRmCmd = &cobra.Command{
	Use:   "rm",
	Short: "Delete the saved result",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		store, closeStore, err := cli.OpenStore(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		if err := store.Delete(cmd.Context(), domain.SavedResultsKey); err != nil {
			return fmt.Errorf("remove saved result: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Removed saved result")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resultCmd)
	resultCmd.AddCommand(resultShowCmd)
	resultCmd.AddCommand(resultRmCmd)

	resultShowCmd.Flags().Bool("json", false, "Print the result as JSON")
}
