package main

import (
	"os"

	"github.com/aretw0/fatefinder/internal/cli"
	"github.com/aretw0/fatefinder/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Tell a fortune interactively in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		locale, _ := cmd.Flags().GetString("locale")
		noBanner, _ := cmd.Flags().GetBool("no-banner")
		plain, _ := cmd.Flags().GetBool("plain")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		return cli.Run(ctx, cfg, logger, cli.RunOptions{
			Locale:   locale,
			NoBanner: noBanner,
			Plain:    plain || !tui.IsTerminal(os.Stdout),
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("locale", "", "Display language (ja, en); overrides the config")
	runCmd.Flags().Bool("no-banner", false, "Do not print the banner")
	runCmd.Flags().Bool("plain", false, "Print raw markdown instead of styled output")

	// 'run' is the default when no command is given.
	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
