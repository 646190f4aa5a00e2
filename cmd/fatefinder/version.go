package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/fatefinder"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of fatefinder",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "fatefinder version %s\n", strings.TrimSpace(fatefinder.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
