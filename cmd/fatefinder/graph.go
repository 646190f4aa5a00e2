package main

import (
	"fmt"

	"github.com/aretw0/fatefinder/internal/presentation/graph"
	"github.com/aretw0/fatefinder/pkg/domain"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the navigation state machine as a Mermaid diagram",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(domain.Transitions, nil))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
