package cmd

import (
	"github.com/grovetools/core/cli"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for agtail.
func NewRootCmd() *cobra.Command {
	rootCmd := cli.NewStandardCommand(
		"agtail",
		"Live viewer for agent transcript logs",
	)

	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newReadCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
