package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Overridden at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "scheduler %s (%s) %s\n", version, commit, runtime.Version())
		},
	}
}
