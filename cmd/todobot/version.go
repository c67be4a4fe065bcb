package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/m3rciful/todobot/core/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "todobot %s\n", buildinfo.Short())
		if buildinfo.Date != "" {
			fmt.Fprintf(out, "built: %s\n", buildinfo.Date)
		}
		fmt.Fprintf(out, "go: %s\n", runtime.Version())
	},
}
