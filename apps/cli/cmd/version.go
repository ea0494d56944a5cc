package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "thinhttp version %s\n", version)
		fmt.Fprintf(out, "Built: %s (%s, %s/%s)\n", buildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}
