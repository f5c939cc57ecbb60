package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "toolpulse",
	Short: "Tool-metrics collection for ai-mesh coding sessions",
	Long: "Captures per-invocation tool metrics from the coding assistant, keeps a local\n" +
		"append-only event store under ~/.ai-mesh/metrics, and maintains the running\n" +
		"productivity indicators the dashboard reads.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
