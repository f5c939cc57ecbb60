package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ai-mesh/toolpulse/internal/config"
	"github.com/ai-mesh/toolpulse/internal/tail"
)

func init() {
	rootCmd.AddCommand(tailCmd)
}

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Follow the live activity log",
	RunE:  runTail,
}

func runTail(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	path := cfg.Dirs().ActivityLogPath()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Fprintf(os.Stderr, "Following %s (Ctrl+C to stop)\n", path)
	return tail.New(path, os.Stdout).Run(ctx)
}
