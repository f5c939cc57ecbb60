package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ai-mesh/toolpulse/internal/config"
	"github.com/ai-mesh/toolpulse/internal/indicators"
	"github.com/ai-mesh/toolpulse/internal/session"
)

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionStartCmd)
	sessionCmd.AddCommand(sessionEndCmd)
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage productivity tracking sessions",
}

var sessionStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a new tracking session",
	RunE:  runSessionStart,
}

var sessionEndCmd = &cobra.Command{
	Use:   "end",
	Short: "Finalize the current session and score it",
	RunE:  runSessionEnd,
}

func runSessionStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	rec, err := session.Start(cfg.Dirs(), cfg.User)
	if err != nil {
		return err
	}

	short := rec.SessionID
	if len(short) > 8 {
		short = short[:8]
	}
	fmt.Printf("🎯 Productivity tracking initialized for session: %s...\n", short)
	return nil
}

func runSessionEnd(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	dirs := cfg.Dirs()

	summary, err := session.End(dirs, indicators.NewFileStore(dirs.IndicatorsPath()))
	if err != nil {
		return err
	}

	fmt.Printf("Session %s finished\n", summary.SessionID)
	fmt.Printf("  duration:     %.2fh\n", summary.DurationHours)
	fmt.Printf("  score:        %.1f/10 (%s)\n", summary.ProductivityScore, summary.Trend)
	fmt.Printf("  commands:     %d\n", summary.Metrics.CommandsExecuted)
	fmt.Printf("  files:        %d\n", summary.Metrics.FilesModified)
	fmt.Printf("  lines:        %d\n", summary.Metrics.LinesChanged)
	fmt.Printf("  success rate: %.1f%%\n", summary.Metrics.SuccessRate)

	if len(summary.Recommendations) > 0 {
		fmt.Println("Recommendations:")
		for _, r := range summary.Recommendations {
			fmt.Printf("  [%s] %s\n", r.Priority, r.Message)
		}
	}
	return nil
}
