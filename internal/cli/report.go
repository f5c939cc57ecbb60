package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ai-mesh/toolpulse/internal/analytics"
	"github.com/ai-mesh/toolpulse/internal/config"
)

var reportSessions int

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().IntVar(&reportSessions, "sessions", 10, "Number of recent sessions to include")
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize recent session history",
	RunE:  runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	dirs := cfg.Dirs()

	history, err := analytics.LoadHistory(dirs.HistoryPath())
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Println("No session history yet. End a session with `toolpulse session end` first.")
		return nil
	}
	if len(history) > reportSessions {
		history = history[len(history)-reportSessions:]
	}

	var totalScore float64
	fmt.Printf("Last %d sessions:\n", len(history))
	for _, s := range history {
		totalScore += s.ProductivityScore
		fmt.Printf("  %s  %.1f/10 %-17s %3d commands, %d lines\n",
			s.EndTime, s.ProductivityScore, "("+s.Trend+")",
			s.Metrics.CommandsExecuted, s.Metrics.LinesChanged)
	}
	fmt.Printf("Average score: %.1f/10\n", totalScore/float64(len(history)))

	base := analytics.LoadBaseline(dirs.HistoricalBaselinePath())
	fmt.Printf("Baseline: %.1f commands/h, %.1f lines/h over %d sessions\n",
		base.AverageCommandsPerHour, base.AverageLinesPerHour, base.SessionsCount)

	latest := history[len(history)-1]
	if len(latest.Recommendations) > 0 {
		fmt.Println("Latest recommendations:")
		for _, r := range latest.Recommendations {
			fmt.Printf("  [%s] %s: %s\n", r.Priority, r.Message, r.Action)
		}
	}
	return nil
}
