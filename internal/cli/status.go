package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ai-mesh/toolpulse/internal/config"
	"github.com/ai-mesh/toolpulse/internal/indicators"
	"github.com/ai-mesh/toolpulse/internal/metrics"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current productivity indicators",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ind, err := indicators.NewFileStore(cfg.Dirs().IndicatorsPath()).Load()
	if err != nil {
		return err
	}
	if ind == nil {
		fmt.Println("No activity recorded yet. Run `toolpulse session start` to begin tracking.")
		return nil
	}

	fmt.Printf("Session started: %s\n", relativeTime(ind.SessionStart))
	if ind.LastActivity != nil {
		fmt.Printf("Last activity:   %s\n", relativeTime(*ind.LastActivity))
	}
	fmt.Printf("Commands:        %s\n", humanize.Comma(int64(ind.CommandsExecuted)))
	fmt.Printf("Files modified:  %s\n", humanize.Comma(int64(ind.FilesModified)))
	fmt.Printf("Lines changed:   %s\n", humanize.Comma(int64(ind.LinesChanged)))
	fmt.Printf("Success rate:    %.1f%%\n", ind.SuccessRate)

	if len(ind.ToolsUsed) > 0 {
		fmt.Println("Tools:")
		for _, tc := range sortedCounts(ind.ToolsUsed) {
			fmt.Printf("  %-12s %d\n", tc.name, tc.count)
		}
	}
	if len(ind.AgentsInvoked) > 0 {
		fmt.Println("Agents:")
		for _, ac := range sortedCounts(ind.AgentsInvoked) {
			fmt.Printf("  %-24s %d\n", ac.name, ac.count)
		}
	}
	return nil
}

type nameCount struct {
	name  string
	count int
}

// sortedCounts orders a counter map by count descending, name ascending.
func sortedCounts(m map[string]int) []nameCount {
	out := make([]nameCount, 0, len(m))
	for name, count := range m {
		out = append(out, nameCount{name, count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].name < out[j].name
	})
	return out
}

func relativeTime(ts string) string {
	t, err := time.Parse(metrics.TimeFormat, ts)
	if err != nil {
		return ts
	}
	return humanize.Time(t)
}
