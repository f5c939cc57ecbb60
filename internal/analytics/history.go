package analytics

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ai-mesh/toolpulse/internal/metrics"
)

// baselineWindow is the number of recent sessions that feed the rolling
// baseline.
const baselineWindow = 30

// AppendHistory appends a session summary to the history JSONL file.
func AppendHistory(path string, s Summary) error {
	line, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("analytics: marshal summary: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("analytics: open history: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("analytics: append history: %w", err)
	}
	return f.Close()
}

// LoadHistory reads session summaries from the history file, skipping
// malformed lines. A missing file is an empty history.
func LoadHistory(path string) ([]Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("analytics: open history: %w", err)
	}
	defer f.Close()

	var sessions []Summary
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var s Summary
		if err := json.Unmarshal(line, &s); err != nil {
			continue
		}
		sessions = append(sessions, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("analytics: scan history: %w", err)
	}
	return sessions, nil
}

// RecomputeBaseline folds the most recent sessions into a new rolling
// baseline. Returns false when there is nothing to fold.
func RecomputeBaseline(history []Summary, now time.Time) (Baseline, bool) {
	if len(history) > baselineWindow {
		history = history[len(history)-baselineWindow:]
	}
	if len(history) == 0 {
		return Baseline{}, false
	}

	var totalCommands, totalLines, totalSuccess, totalHours float64
	for _, s := range history {
		totalCommands += float64(s.Metrics.CommandsExecuted)
		totalLines += float64(s.Metrics.LinesChanged)
		totalSuccess += s.Metrics.SuccessRate
		totalHours += s.DurationHours
	}
	if totalHours <= 0 {
		return Baseline{}, false
	}

	return Baseline{
		AverageCommandsPerHour: totalCommands / totalHours,
		AverageLinesPerHour:    totalLines / totalHours,
		AverageSuccessRate:     totalSuccess / float64(len(history)),
		LastUpdated:            now.UTC().Format(metrics.TimeFormat),
		SessionsCount:          len(history),
	}, true
}
