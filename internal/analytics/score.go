// Package analytics scores completed sessions against a rolling
// productivity baseline and generates recommendations.
package analytics

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/ai-mesh/toolpulse/internal/indicators"
	"github.com/ai-mesh/toolpulse/internal/metrics"
)

// Baseline is the comparison baseline for session scoring.
type Baseline struct {
	AverageCommandsPerHour float64 `json:"average_commands_per_hour"`
	AverageLinesPerHour    float64 `json:"average_lines_per_hour"`
	AverageSuccessRate     float64 `json:"average_success_rate"`
	LastUpdated            string  `json:"last_updated,omitempty"`
	SessionsCount          int     `json:"sessions_count,omitempty"`
}

// DefaultBaseline is used until enough session history accumulates.
func DefaultBaseline() Baseline {
	return Baseline{
		AverageCommandsPerHour: 15,
		AverageLinesPerHour:    120,
		AverageSuccessRate:     0.92,
	}
}

// LoadBaseline reads a baseline document. Missing or unreadable files
// yield the default baseline.
func LoadBaseline(path string) Baseline {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultBaseline()
	}
	var b Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return DefaultBaseline()
	}
	if b.AverageCommandsPerHour == 0 {
		b.AverageCommandsPerHour = DefaultBaseline().AverageCommandsPerHour
	}
	if b.AverageLinesPerHour == 0 {
		b.AverageLinesPerHour = DefaultBaseline().AverageLinesPerHour
	}
	return b
}

// SaveBaseline writes a baseline document.
func SaveBaseline(path string, b Baseline) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("analytics: marshal baseline: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("analytics: write baseline: %w", err)
	}
	return nil
}

// ScoreFactors are the weighted components of the productivity score.
// Each factor is capped at 2.0; the sum doubles into a 0-10 score.
type ScoreFactors struct {
	Velocity        float64 `json:"velocity"`
	CodeOutput      float64 `json:"code_output"`
	SuccessRate     float64 `json:"success_rate"`
	Focus           float64 `json:"focus"`
	AgentEfficiency float64 `json:"agent_efficiency"`
}

// SummaryMetrics mirrors the indicators document at session end.
type SummaryMetrics struct {
	CommandsExecuted int     `json:"commands_executed"`
	FilesModified    int     `json:"files_modified"`
	LinesChanged     int     `json:"lines_changed"`
	AgentsUsed       int     `json:"agents_used"`
	ToolsUsed        int     `json:"tools_used"`
	SuccessRate      float64 `json:"success_rate"`
}

// Performance compares the session rates against the baseline, in percent.
type Performance struct {
	CommandsPerHour    float64 `json:"commands_per_hour"`
	LinesPerHour       float64 `json:"lines_per_hour"`
	VsBaselineVelocity float64 `json:"vs_baseline_velocity"`
	VsBaselineOutput   float64 `json:"vs_baseline_output"`
}

// Recommendation is one actionable suggestion attached to a summary.
type Recommendation struct {
	Priority string `json:"priority"`
	Category string `json:"category"`
	Message  string `json:"message"`
	Action   string `json:"action"`
}

// Summary is one line in the session-history JSONL file.
type Summary struct {
	SessionID         string           `json:"session_id"`
	StartTime         string           `json:"start_time"`
	EndTime           string           `json:"end_time"`
	DurationHours     float64          `json:"duration_hours"`
	ProductivityScore float64          `json:"productivity_score"`
	Trend             string           `json:"trend"`
	Metrics           SummaryMetrics   `json:"metrics"`
	Performance       Performance      `json:"performance"`
	Recommendations   []Recommendation `json:"recommendations"`
}

// Summarize computes the session summary from the final indicators.
func Summarize(sessionID, startTime string, end time.Time, ind *indicators.Indicators, base Baseline) Summary {
	start, err := time.Parse(metrics.TimeFormat, startTime)
	if err != nil {
		start = end
	}
	hours := end.Sub(start).Hours()
	effective := math.Max(hours, 0.1)

	commandsPerHour := float64(ind.CommandsExecuted) / effective
	linesPerHour := float64(ind.LinesChanged) / effective

	factors := ScoreFactors{
		Velocity:        math.Min(2.0, commandsPerHour/math.Max(base.AverageCommandsPerHour, 1)),
		CodeOutput:      math.Min(2.0, linesPerHour/math.Max(base.AverageLinesPerHour, 1)),
		SuccessRate:     ind.SuccessRate / 100,
		Focus:           math.Min(2.0, hours),
		AgentEfficiency: math.Min(2.0, float64(len(ind.AgentsInvoked))/3),
	}

	score := (factors.Velocity + factors.CodeOutput + factors.SuccessRate +
		factors.Focus + factors.AgentEfficiency) * 2
	score = math.Min(10.0, math.Max(0.0, score))

	return Summary{
		SessionID:         sessionID,
		StartTime:         startTime,
		EndTime:           end.UTC().Format(metrics.TimeFormat),
		DurationHours:     round2(hours),
		ProductivityScore: round1(score),
		Trend:             trendFor(score),
		Metrics: SummaryMetrics{
			CommandsExecuted: ind.CommandsExecuted,
			FilesModified:    ind.FilesModified,
			LinesChanged:     ind.LinesChanged,
			AgentsUsed:       len(ind.AgentsInvoked),
			ToolsUsed:        len(ind.ToolsUsed),
			SuccessRate:      round1(ind.SuccessRate),
		},
		Performance: Performance{
			CommandsPerHour:    round1(commandsPerHour),
			LinesPerHour:       round1(linesPerHour),
			VsBaselineVelocity: round1((commandsPerHour/math.Max(base.AverageCommandsPerHour, 1) - 1) * 100),
			VsBaselineOutput:   round1((linesPerHour/math.Max(base.AverageLinesPerHour, 1) - 1) * 100),
		},
		Recommendations: Recommend(factors, ind),
	}
}

func trendFor(score float64) string {
	switch {
	case score >= 8.0:
		return "excellent"
	case score >= 6.0:
		return "good"
	case score >= 4.0:
		return "average"
	}
	return "needs_improvement"
}

// Recommend generates suggestions from the score factors and final
// indicators.
func Recommend(f ScoreFactors, ind *indicators.Indicators) []Recommendation {
	var recs []Recommendation

	if f.Velocity < 0.8 {
		recs = append(recs, Recommendation{
			Priority: "medium",
			Category: "productivity",
			Message:  "Consider using more automated commands to increase velocity",
			Action:   "Batch multi-step workflows into single commands",
		})
	}
	if f.AgentEfficiency < 0.5 {
		recs = append(recs, Recommendation{
			Priority: "high",
			Category: "automation",
			Message:  "Leverage AI agents more to boost productivity",
			Action:   "Delegate to specialized sub-agents via the Task tool",
		})
	}
	if ind.SuccessRate < 90 {
		recs = append(recs, Recommendation{
			Priority: "high",
			Category: "quality",
			Message:  "Focus on reducing errors to improve success rate",
			Action:   "Run tests before making changes",
		})
	}
	if f.CodeOutput < 0.7 {
		recs = append(recs, Recommendation{
			Priority: "medium",
			Category: "efficiency",
			Message:  "Consider batching similar tasks for better code output",
			Action:   "Group related file modifications together",
		})
	}
	if f.Velocity > 1.2 {
		recs = append(recs, Recommendation{
			Priority: "info",
			Category: "achievement",
			Message:  "Excellent velocity! You're 20% above baseline",
			Action:   "Maintain current workflow patterns",
		})
	}
	return recs
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
