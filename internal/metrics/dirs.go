package metrics

import (
	"fmt"
	"os"
	"path/filepath"
)

// dirPerm is the permission for store-managed directories.
const dirPerm = 0750

// Dirs holds the on-disk metrics store layout. All paths derive from Root,
// which defaults to ~/.ai-mesh/metrics. The layout is shared with the
// dashboard and must not change shape.
type Dirs struct {
	Root string
}

// DefaultDirs returns the store rooted at ~/.ai-mesh/metrics.
// Falls back to a relative path if the home directory cannot be resolved.
func DefaultDirs() Dirs {
	home, err := os.UserHomeDir()
	if err != nil {
		return Dirs{Root: filepath.Join(".ai-mesh", "metrics")}
	}
	return Dirs{Root: filepath.Join(home, ".ai-mesh", "metrics")}
}

// EventLogPath returns the path to the append-only JSONL event log.
func (d Dirs) EventLogPath() string {
	return filepath.Join(d.Root, "tool-metrics.jsonl")
}

// RealtimeDir returns the directory holding the tailing-oriented activity log.
func (d Dirs) RealtimeDir() string {
	return filepath.Join(d.Root, "realtime")
}

// ActivityLogPath returns the path to the pipe-delimited activity log.
func (d Dirs) ActivityLogPath() string {
	return filepath.Join(d.RealtimeDir(), "activity.log")
}

// IndicatorsPath returns the path to the productivity indicators document.
func (d Dirs) IndicatorsPath() string {
	return filepath.Join(d.Root, "productivity-indicators.json")
}

// SessionIDPath returns the path to the persisted current-session-id file.
func (d Dirs) SessionIDPath() string {
	return filepath.Join(d.Root, ".current-session-id")
}

// DashboardSentinelPath returns the path to the presence-only sentinel that
// marks an active dashboard.
func (d Dirs) DashboardSentinelPath() string {
	return filepath.Join(d.Root, ".dashboard-active")
}

// RealtimeLogPath returns the path to the human-readable progress log,
// written only while the dashboard sentinel is present.
func (d Dirs) RealtimeLogPath() string {
	return filepath.Join(d.Root, "realtime.log")
}

// SessionsDir returns the directory holding per-session records.
func (d Dirs) SessionsDir() string {
	return filepath.Join(d.Root, "sessions")
}

// SessionRecordPath returns the path to the JSON record for a session.
func (d Dirs) SessionRecordPath(sessionID string) string {
	return filepath.Join(d.SessionsDir(), sessionID+".json")
}

// SessionStreamPath returns the path to the per-session JSONL event stream.
func (d Dirs) SessionStreamPath(sessionID string) string {
	return filepath.Join(d.SessionsDir(), sessionID+".jsonl")
}

// HistoryPath returns the path to the session-history JSONL file.
func (d Dirs) HistoryPath() string {
	return filepath.Join(d.Root, "session-history.jsonl")
}

// HistoricalBaselinePath returns the path to the rolling baseline document.
func (d Dirs) HistoricalBaselinePath() string {
	return filepath.Join(d.Root, "historical-baseline.json")
}

// CurrentBaselinePath returns the path to the baseline snapshot taken at
// session start.
func (d Dirs) CurrentBaselinePath() string {
	return filepath.Join(d.Root, "current-baseline.json")
}

// ArchivesDir returns the directory holding archived activity logs.
func (d Dirs) ArchivesDir() string {
	return filepath.Join(d.Root, "archives")
}

// EnsureDirs creates all required directories. Idempotent.
func EnsureDirs(d Dirs) error {
	dirs := []string{
		d.Root,
		d.RealtimeDir(),
		d.SessionsDir(),
		d.ArchivesDir(),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
