package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/ai-mesh/toolpulse/internal/analytics"
	"github.com/ai-mesh/toolpulse/internal/indicators"
	"github.com/ai-mesh/toolpulse/internal/metrics"
)

// StartRecord is the JSON document written for each new session.
type StartRecord struct {
	SessionID        string `json:"session_id"`
	StartTime        string `json:"start_time"`
	User             string `json:"user"`
	WorkingDirectory string `json:"working_directory"`
	GitBranch        string `json:"git_branch"`
}

// Start provisions a new tracking session: generates an id, persists it
// for later hook invocations, snapshots the baseline, and arms the
// dashboard sentinel.
func Start(dirs metrics.Dirs, user string) (*StartRecord, error) {
	if err := metrics.EnsureDirs(dirs); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}

	now := time.Now().UTC().Format(metrics.TimeFormat)
	rec := &StartRecord{
		SessionID:        NewID(),
		StartTime:        now,
		User:             user,
		WorkingDirectory: workingDirectory(),
		GitBranch:        gitBranch(),
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("session: marshal record: %w", err)
	}
	if err := os.WriteFile(dirs.SessionRecordPath(rec.SessionID), data, 0600); err != nil {
		return nil, fmt.Errorf("session: write record: %w", err)
	}

	streamLine, err := json.Marshal(map[string]string{
		"event":             "session_start",
		"timestamp":         rec.StartTime,
		"session_id":        rec.SessionID,
		"user":              rec.User,
		"git_branch":        rec.GitBranch,
		"working_directory": rec.WorkingDirectory,
	})
	if err != nil {
		return nil, fmt.Errorf("session: marshal stream line: %w", err)
	}
	if err := os.WriteFile(dirs.SessionStreamPath(rec.SessionID), append(streamLine, '\n'), 0600); err != nil {
		return nil, fmt.Errorf("session: write stream: %w", err)
	}

	if err := Persist(dirs, rec.SessionID); err != nil {
		return nil, err
	}

	// Snapshot the rolling baseline for end-of-session comparison.
	base := analytics.LoadBaseline(dirs.HistoricalBaselinePath())
	if err := analytics.SaveBaseline(dirs.CurrentBaselinePath(), base); err != nil {
		return nil, err
	}

	sentinel := fmt.Sprintf("active_since:%s\n", now)
	if err := os.WriteFile(dirs.DashboardSentinelPath(), []byte(sentinel), 0600); err != nil {
		return nil, fmt.Errorf("session: arm dashboard sentinel: %w", err)
	}

	activity := fmt.Sprintf("%s|session_start|new_session|active\n", now)
	if err := appendFile(dirs.ActivityLogPath(), activity); err != nil {
		return nil, err
	}
	progress := fmt.Sprintf("🚀 [%s] Productivity tracking session started\n",
		time.Now().Format("15:04:05"))
	if err := appendFile(dirs.RealtimeLogPath(), progress); err != nil {
		return nil, err
	}

	return rec, nil
}

// End finalizes the current session: scores it against the baseline,
// appends the summary to history, recomputes the rolling baseline, and
// disarms the dashboard sentinel.
func End(dirs metrics.Dirs, store indicators.Store) (*analytics.Summary, error) {
	id, err := currentID(dirs)
	if err != nil {
		return nil, err
	}

	rec, err := loadRecord(dirs, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ind, err := store.Load()
	if err != nil {
		return nil, err
	}
	if ind == nil {
		ind = indicators.New(rec.StartTime)
	}

	base := analytics.LoadBaseline(dirs.CurrentBaselinePath())
	summary := analytics.Summarize(id, rec.StartTime, now, ind, base)

	if err := analytics.AppendHistory(dirs.HistoryPath(), summary); err != nil {
		return nil, err
	}

	history, err := analytics.LoadHistory(dirs.HistoryPath())
	if err != nil {
		return nil, err
	}
	if newBase, ok := analytics.RecomputeBaseline(history, now); ok {
		if err := analytics.SaveBaseline(dirs.HistoricalBaselinePath(), newBase); err != nil {
			return nil, err
		}
	}

	cleanup(dirs, id, now)
	return &summary, nil
}

// currentID reads the persisted session id; an absent file means no
// session was started.
func currentID(dirs metrics.Dirs) (string, error) {
	data, err := os.ReadFile(dirs.SessionIDPath())
	if err != nil {
		return "", fmt.Errorf("session: no active session: %w", err)
	}
	id := strings.TrimSpace(string(data))
	if id == "" {
		return "", fmt.Errorf("session: no active session")
	}
	return id, nil
}

func loadRecord(dirs metrics.Dirs, id string) (*StartRecord, error) {
	data, err := os.ReadFile(dirs.SessionRecordPath(id))
	if err != nil {
		return nil, fmt.Errorf("session: load record for %s: %w", id, err)
	}
	var rec StartRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("session: parse record for %s: %w", id, err)
	}
	return &rec, nil
}

// cleanup disarms the sentinel and archives the activity log. Best-effort:
// the summary is already durable at this point.
func cleanup(dirs metrics.Dirs, id string, now time.Time) {
	_ = os.Remove(dirs.DashboardSentinelPath())

	activity := dirs.ActivityLogPath()
	if _, err := os.Stat(activity); err != nil {
		return
	}
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	archive := fmt.Sprintf("%s/activity_%s_%s.log",
		dirs.ArchivesDir(), short, now.Format("20060102_150405"))
	_ = os.Rename(activity, archive)
}

func appendFile(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("session: open %s: %w", path, err)
	}
	if _, err := f.WriteString(line); err != nil {
		f.Close()
		return fmt.Errorf("session: append %s: %w", path, err)
	}
	return f.Close()
}

func workingDirectory() string {
	wd, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	return wd
}

// gitBranch returns the current branch, or "unknown" outside a repo.
func gitBranch() string {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "git", "rev-parse", "--abbrev-ref", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}
