package indicators

import (
	"math"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/ai-mesh/toolpulse/internal/metrics"
)

// memStore is an in-memory Store double.
type memStore struct {
	ind     *Indicators
	loadErr error
	saveErr error
	saves   int
}

func (s *memStore) Load() (*Indicators, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.ind, nil
}

func (s *memStore) Save(ind *Indicators) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.ind = ind
	s.saves++
	return nil
}

func newTestAggregator(t *testing.T, store Store) *Aggregator {
	t.Helper()
	return NewAggregator(store, metrics.Dirs{Root: t.TempDir()}, zap.NewNop())
}

func toolEvent(name string, success bool, m metrics.Metrics) metrics.ToolEvent {
	return metrics.ToolEvent{
		Timestamp: "2026-08-23T10:00:00.000Z",
		ToolName:  name,
		Success:   success,
		Metrics:   m,
	}
}

func TestUpdateInitializesDocument(t *testing.T) {
	store := &memStore{}
	agg := newTestAggregator(t, store)

	agg.Update(toolEvent("Read", true, metrics.ReadMetrics{}))

	ind := store.ind
	if ind == nil {
		t.Fatal("document not created")
	}
	if ind.SessionStart != "2026-08-23T10:00:00.000Z" {
		t.Errorf("session_start = %q", ind.SessionStart)
	}
	if ind.CommandsExecuted != 1 {
		t.Errorf("commands_executed = %d, want 1", ind.CommandsExecuted)
	}
	if ind.ToolsUsed["Read"] != 1 {
		t.Errorf("tools_used[Read] = %d, want 1", ind.ToolsUsed["Read"])
	}
	if ind.SuccessRate != 100.0 {
		t.Errorf("success_rate = %v, want 100", ind.SuccessRate)
	}
	if ind.LastActivity == nil || *ind.LastActivity != "2026-08-23T10:00:00.000Z" {
		t.Errorf("last_activity = %v", ind.LastActivity)
	}
}

func TestUpdateEditAndWriteCounters(t *testing.T) {
	store := &memStore{}
	agg := newTestAggregator(t, store)

	agg.Update(toolEvent("Edit", true, metrics.EditMetrics{NetLines: -3}))
	agg.Update(toolEvent("Write", true, metrics.WriteMetrics{LinesWritten: 10}))

	ind := store.ind
	if ind.FilesModified != 2 {
		t.Errorf("files_modified = %d, want 2", ind.FilesModified)
	}
	// net_lines contributes its magnitude
	if ind.LinesChanged != 13 {
		t.Errorf("lines_changed = %d, want 13", ind.LinesChanged)
	}
}

func TestUpdateAgentCounter(t *testing.T) {
	store := &memStore{}
	agg := newTestAggregator(t, store)

	agg.Update(toolEvent("Task", true, metrics.TaskMetrics{SubagentType: "code-reviewer", Delegation: true}))
	agg.Update(toolEvent("Task", true, metrics.TaskMetrics{SubagentType: "code-reviewer", Delegation: true}))

	if store.ind.AgentsInvoked["code-reviewer"] != 2 {
		t.Errorf("agents_invoked = %v", store.ind.AgentsInvoked)
	}
	if store.ind.FilesModified != 0 {
		t.Errorf("delegation must not count as file modification")
	}
}

// Two failures from a fresh document land at exactly 98.5:
// 100 - 1/1 = 99, then 99 - 1/2 = 98.5.
func TestSuccessRateDecay(t *testing.T) {
	store := &memStore{}
	agg := newTestAggregator(t, store)

	agg.Update(toolEvent("Bash", false, metrics.BashMetrics{}))
	if got := store.ind.SuccessRate; got != 99.0 {
		t.Fatalf("after first failure rate = %v, want 99", got)
	}

	agg.Update(toolEvent("Bash", false, metrics.BashMetrics{}))
	if got := store.ind.SuccessRate; got != 98.5 {
		t.Fatalf("after second failure rate = %v, want 98.5", got)
	}
}

func TestSuccessRateNeverRecoversAndNeverNegative(t *testing.T) {
	store := &memStore{ind: &Indicators{
		SessionStart:  "2026-08-23T10:00:00.000Z",
		ToolsUsed:     map[string]int{},
		AgentsInvoked: map[string]int{},
		SuccessRate:   0.2,
	}}
	agg := newTestAggregator(t, store)

	prev := store.ind.SuccessRate
	for i := 0; i < 10; i++ {
		success := i%2 == 0
		agg.Update(toolEvent("Bash", success, metrics.BashMetrics{}))
		cur := store.ind.SuccessRate
		if cur > prev {
			t.Fatalf("rate increased from %v to %v", prev, cur)
		}
		if cur < 0 {
			t.Fatalf("rate went negative: %v", cur)
		}
		if success && cur != prev {
			t.Fatalf("success changed the rate from %v to %v", prev, cur)
		}
		prev = cur
	}
	if math.Signbit(store.ind.SuccessRate) {
		t.Errorf("rate is negative zero")
	}
}

func TestUpdateSwallowsStoreErrors(t *testing.T) {
	store := &memStore{loadErr: os.ErrPermission}
	agg := newTestAggregator(t, store)

	// must not panic and must not save
	agg.Update(toolEvent("Read", true, metrics.ReadMetrics{}))
	if store.saves != 0 {
		t.Errorf("saved despite load failure")
	}
}

func TestNotifyDashboard(t *testing.T) {
	store := &memStore{}
	dirs := metrics.Dirs{Root: t.TempDir()}
	agg := NewAggregator(store, dirs, zap.NewNop())

	// no sentinel, no realtime log
	agg.Update(toolEvent("Read", true, metrics.ReadMetrics{}))
	if _, err := os.Stat(dirs.RealtimeLogPath()); !os.IsNotExist(err) {
		t.Fatal("realtime log written without sentinel")
	}

	if err := os.WriteFile(dirs.DashboardSentinelPath(), []byte("active_since:now\n"), 0600); err != nil {
		t.Fatal(err)
	}
	agg.Update(toolEvent("Edit", true, metrics.EditMetrics{NetLines: 1}))

	data, err := os.ReadFile(dirs.RealtimeLogPath())
	if err != nil {
		t.Fatal(err)
	}
	line := string(data)
	if !strings.Contains(line, "Edit completed") || !strings.Contains(line, "2 commands, 1 files") {
		t.Errorf("unexpected realtime line: %q", line)
	}
}
