// Package indicators maintains the productivity summary derived
// incrementally from the event stream.
package indicators

import (
	"fmt"
	"math"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ai-mesh/toolpulse/internal/metrics"
)

// Aggregator folds tool events into the indicators document. Best-effort
// by contract: Update logs failures as warnings and swallows them, so a
// broken indicators file never fails the pipeline.
type Aggregator struct {
	store Store
	dirs  metrics.Dirs
	log   *zap.Logger
}

// NewAggregator creates an aggregator over the given store. The dirs are
// only used for the dashboard sentinel and realtime log.
func NewAggregator(store Store, dirs metrics.Dirs, log *zap.Logger) *Aggregator {
	return &Aggregator{store: store, dirs: dirs, log: log}
}

// Update applies one event. Never returns an error and never panics the
// caller's invariants: all failures are logged and dropped.
func (a *Aggregator) Update(ev metrics.ToolEvent) {
	if err := a.update(ev); err != nil {
		a.log.Warn("indicators update failed", zap.Error(err))
	}
}

func (a *Aggregator) update(ev metrics.ToolEvent) error {
	ind, err := a.store.Load()
	if err != nil {
		return err
	}
	if ind == nil {
		ind = New(ev.Timestamp)
	}

	ind.CommandsExecuted++
	ts := ev.Timestamp
	ind.LastActivity = &ts
	ind.ToolsUsed[ev.ToolName]++

	switch m := ev.Metrics.(type) {
	case metrics.EditMetrics:
		// Edit and Write events always carry the file path field.
		ind.FilesModified++
		ind.LinesChanged += abs(m.NetLines)
	case metrics.WriteMetrics:
		ind.FilesModified++
		ind.LinesChanged += m.LinesWritten
	case metrics.TaskMetrics:
		ind.AgentsInvoked[m.SubagentType]++
	}

	// Decaying penalty: failures subtract 1/n of a point, successes never
	// restore it. The dashboard depends on this exact shape.
	if !ev.Success {
		ind.SuccessRate = math.Max(0, ind.SuccessRate-1.0/float64(ind.CommandsExecuted))
	}

	if err := a.store.Save(ind); err != nil {
		return err
	}

	a.notifyDashboard(ev.ToolName, ind)
	return nil
}

// notifyDashboard appends a progress line to the realtime log when the
// dashboard sentinel is present. Best-effort.
func (a *Aggregator) notifyDashboard(tool string, ind *Indicators) {
	if _, err := os.Stat(a.dirs.DashboardSentinelPath()); err != nil {
		return
	}

	line := fmt.Sprintf("📊 [%s] %s completed - Productivity: %d commands, %d files\n",
		time.Now().Format("15:04:05"), tool, ind.CommandsExecuted, ind.FilesModified)

	f, err := os.OpenFile(a.dirs.RealtimeLogPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		a.log.Warn("realtime log open failed", zap.Error(err))
		return
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		a.log.Warn("realtime log write failed", zap.Error(err))
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
