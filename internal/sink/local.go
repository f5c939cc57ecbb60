package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ai-mesh/toolpulse/internal/metrics"
)

// Local appends event records to the on-disk store: one JSON line in the
// event log and one pipe-delimited line in the activity log. At-least-once:
// a retried call appends again, no deduplication.
type Local struct {
	dirs metrics.Dirs
}

// NewLocal creates a local sink over the given store layout.
func NewLocal(dirs metrics.Dirs) *Local {
	return &Local{dirs: dirs}
}

// Record implements Sink.
func (l *Local) Record(_ context.Context, rec metrics.Record) error {
	if err := metrics.EnsureDirs(l.dirs); err != nil {
		return fmt.Errorf("sink: %w", err)
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("sink: marshal event: %w", err)
	}
	if err := appendLine(l.dirs.EventLogPath(), append(line, '\n')); err != nil {
		return err
	}

	activity := fmt.Sprintf("%s|tool_complete|%s|%s\n",
		rec.EventTime(), rec.ActivityLabel(), rec.Status())
	return appendLine(l.dirs.ActivityLogPath(), []byte(activity))
}

// appendLine writes one line in append mode. Append-mode writes are the
// only cross-process coordination the store relies on.
func appendLine(path string, line []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("sink: open %s: %w", path, err)
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("sink: append %s: %w", path, err)
	}
	return f.Close()
}
