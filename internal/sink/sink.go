// Package sink durably records event records, attempting remote
// submission first and degrading to the local append-only store.
package sink

import (
	"context"

	"github.com/ai-mesh/toolpulse/internal/metrics"
)

// Sink is a destination for event records.
type Sink interface {
	// Record persists one event record.
	Record(ctx context.Context, rec metrics.Record) error
}

// Methods reported in an Outcome.
const (
	MethodRemote        = "remote"
	MethodLocalFallback = "local_fallback"
)

// Outcome reports how a record landed. The fallback sink converts every
// failure into an Outcome instead of returning an error.
type Outcome struct {
	Success bool
	Method  string
	Message string
	Err     error
}
