// Package pipeline sequences one tool invocation through context
// building, metric extraction, sinking, and indicator aggregation.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/ai-mesh/toolpulse/internal/metrics"
	"github.com/ai-mesh/toolpulse/internal/sink"
)

// Recorder durably records event records, reporting an Outcome instead of
// an error. Satisfied by *sink.Fallback.
type Recorder interface {
	Record(ctx context.Context, rec metrics.Record) sink.Outcome
}

// SessionResolver yields the active session id. Satisfied by
// *session.Resolver.
type SessionResolver interface {
	Resolve() string
}

// IndicatorUpdater folds events into the productivity summary. Satisfied
// by *indicators.Aggregator.
type IndicatorUpdater interface {
	Update(metrics.ToolEvent)
}

// Pipeline orchestrates a single tool-invocation record.
type Pipeline struct {
	user     string
	budget   time.Duration
	resolver SessionResolver
	sink     Recorder
	agg      IndicatorUpdater
	log      *zap.Logger
}

// New wires a pipeline. budget is the soft latency threshold; exceeding
// it logs a warning but never fails the invocation.
func New(user string, budget time.Duration, resolver SessionResolver, rec Recorder, agg IndicatorUpdater, log *zap.Logger) *Pipeline {
	return &Pipeline{
		user:     user,
		budget:   budget,
		resolver: resolver,
		sink:     rec,
		agg:      agg,
		log:      log,
	}
}

// ReportMetrics summarizes what the pipeline did with the event.
type ReportMetrics struct {
	ToolName          string
	InvocationSuccess bool
	Recorded          bool
	Method            string
}

// Report is the result of one orchestrated invocation.
type Report struct {
	Success      bool
	ElapsedMS    float64 // wall clock, rounded to 2 decimals
	MemoryDelta  uint64  // heap bytes grown during the invocation
	Metrics      ReportMetrics
	ErrorMessage string
}

// HandleInvocation processes one tool invocation end to end. It never
// returns an error and never panics: anything uncaught inside the
// sequence is converted into a failed report at this boundary.
func (p *Pipeline) HandleInvocation(ctx context.Context, raw metrics.RawInvocation) (rep Report) {
	start := time.Now()
	var before runtime.MemStats
	runtime.ReadMemStats(&before)

	defer func() {
		if r := recover(); r != nil {
			rep = Report{
				Success:      false,
				ElapsedMS:    roundMS(time.Since(start)),
				ErrorMessage: fmt.Sprintf("pipeline: %v", r),
			}
		}
	}()

	ectx := metrics.BuildContext(raw)
	ev := metrics.ToolEvent{
		Timestamp:       ectx.Timestamp,
		ToolName:        ectx.ToolName,
		Success:         ectx.Error == "",
		ExecutionTimeMS: int64(math.Round(raw.ExecutionTimeMS)),
		User:            p.user,
		SessionID:       p.resolver.Resolve(),
		Metrics:         metrics.Extract(ectx),
		Err:             ectx.Error,
	}

	// Delegations produce a secondary agent record before the primary one.
	if tm, ok := ev.Metrics.(metrics.TaskMetrics); ok {
		agent := metrics.NewAgentEvent(ev.Timestamp, tm.SubagentType, tm.TaskDescription, ev.Success, ev.ExecutionTimeMS)
		if out := p.sink.Record(ctx, agent); !out.Success {
			p.log.Warn("agent event not recorded", zap.Error(out.Err))
		}
	}

	out := p.sink.Record(ctx, ev)
	if !out.Success {
		p.log.Warn("event not recorded", zap.Error(out.Err))
	}

	p.agg.Update(ev)

	elapsed := time.Since(start)
	if elapsed > p.budget {
		p.log.Warn("invocation exceeded latency budget",
			zap.Duration("elapsed", elapsed), zap.Duration("budget", p.budget))
	}

	var after runtime.MemStats
	runtime.ReadMemStats(&after)
	var memDelta uint64
	if after.HeapAlloc > before.HeapAlloc {
		memDelta = after.HeapAlloc - before.HeapAlloc
	}

	return Report{
		Success:     true,
		ElapsedMS:   roundMS(elapsed),
		MemoryDelta: memDelta,
		Metrics: ReportMetrics{
			ToolName:          ev.ToolName,
			InvocationSuccess: ev.Success,
			Recorded:          out.Success,
			Method:            out.Method,
		},
	}
}

func roundMS(d time.Duration) float64 {
	return math.Round(d.Seconds()*1000*100) / 100
}
