package sink

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ai-mesh/toolpulse/internal/metrics"
)

// Fallback records remotely first and degrades to the local store. It
// never propagates a failure: the caller always gets an Outcome.
type Fallback struct {
	remote Sink
	local  Sink
	log    *zap.Logger
}

// NewFallback composes a remote and a local sink.
func NewFallback(remote, local Sink, log *zap.Logger) *Fallback {
	return &Fallback{remote: remote, local: local, log: log}
}

// Record attempts remote submission, then local persistence. Success
// means either path completed; if both fail, the Outcome carries the
// local error.
func (f *Fallback) Record(ctx context.Context, rec metrics.Record) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{
				Success: false,
				Method:  MethodLocalFallback,
				Message: "sink panicked",
				Err:     fmt.Errorf("sink: panic: %v", r),
			}
		}
	}()

	remoteErr := f.remote.Record(ctx, rec)
	if remoteErr == nil {
		return Outcome{Success: true, Method: MethodRemote}
	}
	f.log.Debug("remote submission failed, falling back", zap.Error(remoteErr))

	if err := f.local.Record(ctx, rec); err != nil {
		return Outcome{
			Success: false,
			Method:  MethodLocalFallback,
			Message: "local fallback failed",
			Err:     err,
		}
	}
	return Outcome{
		Success: true,
		Method:  MethodLocalFallback,
		Message: fmt.Sprintf("remote failed: %v", remoteErr),
	}
}
