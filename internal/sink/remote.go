package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ai-mesh/toolpulse/internal/metrics"
)

// Remote submits event records to the metrics API as JSON. Submission is
// bounded by the client timeout; the caller falls back to local storage
// on any error.
type Remote struct {
	endpoint string
	client   *http.Client
}

// NewRemote creates a remote sink for the given endpoint.
func NewRemote(endpoint string, timeout time.Duration) *Remote {
	return &Remote{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Record implements Sink. Transport errors and non-2xx responses are
// errors; an unconfigured endpoint is too, so deployments without a
// metrics API go straight to the local store.
func (r *Remote) Record(ctx context.Context, rec metrics.Record) error {
	if r.endpoint == "" {
		return errors.New("sink: remote endpoint not configured")
	}

	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("sink: marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sink: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("sink: submit: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sink: remote returned %s", resp.Status)
	}
	return nil
}
