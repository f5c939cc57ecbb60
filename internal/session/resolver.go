// Package session owns session identity: resolving the active session id
// and the start/end lifecycle around the metrics store.
package session

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/ai-mesh/toolpulse/internal/metrics"
)

// FallbackID is returned when no session identifier can be resolved.
const FallbackID = "default-session"

// Resolver determines the active session identifier once per invocation.
type Resolver struct {
	envID string
	dirs  metrics.Dirs
}

// NewResolver creates a resolver. envID is the value of the live
// session-id environment variable, already read by the config layer.
func NewResolver(envID string, dirs metrics.Dirs) *Resolver {
	return &Resolver{envID: envID, dirs: dirs}
}

// Resolve returns the active session id. Never fails: the environment
// value wins, then the persisted current-session-id file, then
// FallbackID. Read errors on the file count as absent.
func (r *Resolver) Resolve() string {
	if r.envID != "" {
		return r.envID
	}
	if data, err := os.ReadFile(r.dirs.SessionIDPath()); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id
		}
	}
	return FallbackID
}

// NewID generates a fresh session identifier.
func NewID() string {
	return uuid.NewString()
}

// Persist records id as the current session for later invocations that
// run without the environment variable.
func Persist(dirs metrics.Dirs, id string) error {
	if err := os.WriteFile(dirs.SessionIDPath(), []byte(id+"\n"), 0600); err != nil {
		return fmt.Errorf("session: persist id: %w", err)
	}
	return nil
}
