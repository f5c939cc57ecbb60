package metrics

import (
	"runtime"
	"time"
)

// RawInvocation is the loosely-structured payload describing one tool
// invocation, as handed to the hook by the assistant.
type RawInvocation struct {
	ToolName        string
	ToolInput       map[string]any
	Error           string  // non-empty when the tool invocation failed
	ExecutionTimeMS float64 // measured duration, if the caller has one
}

// Environment describes the runtime the hook executed under. Diagnostic
// only; nothing downstream dispatches on it.
type Environment struct {
	RuntimeVersion string `json:"runtime_version"`
	Platform       string `json:"platform"`
	Arch           string `json:"arch"`
}

// Context is the normalized view of a tool invocation.
type Context struct {
	ToolName    string
	ToolInput   map[string]any
	Error       string
	Timestamp   string
	Environment Environment
}

// BuildContext normalizes a raw invocation. Total: absent fields get
// defaults, and no input can make it fail.
func BuildContext(raw RawInvocation) Context {
	name := raw.ToolName
	if name == "" {
		name = "unknown"
	}
	input := raw.ToolInput
	if input == nil {
		input = map[string]any{}
	}
	return Context{
		ToolName:  name,
		ToolInput: input,
		Error:     raw.Error,
		Timestamp: time.Now().UTC().Format(TimeFormat),
		Environment: Environment{
			RuntimeVersion: runtime.Version(),
			Platform:       runtime.GOOS,
			Arch:           runtime.GOARCH,
		},
	}
}
