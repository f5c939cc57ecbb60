package metrics

import "encoding/json"

// TimeFormat is the timestamp layout used for every event and activity line.
const TimeFormat = "2006-01-02T15:04:05.000Z"

// Event type tags as they appear in the event_type field.
const (
	EventToolExecution   = "tool_execution"
	EventAgentInvocation = "agent_invocation"
)

// Record is one durable entry in the JSONL event log. Records are
// append-only: built once, written once, never mutated.
type Record interface {
	// Kind returns the event_type tag.
	Kind() string
	// EventTime returns the event timestamp in TimeFormat.
	EventTime() string
	// ActivityLabel returns the tool or agent name used in the
	// pipe-delimited activity log line.
	ActivityLabel() string
	// Status returns "success" or "failure" for the activity log line.
	Status() string
}

// ToolEvent is the primary record produced for every tool invocation.
// Tool-specific metric fields are spliced into the marshaled object after
// the base fields, keeping the wire layout of the shared store.
type ToolEvent struct {
	Timestamp       string
	ToolName        string
	Success         bool
	ExecutionTimeMS int64
	User            string
	SessionID       string
	Metrics         Metrics
	Err             string // error message when the invocation failed
}

// Kind implements Record.
func (e ToolEvent) Kind() string { return EventToolExecution }

// EventTime implements Record.
func (e ToolEvent) EventTime() string { return e.Timestamp }

// ActivityLabel implements Record.
func (e ToolEvent) ActivityLabel() string { return e.ToolName }

// Status implements Record.
func (e ToolEvent) Status() string { return statusString(e.Success) }

type toolEventHead struct {
	EventType       string `json:"event_type"`
	Timestamp       string `json:"timestamp"`
	ToolName        string `json:"tool_name"`
	Success         bool   `json:"success"`
	ExecutionTimeMS int64  `json:"execution_time_ms"`
	User            string `json:"user"`
	SessionID       string `json:"session_id"`
}

type eventError struct {
	Error        bool   `json:"error"`
	ErrorMessage string `json:"error_message"`
}

// MarshalJSON emits base fields, then tool-specific metric fields, then
// error fields, as a single flat object.
func (e ToolEvent) MarshalJSON() ([]byte, error) {
	out, err := json.Marshal(toolEventHead{
		EventType:       EventToolExecution,
		Timestamp:       e.Timestamp,
		ToolName:        e.ToolName,
		Success:         e.Success,
		ExecutionTimeMS: e.ExecutionTimeMS,
		User:            e.User,
		SessionID:       e.SessionID,
	})
	if err != nil {
		return nil, err
	}
	if e.Metrics != nil {
		mb, err := json.Marshal(e.Metrics)
		if err != nil {
			return nil, err
		}
		out = spliceObjects(out, mb)
	}
	if e.Err != "" {
		eb, err := json.Marshal(eventError{Error: true, ErrorMessage: e.Err})
		if err != nil {
			return nil, err
		}
		out = spliceObjects(out, eb)
	}
	return out, nil
}

// AgentEvent is the secondary record produced when the delegation tool
// (Task) hands work to a sub-agent.
type AgentEvent struct {
	EventType       string `json:"event_type"`
	Timestamp       string `json:"timestamp"`
	AgentName       string `json:"agent_name"`
	TaskDescription string `json:"task_description"`
	Success         bool   `json:"success"`
	ExecutionTimeMS int64  `json:"execution_time_ms"`
}

// NewAgentEvent builds the secondary record for a Task invocation.
func NewAgentEvent(timestamp, agentName, description string, success bool, executionTimeMS int64) AgentEvent {
	return AgentEvent{
		EventType:       EventAgentInvocation,
		Timestamp:       timestamp,
		AgentName:       agentName,
		TaskDescription: description,
		Success:         success,
		ExecutionTimeMS: executionTimeMS,
	}
}

// Kind implements Record.
func (e AgentEvent) Kind() string { return EventAgentInvocation }

// EventTime implements Record.
func (e AgentEvent) EventTime() string { return e.Timestamp }

// ActivityLabel implements Record.
func (e AgentEvent) ActivityLabel() string { return e.AgentName }

// Status implements Record.
func (e AgentEvent) Status() string { return statusString(e.Success) }

func statusString(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// spliceObjects concatenates two marshaled JSON objects into one,
// preserving field order. Empty objects pass through.
func spliceObjects(a, b []byte) []byte {
	if len(b) <= 2 {
		return a
	}
	if len(a) <= 2 {
		return b
	}
	merged := make([]byte, 0, len(a)+len(b))
	merged = append(merged, a[:len(a)-1]...)
	merged = append(merged, ',')
	merged = append(merged, b[1:]...)
	return merged
}
