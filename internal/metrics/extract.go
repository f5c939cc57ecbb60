package metrics

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// DelegationTool is the tool whose invocations delegate to a sub-agent and
// produce a secondary agent_invocation record.
const DelegationTool = "Task"

// ToolKind is the closed set of tool names with dedicated metric
// extraction. Anything else falls through to KindUnknown.
type ToolKind int

const (
	KindUnknown ToolKind = iota
	KindRead
	KindEdit
	KindWrite
	KindBash
	KindTask
)

// KindOf maps a tool name to its kind.
func KindOf(name string) ToolKind {
	switch name {
	case "Read":
		return KindRead
	case "Edit":
		return KindEdit
	case "Write":
		return KindWrite
	case "Bash":
		return KindBash
	case DelegationTool:
		return KindTask
	}
	return KindUnknown
}

// Metrics is the tool-specific field group of an event record. The set of
// implementations is closed: one per ToolKind.
type Metrics interface {
	metricsVariant()
}

// ReadMetrics are the fields extracted for Read invocations.
type ReadMetrics struct {
	FilePath       string `json:"file_path"`
	FileSizeBytes  int64  `json:"file_size_bytes"`
	LinesRequested any    `json:"lines_requested"` // limit argument, or "all"
}

func (ReadMetrics) metricsVariant() {}

// EditMetrics are the fields extracted for Edit invocations.
type EditMetrics struct {
	FilePath     string `json:"file_path"`
	LinesAdded   int    `json:"lines_added"`
	LinesRemoved int    `json:"lines_removed"`
	NetLines     int    `json:"net_lines"`
	ReplaceAll   bool   `json:"replace_all"`
}

func (EditMetrics) metricsVariant() {}

// WriteMetrics are the fields extracted for Write invocations.
type WriteMetrics struct {
	FilePath      string `json:"file_path"`
	ContentLength int    `json:"content_length"`
	LinesWritten  int    `json:"lines_written"`
	FileType      string `json:"file_type"`
}

func (WriteMetrics) metricsVariant() {}

// BashMetrics are the fields extracted for Bash invocations.
type BashMetrics struct {
	Command     string `json:"command"`
	CommandType string `json:"command_type"`
	Background  bool   `json:"background"`
	Timeout     any    `json:"timeout"` // timeout argument, or null
}

func (BashMetrics) metricsVariant() {}

// TaskMetrics are the fields extracted for Task (delegation) invocations.
type TaskMetrics struct {
	SubagentType    string `json:"subagent_type"`
	TaskDescription string `json:"task_description"`
	Delegation      bool   `json:"delegation"`
}

func (TaskMetrics) metricsVariant() {}

// GenericMetrics are the fields recorded for any other tool: the input
// field names only, never their values.
type GenericMetrics struct {
	GenericTool bool     `json:"generic_tool"`
	InputFields []string `json:"input_fields"`
}

func (GenericMetrics) metricsVariant() {}

// Extract derives the tool-specific metric fields from a normalized
// context. Total: unknown tools get GenericMetrics, missing or mistyped
// input fields get zero values, and stat failures count as size 0.
func Extract(ctx Context) Metrics {
	switch KindOf(ctx.ToolName) {
	case KindRead:
		return extractRead(ctx.ToolInput)
	case KindEdit:
		return extractEdit(ctx.ToolInput)
	case KindWrite:
		return extractWrite(ctx.ToolInput)
	case KindBash:
		return extractBash(ctx.ToolInput)
	case KindTask:
		return extractTask(ctx.ToolInput)
	}
	return extractGeneric(ctx.ToolInput)
}

func extractRead(in map[string]any) ReadMetrics {
	path := stringField(in, "file_path")

	var size int64
	if path != "" {
		if info, err := os.Stat(path); err == nil {
			size = info.Size()
		}
	}

	var requested any = "all"
	if v, ok := in["limit"]; ok && v != nil {
		requested = v
	}

	return ReadMetrics{
		FilePath:       path,
		FileSizeBytes:  size,
		LinesRequested: requested,
	}
}

func extractEdit(in map[string]any) EditMetrics {
	added := CountLines(stringField(in, "new_string"))
	removed := CountLines(stringField(in, "old_string"))
	return EditMetrics{
		FilePath:     stringField(in, "file_path"),
		LinesAdded:   added,
		LinesRemoved: removed,
		NetLines:     added - removed,
		ReplaceAll:   boolField(in, "replace_all"),
	}
}

func extractWrite(in map[string]any) WriteMetrics {
	path := stringField(in, "file_path")
	content := stringField(in, "content")

	fileType := "unknown"
	if path != "" {
		fileType = filepath.Ext(path)
	}

	return WriteMetrics{
		FilePath:      path,
		ContentLength: utf8.RuneCountInString(content),
		LinesWritten:  CountLines(content),
		FileType:      fileType,
	}
}

func extractBash(in map[string]any) BashMetrics {
	command := stringField(in, "command")

	commandType := "unknown"
	if fields := strings.Fields(command); len(fields) > 0 {
		commandType = fields[0]
	}

	var timeout any
	if v, ok := in["timeout"]; ok {
		timeout = v
	}

	return BashMetrics{
		Command:     command,
		CommandType: commandType,
		Background:  boolField(in, "run_in_background"),
		Timeout:     timeout,
	}
}

func extractTask(in map[string]any) TaskMetrics {
	subagent := stringField(in, "subagent_type")
	if subagent == "" {
		subagent = "unknown"
	}
	return TaskMetrics{
		SubagentType:    subagent,
		TaskDescription: stringField(in, "description"),
		Delegation:      true,
	}
}

func extractGeneric(in map[string]any) GenericMetrics {
	fields := make([]string, 0, len(in))
	for k := range in {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return GenericMetrics{GenericTool: true, InputFields: fields}
}

// CountLines counts newline-separated segments. Empty strings count as 0
// lines, not 1, so an absent value and an empty value agree.
func CountLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

func stringField(in map[string]any, key string) string {
	if v, ok := in[key].(string); ok {
		return v
	}
	return ""
}

func boolField(in map[string]any, key string) bool {
	if v, ok := in[key].(bool); ok {
		return v
	}
	return false
}
