package metrics

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func ctxFor(tool string, input map[string]any) Context {
	return BuildContext(RawInvocation{ToolName: tool, ToolInput: input})
}

func TestCountLines(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"a\nb", 2},
		{"a\nb\nc", 3},
		{"\n", 2},
	}
	for _, c := range cases {
		if got := CountLines(c.in); got != c.want {
			t.Errorf("CountLines(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestExtractReadMissingFile(t *testing.T) {
	m, ok := Extract(ctxFor("Read", map[string]any{
		"file_path": "/tmp/absent-toolpulse-test.txt",
	})).(ReadMetrics)
	if !ok {
		t.Fatalf("expected ReadMetrics, got %T", m)
	}
	if m.FileSizeBytes != 0 {
		t.Errorf("expected size 0 for missing file, got %d", m.FileSizeBytes)
	}
	if m.LinesRequested != "all" {
		t.Errorf("expected lines_requested %q, got %v", "all", m.LinesRequested)
	}
}

func TestExtractReadExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	if err := os.WriteFile(path, []byte("hello world"), 0600); err != nil {
		t.Fatal(err)
	}

	m := Extract(ctxFor("Read", map[string]any{
		"file_path": path,
		"limit":     float64(100),
	})).(ReadMetrics)
	if m.FileSizeBytes != 11 {
		t.Errorf("expected size 11, got %d", m.FileSizeBytes)
	}
	if m.LinesRequested != float64(100) {
		t.Errorf("expected limit passthrough, got %v", m.LinesRequested)
	}
}

func TestExtractEdit(t *testing.T) {
	m := Extract(ctxFor("Edit", map[string]any{
		"file_path":  "/src/main.go",
		"old_string": "a\nb",
		"new_string": "x",
	})).(EditMetrics)

	if m.LinesRemoved != 2 {
		t.Errorf("lines_removed = %d, want 2", m.LinesRemoved)
	}
	if m.LinesAdded != 1 {
		t.Errorf("lines_added = %d, want 1", m.LinesAdded)
	}
	if m.NetLines != -1 {
		t.Errorf("net_lines = %d, want -1", m.NetLines)
	}
	if m.ReplaceAll {
		t.Error("replace_all should default to false")
	}
}

func TestExtractEditEmptyStrings(t *testing.T) {
	m := Extract(ctxFor("Edit", map[string]any{})).(EditMetrics)
	if m.LinesAdded != 0 || m.LinesRemoved != 0 || m.NetLines != 0 {
		t.Errorf("empty edit should zero all counts, got %+v", m)
	}
}

func TestExtractWrite(t *testing.T) {
	m := Extract(ctxFor("Write", map[string]any{
		"file_path": "/src/app.tsx",
		"content":   "line1\nline2\nline3",
	})).(WriteMetrics)

	if m.LinesWritten != 3 {
		t.Errorf("lines_written = %d, want 3", m.LinesWritten)
	}
	if m.ContentLength != 17 {
		t.Errorf("content_length = %d, want 17", m.ContentLength)
	}
	if m.FileType != ".tsx" {
		t.Errorf("file_type = %q, want .tsx", m.FileType)
	}
}

func TestExtractWriteNoPath(t *testing.T) {
	m := Extract(ctxFor("Write", map[string]any{})).(WriteMetrics)
	if m.FileType != "unknown" {
		t.Errorf("file_type = %q, want unknown", m.FileType)
	}
	if m.LinesWritten != 0 {
		t.Errorf("lines_written = %d, want 0", m.LinesWritten)
	}
}

func TestExtractBash(t *testing.T) {
	m := Extract(ctxFor("Bash", map[string]any{
		"command":           "git status --short",
		"run_in_background": true,
		"timeout":           float64(30000),
	})).(BashMetrics)

	if m.CommandType != "git" {
		t.Errorf("command_type = %q, want git", m.CommandType)
	}
	if !m.Background {
		t.Error("background should be true")
	}
	if m.Timeout != float64(30000) {
		t.Errorf("timeout = %v, want 30000", m.Timeout)
	}
}

func TestExtractBashEmptyCommand(t *testing.T) {
	m := Extract(ctxFor("Bash", map[string]any{})).(BashMetrics)
	if m.CommandType != "unknown" {
		t.Errorf("command_type = %q, want unknown", m.CommandType)
	}
	if m.Timeout != nil {
		t.Errorf("timeout = %v, want nil", m.Timeout)
	}
}

func TestExtractTask(t *testing.T) {
	m := Extract(ctxFor("Task", map[string]any{
		"subagent_type": "frontend-developer",
		"description":   "Create component",
	})).(TaskMetrics)

	if m.SubagentType != "frontend-developer" {
		t.Errorf("subagent_type = %q", m.SubagentType)
	}
	if m.TaskDescription != "Create component" {
		t.Errorf("task_description = %q", m.TaskDescription)
	}
	if !m.Delegation {
		t.Error("delegation must be fixed to true")
	}
}

func TestExtractTaskDefaultsSubagent(t *testing.T) {
	m := Extract(ctxFor("Task", map[string]any{})).(TaskMetrics)
	if m.SubagentType != "unknown" {
		t.Errorf("subagent_type = %q, want unknown", m.SubagentType)
	}
}

func TestExtractGenericFallthrough(t *testing.T) {
	m, ok := Extract(ctxFor("WebSearch", map[string]any{
		"query":   "golang fsnotify",
		"results": float64(5),
	})).(GenericMetrics)
	if !ok {
		t.Fatalf("expected GenericMetrics, got %T", m)
	}
	if !m.GenericTool {
		t.Error("generic_tool must be true")
	}
	want := []string{"query", "results"}
	if !reflect.DeepEqual(m.InputFields, want) {
		t.Errorf("input_fields = %v, want %v", m.InputFields, want)
	}
}

// Extraction never dispatches on hidden state: same context, same output.
func TestExtractIdempotent(t *testing.T) {
	inputs := []Context{
		ctxFor("Edit", map[string]any{"old_string": "a\nb\nc", "new_string": "z"}),
		ctxFor("Bash", map[string]any{"command": "ls -la"}),
		ctxFor("SomethingElse", map[string]any{"x": 1, "y": 2}),
		ctxFor("", nil),
	}
	for _, ctx := range inputs {
		first := Extract(ctx)
		second := Extract(ctx)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("extraction not idempotent for %s: %v vs %v", ctx.ToolName, first, second)
		}
	}
}

func TestBuildContextDefaults(t *testing.T) {
	ctx := BuildContext(RawInvocation{})
	if ctx.ToolName != "unknown" {
		t.Errorf("tool name = %q, want unknown", ctx.ToolName)
	}
	if ctx.ToolInput == nil {
		t.Error("tool input must default to an empty map")
	}
	if ctx.Timestamp == "" {
		t.Error("timestamp must be set")
	}
	if ctx.Environment.RuntimeVersion == "" || ctx.Environment.Platform == "" {
		t.Error("environment descriptor must be populated")
	}
}
