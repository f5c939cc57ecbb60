package metrics

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDirsLayout(t *testing.T) {
	d := Dirs{Root: "/store"}
	cases := []struct {
		got, want string
	}{
		{d.EventLogPath(), "/store/tool-metrics.jsonl"},
		{d.ActivityLogPath(), "/store/realtime/activity.log"},
		{d.IndicatorsPath(), "/store/productivity-indicators.json"},
		{d.SessionIDPath(), "/store/.current-session-id"},
		{d.DashboardSentinelPath(), "/store/.dashboard-active"},
		{d.RealtimeLogPath(), "/store/realtime.log"},
		{d.SessionRecordPath("abc"), "/store/sessions/abc.json"},
		{d.SessionStreamPath("abc"), "/store/sessions/abc.jsonl"},
		{d.HistoryPath(), "/store/session-history.jsonl"},
		{d.HistoricalBaselinePath(), "/store/historical-baseline.json"},
		{d.CurrentBaselinePath(), "/store/current-baseline.json"},
		{d.ArchivesDir(), "/store/archives"},
	}
	for _, c := range cases {
		if c.got != filepath.FromSlash(c.want) {
			t.Errorf("path = %s, want %s", c.got, c.want)
		}
	}
}

func TestEnsureDirs(t *testing.T) {
	d := Dirs{Root: filepath.Join(t.TempDir(), "metrics")}
	if err := EnsureDirs(d); err != nil {
		t.Fatal(err)
	}
	for _, dir := range []string{d.Root, d.RealtimeDir(), d.SessionsDir(), d.ArchivesDir()} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("expected directory %s: %v", dir, err)
		}
	}
	// second call is a no-op
	if err := EnsureDirs(d); err != nil {
		t.Fatalf("EnsureDirs not idempotent: %v", err)
	}
}
