package cli

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ai-mesh/toolpulse/internal/config"
	"github.com/ai-mesh/toolpulse/internal/indicators"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check store readiness and diagnose configuration issues",
	RunE:  runDoctor,
}

type checkResult struct {
	label  string
	ok     bool
	detail string
	fix    string
}

func runDoctor(cmd *cobra.Command, args []string) error {
	var checks []checkResult

	cfg, err := config.Load()
	if err != nil {
		checks = append(checks, checkResult{
			label:  "configuration",
			ok:     false,
			detail: err.Error(),
			fix:    "fix or remove " + config.FilePath(),
		})
		printChecks(checks)
		return fmt.Errorf("configuration is broken")
	}
	checks = append(checks, checkResult{
		label:  "configuration",
		ok:     true,
		detail: config.FilePath(),
	})

	dirs := cfg.Dirs()
	if info, err := os.Stat(dirs.Root); err == nil && info.IsDir() {
		checks = append(checks, checkResult{label: "metrics store", ok: true, detail: dirs.Root})
	} else {
		checks = append(checks, checkResult{
			label:  "metrics store",
			ok:     false,
			detail: "missing",
			fix:    "toolpulse init",
		})
	}

	if info, err := os.Stat(dirs.EventLogPath()); err == nil {
		checks = append(checks, checkResult{
			label:  "event log",
			ok:     true,
			detail: fmt.Sprintf("%s (%s)", dirs.EventLogPath(), humanize.Bytes(uint64(info.Size()))),
		})
	} else {
		checks = append(checks, checkResult{
			label:  "event log",
			ok:     true,
			detail: "no events recorded yet",
		})
	}

	if _, err := indicators.NewFileStore(dirs.IndicatorsPath()).Load(); err != nil {
		checks = append(checks, checkResult{
			label:  "indicators document",
			ok:     false,
			detail: err.Error(),
			fix:    "remove " + dirs.IndicatorsPath(),
		})
	} else {
		checks = append(checks, checkResult{label: "indicators document", ok: true, detail: dirs.IndicatorsPath()})
	}

	if data, err := os.ReadFile(dirs.SessionIDPath()); err == nil && len(data) > 0 {
		checks = append(checks, checkResult{label: "active session", ok: true, detail: "session id persisted"})
	} else {
		checks = append(checks, checkResult{
			label:  "active session",
			ok:     false,
			detail: "none",
			fix:    "toolpulse session start",
		})
	}

	if cfg.Remote.Endpoint == "" {
		checks = append(checks, checkResult{
			label:  "remote endpoint",
			ok:     true,
			detail: "not configured, events stay local",
		})
	} else {
		checks = append(checks, checkResult{label: "remote endpoint", ok: true, detail: cfg.Remote.Endpoint})
	}

	printChecks(checks)

	for _, c := range checks {
		if !c.ok {
			return fmt.Errorf("%d check(s) failed", countFailed(checks))
		}
	}
	return nil
}

func printChecks(checks []checkResult) {
	for _, c := range checks {
		mark := "✓"
		if !c.ok {
			mark = "✗"
		}
		fmt.Printf("%s %-22s %s\n", mark, c.label, c.detail)
		if !c.ok && c.fix != "" {
			fmt.Printf("    fix: %s\n", c.fix)
		}
	}
}

func countFailed(checks []checkResult) int {
	n := 0
	for _, c := range checks {
		if !c.ok {
			n++
		}
	}
	return n
}
