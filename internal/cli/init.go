package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ai-mesh/toolpulse/internal/config"
	"github.com/ai-mesh/toolpulse/internal/metrics"
)

const defaultConfigYAML = `# toolpulse configuration. Environment variables win over this file.
#
# metrics_dir: /custom/path/to/metrics
# log_level: warn
# latency_budget: 50ms
remote:
  # endpoint: https://metrics.example.com/v1/events
  timeout: 5s
`

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the metrics store and a starter config",
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	dirs := cfg.Dirs()

	if err := metrics.EnsureDirs(dirs); err != nil {
		return err
	}
	fmt.Printf("✓ metrics store at %s\n", dirs.Root)

	cfgPath := config.FilePath()
	if _, err := os.Stat(cfgPath); err == nil {
		fmt.Printf("✓ config already present at %s\n", cfgPath)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(cfgPath), 0750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(cfgPath, []byte(defaultConfigYAML), 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Printf("✓ wrote starter config to %s\n", cfgPath)
	return nil
}
