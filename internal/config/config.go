package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/ai-mesh/toolpulse/internal/metrics"
)

// Defaults applied after the env and file layers.
const (
	defaultLogLevel      = "warn"
	defaultRemoteTimeout = 5 * time.Second
	defaultLatencyBudget = 50 * time.Millisecond
)

// RemoteConfig configures submission to the metrics API.
type RemoteConfig struct {
	Endpoint string        `envconfig:"AI_MESH_METRICS_ENDPOINT"`
	Timeout  time.Duration `envconfig:"AI_MESH_REMOTE_TIMEOUT"`
}

// Config holds the pipeline configuration. Precedence: environment
// (after an optional .env) over the config file over built-in defaults.
type Config struct {
	MetricsDir    string        `envconfig:"AI_MESH_METRICS_DIR"`
	SessionID     string        `envconfig:"AI_MESH_SESSION_ID"`
	User          string        `envconfig:"USER"`
	LogLevel      string        `envconfig:"AI_MESH_LOG_LEVEL"`
	LatencyBudget time.Duration `envconfig:"AI_MESH_LATENCY_BUDGET"`
	Remote        RemoteConfig
}

// fileConfig is the YAML overlay shape. Durations are strings so that
// "5s" style values work.
type fileConfig struct {
	MetricsDir    string `yaml:"metrics_dir"`
	LogLevel      string `yaml:"log_level"`
	LatencyBudget string `yaml:"latency_budget"`
	Remote        struct {
		Endpoint string `yaml:"endpoint"`
		Timeout  string `yaml:"timeout"`
	} `yaml:"remote"`
}

// Load builds the configuration from .env, the environment, and the
// optional config file at ~/.ai-mesh/config.yaml.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: process environment: %w", err)
	}

	if err := overlayFile(&cfg, FilePath()); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// FilePath returns the config file location.
func FilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".ai-mesh", "config.yaml")
	}
	return filepath.Join(home, ".ai-mesh", "config.yaml")
}

// overlayFile fills fields the environment left empty from the YAML file.
// A missing file is fine; a malformed one is an error.
func overlayFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	if cfg.MetricsDir == "" {
		cfg.MetricsDir = fc.MetricsDir
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = fc.LogLevel
	}
	if cfg.Remote.Endpoint == "" {
		cfg.Remote.Endpoint = fc.Remote.Endpoint
	}
	if cfg.Remote.Timeout == 0 && fc.Remote.Timeout != "" {
		d, err := time.ParseDuration(fc.Remote.Timeout)
		if err != nil {
			return fmt.Errorf("config: parse remote timeout %q: %w", fc.Remote.Timeout, err)
		}
		cfg.Remote.Timeout = d
	}
	if cfg.LatencyBudget == 0 && fc.LatencyBudget != "" {
		d, err := time.ParseDuration(fc.LatencyBudget)
		if err != nil {
			return fmt.Errorf("config: parse latency budget %q: %w", fc.LatencyBudget, err)
		}
		cfg.LatencyBudget = d
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.MetricsDir == "" {
		c.MetricsDir = metrics.DefaultDirs().Root
	}
	if c.User == "" {
		c.User = "unknown"
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.Remote.Timeout == 0 {
		c.Remote.Timeout = defaultRemoteTimeout
	}
	if c.LatencyBudget == 0 {
		c.LatencyBudget = defaultLatencyBudget
	}
}

// Dirs returns the metrics store layout for this configuration.
func (c *Config) Dirs() metrics.Dirs {
	return metrics.Dirs{Root: c.MetricsDir}
}
