// Package config loads and validates Fathom's YAML configuration.
//
// All three binaries share one config file, by default at
// ~/.fathom/config.yaml. A missing file is not an error; defaults
// apply and unknown keys are ignored.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all Fathom configuration.
type Config struct {
	// Diver is the default diver name stamped on logbook entries.
	Diver string `yaml:"diver"`

	// DatabasePath is the SQLite database file location.
	DatabasePath string `yaml:"database_path"`

	// Planner holds best-mix defaults for the TUI and CLI.
	Planner PlannerConfig `yaml:"planner"`

	// API configures the community REST endpoint used for auth.
	API APIConfig `yaml:"api"`

	// Sync configures the community sync daemon.
	Sync SyncConfig `yaml:"sync"`

	// LogLevel controls zap verbosity: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// PlannerConfig holds default planner inputs.
type PlannerConfig struct {
	PO2Ceiling float64 `yaml:"po2_ceiling"` // bar
	Trimix     bool    `yaml:"trimix"`
	TargetEAD  float64 `yaml:"target_ead"` // meters
}

// APIConfig configures the community API client.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// SyncConfig configures the sync daemon.
type SyncConfig struct {
	// ListenAddr is the TCP address or unix socket path to listen on.
	ListenAddr string `yaml:"listen_addr"`
	// MetricsAddr is the HTTP address for metrics. Empty disables it.
	MetricsAddr string `yaml:"metrics_addr"`
	// BatchSize is the maximum number of items to batch before flushing.
	BatchSize int `yaml:"batch_size"`
	// FlushInterval is the maximum time between batch flushes.
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// Dir returns the Fathom config directory (~/.fathom).
func Dir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".fathom")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Default returns the built-in configuration.
func Default() *Config {
	listenAddr := "127.0.0.1:9340"
	if runtime.GOOS != "windows" {
		listenAddr = "/tmp/fathom-sync.sock"
	}

	return &Config{
		Diver:        "",
		DatabasePath: filepath.Join(Dir(), "fathom.db"),
		Planner: PlannerConfig{
			PO2Ceiling: 1.4,
			Trimix:     false,
			TargetEAD:  30,
		},
		API: APIConfig{
			BaseURL: "https://api.fathomdive.io",
			Timeout: 15 * time.Second,
		},
		Sync: SyncConfig{
			ListenAddr:    listenAddr,
			MetricsAddr:   "127.0.0.1:9341",
			BatchSize:     500,
			FlushInterval: 500 * time.Millisecond,
		},
		LogLevel: "info",
	}
}

// Load reads the config file at path, layering it over defaults.
// An empty path means DefaultPath; a missing file returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// Validate rejects configurations that would misbehave at runtime.
func (c *Config) Validate() error {
	// 1.6 bar is the accepted contingency ceiling; nothing sane lies above it.
	if c.Planner.PO2Ceiling <= 0 || c.Planner.PO2Ceiling > 1.6 {
		return fmt.Errorf("planner ppO2 ceiling %.2f out of range (0, 1.6]", c.Planner.PO2Ceiling)
	}
	if c.Planner.TargetEAD < 0 {
		return fmt.Errorf("planner target EAD %.1f is negative", c.Planner.TargetEAD)
	}
	if c.Sync.BatchSize <= 0 {
		return fmt.Errorf("sync batch size %d must be positive", c.Sync.BatchSize)
	}
	if c.Sync.FlushInterval <= 0 {
		return fmt.Errorf("sync flush interval %s must be positive", c.Sync.FlushInterval)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}
