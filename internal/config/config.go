package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all reasoner configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Reasoner parameters applied to the live Param
	Reasoner ReasonerConfig `yaml:"reasoner"`

	// Bag capacities and levels
	Bags BagsConfig `yaml:"bags"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Event trace store
	Store StoreConfig `yaml:"store"`

	// Mangle kernel over beliefs
	Kernel KernelConfig `yaml:"kernel"`

	// Operators available to the executive
	Operators OperatorsConfig `yaml:"operators"`
}

// StoreConfig configures the SQLite trace recorder.
type StoreConfig struct {
	Enabled bool `yaml:"enabled"`
	// Driver is "sqlite" (pure Go) or "sqlite3" (cgo).
	Driver       string `yaml:"driver"`
	DatabasePath string `yaml:"database_path"`
	// RecordCycles also records cycle start/end events.
	RecordCycles bool `yaml:"record_cycles"`
}

// OperatorsConfig configures the operator registry.
type OperatorsConfig struct {
	// ScriptDir holds Go source files interpreted as operators.
	ScriptDir string `yaml:"script_dir"`
	// Disabled lists builtin operators to leave unregistered.
	Disabled []string `yaml:"disabled"`
	Timeout  string   `yaml:"timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:     "narsgo",
		Version:  "0.1.0",
		Reasoner: DefaultReasonerConfig(),
		Bags:     DefaultBagsConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Store: StoreConfig{
			Enabled:      false,
			Driver:       "sqlite",
			DatabasePath: "data/narsgo.db",
		},
		Kernel: KernelConfig{
			FactLimit:    100000,
			QueryTimeout: "10s",
		},
		Operators: OperatorsConfig{
			Timeout: "2s",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("NARS_SEED"); v != "" {
		if seed, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Reasoner.Seed = seed
		}
	}
	if v := os.Getenv("NARS_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Reasoner.Threads = n
		}
	}
	if v := os.Getenv("NARS_DURATION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Reasoner.Duration = n
		}
	}
	if v := os.Getenv("NARS_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
		c.Logging.DebugMode = true
	}

	// Database path from environment
	if path := os.Getenv("NARS_DB"); path != "" {
		c.Store.DatabasePath = path
		c.Store.Enabled = true
	}
}

// GetTimeout parses the per-call operator timeout. Empty means 2s.
func (c OperatorsConfig) GetTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 2 * time.Second, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid operator timeout %q: %w", c.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("operator timeout must be positive: %s", c.Timeout)
	}
	return d, nil
}

// ValidDrivers lists the supported database/sql drivers.
var ValidDrivers = []string{"sqlite", "sqlite3"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Reasoner.Validate(); err != nil {
		return fmt.Errorf("reasoner: %w", err)
	}
	if err := c.Bags.Validate(); err != nil {
		return fmt.Errorf("bags: %w", err)
	}

	validDriver := false
	for _, d := range ValidDrivers {
		if c.Store.Driver == d {
			validDriver = true
			break
		}
	}
	if !validDriver {
		return fmt.Errorf("invalid store driver: %s (valid: %v)", c.Store.Driver, ValidDrivers)
	}
	if c.Store.Enabled && c.Store.DatabasePath == "" {
		return fmt.Errorf("store enabled without database_path")
	}
	if c.Kernel.FactLimit < 0 {
		return fmt.Errorf("kernel fact_limit must be >= 0")
	}
	if _, err := c.Operators.GetTimeout(); err != nil {
		return fmt.Errorf("operators: %w", err)
	}

	return nil
}
