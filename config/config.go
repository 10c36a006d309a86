package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileName is the configuration file looked up in the working directory and
// the home directory.
const FileName = ".codetracker.json"

// Config is the root configuration structure.
type Config struct {
	Tracking TrackingConfig `json:"tracking"`
	Filters  FilterConfig   `json:"filters"`
	Logging  LoggingConfig  `json:"logging"`
	Output   OutputConfig   `json:"output"`
}

// TrackingConfig bounds the history walk.
type TrackingConfig struct {
	OracleTimeoutSeconds int    `json:"oracleTimeoutSeconds"` // Default: 60, 0 disables
	MaxCommits           int    `json:"maxCommits"`           // Default: 0 (unbounded)
	IntroduceAtRoot      bool   `json:"introduceAtRoot"`      // Default: false
	DefaultBranch        string `json:"defaultBranch"`        // Default: "HEAD"
}

// OracleTimeout returns the per-call oracle timeout.
func (t TrackingConfig) OracleTimeout() time.Duration {
	if t.OracleTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(t.OracleTimeoutSeconds) * time.Second
}

// FilterConfig holds file path filtering options. When set, the walk only
// stops at commits touching a matching path.
type FilterConfig struct {
	Include []string `json:"include"`
	Exclude []string `json:"exclude"`
}

// LoggingConfig selects the diagnostic log output.
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // text or json
}

// OutputConfig holds report defaults.
type OutputConfig struct {
	Format string `json:"format"` // console, json, csv, markdown, ci
	Top    int    `json:"top"`    // 0 lists every entry
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Tracking: TrackingConfig{
			OracleTimeoutSeconds: 60,
			MaxCommits:           0,
			IntroduceAtRoot:      false,
			DefaultBranch:        "HEAD",
		},
		Filters: FilterConfig{
			Include: []string{},
			Exclude: []string{},
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
		Output: OutputConfig{
			Format: "console",
			Top:    0,
		},
	}
}

// Validate reports settings that cannot be honoured.
func (c *Config) Validate() error {
	if c.Tracking.OracleTimeoutSeconds < 0 {
		return fmt.Errorf("tracking.oracleTimeoutSeconds must not be negative: %d", c.Tracking.OracleTimeoutSeconds)
	}
	if c.Tracking.MaxCommits < 0 {
		return fmt.Errorf("tracking.maxCommits must not be negative: %d", c.Tracking.MaxCommits)
	}
	if c.Output.Top < 0 {
		return fmt.Errorf("output.top must not be negative: %d", c.Output.Top)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json: %q", c.Logging.Format)
	}
	return nil
}

// LoadConfig loads configuration from a file, merging with defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		// Try default locations
		candidates := []string{FileName}
		if home, err := os.UserHomeDir(); err == nil && home != "" {
			candidates = append(candidates, filepath.Join(home, FileName))
		} else if envHome := os.Getenv("HOME"); envHome != "" {
			candidates = append(candidates, filepath.Join(envHome, FileName))
		}
		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to a file.
func SaveConfig(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
