// Copyright 2026 pxng0lin
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pxng0lin/caged/internal/errors"
)

// Config represents the general configuration for caged
type Config struct {
	SnapshotPath string `json:"snapshot_path,omitempty"`
	DBPath       string `json:"db_path,omitempty"`
	OutputDir    string `json:"output_dir,omitempty"`
	VocabPath    string `json:"vocab_path,omitempty"`
	LogLevel     string `json:"log_level,omitempty"`
	WebhookURL   string `json:"webhook_url,omitempty"`
	Listen       string `json:"listen,omitempty"`

	// TelemetryEnabled turns on OTLP trace export.
	// Set via telemetry_enabled in config or CAGED_TELEMETRY=true.
	TelemetryEnabled  bool   `json:"telemetry_enabled,omitempty"`
	TelemetryEndpoint string `json:"telemetry_endpoint,omitempty"`
}

var defaultConfig = &Config{
	OutputDir: "./reports",
	LogLevel:  "info",
	Listen:    ":8725",
}

// ConfigPath returns the path to the configuration file.
func ConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home dir: %w", err)
	}
	return filepath.Join(home, ".caged", "config.json"), nil
}

// Load reads configuration: defaults, then the JSON config file if
// present, then environment overrides.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	path, err := ConfigPath()
	if err == nil {
		if data, readErr := os.ReadFile(path); readErr == nil {
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, errors.WrapValidationError(fmt.Sprintf("failed to parse config file: %v", err))
			}
		}
	}

	cfg.SnapshotPath = getEnv("CAGED_SNAPSHOT", cfg.SnapshotPath)
	cfg.DBPath = getEnv("CAGED_DB_PATH", cfg.DBPath)
	cfg.OutputDir = getEnv("CAGED_OUT_DIR", cfg.OutputDir)
	cfg.VocabPath = getEnv("CAGED_VOCAB", cfg.VocabPath)
	cfg.LogLevel = getEnv("CAGED_LOG_LEVEL", cfg.LogLevel)
	cfg.WebhookURL = getEnv("CAGED_WEBHOOK_URL", cfg.WebhookURL)
	cfg.Listen = getEnv("CAGED_LISTEN", cfg.Listen)
	cfg.TelemetryEndpoint = getEnv("CAGED_TELEMETRY_ENDPOINT", cfg.TelemetryEndpoint)

	switch strings.ToLower(os.Getenv("CAGED_TELEMETRY")) {
	case "1", "true", "yes":
		cfg.TelemetryEnabled = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to disk (JSON format).
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.WrapValidationError(fmt.Sprintf("unknown log level %q", c.LogLevel))
	}
	if c.TelemetryEnabled && c.TelemetryEndpoint == "" {
		return errors.WrapValidationError("telemetry enabled without telemetry_endpoint")
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Snapshot: %s, DB: %s, OutDir: %s, LogLevel: %s}",
		c.SnapshotPath, c.DBPath, c.OutputDir, c.LogLevel,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func DefaultConfig() *Config {
	cfg := *defaultConfig
	return &cfg
}

func (c *Config) WithSnapshot(path string) *Config {
	c.SnapshotPath = path
	return c
}

func (c *Config) WithOutputDir(dir string) *Config {
	c.OutputDir = dir
	return c
}

func (c *Config) WithLogLevel(level string) *Config {
	c.LogLevel = level
	return c
}
