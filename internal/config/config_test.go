// Copyright 2026 pxng0lin
// SPDX-License-Identifier: Apache-2.0

package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pxng0lin/caged/internal/errors"
)

// isolateHome points the config path at a scratch home directory.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeConfigFile(t *testing.T, home, content string) {
	t.Helper()
	dir := filepath.Join(home, ".caged")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0600))
}

func TestLoad_Defaults(t *testing.T) {
	isolateHome(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./reports", cfg.OutputDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, ":8725", cfg.Listen)
	assert.Empty(t, cfg.SnapshotPath)
	assert.False(t, cfg.TelemetryEnabled)
}

func TestLoad_FromFile(t *testing.T) {
	home := isolateHome(t)
	writeConfigFile(t, home, `{
		"snapshot_path": "/data/ir.json",
		"log_level": "debug",
		"webhook_url": "https://hooks.example.com/caged"
	}`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/ir.json", cfg.SnapshotPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "https://hooks.example.com/caged", cfg.WebhookURL)

	// file values layer over defaults without clearing them
	assert.Equal(t, "./reports", cfg.OutputDir)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	home := isolateHome(t)
	writeConfigFile(t, home, `{"snapshot_path": "/data/ir.json", "log_level": "debug"}`)

	t.Setenv("CAGED_SNAPSHOT", "/env/ir.json")
	t.Setenv("CAGED_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/env/ir.json", cfg.SnapshotPath)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_TelemetryEnv(t *testing.T) {
	isolateHome(t)
	t.Setenv("CAGED_TELEMETRY", "true")
	t.Setenv("CAGED_TELEMETRY_ENDPOINT", "http://collector:4318")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.TelemetryEnabled)
	assert.Equal(t, "http://collector:4318", cfg.TelemetryEndpoint)
}

func TestLoad_MalformedFile(t *testing.T) {
	home := isolateHome(t)
	writeConfigFile(t, home, "{not json")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrValidation))
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.LogLevel = "verbose"
	assert.Error(t, cfg.Validate())

	cfg.LogLevel = "info"
	cfg.TelemetryEnabled = true
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrValidation))

	cfg.TelemetryEndpoint = "http://collector:4318"
	assert.NoError(t, cfg.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	isolateHome(t)

	cfg := DefaultConfig().
		WithSnapshot("/data/ir.json").
		WithOutputDir("/tmp/reports").
		WithLogLevel("debug")
	require.NoError(t, Save(cfg))

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/data/ir.json", loaded.SnapshotPath)
	assert.Equal(t, "/tmp/reports", loaded.OutputDir)
	assert.Equal(t, "debug", loaded.LogLevel)
}

func TestDefaultConfig_Copies(t *testing.T) {
	a := DefaultConfig()
	a.LogLevel = "error"

	b := DefaultConfig()
	assert.Equal(t, "info", b.LogLevel)
}
