// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoadDefaultsWhenNoFile(t *testing.T) {
	home := isolateHome(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 1000, cfg.StepBudget)
	assert.Equal(t, 64, cfg.MaxCallDepth)
	assert.Equal(t, "7342", cfg.DaemonPort)
	assert.Equal(t, filepath.Join(home, ".simantix", "reports.db"), cfg.DBPath)
	assert.False(t, cfg.Telemetry)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, ".simantix")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"),
		[]byte(`{"log_level": "debug", "step_budget": 50}`), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 50, cfg.StepBudget)
	assert.Equal(t, 64, cfg.MaxCallDepth, "unset fields keep their defaults")
}

func TestEnvOverridesFile(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, ".simantix")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"),
		[]byte(`{"step_budget": 50}`), 0o644))

	t.Setenv("SIMANTIX_STEP_BUDGET", "7")
	t.Setenv("SIMANTIX_LOG_LEVEL", "warn")
	t.Setenv("SIMANTIX_DB_PATH", "/tmp/other.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.StepBudget)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "/tmp/other.db", cfg.DBPath)
}

func TestTelemetryEndpointEnablesTelemetry(t *testing.T) {
	isolateHome(t)
	t.Setenv("SIMANTIX_TELEMETRY_ENDPOINT", "localhost:4318")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Telemetry)
	assert.Equal(t, "localhost:4318", cfg.TelemetryEndpoint)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, ".simantix")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	cases := []struct {
		name string
		body string
	}{
		{"zero step budget", `{"step_budget": -1}`},
		{"zero call depth", `{"max_call_depth": -3}`},
		{"non-numeric port", `{"daemon_port": "default"}`},
		{"malformed json", `{"step_budget": `},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(tc.body), 0o644))
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	isolateHome(t)

	want := DefaultConfig()
	want.LogLevel = "debug"
	want.DaemonPort = "9000"
	require.NoError(t, Save(want))

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, want.LogLevel, got.LogLevel)
	assert.Equal(t, want.DaemonPort, got.DaemonPort)
	assert.Equal(t, want.StepBudget, got.StepBudget)
}
