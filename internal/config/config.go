// Copyright 2026 Simantix Users
// SPDX-License-Identifier: Apache-2.0

// Package config loads the tool configuration: a JSON file under
// ~/.simantix plus SIMANTIX_* environment overrides. Every consumer
// receives an explicit Config value; nothing reads the file twice.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config is the general configuration for simantix.
type Config struct {
	LogLevel string `json:"log_level,omitempty"`
	// PrimitiveTable optionally overrides the embedded opcode
	// metadata with a table file.
	PrimitiveTable string `json:"primitive_table,omitempty"`
	StepBudget     int    `json:"step_budget,omitempty"`
	MaxCallDepth   int    `json:"max_call_depth,omitempty"`
	// DBPath locates the SQLite report and audit store.
	DBPath     string `json:"db_path,omitempty"`
	DaemonPort string `json:"daemon_port,omitempty"`
	// Telemetry enables opt-in OpenTelemetry tracing.
	Telemetry         bool   `json:"telemetry,omitempty"`
	TelemetryEndpoint string `json:"telemetry_endpoint,omitempty"`
}

// DefaultConfig returns the built-in defaults, used when no config
// file exists.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		LogLevel:     "info",
		StepBudget:   1000,
		MaxCallDepth: 64,
		DBPath:       filepath.Join(home, ".simantix", "reports.db"),
		DaemonPort:   "7342",
	}
}

// Path returns the config file location.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home dir: %w", err)
	}
	return filepath.Join(home, ".simantix", "config.json"), nil
}

// Load reads the config file, fills unset fields from the defaults,
// and applies environment overrides. A missing file is not an error.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	path, err := Path()
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("reading config: %w", err)
	default:
		if err := json.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	applyEnv(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config file, creating ~/.simantix when needed.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(path, raw, 0o644)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SIMANTIX_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SIMANTIX_PRIMITIVE_TABLE"); v != "" {
		cfg.PrimitiveTable = v
	}
	if v := os.Getenv("SIMANTIX_STEP_BUDGET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.StepBudget = n
		}
	}
	if v := os.Getenv("SIMANTIX_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("SIMANTIX_DAEMON_PORT"); v != "" {
		cfg.DaemonPort = v
	}
	if v := os.Getenv("SIMANTIX_TELEMETRY_ENDPOINT"); v != "" {
		cfg.TelemetryEndpoint = v
		cfg.Telemetry = true
	}
}

func (c *Config) validate() error {
	if c.StepBudget <= 0 {
		return fmt.Errorf("step_budget must be positive, got %d", c.StepBudget)
	}
	if c.MaxCallDepth <= 0 {
		return fmt.Errorf("max_call_depth must be positive, got %d", c.MaxCallDepth)
	}
	if _, err := strconv.Atoi(c.DaemonPort); err != nil {
		return fmt.Errorf("daemon_port must be numeric, got %q", c.DaemonPort)
	}
	return nil
}
