// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/dotandev/qharness/internal/errors"
)

// Config represents the general configuration for qharness
type Config struct {
	// DefaultBackend names the backend used when a test or command does
	// not ask for one explicitly.
	DefaultBackend string `json:"default_backend,omitempty"`

	// SimulatorPath overrides binary discovery for the subprocess backend.
	SimulatorPath string `json:"simulator_path,omitempty"`

	// DaemonURL and DaemonToken configure the remote capability daemon.
	DaemonURL   string `json:"daemon_url,omitempty"`
	DaemonToken string `json:"daemon_token,omitempty"`

	LogLevel  string `json:"log_level,omitempty"`
	CachePath string `json:"cache_path,omitempty"`

	// TelemetryEnabled enables opt-in OTLP trace export.
	TelemetryEnabled  bool   `json:"telemetry_enabled,omitempty"`
	TelemetryEndpoint string `json:"telemetry_endpoint,omitempty"`

	// DisableUpdateCheck opts out of the background release check.
	DisableUpdateCheck bool `json:"disable_update_check,omitempty"`
}

var defaultConfig = &Config{
	DefaultBackend: "local",
	LogLevel:       "info",
}

// DefaultConfig returns a copy of the built-in defaults with the cache path
// resolved under the user's home directory.
func DefaultConfig() *Config {
	cfg := *defaultConfig
	if home, err := os.UserHomeDir(); err == nil {
		cfg.CachePath = filepath.Join(home, ".qharness", "cache")
	}
	return &cfg
}

// GetConfigPath returns the qharness configuration directory, creating it
// if necessary.
func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WrapConfigError("failed to resolve home directory", err)
	}
	dir := filepath.Join(home, ".qharness")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.WrapConfigError("failed to create config directory", err)
	}
	return dir, nil
}

// GetGeneralConfigPath returns the path to the general configuration file
func GetGeneralConfigPath() (string, error) {
	configDir, err := GetConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// LoadConfig loads the general configuration from disk (JSON format),
// applying environment overrides on top.
func LoadConfig() (*Config, error) {
	configPath, err := GetGeneralConfigPath()
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, errors.WrapConfigError("failed to read config file", err)
		}
		if err := json.Unmarshal(data, config); err != nil {
			return nil, errors.WrapConfigError("failed to parse config file", err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// SaveConfig writes the configuration to disk as JSON.
func SaveConfig(config *Config) error {
	configPath, err := GetGeneralConfigPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return errors.WrapConfigError("failed to marshal config", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return errors.WrapConfigError("failed to write config file", err)
	}
	return nil
}

func applyEnvOverrides(config *Config) {
	if v := os.Getenv("QHARNESS_BACKEND"); v != "" {
		config.DefaultBackend = v
	}
	if v := os.Getenv("QHARNESS_SIMULATOR_PATH"); v != "" {
		config.SimulatorPath = v
	}
	if v := os.Getenv("QHARNESS_DAEMON_URL"); v != "" {
		config.DaemonURL = v
	}
	if v := os.Getenv("QHARNESS_DAEMON_TOKEN"); v != "" {
		config.DaemonToken = v
	}
	if v := os.Getenv("QHARNESS_LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
	if v := os.Getenv("QHARNESS_CACHE_PATH"); v != "" {
		config.CachePath = v
	}
	if v := os.Getenv("QHARNESS_OTEL_ENDPOINT"); v != "" {
		config.TelemetryEnabled = true
		config.TelemetryEndpoint = v
	}
}
