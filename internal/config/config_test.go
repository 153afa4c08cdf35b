// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
)

// setTestHome points the config at a throwaway home directory and clears
// every qharness env override.
func setTestHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{
		"QHARNESS_BACKEND", "QHARNESS_SIMULATOR_PATH",
		"QHARNESS_DAEMON_URL", "QHARNESS_DAEMON_TOKEN",
		"QHARNESS_LOG_LEVEL", "QHARNESS_CACHE_PATH",
		"QHARNESS_OTEL_ENDPOINT",
	} {
		t.Setenv(key, "")
	}
	return home
}

func TestLoadConfigDefaults(t *testing.T) {
	setTestHome(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.DefaultBackend != "local" {
		t.Errorf("default backend = %q, want local", cfg.DefaultBackend)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("default log level = %q, want info", cfg.LogLevel)
	}
	if cfg.CachePath == "" {
		t.Error("expected cache path to be resolved")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	setTestHome(t)

	cfg := DefaultConfig()
	cfg.DefaultBackend = "qsim"
	cfg.SimulatorPath = "/opt/qsim/bin/qsim"
	cfg.DaemonURL = "http://localhost:8080/rpc"
	cfg.LogLevel = "debug"

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.DefaultBackend != "qsim" || loaded.SimulatorPath != "/opt/qsim/bin/qsim" {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
	if loaded.DaemonURL != "http://localhost:8080/rpc" || loaded.LogLevel != "debug" {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	setTestHome(t)
	t.Setenv("QHARNESS_BACKEND", "remote")
	t.Setenv("QHARNESS_DAEMON_URL", "https://sim.example.com/rpc")
	t.Setenv("QHARNESS_OTEL_ENDPOINT", "http://collector:4318")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.DefaultBackend != "remote" {
		t.Errorf("env override ignored: backend = %q", cfg.DefaultBackend)
	}
	if cfg.DaemonURL != "https://sim.example.com/rpc" {
		t.Errorf("env override ignored: daemon_url = %q", cfg.DaemonURL)
	}
	if !cfg.TelemetryEnabled || cfg.TelemetryEndpoint != "http://collector:4318" {
		t.Errorf("OTEL endpoint override should enable telemetry: %+v", cfg)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	setTestHome(t)

	cfg := DefaultConfig()
	cfg.LogLevel = "warn"
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	t.Setenv("QHARNESS_LOG_LEVEL", "error")

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.LogLevel != "error" {
		t.Errorf("env must win over the file: log level = %q", loaded.LogLevel)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	setTestHome(t)
	t.Setenv("QHARNESS_LOG_LEVEL", "loud")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected validation failure for unknown log level")
	}
}

func TestLoadConfigMalformedFile(t *testing.T) {
	home := setTestHome(t)

	dir := filepath.Join(home, ".qharness")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}
