// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dotandev/qharness/internal/errors"
)

// Validator validates a specific aspect of the configuration.
type Validator interface {
	Validate(cfg *Config) error
}

// BackendValidator checks that the default backend name is usable.
type BackendValidator struct{}

func (v BackendValidator) Validate(cfg *Config) error {
	if cfg.DefaultBackend == "" {
		return errors.WrapValidationError("default_backend cannot be empty")
	}
	if strings.ContainsAny(cfg.DefaultBackend, " \t") {
		return errors.WrapValidationError(
			fmt.Sprintf("default_backend %q must not contain whitespace", cfg.DefaultBackend))
	}
	return nil
}

// DaemonValidator checks that daemon connection fields are properly set.
type DaemonValidator struct{}

func (v DaemonValidator) Validate(cfg *Config) error {
	if cfg.DaemonURL == "" {
		return nil
	}
	if !strings.HasPrefix(cfg.DaemonURL, "http://") && !strings.HasPrefix(cfg.DaemonURL, "https://") {
		return errors.WrapValidationError("daemon_url must use http or https scheme")
	}
	return nil
}

// SimulatorValidator checks that the simulator path, when set, looks valid.
type SimulatorValidator struct{}

func (v SimulatorValidator) Validate(cfg *Config) error {
	if cfg.SimulatorPath == "" {
		return nil
	}
	if !filepath.IsAbs(cfg.SimulatorPath) {
		return errors.WrapValidationError("simulator_path must be an absolute path")
	}
	return nil
}

// LogLevelValidator checks that the log level is a known value.
type LogLevelValidator struct{}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

func (v LogLevelValidator) Validate(cfg *Config) error {
	if cfg.LogLevel == "" {
		return nil
	}
	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return errors.WrapValidationError(
			fmt.Sprintf("log_level %q is not one of debug, info, warn, error", cfg.LogLevel))
	}
	return nil
}

var validators = []Validator{
	BackendValidator{},
	DaemonValidator{},
	SimulatorValidator{},
	LogLevelValidator{},
}

// Validate runs every registered validator against the configuration.
func (c *Config) Validate() error {
	for _, v := range validators {
		if err := v.Validate(c); err != nil {
			return err
		}
	}
	return nil
}
