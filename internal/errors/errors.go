// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for comparison with errors.Is
var (
	ErrBackendNotFound    = errors.New("backend not found")
	ErrMethodUnavailable  = errors.New("simulation method unavailable")
	ErrSimulatorNotFound  = errors.New("simulator binary not found")
	ErrSimulationFailed   = errors.New("simulation execution failed")
	ErrProbeFailed        = errors.New("capability probe failed")
	ErrMarshalFailed      = errors.New("failed to marshal request")
	ErrUnmarshalFailed    = errors.New("failed to unmarshal response")
	ErrInvalidCircuit     = errors.New("invalid circuit")
	ErrConfig             = errors.New("configuration error")
	ErrValidation         = errors.New("validation error")
	ErrDaemonUnreachable  = errors.New("daemon unreachable")
	ErrVersionUnsupported = errors.New("unsupported simulator version")
)

// Wrap functions for consistent error wrapping
func WrapBackendNotFound(name string) error {
	return fmt.Errorf("%w: %q", ErrBackendNotFound, name)
}

func WrapMethodUnavailable(backend, method string) error {
	return fmt.Errorf("%w: backend %q does not provide %q", ErrMethodUnavailable, backend, method)
}

func WrapSimulatorNotFound(msg string) error {
	return fmt.Errorf("%w: %s", ErrSimulatorNotFound, msg)
}

func WrapSimulationFailed(err error, stderr string) error {
	return fmt.Errorf("%w: %w, stderr: %s", ErrSimulationFailed, err, stderr)
}

func WrapSimulationLogicError(msg string) error {
	return fmt.Errorf("%w: %s", ErrSimulationFailed, msg)
}

func WrapProbeFailed(backend string, err error) error {
	return fmt.Errorf("%w: backend %q: %w", ErrProbeFailed, backend, err)
}

func WrapMarshalFailed(err error) error {
	return fmt.Errorf("%w: %w", ErrMarshalFailed, err)
}

func WrapUnmarshalFailed(err error, output string) error {
	return fmt.Errorf("%w: %w, output: %s", ErrUnmarshalFailed, err, output)
}

func WrapInvalidCircuit(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidCircuit, msg)
}

func WrapConfigError(msg string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrConfig, msg)
	}
	return fmt.Errorf("%w: %s: %w", ErrConfig, msg, err)
}

func WrapValidationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

func WrapDaemonUnreachable(url string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrDaemonUnreachable, url, err)
}

func WrapVersionUnsupported(version uint32) error {
	return fmt.Errorf("%w: %d", ErrVersionUnsupported, version)
}
