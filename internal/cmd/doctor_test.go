// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"os/exec"
	"runtime"
	"testing"
)

func TestCheckGo(t *testing.T) {
	dep := checkGo()

	// Installed should mirror whether Go is in PATH
	_, err := exec.LookPath("go")
	expectedInstalled := err == nil

	if dep.Installed != expectedInstalled {
		t.Errorf("checkGo() installed = %v, want %v", dep.Installed, expectedInstalled)
	}

	if dep.Name != "Go" {
		t.Errorf("checkGo() name = %v, want 'Go'", dep.Name)
	}

	if !dep.Installed && dep.FixHint == "" {
		t.Error("checkGo() should provide FixHint when not installed")
	}
}

func TestCheckSimulatorBinaryMissing(t *testing.T) {
	// Point the env override at a path that cannot exist so discovery finds
	// nothing regardless of the host machine.
	t.Setenv("QHARNESS_SIMULATOR_PATH", "")
	t.Setenv("PATH", t.TempDir())

	dep := checkSimulatorBinary()
	// The binary may still be found through the cwd fallbacks; only the
	// shape of the failure report is asserted.
	if !dep.Installed && dep.FixHint == "" {
		t.Error("checkSimulatorBinary() should provide FixHint when not installed")
	}
}

func TestCheckLocalBackend(t *testing.T) {
	dep := checkLocalBackend(context.Background())

	if !dep.Installed {
		t.Error("the built-in backend must always probe successfully")
	}
	if dep.Version == "" {
		t.Error("expected the built-in backend to report a version")
	}
}

func TestCheckMulticore(t *testing.T) {
	dep := checkMulticore()

	expected := runtime.NumCPU() > 1
	if dep.Installed != expected {
		t.Errorf("checkMulticore() installed = %v, want %v", dep.Installed, expected)
	}
	if dep.Version == "" {
		t.Error("expected a core count in the version field")
	}
}
