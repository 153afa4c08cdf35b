// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

package harness

import (
	"context"
	"runtime"
	"testing"

	goversion "github.com/hashicorp/go-version"

	"github.com/dotandev/qharness/internal/backend"
)

// RequiresMethod skips the test when the backend does not provide the given
// simulation method. A capability lookup failure also skips, carrying the
// lookup error in the reason.
func RequiresMethod(t testing.TB, b backend.Backend, method string) {
	t.Helper()

	methods, err := b.AvailableMethods(context.Background())
	if err != nil {
		t.Skipf("could not query backend %q for methods (%v), skipping test", b.Name(), err)
		return
	}
	for _, m := range methods {
		if m == method {
			return
		}
	}
	t.Skipf("method %q is unavailable, skipping test", method)
}

// RequiresMethodOn resolves the backend by name through the default provider
// and then behaves like RequiresMethod. A backend that cannot be constructed
// (for example, a missing qsim binary) skips the test.
func RequiresMethodOn(t testing.TB, backendName, method string) {
	t.Helper()

	b, err := backend.DefaultProvider().Get(backendName)
	if err != nil {
		t.Skipf("backend %q is unavailable (%v), skipping test", backendName, err)
		return
	}
	RequiresMethod(t, b, method)
}

// RequiresOMP runs the trivial probe workload and skips the test unless the
// backend reports OpenMP-style parallel execution in its metadata.
func RequiresOMP(t testing.TB, b backend.Backend) {
	t.Helper()

	res, err := b.Run(context.Background(), backend.Trivial(), backend.WithShots(1))
	if err != nil {
		t.Skipf("could not probe backend %q (%v), skipping test", b.Name(), err)
		return
	}
	if !res.Metadata.OMPEnabled {
		t.Skip("OpenMP not available, skipping test")
	}
}

// RequiresMultiprocessing skips the test on single-core machines.
func RequiresMultiprocessing(t testing.TB) {
	t.Helper()

	if runtime.NumCPU() <= 1 {
		t.Skip("Multicore CPU not available, skipping test")
	}
}

// RequiresBackendVersion skips the test unless the backend's version
// satisfies the constraint string (e.g. ">= 1.2, < 2.0"). Unparsable
// versions skip rather than fail: an old or exotic backend is a reason not
// to run, not an error in the test.
func RequiresBackendVersion(t testing.TB, b backend.Backend, constraint string) {
	t.Helper()

	cons, err := goversion.NewConstraint(constraint)
	if err != nil {
		t.Fatalf("invalid version constraint %q: %v", constraint, err)
		return
	}

	v, err := goversion.NewVersion(b.Version())
	if err != nil {
		t.Skipf("backend %q reports unparsable version %q, skipping test", b.Name(), b.Version())
		return
	}
	if !cons.Check(v) {
		t.Skipf("backend %q version %s does not satisfy %q, skipping test", b.Name(), v, constraint)
	}
}
