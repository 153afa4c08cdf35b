// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

package harness

import "testing"

// Deprecated runs fn inside a scoped warning capture and fails the test
// unless fn emitted at least one deprecation warning. Assertion failures
// raised inside fn propagate unchanged; the recorder is released even when
// fn bails out through t.Fatal.
func Deprecated(t testing.TB, fn func()) {
	t.Helper()

	rec := CaptureWarnings()
	defer rec.Release()

	fn()

	if len(rec.Warnings()) == 0 {
		t.Errorf("expected a deprecation warning, but none was emitted")
	}
}
