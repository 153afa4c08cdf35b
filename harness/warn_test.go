// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

package harness

import (
	"sync"
	"testing"
)

func TestCaptureWarnings(t *testing.T) {
	rec := CaptureWarnings()
	defer rec.Release()

	Deprecatedf("RunLegacy is deprecated, use Run")
	Deprecatedf("shot count %d exceeds the supported maximum", 4096)

	got := rec.Warnings()
	if len(got) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %v", len(got), got)
	}
	if got[1] != "shot count 4096 exceeds the supported maximum" {
		t.Errorf("formatting lost: %q", got[1])
	}
}

func TestCaptureWarningsNested(t *testing.T) {
	outer := CaptureWarnings()
	defer outer.Release()

	inner := CaptureWarnings()
	Deprecatedf("both")
	inner.Release()

	Deprecatedf("outer only")

	if n := len(inner.Warnings()); n != 1 {
		t.Errorf("inner recorder saw %d warnings, want 1", n)
	}
	if n := len(outer.Warnings()); n != 2 {
		t.Errorf("outer recorder saw %d warnings, want 2", n)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	rec := CaptureWarnings()
	rec.Release()
	rec.Release()

	Deprecatedf("after release")
	if len(rec.Warnings()) != 0 {
		t.Error("released recorder must not receive warnings")
	}
}

func TestDeprecatedfConcurrent(t *testing.T) {
	rec := CaptureWarnings()
	defer rec.Release()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				Deprecatedf("emit")
			}
		}()
	}
	wg.Wait()

	if n := len(rec.Warnings()); n != 400 {
		t.Errorf("expected 400 warnings, got %d", n)
	}
}

func TestDeprecatedDetectsWarning(t *testing.T) {
	Deprecated(t, func() {
		Deprecatedf("old API")
	})
}

func TestDeprecatedFailsOnSilence(t *testing.T) {
	rec := &recordingTB{}
	errored := false
	fake := &erroringTB{recordingTB: rec, onError: func() { errored = true }}

	Deprecated(fake, func() {})

	if !errored {
		t.Error("silent function must fail the deprecation assertion")
	}
}

func TestDeprecatedReleasesRecorder(t *testing.T) {
	Deprecated(t, func() { Deprecatedf("once") })

	warnMu.Lock()
	n := len(recorders)
	warnMu.Unlock()
	if n != 0 {
		t.Errorf("recorder leaked: %d still installed", n)
	}
}

// erroringTB extends recordingTB with an Errorf observer.
type erroringTB struct {
	*recordingTB
	onError func()
}

func (e *erroringTB) Errorf(format string, args ...any) { e.onError() }
