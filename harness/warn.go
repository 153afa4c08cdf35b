// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

package harness

import (
	"fmt"
	"sync"

	"github.com/dotandev/qharness/internal/logger"
)

// Deprecation warnings have no runtime channel in Go, so the harness carries
// its own: code under test emits through Deprecatedf, and a scoped recorder
// installed by CaptureWarnings collects what was emitted. Without an active
// recorder, warnings go to the log.

var (
	warnMu    sync.Mutex
	recorders []*WarningRecorder
)

// WarningRecorder collects deprecation warnings emitted while it is active.
type WarningRecorder struct {
	mu       sync.Mutex
	warnings []string
}

// CaptureWarnings installs a recorder that receives every subsequent
// Deprecatedf emission until Release is called. Recorders nest; each
// emission reaches all active recorders.
func CaptureWarnings() *WarningRecorder {
	r := &WarningRecorder{}
	warnMu.Lock()
	recorders = append(recorders, r)
	warnMu.Unlock()
	return r
}

// Warnings returns the messages collected so far.
func (r *WarningRecorder) Warnings() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.warnings))
	copy(out, r.warnings)
	return out
}

// Release uninstalls the recorder.
func (r *WarningRecorder) Release() {
	warnMu.Lock()
	defer warnMu.Unlock()
	for i, cand := range recorders {
		if cand == r {
			recorders = append(recorders[:i], recorders[i+1:]...)
			return
		}
	}
}

func (r *WarningRecorder) add(msg string) {
	r.mu.Lock()
	r.warnings = append(r.warnings, msg)
	r.mu.Unlock()
}

// Deprecatedf emits a deprecation warning. Library code calls it from
// deprecated entry points; tests observe it through CaptureWarnings or the
// Deprecated assertion wrapper.
func Deprecatedf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	warnMu.Lock()
	active := make([]*WarningRecorder, len(recorders))
	copy(active, recorders)
	warnMu.Unlock()

	if len(active) == 0 {
		logger.Logger.Warn("deprecation", "message", msg)
		return
	}
	for _, r := range active {
		r.add(msg)
	}
}
