// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"testing"
)

func TestLatestVersion(t *testing.T) {
	v := LatestVersion()
	if v != 3 {
		t.Errorf("expected latest version 3, got %d", v)
	}
}

func TestMethods(t *testing.T) {
	tests := []struct {
		name    string
		version uint32
		wantErr bool
	}{
		{"protocol 1", 1, false},
		{"protocol 2", 2, false},
		{"protocol 3", 3, false},
		{"unsupported", 99, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Methods(tt.version)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Methods(%d) error = %v, wantErr %v", tt.version, err, tt.wantErr)
			}
			if !tt.wantErr && s.Version != tt.version {
				t.Errorf("expected version %d, got %d", tt.version, s.Version)
			}
		})
	}
}

func TestMethodsOrLatest(t *testing.T) {
	s := MethodsOrLatest(0)
	if s.Version != LatestVersion() {
		t.Errorf("expected fallback to %d, got %d", LatestVersion(), s.Version)
	}

	s = MethodsOrLatest(1)
	if s.Version != 1 {
		t.Errorf("expected version 1, got %d", s.Version)
	}
}

func TestSupportsMethod(t *testing.T) {
	tests := []struct {
		version uint32
		method  string
		want    bool
	}{
		{1, MethodStatevector, true},
		{1, MethodDensityMatrix, false},
		{2, MethodDensityMatrix, true},
		{2, MethodUnitary, false},
		{3, MethodUnitary, true},
		{3, MethodMatrixProductState, true},
		{99, MethodStatevector, false},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			if got := SupportsMethod(tt.version, tt.method); got != tt.want {
				t.Errorf("SupportsMethod(%d, %q) = %v, want %v", tt.version, tt.method, got, tt.want)
			}
		})
	}
}

func TestMethodTablesGrowMonotonically(t *testing.T) {
	// Each protocol version keeps everything the previous one offered.
	for v := uint32(2); v <= LatestVersion(); v++ {
		prev, err := Methods(v - 1)
		if err != nil {
			t.Fatalf("Methods(%d): %v", v-1, err)
		}
		for _, m := range prev.Methods {
			if !SupportsMethod(v, m) {
				t.Errorf("version %d dropped method %q present in %d", v, m, v-1)
			}
		}
	}
}
