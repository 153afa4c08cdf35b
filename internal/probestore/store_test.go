// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

package probestore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dotandev/qharness/internal/backend"
	"github.com/dotandev/qharness/internal/eventbus"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStoreAt(filepath.Join(t.TempDir(), "probes.db"))
	if err != nil {
		t.Fatalf("NewStoreAt: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	// Keep test emissions off the shared process bus.
	s.SetBus(eventbus.New())
	return s
}

func testRecord(name string) *Record {
	return &Record{
		Capabilities: backend.Capabilities{
			Backend:    name,
			Version:    "1.2.0",
			Methods:    []string{backend.MethodAutomatic, backend.MethodStatevector},
			OMPEnabled: true,
			NumThreads: 4,
			MaxQubits:  24,
		},
	}
}

func TestSaveAndLoad(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, testRecord("local")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	rec, err := s.Load(ctx, "local")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.Version != "1.2.0" || !rec.OMPEnabled || rec.NumThreads != 4 {
		t.Errorf("record round-trip lost fields: %+v", rec)
	}
	if len(rec.Methods) != 2 || rec.Methods[1] != backend.MethodStatevector {
		t.Errorf("method list round-trip lost entries: %v", rec.Methods)
	}
	if rec.SchemaVersion != SchemaVersion {
		t.Errorf("schema version = %d, want %d", rec.SchemaVersion, SchemaVersion)
	}
}

func TestSaveUpserts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, testRecord("local")); err != nil {
		t.Fatalf("first Save: %v", err)
	}

	updated := testRecord("local")
	updated.Version = "2.0.0"
	updated.Methods = append(updated.Methods, backend.MethodStabilizer)
	if err := s.Save(ctx, updated); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	rec, err := s.Load(ctx, "local")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rec.Version != "2.0.0" || len(rec.Methods) != 3 {
		t.Errorf("upsert did not replace the record: %+v", rec)
	}

	all, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("expected a single row after upsert, got %d", len(all))
	}
}

func TestSaveRequiresBackendName(t *testing.T) {
	s := newTestStore(t)

	if err := s.Save(context.Background(), &Record{}); err == nil {
		t.Fatal("expected error for unnamed record")
	}
}

func TestLoadMissing(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Load(context.Background(), "absent"); err == nil {
		t.Fatal("expected error for missing record")
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, testRecord("local")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Delete(ctx, "local"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(ctx, "local"); err == nil {
		t.Fatal("deleting a missing record must error")
	}
}

func TestCleanupExpiresAndBounds(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	bus := eventbus.New()
	s.SetBus(bus)

	var expired int
	bus.Subscribe(eventbus.TopicProbeExpired, func(payload any) {
		if n, ok := payload.(int); ok {
			expired += n
		}
	})

	old := testRecord("stale")
	old.ProbedAt = time.Now().Add(-48 * time.Hour)
	if err := s.Save(ctx, old); err != nil {
		t.Fatalf("Save stale: %v", err)
	}
	if err := s.Save(ctx, testRecord("fresh")); err != nil {
		t.Fatalf("Save fresh: %v", err)
	}

	if err := s.Cleanup(ctx, DefaultTTL, DefaultMaxRecords); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	if _, err := s.Load(ctx, "stale"); err == nil {
		t.Error("stale record survived cleanup")
	}
	if _, err := s.Load(ctx, "fresh"); err != nil {
		t.Errorf("fresh record was pruned: %v", err)
	}
	if expired != 1 {
		t.Errorf("expected 1 expiry notification, got %d", expired)
	}

	// A limit of one forces the older remaining row out when another lands.
	older := testRecord("older")
	older.ProbedAt = time.Now().Add(-time.Hour)
	if err := s.Save(ctx, older); err != nil {
		t.Fatalf("Save older: %v", err)
	}
	if err := s.Cleanup(ctx, DefaultTTL, 1); err != nil {
		t.Fatalf("bounded Cleanup: %v", err)
	}

	all, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 1 || all[0].Backend != "fresh" {
		t.Errorf("expected only the newest record, got %+v", all)
	}
}

func TestSaveEmitsUpdate(t *testing.T) {
	s := newTestStore(t)

	bus := eventbus.New()
	s.SetBus(bus)

	var got *Record
	bus.Subscribe(eventbus.TopicProbeUpdated, func(payload any) {
		got, _ = payload.(*Record)
	})

	if err := s.Save(context.Background(), testRecord("local")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got == nil || got.Backend != "local" {
		t.Errorf("expected update notification for local, got %+v", got)
	}
}

func TestCapabilitiesCachesProbe(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	runs := 0
	mock := backend.NewDefaultMock()
	mock.BackendName = "counted"
	mock.BackendVersion = "1.0.0"
	mock.RunFunc = func(ctx context.Context, c *backend.Circuit, opts ...backend.RunOption) (*backend.Result, error) {
		runs++
		return &backend.Result{
			Status:   "success",
			Metadata: backend.Metadata{OMPEnabled: true, NumThreads: 2},
		}, nil
	}

	caps, err := s.Capabilities(ctx, mock, DefaultTTL)
	if err != nil {
		t.Fatalf("first Capabilities: %v", err)
	}
	if !caps.OMPEnabled {
		t.Error("probe metadata not carried into capabilities")
	}

	if _, err := s.Capabilities(ctx, mock, DefaultTTL); err != nil {
		t.Fatalf("second Capabilities: %v", err)
	}
	if runs != 1 {
		t.Errorf("expected a single probe run, got %d", runs)
	}
}

func TestCapabilitiesReprobesOnVersionChange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mock := backend.NewDefaultMock()
	mock.BackendName = "versioned"
	mock.BackendVersion = "1.0.0"

	if _, err := s.Capabilities(ctx, mock, DefaultTTL); err != nil {
		t.Fatalf("first Capabilities: %v", err)
	}

	mock.BackendVersion = "1.1.0"
	caps, err := s.Capabilities(ctx, mock, DefaultTTL)
	if err != nil {
		t.Fatalf("second Capabilities: %v", err)
	}
	if caps.Version != "1.1.0" {
		t.Errorf("stale cached version served: %s", caps.Version)
	}
}

func TestCapabilitiesProbeFailure(t *testing.T) {
	s := newTestStore(t)

	mock := &backend.Mock{MethodsErr: errors.New("unreachable")}
	if _, err := s.Capabilities(context.Background(), mock, DefaultTTL); err == nil {
		t.Fatal("expected probe failure to surface")
	}
}
