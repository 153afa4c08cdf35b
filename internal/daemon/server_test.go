// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

package daemon

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dotandev/qharness/internal/backend"
	"github.com/dotandev/qharness/internal/probestore"
	"github.com/dotandev/qharness/internal/shutdown"
)

func newTestServer(t *testing.T, b backend.Backend, token string) *Server {
	t.Helper()
	return &Server{
		harness: &Harness{
			backend:   b,
			authToken: token,
			probeTTL:  probestore.DefaultTTL,
		},
		coord: shutdown.NewCoordinator(),
	}
}

func serve(t *testing.T, s *Server) *httptest.Server {
	t.Helper()

	handler, err := s.Handler()
	if err != nil {
		t.Fatalf("Handler: %v", err)
	}
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts
}

func TestHarness_AvailableMethods(t *testing.T) {
	mock := backend.NewDefaultMock()
	s := newTestServer(t, mock, "")
	ts := serve(t, s)

	remote := backend.NewRemote(ts.URL+"/rpc", "")
	methods, err := remote.AvailableMethods(context.Background())
	if err != nil {
		t.Fatalf("AvailableMethods: %v", err)
	}
	if len(methods) != 2 || methods[1] != backend.MethodStatevector {
		t.Errorf("unexpected methods: %v", methods)
	}
}

func TestHarness_Run(t *testing.T) {
	s := newTestServer(t, backend.NewLocal(), "")
	ts := serve(t, s)

	remote := backend.NewRemote(ts.URL+"/rpc", "")

	c := backend.New(1)
	c.H(0).Measure(0)

	res, err := remote.Run(context.Background(), c, backend.WithShots(100), backend.WithSeed(7))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Success() {
		t.Fatalf("run failed: %s", res.Error)
	}

	total := 0
	for _, n := range res.Counts {
		total += n
	}
	if total != 100 {
		t.Errorf("expected 100 shots of counts, got %d", total)
	}
}

func TestHarness_Probe(t *testing.T) {
	s := newTestServer(t, backend.NewLocal(), "")
	ts := serve(t, s)

	remote := backend.NewRemote(ts.URL+"/rpc", "")

	methods, err := remote.AvailableMethods(context.Background())
	if err != nil {
		t.Fatalf("AvailableMethods: %v", err)
	}
	if len(methods) == 0 {
		t.Fatal("expected at least one method")
	}

	if v := remote.Version(); v == "" {
		t.Error("expected the daemon to report a backend version")
	}
}

func TestHarness_Authentication(t *testing.T) {
	s := newTestServer(t, backend.NewDefaultMock(), "secret123")

	req := httptest.NewRequest("POST", "/rpc", nil)
	if s.harness.authenticate(req) {
		t.Error("expected authentication to fail without token")
	}

	req.Header.Set("Authorization", "Bearer secret123")
	if !s.harness.authenticate(req) {
		t.Error("expected Bearer token to authenticate")
	}

	req.Header.Set("Authorization", "secret123")
	if !s.harness.authenticate(req) {
		t.Error("expected raw token to authenticate")
	}

	req.Header.Set("Authorization", "wrong-token")
	if s.harness.authenticate(req) {
		t.Error("expected wrong token to be rejected")
	}
}

func TestHarness_AuthenticatedRoundTrip(t *testing.T) {
	s := newTestServer(t, backend.NewDefaultMock(), "secret123")
	ts := serve(t, s)

	// Wrong token: the RPC layer surfaces the service error.
	bad := backend.NewRemote(ts.URL+"/rpc", "nope")
	if _, err := bad.AvailableMethods(context.Background()); err == nil {
		t.Error("expected unauthorized error")
	}

	good := backend.NewRemote(ts.URL+"/rpc", "secret123")
	if _, err := good.AvailableMethods(context.Background()); err != nil {
		t.Errorf("authorized call failed: %v", err)
	}
}

func TestHarness_RunRequiresCircuit(t *testing.T) {
	s := newTestServer(t, backend.NewDefaultMock(), "")

	req := httptest.NewRequest("POST", "/rpc", nil)
	var reply backend.RunReply
	if err := s.harness.Run(req, &backend.RunArgs{}, &reply); err == nil {
		t.Fatal("expected error for missing circuit")
	}
}

func TestServer_StartStop(t *testing.T) {
	s := newTestServer(t, backend.NewDefaultMock(), "")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := s.Start(ctx, "0"); err != nil {
		t.Fatalf("Server start failed: %v", err)
	}
}
