// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

// Package daemon exposes a shared simulator backend over JSON-RPC, so test
// suites on other machines (or in containers without the qsim binary) can
// probe and run circuits through one long-lived process.
package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dotandev/qharness/internal/backend"
	"github.com/dotandev/qharness/internal/logger"
	"github.com/dotandev/qharness/internal/probestore"
	"github.com/dotandev/qharness/internal/shutdown"
	"github.com/dotandev/qharness/internal/telemetry"
)

// Config holds daemon configuration.
type Config struct {
	Port      string
	Backend   string
	AuthToken string
	ProbeTTL  time.Duration
}

// Harness is the JSON-RPC service. The exported method set mirrors the
// Backend interface: AvailableMethods, Probe, and Run.
type Harness struct {
	backend   backend.Backend
	store     *probestore.Store
	authToken string
	probeTTL  time.Duration
}

// Server owns the HTTP listener around a Harness service.
type Server struct {
	harness *Harness
	coord   *shutdown.Coordinator
}

// NewServer resolves the configured backend and builds the daemon. The probe
// store is optional: if the cache database cannot be opened the daemon still
// serves, probing on every request.
func NewServer(config Config) (*Server, error) {
	name := config.Backend
	if name == "" {
		name = "local"
	}

	b, err := backend.DefaultProvider().Get(name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve backend %q: %w", name, err)
	}

	store, err := probestore.NewStore()
	if err != nil {
		logger.Logger.Warn("Probe cache unavailable, probing uncached", "error", err)
		store = nil
	}

	ttl := config.ProbeTTL
	if ttl <= 0 {
		ttl = probestore.DefaultTTL
	}

	return &Server{
		harness: &Harness{
			backend:   b,
			store:     store,
			authToken: config.AuthToken,
			probeTTL:  ttl,
		},
		coord: shutdown.NewCoordinator(),
	}, nil
}

// authenticate validates the authorization token.
func (h *Harness) authenticate(r *http.Request) bool {
	if h.authToken == "" {
		return true
	}

	auth := r.Header.Get("Authorization")
	if auth == "" {
		return false
	}

	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ") == h.authToken
	}

	return auth == h.authToken
}

// AvailableMethods handles Harness.AvailableMethods RPC calls.
func (h *Harness) AvailableMethods(r *http.Request, args *backend.MethodsArgs, reply *backend.MethodsReply) error {
	if !h.authenticate(r) {
		return fmt.Errorf("unauthorized")
	}

	ctx := r.Context()
	tracer := telemetry.GetTracer()
	ctx, span := tracer.Start(ctx, "rpc_available_methods")
	defer span.End()

	methods, err := h.backend.AvailableMethods(ctx)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to query methods: %w", err)
	}

	*reply = backend.MethodsReply{
		Backend: h.backend.Name(),
		Methods: methods,
	}
	return nil
}

// Probe handles Harness.Probe RPC calls, serving from the probe cache when a
// fresh record exists.
func (h *Harness) Probe(r *http.Request, args *backend.ProbeArgs, reply *backend.ProbeReply) error {
	if !h.authenticate(r) {
		return fmt.Errorf("unauthorized")
	}

	ctx := r.Context()
	tracer := telemetry.GetTracer()
	ctx, span := tracer.Start(ctx, "rpc_probe")
	span.SetAttributes(attribute.String("backend.name", h.backend.Name()))
	defer span.End()

	logger.Logger.Info("Processing probe RPC", "backend", h.backend.Name())

	var caps *backend.Capabilities
	var err error
	if h.store != nil {
		caps, err = h.store.Capabilities(ctx, h.backend, h.probeTTL)
	} else {
		caps, err = backend.Probe(ctx, h.backend)
	}
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to probe backend: %w", err)
	}

	*reply = backend.ProbeReply{Capabilities: *caps}
	return nil
}

// Run handles Harness.Run RPC calls.
func (h *Harness) Run(r *http.Request, args *backend.RunArgs, reply *backend.RunReply) error {
	if !h.authenticate(r) {
		return fmt.Errorf("unauthorized")
	}

	if args.Circuit == nil {
		return fmt.Errorf("circuit is required")
	}

	ctx := r.Context()
	tracer := telemetry.GetTracer()
	ctx, span := tracer.Start(ctx, "rpc_run")
	span.SetAttributes(
		attribute.String("circuit.name", args.Circuit.Name),
		attribute.Int("circuit.qubits", args.Circuit.Qubits),
	)
	defer span.End()

	logger.Logger.Info("Processing run RPC",
		"circuit", args.Circuit.Name, "shots", args.Shots, "method", args.Method)

	opts := []backend.RunOption{}
	if args.Shots > 0 {
		opts = append(opts, backend.WithShots(args.Shots))
	}
	if args.Method != "" {
		opts = append(opts, backend.WithMethod(args.Method))
	}
	if args.Seed != 0 {
		opts = append(opts, backend.WithSeed(args.Seed))
	}

	res, err := h.backend.Run(ctx, args.Circuit, opts...)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to run circuit: %w", err)
	}

	*reply = backend.RunReply{Result: *res}
	return nil
}

// Handler builds the HTTP handler serving /rpc and /health.
func (s *Server) Handler() (http.Handler, error) {
	rpcServer := rpc.NewServer()
	rpcServer.RegisterCodec(json2.NewCodec(), "application/json")
	rpcServer.RegisterCodec(json2.NewCodec(), "application/json;charset=UTF-8")

	if err := rpcServer.RegisterService(s.harness, "Harness"); err != nil {
		return nil, fmt.Errorf("failed to register service: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/rpc", rpcServer)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"backend": s.harness.backend.Name(),
		})
	})

	return mux, nil
}

// Start serves until ctx is cancelled, then tears down the listener and the
// probe store through the shutdown coordinator.
func (s *Server) Start(ctx context.Context, port string) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: handler,
	}

	if s.harness.store != nil {
		s.coord.Register("probe-store", func(context.Context) error {
			return s.harness.store.Close()
		})
	}
	s.coord.Register("http-listener", srv.Shutdown)

	logger.Logger.Info("Starting JSON-RPC server", "port", port, "backend", s.harness.backend.Name())

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Error("Server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Logger.Info("Shutting down JSON-RPC server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.coord.Run(shutdownCtx)
}
