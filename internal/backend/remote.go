// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/dotandev/qharness/internal/errors"
	"github.com/dotandev/qharness/internal/logger"
	"github.com/gorilla/rpc/v2/json2"
)

// JSON-RPC argument and reply shapes shared by the Remote client and the
// daemon's Harness service.
type (
	MethodsArgs  struct{}
	MethodsReply struct {
		Backend string   `json:"backend"`
		Methods []string `json:"methods"`
	}

	ProbeArgs  struct{}
	ProbeReply struct {
		Capabilities Capabilities `json:"capabilities"`
	}

	RunArgs struct {
		Circuit *Circuit `json:"circuit"`
		Shots   int      `json:"shots,omitempty"`
		Method  string   `json:"method,omitempty"`
		Seed    int64    `json:"seed,omitempty"`
	}
	RunReply struct {
		Result Result `json:"result"`
	}
)

// authTransport adds a bearer token to outgoing daemon requests.
type authTransport struct {
	token     string
	transport http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
	return t.transport.RoundTrip(req)
}

// Remote is a Backend backed by a qharness daemon over JSON-RPC.
type Remote struct {
	url    string
	client *http.Client
}

// NewRemote returns a backend that forwards every call to the daemon at url.
// token may be empty when the daemon runs without auth.
func NewRemote(url, token string) *Remote {
	return &Remote{
		url: url,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &authTransport{
				token:     token,
				transport: http.DefaultTransport,
			},
		},
	}
}

func (r *Remote) Name() string { return "remote" }

func (r *Remote) Version() string {
	var reply ProbeReply
	if err := r.call(context.Background(), "Harness.Probe", &ProbeArgs{}, &reply); err != nil {
		return ""
	}
	return reply.Capabilities.Version
}

func (r *Remote) AvailableMethods(ctx context.Context) ([]string, error) {
	var reply MethodsReply
	if err := r.call(ctx, "Harness.AvailableMethods", &MethodsArgs{}, &reply); err != nil {
		return nil, err
	}
	return reply.Methods, nil
}

func (r *Remote) Run(ctx context.Context, c *Circuit, opts ...RunOption) (*Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	o := applyRunOptions(opts)

	var reply RunReply
	args := &RunArgs{Circuit: c, Shots: o.shots, Method: o.method, Seed: o.seed}
	if err := r.call(ctx, "Harness.Run", args, &reply); err != nil {
		return nil, err
	}
	return &reply.Result, nil
}

func (r *Remote) call(ctx context.Context, method string, args, reply any) error {
	body, err := json2.EncodeClientRequest(method, args)
	if err != nil {
		return errors.WrapMarshalFailed(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return errors.WrapDaemonUnreachable(r.url, err)
	}
	req.Header.Set("Content-Type", "application/json")

	logger.Logger.Debug("daemon call", "method", method, "url", r.url)

	resp, err := r.client.Do(req)
	if err != nil {
		return errors.WrapDaemonUnreachable(r.url, err)
	}
	defer resp.Body.Close()

	if err := json2.DecodeClientResponse(resp.Body, reply); err != nil {
		return errors.WrapUnmarshalFailed(err, method)
	}
	return nil
}
