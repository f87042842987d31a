// Copyright (c) 2026 pxng0lin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package daemon

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pxng0lin/caged/internal/engine"
	"github.com/pxng0lin/caged/internal/logger"
	"github.com/pxng0lin/caged/internal/metrics"
	"github.com/pxng0lin/caged/internal/rules"
)

// Server serves rule runs over JSON-RPC, with prometheus metrics on
// /metrics.
type Server struct {
	runner    *engine.Runner
	authToken string
	registry  *prometheus.Registry
}

// Config holds daemon configuration
type Config struct {
	Listen    string
	AuthToken string
}

// RunRequest represents the Scanner.Run RPC request
type RunRequest struct {
	RuleID     string `json:"rule_id"`
	MaxResults int    `json:"max_results,omitempty"`
}

// RunResponse represents the Scanner.Run RPC response
type RunResponse struct {
	RuleID  string       `json:"rule_id"`
	Hits    []engine.Hit `json:"hits"`
	Partial bool         `json:"partial,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// RulesRequest represents the Scanner.Rules RPC request
type RulesRequest struct{}

// RulesResponse lists the compiled rules the daemon can run
type RulesResponse struct {
	Rules []rules.Meta `json:"rules"`
}

// NewServer creates a JSON-RPC server over a prepared runner. The
// runner's backend is the snapshot loaded at startup; clients trigger
// rule runs against it.
func NewServer(runner *engine.Runner, scanMetrics *metrics.ScanMetrics, config Config) (*Server, error) {
	registry := prometheus.NewRegistry()
	if scanMetrics != nil {
		if err := scanMetrics.Register(registry); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	return &Server{
		runner:    runner,
		authToken: config.AuthToken,
		registry:  registry,
	}, nil
}

// authenticate validates the authorization token
func (s *Server) authenticate(r *http.Request) bool {
	if s.authToken == "" {
		return true // No auth required
	}

	auth := r.Header.Get("Authorization")
	if auth == "" {
		return false
	}

	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ") == s.authToken
	}
	return auth == s.authToken
}

// Run handles Scanner.Run RPC calls
func (s *Server) Run(r *http.Request, req *RunRequest, resp *RunResponse) error {
	if !s.authenticate(r) {
		return fmt.Errorf("unauthorized")
	}

	logger.Logger.Info("Processing Scanner.Run RPC", "rule", req.RuleID)

	hits, err := s.runner.Run(r.Context(), req.RuleID, req.MaxResults)
	*resp = RunResponse{
		RuleID: req.RuleID,
		Hits:   hits,
	}
	if err != nil {
		if hits == nil {
			return err
		}
		// Partial results: report what was gathered.
		resp.Partial = true
		resp.Error = err.Error()
	}
	return nil
}

// Rules handles Scanner.Rules RPC calls
func (s *Server) Rules(r *http.Request, _ *RulesRequest, resp *RulesResponse) error {
	if !s.authenticate(r) {
		return fmt.Errorf("unauthorized")
	}
	for _, rule := range s.runner.Rules() {
		resp.Rules = append(resp.Rules, rule.Meta)
	}
	return nil
}

// Handler builds the HTTP mux: JSON-RPC at /rpc, prometheus at
// /metrics, liveness at /healthz.
func (s *Server) Handler() (http.Handler, error) {
	rpcServer := rpc.NewServer()
	rpcServer.RegisterCodec(json2.NewCodec(), "application/json")
	if err := rpcServer.RegisterService(s, "Scanner"); err != nil {
		return nil, fmt.Errorf("failed to register RPC service: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/rpc", rpcServer)
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})
	return mux, nil
}

// ListenAndServe blocks serving requests on addr.
func (s *Server) ListenAndServe(addr string) error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}
	logger.Logger.Info("daemon listening", "addr", addr)
	return http.ListenAndServe(addr, handler)
}
