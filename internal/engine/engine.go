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

// Package engine runs compiled rules against an IR backend and
// collects their hits. Rule evaluation is read-only over the snapshot,
// so rules run concurrently with no shared mutable state; the only
// ordering constraint is stage order within one rule's pipeline.
package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/pxng0lin/caged/internal/errors"
	"github.com/pxng0lin/caged/internal/ir"
	"github.com/pxng0lin/caged/internal/logger"
	"github.com/pxng0lin/caged/internal/metrics"
	"github.com/pxng0lin/caged/internal/rules"
	"github.com/pxng0lin/caged/internal/telemetry"
)

// RuleResult is one rule's outcome. Err, when set, marks a
// partial-result condition: the hits gathered before the backend
// failed are still reported, and other rules are unaffected.
type RuleResult struct {
	RuleID string `json:"rule_id"`
	Hits   []Hit  `json:"hits"`
	Err    error  `json:"-"`
}

// Runner evaluates rules over a backend.
type Runner struct {
	backend ir.Backend
	rules   []rules.Rule
	metrics *metrics.ScanMetrics
}

// Option configures a Runner.
type Option func(*Runner)

// WithMetrics attaches prometheus scan metrics.
func WithMetrics(m *metrics.ScanMetrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// New creates a Runner over the given backend and compiled rules.
func New(backend ir.Backend, rs []rules.Rule, opts ...Option) *Runner {
	r := &Runner{backend: backend, rules: rs}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Rules returns the compiled rules this runner evaluates.
func (r *Runner) Rules() []rules.Rule {
	return r.rules
}

// Run evaluates a single rule. maxResults overrides the rule's own
// result cap when positive. On a backend failure the hits gathered so
// far come back together with the wrapped error.
func (r *Runner) Run(ctx context.Context, ruleID string, maxResults int) ([]Hit, error) {
	for _, rule := range r.rules {
		if strings.EqualFold(rule.ID, ruleID) {
			res := r.runRule(ctx, rule, maxResults)
			return res.Hits, res.Err
		}
	}
	return nil, errors.WrapUnknownRule(ruleID)
}

// RunAll evaluates every rule concurrently. Results come back in rule
// order regardless of completion order, so output is deterministic.
func (r *Runner) RunAll(ctx context.Context) []RuleResult {
	start := time.Now()
	results := make([]RuleResult, len(r.rules))

	var wg sync.WaitGroup
	for i, rule := range r.rules {
		wg.Add(1)
		go func(i int, rule rules.Rule) {
			defer wg.Done()
			results[i] = r.runRule(ctx, rule, 0)
		}(i, rule)
	}
	wg.Wait()

	if r.metrics != nil {
		r.metrics.ScanDuration.Observe(time.Since(start).Seconds())
	}
	return results
}

func (r *Runner) runRule(ctx context.Context, rule rules.Rule, maxResults int) RuleResult {
	_, span := telemetry.StartRule(ctx, rule.ID)
	defer span.End()

	limit := rule.Limits.MaxResults
	if maxResults > 0 {
		limit = maxResults
	}

	candidates, backendErr := r.backend.Functions(rule.Filter, rule.Limits.CandidateLimit)
	kept := rule.Pipeline.Run(candidates)
	hits := collect(kept, rule.ID, limit)

	span.SetAttributes(
		attribute.Int("rule.candidates", len(candidates)),
		attribute.Int("rule.hits", len(hits)),
	)

	if r.metrics != nil {
		r.metrics.RuleRuns.WithLabelValues(rule.ID).Inc()
		r.metrics.HitsReported.WithLabelValues(rule.ID).Add(float64(len(hits)))
	}

	res := RuleResult{RuleID: rule.ID, Hits: hits}
	if backendErr != nil {
		res.Err = errors.WrapBackendError(backendErr)
		if r.metrics != nil {
			r.metrics.BackendErrors.Inc()
		}
		logger.WithRule(rule.ID).Warn(
			"backend enumeration failed, reporting partial results",
			"candidates", len(candidates),
			"error", backendErr,
		)
	}
	return res
}
