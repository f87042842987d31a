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

// Package pipeline stages keep-predicates into an ordered,
// short-circuiting filter chain. Each stage yields an order-preserving
// subsequence of its input; a candidate dropped by one stage is never
// seen by the stages after it.
package pipeline

import (
	"github.com/pxng0lin/caged/internal/ir"
	"github.com/pxng0lin/caged/internal/predicate"
)

// Stage is one filter step. Stages are declared cheapest and most
// discriminating first, so property checks run before instruction and
// callee walks.
type Stage struct {
	Name string
	Keep predicate.Predicate
}

// Pipeline is an ordered sequence of stages.
type Pipeline []Stage

// Run filters candidates through every stage in declared order. The
// result is always a subsequence of candidates: no reordering, no
// duplication, |out| <= |in| at every stage boundary.
func (p Pipeline) Run(candidates []ir.Function) []ir.Function {
	kept := candidates
	for _, stage := range p {
		kept = stage.apply(kept)
		if len(kept) == 0 {
			break
		}
	}
	return kept
}

// Keep reports whether a single candidate survives every stage,
// stopping at the first rejection.
func (p Pipeline) Keep(fn ir.Function) bool {
	for _, stage := range p {
		if !stage.Keep(fn) {
			return false
		}
	}
	return true
}

func (s Stage) apply(in []ir.Function) []ir.Function {
	out := in[:0:0]
	for _, fn := range in {
		if s.Keep(fn) {
			out = append(out, fn)
		}
	}
	return out
}
