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

package rules

import (
	"github.com/pxng0lin/caged/internal/ir"
	"github.com/pxng0lin/caged/internal/pipeline"
)

// Meta is the human-readable identity of a rule.
type Meta struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
}

// Limits are the named enumeration caps for one rule. Every cap is a
// configuration field, never a free-floating constant, so rules can
// override them independently.
type Limits struct {
	// CandidateLimit bounds the outer function enumeration.
	CandidateLimit int `json:"candidate_limit"`
	// CalleeLimit bounds one-hop callee pulls per function.
	CalleeLimit int `json:"callee_limit"`
	// InstructionLimit bounds instruction pulls per body.
	InstructionLimit int `json:"instruction_limit"`
	// SiblingLimit bounds owning-contract function enumeration.
	SiblingLimit int `json:"sibling_limit"`
	// MaxResults bounds the reported hit count; truncation keeps the
	// earliest hits.
	MaxResults int `json:"max_results"`
}

// Rule is a compiled detection rule: metadata plus the staged pipeline
// that classifies candidates.
type Rule struct {
	Meta
	Limits   Limits
	Filter   ir.Filter
	Pipeline pipeline.Pipeline
}

// entrypointFilter selects externally reachable, state-changing
// functions: the candidate population every rule starts from.
func entrypointFilter() ir.Filter {
	return ir.Filter{
		AnyOf:  ir.PropertySet(0).With(ir.PropPublic).With(ir.PropExternal),
		NoneOf: ir.PropertySet(0).With(ir.PropConstructor).With(ir.PropView).With(ir.PropPure),
	}
}
