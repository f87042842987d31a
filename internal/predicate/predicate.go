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

// Package predicate holds the atomic boolean detectors rules are
// composed from. Every predicate is pure and total: it answers for any
// function, and absent evidence (missing signature, empty bodies,
// accessor failures) always evaluates to false rather than an error.
package predicate

import (
	"strings"

	"github.com/pxng0lin/caged/internal/ir"
)

// Predicate decides whether a function exhibits some property.
type Predicate func(fn ir.Function) bool

// And is true when every predicate holds.
func And(ps ...Predicate) Predicate {
	return func(fn ir.Function) bool {
		for _, p := range ps {
			if !p(fn) {
				return false
			}
		}
		return true
	}
}

// Or is true when any predicate holds.
func Or(ps ...Predicate) Predicate {
	return func(fn ir.Function) bool {
		for _, p := range ps {
			if p(fn) {
				return true
			}
		}
		return false
	}
}

// Not inverts a predicate.
func Not(p Predicate) Predicate {
	return func(fn ir.Function) bool { return !p(fn) }
}

// HasAnyProperty is true when at least one flag in mask is set.
func HasAnyProperty(mask ir.PropertySet) Predicate {
	return func(fn ir.Function) bool { return fn.Properties().AnyOf(mask) }
}

// HasNoProperty is true when none of the flags in mask are set.
func HasNoProperty(mask ir.PropertySet) Predicate {
	return func(fn ir.Function) bool { return fn.Properties().NoneOf(mask) }
}

// HasBody is true when the function has at least one instruction.
// Interface and abstract declarations have none.
func HasBody() Predicate {
	return func(fn ir.Function) bool {
		ins, err := fn.Instructions(1)
		if err != nil {
			return false
		}
		return len(ins) > 0
	}
}

// ContextMatcher is true when the lower-cased signature contains any
// keyword, or any one-hop callee name does. The scan deliberately does
// not recurse past direct callees.
func ContextMatcher(keywords []string, calleeLimit int) Predicate {
	kws := lowerAll(keywords)
	return func(fn ir.Function) bool {
		if containsAny(strings.ToLower(fn.Signature()), kws) {
			return true
		}
		return calleeNameMatches(fn, kws, calleeLimit)
	}
}

// SinkMatcher has the same mechanics as ContextMatcher but carries the
// operation-level vocabulary (what the function does, not where it
// lives). The two are separate constructors so rules AND them as
// independent evidence.
func SinkMatcher(keywords []string, calleeLimit int) Predicate {
	return ContextMatcher(keywords, calleeLimit)
}

// SignatureSink is true when the lower-cased signature alone contains
// any keyword; callees are not consulted.
func SignatureSink(keywords []string) Predicate {
	kws := lowerAll(keywords)
	return func(fn ir.Function) bool {
		return containsAny(strings.ToLower(fn.Signature()), kws)
	}
}

// ParameterPresence is true when the lower-cased signature contains the
// token. This is a substring approximation, not an ABI parse.
func ParameterPresence(token string) Predicate {
	tok := strings.ToLower(token)
	return func(fn ir.Function) bool {
		return strings.Contains(strings.ToLower(fn.Signature()), tok)
	}
}

// NegativeSignal is true when any callee name contains a disqualifying
// keyword. Rules use it inverted, to drop candidates whose operation is
// lexically similar but unrelated to the targeted vulnerability.
func NegativeSignal(keywords []string, calleeLimit int) Predicate {
	kws := lowerAll(keywords)
	return func(fn ir.Function) bool {
		return calleeNameMatches(fn, kws, calleeLimit)
	}
}

// InstructionContains is true when any body instruction's text contains
// any of the tokens.
func InstructionContains(tokens []string, insLimit int) Predicate {
	toks := lowerAll(tokens)
	return func(fn ir.Function) bool {
		ins, err := fn.Instructions(insLimit)
		if err != nil {
			return false
		}
		for _, in := range ins {
			if containsAny(strings.ToLower(in.Text()), toks) {
				return true
			}
		}
		return false
	}
}

func calleeNameMatches(fn ir.Function, lowered []string, limit int) bool {
	callees, err := fn.Callees(limit)
	if err != nil {
		return false
	}
	for _, c := range callees {
		if c == nil || c.Name() == "" {
			continue
		}
		if containsAny(strings.ToLower(c.Name()), lowered) {
			return true
		}
	}
	return false
}

func containsAny(s string, lowered []string) bool {
	if s == "" {
		return false
	}
	for _, kw := range lowered {
		if kw != "" && strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func lowerAll(keywords []string) []string {
	out := make([]string, len(keywords))
	for i, kw := range keywords {
		out[i] = strings.ToLower(kw)
	}
	return out
}
