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

package predicate

import (
	"strings"

	"github.com/pxng0lin/caged/internal/ir"
)

// GuardVocab configures what counts as an enforcement check for a rule.
// The patterns are lexical: matching happens on instruction renderings,
// so a token inside a string literal is indistinguishable from a real
// check. That imprecision is inherent to the approach.
type GuardVocab struct {
	// TimeGlobal is the designated chain-time global; seeing it in the
	// same instruction as a check call counts as enforcement.
	TimeGlobal ir.Global
	// CheckCalls are require/assert-style call tokens.
	CheckCalls []string
	// Tokens are domain terms (e.g. "deadline", "updatedat") that count
	// when they co-occur with a comparator or a check call.
	Tokens []string
	// Comparators qualify a Token co-occurrence.
	Comparators []string
	// ModifierHints match against modifier names; a modifier whose name
	// contains one is taken as guard intent by itself.
	ModifierHints []string
}

// GuardDetector scans the function body and every attached modifier
// body for any of the vocabulary's enforcement patterns. The three
// sub-patterns (time global + check, token + comparator/check, modifier
// name hint) are ORed: any single occurrence is enough.
func GuardDetector(v GuardVocab, insLimit int) Predicate {
	checks := lowerAll(v.CheckCalls)
	tokens := lowerAll(v.Tokens)
	comparators := lowerAll(v.Comparators)
	hints := lowerAll(v.ModifierHints)
	timeToken := strings.ToLower(string(v.TimeGlobal))

	guardedInstruction := func(in ir.Instruction) bool {
		text := strings.ToLower(in.Text())
		timeRef := refsGlobal(in, v.TimeGlobal) || (timeToken != "" && strings.Contains(text, timeToken))
		if timeRef && containsAny(text, checks) {
			return true
		}
		if containsAny(text, tokens) && (containsAny(text, comparators) || containsAny(text, checks)) {
			return true
		}
		return false
	}

	return func(fn ir.Function) bool {
		if ins, err := fn.Instructions(insLimit); err == nil {
			for _, in := range ins {
				if guardedInstruction(in) {
					return true
				}
			}
		}

		mods, err := fn.Modifiers()
		if err != nil {
			return false
		}
		for _, mod := range mods {
			if containsAny(strings.ToLower(mod.Name()), hints) {
				return true
			}
			ins, err := mod.Instructions(insLimit)
			if err != nil {
				continue
			}
			for _, in := range ins {
				if guardedInstruction(in) {
					return true
				}
			}
		}
		return false
	}
}

// AdminGuard is true when any modifier body both references the sender
// global and performs a check call, the usual onlyOwner shape. Rules use
// it to exclude functions that are already permissioned.
func AdminGuard(checkCalls []string, insLimit int) Predicate {
	checks := lowerAll(checkCalls)
	senderToken := strings.ToLower(string(ir.GlobalMsgSender))

	return func(fn ir.Function) bool {
		mods, err := fn.Modifiers()
		if err != nil {
			return false
		}
		for _, mod := range mods {
			ins, err := mod.Instructions(insLimit)
			if err != nil {
				continue
			}
			hasSender := false
			hasCheck := false
			for _, in := range ins {
				text := strings.ToLower(in.Text())
				if refsGlobal(in, ir.GlobalMsgSender) || strings.Contains(text, senderToken) {
					hasSender = true
				}
				if containsAny(text, checks) {
					hasCheck = true
				}
			}
			if hasSender && hasCheck {
				return true
			}
		}
		return false
	}
}

func refsGlobal(in ir.Instruction, g ir.Global) bool {
	for _, ref := range in.GlobalRefs() {
		if ref == g {
			return true
		}
	}
	return false
}
