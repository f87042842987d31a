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
	"regexp"
	"strings"

	"github.com/pxng0lin/caged/internal/ir"
)

// OracleVocab configures oracle-usage detection. No new primitive is
// involved: each branch is a callee-name or signature keyword match.
type OracleVocab struct {
	// FeedMethods are direct price-feed method names, matched exactly.
	FeedMethods []string
	// WrapperHints match as substrings of callee names.
	WrapperHints []string
	// InterfaceHints match as substrings of sibling-function signatures
	// on the owning contract.
	InterfaceHints []string
}

// OracleUsage is true when the function calls a price feed directly,
// calls through a wrapper whose name hints at an oracle, or lives in a
// contract that exposes an oracle-interface signature.
func OracleUsage(v OracleVocab, calleeLimit, siblingLimit int) Predicate {
	feeds := lowerAll(v.FeedMethods)
	wrappers := lowerAll(v.WrapperHints)
	ifaces := lowerAll(v.InterfaceHints)

	return func(fn ir.Function) bool {
		callees, err := fn.Callees(calleeLimit)
		if err == nil {
			for _, c := range callees {
				if c == nil || c.Name() == "" {
					continue
				}
				name := strings.ToLower(c.Name())
				for _, feed := range feeds {
					if name == feed {
						return true
					}
				}
				if containsAny(name, wrappers) {
					return true
				}
			}
		}

		siblings, err := fn.ContractFunctions(siblingLimit)
		if err != nil {
			return false
		}
		for _, sib := range siblings {
			if sib == nil {
				continue
			}
			if containsAny(strings.ToLower(sib.Signature()), ifaces) {
				return true
			}
		}
		return false
	}
}

// CrossContractCallee is true when the function calls a callee whose
// name matches pattern and whose resolved owning contract differs from
// the caller's. Unresolved owners never match: absence of resolution is
// not evidence of an external call.
func CrossContractCallee(pattern *regexp.Regexp, calleeLimit int) Predicate {
	return func(fn ir.Function) bool {
		callees, err := fn.Callees(calleeLimit)
		if err != nil {
			return false
		}
		self := fn.Contract()
		for _, c := range callees {
			if c == nil || c.Name() == "" {
				continue
			}
			if !pattern.MatchString(c.Name()) {
				continue
			}
			owner := c.Owner()
			if owner != nil && *owner != self {
				return true
			}
		}
		return false
	}
}

// CalleeNameMatches is true when any callee name matches pattern,
// regardless of resolution.
func CalleeNameMatches(pattern *regexp.Regexp, calleeLimit int) Predicate {
	return func(fn ir.Function) bool {
		callees, err := fn.Callees(calleeLimit)
		if err != nil {
			return false
		}
		for _, c := range callees {
			if c != nil && pattern.MatchString(c.Name()) {
				return true
			}
		}
		return false
	}
}

// EventEmission is true when any instruction carries a component of an
// event kind whose name equals name (case-insensitive). Used to
// distinguish `emit Transfer(...)` from a token transfer call.
func EventEmission(name string, insLimit int) Predicate {
	want := strings.ToLower(name)
	return func(fn ir.Function) bool {
		ins, err := fn.Instructions(insLimit)
		if err != nil {
			return false
		}
		for _, in := range ins {
			for _, comp := range in.Components() {
				if strings.ToLower(comp.Name) == want && strings.Contains(strings.ToLower(comp.Kind), "event") {
					return true
				}
			}
		}
		return false
	}
}

// CallWithSignature is true when any instruction carries a call-kind
// component whose name equals sig. The native-value `transfer(uint256)`
// exclusion is built on this.
func CallWithSignature(sig string, insLimit int) Predicate {
	want := strings.ToLower(sig)
	return func(fn ir.Function) bool {
		ins, err := fn.Instructions(insLimit)
		if err != nil {
			return false
		}
		for _, in := range ins {
			for _, comp := range in.Components() {
				if strings.ToLower(comp.Name) == want && strings.Contains(strings.ToLower(comp.Kind), "call") {
					return true
				}
			}
		}
		return false
	}
}
