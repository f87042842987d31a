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
	"github.com/pxng0lin/caged/internal/predicate"
)

const RuleAMMDeadline = "amm-deadline-bypass"

func init() {
	Register(RuleAMMDeadline, buildAMMDeadline)
}

var (
	defaultAMMContext = []string{"uniswap", "v2", "v3", "router", "pair", "pool", "amm", "dex"}
	defaultAMMSink    = []string{
		"swap", "addliquidity", "removeliquidity", "mint", "burn", "trade",
		"exchange", "liquidity", "pair", "pool",
	}
	defaultDeadlineTokens = []string{"deadline"}
	defaultCheckCalls     = []string{"require", "assert"}
	defaultComparators    = []string{"<=", "<"}
	defaultGuardModifiers = []string{"deadline", "within", "before", "expired"}
)

// buildAMMDeadline flags swap/liquidity entrypoints in AMM/router
// contexts that either omit a deadline parameter or accept one without
// enforcing it. Missing deadlines let pending transactions execute at
// arbitrary later times (MEV, griefing).
func buildAMMDeadline(sets KeywordSets) (Rule, error) {
	context, err := keywords(RuleAMMDeadline, sets, "context", defaultAMMContext)
	if err != nil {
		return Rule{}, err
	}
	sink, err := keywords(RuleAMMDeadline, sets, "sink", defaultAMMSink)
	if err != nil {
		return Rule{}, err
	}
	tokens, err := keywords(RuleAMMDeadline, sets, "deadline_tokens", defaultDeadlineTokens)
	if err != nil {
		return Rule{}, err
	}
	checks, err := keywords(RuleAMMDeadline, sets, "check_calls", defaultCheckCalls)
	if err != nil {
		return Rule{}, err
	}
	comparators, err := keywords(RuleAMMDeadline, sets, "comparators", defaultComparators)
	if err != nil {
		return Rule{}, err
	}
	hints, err := keywords(RuleAMMDeadline, sets, "guard_modifiers", defaultGuardModifiers)
	if err != nil {
		return Rule{}, err
	}

	limits := Limits{
		CandidateLimit:   7500,
		CalleeLimit:      100,
		InstructionLimit: 200,
		SiblingLimit:     50,
		MaxResults:       1000,
	}

	guard := predicate.GuardDetector(predicate.GuardVocab{
		TimeGlobal:    ir.GlobalBlockTimestamp,
		CheckCalls:    checks,
		Tokens:        tokens,
		Comparators:   comparators,
		ModifierHints: hints,
	}, limits.InstructionLimit)

	hasDeadlineParam := predicate.ParameterPresence(tokens[0])

	return Rule{
		Meta: Meta{
			ID:          RuleAMMDeadline,
			Title:       "AMM router operations without deadline checks",
			Description: "Swap/liquidity functions in AMM routers that omit a deadline parameter or accept one without enforcing it.",
			Tags:        []string{"amm", "router", "deadline", "mev", "griefing"},
		},
		Limits: limits,
		Filter: entrypointFilter(),
		Pipeline: pipeline.Pipeline{
			{Name: "has-body", Keep: predicate.HasBody()},
			{Name: "amm-context", Keep: predicate.ContextMatcher(context, limits.CalleeLimit)},
			{Name: "swap-liquidity-sink", Keep: predicate.SinkMatcher(sink, limits.CalleeLimit)},
			{Name: "deadline-unenforced", Keep: predicate.Or(
				predicate.Not(hasDeadlineParam),
				predicate.Not(guard),
			)},
			{Name: "no-admin-guard", Keep: predicate.Not(
				predicate.AdminGuard(checks, limits.InstructionLimit),
			)},
		},
	}, nil
}
