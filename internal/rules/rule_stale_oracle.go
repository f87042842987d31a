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

const RuleStaleOracle = "stale-oracle-usage"

func init() {
	Register(RuleStaleOracle, buildStaleOracle)
}

var (
	defaultCriticalSink = []string{
		"borrow", "liquidate", "liquidation", "redeem", "withdraw", "repay",
		"issue", "settle",
	}
	defaultFeedMethods    = []string{"latestrounddata", "latestanswer"}
	defaultOracleWrappers = []string{"oracleconfigurator", "pricefeed", "aggregator", "oracle", "price"}
	defaultOracleIfaces   = []string{"aggregatorv3interface", "ipricefeed", "ioracle"}
	defaultValidation     = []string{
		"updatedat", "answeredinround", "roundid", "block.timestamp",
		"staleness", "freshness", "timeout", "deadline",
		"price > 0", "price != 0", "answer > 0", "answer != 0",
	}
	defaultCheckCallTokens = []string{"require(", "assert("}
	defaultOracleNegative  = []string{
		"_safemint", "_mint", "refund", "payable(", "transfer(", "msg.sender.transfer",
	}
	defaultStaleModifiers = []string{"fresh", "staleness", "validprice"}
)

// buildStaleOracle flags critical money-flow entrypoints that consume a
// price feed, directly or through a wrapper, without any staleness,
// round-completeness or positivity validation in sight. NFT-mint and
// refund callees disqualify a candidate: those touch transfer-like
// vocabulary without depending on a price.
func buildStaleOracle(sets KeywordSets) (Rule, error) {
	sink, err := keywords(RuleStaleOracle, sets, "sink", defaultCriticalSink)
	if err != nil {
		return Rule{}, err
	}
	feeds, err := keywords(RuleStaleOracle, sets, "feed_methods", defaultFeedMethods)
	if err != nil {
		return Rule{}, err
	}
	wrappers, err := keywords(RuleStaleOracle, sets, "wrapper_hints", defaultOracleWrappers)
	if err != nil {
		return Rule{}, err
	}
	ifaces, err := keywords(RuleStaleOracle, sets, "interface_hints", defaultOracleIfaces)
	if err != nil {
		return Rule{}, err
	}
	validation, err := keywords(RuleStaleOracle, sets, "validation", defaultValidation)
	if err != nil {
		return Rule{}, err
	}
	checks, err := keywords(RuleStaleOracle, sets, "check_calls", defaultCheckCallTokens)
	if err != nil {
		return Rule{}, err
	}
	negative, err := keywords(RuleStaleOracle, sets, "negative", defaultOracleNegative)
	if err != nil {
		return Rule{}, err
	}
	hints, err := keywords(RuleStaleOracle, sets, "guard_modifiers", defaultStaleModifiers)
	if err != nil {
		return Rule{}, err
	}

	limits := Limits{
		CandidateLimit:   50000,
		CalleeLimit:      100,
		InstructionLimit: 200,
		SiblingLimit:     50,
		MaxResults:       1000,
	}

	oracle := predicate.OracleUsage(predicate.OracleVocab{
		FeedMethods:    feeds,
		WrapperHints:   wrappers,
		InterfaceHints: ifaces,
	}, limits.CalleeLimit, limits.SiblingLimit)

	// Any validation token or bare require/assert in the body counts as
	// checked; the guard detector adds modifier-borne staleness guards.
	validated := predicate.Or(
		predicate.InstructionContains(validation, limits.InstructionLimit),
		predicate.InstructionContains(checks, limits.InstructionLimit),
		predicate.GuardDetector(predicate.GuardVocab{
			TimeGlobal:    ir.GlobalBlockTimestamp,
			CheckCalls:    checks,
			Tokens:        validation,
			Comparators:   []string{"<", "<=", ">", ">="},
			ModifierHints: hints,
		}, limits.InstructionLimit),
	)

	return Rule{
		Meta: Meta{
			ID:          RuleStaleOracle,
			Title:       "Stale/invalid oracle usage for critical decisions",
			Description: "Money-flow functions using a price feed or oracle wrapper without staleness, round-completeness or positivity checks.",
			Tags:        []string{"oracle", "chainlink", "stale", "insolvency", "liquidation"},
		},
		Limits: limits,
		Filter: entrypointFilter(),
		Pipeline: pipeline.Pipeline{
			{Name: "has-body", Keep: predicate.HasBody()},
			{Name: "critical-sink", Keep: predicate.SignatureSink(sink)},
			{Name: "oracle-usage", Keep: oracle},
			{Name: "no-validation", Keep: predicate.Not(validated)},
			{Name: "no-negative-signal", Keep: predicate.Not(
				predicate.NegativeSignal(negative, limits.CalleeLimit),
			)},
		},
	}, nil
}
