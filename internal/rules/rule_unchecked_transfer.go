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
	"github.com/pxng0lin/caged/internal/pipeline"
	"github.com/pxng0lin/caged/internal/predicate"
)

const RuleUncheckedTransfer = "unchecked-transfer-return"

func init() {
	Register(RuleUncheckedTransfer, buildUncheckedTransfer)
}

const (
	defaultTransferPattern = `^(transfer|transferFrom)$`
	defaultSafePattern     = `safe(Transfer|TransferFrom|Approve)`
	defaultNativeTransfer  = "transfer(uint256)"
	defaultTransferEvent   = "transfer"
)

// buildUncheckedTransfer flags entrypoints calling ERC-20
// transfer/transferFrom on another contract without a SafeERC20 wrapper
// and without a require/assert over the call. The exact-name pattern
// excludes internal helpers like _transfer; the cross-contract test
// excludes same-contract bookkeeping.
func buildUncheckedTransfer(sets KeywordSets) (Rule, error) {
	transferRe, err := pattern(RuleUncheckedTransfer, sets, "transfer_pattern", defaultTransferPattern)
	if err != nil {
		return Rule{}, err
	}
	safeRe, err := pattern(RuleUncheckedTransfer, sets, "safe_pattern", defaultSafePattern)
	if err != nil {
		return Rule{}, err
	}
	checks, err := keywords(RuleUncheckedTransfer, sets, "check_calls", defaultCheckCallTokens)
	if err != nil {
		return Rule{}, err
	}

	limits := Limits{
		CandidateLimit:   100,
		CalleeLimit:      100,
		InstructionLimit: 200,
		SiblingLimit:     50,
		MaxResults:       1000,
	}

	return Rule{
		Meta: Meta{
			ID:          RuleUncheckedTransfer,
			Title:       "Unchecked ERC20 transfer return values",
			Description: "Functions calling ERC20 transfer/transferFrom without checking return values and without SafeERC20 wrappers.",
			Tags:        []string{"token", "erc20", "unchecked-return", "insolvency", "theft"},
		},
		Limits: limits,
		Filter: entrypointFilter(),
		Pipeline: pipeline.Pipeline{
			{Name: "external-transfer-callee", Keep: predicate.CrossContractCallee(transferRe, limits.CalleeLimit)},
			{Name: "no-safe-wrapper", Keep: predicate.Not(
				predicate.CalleeNameMatches(safeRe, limits.CalleeLimit),
			)},
			{Name: "no-return-check", Keep: predicate.Not(
				predicate.InstructionContains(checks, limits.InstructionLimit),
			)},
			{Name: "not-event-emission", Keep: predicate.Not(
				predicate.EventEmission(defaultTransferEvent, limits.InstructionLimit),
			)},
			{Name: "not-native-transfer", Keep: predicate.Not(
				predicate.CallWithSignature(defaultNativeTransfer, limits.InstructionLimit),
			)},
		},
	}, nil
}
