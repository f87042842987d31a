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

package engine

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pxng0lin/caged/internal/errors"
	"github.com/pxng0lin/caged/internal/ir"
	"github.com/pxng0lin/caged/internal/metrics"
	"github.com/pxng0lin/caged/internal/rules"
)

var (
	addrDEX   = common.HexToAddress("0x00000000000000000000000000000000000000f1")
	addrERC20 = common.HexToAddress("0x00000000000000000000000000000000000000f2")
)

// vulnerableSnapshot carries one hit per rule: an unguarded AMM swap, an
// unvalidated oracle liquidation, and an unchecked token transfer.
func vulnerableSnapshot() *ir.Snapshot {
	return &ir.Snapshot{
		Source: "test",
		Contracts: []ir.ContractData{
			{
				Address: addrDEX,
				Name:    "Mixed",
				Functions: []ir.FunctionData{
					{
						Signature:    "swapExactTokensForTokens(uint256,uint256,address[],address)",
						Properties:   []string{"public"},
						Instructions: []ir.InstructionData{{Text: "pair.swap(a, b, to)"}},
						Callees:      []ir.CalleeData{{Name: "UniswapV2Pair.swap"}},
					},
					{
						Signature:    "liquidate(address)",
						Properties:   []string{"public"},
						Instructions: []ir.InstructionData{{Text: "(, int256 answer,,,) = feed.latestRoundData()"}},
						Callees:      []ir.CalleeData{{Name: "latestRoundData"}},
					},
					{
						Signature:    "payout(uint256)",
						Properties:   []string{"external"},
						Instructions: []ir.InstructionData{{Text: "token.transfer(msg.sender, amount)"}},
						Callees:      []ir.CalleeData{{Name: "transfer", Contract: &addrERC20}},
					},
				},
			},
		},
	}
}

func compiledRules(t *testing.T) []rules.Rule {
	t.Helper()
	rs, failed := rules.Compile(nil)
	require.Empty(t, failed)
	return rs
}

// fakeFn is the minimal Function carrier for collector tests.
type fakeFn struct {
	id ir.FunctionID
}

func (f fakeFn) ID() ir.FunctionID                                  { return f.id }
func (f fakeFn) Signature() string                                  { return f.id.Signature }
func (f fakeFn) Properties() ir.PropertySet                         { return 0 }
func (f fakeFn) Contract() common.Address                           { return f.id.Contract }
func (f fakeFn) Instructions(int) ([]ir.Instruction, error)         { return nil, nil }
func (f fakeFn) Modifiers() ([]ir.Modifier, error)                  { return nil, nil }
func (f fakeFn) Callees(int) ([]ir.Callee, error)                   { return nil, nil }
func (f fakeFn) ContractFunctions(int) ([]ir.Function, error)       { return nil, nil }

func fns(sigs ...string) []ir.Function {
	out := make([]ir.Function, len(sigs))
	for i, sig := range sigs {
		out[i] = fakeFn{id: ir.FunctionID{Contract: addrDEX, Signature: sig}}
	}
	return out
}

func TestCollect_Dedup(t *testing.T) {
	kept := fns("a()", "b()", "a()", "c()", "b()")

	hits := collect(kept, "some-rule", 0)
	require.Len(t, hits, 3)
	assert.Equal(t, "a()", hits[0].Function.Signature)
	assert.Equal(t, "b()", hits[1].Function.Signature)
	assert.Equal(t, "c()", hits[2].Function.Signature)
	for _, h := range hits {
		assert.Equal(t, "some-rule", h.RuleID)
	}
}

func TestCollect_TruncationKeepsStablePrefix(t *testing.T) {
	kept := fns("a()", "b()", "c()", "d()")

	full := collect(kept, "r", 4)
	truncated := collect(kept, "r", 2)

	require.Len(t, truncated, 2)
	assert.Equal(t, full[:2], truncated)
}

func TestCollect_DedupBeforeTruncation(t *testing.T) {
	kept := fns("a()", "a()", "b()", "c()")

	hits := collect(kept, "r", 2)
	require.Len(t, hits, 2)
	assert.Equal(t, "a()", hits[0].Function.Signature)
	assert.Equal(t, "b()", hits[1].Function.Signature)
}

func TestCollect_ZeroLimitUnbounded(t *testing.T) {
	hits := collect(fns("a()", "b()", "c()"), "r", 0)
	assert.Len(t, hits, 3)
}

func TestRun_UnknownRule(t *testing.T) {
	runner := New(vulnerableSnapshot(), compiledRules(t))

	_, err := runner.Run(context.Background(), "no-such-rule", 0)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrUnknownRule))
}

func TestRun_SingleRule(t *testing.T) {
	runner := New(vulnerableSnapshot(), compiledRules(t))

	hits, err := runner.Run(context.Background(), rules.RuleAMMDeadline, 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "swapExactTokensForTokens(uint256,uint256,address[],address)", hits[0].Function.Signature)
	assert.Equal(t, rules.RuleAMMDeadline, hits[0].RuleID)
}

func TestRun_CaseInsensitiveRuleID(t *testing.T) {
	runner := New(vulnerableSnapshot(), compiledRules(t))

	hits, err := runner.Run(context.Background(), "STALE-ORACLE-USAGE", 0)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestRun_Deterministic(t *testing.T) {
	runner := New(vulnerableSnapshot(), compiledRules(t))

	first, err := runner.Run(context.Background(), rules.RuleUncheckedTransfer, 0)
	require.NoError(t, err)
	second, err := runner.Run(context.Background(), rules.RuleUncheckedTransfer, 0)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRunAll_DeterministicRuleOrder(t *testing.T) {
	runner := New(vulnerableSnapshot(), compiledRules(t))

	results := runner.RunAll(context.Background())
	require.Len(t, results, 3)

	// results follow compiled rule order, not goroutine completion order
	assert.Equal(t, rules.RuleAMMDeadline, results[0].RuleID)
	assert.Equal(t, rules.RuleStaleOracle, results[1].RuleID)
	assert.Equal(t, rules.RuleUncheckedTransfer, results[2].RuleID)

	for _, res := range results {
		require.NoError(t, res.Err)
		assert.Len(t, res.Hits, 1, "rule %s", res.RuleID)
	}

	again := runner.RunAll(context.Background())
	assert.Equal(t, results, again)
}

// partialBackend yields a truncated candidate list together with an
// error, the way a paging backend fails mid-enumeration.
type partialBackend struct {
	snap *ir.Snapshot
}

func (b partialBackend) Functions(filter ir.Filter, limit int) ([]ir.Function, error) {
	fns, _ := b.snap.Functions(filter, limit)
	if len(fns) > 1 {
		fns = fns[:1]
	}
	return fns, fmt.Errorf("page 2 unavailable")
}

func TestRunAll_PartialResults(t *testing.T) {
	runner := New(partialBackend{snap: vulnerableSnapshot()}, compiledRules(t))

	results := runner.RunAll(context.Background())
	require.Len(t, results, 3)

	for _, res := range results {
		require.Error(t, res.Err)
		assert.True(t, stderrors.Is(res.Err, errors.ErrBackend), "rule %s", res.RuleID)
	}

	// the one function the backend did yield is still classified
	assert.Len(t, results[0].Hits, 1, "amm hit survives the failed enumeration")
}

func TestRun_MaxResultsOverride(t *testing.T) {
	snap := &ir.Snapshot{
		Contracts: []ir.ContractData{
			{
				Address: addrDEX,
				Functions: []ir.FunctionData{
					{
						Signature:    "payoutA(uint256)",
						Properties:   []string{"external"},
						Instructions: []ir.InstructionData{{Text: "token.transfer(a, x)"}},
						Callees:      []ir.CalleeData{{Name: "transfer", Contract: &addrERC20}},
					},
					{
						Signature:    "payoutB(uint256)",
						Properties:   []string{"external"},
						Instructions: []ir.InstructionData{{Text: "token.transfer(b, x)"}},
						Callees:      []ir.CalleeData{{Name: "transfer", Contract: &addrERC20}},
					},
					{
						Signature:    "payoutC(uint256)",
						Properties:   []string{"external"},
						Instructions: []ir.InstructionData{{Text: "token.transfer(c, x)"}},
						Callees:      []ir.CalleeData{{Name: "transfer", Contract: &addrERC20}},
					},
				},
			},
		},
	}
	runner := New(snap, compiledRules(t))

	all, err := runner.Run(context.Background(), rules.RuleUncheckedTransfer, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	capped, err := runner.Run(context.Background(), rules.RuleUncheckedTransfer, 2)
	require.NoError(t, err)
	require.Len(t, capped, 2)
	assert.Equal(t, all[:2], capped)
}

func TestRunAll_Metrics(t *testing.T) {
	m := metrics.NewScanMetrics()
	runner := New(vulnerableSnapshot(), compiledRules(t), WithMetrics(m))

	runner.RunAll(context.Background())

	assert.Equal(t, float64(1), testutil.ToFloat64(m.RuleRuns.WithLabelValues(rules.RuleAMMDeadline)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HitsReported.WithLabelValues(rules.RuleStaleOracle)))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.BackendErrors))
}

func TestRunAll_MetricsBackendErrors(t *testing.T) {
	m := metrics.NewScanMetrics()
	runner := New(partialBackend{snap: vulnerableSnapshot()}, compiledRules(t), WithMetrics(m))

	runner.RunAll(context.Background())

	assert.Equal(t, float64(3), testutil.ToFloat64(m.BackendErrors))
}
