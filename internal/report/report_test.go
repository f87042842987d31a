// Copyright 2026 pxng0lin
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pxng0lin/caged/internal/engine"
	"github.com/pxng0lin/caged/internal/rules"
)

func sampleResults() ([]rules.Rule, []engine.RuleResult) {
	rs, _ := rules.Compile(nil)

	hit := engine.Hit{RuleID: rules.RuleAMMDeadline}
	hit.Function.Contract = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	hit.Function.Signature = "swap(uint256)"

	results := []engine.RuleResult{
		{RuleID: rules.RuleAMMDeadline, Hits: []engine.Hit{hit}},
		{RuleID: rules.RuleStaleOracle, Hits: nil},
		{RuleID: rules.RuleUncheckedTransfer, Hits: nil, Err: fmt.Errorf("backend gone")},
	}
	return rs, results
}

func TestBuild(t *testing.T) {
	rs, results := sampleResults()
	rejected := map[string]error{"custom-rule": fmt.Errorf("keyword set empty")}

	rep := Build("ir.json", rs, results, rejected)

	assert.Equal(t, "ir.json", rep.Snapshot)
	assert.Equal(t, 1, rep.TotalHits)
	require.Len(t, rep.Results, 4)

	amm := rep.Results[0]
	assert.Equal(t, rules.RuleAMMDeadline, amm.RuleID)
	assert.Equal(t, "AMM router operations without deadline checks", amm.Title)
	assert.NotEmpty(t, amm.Tags)
	assert.Len(t, amm.Hits, 1)
	assert.False(t, amm.Partial)

	transfer := rep.Results[2]
	assert.True(t, transfer.Partial)
	assert.Equal(t, "backend gone", transfer.Error)

	custom := rep.Results[3]
	assert.True(t, custom.ConfigError)
	assert.Equal(t, "custom-rule", custom.RuleID)
	assert.Equal(t, "keyword set empty", custom.Error)
}

func TestExport(t *testing.T) {
	rs, results := sampleResults()
	rep := Build("ir.json", rs, results, nil)

	dir := t.TempDir()
	exp, err := NewExporter(dir)
	require.NoError(t, err)

	path, err := exp.Export(rep, "json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, dir))
	assert.True(t, strings.HasSuffix(path, ".json"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded ScanReport
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, rep.TotalHits, decoded.TotalHits)
	assert.Equal(t, rep.Snapshot, decoded.Snapshot)
	require.Len(t, decoded.Results, len(rep.Results))
	assert.Equal(t, rep.Results[0].Hits, decoded.Results[0].Hits)
}

func TestExport_UnsupportedFormat(t *testing.T) {
	exp, err := NewExporter(t.TempDir())
	require.NoError(t, err)

	_, err = exp.Export(&ScanReport{}, "xml")
	assert.Error(t, err)
}

func TestGenerateFilename(t *testing.T) {
	name := generateFilename("caged scan", "json")
	assert.True(t, strings.HasPrefix(name, "caged-scan-"))
	assert.True(t, strings.HasSuffix(name, ".json"))

	fallback := generateFilename("///", "json")
	assert.True(t, strings.HasPrefix(fallback, "report-"))
}

func TestPrinter(t *testing.T) {
	rs, results := sampleResults()
	rep := Build("ir.json", rs, results, map[string]error{
		"custom-rule": fmt.Errorf("keyword set empty"),
	})

	var buf bytes.Buffer
	NewPrinter(&buf).Print(rep)
	out := buf.String()

	assert.Contains(t, out, "snapshot: ir.json")
	assert.Contains(t, out, "swap(uint256)")
	assert.Contains(t, out, "stale-oracle-usage: no hits")
	assert.Contains(t, out, "partial results: backend gone")
	assert.Contains(t, out, "custom-rule rejected")
	assert.Contains(t, out, "total: 1 hit(s)")
}
