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

package daemon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pxng0lin/caged/internal/engine"
	"github.com/pxng0lin/caged/internal/ir"
	"github.com/pxng0lin/caged/internal/metrics"
	"github.com/pxng0lin/caged/internal/rules"
)

var tokenAddr = common.HexToAddress("0x00000000000000000000000000000000000000a2")

func testServer(t *testing.T, authToken string) *httptest.Server {
	t.Helper()

	snap := &ir.Snapshot{
		Contracts: []ir.ContractData{
			{
				Address: common.HexToAddress("0x00000000000000000000000000000000000000a1"),
				Functions: []ir.FunctionData{
					{
						Signature:    "withdraw(uint256)",
						Properties:   []string{"external"},
						Instructions: []ir.InstructionData{{Text: "token.transfer(msg.sender, amount)"}},
						Callees:      []ir.CalleeData{{Name: "transfer", Contract: &tokenAddr}},
					},
				},
			},
		},
	}

	compiled, failed := rules.Compile(nil)
	require.Empty(t, failed)

	scanMetrics := metrics.NewScanMetrics()
	runner := engine.New(snap, compiled, engine.WithMetrics(scanMetrics))
	srv, err := NewServer(runner, scanMetrics, Config{AuthToken: authToken})
	require.NoError(t, err)

	handler, err := srv.Handler()
	require.NoError(t, err)

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return ts
}

type rpcEnvelope struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func rpcCall(t *testing.T, url, method string, params any, headers map[string]string) rpcEnvelope {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
		"id":      1,
	})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url+"/rpc", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env rpcEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func TestHealthz(t *testing.T) {
	ts := testServer(t, "")

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "ok", string(body))
}

func TestScannerRules(t *testing.T) {
	ts := testServer(t, "")

	env := rpcCall(t, ts.URL, "Scanner.Rules", RulesRequest{}, nil)
	require.Nil(t, env.Error)

	var resp RulesResponse
	require.NoError(t, json.Unmarshal(env.Result, &resp))
	require.Len(t, resp.Rules, 3)
	assert.Equal(t, rules.RuleAMMDeadline, resp.Rules[0].ID)
}

func TestScannerRun(t *testing.T) {
	ts := testServer(t, "")

	env := rpcCall(t, ts.URL, "Scanner.Run", RunRequest{RuleID: rules.RuleUncheckedTransfer}, nil)
	require.Nil(t, env.Error)

	var resp RunResponse
	require.NoError(t, json.Unmarshal(env.Result, &resp))
	assert.Equal(t, rules.RuleUncheckedTransfer, resp.RuleID)
	require.Len(t, resp.Hits, 1)
	assert.Equal(t, "withdraw(uint256)", resp.Hits[0].Function.Signature)
	assert.False(t, resp.Partial)
}

func TestScannerRun_UnknownRule(t *testing.T) {
	ts := testServer(t, "")

	env := rpcCall(t, ts.URL, "Scanner.Run", RunRequest{RuleID: "no-such-rule"}, nil)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Message, "unknown rule")
}

func TestScannerRun_Auth(t *testing.T) {
	ts := testServer(t, "s3cret")

	env := rpcCall(t, ts.URL, "Scanner.Run", RunRequest{RuleID: rules.RuleUncheckedTransfer}, nil)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Message, "unauthorized")

	env = rpcCall(t, ts.URL, "Scanner.Run", RunRequest{RuleID: rules.RuleUncheckedTransfer}, map[string]string{
		"Authorization": "Bearer s3cret",
	})
	require.Nil(t, env.Error)

	// a bare token without the Bearer prefix is accepted too
	env = rpcCall(t, ts.URL, "Scanner.Rules", RulesRequest{}, map[string]string{
		"Authorization": "s3cret",
	})
	require.Nil(t, env.Error)

	env = rpcCall(t, ts.URL, "Scanner.Rules", RulesRequest{}, map[string]string{
		"Authorization": "Bearer wrong",
	})
	require.NotNil(t, env.Error)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := testServer(t, "")

	// drive one run so the counters materialize
	env := rpcCall(t, ts.URL, "Scanner.Run", RunRequest{RuleID: rules.RuleUncheckedTransfer}, nil)
	require.Nil(t, env.Error)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.True(t, strings.Contains(text, "caged_rule_runs_total"), "missing rule run counter:\n%s", text)
	assert.Contains(t, text, fmt.Sprintf(`rule="%s"`, rules.RuleUncheckedTransfer))
}
