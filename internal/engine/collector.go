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
	"github.com/pxng0lin/caged/internal/ir"
)

// Hit is one reported (function identity, rule id) pair. Hits are
// immutable values; they keep no reference to the live Function they
// came from.
type Hit struct {
	Function ir.FunctionID `json:"function"`
	RuleID   string        `json:"rule_id"`
}

// collect turns the functions surviving a pipeline into hits:
// pipeline order is preserved, duplicate function identities are
// dropped (first occurrence wins), and the list is truncated to
// maxResults keeping the earliest hits. The same snapshot therefore
// always yields the same hits up to the truncation boundary.
func collect(kept []ir.Function, ruleID string, maxResults int) []Hit {
	hits := make([]Hit, 0, len(kept))
	seen := make(map[ir.FunctionID]struct{}, len(kept))

	for _, fn := range kept {
		id := fn.ID()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		hits = append(hits, Hit{Function: id, RuleID: ruleID})
		if maxResults > 0 && len(hits) >= maxResults {
			break
		}
	}
	return hits
}
