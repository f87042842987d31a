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

// Package rules holds the fixed registry of detection rules. Each rule
// file registers a builder in init(); Compile turns builders into
// runnable rules, rejecting any whose vocabulary is malformed without
// affecting the others.
package rules

import (
	"sort"
	"strings"

	"github.com/pxng0lin/caged/internal/errors"
)

// Builder constructs a rule from optional vocabulary overrides.
type Builder func(sets KeywordSets) (Rule, error)

type registration struct {
	id    string
	build Builder
}

var registry []registration

// Register adds a rule builder. Called from init() in the rule files.
func Register(id string, build Builder) {
	registry = append(registry, registration{id: id, build: build})
}

// IDs lists all registered rule IDs in sorted order.
func IDs() []string {
	out := make([]string, 0, len(registry))
	for _, reg := range registry {
		out = append(out, reg.id)
	}
	sort.Strings(out)
	return out
}

// Compile builds every registered rule against the given overrides.
// A rule whose configuration is invalid is rejected whole and reported
// in the returned map; valid rules come back sorted by ID for
// reproducible runs.
func Compile(ov Overrides) ([]Rule, map[string]error) {
	var compiled []Rule
	failed := make(map[string]error)
	seen := make(map[string]struct{}, len(registry))

	for _, reg := range registry {
		key := strings.ToLower(strings.TrimSpace(reg.id))
		if _, dup := seen[key]; dup {
			failed[reg.id] = errors.WrapConfigError(reg.id, "duplicate rule id")
			continue
		}
		seen[key] = struct{}{}

		var sets KeywordSets
		if ov != nil {
			sets = ov[reg.id]
		}
		rule, err := reg.build(sets)
		if err != nil {
			failed[reg.id] = err
			continue
		}
		compiled = append(compiled, rule)
	}

	sort.Slice(compiled, func(i, j int) bool { return compiled[i].ID < compiled[j].ID })
	return compiled, failed
}

// Get compiles and returns a single rule by ID.
func Get(id string, ov Overrides) (Rule, error) {
	for _, reg := range registry {
		if strings.EqualFold(reg.id, id) {
			var sets KeywordSets
			if ov != nil {
				sets = ov[reg.id]
			}
			return reg.build(sets)
		}
	}
	return Rule{}, errors.WrapUnknownRule(id)
}
