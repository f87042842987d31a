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
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pxng0lin/caged/internal/errors"
)

// KeywordSets are a rule's named vocabularies. Predicates are generic
// over their vocabulary; the sets here are rule configuration, not
// engine code.
type KeywordSets map[string][]string

// Overrides maps rule IDs to replacement keyword sets, loaded from a
// YAML file. A set present here replaces the rule's default set of the
// same name; absent sets keep their defaults.
type Overrides map[string]KeywordSets

// LoadOverrides reads a YAML vocabulary override file. An empty path
// yields no overrides.
func LoadOverrides(path string) (Overrides, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocab file: %w", err)
	}
	var ov Overrides
	if err := yaml.Unmarshal(data, &ov); err != nil {
		return nil, fmt.Errorf("failed to parse vocab file: %w", err)
	}
	return ov, nil
}

// keywords resolves a named set against its default, validating that
// the result is usable. An empty or all-blank set is a config error:
// a rule with no vocabulary would match nothing or everything.
func keywords(ruleID string, sets KeywordSets, name string, def []string) ([]string, error) {
	kws := def
	if sets != nil {
		if override, ok := sets[name]; ok {
			kws = override
		}
	}
	usable := 0
	for _, kw := range kws {
		if strings.TrimSpace(kw) != "" {
			usable++
		}
	}
	if usable == 0 {
		return nil, errors.WrapConfigError(ruleID, fmt.Sprintf("keyword set %q is empty", name))
	}
	return kws, nil
}

// pattern resolves a named single-pattern set and compiles it. A
// malformed pattern rejects the whole rule at load time, before any
// candidate is scanned.
func pattern(ruleID string, sets KeywordSets, name, def string) (*regexp.Regexp, error) {
	expr := def
	if sets != nil {
		if override, ok := sets[name]; ok {
			if len(override) != 1 || strings.TrimSpace(override[0]) == "" {
				return nil, errors.WrapConfigError(ruleID, fmt.Sprintf("pattern set %q must hold exactly one pattern", name))
			}
			expr = override[0]
		}
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.WrapConfigError(ruleID, fmt.Sprintf("pattern %q does not compile: %v", expr, err))
	}
	return re, nil
}
