// Copyright 2026 pxng0lin
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"time"

	"github.com/pxng0lin/caged/internal/engine"
	"github.com/pxng0lin/caged/internal/rules"
)

// ScanReport is the exportable outcome of one scan over a snapshot.
type ScanReport struct {
	Title       string       `json:"title"`
	GeneratedAt time.Time    `json:"generated_at"`
	Snapshot    string       `json:"snapshot,omitempty"`
	TotalHits   int          `json:"total_hits"`
	Results     []RuleReport `json:"results"`
}

// RuleReport is one rule's section of the report.
type RuleReport struct {
	RuleID      string       `json:"rule_id"`
	Title       string       `json:"title,omitempty"`
	Tags        []string     `json:"tags,omitempty"`
	Hits        []engine.Hit `json:"hits"`
	Partial     bool         `json:"partial,omitempty"`
	Error       string       `json:"error,omitempty"`
	ConfigError bool         `json:"config_error,omitempty"`
}

// Build assembles a report from rule results plus any rules the
// registry rejected at load time.
func Build(snapshot string, rs []rules.Rule, results []engine.RuleResult, rejected map[string]error) *ScanReport {
	meta := make(map[string]rules.Meta, len(rs))
	for _, r := range rs {
		meta[r.ID] = r.Meta
	}

	rep := &ScanReport{
		Title:       "caged scan",
		GeneratedAt: time.Now().UTC(),
		Snapshot:    snapshot,
	}

	for _, res := range results {
		rr := RuleReport{
			RuleID: res.RuleID,
			Hits:   res.Hits,
		}
		if m, ok := meta[res.RuleID]; ok {
			rr.Title = m.Title
			rr.Tags = m.Tags
		}
		if res.Err != nil {
			rr.Partial = true
			rr.Error = res.Err.Error()
		}
		rep.TotalHits += len(res.Hits)
		rep.Results = append(rep.Results, rr)
	}

	for id, err := range rejected {
		rep.Results = append(rep.Results, RuleReport{
			RuleID:      id,
			Error:       err.Error(),
			ConfigError: true,
		})
	}

	return rep
}
