// Copyright 2026 pxng0lin
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Printer renders a scan report for the terminal.
type Printer struct {
	w io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) Print(rep *ScanReport) {
	header := color.New(color.FgCyan, color.Bold)
	hit := color.New(color.FgRed)
	clean := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)

	header.Fprintf(p.w, "%s — %s\n", rep.Title, rep.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))
	if rep.Snapshot != "" {
		fmt.Fprintf(p.w, "snapshot: %s\n", rep.Snapshot)
	}
	fmt.Fprintln(p.w)

	for _, rr := range rep.Results {
		if rr.ConfigError {
			warn.Fprintf(p.w, "✗ %s rejected: %s\n", rr.RuleID, rr.Error)
			continue
		}

		if len(rr.Hits) == 0 {
			clean.Fprintf(p.w, "✓ %s: no hits\n", rr.RuleID)
		} else {
			hit.Fprintf(p.w, "● %s: %d hit(s)\n", rr.RuleID, len(rr.Hits))
			for _, h := range rr.Hits {
				fmt.Fprintf(p.w, "    %s\n", h.Function.String())
			}
		}
		if rr.Partial {
			warn.Fprintf(p.w, "  partial results: %s\n", rr.Error)
		}
		if len(rr.Tags) > 0 {
			fmt.Fprintf(p.w, "    tags: %s\n", strings.Join(rr.Tags, ", "))
		}
	}

	fmt.Fprintf(p.w, "\ntotal: %d hit(s)\n", rep.TotalHits)
}
