// Copyright 2026 pxng0lin
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pxng0lin/caged/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List registered detection rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides, err := rules.LoadOverrides(VocabFlag)
		if err != nil {
			return err
		}

		compiled, rejected := rules.Compile(overrides)

		bold := color.New(color.Bold)
		warn := color.New(color.FgYellow)

		for _, rule := range compiled {
			bold.Printf("%s\n", rule.ID)
			fmt.Printf("  %s\n", rule.Title)
			if len(rule.Tags) > 0 {
				fmt.Printf("  tags: %s\n", strings.Join(rule.Tags, ", "))
			}
			fmt.Printf("  caps: candidates=%d callees=%d instructions=%d results=%d\n",
				rule.Limits.CandidateLimit,
				rule.Limits.CalleeLimit,
				rule.Limits.InstructionLimit,
				rule.Limits.MaxResults,
			)
		}

		for id, cfgErr := range rejected {
			warn.Printf("%s rejected: %v\n", id, cfgErr)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
