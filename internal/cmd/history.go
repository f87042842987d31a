// Copyright 2026 pxng0lin
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pxng0lin/caged/internal/config"
	"github.com/pxng0lin/caged/internal/db"
)

var (
	historyRuleFlag  string
	historyLimitFlag int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded scan runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		store, err := db.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.History(db.HistoryParams{
			RuleID: historyRuleFlag,
			Limit:  historyLimitFlag,
		})
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("no recorded runs")
			return nil
		}

		hit := color.New(color.FgRed)
		clean := color.New(color.FgGreen)
		warn := color.New(color.FgYellow)

		for _, run := range runs {
			marker := clean
			if run.HitCount > 0 {
				marker = hit
			}
			marker.Printf("#%d %s %s: %d hit(s)\n",
				run.ID,
				run.Timestamp.Format("2006-01-02 15:04:05"),
				run.RuleID,
				run.HitCount,
			)
			fmt.Printf("    snapshot: %s\n", run.Snapshot)
			if run.Partial {
				warn.Printf("    partial: %s\n", run.ErrorMsg)
			}
		}

		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyRuleFlag, "rule", "", "Filter runs by rule id")
	historyCmd.Flags().IntVar(&historyLimitFlag, "limit", 20, "Maximum runs to show")

	rootCmd.AddCommand(historyCmd)
}
