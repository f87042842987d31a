// Copyright 2026 pxng0lin
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/pxng0lin/caged/internal/config"
	"github.com/pxng0lin/caged/internal/logger"
)

// Global flag variables
var (
	VocabFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "caged",
	Short: "Smart-contract vulnerability heuristics engine",
	Long: `Caged classifies smart-contract functions against named weakness
classes by composing heuristic predicates over an IR snapshot.

Built-in rules:
  - AMM router operations without deadline checks
  - Stale/invalid oracle usage for critical decisions
  - Unchecked ERC20 transfer return values

Examples:
  caged scan --snapshot ir.json               Run all rules
  caged scan --snapshot ir.json --rule amm-deadline-bypass
  caged rules                                 List registered rules
  caged history --limit 10                    Show past runs
  caged serve --snapshot ir.json              JSON-RPC + /metrics

Get started with 'caged scan --help'.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&VocabFlag,
		"vocab",
		"",
		"Path to a YAML vocabulary override file",
	)
}
