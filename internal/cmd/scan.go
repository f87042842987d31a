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

package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pxng0lin/caged/internal/config"
	"github.com/pxng0lin/caged/internal/db"
	"github.com/pxng0lin/caged/internal/engine"
	"github.com/pxng0lin/caged/internal/logger"
	"github.com/pxng0lin/caged/internal/report"
	"github.com/pxng0lin/caged/internal/rules"
	"github.com/pxng0lin/caged/internal/telemetry"
	"github.com/pxng0lin/caged/internal/webhook"

	"github.com/pxng0lin/caged/internal/ir"
)

var (
	scanSnapshotFlag   string
	scanRuleFlag       string
	scanMaxResultsFlag int
	scanFormatFlag     string
	scanOutFlag        string
	scanWebhookFlag    string
	scanNoHistoryFlag  bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run detection rules over an IR snapshot",
	Long: `Scan loads an IR snapshot export and evaluates the registered
detection rules against it. With --rule only that rule runs; otherwise
every compiled rule runs concurrently.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		snapshotPath := scanSnapshotFlag
		if snapshotPath == "" {
			snapshotPath = cfg.SnapshotPath
		}
		if snapshotPath == "" {
			return fmt.Errorf("scan: --snapshot (or CAGED_SNAPSHOT) is required")
		}

		vocabPath := VocabFlag
		if vocabPath == "" {
			vocabPath = cfg.VocabPath
		}
		overrides, err := rules.LoadOverrides(vocabPath)
		if err != nil {
			return err
		}

		shutdown, err := telemetry.Init(cmd.Context(), telemetry.Config{
			Enabled:     cfg.TelemetryEnabled,
			ExporterURL: cfg.TelemetryEndpoint,
			ServiceName: "caged",
		})
		if err != nil {
			return err
		}
		defer shutdown()

		snap, err := ir.LoadSnapshot(snapshotPath)
		if err != nil {
			return err
		}

		compiled, rejected := rules.Compile(overrides)
		for id, cfgErr := range rejected {
			logger.Logger.Warn("rule rejected", "rule", id, "error", cfgErr)
		}

		runner := engine.New(snap, compiled)

		var results []engine.RuleResult
		if scanRuleFlag != "" {
			hits, runErr := runner.Run(cmd.Context(), scanRuleFlag, scanMaxResultsFlag)
			if runErr != nil && hits == nil {
				return runErr
			}
			results = []engine.RuleResult{{RuleID: scanRuleFlag, Hits: hits, Err: runErr}}
		} else {
			results = runner.RunAll(cmd.Context())
		}

		rep := report.Build(snapshotPath, compiled, results, rejected)

		switch strings.ToLower(scanFormatFlag) {
		case "", "text":
			report.NewPrinter(os.Stdout).Print(rep)
		case "json":
			outDir := scanOutFlag
			if outDir == "" {
				outDir = cfg.OutputDir
			}
			exporter, expErr := report.NewExporter(outDir)
			if expErr != nil {
				return expErr
			}
			path, expErr := exporter.Export(rep, "json")
			if expErr != nil {
				return expErr
			}
			fmt.Printf("report written to %s\n", path)
		default:
			return fmt.Errorf("unsupported format: %s", scanFormatFlag)
		}

		if !scanNoHistoryFlag {
			if err := recordHistory(cfg, snapshotPath, results); err != nil {
				logger.Logger.Warn("failed to record scan history", "error", err)
			}
		}

		webhookURL := scanWebhookFlag
		if webhookURL == "" {
			webhookURL = cfg.WebhookURL
		}
		notifier := webhook.NewNotifier(webhook.Config{URL: webhookURL})
		if notifier.Enabled() {
			if err := notifier.Notify(cmd.Context(), rep); err != nil {
				logger.Logger.Warn("webhook notification failed", "error", err)
			}
		}

		return nil
	},
}

func recordHistory(cfg *config.Config, snapshot string, results []engine.RuleResult) error {
	store, err := db.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, res := range results {
		if _, err := store.SaveResult(snapshot, res); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	scanCmd.Flags().StringVar(&scanSnapshotFlag, "snapshot", "", "Path to the IR snapshot JSON export")
	scanCmd.Flags().StringVar(&scanRuleFlag, "rule", "", "Run only the named rule")
	scanCmd.Flags().IntVar(&scanMaxResultsFlag, "max-results", 0, "Override the rule's result cap")
	scanCmd.Flags().StringVar(&scanFormatFlag, "format", "text", "Output format: text|json")
	scanCmd.Flags().StringVar(&scanOutFlag, "out", "", "Output directory for JSON reports")
	scanCmd.Flags().StringVar(&scanWebhookFlag, "webhook-url", "", "POST the report to this URL after the scan")
	scanCmd.Flags().BoolVar(&scanNoHistoryFlag, "no-history", false, "Skip recording the scan in the history database")

	rootCmd.AddCommand(scanCmd)
}
