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

	"github.com/spf13/cobra"

	"github.com/pxng0lin/caged/internal/config"
	"github.com/pxng0lin/caged/internal/daemon"
	"github.com/pxng0lin/caged/internal/engine"
	"github.com/pxng0lin/caged/internal/ir"
	"github.com/pxng0lin/caged/internal/logger"
	"github.com/pxng0lin/caged/internal/metrics"
	"github.com/pxng0lin/caged/internal/rules"
	"github.com/pxng0lin/caged/internal/telemetry"
)

var (
	serveSnapshotFlag string
	serveListenFlag   string
	serveTokenFlag    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve rule runs over JSON-RPC with prometheus metrics",
	Long: `Serve loads an IR snapshot once and answers Scanner.Run and
Scanner.Rules JSON-RPC calls against it. Prometheus metrics are exposed
at /metrics and a liveness probe at /healthz.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		snapshotPath := serveSnapshotFlag
		if snapshotPath == "" {
			snapshotPath = cfg.SnapshotPath
		}
		if snapshotPath == "" {
			return fmt.Errorf("serve: --snapshot (or CAGED_SNAPSHOT) is required")
		}

		listen := serveListenFlag
		if listen == "" {
			listen = cfg.Listen
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

		overrides, err := rules.LoadOverrides(VocabFlag)
		if err != nil {
			return err
		}

		snap, err := ir.LoadSnapshot(snapshotPath)
		if err != nil {
			return err
		}

		compiled, rejected := rules.Compile(overrides)
		scanMetrics := metrics.NewScanMetrics()
		for id, cfgErr := range rejected {
			logger.Logger.Warn("rule rejected", "rule", id, "error", cfgErr)
			scanMetrics.ConfigErrors.Inc()
		}

		runner := engine.New(snap, compiled, engine.WithMetrics(scanMetrics))

		server, err := daemon.NewServer(runner, scanMetrics, daemon.Config{
			Listen:    listen,
			AuthToken: serveTokenFlag,
		})
		if err != nil {
			return err
		}

		return server.ListenAndServe(listen)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveSnapshotFlag, "snapshot", "", "Path to the IR snapshot JSON export")
	serveCmd.Flags().StringVar(&serveListenFlag, "listen", "", "Listen address (default :8725)")
	serveCmd.Flags().StringVar(&serveTokenFlag, "token", "", "Require this bearer token on RPC calls")

	rootCmd.AddCommand(serveCmd)
}
