// Copyright 2026 pxng0lin
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ScanMetrics collects counters for rule evaluation, exported at
// /metrics in serve mode.
type ScanMetrics struct {
	RuleRuns      *prometheus.CounterVec
	HitsReported  *prometheus.CounterVec
	BackendErrors prometheus.Counter
	ConfigErrors  prometheus.Counter
	ScanDuration  prometheus.Histogram
}

func NewScanMetrics() *ScanMetrics {
	return &ScanMetrics{
		RuleRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "caged_rule_runs_total",
			Help: "Total number of rule evaluations",
		}, []string{"rule"}),
		HitsReported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "caged_hits_reported_total",
			Help: "Total number of vulnerability hits reported",
		}, []string{"rule"}),
		BackendErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "caged_backend_errors_total",
			Help: "Total number of IR backend enumeration failures",
		}),
		ConfigErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "caged_config_errors_total",
			Help: "Total number of rules rejected for invalid configuration",
		}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "caged_scan_duration_seconds",
			Help:    "Duration of full snapshot scans",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Register attaches all collectors to the given registry.
func (m *ScanMetrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.RuleRuns,
		m.HitsReported,
		m.BackendErrors,
		m.ConfigErrors,
		m.ScanDuration,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
