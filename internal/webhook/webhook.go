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

package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pxng0lin/caged/internal/logger"
	"github.com/pxng0lin/caged/internal/report"
)

// Notifier posts scan outcomes to a webhook endpoint. Disabled when no
// URL is configured.
type Notifier struct {
	url       string
	client    *http.Client
	errorOnly bool
}

// Config contains configuration for the notifier.
type Config struct {
	URL       string
	ErrorOnly bool
	Timeout   time.Duration
}

func NewNotifier(cfg Config) *Notifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Notifier{
		url:       cfg.URL,
		client:    &http.Client{Timeout: timeout},
		errorOnly: cfg.ErrorOnly,
	}
}

func (n *Notifier) Enabled() bool { return n.url != "" }

// payload is the wire format posted to the endpoint.
type payload struct {
	Text   string             `json:"text"`
	Report *report.ScanReport `json:"report"`
}

// Notify posts the report. With ErrorOnly set, clean scans are skipped.
func (n *Notifier) Notify(ctx context.Context, rep *report.ScanReport) error {
	if !n.Enabled() {
		return nil
	}
	if n.errorOnly && rep.TotalHits == 0 {
		return nil
	}

	body, err := json.Marshal(payload{
		Text:   formatSummary(rep),
		Report: rep,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned %d", resp.StatusCode)
	}

	logger.Logger.Debug("webhook delivered", "url", n.url, "hits", rep.TotalHits)
	return nil
}

func formatSummary(rep *report.ScanReport) string {
	if rep.TotalHits == 0 {
		return fmt.Sprintf("caged: scan of %s clean", rep.Snapshot)
	}
	return fmt.Sprintf("caged: scan of %s reported %d hit(s)", rep.Snapshot, rep.TotalHits)
}
