// Copyright 2026 pxng0lin
// SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

type Exporter struct {
	outputDir string
}

func NewExporter(outputDir string) (*Exporter, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Exporter{outputDir: outputDir}, nil
}

// Export writes the report in the requested format and returns the
// written path. Only JSON is supported; the terminal printer covers
// human-readable output.
func (e *Exporter) Export(rep *ScanReport, format string) (string, error) {
	if strings.ToLower(format) != "json" {
		return "", fmt.Errorf("unsupported format: %s", format)
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}

	path := filepath.Join(e.outputDir, generateFilename(rep.Title, "json"))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

var unsafeFilename = regexp.MustCompile(`[^a-z0-9-]+`)

func generateFilename(title, ext string) string {
	slug := unsafeFilename.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "report"
	}
	return fmt.Sprintf("%s-%s.%s", slug, time.Now().UTC().Format("20060102-150405"), ext)
}
