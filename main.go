// Copyright 2026 pxng0lin
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pxng0lin/caged/internal/cmd"
)

// Build-time variables injected via -ldflags.
var (
	version   = "dev"
	commitSHA = "unknown"
)

func run(exec func() error, stderr io.Writer) int {
	if err := exec(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	cmd.Version = version
	cmd.CommitSHA = commitSHA

	os.Exit(run(cmd.Execute, os.Stderr))
}
