// Copyright 2026 pxng0lin
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version and CommitSHA are set by the main package at build time.
	Version   = "dev"
	CommitSHA = "unknown"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of caged",
	Long:  `Display the current version of the caged CLI tool.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("caged version %s (%s)\n", Version, CommitSHA)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
