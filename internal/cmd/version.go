// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version will be set by the main package
	Version = "dev"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of qharness",
	Long:  `Display the current version of the qharness CLI tool.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("qharness version %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
