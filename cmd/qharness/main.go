// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/dotandev/qharness/internal/cmd"
)

// Version is injected via -ldflags at release build time.
var Version = "dev"

func main() {
	// Set version in cmd package (used for the async update check)
	cmd.Version = Version

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
