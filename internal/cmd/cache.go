// Copyright 2026 qharness Users
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dotandev/qharness/internal/probestore"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the probe result cache",
	Long: `Inspect and prune cached backend capability probes.

Probe results live in ~/.qharness/probes.db and are served to the skip
helpers and the daemon instead of re-probing a simulator on every run.

Available subcommands:
  list   - Show all cached probe records
  clean  - Remove expired records
  clear  - Remove a backend's record (or all records)`,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show cached probe records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := probestore.NewStore()
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No cached probe records.")
			return nil
		}

		bold := color.New(color.Bold)
		dim := color.New(color.Faint)
		for _, rec := range records {
			bold.Printf("%s", rec.Backend)
			fmt.Printf(" %s", rec.Version)
			if rec.Fresh(probestore.DefaultTTL) {
				color.Green(" fresh")
			} else {
				color.Yellow(" stale")
			}
			fmt.Printf("  methods: %v\n", rec.Methods)
			dim.Printf("  probed %s\n", rec.ProbedAt.Format(time.RFC3339))
		}
		return nil
	},
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove expired probe records",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := probestore.NewStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Cleanup(cmd.Context(), probestore.DefaultTTL, probestore.DefaultMaxRecords); err != nil {
			return err
		}
		fmt.Println("Probe cache cleaned.")
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [backend]",
	Short: "Remove a backend's probe record, or every record",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := probestore.NewStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := cmd.Context()

		if len(args) == 1 {
			if err := store.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("Removed probe record for %s.\n", args[0])
			return nil
		}

		records, err := store.List(ctx)
		if err != nil {
			return err
		}
		for _, rec := range records {
			if err := store.Delete(ctx, rec.Backend); err != nil {
				return err
			}
		}
		fmt.Printf("Removed %d probe records.\n", len(records))
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheCleanCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	rootCmd.AddCommand(cacheCmd)
}
