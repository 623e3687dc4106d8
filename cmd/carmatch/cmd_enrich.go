// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/carmatch/internal/catalog"
	"github.com/tomtom215/carmatch/internal/enrich"
)

// enrichSummary is printed after a batch run.
type enrichSummary struct {
	Catalog  string   `json:"catalog"`
	Total    int      `json:"total"`
	Enriched int      `json:"enriched"`
	Skipped  int      `json:"skipped"`
	Failed   []string `json:"failed"`
	Warnings []string `json:"warnings,omitempty"`
	Saved    bool     `json:"saved"`
	Duration string   `json:"duration"`
}

func newEnrichCommand(a *app) *cobra.Command {
	var (
		dryRun bool
		delay  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Enrich the catalog with NHTSA complaint and recall counts",
		Long: `Enrich every catalog vehicle with NHTSA complaint and recall counts,
reliability and safety scores, then save the catalog atomically.

Lookups go through the enrichment cache and are paced by --delay. Vehicles
missing make, model or year are kept unchanged. Interrupting the run saves
nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			provider := a.provider()
			snap := provider.Snapshot()
			if snap.UsingFallback {
				return fmt.Errorf("catalog %s could not be loaded; refusing to enrich the sample set", provider.Path())
			}

			cache, closeCache, err := a.openCache()
			if err != nil {
				return err
			}
			defer closeCache()

			if !cmd.Flags().Changed("delay") {
				delay = a.cfg.Enrichment.BatchDelay
			}

			start := time.Now()
			report, err := enrich.NewBatch(cache, delay, a.logger).Run(cmd.Context(), snap.Vehicles)
			if err != nil {
				return fmt.Errorf("enrichment interrupted: %w", err)
			}

			summary := enrichSummary{
				Catalog:  provider.Path(),
				Total:    len(report.Vehicles),
				Enriched: report.Enriched,
				Skipped:  report.Skipped,
				Failed:   report.Failed,
				Duration: time.Since(start).Round(time.Millisecond).String(),
			}
			if summary.Failed == nil {
				summary.Failed = []string{}
			}
			for _, w := range report.Warnings {
				summary.Warnings = append(summary.Warnings, w.Error())
			}

			if !dryRun {
				if err := catalog.Save(provider.Path(), report.Vehicles); err != nil {
					return err
				}
				summary.Saved = true
			}

			if err := a.print(cmd, summary); err != nil {
				return err
			}
			if len(report.Failed) > 0 {
				return &lookupError{msg: fmt.Sprintf("%d of %d lookups failed", len(report.Failed), summary.Total)}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run the lookups but do not save the catalog")
	cmd.Flags().DurationVar(&delay, "delay", enrich.DefaultBatchDelay, "Minimum spacing between NHTSA lookups (default from config)")

	return cmd
}
