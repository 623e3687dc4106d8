// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomtom215/carmatch/internal/api"
	"github.com/tomtom215/carmatch/internal/validation"
)

func newSafetyCommand(a *app) *cobra.Command {
	var query validation.SafetyQuery

	cmd := &cobra.Command{
		Use:   "safety",
		Short: "Look up NHTSA complaint and recall counts for a model year",
		Long: `Look up NHTSA complaint and recall counts for a model year.

Results are served from the enrichment cache when fresh. On an NHTSA failure
the error payload is printed and the command exits with status 1.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query.Make = strings.TrimSpace(query.Make)
			query.Model = strings.TrimSpace(query.Model)
			if verr := validation.ValidateStruct(&query); verr != nil {
				return verr
			}

			cache, closeCache, err := a.openCache()
			if err != nil {
				return err
			}
			defer closeCache()

			result := cache.Get(cmd.Context(), query.Year, query.Make, query.Model)
			if !result.OK() {
				if err := a.print(cmd, result.Failure); err != nil {
					return err
				}
				return &lookupError{msg: result.Failure.Error}
			}
			if result.Warning != nil {
				a.logger.Warn().Err(result.Warning).Msg("Result not cached")
			}
			return a.print(cmd, api.SafetyResponse{Payload: result.Data, Cached: result.Cached})
		},
	}

	cmd.Flags().StringVar(&query.Make, "make", "", "Vehicle make (required)")
	cmd.Flags().StringVar(&query.Model, "model", "", "Vehicle model (required)")
	cmd.Flags().IntVar(&query.Year, "year", 0, "Model year (required)")
	_ = cmd.MarkFlagRequired("make")
	_ = cmd.MarkFlagRequired("model")
	_ = cmd.MarkFlagRequired("year")

	return cmd
}
