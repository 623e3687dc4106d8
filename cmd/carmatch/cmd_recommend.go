// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/tomtom215/carmatch/internal/recommend"
	"github.com/tomtom215/carmatch/internal/validation"
)

func newRecommendCommand(a *app) *cobra.Command {
	var (
		body    validation.RecommendRequestBody
		weights map[string]string
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank catalog vehicles for a budget and passenger count",
		Long: `Rank catalog vehicles for a budget and passenger count.

Weights are given per criterion with --weight name=value and are normalized
to sum to 1. Criteria: ` + fmt.Sprint(recommend.Criteria()),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed, err := parseWeights(weights)
			if err != nil {
				return err
			}
			body.Weights = parsed

			if verr := validation.ValidateStruct(&body); verr != nil {
				return verr
			}

			engine, err := recommend.NewEngine(recommendConfig(a), a.provider(), a.logger)
			if err != nil {
				return err
			}
			resp, err := engine.Build(cmd.Context(), body.ToRequest())
			if err != nil {
				return err
			}
			return a.print(cmd, resp)
		},
	}

	cmd.Flags().Float64Var(&body.Budget, "budget", 0, "Target purchase price (required)")
	cmd.Flags().IntVar(&body.Passengers, "passengers", 0, "Seats required (required)")
	cmd.Flags().StringVar(&body.FuelType, "fuel-type", "", "Restrict to a fuel type")
	cmd.Flags().StringToStringVar(&weights, "weight", nil, "Criterion weight as name=value, repeatable")
	cmd.Flags().IntVar(&body.Limit, "limit", 0, "Number of results (default from config)")
	_ = cmd.MarkFlagRequired("budget")
	_ = cmd.MarkFlagRequired("passengers")

	return cmd
}

func parseWeights(raw map[string]string) (map[string]float64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]float64, len(raw))
	for name, value := range raw {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("weight %s: %q is not a number", name, value)
		}
		out[name] = f
	}
	return out, nil
}

func recommendConfig(a *app) *recommend.Config {
	c := recommend.DefaultConfig()
	c.DefaultLimit = a.cfg.Recommend.DefaultLimit
	c.MaxLimit = a.cfg.Recommend.MaxLimit
	c.Workers = a.cfg.Recommend.Workers
	c.ParallelThreshold = a.cfg.Recommend.ParallelThreshold
	return c
}
