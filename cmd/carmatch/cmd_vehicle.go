// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/carmatch/internal/api"
	"github.com/tomtom215/carmatch/internal/catalog"
	"github.com/tomtom215/carmatch/internal/validation"
)

func newVehicleCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "vehicle <id> [id...]",
		Short: "Show one vehicle, or compare several side by side",
		Args:  cobra.RangeArgs(1, validation.MaxCompareIDs),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := a.provider()

			if len(args) == 1 {
				v, err := provider.Vehicle(args[0])
				if errors.Is(err, catalog.ErrVehicleNotFound) {
					return fmt.Errorf("%w: %s", catalog.ErrVehicleNotFound, args[0])
				}
				if err != nil {
					return err
				}
				return a.print(cmd, v)
			}

			return a.print(cmd, api.NewCompareResponse(args, provider.Compare(args)))
		},
	}
}
