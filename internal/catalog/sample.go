// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package catalog

import "github.com/tomtom215/carmatch/internal/models"

// SampleVehicles returns the built-in fallback catalog. Each call returns a
// fresh slice the caller may keep.
func SampleVehicles() []models.Vehicle {
	return []models.Vehicle{
		{
			ID:               "civic_2018",
			Make:             "Honda",
			Model:            "Civic",
			Year:             2018,
			Price:            models.Float(19000),
			Drivetrain:       "FWD",
			MPG:              models.Float(32),
			Seats:            models.Int(5),
			ZeroToSixty:      models.Float(8.2),
			AnnualCost:       models.Float(2300),
			ReliabilityScore: models.Float(0.8),
		},
		{
			ID:               "wrx_2018",
			Make:             "Subaru",
			Model:            "WRX",
			Year:             2018,
			Price:            models.Float(24000),
			Drivetrain:       "AWD",
			MPG:              models.Float(24),
			Seats:            models.Int(5),
			ZeroToSixty:      models.Float(5.5),
			AnnualCost:       models.Float(3200),
			ReliabilityScore: models.Float(0.6),
		},
		{
			ID:               "leaf_2019",
			Make:             "Nissan",
			Model:            "Leaf",
			Year:             2019,
			Price:            models.Float(17000),
			Drivetrain:       "FWD",
			MPG:              models.Float(0), // electric; no meaningful mpg
			Seats:            models.Int(5),
			ZeroToSixty:      models.Float(7.9),
			AnnualCost:       models.Float(1800),
			ReliabilityScore: models.Float(0.7),
		},
	}
}
