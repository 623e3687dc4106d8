// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package recommend

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tomtom215/carmatch/internal/models"
)

// Request is a single recommendation query. It is passed by value and never
// modified by the engine.
type Request struct {
	// Budget is the target purchase price. Must be positive.
	Budget float64 `json:"budget"`

	// Passengers is the number of seats required. Must be at least 1.
	Passengers int `json:"passengers"`

	// FuelType optionally restricts results to a fuel type (case-insensitive).
	FuelType string `json:"fuel_type,omitempty"`

	// Weights overrides DefaultWeights when non-empty. Values must be >= 0.
	Weights Weights `json:"weights,omitempty"`

	// Limit caps the number of results. Zero means Config.DefaultLimit.
	Limit int `json:"limit,omitempty"`
}

// Validate checks the request shape. The returned error is a *ValidationError
// naming the first offending field.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (r Request) Validate(maxLimit int) error {
	if math.IsNaN(r.Budget) || math.IsInf(r.Budget, 0) || r.Budget <= 0 {
		return &ValidationError{Field: "budget", Message: "must be a finite number greater than 0"}
	}
	if r.Passengers < 1 {
		return &ValidationError{Field: "passengers", Message: "must be at least 1"}
	}
	if r.Limit < 0 {
		return &ValidationError{Field: "limit", Message: "must not be negative"}
	}
	if maxLimit > 0 && r.Limit > maxLimit {
		return &ValidationError{Field: "limit", Message: fmt.Sprintf("must be at most %d", maxLimit)}
	}

	keys := make([]string, 0, len(r.Weights))
	for k := range r.Weights {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := r.Weights[k]
		field := "weights." + k
		if !IsCriterion(k) {
			return &ValidationError{Field: field, Message: "unknown criterion"}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return &ValidationError{Field: field, Message: "must be a finite number >= 0"}
		}
	}
	return nil
}

// ValidationError reports a malformed or out-of-range request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Points holds the seven weighted contributions of a scored vehicle.
type Points struct {
	WinterPoints        float64 `json:"winter_points"`
	FuelPoints          float64 `json:"fuel_points"`
	PricePoints         float64 `json:"price_points"`
	AccelerationPoints  float64 `json:"acceleration_points"`
	OwnershipCostPoints float64 `json:"ownership_cost_points"`
	ReliabilityPoints   float64 `json:"reliability_points"`
	SafetyPoints        float64 `json:"safety_points"`
}

// Sum returns the total of all contributions.
//
//nolint:gocritic // value receiver keeps Points immutable
func (p Points) Sum() float64 {
	return p.WinterPoints + p.FuelPoints + p.PricePoints + p.AccelerationPoints +
		p.OwnershipCostPoints + p.ReliabilityPoints + p.SafetyPoints
}

//nolint:gocritic // value receiver keeps Points immutable
func (p Points) rounded(places int) Points {
	return Points{
		WinterPoints:        round(p.WinterPoints, places),
		FuelPoints:          round(p.FuelPoints, places),
		PricePoints:         round(p.PricePoints, places),
		AccelerationPoints:  round(p.AccelerationPoints, places),
		OwnershipCostPoints: round(p.OwnershipCostPoints, places),
		ReliabilityPoints:   round(p.ReliabilityPoints, places),
		SafetyPoints:        round(p.SafetyPoints, places),
	}
}

// Result is a vehicle projection with its score breakdown.
type Result struct {
	models.Vehicle
	Points
	TotalScore float64 `json:"total_score"`
}

// Response is the outcome of a recommendation build.
type Response struct {
	WeightsUsed        Weights    `json:"weights_used"`
	UsingMockData      bool       `json:"using_mock_data"`
	CatalogLastUpdated *time.Time `json:"catalog_last_updated"`
	Results            []Result   `json:"results"`

	// Candidates is the number of vehicles that survived filtering.
	Candidates int `json:"-"`
}
