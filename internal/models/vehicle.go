// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

// Package models holds the data types shared between the catalog, enrichment
// and recommendation packages.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Vehicle is one catalog record. Identity fields (ID, Year) are required;
// every other attribute is optional and nil means "unknown".
type Vehicle struct {
	ID         string `json:"id"`
	Make       string `json:"make,omitempty"`
	Model      string `json:"model,omitempty"`
	Year       int    `json:"year"`
	Drivetrain string `json:"drivetrain,omitempty"`
	FuelType   string `json:"fuel_type,omitempty"`

	Price       *float64 `json:"price,omitempty"`
	Seats       *int     `json:"seats,omitempty"`
	MPG         *float64 `json:"mpg,omitempty"`
	LPer100km   *float64 `json:"l_per_100km,omitempty"`
	ZeroToSixty *float64 `json:"zero_to_sixty,omitempty"`
	AnnualCost  *float64 `json:"annual_cost,omitempty"` // USD per year

	ReliabilityScore *float64 `json:"reliability_score,omitempty"` // [0,1]
	SafetyScore      *float64 `json:"safety_score,omitempty"`      // [0,1]
	ComplaintsCount  *int     `json:"complaints_count,omitempty"`
	RecallsCount     *int     `json:"recalls_count,omitempty"`
}

// Label returns a human readable "<year> <make> <model>" string.
func (v *Vehicle) Label() string {
	return strings.TrimSpace(fmt.Sprintf("%d %s %s", v.Year, v.Make, v.Model))
}

// HasIdentity reports whether the record carries enough to query issue data.
func (v *Vehicle) HasIdentity() bool {
	return v.Year > 0 && strings.TrimSpace(v.Make) != "" && strings.TrimSpace(v.Model) != ""
}

// Clone returns a deep copy so callers can modify optional fields without
// touching a shared catalog snapshot.
func (v *Vehicle) Clone() Vehicle {
	c := *v
	c.Price = cloneFloat(v.Price)
	c.Seats = cloneInt(v.Seats)
	c.MPG = cloneFloat(v.MPG)
	c.LPer100km = cloneFloat(v.LPer100km)
	c.ZeroToSixty = cloneFloat(v.ZeroToSixty)
	c.AnnualCost = cloneFloat(v.AnnualCost)
	c.ReliabilityScore = cloneFloat(v.ReliabilityScore)
	c.SafetyScore = cloneFloat(v.SafetyScore)
	c.ComplaintsCount = cloneInt(v.ComplaintsCount)
	c.RecallsCount = cloneInt(v.RecallsCount)
	return c
}

// CatalogSnapshot is an immutable view of the vehicle catalog at load time.
type CatalogSnapshot struct {
	Vehicles []Vehicle

	// UsingFallback is set when the built-in sample set was served because the
	// persisted catalog was missing or unusable.
	UsingFallback bool

	// LastUpdated is the catalog file modification time; nil for the fallback set.
	LastUpdated *time.Time
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return Float(*p)
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	return Int(*p)
}
