// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package recommend

import (
	"math"
	"strings"
)

// Feature scorers map one raw attribute to [0,1]. They are pure and safe to
// call from any goroutine. Non-positive measurements (price, consumption,
// 0-60 time, annual cost) are treated as missing.

// MPGToLitersPer100km converts US miles per gallon to litres per 100 km.
const MPGToLitersPer100km = 235.214583

// Breakpoints for the linear feature ranges.
const (
	fuelBestL100km  = 4.0
	fuelWorstL100km = 12.0

	accelBestSeconds  = 4.0
	accelWorstSeconds = 10.0

	ownershipBestUSD  = 1500.0
	ownershipWorstUSD = 5000.0

	// priceOverrunPenalty is the feature lost per 100% over budget.
	priceOverrunPenalty = 0.5

	// neutralScore is used for missing reliability/safety signal.
	neutralScore = 0.5
)

// WinterFeature scores drivetrain suitability for winter driving.
func WinterFeature(drivetrain string) float64 {
	switch strings.ToUpper(strings.TrimSpace(drivetrain)) {
	case "AWD":
		return 1.0
	case "FWD":
		return 0.7
	case "RWD":
		return 0.4
	default:
		return 0.5
	}
}

// IsElectric reports whether fuelType names a battery electric vehicle.
func IsElectric(fuelType string) bool {
	switch strings.ToLower(strings.TrimSpace(fuelType)) {
	case "ev", "electric", "bev":
		return true
	}
	return false
}

// LitersPer100km resolves fuel consumption, preferring an explicit L/100km
// value and converting from mpg otherwise.
func LitersPer100km(lPer100km, mpg *float64) (float64, bool) {
	if v, ok := positive(lPer100km); ok {
		return v, true
	}
	if v, ok := positive(mpg); ok {
		return MPGToLitersPer100km / v, true
	}
	return 0, false
}

// FuelFeature scores fuel consumption. Electric vehicles score 0 here; their
// running cost is captured by the ownership cost criterion.
func FuelFeature(lPer100km, mpg *float64, fuelType string) float64 {
	if IsElectric(fuelType) {
		return 0
	}
	l, ok := LitersPer100km(lPer100km, mpg)
	if !ok {
		return 0
	}
	return lowerIsBetter(l, fuelBestL100km, fuelWorstL100km)
}

// PriceFitFeature scores price against budget. At or under budget scores 1;
// every 100% over budget costs 0.5. Missing price scores 0.
func PriceFitFeature(price *float64, budget float64) float64 {
	p, ok := positive(price)
	if !ok || budget <= 0 {
		return 0
	}
	if p <= budget {
		return 1
	}
	overRatio := (p - budget) / budget
	return clamp01(1 - overRatio*priceOverrunPenalty)
}

// AccelerationFeature scores the 0-60 mph time in seconds.
func AccelerationFeature(zeroToSixty *float64) float64 {
	s, ok := positive(zeroToSixty)
	if !ok {
		return 0
	}
	return lowerIsBetter(s, accelBestSeconds, accelWorstSeconds)
}

// OwnershipCostFeature scores the estimated annual running cost in USD.
func OwnershipCostFeature(annualCost *float64) float64 {
	c, ok := positive(annualCost)
	if !ok {
		return 0
	}
	return lowerIsBetter(c, ownershipBestUSD, ownershipWorstUSD)
}

// ReliabilityFeature clamps a reliability score to [0,1]; missing is neutral.
func ReliabilityFeature(score *float64) float64 {
	return clampedOrNeutral(score)
}

// SafetyFeature clamps a safety score to [0,1]; missing is neutral.
func SafetyFeature(score *float64) float64 {
	return clampedOrNeutral(score)
}

func clampedOrNeutral(score *float64) float64 {
	if score == nil || math.IsNaN(*score) {
		return neutralScore
	}
	return clamp01(*score)
}

// lowerIsBetter maps v onto [0,1] with 1 at or below best and 0 at or above worst.
func lowerIsBetter(v, best, worst float64) float64 {
	switch {
	case v <= best:
		return 1
	case v >= worst:
		return 0
	default:
		return (worst - v) / (worst - best)
	}
}

func positive(p *float64) (float64, bool) {
	if p == nil || math.IsNaN(*p) || *p <= 0 {
		return 0, false
	}
	return *p, true
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
