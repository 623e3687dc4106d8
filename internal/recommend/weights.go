// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package recommend

import "math"

// Criterion names, as accepted in request weights and reported in weights_used.
const (
	CriterionWinter        = "winter_driving"
	CriterionFuel          = "fuel_efficiency"
	CriterionPrice         = "price_fit"
	CriterionOwnershipCost = "ownership_cost"
	CriterionAcceleration  = "acceleration"
	CriterionReliability   = "reliability"
	CriterionSafety        = "safety"
)

// Criteria returns every criterion in presentation order.
func Criteria() []string {
	return []string{
		CriterionWinter,
		CriterionFuel,
		CriterionPrice,
		CriterionOwnershipCost,
		CriterionAcceleration,
		CriterionReliability,
		CriterionSafety,
	}
}

// IsCriterion reports whether name is one of the seven scoring criteria.
func IsCriterion(name string) bool {
	switch name {
	case CriterionWinter, CriterionFuel, CriterionPrice, CriterionOwnershipCost,
		CriterionAcceleration, CriterionReliability, CriterionSafety:
		return true
	}
	return false
}

// Weights maps a criterion name to its relative importance.
type Weights map[string]float64

// DefaultWeights returns the weight vector used when a request carries none.
// The values already sum to 1.0.
func DefaultWeights() Weights {
	return Weights{
		CriterionWinter:        0.15,
		CriterionFuel:          0.15,
		CriterionPrice:         0.20,
		CriterionOwnershipCost: 0.15,
		CriterionAcceleration:  0.10,
		CriterionReliability:   0.15,
		CriterionSafety:        0.10,
	}
}

// Get returns the weight for name, or 0 when absent.
func (w Weights) Get(name string) float64 {
	return w[name]
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	var total float64
	for _, v := range w {
		total += v
	}
	return total
}

// Clone returns an independent copy.
func (w Weights) Clone() Weights {
	if w == nil {
		return nil
	}
	out := make(Weights, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// NormalizeWeights converts weight hints into a distribution.
//
// Negative values count as zero. When the clamped total is positive every
// output is max(v,0)/total. When every value is <= 0 the result is uniform
// 1/N over the input keys. An empty input yields an empty output.
//
// Values are scaled by the largest hint before summing so very large hints
// keep their proportions instead of overflowing the total. Infinite hints
// share the whole distribution.
func NormalizeWeights(weights Weights) Weights {
	out := make(Weights, len(weights))
	if len(weights) == 0 {
		return out
	}

	var largest float64
	for _, v := range weights {
		largest = math.Max(largest, nonNegative(v))
	}

	if largest <= 0 {
		uniform := 1.0 / float64(len(weights))
		for k := range weights {
			out[k] = uniform
		}
		return out
	}

	scaled := make(Weights, len(weights))
	var total float64
	for k, v := range weights {
		switch {
		case math.IsInf(largest, 1):
			if math.IsInf(v, 1) {
				scaled[k] = 1
			}
		default:
			scaled[k] = nonNegative(v) / largest
		}
		total += scaled[k]
	}

	for k := range weights {
		out[k] = scaled[k] / total
	}
	return out
}

// nonNegative clamps v to [0, +Inf); NaN counts as zero.
func nonNegative(v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}
