// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package validation

import (
	"strings"

	"github.com/tomtom215/carmatch/internal/recommend"
)

// MaxCompareIDs bounds a compare request.
const MaxCompareIDs = 10

// RecommendRequestBody is the wire form of a recommendation query.
type RecommendRequestBody struct {
	Budget     float64            `json:"budget" validate:"required,gt=0"`
	Passengers int                `json:"passengers" validate:"required,min=1"`
	FuelType   string             `json:"fuel_type,omitempty" validate:"omitempty,max=32"`
	Weights    map[string]float64 `json:"weights,omitempty" validate:"omitempty,dive,keys,criterion,endkeys,gte=0"`
	Limit      int                `json:"limit,omitempty" validate:"omitempty,min=1"`
}

// ToRequest converts the body into an engine request.
func (b *RecommendRequestBody) ToRequest() recommend.Request {
	var weights recommend.Weights
	if len(b.Weights) > 0 {
		weights = recommend.Weights(b.Weights).Clone()
	}
	return recommend.Request{
		Budget:     b.Budget,
		Passengers: b.Passengers,
		FuelType:   strings.TrimSpace(b.FuelType),
		Weights:    weights,
		Limit:      b.Limit,
	}
}

// CompareRequestBody selects vehicles to compare side by side.
type CompareRequestBody struct {
	IDs []string `json:"ids" validate:"required,min=1,max=10,dive,required"`
}

// SafetyQuery identifies a model year for an issue-data lookup.
type SafetyQuery struct {
	Make  string `json:"make" validate:"required,max=64"`
	Model string `json:"model" validate:"required,max=64"`
	Year  int    `json:"year" validate:"required,min=1,max=9999"`
}

// SessionMessageBody appends one message to a session history.
type SessionMessageBody struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required,max=4000"`
}
