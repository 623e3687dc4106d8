// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package enrich

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Scoring bounds.
const (
	reliabilityBase        = 0.8
	reliabilityFloor       = 0.3
	maxComplaintPenalty    = 0.5
	complaintPenaltyFactor = 0.01
	maxRecallPenaltyRel    = 0.3
	recallPenaltyFactorRel = 0.15

	safetyFloor            = 0.4
	maxRecallPenaltySafety = 0.6
	recallPenaltyFactorSaf = 0.20

	scorePrecision = 3
)

// ServiceUnavailableMessage is the error string reported to callers when the
// issue source cannot be reached.
const ServiceUnavailableMessage = "NHTSA service unavailable"

// Payload is the enrichment result for one model year.
type Payload struct {
	ModelYear        int     `json:"model_year"`
	Make             string  `json:"make"`
	Model            string  `json:"model"`
	ComplaintsCount  int     `json:"complaints_count"`
	RecallsCount     int     `json:"recalls_count"`
	ReliabilityScore float64 `json:"reliability_score"`
	SafetyScore      float64 `json:"safety_score"`
	VehicleAgeYears  int     `json:"vehicle_age_years"`
}

// ErrorPayload is returned in place of a Payload when the lookup failed.
type ErrorPayload struct {
	Error string `json:"error"`
	Year  int    `json:"year"`
	Make  string `json:"make"`
	Model string `json:"model"`
}

// Scores holds the derived values of ScoreIssues.
type Scores struct {
	Reliability float64
	Safety      float64
	AgeYears    int
}

// CacheKey returns the storage key for a model year:
// lower("<year>_<make>_<model>") with spaces replaced by underscores.
func CacheKey(year int, maker, model string) string {
	key := fmt.Sprintf("%d_%s_%s", year, maker, model)
	return strings.ToLower(strings.ReplaceAll(key, " ", "_"))
}

// ScoreIssues converts raw counts into reliability and safety scores. Counts
// are normalized per year of vehicle age (minimum one year).
func ScoreIssues(complaints, recalls, modelYear int, now time.Time) Scores {
	age := max(1, now.Year()-modelYear)
	complaintsPerYear := float64(complaints) / float64(age)
	recallsPerYear := float64(recalls) / float64(age)

	reliability := reliabilityBase -
		math.Min(maxComplaintPenalty, complaintsPerYear*complaintPenaltyFactor) -
		math.Min(maxRecallPenaltyRel, recallsPerYear*recallPenaltyFactorRel)
	safety := 1.0 - math.Min(maxRecallPenaltySafety, recallsPerYear*recallPenaltyFactorSaf)

	return Scores{
		Reliability: round(clamp(reliability, reliabilityFloor, 1.0), scorePrecision),
		Safety:      round(clamp(safety, safetyFloor, 1.0), scorePrecision),
		AgeYears:    age,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
