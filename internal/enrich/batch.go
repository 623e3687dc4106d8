// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package enrich

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/carmatch/internal/metrics"
	"github.com/tomtom215/carmatch/internal/models"
)

// DefaultBatchDelay is the minimum spacing between external lookups.
const DefaultBatchDelay = 500 * time.Millisecond

// Lookup is the part of Cache used by Batch.
type Lookup interface {
	Get(ctx context.Context, year int, maker, model string) Result
}

// Report summarizes a batch run.
type Report struct {
	// Vehicles is the full input list in order, enriched where possible.
	Vehicles []models.Vehicle

	Enriched int
	Skipped  int

	// Failed holds "<year> <make> <model>" labels of failed lookups.
	Failed []string

	// Warnings holds cache write failures for otherwise enriched vehicles.
	Warnings []error
}

// Batch enriches a whole catalog offline.
type Batch struct {
	cache   Lookup
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewBatch creates a batch enricher. Lookups are spaced at least delay apart;
// a non-positive delay disables pacing.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBatch(cache Lookup, delay time.Duration, logger zerolog.Logger) *Batch {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Batch{
		cache:   cache,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.With().Str("component", "enrich_batch").Logger(),
	}
}

// Run enriches vehicles and returns the report. Records missing make, model
// or year are kept unchanged. A failed lookup keeps the record unchanged and
// records its label. The input slice is not modified.
//
// Run stops early only when ctx ends; the returned report then covers the
// vehicles processed so far followed by the untouched remainder, and the
// context error is returned.
func (b *Batch) Run(ctx context.Context, vehicles []models.Vehicle) (Report, error) {
	report := Report{Vehicles: make([]models.Vehicle, len(vehicles))}
	for i := range vehicles {
		report.Vehicles[i] = vehicles[i].Clone()
	}
	defer func() {
		metrics.RecordBatchEnrichment(report.Enriched, len(report.Failed), report.Skipped)
	}()

	for i := range report.Vehicles {
		v := &report.Vehicles[i]
		if !v.HasIdentity() {
			report.Skipped++
			b.logger.Warn().Str("id", v.ID).Int("index", i+1).Msg("Skipping vehicle: missing make/model/year")
			continue
		}

		if err := b.limiter.Wait(ctx); err != nil {
			return report, err
		}

		res := b.cache.Get(ctx, v.Year, v.Make, v.Model)
		if !res.OK() {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			report.Failed = append(report.Failed, v.Label())
			b.logger.Warn().Err(res.Err).Str("vehicle", v.Label()).Msg("Enrichment failed")
			continue
		}

		Apply(v, res.Data)
		report.Enriched++
		if res.Warning != nil {
			report.Warnings = append(report.Warnings, res.Warning)
		}
		b.logger.Info().
			Str("vehicle", v.Label()).
			Int("complaints", res.Data.ComplaintsCount).
			Int("recalls", res.Data.RecallsCount).
			Bool("cached", res.Cached).
			Msg("Vehicle enriched")
	}
	return report, nil
}

// Apply merges counts and scores from p into v.
func Apply(v *models.Vehicle, p Payload) {
	v.ComplaintsCount = models.Int(p.ComplaintsCount)
	v.RecallsCount = models.Int(p.RecallsCount)
	v.ReliabilityScore = models.Float(p.ReliabilityScore)
	v.SafetyScore = models.Float(p.SafetyScore)
}
