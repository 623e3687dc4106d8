// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/carmatch/internal/logging"
	"github.com/tomtom215/carmatch/internal/metrics"
	"github.com/tomtom215/carmatch/internal/models"
)

// Rounding applied to contributions and totals in responses.
const scorePrecision = 4

// CatalogSource provides the current catalog snapshot. Implemented by
// catalog.Provider.
type CatalogSource interface {
	Snapshot() models.CatalogSnapshot
}

// Engine builds recommendations. It is safe for concurrent use.
type Engine struct {
	config  *Config
	catalog CatalogSource
	logger  zerolog.Logger

	requestCount atomic.Int64
	errorCount   atomic.Int64
}

// Stats is a point-in-time view of engine counters.
type Stats struct {
	Requests int64 `json:"requests"`
	Errors   int64 `json:"errors"`
}

// NewEngine creates a recommendation engine over the given catalog.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, catalog CatalogSource, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if catalog == nil {
		return nil, errors.New("catalog source is required")
	}

	return &Engine{
		config:  cfg,
		catalog: catalog,
		logger:  logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// Build ranks the current catalog snapshot against req.
//
// The only errors are *ValidationError for a malformed request and context
// cancellation. Missing vehicle attributes degrade through each feature's
// missing-value policy instead of failing the request.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Build(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	resp, err := e.Rank(ctx, req, e.catalog.Snapshot())
	if err != nil {
		e.errorCount.Add(1)
		metrics.RecordRecommendation(outcomeOf(err), time.Since(start), 0)
		return nil, err
	}

	metrics.RecordRecommendation("success", time.Since(start), resp.Candidates)
	e.requestLogger(ctx, req).Debug().
		Int("candidates", resp.Candidates).
		Int("returned", len(resp.Results)).
		Bool("using_mock_data", resp.UsingMockData).
		Dur("latency", time.Since(start)).
		Msg("recommendation complete")

	return resp, nil
}

// Rank runs the filter-then-rank pipeline over an explicit snapshot.
//
//nolint:gocritic // hugeParam: req and snap passed by value for immutability
func (e *Engine) Rank(ctx context.Context, req Request, snap models.CatalogSnapshot) (*Response, error) {
	if err := req.Validate(e.config.MaxLimit); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	weights := resolveWeights(req.Weights)
	candidates := e.filter(snap.Vehicles, req)

	results, err := e.scoreAll(ctx, candidates, req.Budget, weights)
	if err != nil {
		return nil, fmt.Errorf("score candidates: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TotalScore > results[j].TotalScore
	})

	limit := req.Limit
	if limit == 0 {
		limit = e.config.DefaultLimit
	}
	if len(results) > limit {
		results = results[:limit]
	}

	for i := range results {
		results[i].Vehicle = results[i].Vehicle.Clone()
		results[i].Points = results[i].Points.rounded(scorePrecision)
		results[i].TotalScore = round(results[i].TotalScore, scorePrecision)
	}

	return &Response{
		WeightsUsed:        weights,
		UsingMockData:      snap.UsingFallback,
		CatalogLastUpdated: snap.LastUpdated,
		Results:            results,
		Candidates:         len(candidates),
	}, nil
}

// Stats returns the engine counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Requests: e.requestCount.Load(),
		Errors:   e.errorCount.Load(),
	}
}

// resolveWeights picks the request weights (or the defaults) and normalizes them.
func resolveWeights(requested Weights) Weights {
	if len(requested) == 0 {
		return NormalizeWeights(DefaultWeights())
	}
	return NormalizeWeights(requested)
}

// filter keeps the vehicles admitted by req, preserving catalog order.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) filter(vehicles []models.Vehicle, req Request) []models.Vehicle {
	priceCap := req.Budget * e.config.BudgetOverrunCap
	fuel := strings.TrimSpace(req.FuelType)

	out := make([]models.Vehicle, 0, len(vehicles))
	for i := range vehicles {
		if Admits(&vehicles[i], priceCap, req.Passengers, fuel) {
			out = append(out, vehicles[i])
		}
	}
	return out
}

// Admits reports whether v passes the price cap, seat and fuel type filters.
// An attribute that is unknown on the vehicle never excludes it.
func Admits(v *models.Vehicle, priceCap float64, passengers int, fuelType string) bool {
	if p, ok := positive(v.Price); ok && p > priceCap {
		return false
	}
	if v.Seats != nil && *v.Seats > 0 && *v.Seats < passengers {
		return false
	}
	if fuelType != "" {
		if vf := strings.TrimSpace(v.FuelType); vf != "" && !strings.EqualFold(vf, fuelType) {
			return false
		}
	}
	return true
}

// ScoreVehicle computes the weighted contributions of every criterion.
func ScoreVehicle(v *models.Vehicle, budget float64, w Weights) Points {
	return Points{
		WinterPoints:        WinterFeature(v.Drivetrain) * w.Get(CriterionWinter),
		FuelPoints:          FuelFeature(v.LPer100km, v.MPG, v.FuelType) * w.Get(CriterionFuel),
		PricePoints:         PriceFitFeature(v.Price, budget) * w.Get(CriterionPrice),
		AccelerationPoints:  AccelerationFeature(v.ZeroToSixty) * w.Get(CriterionAcceleration),
		OwnershipCostPoints: OwnershipCostFeature(v.AnnualCost) * w.Get(CriterionOwnershipCost),
		ReliabilityPoints:   ReliabilityFeature(v.ReliabilityScore) * w.Get(CriterionReliability),
		SafetyPoints:        SafetyFeature(v.SafetyScore) * w.Get(CriterionSafety),
	}
}

// scoreAll scores candidates in place order. Large candidate sets are split
// into disjoint slices scored on separate goroutines; each goroutine writes
// only its own indices of results.
func (e *Engine) scoreAll(ctx context.Context, candidates []models.Vehicle, budget float64, w Weights) ([]Result, error) {
	results := make([]Result, len(candidates))
	score := func(i int) {
		pts := ScoreVehicle(&candidates[i], budget, w)
		results[i] = Result{Vehicle: candidates[i], Points: pts, TotalScore: pts.Sum()}
	}

	workers := e.config.workers()
	if len(candidates) < e.config.ParallelThreshold || workers < 2 {
		for i := range candidates {
			score(i)
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	chunk := (len(candidates) + workers - 1) / workers
	for lo := 0; lo < len(candidates); lo += chunk {
		hi := min(lo+chunk, len(candidates))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				score(i)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) requestLogger(ctx context.Context, req Request) *zerolog.Logger {
	lc := e.logger.With().
		Str("request_id", logging.RequestIDFromContext(ctx)).
		Float64("budget", req.Budget).
		Int("passengers", req.Passengers).
		Str("fuel_type", req.FuelType)
	if id := logging.SessionIDFromContext(ctx); id != "" {
		lc = lc.Str("session_id", id)
	}
	l := lc.Logger()
	return &l
}

func outcomeOf(err error) string {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return "invalid"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
