// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/carmatch/internal/models"
)

// staticCatalog implements CatalogSource for testing.
type staticCatalog struct {
	snap models.CatalogSnapshot
}

func (s staticCatalog) Snapshot() models.CatalogSnapshot { return s.snap }

func sampleVehicles() []models.Vehicle {
	return []models.Vehicle{
		{
			ID: "civic_2018", Make: "Honda", Model: "Civic", Year: 2018,
			Price: models.Float(19000), Drivetrain: "FWD", MPG: models.Float(32), Seats: models.Int(5),
			ZeroToSixty: models.Float(8.2), AnnualCost: models.Float(2300), ReliabilityScore: models.Float(0.8),
		},
		{
			ID: "wrx_2018", Make: "Subaru", Model: "WRX", Year: 2018,
			Price: models.Float(24000), Drivetrain: "AWD", MPG: models.Float(24), Seats: models.Int(5),
			ZeroToSixty: models.Float(5.5), AnnualCost: models.Float(3200), ReliabilityScore: models.Float(0.6),
		},
		{
			ID: "leaf_2019", Make: "Nissan", Model: "Leaf", Year: 2019,
			Price: models.Float(17000), Drivetrain: "FWD", MPG: models.Float(0), Seats: models.Int(5),
			ZeroToSixty: models.Float(7.9), AnnualCost: models.Float(1800), ReliabilityScore: models.Float(0.7),
		},
	}
}

func newTestEngine(t *testing.T, cfg *Config, vehicles []models.Vehicle) *Engine {
	t.Helper()
	engine, err := NewEngine(cfg, staticCatalog{snap: models.CatalogSnapshot{Vehicles: vehicles}}, zerolog.Nop())
	require.NoError(t, err)
	return engine
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	t.Run("nil config uses defaults", func(t *testing.T) {
		t.Parallel()
		engine, err := NewEngine(nil, staticCatalog{}, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, 5, engine.config.DefaultLimit)
	})

	t.Run("invalid config", func(t *testing.T) {
		t.Parallel()
		cfg := DefaultConfig()
		cfg.DefaultLimit = 0
		_, err := NewEngine(cfg, staticCatalog{}, zerolog.Nop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "default_limit")
	})

	t.Run("missing catalog", func(t *testing.T) {
		t.Parallel()
		_, err := NewEngine(DefaultConfig(), nil, zerolog.Nop())
		require.Error(t, err)
	})
}

func TestEngine_Build_SampleCatalog(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, nil, sampleVehicles())
	resp, err := engine.Build(context.Background(), Request{Budget: 20000, Passengers: 4})
	require.NoError(t, err)

	require.Len(t, resp.Results, 3)
	assert.Equal(t, "civic_2018", resp.Results[0].ID)
	assert.Equal(t, "wrx_2018", resp.Results[1].ID)
	assert.Equal(t, "leaf_2019", resp.Results[2].ID)

	assert.InDelta(t, 0.7079, resp.Results[0].TotalScore, 1e-9)
	assert.InDelta(t, 0.6634, resp.Results[1].TotalScore, 1e-9)
	assert.InDelta(t, 0.6321, resp.Results[2].TotalScore, 1e-9)

	// 24000 against 20000 is 20% over: price-fit feature 0.9 times weight 0.2.
	assert.InDelta(t, 0.18, resp.Results[1].PricePoints, 1e-9)
	// Leaf has mpg 0, so no fuel points.
	assert.InDelta(t, 0.0, resp.Results[2].FuelPoints, 1e-9)

	assert.InDeltaMapValues(t, map[string]float64(DefaultWeights()), map[string]float64(resp.WeightsUsed), 1e-12)
	assert.False(t, resp.UsingMockData)
	assert.Nil(t, resp.CatalogLastUpdated)
	assert.Equal(t, 3, resp.Candidates)
}

func TestEngine_Build_Filters(t *testing.T) {
	t.Parallel()

	vehicles := []models.Vehicle{
		{ID: "over_cap", Year: 2020, Price: models.Float(24001)},
		{ID: "at_cap", Year: 2020, Price: models.Float(24000)},
		{ID: "unknown_price", Year: 2020},
		{ID: "two_seater", Year: 2020, Seats: models.Int(2)},
		{ID: "seven_seater", Year: 2020, Seats: models.Int(7)},
		{ID: "diesel", Year: 2020, FuelType: "Diesel"},
		{ID: "gas", Year: 2020, FuelType: "GAS"},
		{ID: "unknown_fuel", Year: 2020},
	}
	engine := newTestEngine(t, nil, vehicles)

	resp, err := engine.Build(context.Background(), Request{
		Budget: 20000, Passengers: 4, FuelType: "gas", Limit: 50,
	})
	require.NoError(t, err)

	ids := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []string{"at_cap", "unknown_price", "seven_seater", "gas", "unknown_fuel"}, ids)
}

func TestEngine_Build_FilterSoundness(t *testing.T) {
	t.Parallel()

	var vehicles []models.Vehicle
	for i := 0; i < 60; i++ {
		v := models.Vehicle{ID: fmt.Sprintf("v%02d", i), Year: 2015 + i%8}
		if i%3 != 0 {
			v.Price = models.Float(float64(10000 + i*500))
		}
		if i%4 != 0 {
			v.Seats = models.Int(2 + i%6)
		}
		if i%5 != 0 {
			v.FuelType = []string{"gas", "diesel", "hybrid", "ev"}[i%4]
		}
		vehicles = append(vehicles, v)
	}
	engine := newTestEngine(t, nil, vehicles)

	req := Request{Budget: 20000, Passengers: 5, FuelType: "Gas", Limit: 50}
	resp, err := engine.Build(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)

	for i, r := range resp.Results {
		if r.Vehicle.Price != nil {
			assert.LessOrEqual(t, *r.Vehicle.Price, req.Budget*1.2, r.ID)
		}
		if r.Seats != nil {
			assert.GreaterOrEqual(t, *r.Seats, req.Passengers, r.ID)
		}
		if r.FuelType != "" {
			assert.Equal(t, "gas", r.FuelType, r.ID)
		}
		if i > 0 {
			assert.GreaterOrEqual(t, resp.Results[i-1].TotalScore, r.TotalScore)
		}
	}
}

func TestEngine_Build_StableTieBreak(t *testing.T) {
	t.Parallel()

	vehicles := make([]models.Vehicle, 0, 8)
	for i := 0; i < 8; i++ {
		vehicles = append(vehicles, models.Vehicle{ID: fmt.Sprintf("tie_%d", i), Year: 2020, Drivetrain: "FWD"})
	}
	engine := newTestEngine(t, nil, vehicles)

	resp, err := engine.Build(context.Background(), Request{Budget: 10000, Passengers: 1, Limit: 8})
	require.NoError(t, err)
	require.Len(t, resp.Results, 8)
	for i, r := range resp.Results {
		assert.Equal(t, fmt.Sprintf("tie_%d", i), r.ID)
	}
}

func TestEngine_Build_Limit(t *testing.T) {
	t.Parallel()

	vehicles := make([]models.Vehicle, 0, 12)
	for i := 0; i < 12; i++ {
		vehicles = append(vehicles, models.Vehicle{ID: fmt.Sprintf("v%d", i), Year: 2020})
	}
	engine := newTestEngine(t, nil, vehicles)

	resp, err := engine.Build(context.Background(), Request{Budget: 10000, Passengers: 1})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 5)
	assert.Equal(t, 12, resp.Candidates)

	resp, err = engine.Build(context.Background(), Request{Budget: 10000, Passengers: 1, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 2)
}

func TestEngine_Build_CustomWeights(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, nil, sampleVehicles())
	resp, err := engine.Build(context.Background(), Request{
		Budget:     20000,
		Passengers: 2,
		Weights:    Weights{CriterionWinter: 3},
	})
	require.NoError(t, err)

	assert.Equal(t, Weights{CriterionWinter: 1}, resp.WeightsUsed)
	require.Len(t, resp.Results, 3)
	// Only winter capability counts, so AWD ranks first.
	assert.Equal(t, "wrx_2018", resp.Results[0].ID)
	assert.InDelta(t, 1.0, resp.Results[0].TotalScore, 1e-9)
	for _, r := range resp.Results {
		assert.Zero(t, r.PricePoints)
		assert.Zero(t, r.ReliabilityPoints)
		assert.Zero(t, r.SafetyPoints)
	}
}

func TestEngine_Build_Rounding(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, nil, sampleVehicles())
	resp, err := engine.Build(context.Background(), Request{Budget: 20000, Passengers: 1})
	require.NoError(t, err)

	for _, r := range resp.Results {
		for _, v := range []float64{
			r.WinterPoints, r.FuelPoints, r.PricePoints, r.AccelerationPoints,
			r.OwnershipCostPoints, r.ReliabilityPoints, r.SafetyPoints, r.TotalScore,
		} {
			assert.InDelta(t, round(v, 4), v, 1e-12)
		}
	}
}

func TestEngine_Build_ValidationErrors(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, nil, sampleVehicles())
	tests := []struct {
		name  string
		req   Request
		field string
	}{
		{"zero budget", Request{Budget: 0, Passengers: 1}, "budget"},
		{"negative budget", Request{Budget: -5, Passengers: 1}, "budget"},
		{"no passengers", Request{Budget: 1000, Passengers: 0}, "passengers"},
		{"limit too large", Request{Budget: 1000, Passengers: 1, Limit: 500}, "limit"},
		{"unknown criterion", Request{Budget: 1000, Passengers: 1, Weights: Weights{"comfort": 1}}, "weights.comfort"},
		{"negative weight", Request{Budget: 1000, Passengers: 1, Weights: Weights{CriterionSafety: -1}}, "weights.safety"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Build(context.Background(), tt.req)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	assert.Equal(t, int64(len(tests)), engine.Stats().Errors)
}

func TestEngine_Build_ParallelMatchesSequential(t *testing.T) {
	t.Parallel()

	var vehicles []models.Vehicle
	for i := 0; i < 2000; i++ {
		vehicles = append(vehicles, models.Vehicle{
			ID:          fmt.Sprintf("v%04d", i),
			Year:        2010 + i%14,
			Price:       models.Float(float64(8000 + (i*37)%30000)),
			Drivetrain:  []string{"AWD", "FWD", "RWD", ""}[i%4],
			MPG:         models.Float(float64(15 + i%40)),
			ZeroToSixty: models.Float(4 + float64(i%70)/10),
			AnnualCost:  models.Float(float64(1200 + (i*53)%4500)),
		})
	}

	seqCfg := DefaultConfig()
	seqCfg.ParallelThreshold = len(vehicles) + 1
	parCfg := DefaultConfig()
	parCfg.Workers = 4
	parCfg.ParallelThreshold = 1

	req := Request{Budget: 20000, Passengers: 1, Limit: 50}
	seq, err := newTestEngine(t, seqCfg, vehicles).Build(context.Background(), req)
	require.NoError(t, err)
	par, err := newTestEngine(t, parCfg, vehicles).Build(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, seq.Results, par.Results)
}

func TestEngine_Build_Canceled(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, nil, sampleVehicles())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Build(ctx, Request{Budget: 20000, Passengers: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestEngine_Build_DoesNotMutateSnapshot(t *testing.T) {
	t.Parallel()

	vehicles := sampleVehicles()
	engine := newTestEngine(t, nil, vehicles)
	resp, err := engine.Build(context.Background(), Request{Budget: 20000, Passengers: 1})
	require.NoError(t, err)

	*resp.Results[0].ReliabilityScore = 0.01
	assert.InDelta(t, 0.8, *vehicles[0].ReliabilityScore, 1e-12)
}

func TestEngine_ConcurrentBuild(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t, nil, sampleVehicles())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := engine.Build(ctx, Request{Budget: 20000, Passengers: 4})
			if assert.NoError(t, err) {
				assert.Equal(t, "civic_2018", resp.Results[0].ID)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(16), engine.Stats().Requests)
}

func TestAdmits_UnknownNeverExcludes(t *testing.T) {
	t.Parallel()

	v := &models.Vehicle{ID: "bare", Year: 2020}
	assert.True(t, Admits(v, 1, 9, "diesel"))

	v.Seats = models.Int(0)
	assert.True(t, Admits(v, 1, 9, "diesel"), "zero seats counts as unknown")
}
