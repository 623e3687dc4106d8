// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

// Package recommend ranks catalog vehicles against a request's weighted
// multi-criteria preferences.
//
// # Architecture
//
// A recommendation is a filter-then-rank pipeline over an immutable catalog
// snapshot:
//
//   - Weights: the request's weight hints (or DefaultWeights) are normalized
//     into a distribution by NormalizeWeights
//   - Filter: records over 120% of budget, with too few seats, or with a
//     mismatching fuel type are dropped; unknown attributes never exclude
//   - Score: seven pure feature functions map one attribute each into [0,1];
//     a contribution is feature times weight
//   - Rank: stable sort by descending total, truncate, round to 4 decimals
//
// The price filter and the price-fit penalty compound: a vehicle 10% over
// budget survives the filter and still loses price-fit points.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), provider, logger)
//	resp, err := engine.Build(ctx, recommend.Request{Budget: 25000, Passengers: 4})
//
// # Thread Safety
//
// Engine holds no mutable state besides atomic counters. Scoring is sharded
// across goroutines over disjoint slices of the filtered candidates; the
// catalog snapshot is only read.
package recommend
