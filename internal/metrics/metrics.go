// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carmatch_recommendations_total",
			Help: "Total number of recommendation builds by outcome",
		},
		[]string{"outcome"},
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "carmatch_recommendation_duration_seconds",
			Help:    "Duration of recommendation builds in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	RecommendationCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "carmatch_recommendation_candidates",
			Help:    "Number of vehicles surviving the recommendation filter",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	// Catalog Metrics
	CatalogVehicles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "carmatch_catalog_vehicles",
			Help: "Number of vehicles in the current catalog snapshot",
		},
	)

	CatalogFallback = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "carmatch_catalog_fallback",
			Help: "1 while the built-in sample catalog is served, 0 otherwise",
		},
	)

	CatalogReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carmatch_catalog_reloads_total",
			Help: "Total number of catalog reloads by result",
		},
		[]string{"result"}, // "loaded", "fallback"
	)

	// Enrichment Cache Metrics
	EnrichCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carmatch_enrich_cache_lookups_total",
			Help: "Total number of enrichment cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)

	EnrichCacheWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carmatch_enrich_cache_write_failures_total",
			Help: "Total number of enrichment cache writes that failed",
		},
	)

	EnrichFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "carmatch_enrich_fetch_duration_seconds",
			Help:    "Duration of external issue-count fetches in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2, 4, 6, 10},
		},
		[]string{"result"},
	)

	EnrichBatchVehicles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carmatch_enrich_batch_vehicles_total",
			Help: "Vehicles processed by offline batch enrichment by outcome",
		},
		[]string{"outcome"}, // "enriched", "failed", "skipped"
	)

	// External Service Metrics
	NHTSARequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carmatch_nhtsa_requests_total",
			Help: "Total number of NHTSA API requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "carmatch_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carmatch_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carmatch_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// HTTP Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carmatch_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "carmatch_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "carmatch_api_requests_in_flight",
			Help: "Number of API requests currently being served",
		},
	)

	// Session Metrics
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "carmatch_sessions_active",
			Help: "Number of live recommendation sessions",
		},
	)
)

// RecordRecommendation records one recommendation build.
func RecordRecommendation(outcome string, duration time.Duration, candidates int) {
	RecommendationsTotal.WithLabelValues(outcome).Inc()
	RecommendationDuration.Observe(duration.Seconds())
	if outcome == "success" {
		RecommendationCandidates.Observe(float64(candidates))
	}
}

// SetCatalogState publishes the size and fallback flag of the active snapshot.
func SetCatalogState(vehicles int, usingFallback bool) {
	CatalogVehicles.Set(float64(vehicles))
	if usingFallback {
		CatalogFallback.Set(1)
		CatalogReloads.WithLabelValues("fallback").Inc()
		return
	}
	CatalogFallback.Set(0)
	CatalogReloads.WithLabelValues("loaded").Inc()
}

// RecordEnrichLookup records an enrichment cache lookup result.
func RecordEnrichLookup(result string) {
	EnrichCacheLookups.WithLabelValues(result).Inc()
}

// RecordEnrichWriteFailure records a failed enrichment cache write.
func RecordEnrichWriteFailure() {
	EnrichCacheWriteFailures.Inc()
}

// RecordEnrichFetch records the latency of one external fetch pair.
func RecordEnrichFetch(duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	EnrichFetchDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// RecordBatchEnrichment records offline batch totals.
func RecordBatchEnrichment(enriched, failed, skipped int) {
	EnrichBatchVehicles.WithLabelValues("enriched").Add(float64(enriched))
	EnrichBatchVehicles.WithLabelValues("failed").Add(float64(failed))
	EnrichBatchVehicles.WithLabelValues("skipped").Add(float64(skipped))
}

// RecordNHTSARequest records one NHTSA API call.
func RecordNHTSARequest(endpoint, status string) {
	NHTSARequests.WithLabelValues(endpoint, status).Inc()
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// SetActiveSessions publishes the live session count.
func SetActiveSessions(n int) {
	SessionsActive.Set(float64(n))
}
