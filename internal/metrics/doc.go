// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

/*
Package metrics provides Prometheus instrumentation for CarMatch.

Collectors are registered with the default registry through promauto and are
exposed by the API server at /metrics:

	curl http://localhost:8080/metrics

# Available Metrics

Recommendation Metrics:
  - carmatch_recommendations_total: builds by outcome (success, invalid, canceled, error)
  - carmatch_recommendation_duration_seconds: build latency (histogram)
  - carmatch_recommendation_candidates: vehicles surviving the filter (histogram)

Catalog Metrics:
  - carmatch_catalog_vehicles: vehicles in the current snapshot (gauge)
  - carmatch_catalog_fallback: 1 while the built-in sample set is served (gauge)
  - carmatch_catalog_reloads_total: reloads by result

Enrichment Metrics:
  - carmatch_enrich_cache_lookups_total: lookups by result (hit, miss, error)
  - carmatch_enrich_cache_write_failures_total: failed cache writes
  - carmatch_enrich_fetch_duration_seconds: external fetch latency (histogram)
  - carmatch_enrich_batch_vehicles_total: offline batch outcomes (enriched, failed, skipped)

External Service Metrics:
  - carmatch_nhtsa_requests_total: NHTSA calls by endpoint and status
  - carmatch_circuit_breaker_state: 0=closed, 1=half-open, 2=open
  - carmatch_circuit_breaker_requests_total: calls by result
  - carmatch_circuit_breaker_state_transitions_total

HTTP Metrics:
  - carmatch_api_requests_total, carmatch_api_request_duration_seconds
  - carmatch_api_requests_in_flight

Session Metrics:
  - carmatch_sessions_active
*/
package metrics
