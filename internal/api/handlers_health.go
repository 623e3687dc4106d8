// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/carmatch/internal/recommend"
)

// Health statuses.
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// HealthStatus is the payload of GET /api/v1/health.
type HealthStatus struct {
	Status             string           `json:"status"`
	CatalogVehicles    int              `json:"catalog_vehicles"`
	UsingMockData      bool             `json:"using_mock_data"`
	CatalogLastUpdated *time.Time       `json:"catalog_last_updated"`
	CircuitBreaker     string           `json:"circuit_breaker,omitempty"`
	ActiveSessions     int              `json:"active_sessions"`
	UptimeSeconds      float64          `json:"uptime_seconds"`
	Recommendations    *recommend.Stats `json:"recommendations,omitempty"`
}

// Health handles GET /api/v1/health. It always answers 200; a sample catalog
// or an open breaker report "degraded".
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	snap := h.catalog.Snapshot()

	health := HealthStatus{
		Status:             StatusHealthy,
		CatalogVehicles:    len(snap.Vehicles),
		UsingMockData:      snap.UsingFallback,
		CatalogLastUpdated: snap.LastUpdated,
		ActiveSessions:     h.sessions.Len(),
		UptimeSeconds:      time.Since(h.startTime).Seconds(),
	}
	if h.breaker != nil {
		health.CircuitBreaker = h.breaker.State()
	}
	if sr, ok := h.recommender.(StatsReporter); ok {
		stats := sr.Stats()
		health.Recommendations = &stats
	}
	if snap.UsingFallback || health.CircuitBreaker == "open" {
		health.Status = StatusDegraded
	}

	NewResponseWriter(w, r).Success(health)
}
