// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/carmatch/internal/catalog"
	"github.com/tomtom215/carmatch/internal/enrich"
	"github.com/tomtom215/carmatch/internal/models"
	"github.com/tomtom215/carmatch/internal/validation"
)

// CompareResponse lists the compared vehicles in catalog order.
type CompareResponse struct {
	Vehicles []models.Vehicle `json:"vehicles"`
	NotFound []string         `json:"not_found"`
}

// SafetyResponse is the issue-data payload for one model year.
type SafetyResponse struct {
	enrich.Payload
	Cached bool `json:"cached"`
}

// Vehicle handles GET /api/v1/vehicles/{id}.
func (h *Handler) Vehicle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	v, err := h.catalog.Vehicle(id)
	if err != nil {
		if errors.Is(err, catalog.ErrVehicleNotFound) {
			NewResponseWriter(w, r).ErrorWithDetails(http.StatusNotFound, ErrCodeNotFound,
				catalog.ErrVehicleNotFound.Error(), map[string]string{"id": id})
			return
		}
		NewResponseWriter(w, r).InternalError("vehicle lookup failed")
		return
	}
	NewResponseWriter(w, r).Success(v)
}

// Compare handles POST /api/v1/vehicles/compare.
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	var body validation.CompareRequestBody
	if !decodeBody(w, r, &body) {
		return
	}

	NewResponseWriter(w, r).Success(NewCompareResponse(body.IDs, h.catalog.Compare(body.IDs)))
}

// NewCompareResponse pairs the found vehicles with the requested ids that
// matched nothing, in request order.
func NewCompareResponse(ids []string, vehicles []models.Vehicle) CompareResponse {
	found := make(map[string]struct{}, len(vehicles))
	for i := range vehicles {
		found[vehicles[i].ID] = struct{}{}
	}
	notFound := make([]string, 0)
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			notFound = append(notFound, id)
		}
	}
	return CompareResponse{Vehicles: vehicles, NotFound: notFound}
}

// Safety handles GET /api/v1/safety?make=&model=&year=.
func (h *Handler) Safety(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rawYear := strings.TrimSpace(q.Get("year"))

	year := 0
	if rawYear != "" {
		parsed, err := strconv.Atoi(rawYear)
		if err != nil {
			writeValidationError(w, r, validation.NewFieldError("year", "invalid_year", "invalid_year", rawYear))
			return
		}
		year = parsed
	}

	query := validation.SafetyQuery{
		Make:  strings.TrimSpace(q.Get("make")),
		Model: strings.TrimSpace(q.Get("model")),
		Year:  year,
	}
	if verr := validation.ValidateStruct(&query); verr != nil {
		writeValidationError(w, r, verr)
		return
	}

	result := h.safety.Get(r.Context(), query.Year, query.Make, query.Model)
	if !result.OK() {
		NewResponseWriter(w, r).ExternalServiceError(result.Failure.Error, result.Failure)
		return
	}
	if result.Warning != nil {
		h.logger.Warn().Err(result.Warning).Msg("safety lookup served without caching")
	}
	NewResponseWriter(w, r).Success(SafetyResponse{Payload: result.Data, Cached: result.Cached})
}
