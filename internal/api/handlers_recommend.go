// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tomtom215/carmatch/internal/logging"
	"github.com/tomtom215/carmatch/internal/recommend"
	"github.com/tomtom215/carmatch/internal/session"
	"github.com/tomtom215/carmatch/internal/validation"
)

// SessionHeader links a recommendation request to a conversation.
const SessionHeader = "X-Session-ID"

// Recommendations handles POST /api/v1/recommendations.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	var body validation.RecommendRequestBody
	if !decodeBody(w, r, &body) {
		return
	}

	ctx := r.Context()
	sessionID := strings.TrimSpace(r.Header.Get(SessionHeader))
	if sessionID != "" {
		ctx = logging.ContextWithSessionID(ctx, sessionID)
	}

	req := body.ToRequest()
	resp, err := h.recommender.Build(ctx, req)
	if err != nil {
		h.writeRecommendError(w, r.WithContext(ctx), err)
		return
	}

	if sessionID != "" {
		h.recordExchange(ctx, sessionID, req, resp)
	}

	NewResponseWriter(w, r).Success(resp)
}

func (h *Handler) writeRecommendError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *recommend.ValidationError
	switch {
	case errors.As(err, &verr):
		writeValidationError(w, r, validation.FromRecommend(verr))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		NewResponseWriter(w, r).ServiceUnavailable("request canceled")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Recommendation failed")
		NewResponseWriter(w, r).InternalError("recommendation failed")
	}
}

// recordExchange appends the query and the top pick to the session history.
// Session errors never fail the recommendation itself.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (h *Handler) recordExchange(ctx context.Context, id string, req recommend.Request, resp *recommend.Response) {
	if _, err := h.sessions.Append(id, session.RoleUser, summarizeRequest(req)); err != nil {
		h.logger.Warn().Err(err).
			Str("request_id", logging.RequestIDFromContext(ctx)).
			Str("session_id", id).
			Msg("session append failed")
		return
	}
	if _, err := h.sessions.Append(id, session.RoleAssistant, summarizeResponse(resp)); err != nil {
		h.logger.Warn().Err(err).
			Str("request_id", logging.RequestIDFromContext(ctx)).
			Str("session_id", id).
			Msg("session append failed")
	}
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func summarizeRequest(req recommend.Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Recommend vehicles: budget %.0f, %d passengers", req.Budget, req.Passengers)
	if req.FuelType != "" {
		fmt.Fprintf(&b, ", fuel %s", req.FuelType)
	}
	return b.String()
}

func summarizeResponse(resp *recommend.Response) string {
	if len(resp.Results) == 0 {
		return "No vehicles matched the request."
	}
	top := resp.Results[0]
	return fmt.Sprintf("Top pick: %s (score %.4f) of %d results.", top.Label(), top.TotalScore, len(resp.Results))
}
