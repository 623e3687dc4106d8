// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/carmatch/internal/session"
	"github.com/tomtom215/carmatch/internal/validation"
)

// HistoryResponse is a session transcript.
type HistoryResponse struct {
	ID       string            `json:"id"`
	Messages []session.Message `json:"messages"`
}

// CreateSession handles POST /api/v1/sessions.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Created(h.sessions.Create())
}

// SessionHistory handles GET /api/v1/sessions/{id}/history.
func (h *Handler) SessionHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	NewResponseWriter(w, r).Success(HistoryResponse{ID: id, Messages: h.sessions.History(id)})
}

// AppendSessionMessage handles POST /api/v1/sessions/{id}/messages.
func (h *Handler) AppendSessionMessage(w http.ResponseWriter, r *http.Request) {
	var body validation.SessionMessageBody
	if !decodeBody(w, r, &body) {
		return
	}

	info, err := h.sessions.Append(chi.URLParam(r, "id"), body.Role, body.Content)
	if err != nil {
		if errors.Is(err, session.ErrInvalidID) || errors.Is(err, session.ErrInvalidRole) ||
			errors.Is(err, session.ErrEmptyContent) {
			NewResponseWriter(w, r).ValidationError(err.Error(), nil)
			return
		}
		NewResponseWriter(w, r).InternalError("append failed")
		return
	}
	NewResponseWriter(w, r).Success(info)
}

// DeleteSession handles DELETE /api/v1/sessions/{id}.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.Reset(chi.URLParam(r, "id")) {
		NewResponseWriter(w, r).NotFound("session not found")
		return
	}
	NewResponseWriter(w, r).NoContent()
}
