// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/carmatch/internal/validation"
)

// maxBodyBytes caps request bodies; the largest legitimate body is a
// recommendation request with seven weights.
const maxBodyBytes = 64 << 10

// decodeBody strictly decodes a JSON body into dst and validates it. On
// failure the error response has already been written and false is returned.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeDecodeError(w, r, err)
		return false
	}
	if dec.More() {
		writeDecodeError(w, r, errors.New("unexpected data after JSON body"))
		return false
	}

	if verr := validation.ValidateStruct(dst); verr != nil {
		writeValidationError(w, r, verr)
		return false
	}
	return true
}

func writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		NewResponseWriter(w, r).Error(http.StatusRequestEntityTooLarge, ErrCodeBadRequest,
			fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
	case errors.Is(err, io.EOF):
		NewResponseWriter(w, r).ValidationError("request body is required", nil)
	default:
		NewResponseWriter(w, r).ValidationError("invalid JSON body: "+err.Error(), nil)
	}
}

func writeValidationError(w http.ResponseWriter, r *http.Request, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	NewResponseWriter(w, r).ValidationError(apiErr.Message, apiErr.Details)
}
