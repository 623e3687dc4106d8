// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

/*
Package validation validates HTTP and CLI request bodies with
go-playground/validator v10.

A single validator instance is shared by the process. It reports fields by
their JSON names, so error details line up with what the client sent, and
registers one custom tag:

  - criterion: a map key must name one of the seven scoring criteria

Usage:

	var body validation.RecommendRequestBody
	if err := decoder.Decode(&body); err != nil { ... }
	if verr := validation.ValidateStruct(&body); verr != nil {
	    apiErr := verr.ToAPIError()
	    // respond 400 with apiErr.Code, apiErr.Message and apiErr.Details
	}

ValidateStruct returns a typed *RequestValidationError (not error) so callers
avoid the nil-interface trap when checking the result.
*/
package validation
