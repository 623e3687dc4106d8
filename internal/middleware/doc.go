// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

/*
Package middleware provides the chi-compatible HTTP middleware used by the
CarMatch API.

Key Components:

  - RequestID: accepts or generates an X-Request-ID and stores it in the
    request context for logging
  - AccessLog: one structured zerolog line per request
  - PrometheusMetrics: request counts and latencies labelled by chi route
    pattern, which keeps label cardinality bounded

Middleware Stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(logger))
	r.Use(middleware.PrometheusMetrics)

CORS, rate limiting, panic recovery and compression come from go-chi/cors,
go-chi/httprate and chi/middleware and are wired in internal/api.
*/
package middleware
