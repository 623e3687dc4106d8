// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

/*
Package api is the HTTP surface of CarMatch.

Every response uses the APIResponse envelope:

	{"success": true, "data": {...}, "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 3}}
	{"success": false, "error": {"code": "VALIDATION_FAILED", "message": "...", "details": {...}}, "meta": {...}}

Error codes:

  - VALIDATION_FAILED (400): malformed body, unknown JSON fields, rule failures
  - NOT_FOUND (404): unknown vehicle id, session or route
  - EXTERNAL_SERVICE_ERROR (502): NHTSA lookup failed; details carry the
    {"error", "year", "make", "model"} payload
  - TOO_MANY_REQUESTS (429): per-IP rate limit (go-chi/httprate)

The router is chi v5. Global middleware assigns request IDs, writes access
logs, recovers panics and answers CORS preflights; the /api/v1 group adds
Prometheus instrumentation, and every route except health is rate limited.
/metrics serves the Prometheus registry.
*/
package api
