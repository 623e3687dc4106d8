// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

/*
Package enrich turns external complaint and recall counts into bounded
reliability and safety scores, caching the result per model year.

# Overview

A lookup for (year, make, model) first consults the Store. A non-expired entry
is returned unchanged with no external call. On a miss the Cache asks the
IssueSource for complaints and then recalls, scores them with ScoreIssues and
persists the payload. Failures produce an ErrorPayload and are never cached.

	cache := enrich.NewCache(nhtsaClient, store, enrich.Options{TTL: 720 * time.Hour}, logger)
	res := cache.Get(ctx, 2018, "Honda", "Civic")
	if !res.OK() {
	    // res.Failure carries {error, year, make, model}
	}

# Stores

  - FileStore: one JSON document holding every entry, replaced atomically on
    each write. A missing or corrupt file reads as an empty cache.
  - BadgerStore: one badger key per entry with native TTL.

# Thread Safety

Cache is safe for concurrent use. Concurrent lookups of the same key share a
single read-fetch-write flight; different keys proceed in parallel.

# Batch Enrichment

Batch walks a catalog offline, pacing external calls with a rate limiter, and
merges the scores into each record. It is used by the `carmatch enrich` command.
*/
package enrich
