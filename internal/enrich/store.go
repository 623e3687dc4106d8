// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package enrich

import (
	"context"
	"time"
)

// Entry is one persisted enrichment result.
type Entry struct {
	Data     Payload   `json:"data"`
	CachedAt time.Time `json:"cached_at"`
}

// Fresh reports whether the entry is younger than ttl at now.
func (e Entry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.CachedAt) < ttl
}

// Store persists enrichment entries by cache key.
//
// Get returns ok=false for an absent key. Expiry is decided by the Cache, so
// stores may return stale entries. Put replaces any prior entry for the key
// atomically.
type Store interface {
	Get(ctx context.Context, key string) (entry Entry, ok bool, err error)
	Put(ctx context.Context, key string, entry Entry) error
	Close() error
}
