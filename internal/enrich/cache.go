// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package enrich

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/carmatch/internal/logging"
	"github.com/tomtom215/carmatch/internal/metrics"
)

// DefaultTTL is how long an entry stays fresh.
const DefaultTTL = 30 * 24 * time.Hour

// ErrServiceUnavailable wraps every issue source failure.
var ErrServiceUnavailable = errors.New("issue service unavailable")

// IssueSource returns raw complaint and recall counts for a model year.
// Implemented by nhtsa.Client and nhtsa.CircuitBreakerClient.
type IssueSource interface {
	Complaints(ctx context.Context, maker, model string, year int) (int, error)
	Recalls(ctx context.Context, maker, model string, year int) (int, error)
}

// Result is the outcome of Cache.Get. Exactly one of Data and Failure is
// meaningful, as reported by OK.
type Result struct {
	Data    Payload
	Failure *ErrorPayload

	// Cached is set when Data came from the store without an external call.
	Cached bool

	// Warning is set when Data is valid but could not be persisted.
	Warning error

	// Err is the underlying failure behind Failure.
	Err error
}

// OK reports whether the lookup produced a payload.
func (r Result) OK() bool {
	return r.Failure == nil
}

// Body returns the value callers serialize: the payload or the error payload.
func (r Result) Body() any {
	if r.Failure != nil {
		return r.Failure
	}
	return r.Data
}

// Options configures a Cache.
type Options struct {
	// TTL is the freshness window. Zero means DefaultTTL.
	TTL time.Duration

	// Now overrides the clock. Nil means time.Now.
	Now func() time.Time
}

// Cache is a read-through TTL cache in front of an IssueSource.
type Cache struct {
	source IssueSource
	store  Store
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger

	flights singleflight.Group
}

// NewCache creates a cache over source, persisting to store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCache(source IssueSource, store Store, opts Options, logger zerolog.Logger) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Cache{
		source: source,
		store:  store,
		ttl:    opts.TTL,
		now:    opts.Now,
		logger: logger.With().Str("component", "enrich_cache").Logger(),
	}
}

// Get returns issue data for a model year, calling the source only when the
// store holds no fresh entry. Failures are reported in Result.Failure and are
// never cached.
//
// Concurrent calls for the same key share one flight. The flight itself is
// detached from the caller's cancellation so that an abandoned caller does
// not fail the others; each caller still returns as soon as its own ctx ends.
func (c *Cache) Get(ctx context.Context, year int, maker, model string) Result {
	key := CacheKey(year, maker, model)

	ch := c.flights.DoChan(key, func() (any, error) {
		return c.lookup(context.WithoutCancel(ctx), key, year, maker, model), nil
	})

	select {
	case res := <-ch:
		r, _ := res.Val.(Result)
		return r
	case <-ctx.Done():
		return failure(year, maker, model, ctx.Err())
	}
}

// lookup runs the read-fetch-write sequence for one key.
func (c *Cache) lookup(ctx context.Context, key string, year int, maker, model string) Result {
	log := c.logger.With().
		Str("key", key).
		Str("request_id", logging.RequestIDFromContext(ctx)).
		Logger()

	entry, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		metrics.RecordEnrichLookup("error")
		log.Warn().Err(err).Msg("Enrichment store read failed, treating as miss")
	case ok && entry.Fresh(c.now(), c.ttl):
		metrics.RecordEnrichLookup("hit")
		return Result{Data: entry.Data, Cached: true}
	default:
		metrics.RecordEnrichLookup("miss")
	}

	start := time.Now()
	complaints, recalls, err := c.fetch(ctx, maker, model, year)
	metrics.RecordEnrichFetch(time.Since(start), err)
	if err != nil {
		log.Warn().Err(err).Msg("Issue source lookup failed")
		return failure(year, maker, model, err)
	}

	now := c.now()
	scores := ScoreIssues(complaints, recalls, year, now)
	payload := Payload{
		ModelYear:        year,
		Make:             maker,
		Model:            model,
		ComplaintsCount:  complaints,
		RecallsCount:     recalls,
		ReliabilityScore: scores.Reliability,
		SafetyScore:      scores.Safety,
		VehicleAgeYears:  scores.AgeYears,
	}

	result := Result{Data: payload}
	if err := c.store.Put(ctx, key, Entry{Data: payload, CachedAt: now}); err != nil {
		metrics.RecordEnrichWriteFailure()
		log.Warn().Err(err).Msg("Failed to persist enrichment entry")
		result.Warning = fmt.Errorf("cache write: %w", err)
	}
	return result
}

// fetch queries complaints then recalls. Negative counts are treated as a
// malformed response.
func (c *Cache) fetch(ctx context.Context, maker, model string, year int) (complaints, recalls int, err error) {
	complaints, err = c.source.Complaints(ctx, maker, model, year)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: complaints: %w", ErrServiceUnavailable, err)
	}
	recalls, err = c.source.Recalls(ctx, maker, model, year)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: recalls: %w", ErrServiceUnavailable, err)
	}
	if complaints < 0 || recalls < 0 {
		return 0, 0, fmt.Errorf("%w: negative count (complaints=%d, recalls=%d)", ErrServiceUnavailable, complaints, recalls)
	}
	return complaints, recalls, nil
}

func failure(year int, maker, model string, err error) Result {
	return Result{
		Failure: &ErrorPayload{
			Error: ServiceUnavailableMessage,
			Year:  year,
			Make:  maker,
			Model: model,
		},
		Err: err,
	}
}
