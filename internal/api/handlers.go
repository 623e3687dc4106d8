// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package api

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/carmatch/internal/enrich"
	"github.com/tomtom215/carmatch/internal/models"
	"github.com/tomtom215/carmatch/internal/recommend"
	"github.com/tomtom215/carmatch/internal/session"
)

// Recommender builds recommendations. Implemented by *recommend.Engine.
type Recommender interface {
	Build(ctx context.Context, req recommend.Request) (*recommend.Response, error)
}

// StatsReporter is optionally implemented by a Recommender to expose its
// request counters on the health endpoint.
type StatsReporter interface {
	Stats() recommend.Stats
}

// Catalog serves vehicle records. Implemented by *catalog.Provider.
type Catalog interface {
	Snapshot() models.CatalogSnapshot
	Vehicle(id string) (models.Vehicle, error)
	Compare(ids []string) []models.Vehicle
}

// BreakerState reports the NHTSA circuit breaker state.
type BreakerState interface {
	State() string
}

// Deps are the components the handlers serve. Breaker may be nil.
type Deps struct {
	Recommender Recommender
	Catalog     Catalog
	Safety      enrich.Lookup
	Sessions    *session.Store
	Breaker     BreakerState
}

// Handler holds the HTTP handlers of the CarMatch API.
type Handler struct {
	recommender Recommender
	catalog     Catalog
	safety      enrich.Lookup
	sessions    *session.Store
	breaker     BreakerState
	logger      zerolog.Logger
	startTime   time.Time
}

// NewHandler validates deps and creates the handler set.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(deps Deps, logger zerolog.Logger) (*Handler, error) {
	switch {
	case deps.Recommender == nil:
		return nil, errors.New("api: recommender is required")
	case deps.Catalog == nil:
		return nil, errors.New("api: catalog is required")
	case deps.Safety == nil:
		return nil, errors.New("api: safety lookup is required")
	case deps.Sessions == nil:
		return nil, errors.New("api: session store is required")
	}

	return &Handler{
		recommender: deps.Recommender,
		catalog:     deps.Catalog,
		safety:      deps.Safety,
		sessions:    deps.Sessions,
		breaker:     deps.Breaker,
		logger:      logger.With().Str("component", "api").Logger(),
		startTime:   time.Now(),
	}, nil
}
