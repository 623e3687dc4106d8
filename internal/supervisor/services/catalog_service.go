// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package services

import (
	"context"
	"fmt"
)

// CatalogWatcher blocks watching the catalog file until ctx ends.
// Implemented by *catalog.Watcher.
type CatalogWatcher interface {
	Watch(ctx context.Context) error
}

// CatalogWatchService hot-reloads the catalog. A watcher failure (for
// example a deleted data directory) is returned so suture retries it.
type CatalogWatchService struct {
	watcher CatalogWatcher
	name    string
}

// NewCatalogWatchService wraps watcher.
func NewCatalogWatchService(watcher CatalogWatcher) *CatalogWatchService {
	return &CatalogWatchService{watcher: watcher, name: "catalog-watcher"}
}

// Serve implements suture.Service.
func (s *CatalogWatchService) Serve(ctx context.Context) error {
	err := s.watcher.Watch(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		return fmt.Errorf("catalog watcher: %w", err)
	}
	return nil
}

func (s *CatalogWatchService) String() string {
	return s.name
}
