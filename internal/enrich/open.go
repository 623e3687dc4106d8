// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package enrich

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/carmatch/internal/config"
)

// OpenStore builds the store selected by cfg.Store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func OpenStore(cfg *config.EnrichmentConfig, logger zerolog.Logger) (Store, error) {
	switch cfg.Store {
	case config.StoreFile, "":
		return NewFileStore(cfg.CachePath, logger), nil
	case config.StoreBadger:
		s, err := OpenBadgerStore(cfg.BadgerDir, cfg.TTL)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown enrichment store %q", cfg.Store)
	}
}
