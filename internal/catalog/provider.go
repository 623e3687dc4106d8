// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

/*
Package catalog loads the vehicle catalog and serves immutable snapshots of it.

The catalog is a JSON array of vehicle records on disk. Load never fails: any
problem with the file (missing, unreadable, malformed, empty, or containing a
record without id/year or a duplicate id) is logged and the built-in sample set
is served instead, flagged with UsingFallback.

Snapshots are cached behind an atomic pointer. Reload swaps in a fresh one;
readers holding an older snapshot keep a consistent view. The Watcher reloads
automatically when the file changes on disk.
*/
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/carmatch/internal/fsutil"
	"github.com/tomtom215/carmatch/internal/metrics"
	"github.com/tomtom215/carmatch/internal/models"
)

// ErrVehicleNotFound is returned when no record has the requested id.
var ErrVehicleNotFound = errors.New("car_not_found")

// Provider serves catalog snapshots. It is safe for concurrent use.
type Provider struct {
	path   string
	logger zerolog.Logger

	current  atomic.Pointer[models.CatalogSnapshot]
	reloadMu sync.Mutex
}

// NewProvider creates a provider for the catalog file at path. Nothing is
// read until the first Snapshot or Reload.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewProvider(path string, logger zerolog.Logger) *Provider {
	return &Provider{
		path:   path,
		logger: logger.With().Str("component", "catalog").Logger(),
	}
}

// Path returns the catalog file path.
func (p *Provider) Path() string {
	return p.path
}

// Load reads the catalog file and returns a snapshot without caching it.
// It never fails; see the package documentation for the fallback rules.
func (p *Provider) Load() models.CatalogSnapshot {
	info, err := os.Stat(p.path)
	if err != nil {
		return p.fallback("stat catalog", err)
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return p.fallback("read catalog", err)
	}

	vehicles, err := Decode(data)
	if err != nil {
		return p.fallback("decode catalog", err)
	}

	updated := info.ModTime().UTC()
	return models.CatalogSnapshot{
		Vehicles:    vehicles,
		LastUpdated: &updated,
	}
}

// Reload loads the catalog and makes it the current snapshot.
func (p *Provider) Reload() models.CatalogSnapshot {
	p.reloadMu.Lock()
	defer p.reloadMu.Unlock()
	return p.reloadLocked()
}

func (p *Provider) reloadLocked() models.CatalogSnapshot {
	snap := p.Load()
	p.current.Store(&snap)
	metrics.SetCatalogState(len(snap.Vehicles), snap.UsingFallback)

	p.logger.Info().
		Int("vehicles", len(snap.Vehicles)).
		Bool("using_fallback", snap.UsingFallback).
		Str("path", p.path).
		Msg("Catalog loaded")
	return snap
}

// Snapshot returns the current snapshot, loading it on first use.
func (p *Provider) Snapshot() models.CatalogSnapshot {
	if s := p.current.Load(); s != nil {
		return *s
	}

	p.reloadMu.Lock()
	defer p.reloadMu.Unlock()
	if s := p.current.Load(); s != nil {
		return *s
	}
	return p.reloadLocked()
}

// Vehicle returns a copy of the record with the given id.
func (p *Provider) Vehicle(id string) (models.Vehicle, error) {
	snap := p.Snapshot()
	for i := range snap.Vehicles {
		if snap.Vehicles[i].ID == id {
			return snap.Vehicles[i].Clone(), nil
		}
	}
	return models.Vehicle{}, fmt.Errorf("%w: %s", ErrVehicleNotFound, id)
}

// Compare returns copies of the records whose ids are listed, in catalog
// order. Unknown ids are ignored.
func (p *Provider) Compare(ids []string) []models.Vehicle {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	snap := p.Snapshot()
	out := make([]models.Vehicle, 0, len(ids))
	for i := range snap.Vehicles {
		if _, ok := want[snap.Vehicles[i].ID]; ok {
			out = append(out, snap.Vehicles[i].Clone())
		}
	}
	return out
}

func (p *Provider) fallback(op string, err error) models.CatalogSnapshot {
	p.logger.Warn().Err(err).Str("path", p.path).Msgf("Catalog unavailable (%s), serving sample set", op)
	return models.CatalogSnapshot{
		Vehicles:      SampleVehicles(),
		UsingFallback: true,
	}
}

// Decode parses a catalog document. It rejects anything but a non-empty JSON
// array of records that each carry an id and a year, with unique ids.
func Decode(data []byte) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	if err := json.Unmarshal(data, &vehicles); err != nil {
		return nil, fmt.Errorf("not a vehicle list: %w", err)
	}
	if len(vehicles) == 0 {
		return nil, errors.New("catalog is empty")
	}

	seen := make(map[string]struct{}, len(vehicles))
	for i := range vehicles {
		v := &vehicles[i]
		if strings.TrimSpace(v.ID) == "" {
			return nil, fmt.Errorf("record %d: missing id", i)
		}
		if v.Year == 0 {
			return nil, fmt.Errorf("record %d (%s): missing year", i, v.ID)
		}
		if _, dup := seen[v.ID]; dup {
			return nil, fmt.Errorf("record %d: duplicate id %q", i, v.ID)
		}
		seen[v.ID] = struct{}{}
	}
	return vehicles, nil
}

// Save writes vehicles to path atomically as an indented JSON array.
func Save(path string, vehicles []models.Vehicle) error {
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}
	data, err := json.MarshalIndent(vehicles, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	if err := fsutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}
	return nil
}
