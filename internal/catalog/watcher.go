// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce coalesces bursts of filesystem events into one reload.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads a Provider when its catalog file changes on disk.
//
// The parent directory is watched rather than the file itself so that atomic
// replaces (write temp, rename over) are observed.
type Watcher struct {
	provider *Provider
	debounce time.Duration
	logger   zerolog.Logger
}

// NewWatcher creates a watcher for provider's file.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewWatcher(provider *Provider, debounce time.Duration, logger zerolog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		provider: provider,
		debounce: debounce,
		logger:   logger.With().Str("component", "catalog_watcher").Logger(),
	}
}

// Watch blocks until ctx ends, reloading the catalog after changes settle.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer fw.Close()

	path := filepath.Clean(w.provider.Path())
	dir := filepath.Dir(path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Info().Str("path", path).Dur("debounce", w.debounce).Msg("Watching catalog for changes")

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path || !relevant(event.Op) {
				continue
			}
			w.logger.Debug().Str("op", event.Op.String()).Msg("Catalog file event")
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("Catalog watcher error")

		case <-timer.C:
			w.provider.Reload()
		}
	}
}

func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create) || op.Has(fsnotify.Rename) || op.Has(fsnotify.Remove)
}
