// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package enrich

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/carmatch/internal/fsutil"
)

// FileStore keeps every entry in a single JSON object file.
//
// Each Put rewrites the whole file through a temp file and rename, so a crash
// mid-write leaves the previous contents in place. Several processes may share
// one file: Put holds an advisory lock on "<path>.lock" while it re-reads the
// file, merges, and writes, so entries written by another process survive.
// Get re-reads the file when its size or mtime changed since the last read.
// The in-memory map only takes the new entry after the write succeeds.
type FileStore struct {
	path   string
	logger zerolog.Logger

	mu      sync.Mutex
	entries map[string]Entry
	stamp   fileStamp
}

// fileStamp identifies the version of the file last merged into memory.
type fileStamp struct {
	modTime time.Time
	size    int64
}

// NewFileStore creates a store backed by path. The file need not exist.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewFileStore(path string, logger zerolog.Logger) *FileStore {
	return &FileStore{
		path:    path,
		logger:  logger.With().Str("component", "enrich_file_store").Logger(),
		entries: make(map[string]Entry),
	}
}

// Get returns the entry stored under key.
func (s *FileStore) Get(_ context.Context, key string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.syncLocked(false)
	e, ok := s.entries[key]
	return e, ok, nil
}

// Put stores entry under key and rewrites the file.
func (s *FileStore) Put(ctx context.Context, key string, entry Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lock, err := fsutil.Lock(s.path + ".lock")
	if err != nil {
		return fmt.Errorf("lock cache file: %w", err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("Failed to release cache lock")
		}
	}()

	s.syncLocked(true)
	next := maps.Clone(s.entries)
	next[key] = entry

	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	if err := fsutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}

	s.entries = next
	if info, err := os.Stat(s.path); err == nil {
		s.stamp = stampOf(info)
	}
	return nil
}

// Len returns the number of entries, including stale ones.
func (s *FileStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked(false)
	return len(s.entries)
}

// Close is a no-op; every Put is already durable.
func (s *FileStore) Close() error { return nil }

func stampOf(info fs.FileInfo) fileStamp {
	return fileStamp{modTime: info.ModTime(), size: info.Size()}
}

func (f fileStamp) equal(o fileStamp) bool {
	return f.size == o.size && f.modTime.Equal(o.modTime)
}

// syncLocked merges the file into memory. Unless force is set the read is
// skipped when the file is unchanged since the last merge. For a key present
// in both, the entry with the later CachedAt wins. Caller must hold s.mu.
func (s *FileStore) syncLocked(force bool) {
	info, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("Unreadable enrichment cache")
		return
	}
	stamp := stampOf(info)
	if !force && stamp.equal(s.stamp) {
		return
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("Unreadable enrichment cache")
		return
	}
	s.stamp = stamp

	var disk map[string]Entry
	if err := json.Unmarshal(data, &disk); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("Corrupt enrichment cache, ignoring file contents")
		return
	}
	for k, e := range disk {
		if cur, ok := s.entries[k]; !ok || e.CachedAt.After(cur.CachedAt) {
			s.entries[k] = e
		}
	}
	s.logger.Debug().Int("entries", len(s.entries)).Str("path", s.path).Msg("Enrichment cache loaded")
}
