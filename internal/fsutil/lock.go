// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileLock is an exclusive advisory lock held on a lock file.
type FileLock struct {
	f *os.File
}

// Lock blocks until it holds an exclusive advisory lock on path, creating the
// file and its directory if needed. The lock only excludes other callers of
// Lock; it does not stop plain reads or writes.
func Lock(path string) (*FileLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := lockFile(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	return &FileLock{f: f}, nil
}

// Unlock releases the lock. The lock file is left in place.
func (l *FileLock) Unlock() error {
	return errors.Join(unlockFile(l.f), l.f.Close())
}
