// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

//go:build !unix

package fsutil

import "os"

// Without flock the lock is process-local only; callers still re-read before
// writing, which narrows the window for lost updates.
func lockFile(*os.File) error { return nil }

func unlockFile(*os.File) error { return nil }
