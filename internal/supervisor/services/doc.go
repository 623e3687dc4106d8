// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

/*
Package services adapts CarMatch components to suture.Service.

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server; ListenAndServe errors trigger a supervised restart
  - Graceful Shutdown on context cancellation

Catalog Watcher (CatalogWatchService):
  - Runs catalog.Watcher, reloading the catalog when its file changes

Periodic tasks (PeriodicService):
  - NewSessionSweepService evicts idle chat sessions
  - NewBadgerGCService reclaims badger value log space for the enrichment store

Every service returns ctx.Err() on shutdown and implements fmt.Stringer so
supervisor events name it.
*/
package services
