// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

/*
Package main is the entry point for the CarMatch API server.

CarMatch ranks vehicles from a local catalog against a shopper's budget,
passenger count, fuel preference and criterion weights, and enriches the
catalog with complaint and recall counts from the NHTSA public API.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("carmatch")
	├── DataSupervisor ("data-layer")
	│   ├── Catalog watcher (CATALOG_WATCH=true)
	│   ├── Session sweeper
	│   └── Badger GC (ENRICH_STORE=badger)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Catalog: JSON file, sample vehicles when missing or invalid
 4. NHTSA client behind a gobreaker circuit breaker
 5. Enrichment store (file or badger) and read-through cache
 6. Recommendation engine and session store
 7. Chi router with middleware stack
 8. Supervisor tree

# Configuration

	Priority: Environment variables > Config file > Defaults

	HTTP_PORT=8000
	CATALOG_PATH=data/cache/vehicles.json
	ENRICH_STORE=file            # file or badger
	LOG_LEVEL=info
	LOG_FORMAT=json              # json or console

See package config for the complete list.

# Graceful Shutdown

SIGINT or SIGTERM cancels the root context. The HTTP server drains within
HTTP_SHUTDOWN_TIMEOUT, services that do not stop in time are reported, and
the enrichment store is closed last.
*/
package main
