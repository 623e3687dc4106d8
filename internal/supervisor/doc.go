// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

/*
Package supervisor runs the long-lived parts of the CarMatch server under a
suture v4 supervision tree.

Services restart with backoff when they return an error or panic, and all of
them stop when the root context is canceled. Supervisor events are logged
through sutureslog and the zerolog slog adapter:

	logger := logging.NewSlogLogger()
	tree := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewCatalogWatchService(watcher))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	err := tree.Serve(ctx)

The service wrappers live in the services subpackage.
*/
package supervisor
