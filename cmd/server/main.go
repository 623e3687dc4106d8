// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/tomtom215/carmatch/internal/api"
	"github.com/tomtom215/carmatch/internal/catalog"
	"github.com/tomtom215/carmatch/internal/config"
	"github.com/tomtom215/carmatch/internal/enrich"
	"github.com/tomtom215/carmatch/internal/logging"
	"github.com/tomtom215/carmatch/internal/nhtsa"
	"github.com/tomtom215/carmatch/internal/recommend"
	"github.com/tomtom215/carmatch/internal/session"
	"github.com/tomtom215/carmatch/internal/supervisor"
	"github.com/tomtom215/carmatch/internal/supervisor/services"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logger := logging.Logger()

	logging.Info().
		Str("catalog_path", cfg.Catalog.Path).
		Str("enrich_store", cfg.Enrichment.Store).
		Str("addr", cfg.Server.Addr()).
		Msg("Starting CarMatch with supervisor tree")

	provider := catalog.NewProvider(cfg.Catalog.Path, logger)
	if snap := provider.Reload(); snap.UsingFallback {
		logging.Warn().Int("vehicles", len(snap.Vehicles)).Msg("Catalog unavailable, serving sample vehicles")
	}

	// NHTSA client wrapped in a circuit breaker so an outage fails fast
	nhtsaClient := nhtsa.NewCircuitBreakerClient(&cfg.NHTSA)

	store, err := enrich.OpenStore(&cfg.Enrichment, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open enrichment store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing enrichment store")
		}
	}()
	cache := enrich.NewCache(nhtsaClient, store, enrich.Options{TTL: cfg.Enrichment.TTL}, logger)

	engineCfg := recommend.DefaultConfig()
	engineCfg.DefaultLimit = cfg.Recommend.DefaultLimit
	engineCfg.MaxLimit = cfg.Recommend.MaxLimit
	engineCfg.Workers = cfg.Recommend.Workers
	engineCfg.ParallelThreshold = cfg.Recommend.ParallelThreshold
	engine, err := recommend.NewEngine(engineCfg, provider, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}

	sessions := session.NewStore(session.Options{
		IdleTTL:     cfg.Session.IdleTTL,
		MaxMessages: cfg.Session.MaxMessages,
	})

	handler, err := api.NewHandler(api.Deps{
		Recommender: engine,
		Catalog:     provider,
		Safety:      cache,
		Sessions:    sessions,
		Breaker:     nhtsaClient,
	}, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create API handler")
	}
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.Server)))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Bridges zerolog to slog for sutureslog
	tree := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	// Data layer services
	if cfg.Catalog.Watch {
		watcher := catalog.NewWatcher(provider, cfg.Catalog.WatchDebounce, logger)
		tree.AddDataService(services.NewCatalogWatchService(watcher))
		logging.Info().Str("path", cfg.Catalog.Path).Msg("Catalog watcher service added")
	}
	tree.AddDataService(services.NewSessionSweepService(sessions, cfg.Session.SweepInterval, logger))
	if bs, ok := store.(*enrich.BadgerStore); ok {
		tree.AddDataService(services.NewBadgerGCService(bs, cfg.Enrichment.GCInterval, logger))
		logging.Info().Str("dir", cfg.Enrichment.BadgerDir).Msg("Badger GC service added")
	}

	// API layer services
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Received shutdown signal, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
		stop()
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
