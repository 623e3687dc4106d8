// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tomtom215/carmatch/internal/catalog"
	"github.com/tomtom215/carmatch/internal/config"
	"github.com/tomtom215/carmatch/internal/enrich"
	"github.com/tomtom215/carmatch/internal/logging"
	"github.com/tomtom215/carmatch/internal/nhtsa"
)

var version = "dev"

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	output     string
	logLevel   string

	cfg    *config.Config
	logger zerolog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "carmatch",
		Short: "CarMatch - vehicle recommendations and NHTSA reliability data",
		Long: `CarMatch ranks catalog vehicles against a budget, passenger count and
criterion weights, and enriches the catalog with NHTSA complaint and recall
counts.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVarP(&a.output, "output", "o", formatJSON, "Output format: json or yaml")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override LOG_LEVEL")

	cmd.AddCommand(newRecommendCommand(a))
	cmd.AddCommand(newVehicleCommand(a))
	cmd.AddCommand(newSafetyCommand(a))
	cmd.AddCommand(newEnrichCommand(a))

	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	if a.output != formatJSON && a.output != formatYAML {
		return fmt.Errorf("unsupported output %q: must be json or yaml", a.output)
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.Logging.Level
	if a.logLevel != "" {
		if !logging.ValidLevel(a.logLevel) {
			return fmt.Errorf("invalid --log-level %q", a.logLevel)
		}
		level = a.logLevel
	}
	logging.Init(logging.Config{
		Level:     level,
		Format:    "console",
		Timestamp: true,
		Output:    cmd.ErrOrStderr(),
	})
	a.logger = logging.Logger()
	return nil
}

func (a *app) provider() *catalog.Provider {
	p := catalog.NewProvider(a.cfg.Catalog.Path, a.logger)
	p.Reload()
	return p
}

// openCache builds the NHTSA-backed enrichment cache. The returned close
// function releases the store.
func (a *app) openCache() (*enrich.Cache, func(), error) {
	store, err := enrich.OpenStore(&a.cfg.Enrichment, a.logger)
	if err != nil {
		return nil, nil, err
	}
	source := nhtsa.NewCircuitBreakerClient(&a.cfg.NHTSA)
	cache := enrich.NewCache(source, store, enrich.Options{TTL: a.cfg.Enrichment.TTL}, a.logger)

	closeFn := func() {
		if err := store.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Error closing enrichment store")
		}
	}
	return cache, closeFn, nil
}

func (a *app) print(cmd *cobra.Command, v any) error {
	return writeOutput(cmd.OutOrStdout(), a.output, v)
}
