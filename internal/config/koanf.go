// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/carmatch/config.yaml",
	"/etc/carmatch/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Path:          "data/cache/vehicles.json",
			Watch:         true,
			WatchDebounce: 250 * time.Millisecond,
		},
		Enrichment: EnrichmentConfig{
			Store:      StoreFile,
			CachePath:  "data/cache/nhtsa_cache.json",
			BadgerDir:  "data/badger",
			TTL:        30 * 24 * time.Hour,
			BatchDelay: 500 * time.Millisecond,
			GCInterval: 10 * time.Minute,
		},
		NHTSA: NHTSAConfig{
			BaseURL:             "https://api.nhtsa.gov",
			Timeout:             6 * time.Second,
			UserAgent:           "carmatch",
			BreakerMaxRequests:  3,
			BreakerInterval:     time.Minute,
			BreakerTimeout:      2 * time.Minute,
			BreakerMinRequests:  10,
			BreakerFailureRatio: 0.6,
		},
		Recommend: RecommendConfig{
			DefaultLimit:      5,
			MaxLimit:          50,
			Workers:           0, // 0 = GOMAXPROCS
			ParallelThreshold: 512,
		},
		Session: SessionConfig{
			IdleTTL:       2 * time.Hour,
			SweepInterval: 5 * time.Minute,
			MaxMessages:   200,
		},
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8000,
			Timeout:           30 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Default returns the built-in configuration without reading any source.
func Default() *Config {
	return defaultConfig()
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	return Load("")
}

// Load is LoadWithKoanf with an explicit config file. An empty path searches
// CONFIG_PATH and DefaultConfigPaths; a non-empty path must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings; YAML lists are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Catalog
	"catalog_path":           "catalog.path",
	"catalog_watch":          "catalog.watch",
	"catalog_watch_debounce": "catalog.watch_debounce",

	// Enrichment
	"enrich_store":       "enrichment.store",
	"enrich_cache_path":  "enrichment.cache_path",
	"enrich_badger_dir":  "enrichment.badger_dir",
	"enrich_ttl":         "enrichment.ttl",
	"enrich_batch_delay": "enrichment.batch_delay",
	"enrich_gc_interval": "enrichment.gc_interval",

	// NHTSA
	"nhtsa_base_url":              "nhtsa.base_url",
	"nhtsa_timeout":               "nhtsa.timeout",
	"nhtsa_user_agent":            "nhtsa.user_agent",
	"nhtsa_breaker_max_requests":  "nhtsa.breaker_max_requests",
	"nhtsa_breaker_interval":      "nhtsa.breaker_interval",
	"nhtsa_breaker_timeout":       "nhtsa.breaker_timeout",
	"nhtsa_breaker_min_requests":  "nhtsa.breaker_min_requests",
	"nhtsa_breaker_failure_ratio": "nhtsa.breaker_failure_ratio",

	// Recommendation engine
	"recommend_default_limit":      "recommend.default_limit",
	"recommend_max_limit":          "recommend.max_limit",
	"recommend_workers":            "recommend.workers",
	"recommend_parallel_threshold": "recommend.parallel_threshold",

	// Sessions
	"session_idle_ttl":       "session.idle_ttl",
	"session_sweep_interval": "session.sweep_interval",
	"session_max_messages":   "session.max_messages",

	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"cors_origins":          "server.cors_origins",
	"rate_limit_requests":   "server.rate_limit_requests",
	"rate_limit_window":     "server.rate_limit_window",
	"rate_limit_disabled":   "server.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - CATALOG_PATH -> catalog.path
//   - ENRICH_TTL -> enrichment.ttl
//   - HTTP_PORT -> server.port
//
// Unmapped variables return "" and are skipped, so unrelated environment
// variables never leak into the configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
