// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

/*
Package config provides centralized configuration for CarMatch.

Configuration is layered with koanf v2, later layers overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. Optional YAML file: CONFIG_PATH, then config.yaml / config.yml in the
    working directory, then /etc/carmatch/config.yaml
 3. Environment variables, mapped explicitly in envTransformFunc

# Environment Variables

Catalog:
  - CATALOG_PATH: catalog JSON file (default: data/cache/vehicles.json)
  - CATALOG_WATCH: reload on file change (default: true)

Enrichment:
  - ENRICH_STORE: file or badger (default: file)
  - ENRICH_CACHE_PATH: JSON cache file for the file store
  - ENRICH_BADGER_DIR: database directory for the badger store
  - ENRICH_TTL: entry freshness (default: 720h)
  - ENRICH_BATCH_DELAY: spacing between batch lookups (default: 500ms)

NHTSA:
  - NHTSA_BASE_URL, NHTSA_TIMEOUT (default: 6s), NHTSA_USER_AGENT

Recommendation:
  - RECOMMEND_DEFAULT_LIMIT (default: 5), RECOMMEND_MAX_LIMIT (default: 50)
  - RECOMMEND_WORKERS: scoring goroutines, 0 = GOMAXPROCS

Sessions:
  - SESSION_IDLE_TTL (default: 2h), SESSION_SWEEP_INTERVAL (default: 5m)

HTTP Server:
  - HTTP_HOST, HTTP_PORT (default: 8000), HTTP_TIMEOUT
  - CORS_ORIGINS: comma separated (default: *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, RATE_LIMIT_DISABLED

Logging:
  - LOG_LEVEL, LOG_FORMAT (json|console), LOG_CALLER
*/
package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the complete application configuration.
type Config struct {
	Catalog    CatalogConfig    `koanf:"catalog"`
	Enrichment EnrichmentConfig `koanf:"enrichment"`
	NHTSA      NHTSAConfig      `koanf:"nhtsa"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Session    SessionConfig    `koanf:"session"`
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// CatalogConfig locates the vehicle catalog.
type CatalogConfig struct {
	Path          string        `koanf:"path"`
	Watch         bool          `koanf:"watch"`
	WatchDebounce time.Duration `koanf:"watch_debounce"`
}

// Enrichment store backends.
const (
	StoreFile   = "file"
	StoreBadger = "badger"
)

// EnrichmentConfig configures the issue-data cache and batch enrichment.
type EnrichmentConfig struct {
	Store      string        `koanf:"store"`
	CachePath  string        `koanf:"cache_path"`
	BadgerDir  string        `koanf:"badger_dir"`
	TTL        time.Duration `koanf:"ttl"`
	BatchDelay time.Duration `koanf:"batch_delay"`

	// GCInterval is how often badger value log GC runs.
	GCInterval time.Duration `koanf:"gc_interval"`
}

// NHTSAConfig configures the NHTSA API client and its circuit breaker.
type NHTSAConfig struct {
	BaseURL   string        `koanf:"base_url"`
	Timeout   time.Duration `koanf:"timeout"`
	UserAgent string        `koanf:"user_agent"`

	BreakerMaxRequests  uint32        `koanf:"breaker_max_requests"`
	BreakerInterval     time.Duration `koanf:"breaker_interval"`
	BreakerTimeout      time.Duration `koanf:"breaker_timeout"`
	BreakerMinRequests  uint32        `koanf:"breaker_min_requests"`
	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio"`
}

// RecommendConfig tunes the recommendation engine.
type RecommendConfig struct {
	DefaultLimit      int `koanf:"default_limit"`
	MaxLimit          int `koanf:"max_limit"`
	Workers           int `koanf:"workers"`
	ParallelThreshold int `koanf:"parallel_threshold"`
}

// SessionConfig configures the in-memory session store.
type SessionConfig struct {
	IdleTTL       time.Duration `koanf:"idle_ttl"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
	MaxMessages   int           `koanf:"max_messages"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// Addr returns host:port for net.Listen.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// LoggingConfig configures zerolog.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
