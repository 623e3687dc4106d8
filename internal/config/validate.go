// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// maxResultLimit is the hard ceiling on results per recommendation request.
const maxResultLimit = 50

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateCatalog(); err != nil {
		return err
	}
	if err := c.validateEnrichment(); err != nil {
		return err
	}
	if err := c.validateNHTSA(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateSession(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateCatalog() error {
	if strings.TrimSpace(c.Catalog.Path) == "" {
		return errors.New("CATALOG_PATH is required")
	}
	if c.Catalog.WatchDebounce < 0 {
		return errors.New("CATALOG_WATCH_DEBOUNCE must not be negative")
	}
	return nil
}

func (c *Config) validateEnrichment() error {
	switch c.Enrichment.Store {
	case StoreFile:
		if strings.TrimSpace(c.Enrichment.CachePath) == "" {
			return errors.New("ENRICH_CACHE_PATH is required when ENRICH_STORE=file")
		}
	case StoreBadger:
		if strings.TrimSpace(c.Enrichment.BadgerDir) == "" {
			return errors.New("ENRICH_BADGER_DIR is required when ENRICH_STORE=badger")
		}
	default:
		return fmt.Errorf("ENRICH_STORE must be one of: file, badger (got %q)", c.Enrichment.Store)
	}

	if c.Enrichment.TTL <= 0 {
		return errors.New("ENRICH_TTL must be positive")
	}
	if c.Enrichment.BatchDelay < 0 {
		return errors.New("ENRICH_BATCH_DELAY must not be negative")
	}
	return nil
}

func (c *Config) validateNHTSA() error {
	if err := validateHTTPURL(c.NHTSA.BaseURL, "NHTSA_BASE_URL"); err != nil {
		return err
	}
	if c.NHTSA.Timeout <= 0 {
		return errors.New("NHTSA_TIMEOUT must be positive")
	}
	if r := c.NHTSA.BreakerFailureRatio; r <= 0 || r > 1 {
		return fmt.Errorf("NHTSA_BREAKER_FAILURE_RATIO must be in (0, 1], got %v", r)
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.MaxLimit < 1 || r.MaxLimit > maxResultLimit {
		return fmt.Errorf("RECOMMEND_MAX_LIMIT must be between 1 and %d, got %d", maxResultLimit, r.MaxLimit)
	}
	if r.DefaultLimit < 1 || r.DefaultLimit > r.MaxLimit {
		return fmt.Errorf("RECOMMEND_DEFAULT_LIMIT must be between 1 and RECOMMEND_MAX_LIMIT (%d), got %d", r.MaxLimit, r.DefaultLimit)
	}
	if r.Workers < 0 {
		return errors.New("RECOMMEND_WORKERS must not be negative")
	}
	if r.ParallelThreshold < 0 {
		return errors.New("RECOMMEND_PARALLEL_THRESHOLD must not be negative")
	}
	return nil
}

func (c *Config) validateSession() error {
	if c.Session.IdleTTL <= 0 {
		return errors.New("SESSION_IDLE_TTL must be positive")
	}
	if c.Session.SweepInterval <= 0 {
		return errors.New("SESSION_SWEEP_INTERVAL must be positive")
	}
	if c.Session.MaxMessages < 1 {
		return errors.New("SESSION_MAX_MESSAGES must be at least 1")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return errors.New("HTTP_TIMEOUT must be positive")
	}
	if !c.Server.RateLimitDisabled {
		if c.Server.RateLimitRequests < 1 {
			return errors.New("RATE_LIMIT_REQUESTS must be at least 1 (or set RATE_LIMIT_DISABLED=true)")
		}
		if c.Server.RateLimitWindow <= 0 {
			return errors.New("RATE_LIMIT_WINDOW must be positive")
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return errors.New("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return errors.New("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// validateHTTPURL validates that a URL is an absolute http or https URL.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %q", fieldName, parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	if parsedURL.RawQuery != "" {
		return fmt.Errorf("%s should not contain query parameters, remove: ?%s", fieldName, parsedURL.RawQuery)
	}
	return nil
}
