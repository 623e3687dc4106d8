// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package recommend

import (
	"fmt"
	"runtime"
)

// Config contains the tunables of the recommendation engine.
type Config struct {
	// DefaultLimit is the number of results returned when a request sets no limit.
	// Default: 5.
	DefaultLimit int `json:"default_limit"`

	// MaxLimit is the largest limit a request may ask for.
	// Default: 50.
	MaxLimit int `json:"max_limit"`

	// BudgetOverrunCap is the multiple of budget above which a priced vehicle
	// is filtered out. Default: 1.2.
	BudgetOverrunCap float64 `json:"budget_overrun_cap"`

	// Workers is the number of scoring goroutines. Zero means GOMAXPROCS.
	Workers int `json:"workers"`

	// ParallelThreshold is the candidate count below which scoring runs on
	// the calling goroutine. Default: 512.
	ParallelThreshold int `json:"parallel_threshold"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultLimit:      5,
		MaxLimit:          50,
		BudgetOverrunCap:  1.2,
		ParallelThreshold: 512,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.DefaultLimit <= 0 {
		return fmt.Errorf("recommend.default_limit must be positive, got %d", c.DefaultLimit)
	}
	if c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("recommend.max_limit must be >= recommend.default_limit, got %d < %d", c.MaxLimit, c.DefaultLimit)
	}
	if c.BudgetOverrunCap < 1 {
		return fmt.Errorf("recommend.budget_overrun_cap must be >= 1, got %f", c.BudgetOverrunCap)
	}
	if c.Workers < 0 {
		return fmt.Errorf("recommend.workers must be non-negative, got %d", c.Workers)
	}
	if c.ParallelThreshold < 0 {
		return fmt.Errorf("recommend.parallel_threshold must be non-negative, got %d", c.ParallelThreshold)
	}
	return nil
}

func (c *Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}
