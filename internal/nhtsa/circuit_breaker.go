// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package nhtsa

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/carmatch/internal/config"
	"github.com/tomtom215/carmatch/internal/logging"
	"github.com/tomtom215/carmatch/internal/metrics"
)

// BreakerName labels the breaker in logs and metrics.
const BreakerName = "nhtsa-api"

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("nhtsa circuit breaker open")

// CircuitBreakerClient wraps Client with a circuit breaker.
//
// The breaker opens when at least MinRequests calls were made in the current
// interval and the failure ratio reaches FailureRatio. Caller cancellation is
// not counted as a failure.
type CircuitBreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[int]
	name   string
}

// NewCircuitBreakerClient creates a breaker-protected client from cfg.
func NewCircuitBreakerClient(cfg *config.NHTSAConfig) *CircuitBreakerClient {
	return newCircuitBreakerClient(NewClient(cfg), breakerSettings(cfg))
}

type breakerOptions struct {
	maxRequests  uint32
	interval     time.Duration
	timeout      time.Duration
	minRequests  uint32
	failureRatio float64
}

func breakerSettings(cfg *config.NHTSAConfig) breakerOptions {
	opts := breakerOptions{
		maxRequests:  3,
		interval:     time.Minute,
		timeout:      2 * time.Minute,
		minRequests:  10,
		failureRatio: 0.6,
	}
	if cfg == nil {
		return opts
	}
	if cfg.BreakerMaxRequests > 0 {
		opts.maxRequests = cfg.BreakerMaxRequests
	}
	if cfg.BreakerInterval > 0 {
		opts.interval = cfg.BreakerInterval
	}
	if cfg.BreakerTimeout > 0 {
		opts.timeout = cfg.BreakerTimeout
	}
	if cfg.BreakerMinRequests > 0 {
		opts.minRequests = cfg.BreakerMinRequests
	}
	if cfg.BreakerFailureRatio > 0 {
		opts.failureRatio = cfg.BreakerFailureRatio
	}
	return opts
}

func newCircuitBreakerClient(client *Client, opts breakerOptions) *CircuitBreakerClient {
	metrics.CircuitBreakerState.WithLabelValues(BreakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[int](gobreaker.Settings{
		Name:        BreakerName,
		MaxRequests: opts.maxRequests,
		Interval:    opts.interval,
		Timeout:     opts.timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < opts.minRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= opts.failureRatio
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &CircuitBreakerClient{client: client, cb: cb, name: BreakerName}
}

// Complaints returns the complaint count with breaker protection.
func (cbc *CircuitBreakerClient) Complaints(ctx context.Context, maker, model string, year int) (int, error) {
	return cbc.execute(func() (int, error) {
		return cbc.client.Complaints(ctx, maker, model, year)
	})
}

// Recalls returns the recall count with breaker protection.
func (cbc *CircuitBreakerClient) Recalls(ctx context.Context, maker, model string, year int) (int, error) {
	return cbc.execute(func() (int, error) {
		return cbc.client.Recalls(ctx, maker, model, year)
	})
}

// State returns the breaker state as "closed", "half-open" or "open".
func (cbc *CircuitBreakerClient) State() string {
	return stateToString(cbc.cb.State())
}

func (cbc *CircuitBreakerClient) execute(fn func() (int, error)) (int, error) {
	n, err := cbc.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
			return 0, fmt.Errorf("%w: %w", ErrCircuitOpen, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()
		return 0, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
	return n, nil
}

// stateToFloat converts a breaker state to its metric value.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
