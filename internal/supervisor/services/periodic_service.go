// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// PeriodicService runs a task on a fixed interval. Task errors are logged
// and the loop continues; only context cancellation stops it.
type PeriodicService struct {
	name     string
	interval time.Duration
	task     func(ctx context.Context) error
	logger   zerolog.Logger
}

// NewPeriodicService creates a ticker-driven service. A non-positive
// interval defaults to one minute.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPeriodicService(name string, interval time.Duration, task func(ctx context.Context) error, logger zerolog.Logger) *PeriodicService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &PeriodicService{
		name:     name,
		interval: interval,
		task:     task,
		logger:   logger.With().Str("service", name).Logger(),
	}
}

// Serve implements suture.Service.
func (s *PeriodicService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Debug().Dur("interval", s.interval).Msg("periodic service started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.task(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn().Err(err).Msg("periodic task failed")
			}
		}
	}
}

func (s *PeriodicService) String() string {
	return s.name
}

// SessionSweeper evicts idle sessions. Implemented by *session.Store.
type SessionSweeper interface {
	Sweep() int
}

// NewSessionSweepService evicts idle sessions every interval.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSessionSweepService(store SessionSweeper, interval time.Duration, logger zerolog.Logger) *PeriodicService {
	var svc *PeriodicService
	svc = NewPeriodicService("session-sweeper", interval, func(context.Context) error {
		if n := store.Sweep(); n > 0 {
			svc.logger.Debug().Int("evicted", n).Msg("idle sessions evicted")
		}
		return nil
	}, logger)
	return svc
}

// ValueLogCollector reclaims value log space. Implemented by
// *enrich.BadgerStore.
type ValueLogCollector interface {
	RunGC(discardRatio float64) (rewritten bool, err error)
}

// gcDiscardRatio is the badger-recommended rewrite threshold.
const gcDiscardRatio = 0.5

// NewBadgerGCService runs badger value log GC every interval, repeating
// while a pass still rewrites a file.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBadgerGCService(store ValueLogCollector, interval time.Duration, logger zerolog.Logger) *PeriodicService {
	return NewPeriodicService("badger-gc", interval, func(ctx context.Context) error {
		for ctx.Err() == nil {
			rewritten, err := store.RunGC(gcDiscardRatio)
			if err != nil || !rewritten {
				return err
			}
		}
		return nil
	}, logger)
}
