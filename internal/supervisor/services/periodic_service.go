// Marquee - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// PeriodicTask runs a maintenance function on a fixed interval, such as
// BadgerDB value log garbage collection for the profile store.
//
// A failed run is logged and retried on the next tick; it does not stop the
// service, so a persistently failing task never trips supervisor backoff.
type PeriodicTask struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) error
	logger   zerolog.Logger

	runs     atomic.Int64
	failures atomic.Int64
}

// NewPeriodicTask creates a task calling run every interval. A non-positive
// interval defaults to one minute.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPeriodicTask(name string, interval time.Duration, run func(ctx context.Context) error, logger zerolog.Logger) *PeriodicTask {
	if interval <= 0 {
		interval = time.Minute
	}
	return &PeriodicTask{
		name:     name,
		interval: interval,
		run:      run,
		logger:   logger.With().Str("service", name).Logger(),
	}
}

// Serve implements suture.Service.
func (p *PeriodicTask) Serve(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *PeriodicTask) tick(ctx context.Context) {
	start := time.Now()
	p.runs.Add(1)
	if err := p.run(ctx); err != nil {
		p.failures.Add(1)
		p.logger.Warn().Err(err).Msg("periodic task failed")
		return
	}
	p.logger.Debug().Dur("duration", time.Since(start)).Msg("periodic task completed")
}

// Runs returns how many times the task has run.
func (p *PeriodicTask) Runs() int64 { return p.runs.Load() }

// Failures returns how many runs returned an error.
func (p *PeriodicTask) Failures() int64 { return p.failures.Load() }

// String names the service in supervisor logs.
func (p *PeriodicTask) String() string { return p.name }
