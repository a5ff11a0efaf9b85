// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

// Package worker runs recommendation jobs off a bounded queue and
// publishes their progress and results to the event bus.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/ludograph/ludographus/internal/events"
	"github.com/ludograph/ludographus/internal/metrics"
	"github.com/ludograph/ludographus/internal/recommend"
)

// ErrQueueFull is returned by Enqueue when the job queue is at capacity.
var ErrQueueFull = errors.New("recommendation queue is full")

// Job is one queued engine invocation. Done receives the terminal result
// exactly once and is then closed.
type Job struct {
	Request recommend.Request
	Done    chan recommend.Result
}

// Worker pulls jobs from a bounded queue and runs them sequentially.
// Sequential execution keeps one run's scoring pool from starving
// another's; the engine itself parallelizes across candidates.
type Worker struct {
	engine *recommend.Engine
	bus    *events.Bus
	jobs   chan *Job
	logger zerolog.Logger
}

// New creates a worker with the given queue capacity.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(engine *recommend.Engine, bus *events.Bus, queueSize int, logger zerolog.Logger) *Worker {
	if queueSize < 1 {
		queueSize = 64
	}
	return &Worker{
		engine: engine,
		bus:    bus,
		jobs:   make(chan *Job, queueSize),
		logger: logger.With().Str("component", "recommend_worker").Logger(),
	}
}

// Enqueue submits a request. The returned job's Done channel yields the
// terminal result. Fails fast with ErrQueueFull instead of blocking the
// caller's request handler.
func (w *Worker) Enqueue(req recommend.Request) (*Job, error) {
	job := &Job{
		Request: req,
		Done:    make(chan recommend.Result, 1),
	}
	select {
	case w.jobs <- job:
		metrics.QueueDepth.Set(float64(len(w.jobs)))
		return job, nil
	default:
		return nil, ErrQueueFull
	}
}

// Serve implements suture.Service, processing jobs until ctx is canceled.
func (w *Worker) Serve(ctx context.Context) error {
	w.logger.Info().Int("queue_capacity", cap(w.jobs)).Msg("worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("worker stopped")
			return ctx.Err()
		case job := <-w.jobs:
			metrics.QueueDepth.Set(float64(len(w.jobs)))
			w.runJob(ctx, job)
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (w *Worker) String() string {
	return "recommend-worker"
}

// runJob executes one engine run, relaying progress and the terminal
// result to the bus and the job's Done channel.
func (w *Worker) runJob(ctx context.Context, job *Job) {
	start := time.Now()

	res := w.engine.Run(ctx, &job.Request, func(p recommend.Progress) {
		if err := w.bus.PublishProgress(p); err != nil {
			w.logger.Warn().Err(err).Str("run_id", p.RunID).Msg("failed to publish progress")
		}
	})

	if err := w.bus.PublishResult(&res); err != nil {
		w.logger.Warn().Err(err).Str("run_id", res.RunID).Msg("failed to publish result")
	}

	job.Done <- res
	close(job.Done)

	outcome := "ok"
	if res.Err != "" {
		outcome = "error"
	}
	candidates := 0
	for i := range res.Shelves {
		candidates += len(res.Shelves[i].Games)
	}
	metrics.ObserveRun(outcome, time.Since(start), len(res.Shelves), candidates)

	w.logger.Info().
		Str("run_id", res.RunID).
		Str("outcome", outcome).
		Int("shelves", len(res.Shelves)).
		Int64("compute_ms", res.ComputeTimeMs).
		Msg("run finished")
}
