// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ludograph/ludographus/internal/events"
	"github.com/ludograph/ludographus/internal/recommend"
	"github.com/ludograph/ludographus/internal/recommend/reranking"
)

func testEngine(t *testing.T) *recommend.Engine {
	t.Helper()
	engine, err := recommend.NewEngine(nil, zerolog.Nop(), reranking.NewMMR(0.7))
	if err != nil {
		t.Fatalf("NewEngine error: %v", err)
	}
	return engine
}

func testRequest() recommend.Request {
	return recommend.Request{
		RunID:       "run-worker",
		Now:         time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC).UnixMilli(),
		CurrentHour: 20,
		UserGames: []recommend.UserGameSnapshot{
			{
				ID: "u1", Title: "Hades",
				Genres:    []string{"Roguelike", "Action"},
				Developer: "Supergiant Games",
				Rating:    5, HoursPlayed: 90,
				Status: recommend.StatusCompleted,
			},
		},
		Candidates: []recommend.CandidateGame{
			{
				ID: "c1", Title: "Dead Cells",
				Genres:     []string{"Roguelike", "Platformer"},
				Developer:  "Motion Twin",
				Metacritic: 89, ReviewCount: 20000, ReviewPositive: 0.95,
				PlayerCount: 5000, ReleaseDate: "2018-08-07", PriceCents: 2499,
			},
		},
	}
}

func TestWorkerRunsJobAndPublishesResult(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results, err := bus.SubscribeResult(ctx)
	if err != nil {
		t.Fatalf("SubscribeResult error: %v", err)
	}

	w := New(testEngine(t), bus, 4, zerolog.Nop())
	go func() { _ = w.Serve(ctx) }()

	job, err := w.Enqueue(testRequest())
	if err != nil {
		t.Fatalf("Enqueue error: %v", err)
	}

	select {
	case res := <-job.Done:
		if res.RunID != "run-worker" {
			t.Errorf("RunID = %q, want run-worker", res.RunID)
		}
		if res.Err != "" {
			t.Errorf("unexpected run error: %s", res.Err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("job never completed")
	}

	select {
	case msg := <-results:
		msg.Ack()
	case <-time.After(2 * time.Second):
		t.Fatal("result was not published to the bus")
	}
}

func TestWorkerDoneChannelCloses(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := New(testEngine(t), bus, 4, zerolog.Nop())
	go func() { _ = w.Serve(ctx) }()

	job, err := w.Enqueue(testRequest())
	if err != nil {
		t.Fatalf("Enqueue error: %v", err)
	}

	<-job.Done
	if _, open := <-job.Done; open {
		t.Error("Done channel still open after result delivery")
	}
}

func TestWorkerQueueFull(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	defer bus.Close()

	// Serve is never started, so the queue only drains at capacity.
	w := New(testEngine(t), bus, 2, zerolog.Nop())

	for i := 0; i < 2; i++ {
		if _, err := w.Enqueue(testRequest()); err != nil {
			t.Fatalf("Enqueue %d error: %v", i, err)
		}
	}
	if _, err := w.Enqueue(testRequest()); !errors.Is(err, ErrQueueFull) {
		t.Errorf("Enqueue on full queue = %v, want ErrQueueFull", err)
	}
}

func TestWorkerServeStopsOnCancel(t *testing.T) {
	bus := events.NewBus(zerolog.Nop())
	defer bus.Close()

	w := New(testEngine(t), bus, 2, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Serve(ctx) }()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not stop after cancel")
	}
}
