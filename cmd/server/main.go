// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

// Command server runs the Ludographus recommendation service: the HTTP
// API, the websocket event stream, the recommendation worker, and the
// DuckDB-backed library store, all under one supervisor tree.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ludograph/ludographus/internal/api"
	"github.com/ludograph/ludographus/internal/config"
	"github.com/ludograph/ludographus/internal/embedding"
	"github.com/ludograph/ludographus/internal/events"
	"github.com/ludograph/ludographus/internal/logging"
	"github.com/ludograph/ludographus/internal/metrics"
	"github.com/ludograph/ludographus/internal/recommend"
	"github.com/ludograph/ludographus/internal/recommend/reranking"
	"github.com/ludograph/ludographus/internal/store"
	"github.com/ludograph/ludographus/internal/supervisor"
	"github.com/ludograph/ludographus/internal/supervisor/services"
	"github.com/ludograph/ludographus/internal/websocket"
	"github.com/ludograph/ludographus/internal/worker"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)).
		Str("database", cfg.Database.Path).
		Bool("embedding_enabled", cfg.Embedding.URL != "").
		Msg("starting ludographus")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(store.Config{Path: cfg.Database.Path})
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("store close failed")
		}
	}()

	if cfg.Database.SeedMockData {
		if err := db.SeedMockData(ctx); err != nil {
			return fmt.Errorf("seeding mock data: %w", err)
		}
	}

	engine, err := recommend.NewEngine(cfg.Recommend, logging.Logger(), reranking.NewMMR(cfg.Recommend.MMRLambda))
	if err != nil {
		return fmt.Errorf("building engine: %w", err)
	}

	vectors := embedding.NewClient(embedding.Config{
		URL:               cfg.Embedding.URL,
		Timeout:           cfg.Embedding.Timeout,
		RequestsPerSecond: cfg.Embedding.RequestsPerSecond,
		Burst:             cfg.Embedding.Burst,
	}, logging.Logger(), func(outcome string) {
		metrics.EmbeddingRequests.WithLabelValues(outcome).Inc()
	})

	bus := events.NewBus(logging.Logger())
	defer func() {
		if cerr := bus.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("event bus close failed")
		}
	}()

	hub := websocket.NewHub(cfg.WebSocket.SendBuffer)
	relay := websocket.NewRelay(hub, bus)
	jobs := worker.New(engine, bus, cfg.Engine.QueueSize, logging.Logger())

	handler := api.NewHandler(api.HandlerConfig{
		RequestTimeout: cfg.Server.RequestTimeout,
		CandidateLimit: cfg.Database.CandidateLimit,
		CORSOrigins:    cfg.Server.CORSOrigins,
	}, db, vectors, jobs, hub)

	router := api.NewRouter(api.RouterConfig{
		RateLimitReqs:   cfg.Server.RateLimitReqs,
		RateLimitWindow: cfg.Server.RateLimitWindow,
		CORSOrigins:     cfg.Server.CORSOrigins,
	}, handler)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// No WriteTimeout: websocket connections outlive any fixed
		// deadline, and the API enforces its own request timeout.
		IdleTimeout: 120 * time.Second,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.Timeout
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeCfg)

	tree.AddMessagingService(services.NewRunnerService("websocket-hub", hub))
	tree.AddMessagingService(services.NewRunnerService("event-relay", relay))
	tree.AddEngineService(jobs)
	tree.AddAPIService(services.NewHTTPService(server, treeCfg.ShutdownTimeout))

	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("shutdown signal received")
		if err := <-errCh; err != nil && ctx.Err() == nil {
			return err
		}
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("supervisor tree failed: %w", err)
		}
	}

	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("service missed shutdown deadline")
		}
	}

	logging.Info().Msg("ludographus stopped")
	return nil
}
