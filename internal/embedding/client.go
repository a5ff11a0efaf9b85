// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

// Package embedding fetches dense game vectors from an external provider.
// The provider is strictly optional; every failure mode degrades to "no
// vectors" so a run proceeds on the sparse signals alone.
package embedding

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	// breakerFailureThreshold consecutive failures open the breaker.
	breakerFailureThreshold = 5

	// breakerOpenTimeout is how long the breaker stays open before probing.
	breakerOpenTimeout = 30 * time.Second
)

// Config configures the client.
type Config struct {
	// URL of the provider's vector endpoint; empty disables the client.
	URL string

	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client is a rate-limited, breaker-protected HTTP client for the vector
// endpoint. A nil or disabled client returns no vectors and no error.
type Client struct {
	cfg     Config
	httpc   *http.Client
	breaker *gobreaker.CircuitBreaker[map[string][]float32]
	limiter *rate.Limiter
	logger  zerolog.Logger
	observe func(outcome string)
}

// NewClient creates an embedding client.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewClient(cfg Config, logger zerolog.Logger, observe func(outcome string)) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 4
	}
	if cfg.Burst < 1 {
		cfg.Burst = 8
	}
	if observe == nil {
		observe = func(string) {}
	}

	l := logger.With().Str("component", "embedding_client").Logger()

	settings := gobreaker.Settings{
		Name:    "embedding",
		Timeout: breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("embedding circuit breaker state change")
		},
	}

	return &Client{
		cfg:     cfg,
		httpc:   &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker[map[string][]float32](settings),
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:  l,
		observe: observe,
	}
}

// Enabled reports whether a provider URL is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.cfg.URL != ""
}

// vectorRequest is the provider wire request.
type vectorRequest struct {
	GameIDs []string `json:"gameIds"`
}

// vectorResponse is the provider wire response.
type vectorResponse struct {
	Vectors map[string][]float32 `json:"vectors"`
}

// Vectors fetches dense vectors for the given game ids. Absence of vectors
// is a valid outcome: a disabled client, an open breaker, or a provider
// error all yield an empty map and a nil error. Only context cancellation
// is surfaced to the caller.
func (c *Client) Vectors(ctx context.Context, gameIDs []string) (map[string][]float32, error) {
	if !c.Enabled() || len(gameIDs) == 0 {
		c.observe("skipped")
		return map[string][]float32{}, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for embedding rate limit: %w", err)
	}

	vectors, err := c.breaker.Execute(func() (map[string][]float32, error) {
		return c.fetch(ctx, gameIDs)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.observe("breaker_open")
			c.logger.Debug().Msg("embedding breaker open, run proceeds without vectors")
			return map[string][]float32{}, nil
		}
		c.observe("error")
		c.logger.Warn().Err(err).Int("game_ids", len(gameIDs)).Msg("embedding fetch failed, run proceeds without vectors")
		return map[string][]float32{}, nil
	}

	c.observe("ok")
	return vectors, nil
}

// fetch performs one provider round trip.
func (c *Client) fetch(ctx context.Context, gameIDs []string) (map[string][]float32, error) {
	body, err := json.Marshal(vectorRequest{GameIDs: gameIDs})
	if err != nil {
		return nil, fmt.Errorf("marshaling vector request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building vector request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling embedding provider: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-side close

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding provider returned status %d", resp.StatusCode)
	}

	var decoded vectorResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding vector response: %w", err)
	}
	if decoded.Vectors == nil {
		decoded.Vectors = map[string][]float32{}
	}
	return decoded.Vectors, nil
}
