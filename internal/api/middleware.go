// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package api

import (
	"net/http"
	"time"

	"github.com/ludograph/ludographus/internal/logging"
	"github.com/ludograph/ludographus/internal/metrics"
)

// requestContext attaches request and correlation IDs to the context and
// echoes the request ID back in a header.
func requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = logging.GenerateRequestID()
		}

		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		ctx = logging.ContextWithCorrelationID(ctx, logging.GenerateCorrelationID())

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder captures the status code for metrics and access logs.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

// instrument records per-endpoint Prometheus metrics and an access log
// line. endpoint is the route pattern, not the raw path, to keep metric
// cardinality bounded.
func instrument(endpoint string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			elapsed := time.Since(start)
			metrics.ObserveAPIRequest(r.Method, endpoint, rec.status, elapsed)
			logging.Ctx(r.Context()).Debug().
				Str("method", r.Method).
				Str("endpoint", endpoint).
				Int("status", rec.status).
				Dur("elapsed", elapsed).
				Msg("request handled")
		})
	}
}
