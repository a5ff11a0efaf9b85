// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

// Package api exposes the HTTP surface: the recommendation endpoint, the
// websocket upgrade, health, and metrics.
package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/ludograph/ludographus/internal/logging"
)

// APIResponse is the wrapper every endpoint returns.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError carries a machine-readable code plus a human message.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// APIMeta carries response metadata for tracing.
type APIMeta struct {
	RequestID  string    `json:"request_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMs int64     `json:"duration_ms,omitempty"`
}

// Error codes.
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeTimeout            = "TIMEOUT"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeDatabaseError      = "DATABASE_ERROR"
)

// respond writes a success envelope.
func respond(w http.ResponseWriter, r *http.Request, start time.Time, data any) {
	requestID := logging.RequestIDFromContext(r.Context())
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			RequestID:  requestID,
			Timestamp:  time.Now().UTC(),
			DurationMs: time.Since(start).Milliseconds(),
		},
	})
}

// respondError writes an error envelope with the given status.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	requestID := logging.RequestIDFromContext(r.Context())
	writeJSON(w, status, APIResponse{
		Success: false,
		Error: &APIError{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: requestID,
		},
		Meta: &APIMeta{
			RequestID: requestID,
			Timestamp: time.Now().UTC(),
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Error().Err(err).Msg("failed to encode response")
	}
}
