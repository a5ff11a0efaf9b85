// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/ludograph/ludographus/internal/logging"
	"github.com/ludograph/ludographus/internal/recommend"
	"github.com/ludograph/ludographus/internal/worker"
)

//nolint:gochecknoinits // silence logs for the whole package test run
func init() {
	logging.Init(logging.Config{Level: "error", Format: "console", Output: io.Discard})
}

type stubLibrary struct {
	games   map[string][]recommend.UserGameSnapshot
	pool    []recommend.CandidateGame
	libErr  error
	pingErr error
}

func (s *stubLibrary) UserLibrary(_ context.Context, userID string) ([]recommend.UserGameSnapshot, error) {
	if s.libErr != nil {
		return nil, s.libErr
	}
	return s.games[userID], nil
}

func (s *stubLibrary) CandidatePool(_ context.Context, _ int) ([]recommend.CandidateGame, error) {
	return s.pool, nil
}

func (s *stubLibrary) Ping(_ context.Context) error {
	return s.pingErr
}

type stubVectors struct {
	enabled bool
	vectors map[string][]float32
}

func (s *stubVectors) Enabled() bool { return s.enabled }

func (s *stubVectors) Vectors(_ context.Context, _ []string) (map[string][]float32, error) {
	return s.vectors, nil
}

// stubQueue records the enqueued request and optionally delivers a
// pre-baked result on the job's Done channel.
type stubQueue struct {
	err    error
	result *recommend.Result
	last   recommend.Request
}

func (q *stubQueue) Enqueue(req recommend.Request) (*worker.Job, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.last = req
	job := &worker.Job{Request: req, Done: make(chan recommend.Result, 1)}
	if q.result != nil {
		res := *q.result
		if res.RunID == "" {
			res.RunID = req.RunID
		}
		job.Done <- res
		close(job.Done)
	}
	return job, nil
}

func testRouter(library LibrarySource, vectors VectorSource, queue JobQueue, timeout time.Duration) http.Handler {
	h := NewHandler(HandlerConfig{
		RequestTimeout: timeout,
		CandidateLimit: 100,
		CORSOrigins:    []string{"*"},
	}, library, vectors, queue, nil)
	return NewRouter(RouterConfig{RateLimitReqs: 1000, RateLimitWindow: time.Minute}, h)
}

func postRecommendations(t *testing.T, router http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var env APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func inlineBody() map[string]any {
	return map[string]any{
		"runId": "run-api",
		"userGames": []recommend.UserGameSnapshot{
			{
				ID: "u1", Title: "Hades",
				Genres: []string{"Roguelike"},
				Rating: 5, HoursPlayed: 80,
				Status: recommend.StatusCompleted,
			},
		},
		"candidates": []recommend.CandidateGame{
			{
				ID: "c1", Title: "Dead Cells",
				Genres:     []string{"Roguelike"},
				Metacritic: 89, ReviewCount: 20000, ReviewPositive: 0.95,
				ReleaseDate: "2018-08-07",
			},
		},
	}
}

func TestRecommendationsInlineLibrary(t *testing.T) {
	queue := &stubQueue{result: &recommend.Result{Type: "result"}}
	router := testRouter(&stubLibrary{}, &stubVectors{}, queue, time.Second)

	rec := postRecommendations(t, router, inlineBody())

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Error("Success = false, want true")
	}
	if queue.last.RunID != "run-api" {
		t.Errorf("enqueued RunID = %q, want run-api", queue.last.RunID)
	}
	if len(queue.last.UserGames) != 1 || len(queue.last.Candidates) != 1 {
		t.Errorf("enqueued %d games / %d candidates, want 1/1",
			len(queue.last.UserGames), len(queue.last.Candidates))
	}
}

func TestRecommendationsResolvesStoredUser(t *testing.T) {
	library := &stubLibrary{
		games: map[string][]recommend.UserGameSnapshot{
			"demo": {{ID: "u1", Title: "Hades", Status: recommend.StatusPlaying}},
		},
		pool: []recommend.CandidateGame{{ID: "c1", Title: "Dead Cells"}},
	}
	queue := &stubQueue{result: &recommend.Result{Type: "result"}}
	router := testRouter(library, &stubVectors{}, queue, time.Second)

	rec := postRecommendations(t, router, map[string]any{"userId": "demo"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if len(queue.last.UserGames) != 1 {
		t.Errorf("enqueued %d user games, want 1 from store", len(queue.last.UserGames))
	}
	if len(queue.last.Candidates) != 1 {
		t.Errorf("enqueued %d candidates, want 1 from catalog pool", len(queue.last.Candidates))
	}
}

func TestRecommendationsUnknownUser(t *testing.T) {
	queue := &stubQueue{result: &recommend.Result{}}
	router := testRouter(&stubLibrary{}, &stubVectors{}, queue, time.Second)

	rec := postRecommendations(t, router, map[string]any{"userId": "nobody"})

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != ErrCodeNotFound {
		t.Errorf("error code = %+v, want %s", env.Error, ErrCodeNotFound)
	}
}

func TestRecommendationsValidation(t *testing.T) {
	queue := &stubQueue{result: &recommend.Result{}}
	router := testRouter(&stubLibrary{}, &stubVectors{}, queue, time.Second)

	tests := []struct {
		name string
		body map[string]any
	}{
		{"empty body", map[string]any{}},
		{"current hour out of range", map[string]any{"userId": "demo", "currentHour": 24}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postRecommendations(t, router, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			env := decodeEnvelope(t, rec)
			if env.Error == nil || env.Error.Code != ErrCodeValidationFailed {
				t.Errorf("error = %+v, want %s", env.Error, ErrCodeValidationFailed)
			}
		})
	}
}

func TestRecommendationsBadJSON(t *testing.T) {
	router := testRouter(&stubLibrary{}, &stubVectors{}, &stubQueue{}, time.Second)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != ErrCodeBadRequest {
		t.Errorf("error = %+v, want %s", env.Error, ErrCodeBadRequest)
	}
}

func TestRecommendationsQueueFull(t *testing.T) {
	queue := &stubQueue{err: worker.ErrQueueFull}
	router := testRouter(&stubLibrary{}, &stubVectors{}, queue, time.Second)

	rec := postRecommendations(t, router, inlineBody())

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != ErrCodeServiceUnavailable {
		t.Errorf("error = %+v, want %s", env.Error, ErrCodeServiceUnavailable)
	}
}

func TestRecommendationsWaitTimeout(t *testing.T) {
	// The queue never delivers a result, so the handler hits its wait
	// deadline.
	queue := &stubQueue{}
	router := testRouter(&stubLibrary{}, &stubVectors{}, queue, 30*time.Millisecond)

	rec := postRecommendations(t, router, inlineBody())

	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != ErrCodeTimeout {
		t.Errorf("error = %+v, want %s", env.Error, ErrCodeTimeout)
	}
}

func TestRecommendationsEngineFailureStillOK(t *testing.T) {
	// An engine failure is carried inside the result payload, not as an
	// HTTP error, so clients can render the empty fallback.
	queue := &stubQueue{result: &recommend.Result{Type: "result", Err: "scoring failed"}}
	router := testRouter(&stubLibrary{}, &stubVectors{}, queue, time.Second)

	rec := postRecommendations(t, router, inlineBody())

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Error("Success = false, want true even on engine failure")
	}
}

func TestAttachVectors(t *testing.T) {
	h := NewHandler(HandlerConfig{}, &stubLibrary{}, &stubVectors{
		enabled: true,
		vectors: map[string][]float32{
			"u1": {0.1, 0.2},
			"c1": {0.3, 0.4},
		},
	}, &stubQueue{}, nil)

	req := &recommend.Request{
		UserGames:  []recommend.UserGameSnapshot{{ID: "u1"}},
		Candidates: []recommend.CandidateGame{{ID: "c1"}, {ID: "c2"}},
	}
	h.attachVectors(context.Background(), req)

	if !req.HasEmbeddings {
		t.Error("HasEmbeddings = false, want true")
	}
	if len(req.UserGames[0].Embedding) != 2 {
		t.Errorf("user embedding length = %d, want 2", len(req.UserGames[0].Embedding))
	}
	if len(req.Candidates[0].Embedding) != 2 {
		t.Errorf("candidate embedding length = %d, want 2", len(req.Candidates[0].Embedding))
	}
	if len(req.Candidates[1].Embedding) != 0 {
		t.Error("candidate without a vector should stay empty")
	}
}

func TestAttachVectorsDisabledProvider(t *testing.T) {
	h := NewHandler(HandlerConfig{}, &stubLibrary{}, &stubVectors{enabled: false}, &stubQueue{}, nil)

	req := &recommend.Request{
		UserGames:  []recommend.UserGameSnapshot{{ID: "u1", Embedding: []float32{0.5}}},
		Candidates: []recommend.CandidateGame{{ID: "c1"}},
	}
	h.attachVectors(context.Background(), req)

	if !req.HasEmbeddings {
		t.Error("HasEmbeddings = false, want true from inline embedding")
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus string
	}{
		{"healthy", nil, "ok"},
		{"database down", errors.New("connection refused"), "degraded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := testRouter(&stubLibrary{pingErr: tt.pingErr}, &stubVectors{}, &stubQueue{}, time.Second)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			var env struct {
				Data healthStatus `json:"data"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode health: %v", err)
			}
			if env.Data.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", env.Data.Status, tt.wantStatus)
			}
		})
	}
}

func TestRequestIDEchoed(t *testing.T) {
	router := testRouter(&stubLibrary{}, &stubVectors{}, &stubQueue{}, time.Second)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("X-Request-ID = %q, want req-42", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := testRouter(&stubLibrary{}, &stubVectors{}, &stubQueue{}, time.Second)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Error("metrics body is empty")
	}
}
