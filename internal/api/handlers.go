// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/ludograph/ludographus/internal/logging"
	"github.com/ludograph/ludographus/internal/recommend"
	"github.com/ludograph/ludographus/internal/websocket"
	"github.com/ludograph/ludographus/internal/worker"
)

// LibrarySource loads library snapshots and the candidate catalog.
// Satisfied by *store.Store.
type LibrarySource interface {
	UserLibrary(ctx context.Context, userID string) ([]recommend.UserGameSnapshot, error)
	CandidatePool(ctx context.Context, limit int) ([]recommend.CandidateGame, error)
	Ping(ctx context.Context) error
}

// VectorSource fetches optional dense vectors. Satisfied by
// *embedding.Client.
type VectorSource interface {
	Enabled() bool
	Vectors(ctx context.Context, gameIDs []string) (map[string][]float32, error)
}

// JobQueue submits recommendation jobs. Satisfied by *worker.Worker.
type JobQueue interface {
	Enqueue(req recommend.Request) (*worker.Job, error)
}

// Handler bundles the endpoint dependencies.
type Handler struct {
	cfg       HandlerConfig
	library   LibrarySource
	vectors   VectorSource
	queue     JobQueue
	hub       *websocket.Hub
	validate  *validator.Validate
	startedAt time.Time
}

// HandlerConfig carries the request-handling knobs.
type HandlerConfig struct {
	// RequestTimeout bounds the synchronous wait for a run result.
	RequestTimeout time.Duration

	// CandidateLimit caps the catalog pool loaded per run.
	CandidateLimit int

	// CORSOrigins are the allowed websocket origins; "*" allows all.
	CORSOrigins []string
}

// NewHandler creates the endpoint handler.
func NewHandler(cfg HandlerConfig, library LibrarySource, vectors VectorSource, queue JobQueue, hub *websocket.Hub) *Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.CandidateLimit < 1 {
		cfg.CandidateLimit = 5000
	}
	return &Handler{
		cfg:       cfg,
		library:   library,
		vectors:   vectors,
		queue:     queue,
		hub:       hub,
		validate:  validator.New(),
		startedAt: time.Now(),
	}
}

// recommendationRequest is the POST /api/v1/recommendations body. Callers
// either name a stored user or inline a library snapshot.
type recommendationRequest struct {
	UserID           string                       `json:"userId" validate:"required_without=UserGames,omitempty,max=128"`
	UserGames        []recommend.UserGameSnapshot `json:"userGames" validate:"required_without=UserID,omitempty,dive"`
	Candidates       []recommend.CandidateGame    `json:"candidates" validate:"omitempty,dive"`
	CurrentHour      *int                         `json:"currentHour" validate:"omitempty,min=0,max=23"`
	DismissedGameIDs []string                     `json:"dismissedGameIds" validate:"omitempty,max=1000"`
	RunID            string                       `json:"runId" validate:"omitempty,max=128"`
}

// Recommendations handles POST /api/v1/recommendations. The run executes
// on the worker queue; the handler waits synchronously for the terminal
// result. Engine-internal failures still produce HTTP 200 with the empty
// fallback result so clients render an empty page instead of an error.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var body recommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body", nil)
		return
	}
	if err := h.validate.Struct(&body); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidationFailed, "request validation failed", validationDetails(err))
		return
	}

	req, err := h.buildEngineRequest(r.Context(), &body)
	if err != nil {
		var nf *notFoundError
		if errors.As(err, &nf) {
			respondError(w, r, http.StatusNotFound, ErrCodeNotFound, nf.Error(), nil)
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to assemble run input")
		respondError(w, r, http.StatusInternalServerError, ErrCodeDatabaseError, "failed to load run input", nil)
		return
	}

	job, err := h.queue.Enqueue(*req)
	if err != nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "recommendation queue is full, retry later", nil)
		return
	}

	select {
	case res := <-job.Done:
		respond(w, r, start, res)
	case <-time.After(h.cfg.RequestTimeout):
		respondError(w, r, http.StatusGatewayTimeout, ErrCodeTimeout, "run did not complete in time; subscribe to the websocket for the result", nil)
	case <-r.Context().Done():
		// Client went away; the worker still finishes and publishes to
		// the bus.
	}
}

// notFoundError marks a userId with no stored library.
type notFoundError struct{ userID string }

func (e *notFoundError) Error() string {
	return "no library found for user " + e.userID
}

// buildEngineRequest resolves the stored library and candidate pool when
// the caller passed a userId, then attaches dense vectors when the
// embedding provider yields any.
func (h *Handler) buildEngineRequest(ctx context.Context, body *recommendationRequest) (*recommend.Request, error) {
	req := &recommend.Request{
		UserGames:        body.UserGames,
		Candidates:       body.Candidates,
		DismissedGameIDs: body.DismissedGameIDs,
		RunID:            body.RunID,
		Now:              time.Now().UnixMilli(),
		CurrentHour:      time.Now().Hour(),
	}
	if body.CurrentHour != nil {
		req.CurrentHour = *body.CurrentHour
	}

	if body.UserID != "" && len(req.UserGames) == 0 {
		games, err := h.library.UserLibrary(ctx, body.UserID)
		if err != nil {
			return nil, err
		}
		if len(games) == 0 {
			return nil, &notFoundError{userID: body.UserID}
		}
		req.UserGames = games
	}

	if len(req.Candidates) == 0 {
		pool, err := h.library.CandidatePool(ctx, h.cfg.CandidateLimit)
		if err != nil {
			return nil, err
		}
		req.Candidates = pool
	}

	h.attachVectors(ctx, req)
	return req, nil
}

// attachVectors fills missing embeddings from the provider. The provider
// degrades to an empty map on failure, so absence of vectors simply means
// the run scores on sparse signals.
func (h *Handler) attachVectors(ctx context.Context, req *recommend.Request) {
	hasAny := func() bool {
		for i := range req.UserGames {
			if len(req.UserGames[i].Embedding) > 0 {
				return true
			}
		}
		for i := range req.Candidates {
			if len(req.Candidates[i].Embedding) > 0 {
				return true
			}
		}
		return false
	}

	if h.vectors != nil && h.vectors.Enabled() {
		ids := make([]string, 0, len(req.UserGames)+len(req.Candidates))
		for i := range req.UserGames {
			if len(req.UserGames[i].Embedding) == 0 {
				ids = append(ids, req.UserGames[i].ID)
			}
		}
		for i := range req.Candidates {
			if len(req.Candidates[i].Embedding) == 0 {
				ids = append(ids, req.Candidates[i].ID)
			}
		}

		vectors, err := h.vectors.Vectors(ctx, ids)
		if err == nil && len(vectors) > 0 {
			for i := range req.UserGames {
				if vec, ok := vectors[req.UserGames[i].ID]; ok {
					req.UserGames[i].Embedding = vec
				}
			}
			for i := range req.Candidates {
				if vec, ok := vectors[req.Candidates[i].ID]; ok {
					req.Candidates[i].Embedding = vec
				}
			}
		}
	}

	req.HasEmbeddings = hasAny()
}

// healthStatus is the GET /api/v1/health payload.
type healthStatus struct {
	Status           string `json:"status"`
	UptimeSeconds    int64  `json:"uptime_seconds"`
	Database         string `json:"database"`
	WebSocketClients int    `json:"websocket_clients"`
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	status := healthStatus{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		Database:      "ok",
	}
	if h.hub != nil {
		status.WebSocketClients = h.hub.ClientCount()
	}

	pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.library.Ping(pingCtx); err != nil {
		status.Status = "degraded"
		status.Database = "unreachable"
	}

	respond(w, r, start, status)
}

// WebSocket handles GET /api/v1/ws, upgrading the connection and handing
// it to the hub.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "websocket hub unavailable", nil)
		return
	}

	upgrader := websocket.Upgrader(h.checkOrigin)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn)
	h.hub.Register <- client
	client.Start()
}

// checkOrigin validates the websocket handshake origin against the
// configured CORS origins.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.cfg.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// validationDetails flattens validator errors into field/tag pairs.
func validationDetails(err error) any {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	details := make([]map[string]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, map[string]string{
			"field": fe.Field(),
			"tag":   fe.Tag(),
		})
	}
	return details
}
