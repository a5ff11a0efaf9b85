// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package recommend

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// maxScoringWorkers bounds the candidate-scoring fan-out when the
// configuration does not pin a parallelism level.
const maxScoringWorkers = 8

// Reranker reorders a scored list to balance relevance against diversity.
type Reranker interface {
	// Name returns the reranker identifier for logging.
	Name() string

	// Rerank returns up to k items from the score-sorted input.
	Rerank(ctx context.Context, items []ScoredGame, k int) []ScoredGame
}

// ProgressFunc receives stage-boundary notifications during a run.
// May be nil. Called from the run goroutine; implementations must not block.
type ProgressFunc func(Progress)

// Engine computes taste profiles, scores candidates, and assembles shelves.
// Safe for concurrent use; each Run builds its own isolated context.
type Engine struct {
	cfg      *Config
	logger   zerolog.Logger
	reranker Reranker
}

// NewEngine creates an Engine with a validated configuration.
func NewEngine(cfg *Config, logger zerolog.Logger, reranker Reranker) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	if reranker == nil {
		return nil, fmt.Errorf("reranker is required")
	}
	return &Engine{
		cfg:      cfg.Clone(),
		logger:   logger.With().Str("component", "recommend_engine").Logger(),
		reranker: reranker,
	}, nil
}

// runContext is the per-run working state. Built single-threaded, then read
// concurrently by the scoring workers; nothing mutates it after the
// prewarm step completes.
type runContext struct {
	cfg           *Config
	now           time.Time
	currentHour   int
	hasEmbeddings bool
	weights       SignalWeights

	userGames []UserGameSnapshot

	profile    *TasteProfile
	profileVec map[string]float64
	negative   *negativeProfile

	ownedIDs    map[string]struct{}
	ownedTitles map[string]struct{}
	dismissed   map[string]struct{}

	// engagement and patterns are per-game caches, fully populated before
	// the parallel scoring phase so workers only ever read them.
	engagement map[string]float64
	patterns   map[string]EngagementPattern

	graph     *similarityGraph
	timeTable *dayPartTable
	seq       *transitionTable

	franchises         map[string]*FranchiseCluster
	candidateFranchise map[string]*FranchiseCluster
	loyalDevs          map[string]struct{}

	maxPlayerCount int
	meanEmbedding  []float32

	genreWeights   map[string]float64
	maxGenreWeight float64
}

// Run executes the full pipeline for one request and always returns a
// terminal Result. An internal panic is recovered into an empty Result with
// the error recorded, never a crash of the caller.
func (e *Engine) Run(ctx context.Context, req *Request, progress ProgressFunc) (res Result) {
	start := time.Now()
	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().
				Str("run_id", runID).
				Interface("panic", r).
				Msg("recommendation run panicked")
			res = Result{
				Type:          "result",
				RunID:         runID,
				TasteProfile:  TasteProfile{},
				Shelves:       nil,
				ComputeTimeMs: time.Since(start).Milliseconds(),
				Err:           fmt.Sprintf("internal error: %v", r),
			}
		}
	}()

	emit := func(stage string, percent int) {
		if progress != nil {
			progress(Progress{Type: "progress", RunID: runID, Stage: stage, Percent: percent})
		}
	}

	rc := e.buildRunContext(req)
	emit(StageProfile, 15)

	rc.negative = rc.mineNegativeSignals(req.UserGames)
	emit(StageNegative, 25)

	candidates := rc.filterCandidates(req.Candidates)
	scored := e.scoreCandidates(rc, candidates)
	emit(StageScoring, 60)

	sortScored(scored)
	ranked := e.reranker.Rerank(ctx, scored, e.cfg.MaxRanked)
	emit(StageReranking, 75)

	rc.profile.Clusters = rc.detectTasteClusters(req.UserGames)
	emit(StageClustering, 85)

	shelves := rc.assembleShelves(ranked)
	emit(StageShelves, 95)

	e.logger.Debug().
		Str("run_id", runID).
		Int("user_games", len(req.UserGames)).
		Int("candidates", len(candidates)).
		Int("ranked", len(ranked)).
		Int("shelves", len(shelves)).
		Dur("elapsed", time.Since(start)).
		Msg("recommendation run complete")

	emit(StageDone, 100)
	return Result{
		Type:          "result",
		RunID:         runID,
		TasteProfile:  *rc.profile,
		Shelves:       shelves,
		ComputeTimeMs: time.Since(start).Milliseconds(),
	}
}

// buildRunContext precomputes every shared structure the scoring workers
// read: caches, profile, graph, tables, franchise clusters.
func (e *Engine) buildRunContext(req *Request) *runContext {
	now := time.UnixMilli(req.Now)
	if req.Now == 0 {
		now = time.Now()
	}

	rc := &runContext{
		cfg:           e.cfg,
		now:           now,
		currentHour:   req.CurrentHour,
		hasEmbeddings: req.HasEmbeddings,
		weights:       e.cfg.Weights.Active(req.HasEmbeddings),
		userGames:     req.UserGames,
		ownedIDs:      make(map[string]struct{}, len(req.UserGames)),
		ownedTitles:   make(map[string]struct{}, len(req.UserGames)),
		dismissed:     make(map[string]struct{}, len(req.DismissedGameIDs)),
		engagement:    make(map[string]float64, len(req.UserGames)),
		patterns:      make(map[string]EngagementPattern, len(req.UserGames)),
	}

	for i := range req.UserGames {
		g := &req.UserGames[i]
		rc.ownedIDs[g.ID] = struct{}{}
		rc.ownedTitles[titleKey(g.Title)] = struct{}{}
		// Prewarm the caches so the parallel phase is read-only.
		rc.engagementScore(g)
		rc.pattern(g)
	}
	for _, id := range req.DismissedGameIDs {
		rc.dismissed[id] = struct{}{}
	}

	rc.profile = rc.buildTasteProfile(req.UserGames)
	rc.profileVec = buildProfileVector(rc.profile)

	rc.genreWeights = make(map[string]float64, len(rc.profile.Genres))
	for _, fw := range rc.profile.Genres {
		w := fw.Weight
		rc.genreWeights[titleKey(fw.Name)] = w
		if w > rc.maxGenreWeight {
			rc.maxGenreWeight = w
		}
	}

	rc.loyalDevs = make(map[string]struct{}, len(rc.profile.LoyalDevelopers))
	for _, dev := range rc.profile.LoyalDevelopers {
		rc.loyalDevs[titleKey(dev)] = struct{}{}
	}

	rc.graph = buildSimilarityGraph(req.UserGames, req.Candidates, e.cfg.GraphMinSharedTags, e.cfg.GraphMaxNeighbors)
	rc.timeTable = buildDayPartTable(req.UserGames)
	rc.seq = buildTransitionTable(req.UserGames)

	rc.franchises = rc.detectFranchises(req.UserGames, req.Candidates)
	rc.candidateFranchise = make(map[string]*FranchiseCluster)
	for _, cluster := range rc.franchises {
		for _, entry := range cluster.Entries {
			if !entry.Owned {
				rc.candidateFranchise[entry.GameID] = cluster
			}
		}
	}

	for i := range req.Candidates {
		if pc := req.Candidates[i].PlayerCount; pc > rc.maxPlayerCount {
			rc.maxPlayerCount = pc
		}
	}

	if req.HasEmbeddings {
		rc.meanEmbedding = rc.weightedMeanEmbedding(req.UserGames)
	}

	return rc
}

// filterCandidates removes owned, duplicate-title, and dismissed entries.
func (rc *runContext) filterCandidates(candidates []CandidateGame) []CandidateGame {
	out := make([]CandidateGame, 0, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		if _, owned := rc.ownedIDs[c.ID]; owned {
			continue
		}
		if _, owned := rc.ownedTitles[titleKey(c.Title)]; owned {
			continue
		}
		if _, dismissed := rc.dismissed[c.ID]; dismissed {
			continue
		}
		out = append(out, *c)
	}
	return out
}

// scoreCandidates fans candidate scoring out over a bounded worker pool.
// Each worker writes only its own slots of the pre-sized result slice. The
// pipeline runs to completion once started; there is no cancellation
// checkpoint, so a truncated score list can never leak into a result.
func (e *Engine) scoreCandidates(rc *runContext, candidates []CandidateGame) []ScoredGame {
	if len(candidates) == 0 {
		return nil
	}

	workers := e.cfg.MaxParallelism
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
		if workers > maxScoringWorkers {
			workers = maxScoringWorkers
		}
	}
	if workers > len(candidates) {
		workers = len(candidates)
	}

	scored := make([]ScoredGame, len(candidates))
	var wg sync.WaitGroup
	jobs := make(chan int)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				scored[i] = rc.scoreCandidate(&candidates[i])
			}
		}()
	}

	for i := range candidates {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return scored
}

// sortScored orders by score descending, title ascending for stable ties.
func sortScored(scored []ScoredGame) {
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Game.Title < scored[j].Game.Title
	})
}

// weightedMeanEmbedding averages the library's embeddings weighted by
// engagement, so heavily played games anchor the semantic center.
func (rc *runContext) weightedMeanEmbedding(games []UserGameSnapshot) []float32 {
	var dim int
	for i := range games {
		if len(games[i].Embedding) > 0 {
			dim = len(games[i].Embedding)
			break
		}
	}
	if dim == 0 {
		return nil
	}

	sum := make([]float64, dim)
	var totalWeight float64
	for i := range games {
		g := &games[i]
		if len(g.Embedding) != dim {
			continue
		}
		w := rc.engagementScore(g)
		if w <= 0 {
			continue
		}
		for d, v := range g.Embedding {
			sum[d] += float64(v) * w
		}
		totalWeight += w
	}
	if totalWeight == 0 {
		return nil
	}

	mean := make([]float32, dim)
	for d := range sum {
		mean[d] = float32(sum[d] / totalWeight)
	}
	return mean
}
