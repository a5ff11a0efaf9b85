// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

// Package recommend implements the game recommendation engine.
//
// # Architecture
//
// One Run turns a library snapshot plus a candidate pool into a taste
// profile and themed shelves:
//
//   - Taste profiling: engagement-weighted facet distributions with
//     temporal decay and engagement-curve classification
//   - Negative mining: a rejection profile from removed, abandoned, and
//     stale-wishlisted games
//   - Candidate scoring: thirteen signal layers (content, semantic, graph,
//     quality, popularity, recency, diversity, time-of-day, engagement
//     curve, franchise, studio, sequencing, negative) combined by a
//     conserved weight table
//   - Diversity Reranking: MMR (Maximal Marginal Relevance) over genre
//     Jaccard similarity
//   - Taste clusters: seeded k-means over one-hot facet vectors
//   - Shelf assembly: priority-ordered themed shelves with natural-language
//     explanations
//
// # Design Principles
//
//   - Deterministic: Same inputs produce identical outputs (seeded RNG)
//   - Resilient: An internal panic is recovered into an empty terminal
//     Result instead of crashing the caller
//   - Auditable: Runs are logged with structured fields and stage progress
//     notifications
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), logger,
//	    reranking.NewMMR(0.7))
//	if err != nil {
//	    return err
//	}
//
//	result := engine.Run(ctx, &recommend.Request{
//	    UserGames:  library,
//	    Candidates: pool,
//	    Now:        time.Now().UnixMilli(),
//	}, nil)
//
// # Thread Safety
//
// The engine is safe for concurrent use. Each Run builds an isolated,
// read-only context before fanning candidate scoring out over a bounded
// worker pool.
package recommend
