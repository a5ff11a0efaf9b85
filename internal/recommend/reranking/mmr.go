// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

// Package reranking implements post-processing algorithms for
// recommendation diversity.
package reranking

import (
	"context"
	"strings"

	"github.com/ludograph/ludographus/internal/recommend"
)

// maxRerankSize limits slice allocations to prevent excessive memory usage.
// This is a defense-in-depth measure; k is also bounded by len(items).
const maxRerankSize = 10000

// MMR implements Maximal Marginal Relevance reranking.
// It balances relevance and diversity by iteratively selecting games
// that are both relevant and dissimilar to already selected games.
//
// The MMR formula is:
//
//	MMR = argmax[lambda * score(i) - (1-lambda) * max(sim(i, s)) for s in selected]
//
// Where:
//   - lambda: balance parameter (1.0 = pure relevance, 0.0 = pure diversity)
//   - score(i): original relevance score for game i
//   - sim(i, s): genre Jaccard similarity between game i and selected game s
//
// Reference:
// Carbonell, J., & Goldstein, J. (1998). "The Use of MMR, Diversity-Based
// Reranking for Reordering Documents and Producing Summaries." SIGIR 1998.
type MMR struct {
	// lambda balances relevance vs. diversity (0.0 to 1.0)
	lambda float64
}

// NewMMR creates a new MMR reranker.
func NewMMR(lambda float64) *MMR {
	if lambda < 0 {
		lambda = 0
	}
	if lambda > 1 {
		lambda = 1
	}
	return &MMR{lambda: lambda}
}

// Name returns the reranker identifier.
func (m *MMR) Name() string {
	return "mmr"
}

// Rerank applies MMR reranking to diversify the recommendation list.
// The input must already be sorted by score descending; the output keeps
// the first pick identical (the top-scored game always wins round one).
// Selection always runs to completion; the context is accepted to satisfy
// the Reranker interface but a partial list is never returned.
//
//nolint:gocritic // rangeValCopy: ScoredGame passed by value in range, acceptable for clarity
func (m *MMR) Rerank(_ context.Context, items []recommend.ScoredGame, k int) []recommend.ScoredGame {
	if len(items) == 0 || k <= 0 {
		return items
	}

	// Bound k to prevent excessive memory allocation
	if k > maxRerankSize {
		k = maxRerankSize
	}
	if k > len(items) {
		k = len(items)
	}

	// Early return if lambda is 1.0 (pure relevance)
	if m.lambda >= 1.0 {
		if len(items) > k {
			return items[:k]
		}
		return items
	}

	genreSets := make([]map[string]struct{}, len(items))
	for i := range items {
		genreSets[i] = genreSet(items[i].Game.Genres)
	}

	// Greedy MMR selection
	selected := make([]recommend.ScoredGame, 0, k)
	selectedIndices := make(map[int]struct{})

	for len(selected) < k {
		bestIdx := -1
		bestMMR := -1.0

		for i, item := range items {
			if _, ok := selectedIndices[i]; ok {
				continue // Already selected
			}

			relevance := item.Score
			maxSim := 0.0
			for j := range selectedIndices {
				sim := jaccard(genreSets[i], genreSets[j])
				if sim > maxSim {
					maxSim = sim
				}
			}

			mmrScore := m.lambda*relevance - (1-m.lambda)*maxSim
			if mmrScore > bestMMR {
				bestMMR = mmrScore
				bestIdx = i
			}
		}

		if bestIdx < 0 {
			break
		}

		selected = append(selected, items[bestIdx])
		selectedIndices[bestIdx] = struct{}{}
	}

	return selected
}

// genreSet lowercases a genre list into a set.
func genreSet(genres []string) map[string]struct{} {
	set := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		set[strings.ToLower(g)] = struct{}{}
	}
	return set
}

// jaccard computes Jaccard similarity between two genre sets.
func jaccard(a, b map[string]struct{}) float64 {
	intersection := 0
	for g := range a {
		if _, ok := b[g]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Ensure MMR implements the interface.
var _ recommend.Reranker = (*MMR)(nil)
