// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package recommend

import "fmt"

// SignalWeights defines the contribution of each scoring layer to the
// composite score. The twelve positive weights sum to 1.0; Negative is a
// subtractive penalty outside the conserved sum.
type SignalWeights struct {
	Content         float64 `json:"content"`
	Semantic        float64 `json:"semantic"`
	Graph           float64 `json:"graph"`
	Quality         float64 `json:"quality"`
	Popularity      float64 `json:"popularity"`
	Recency         float64 `json:"recency"`
	Diversity       float64 `json:"diversity"`
	TimeOfDay       float64 `json:"timeOfDay"`
	EngagementCurve float64 `json:"engagementCurve"`
	Franchise       float64 `json:"franchise"`
	Studio          float64 `json:"studio"`
	Sequencing      float64 `json:"sequencing"`
	Negative        float64 `json:"negative"`
}

// Active returns the weight table effective for a run. When embeddings are
// unavailable the semantic weight is redistributed to content (+0.07) and
// graph (+0.05) so the positive weights still sum to the same constant and
// the missing signal degrades gracefully instead of deflating every score.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w SignalWeights) Active(hasEmbeddings bool) SignalWeights {
	if hasEmbeddings {
		return w
	}
	out := w
	out.Content += w.Semantic - 0.05
	out.Graph += 0.05
	out.Semantic = 0
	return out
}

// PositiveSum returns the sum of all non-penalty weights.
//
//nolint:gocritic // value receiver is intentional for immutable semantics
func (w SignalWeights) PositiveSum() float64 {
	return w.Content + w.Semantic + w.Graph + w.Quality + w.Popularity +
		w.Recency + w.Diversity + w.TimeOfDay + w.EngagementCurve +
		w.Franchise + w.Studio + w.Sequencing
}

// Config contains all tunables for the recommendation engine.
type Config struct {
	// Weights defines the composite-score contribution of each layer.
	Weights SignalWeights `json:"weights"`

	// EngagementHoursCap caps playtime in engagement scoring.
	// Default: 500.
	EngagementHoursCap float64 `json:"engagement_hours_cap"`

	// DecayHalfLifeDays is the temporal-decay half-life for engagement.
	// Default: 180.
	DecayHalfLifeDays float64 `json:"decay_half_life_days"`

	// NegativeStrengthCap bounds the negative profile's influence.
	// Default: 0.5.
	NegativeStrengthCap float64 `json:"negative_strength_cap"`

	// GraphMinSharedTags is the co-occurrence edge threshold.
	// Default: 3.
	GraphMinSharedTags int `json:"graph_min_shared_tags"`

	// GraphMaxNeighbors caps neighbors per graph node to bound cost.
	// Default: 150.
	GraphMaxNeighbors int `json:"graph_max_neighbors"`

	// MMRLambda balances relevance vs. diversity in reranking.
	// 1.0 = pure relevance, 0.0 = pure diversity. Default: 0.7.
	MMRLambda float64 `json:"mmr_lambda"`

	// MaxRanked is the reranked output cap. Default: 80.
	MaxRanked int `json:"max_ranked"`

	// ClusterCount is the k-means target cluster count. Default: 3.
	ClusterCount int `json:"cluster_count"`

	// ClusterIterations is the fixed k-means iteration count. Default: 10.
	ClusterIterations int `json:"cluster_iterations"`

	// MaxParallelism caps the candidate-scoring worker fan-out.
	// Zero means min(GOMAXPROCS, 8).
	MaxParallelism int `json:"max_parallelism"`

	// Seed drives k-means centroid initialization for deterministic runs.
	// If zero, a fixed default seed is used.
	Seed int64 `json:"seed"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: SignalWeights{
			Content:         0.20,
			Semantic:        0.12,
			Graph:           0.14,
			Quality:         0.13,
			Popularity:      0.07,
			Recency:         0.06,
			Diversity:       0.04,
			TimeOfDay:       0.04,
			EngagementCurve: 0.05,
			Franchise:       0.06,
			Studio:          0.04,
			Sequencing:      0.05,
			Negative:        0.30,
		},
		EngagementHoursCap:  500,
		DecayHalfLifeDays:   180,
		NegativeStrengthCap: 0.5,
		GraphMinSharedTags:  3,
		GraphMaxNeighbors:   150,
		MMRLambda:           0.7,
		MaxRanked:           80,
		ClusterCount:        3,
		ClusterIterations:   10,
		Seed:                42, // Default seed for determinism
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Weights.PositiveSum() <= 0 {
		return fmt.Errorf("weights must have a positive sum, got %f", c.Weights.PositiveSum())
	}
	if c.Weights.Negative < 0 {
		return fmt.Errorf("weights.negative must be non-negative, got %f", c.Weights.Negative)
	}
	if c.EngagementHoursCap <= 0 {
		return fmt.Errorf("engagement_hours_cap must be positive, got %f", c.EngagementHoursCap)
	}
	if c.DecayHalfLifeDays <= 0 {
		return fmt.Errorf("decay_half_life_days must be positive, got %f", c.DecayHalfLifeDays)
	}
	if c.NegativeStrengthCap < 0 || c.NegativeStrengthCap > 1 {
		return fmt.Errorf("negative_strength_cap must be in [0, 1], got %f", c.NegativeStrengthCap)
	}
	if c.GraphMinSharedTags < 1 {
		return fmt.Errorf("graph_min_shared_tags must be positive, got %d", c.GraphMinSharedTags)
	}
	if c.GraphMaxNeighbors < 1 {
		return fmt.Errorf("graph_max_neighbors must be positive, got %d", c.GraphMaxNeighbors)
	}
	if c.MMRLambda < 0 || c.MMRLambda > 1 {
		return fmt.Errorf("mmr_lambda must be in [0, 1], got %f", c.MMRLambda)
	}
	if c.MaxRanked < 1 {
		return fmt.Errorf("max_ranked must be positive, got %d", c.MaxRanked)
	}
	if c.ClusterCount < 1 {
		return fmt.Errorf("cluster_count must be positive, got %d", c.ClusterCount)
	}
	if c.ClusterIterations < 1 {
		return fmt.Errorf("cluster_iterations must be positive, got %d", c.ClusterIterations)
	}
	if c.MaxParallelism < 0 {
		return fmt.Errorf("max_parallelism must be non-negative, got %d", c.MaxParallelism)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// Direct field copy - all fields are value types
	out := *c
	return &out
}
