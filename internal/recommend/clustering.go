// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package recommend

import (
	"math/rand"
	"sort"
	"strings"
)

// clusterTopFeatures caps how many defining genres label a cluster.
const clusterTopFeatures = 5

// clusterMinMembers drops degenerate clusters; a single game is not a taste.
const clusterMinMembers = 2

// clusterPoint is one library game projected into the facet space.
type clusterPoint struct {
	snap       *UserGameSnapshot
	vec        map[string]float64
	engagement float64
}

// detectTasteClusters partitions the user's library into taste clusters
// with seeded k-means over one-hot genre/theme/mode vectors. Libraries
// smaller than twice the cluster count are treated as one taste and
// skipped. Deterministic for a fixed seed and input ordering.
func (rc *runContext) detectTasteClusters(userGames []UserGameSnapshot) []TasteCluster {
	points := make([]clusterPoint, 0, len(userGames))
	for i := range userGames {
		g := &userGames[i]
		vec := make(map[string]float64, len(g.Genres)+len(g.Themes)+len(g.Modes))
		addFacet(vec, "genre:", g.Genres)
		addFacet(vec, "theme:", g.Themes)
		addFacet(vec, "mode:", g.Modes)
		if len(vec) == 0 {
			continue
		}
		points = append(points, clusterPoint{
			snap:       g,
			vec:        vec,
			engagement: rc.engagementScore(g),
		})
	}

	k := rc.cfg.ClusterCount
	if len(points) < 2*k {
		return nil
	}

	rng := rand.New(rand.NewSource(rc.cfg.Seed)) //nolint:gosec // deterministic clustering, not crypto
	centroids := initialCentroids(points, k, rng)
	assignments := make([]int, len(points))

	for iter := 0; iter < rc.cfg.ClusterIterations; iter++ {
		changed := false
		for i := range points {
			best := nearestCentroid(points[i].vec, centroids)
			if best != assignments[i] {
				assignments[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}
		centroids = recomputeCentroids(points, assignments, k, centroids)
	}

	return rc.summarizeClusters(points, assignments, k)
}

// initialCentroids picks k distinct points as starting centroids.
func initialCentroids(points []clusterPoint, k int, rng *rand.Rand) []map[string]float64 {
	perm := rng.Perm(len(points))
	centroids := make([]map[string]float64, k)
	for i := 0; i < k; i++ {
		centroids[i] = copyVec(points[perm[i]].vec)
	}
	return centroids
}

// nearestCentroid returns the index of the centroid closest to the point
// by Euclidean distance, ties broken by lowest index for determinism.
func nearestCentroid(vec map[string]float64, centroids []map[string]float64) int {
	best := 0
	bestDist := -1.0
	for i, c := range centroids {
		dist := euclideanSqSparse(vec, c)
		if bestDist < 0 || dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	return best
}

// euclideanSqSparse computes the squared Euclidean distance between two
// sparse vectors. Accumulation runs over sorted keys so identical inputs
// always produce bit-identical results.
func euclideanSqSparse(a, b map[string]float64) float64 {
	var sum float64
	for _, k := range sortedKeys(a) {
		d := a[k] - b[k]
		sum += d * d
	}
	for _, k := range sortedKeys(b) {
		if _, ok := a[k]; ok {
			continue
		}
		sum += b[k] * b[k]
	}
	return sum
}

// recomputeCentroids averages member vectors per cluster. Empty clusters
// keep their previous centroid so k stays fixed.
func recomputeCentroids(points []clusterPoint, assignments []int, k int, prev []map[string]float64) []map[string]float64 {
	sums := make([]map[string]float64, k)
	counts := make([]int, k)
	for i := range sums {
		sums[i] = make(map[string]float64)
	}
	for i := range points {
		c := assignments[i]
		counts[c]++
		for feat, v := range points[i].vec {
			sums[c][feat] += v
		}
	}

	out := make([]map[string]float64, k)
	for i := range sums {
		if counts[i] == 0 {
			out[i] = prev[i]
			continue
		}
		for feat := range sums[i] {
			sums[i][feat] /= float64(counts[i])
		}
		out[i] = sums[i]
	}
	return out
}

// summarizeClusters turns raw assignments into labeled TasteClusters,
// dropping under-populated clusters and ordering largest first (ties
// broken by total member engagement descending). Each surviving cluster
// is labeled with the top genre of a taste profile rebuilt from just its
// member games.
func (rc *runContext) summarizeClusters(points []clusterPoint, assignments []int, k int) []TasteCluster {
	type agg struct {
		members    []UserGameSnapshot
		engagement float64
	}
	aggs := make([]agg, k)

	for i := range points {
		a := &aggs[assignments[i]]
		a.members = append(a.members, *points[i].snap)
		a.engagement += points[i].engagement
	}

	var clusters []TasteCluster
	engagements := make(map[int]float64, k)
	for i := range aggs {
		if len(aggs[i].members) < clusterMinMembers {
			continue
		}
		sub := rc.buildTasteProfile(aggs[i].members)
		gameIDs := make([]string, len(aggs[i].members))
		for j := range aggs[i].members {
			gameIDs[j] = aggs[i].members[j].ID
		}
		engagements[len(clusters)] = aggs[i].engagement
		clusters = append(clusters, TasteCluster{
			Label:     clusterLabel(sub),
			GameIDs:   gameIDs,
			GameCount: len(gameIDs),
			TopGenres: topClusterGenres(sub, clusterTopFeatures),
		})
	}

	order := make([]int, len(clusters))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		ci, cj := clusters[order[i]], clusters[order[j]]
		if ci.GameCount != cj.GameCount {
			return ci.GameCount > cj.GameCount
		}
		return engagements[order[i]] > engagements[order[j]]
	})
	out := make([]TasteCluster, len(clusters))
	for i, idx := range order {
		out[i] = clusters[idx]
	}
	return out
}

// clusterLabel is the capitalized top genre of the cluster's own taste
// profile, or "Mixed" when the members carry no genres at all.
func clusterLabel(sub *TasteProfile) string {
	if sub.TopGenre == "" {
		return "Mixed"
	}
	return titleCase(sub.TopGenre)
}

// topClusterGenres lists the cluster profile's strongest genre names.
func topClusterGenres(sub *TasteProfile, n int) []string {
	genres := sub.Genres
	if len(genres) > n {
		genres = genres[:n]
	}
	out := make([]string, len(genres))
	for i, fw := range genres {
		out[i] = fw.Name
	}
	return out
}

// titleCase capitalizes each word of a facet name.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// copyVec shallow-copies a sparse vector.
func copyVec(v map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}
