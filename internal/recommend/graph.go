// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package recommend

import (
	"sort"
	"strings"
)

// Relation weights for the bounded breadth search. A direct "similar to"
// hint from a played game is the strongest evidence; a co-occurrence edge
// is the weakest.
const (
	graphDirectWeight  = 1.0
	graphReverseWeight = 0.8
	graphTwoHopWeight  = 0.4
	graphEdgeWeight    = 0.3

	// graphMaxMatches stops the search once this many distinct user games
	// have matched; the summed signal is divided by the same constant.
	graphMaxMatches = 3
)

// graphNode is one game in the similarity graph.
type graphNode struct {
	key     string
	tags    map[string]struct{}
	similar map[string]struct{}
}

// similarityGraph links games that share enough tags, with edge weight
// equal to the Jaccard similarity of their tag sets. Built once per run and
// read-only afterwards.
type similarityGraph struct {
	// edges maps title key -> neighbor title key -> Jaccard weight.
	edges map[string]map[string]float64

	// similar maps title key -> lowercased similar-title hint set.
	similar map[string]map[string]struct{}
}

// buildSimilarityGraph constructs the co-occurrence graph over the union of
// the user's library and the candidate pool. Edges require at least
// minSharedTags common tags; each node keeps at most maxNeighbors edges
// (strongest first) to bound memory and search cost.
func buildSimilarityGraph(userGames []UserGameSnapshot, candidates []CandidateGame, minSharedTags, maxNeighbors int) *similarityGraph {
	nodes := make([]graphNode, 0, len(userGames)+len(candidates))
	for i := range userGames {
		g := &userGames[i]
		nodes = append(nodes, graphNode{
			key:     titleKey(g.Title),
			tags:    tagSet(g.Genres, g.Themes, g.Modes),
			similar: lowerSet(g.SimilarTitles),
		})
	}
	for i := range candidates {
		c := &candidates[i]
		nodes = append(nodes, graphNode{
			key:     titleKey(c.Title),
			tags:    tagSet(c.Genres, c.Themes, c.Modes),
			similar: lowerSet(c.SimilarTitles),
		})
	}

	g := &similarityGraph{
		edges:   make(map[string]map[string]float64, len(nodes)),
		similar: make(map[string]map[string]struct{}, len(nodes)),
	}
	for i := range nodes {
		if nodes[i].key != "" {
			g.similar[nodes[i].key] = nodes[i].similar
		}
	}

	for i := 0; i < len(nodes); i++ {
		if nodes[i].key == "" {
			continue
		}
		for j := i + 1; j < len(nodes); j++ {
			if nodes[j].key == "" || nodes[i].key == nodes[j].key {
				continue
			}
			shared := intersectionSize(nodes[i].tags, nodes[j].tags)
			if shared < minSharedTags {
				continue
			}
			union := len(nodes[i].tags) + len(nodes[j].tags) - shared
			if union == 0 {
				continue
			}
			w := float64(shared) / float64(union)
			g.addEdge(nodes[i].key, nodes[j].key, w)
			g.addEdge(nodes[j].key, nodes[i].key, w)
		}
	}

	g.capNeighbors(maxNeighbors)
	return g
}

// addEdge records a directed edge, keeping the strongest weight on
// duplicate title keys.
func (g *similarityGraph) addEdge(from, to string, w float64) {
	m, ok := g.edges[from]
	if !ok {
		m = make(map[string]float64)
		g.edges[from] = m
	}
	if w > m[to] {
		m[to] = w
	}
}

// capNeighbors trims each node's edge set to the strongest maxNeighbors.
func (g *similarityGraph) capNeighbors(maxNeighbors int) {
	for key, neighbors := range g.edges {
		if len(neighbors) <= maxNeighbors {
			continue
		}
		type edge struct {
			to string
			w  float64
		}
		all := make([]edge, 0, len(neighbors))
		for to, w := range neighbors {
			all = append(all, edge{to, w})
		}
		sort.Slice(all, func(i, j int) bool {
			if all[i].w != all[j].w {
				return all[i].w > all[j].w
			}
			return all[i].to < all[j].to
		})
		trimmed := make(map[string]float64, maxNeighbors)
		for _, e := range all[:maxNeighbors] {
			trimmed[e.to] = e.w
		}
		g.edges[key] = trimmed
	}
}

// edgeWeight returns the co-occurrence weight between two title keys.
func (g *similarityGraph) edgeWeight(a, b string) float64 {
	return g.edges[a][b]
}

// graphSignal scores a candidate against the user's library through the
// similar-title relations and the co-occurrence graph. Each matched user
// game contributes its engagement score scaled by the strongest relation
// found; the search stops after graphMaxMatches distinct matches. The
// summed signal is divided by graphMaxMatches and clamped to [0,1].
//
// Returns the signal and the titles of the matched user games.
func (rc *runContext) graphSignal(c *CandidateGame) (float64, []string) {
	candKey := titleKey(c.Title)
	candSimilar := lowerSet(c.SimilarTitles)

	var total float64
	var matched []string

	for i := range rc.userGames {
		if len(matched) >= graphMaxMatches {
			break
		}
		u := &rc.userGames[i]
		userKey := titleKey(u.Title)

		rel := 0.0
		switch {
		case setContains(rc.graph.similar[userKey], candKey):
			rel = graphDirectWeight
		case setContains(candSimilar, userKey):
			rel = graphReverseWeight
		case intersects(rc.graph.similar[userKey], candSimilar):
			rel = graphTwoHopWeight
		default:
			if w := rc.graph.edgeWeight(candKey, userKey); w > 0 {
				rel = w * graphEdgeWeight
			}
		}
		if rel == 0 {
			continue
		}

		total += rc.engagementScore(u) * rel
		matched = append(matched, u.Title)
	}

	return clamp01(total / graphMaxMatches), matched
}

// titleKey canonicalizes a title for graph lookups.
func titleKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// tagSet unions tag slices into one lowercased set.
func tagSet(tagLists ...[]string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, tags := range tagLists {
		for _, t := range tags {
			t = strings.ToLower(strings.TrimSpace(t))
			if t != "" {
				out[t] = struct{}{}
			}
		}
	}
	return out
}

// lowerSet converts a string slice into a lowercased set.
func lowerSet(items []string) map[string]struct{} {
	if len(items) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(items))
	for _, s := range items {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out[s] = struct{}{}
		}
	}
	return out
}

// intersectionSize counts keys present in both sets.
func intersectionSize(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

// intersects reports whether two sets share any key.
func intersects(a, b map[string]struct{}) bool {
	if len(b) < len(a) {
		a, b = b, a
	}
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}

// setContains reports membership in a possibly-nil set.
func setContains(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}
