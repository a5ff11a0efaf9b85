// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package recommend

import (
	"testing"
	"time"
)

func TestBuildSimilarityGraph(t *testing.T) {
	userGames := []UserGameSnapshot{
		{ID: "u1", Title: "Alpha", Genres: []string{"Roguelike", "Action"}, Themes: []string{"Fantasy"}, Modes: []string{"Single-player"}},
	}
	candidates := []CandidateGame{
		// Shares 3 tags with Alpha: edge forms.
		{ID: "c1", Title: "Beta", Genres: []string{"Roguelike", "Action"}, Themes: []string{"Fantasy"}, Modes: []string{"Co-op"}},
		// Shares only 1 tag: below the threshold.
		{ID: "c2", Title: "Gamma", Genres: []string{"Roguelike"}, Themes: []string{"Sci-Fi"}, Modes: []string{"Multiplayer"}},
	}

	g := buildSimilarityGraph(userGames, candidates, 3, 150)

	if w := g.edgeWeight("alpha", "beta"); w <= 0 {
		t.Errorf("alpha-beta edge weight = %f, want > 0 (3 shared tags)", w)
	}
	if w := g.edgeWeight("alpha", "gamma"); w != 0 {
		t.Errorf("alpha-gamma edge weight = %f, want 0 (1 shared tag)", w)
	}

	// Jaccard: 3 shared, union 5 (alpha 4 tags, beta 4 tags).
	want := 3.0 / 5.0
	if w := g.edgeWeight("alpha", "beta"); w < want-1e-9 || w > want+1e-9 {
		t.Errorf("alpha-beta weight = %f, want %f", w, want)
	}
}

func TestGraphSignalRelationPriority(t *testing.T) {
	rc := testRunContext(t)
	recent := rc.now.Add(-24 * time.Hour).UnixMilli()

	rc.userGames = []UserGameSnapshot{
		{ID: "u1", Title: "Source Game", Genres: []string{"Action"}, Rating: 5, HoursPlayed: 100, Status: StatusCompleted, LastPlayedAt: recent, SimilarTitles: []string{"Direct Hit"}},
	}

	candidates := []CandidateGame{
		{ID: "c1", Title: "Direct Hit", Genres: []string{"Puzzle"}},
		{ID: "c2", Title: "Reverse Hit", Genres: []string{"Puzzle"}, SimilarTitles: []string{"Source Game"}},
		{ID: "c3", Title: "Two Hop", Genres: []string{"Puzzle"}, SimilarTitles: []string{"Direct Hit"}},
		{ID: "c4", Title: "Stranger", Genres: []string{"Puzzle"}},
	}

	rc.graph = buildSimilarityGraph(rc.userGames, candidates, 3, 150)

	direct, matchedDirect := rc.graphSignal(&candidates[0])
	reverse, _ := rc.graphSignal(&candidates[1])
	twoHop, _ := rc.graphSignal(&candidates[2])
	stranger, _ := rc.graphSignal(&candidates[3])

	if direct <= 0 {
		t.Fatalf("direct similar-title relation signal = %f, want > 0", direct)
	}
	if len(matchedDirect) != 1 || matchedDirect[0] != "Source Game" {
		t.Errorf("matched titles = %v, want [Source Game]", matchedDirect)
	}
	if !(direct > reverse && reverse > twoHop) {
		t.Errorf("relation strength ordering violated: direct %f, reverse %f, twoHop %f", direct, reverse, twoHop)
	}
	if stranger != 0 {
		t.Errorf("unrelated candidate signal = %f, want 0", stranger)
	}
}

func TestGraphSignalStopsAtMaxMatches(t *testing.T) {
	rc := testRunContext(t)
	recent := rc.now.Add(-24 * time.Hour).UnixMilli()

	for i := 0; i < 6; i++ {
		rc.userGames = append(rc.userGames, UserGameSnapshot{
			ID:            string(rune('a' + i)),
			Title:         "Owner " + string(rune('A'+i)),
			Rating:        5,
			HoursPlayed:   100,
			Status:        StatusCompleted,
			LastPlayedAt:  recent,
			SimilarTitles: []string{"Popular Pick"},
		})
	}
	c := CandidateGame{ID: "c1", Title: "Popular Pick"}
	rc.graph = buildSimilarityGraph(rc.userGames, []CandidateGame{c}, 3, 150)

	signal, matched := rc.graphSignal(&c)
	if len(matched) != graphMaxMatches {
		t.Errorf("matched %d user games, want capped at %d", len(matched), graphMaxMatches)
	}
	if signal < 0 || signal > 1 {
		t.Errorf("signal = %f, want within [0,1]", signal)
	}
}

func TestCapNeighbors(t *testing.T) {
	g := &similarityGraph{edges: map[string]map[string]float64{
		"hub": {"a": 0.9, "b": 0.8, "c": 0.7, "d": 0.6},
	}}

	g.capNeighbors(2)

	neighbors := g.edges["hub"]
	if len(neighbors) != 2 {
		t.Fatalf("capped to %d neighbors, want 2", len(neighbors))
	}
	if _, ok := neighbors["a"]; !ok {
		t.Error("strongest neighbor a dropped by cap")
	}
	if _, ok := neighbors["b"]; !ok {
		t.Error("second neighbor b dropped by cap")
	}
}
