// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package recommend

import (
	"sort"
	"strings"
)

// minSequencingSessions is the history floor below which the sequencing
// signal stays silent.
const minSequencingSessions = 4

// sequencingRecentGames is how many recently played games seed the
// transition lookup.
const sequencingRecentGames = 3

// transitionTable records genre-to-genre transition counts between
// consecutive sessions on different games. Built once per run from the
// chronological session log; read-only afterwards.
type transitionTable struct {
	// counts maps fromGenre -> toGenre -> transitions observed.
	counts map[string]map[string]float64

	// fromTotals maps fromGenre -> total outgoing transitions.
	fromTotals map[string]float64

	// sessionCount is the total number of sessions observed.
	sessionCount int

	// recentGenres holds the genre sets of the most recently played
	// games, newest first.
	recentGenres [][]string
}

// sessionEvent pairs a session with its game for chronological sorting.
type sessionEvent struct {
	startedAt int64
	gameID    string
	genres    []string
}

// buildTransitionTable flattens every game's session log into one
// chronological stream and counts genre transitions whenever the user
// switched games between consecutive sessions.
func buildTransitionTable(userGames []UserGameSnapshot) *transitionTable {
	t := &transitionTable{
		counts:     make(map[string]map[string]float64),
		fromTotals: make(map[string]float64),
	}

	var events []sessionEvent
	for i := range userGames {
		g := &userGames[i]
		for _, s := range g.Sessions {
			events = append(events, sessionEvent{
				startedAt: s.StartedAt,
				gameID:    g.ID,
				genres:    g.Genres,
			})
		}
	}
	t.sessionCount = len(events)

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].startedAt < events[j].startedAt
	})

	for i := 1; i < len(events); i++ {
		prev, cur := events[i-1], events[i]
		if prev.gameID == cur.gameID {
			continue
		}
		for _, from := range prev.genres {
			fromKey := strings.ToLower(from)
			for _, to := range cur.genres {
				toKey := strings.ToLower(to)
				if t.counts[fromKey] == nil {
					t.counts[fromKey] = make(map[string]float64)
				}
				t.counts[fromKey][toKey]++
				t.fromTotals[fromKey]++
			}
		}
	}

	t.recentGenres = recentGameGenres(events, sequencingRecentGames)
	return t
}

// recentGameGenres walks the event stream backwards collecting the genre
// sets of the n most recently played distinct games.
func recentGameGenres(events []sessionEvent, n int) [][]string {
	var out [][]string
	seen := make(map[string]struct{}, n)
	for i := len(events) - 1; i >= 0 && len(out) < n; i-- {
		if _, dup := seen[events[i].gameID]; dup {
			continue
		}
		seen[events[i].gameID] = struct{}{}
		out = append(out, events[i].genres)
	}
	return out
}

// probability returns the observed transition probability between two
// genres, zero when the source genre was never transitioned from.
func (t *transitionTable) probability(from, to string) float64 {
	fromKey := strings.ToLower(from)
	total := t.fromTotals[fromKey]
	if total == 0 {
		return 0
	}
	return t.counts[fromKey][strings.ToLower(to)] / total
}

// sequencingBoost estimates how naturally the candidate follows what the
// user has been playing lately: the average transition probability from
// each recent game's genres into the candidate's genres, scaled x2.
func (t *transitionTable) sequencingBoost(c *CandidateGame) float64 {
	if t.sessionCount < minSequencingSessions || len(t.recentGenres) == 0 || len(c.Genres) == 0 {
		return 0
	}

	var sum float64
	var n int
	for _, genres := range t.recentGenres {
		if len(genres) == 0 {
			continue
		}
		var gameSum float64
		var pairs int
		for _, from := range genres {
			for _, to := range c.Genres {
				gameSum += t.probability(from, to)
				pairs++
			}
		}
		if pairs > 0 {
			sum += gameSum / float64(pairs)
			n++
		}
	}
	if n == 0 {
		return 0
	}

	return clamp01(sum / float64(n) * 2)
}
