// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package recommend

import (
	"strings"
	"time"
)

// dayPart buckets the day into four play contexts.
type dayPart int

const (
	dayPartNight dayPart = iota // 00:00-05:59
	dayPartMorning
	dayPartAfternoon
	dayPartEvening
)

// minDayPartSessions is the evidence floor: with fewer historical sessions
// in the current day-part the signal contributes nothing.
const minDayPartSessions = 3

// dayPartForHour maps an hour (0-23) to its day part.
func dayPartForHour(hour int) dayPart {
	switch {
	case hour < 6:
		return dayPartNight
	case hour < 12:
		return dayPartMorning
	case hour < 18:
		return dayPartAfternoon
	default:
		return dayPartEvening
	}
}

// dayPartTable is the genre-affinity table keyed by day part, populated
// from the user's historical session hours. Built once per run.
type dayPartTable struct {
	// affinity maps day part -> lowercased genre -> session count.
	affinity [4]map[string]float64

	// sessions counts historical sessions per day part.
	sessions [4]int
}

// buildDayPartTable aggregates which genres the user plays at which time
// of day. Session timestamps are interpreted in UTC; the caller's local
// hour arrives separately in the request.
func buildDayPartTable(userGames []UserGameSnapshot) *dayPartTable {
	t := &dayPartTable{}
	for i := range t.affinity {
		t.affinity[i] = make(map[string]float64)
	}

	for i := range userGames {
		g := &userGames[i]
		for _, s := range g.Sessions {
			part := dayPartForHour(time.UnixMilli(s.StartedAt).UTC().Hour())
			t.sessions[part]++
			for _, genre := range g.Genres {
				t.affinity[part][strings.ToLower(genre)]++
			}
		}
	}

	return t
}

// timeOfDayBoost scores how well a candidate's genres match what the user
// historically plays during the current day part. Requires at least
// minDayPartSessions of history in the part, otherwise 0.
func (t *dayPartTable) timeOfDayBoost(c *CandidateGame, currentHour int) float64 {
	part := dayPartForHour(currentHour)
	if t.sessions[part] < minDayPartSessions || len(c.Genres) == 0 {
		return 0
	}

	maxCount := 0.0
	for _, n := range t.affinity[part] {
		if n > maxCount {
			maxCount = n
		}
	}
	if maxCount == 0 {
		return 0
	}

	var sum float64
	for _, genre := range c.Genres {
		sum += t.affinity[part][strings.ToLower(genre)] / maxCount
	}
	return clamp01(sum / float64(len(c.Genres)))
}
