// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package recommend

import (
	"strings"
	"time"
)

// staleWishlistDays is how long an untouched wishlist entry can sit before
// it counts as a rejection signal.
const staleWishlistDays = 180

// negativeProfile is a normalized feature vector over tags the user tends
// to reject, plus a strength factor bounding its influence.
type negativeProfile struct {
	// features maps lowercased tag -> frequency normalized by the max.
	features map[string]float64

	// strength scales the penalty; capped so a skewed library cannot
	// dominate the composite score.
	strength float64
}

// mineNegativeSignals derives the rejection profile from the library.
// A game is a negative example when it was removed, shelved almost
// immediately, or wishlisted long ago and never launched.
func (rc *runContext) mineNegativeSignals(games []UserGameSnapshot) *negativeProfile {
	neg := &negativeProfile{features: make(map[string]float64)}
	if len(games) == 0 {
		return neg
	}

	count := 0
	freq := make(map[string]float64)

	for i := range games {
		g := &games[i]
		if !rc.isNegativeExample(g) {
			continue
		}
		count++
		for _, tag := range g.Genres {
			freq[strings.ToLower(tag)]++
		}
		for _, tag := range g.Themes {
			freq[strings.ToLower(tag)]++
		}
		if g.Developer != "" {
			freq[strings.ToLower(g.Developer)]++
		}
	}

	if count == 0 {
		return neg
	}

	maxFreq := 0.0
	for _, f := range freq {
		if f > maxFreq {
			maxFreq = f
		}
	}
	for tag, f := range freq {
		neg.features[tag] = f / maxFreq
	}

	strength := float64(count) / float64(len(games))
	if strength > rc.cfg.NegativeStrengthCap {
		strength = rc.cfg.NegativeStrengthCap
	}
	neg.strength = strength

	return neg
}

// isNegativeExample applies the rejection heuristics to one game.
func (rc *runContext) isNegativeExample(g *UserGameSnapshot) bool {
	if g.RemovedAt > 0 {
		return true
	}
	if g.Status == StatusOnHold && g.HoursPlayed < 2 {
		return true
	}
	if g.Status == StatusWantToPlay && len(g.Sessions) == 0 && g.AddedAt > 0 {
		age := rc.now.Sub(time.UnixMilli(g.AddedAt))
		if age > staleWishlistDays*24*time.Hour {
			return true
		}
	}
	return false
}
