// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package recommend

import (
	"math"
	"time"
)

// Engagement score component weights. The base score combines playtime,
// rating, backlog status and session depth before decay and the curve
// multiplier are applied.
const (
	engagementHoursWeight   = 0.30
	engagementRatingWeight  = 0.25
	engagementStatusWeight  = 0.25
	engagementSessionWeight = 0.20

	// sessionDepthCapMinutes normalizes average session length.
	sessionDepthCapMinutes = 120.0

	// sessionDepthFallback scales normalized hours when no session log exists.
	sessionDepthFallback = 0.5
)

// engagementScore computes how invested the user is in one game.
// Results are cached per game id for the duration of the run; the score is
// consumed by the profile builder, the embedding mean, and several signals.
func (rc *runContext) engagementScore(g *UserGameSnapshot) float64 {
	if s, ok := rc.engagement[g.ID]; ok {
		return s
	}

	hours := math.Min(g.HoursPlayed, rc.cfg.EngagementHoursCap) / rc.cfg.EngagementHoursCap
	rating := g.Rating / 5.0

	depth := sessionDepthFallback * hours
	if len(g.Sessions) > 0 {
		var total float64
		for _, s := range g.Sessions {
			total += s.DurationMinutes
		}
		avg := total / float64(len(g.Sessions))
		depth = math.Min(avg/sessionDepthCapMinutes, 1.0)
	}

	base := engagementHoursWeight*hours +
		engagementRatingWeight*rating +
		engagementStatusWeight*g.Status.Weight() +
		engagementSessionWeight*depth

	score := base * rc.temporalDecay(g) * rc.pattern(g).Multiplier()

	rc.engagement[g.ID] = score
	return score
}

// temporalDecay applies an exponential half-life from last activity.
// Games with no recorded activity at all decay from their added date;
// games with neither timestamp are treated as current.
func (rc *runContext) temporalDecay(g *UserGameSnapshot) float64 {
	last := g.LastPlayedAt
	if last == 0 {
		last = g.AddedAt
	}
	if last == 0 {
		return 1.0
	}

	days := rc.now.Sub(time.UnixMilli(last)).Hours() / 24
	if days <= 0 {
		return 1.0
	}
	return math.Exp2(-days / rc.cfg.DecayHalfLifeDays)
}

// pattern returns the engagement-curve classification for a game, using the
// snapshot's precomputed value when present and caching the classification
// otherwise.
func (rc *runContext) pattern(g *UserGameSnapshot) EngagementPattern {
	if g.Pattern != PatternUnknown {
		return g.Pattern
	}
	if p, ok := rc.patterns[g.ID]; ok {
		return p
	}
	p := classifyEngagementCurve(g.Sessions)
	rc.patterns[g.ID] = p
	return p
}

// classifyEngagementCurve runs the deterministic rule cascade over the
// session log. The rules are ordered: an early match wins.
func classifyEngagementCurve(sessions []Session) EngagementPattern {
	if len(sessions) < 3 {
		return PatternUnknown
	}

	spanDays := float64(sessions[len(sessions)-1].StartedAt-sessions[0].StartedAt) /
		float64(24*time.Hour/time.Millisecond)

	if spanDays <= 3 {
		return PatternBingeDrop
	}

	if spanDays >= 14 {
		half := len(sessions) / 2
		firstAvg := avgDuration(sessions[:half])
		secondAvg := avgDuration(sessions[half:])
		if firstAvg > 0 && secondAvg > firstAvg*1.2 {
			return PatternSlowBurn
		}
	}

	if len(sessions) > 3 {
		earlyAvg := avgDuration(sessions[:3])
		restAvg := avgDuration(sessions[3:])
		if restAvg > 0 && earlyAvg > restAvg*1.5 {
			return PatternHoneymoon
		}
	}

	if spanDays >= 14 {
		return PatternLongTail
	}

	return PatternUnknown
}

// avgDuration returns the mean session duration in minutes.
func avgDuration(sessions []Session) float64 {
	if len(sessions) == 0 {
		return 0
	}
	var total float64
	for _, s := range sessions {
		total += s.DurationMinutes
	}
	return total / float64(len(sessions))
}
