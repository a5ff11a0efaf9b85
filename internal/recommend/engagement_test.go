// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package recommend

import (
	"math"
	"testing"
	"time"
)

func testRunContext(t *testing.T) *runContext {
	t.Helper()
	return &runContext{
		cfg:        DefaultConfig(),
		now:        time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC),
		engagement: make(map[string]float64),
		patterns:   make(map[string]EngagementPattern),
	}
}

// sessionsOver builds n sessions of the given duration spread evenly over
// spanDays ending at the reference time.
func sessionsOver(ref time.Time, n int, spanDays float64, durations ...float64) []Session {
	sessions := make([]Session, n)
	start := ref.Add(-time.Duration(spanDays * 24 * float64(time.Hour)))
	var step time.Duration
	if n > 1 {
		step = time.Duration(spanDays * 24 * float64(time.Hour) / float64(n-1))
	}
	for i := range sessions {
		d := 60.0
		if i < len(durations) {
			d = durations[i]
		}
		sessions[i] = Session{
			StartedAt:       start.Add(time.Duration(i) * step).UnixMilli(),
			DurationMinutes: d,
		}
	}
	return sessions
}

func TestClassifyEngagementCurve(t *testing.T) {
	ref := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		sessions []Session
		want     EngagementPattern
	}{
		{
			name:     "too few sessions",
			sessions: sessionsOver(ref, 2, 10),
			want:     PatternUnknown,
		},
		{
			name:     "burst within three days",
			sessions: sessionsOver(ref, 5, 2),
			want:     PatternBingeDrop,
		},
		{
			name:     "sessions lengthen over a month",
			sessions: sessionsOver(ref, 6, 30, 30, 30, 30, 90, 90, 90),
			want:     PatternSlowBurn,
		},
		{
			name:     "early sessions dominate",
			sessions: sessionsOver(ref, 6, 10, 120, 120, 120, 20, 20, 20),
			want:     PatternHoneymoon,
		},
		{
			name:     "steady play over a long span",
			sessions: sessionsOver(ref, 8, 60),
			want:     PatternLongTail,
		},
		{
			name:     "short span no clear shape",
			sessions: sessionsOver(ref, 4, 7),
			want:     PatternUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyEngagementCurve(tt.sessions); got != tt.want {
				t.Errorf("classifyEngagementCurve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEngagementScoreOrdering(t *testing.T) {
	rc := testRunContext(t)
	ref := rc.now

	heavy := UserGameSnapshot{
		ID:           "heavy",
		HoursPlayed:  300,
		Rating:       5,
		Status:       StatusCompleted,
		Sessions:     sessionsOver(ref, 10, 60, 90),
		LastPlayedAt: ref.Add(-24 * time.Hour).UnixMilli(),
	}
	light := UserGameSnapshot{
		ID:          "light",
		HoursPlayed: 1,
		Status:      StatusWantToPlay,
		AddedAt:     ref.Add(-48 * time.Hour).UnixMilli(),
	}

	hs := rc.engagementScore(&heavy)
	ls := rc.engagementScore(&light)

	if hs <= ls {
		t.Errorf("heavy engagement %f should exceed light engagement %f", hs, ls)
	}
	if hs < 0 || ls < 0 {
		t.Errorf("engagement scores must be non-negative, got %f and %f", hs, ls)
	}
}

func TestEngagementScoreCached(t *testing.T) {
	rc := testRunContext(t)
	g := UserGameSnapshot{ID: "g1", HoursPlayed: 50, Status: StatusPlaying}

	first := rc.engagementScore(&g)
	// Mutating after the first call must not change the cached result.
	g.HoursPlayed = 500
	second := rc.engagementScore(&g)

	if first != second {
		t.Errorf("expected cached score %f, got %f", first, second)
	}
}

func TestTemporalDecayHalfLife(t *testing.T) {
	rc := testRunContext(t)

	g := UserGameSnapshot{
		ID:           "decay",
		LastPlayedAt: rc.now.Add(-180 * 24 * time.Hour).UnixMilli(),
	}
	got := rc.temporalDecay(&g)
	if math.Abs(got-0.5) > 0.01 {
		t.Errorf("decay at one half-life = %f, want ~0.5", got)
	}

	fresh := UserGameSnapshot{ID: "fresh"}
	if d := rc.temporalDecay(&fresh); d != 1.0 {
		t.Errorf("no-timestamp decay = %f, want 1.0", d)
	}
}
