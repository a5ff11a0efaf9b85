// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package store

import (
	"context"
	"time"

	"github.com/ludograph/ludographus/internal/logging"
	"github.com/ludograph/ludographus/internal/recommend"
)

// DemoUserID is the library owner written by SeedMockData.
const DemoUserID = "demo"

// SeedMockData loads a small demonstration library and candidate catalog.
// Intended for local development; idempotent via the upsert paths.
func (s *Store) SeedMockData(ctx context.Context) error {
	now := time.Now()
	ms := func(daysAgo int) int64 {
		return now.AddDate(0, 0, -daysAgo).UnixMilli()
	}

	library := []recommend.UserGameSnapshot{
		{
			ID: "demo-hades", Title: "Hades",
			Genres: []string{"Roguelike", "Action"}, Themes: []string{"Mythology"},
			Modes: []string{"Single-player"}, Perspectives: []string{"Isometric"},
			Developer: "Supergiant Games", Publisher: "Supergiant Games",
			Rating: 5, HoursPlayed: 95, Status: recommend.StatusCompleted,
			ReleaseDate: "2020-09-17", AddedAt: ms(400), LastPlayedAt: ms(30),
			Sessions: []recommend.Session{
				{StartedAt: ms(120), DurationMinutes: 90},
				{StartedAt: ms(90), DurationMinutes: 120},
				{StartedAt: ms(45), DurationMinutes: 150},
				{StartedAt: ms(30), DurationMinutes: 110},
			},
			SimilarTitles: []string{"Dead Cells", "Bastion"},
		},
		{
			ID: "demo-deadcells", Title: "Dead Cells",
			Genres: []string{"Roguelike", "Platformer"}, Themes: []string{"Dark Fantasy"},
			Modes: []string{"Single-player"}, Perspectives: []string{"Side view"},
			Developer: "Motion Twin", Publisher: "Motion Twin",
			Rating: 4, HoursPlayed: 60, Status: recommend.StatusPlaying,
			ReleaseDate: "2018-08-07", AddedAt: ms(300), LastPlayedAt: ms(5),
			Sessions: []recommend.Session{
				{StartedAt: ms(60), DurationMinutes: 60},
				{StartedAt: ms(20), DurationMinutes: 80},
				{StartedAt: ms(5), DurationMinutes: 70},
			},
		},
		{
			ID: "demo-civ6", Title: "Civilization VI",
			Genres: []string{"Strategy", "4X"}, Themes: []string{"Historical"},
			Modes: []string{"Single-player", "Multiplayer"}, Perspectives: []string{"Top-down"},
			Developer: "Firaxis Games", Publisher: "2K",
			Rating: 4, HoursPlayed: 140, Status: recommend.StatusOnHold,
			ReleaseDate: "2016-10-21", AddedAt: ms(700), LastPlayedAt: ms(90),
			StatusHistory: []recommend.PlayStatus{recommend.StatusPlaying, recommend.StatusOnHold},
			Sessions: []recommend.Session{
				{StartedAt: ms(400), DurationMinutes: 240},
				{StartedAt: ms(200), DurationMinutes: 180},
				{StartedAt: ms(90), DurationMinutes: 200},
			},
		},
	}

	candidates := []recommend.CandidateGame{
		{
			ID: "demo-hades2", Title: "Hades II",
			Genres: []string{"Roguelike", "Action"}, Themes: []string{"Mythology"},
			Modes: []string{"Single-player"}, Perspectives: []string{"Isometric"},
			Developer: "Supergiant Games", Publisher: "Supergiant Games",
			Metacritic: 93, Recommendations: 180000, ReviewCount: 90000,
			ReviewPositive: 0.97, AchievementCount: 49, PlayerCount: 42000,
			ReleaseDate: "2025-09-25", PriceCents: 2999,
			SimilarTitles: []string{"Hades", "Dead Cells"},
		},
		{
			ID: "demo-rogue-legacy2", Title: "Rogue Legacy 2",
			Genres: []string{"Roguelike", "Platformer"}, Themes: []string{"Fantasy"},
			Modes: []string{"Single-player"}, Perspectives: []string{"Side view"},
			Developer: "Cellar Door Games", Publisher: "Cellar Door Games",
			Metacritic: 88, Recommendations: 30000, ReviewCount: 22000,
			ReviewPositive: 0.94, AchievementCount: 28, PlayerCount: 3500,
			ReleaseDate: "2022-04-28", PriceCents: 2499, DiscountPercent: 40,
		},
		{
			ID: "demo-humankind", Title: "Humankind",
			Genres: []string{"Strategy", "4X"}, Themes: []string{"Historical"},
			Modes: []string{"Single-player", "Multiplayer"}, Perspectives: []string{"Top-down"},
			Developer: "Amplitude Studios", Publisher: "Sega",
			Metacritic: 78, Recommendations: 15000, ReviewCount: 28000,
			ReviewPositive: 0.71, AchievementCount: 120, PlayerCount: 2100,
			ReleaseDate: "2021-08-17", PriceCents: 4999, DiscountPercent: 60,
		},
		{
			ID: "demo-vampire", Title: "Vampire Survivors",
			Genres: []string{"Roguelike", "Action"}, Themes: []string{"Horror"},
			Modes: []string{"Single-player"}, Perspectives: []string{"Top-down"},
			Developer: "poncle", Publisher: "poncle",
			Metacritic: 85, Recommendations: 250000, ReviewCount: 230000,
			ReviewPositive: 0.98, AchievementCount: 204, PlayerCount: 28000,
			ReleaseDate: "2022-10-20", PriceCents: 0,
		},
	}

	for i := range library {
		if err := s.UpsertUserGame(ctx, DemoUserID, &library[i]); err != nil {
			return err
		}
	}
	for i := range candidates {
		if err := s.UpsertCandidate(ctx, &candidates[i]); err != nil {
			return err
		}
	}

	logging.Info().
		Int("library", len(library)).
		Int("candidates", len(candidates)).
		Msg("seeded demo data")
	return nil
}
