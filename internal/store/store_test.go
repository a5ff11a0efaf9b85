// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package store

import (
	"context"
	"testing"

	"github.com/ludograph/ludographus/internal/recommend"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("opening in-memory store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUserGameRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	in := recommend.UserGameSnapshot{
		ID:            "g1",
		Title:         "Hades",
		Genres:        []string{"Roguelike", "Action"},
		Themes:        []string{"Mythology"},
		Modes:         []string{"Single-player"},
		Perspectives:  []string{"Isometric"},
		Developer:     "Supergiant Games",
		Publisher:     "Supergiant Games",
		Rating:        5,
		HoursPlayed:   95,
		Status:        recommend.StatusCompleted,
		StatusHistory: []recommend.PlayStatus{recommend.StatusPlaying, recommend.StatusCompleted},
		Sessions: []recommend.Session{
			{StartedAt: 1000, DurationMinutes: 90},
			{StartedAt: 2000, DurationMinutes: 120},
		},
		Embedding:     []float32{0.1, 0.2, 0.3},
		ReleaseDate:   "2020-09-17",
		AddedAt:       10,
		LastPlayedAt:  20,
		SimilarTitles: []string{"Dead Cells"},
	}
	if err := s.UpsertUserGame(ctx, "u1", &in); err != nil {
		t.Fatalf("UpsertUserGame error: %v", err)
	}

	games, err := s.UserLibrary(ctx, "u1")
	if err != nil {
		t.Fatalf("UserLibrary error: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("got %d games, want 1", len(games))
	}

	got := games[0]
	if got.Title != "Hades" || got.Status != recommend.StatusCompleted {
		t.Errorf("snapshot fields lost: %+v", got)
	}
	if len(got.Genres) != 2 || got.Genres[0] != "Roguelike" {
		t.Errorf("genres = %v", got.Genres)
	}
	if len(got.Sessions) != 2 || got.Sessions[0].StartedAt != 1000 {
		t.Errorf("sessions = %v", got.Sessions)
	}
	if len(got.StatusHistory) != 2 || got.StatusHistory[1] != recommend.StatusCompleted {
		t.Errorf("status history = %v", got.StatusHistory)
	}
	if len(got.Embedding) != 3 {
		t.Errorf("embedding = %v", got.Embedding)
	}
}

func TestUserGameUpsertReplaces(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	g := recommend.UserGameSnapshot{
		ID: "g1", Title: "Hades", HoursPlayed: 10,
		Status:   recommend.StatusPlaying,
		Sessions: []recommend.Session{{StartedAt: 1000, DurationMinutes: 60}},
	}
	if err := s.UpsertUserGame(ctx, "u1", &g); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	g.HoursPlayed = 25
	g.Sessions = append(g.Sessions, recommend.Session{StartedAt: 2000, DurationMinutes: 90})
	if err := s.UpsertUserGame(ctx, "u1", &g); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	games, err := s.UserLibrary(ctx, "u1")
	if err != nil {
		t.Fatalf("UserLibrary error: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("got %d games after upsert, want 1", len(games))
	}
	if games[0].HoursPlayed != 25 {
		t.Errorf("HoursPlayed = %v, want 25", games[0].HoursPlayed)
	}
	if len(games[0].Sessions) != 2 {
		t.Errorf("sessions = %d, want 2 after replace", len(games[0].Sessions))
	}
}

func TestUserLibraryIsolatedByUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	g := recommend.UserGameSnapshot{ID: "g1", Title: "Hades"}
	if err := s.UpsertUserGame(ctx, "u1", &g); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	games, err := s.UserLibrary(ctx, "u2")
	if err != nil {
		t.Fatalf("UserLibrary error: %v", err)
	}
	if len(games) != 0 {
		t.Errorf("u2 sees %d games, want 0", len(games))
	}
}

func TestCandidatePoolOrderAndLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	pool := []recommend.CandidateGame{
		{ID: "c1", Title: "Low", PlayerCount: 100},
		{ID: "c2", Title: "High", PlayerCount: 9000},
		{ID: "c3", Title: "Mid", PlayerCount: 4000},
	}
	for i := range pool {
		if err := s.UpsertCandidate(ctx, &pool[i]); err != nil {
			t.Fatalf("UpsertCandidate error: %v", err)
		}
	}

	got, err := s.CandidatePool(ctx, 2)
	if err != nil {
		t.Fatalf("CandidatePool error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want limit 2", len(got))
	}
	if got[0].ID != "c2" || got[1].ID != "c3" {
		t.Errorf("pool order = [%s %s], want [c2 c3]", got[0].ID, got[1].ID)
	}
}

func TestSeedMockData(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SeedMockData(ctx); err != nil {
		t.Fatalf("SeedMockData error: %v", err)
	}
	// Seeding twice must not duplicate.
	if err := s.SeedMockData(ctx); err != nil {
		t.Fatalf("second SeedMockData error: %v", err)
	}

	games, err := s.UserLibrary(ctx, DemoUserID)
	if err != nil {
		t.Fatalf("UserLibrary error: %v", err)
	}
	if len(games) != 3 {
		t.Errorf("demo library has %d games, want 3", len(games))
	}

	candidates, err := s.CandidatePool(ctx, 100)
	if err != nil {
		t.Fatalf("CandidatePool error: %v", err)
	}
	if len(candidates) != 4 {
		t.Errorf("demo catalog has %d candidates, want 4", len(candidates))
	}
}
