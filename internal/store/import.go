// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/ludograph/ludographus/internal/recommend"
)

const upsertUserGameQuery = `
INSERT INTO user_games (
	user_id, game_id, title, genres, themes, modes, perspectives,
	developer, publisher, rating, hours_played, status, embedding,
	release_date, added_at, removed_at, last_played_at, similar_titles
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, game_id) DO UPDATE SET
	title = excluded.title,
	genres = excluded.genres,
	themes = excluded.themes,
	modes = excluded.modes,
	perspectives = excluded.perspectives,
	developer = excluded.developer,
	publisher = excluded.publisher,
	rating = excluded.rating,
	hours_played = excluded.hours_played,
	status = excluded.status,
	embedding = excluded.embedding,
	release_date = excluded.release_date,
	added_at = excluded.added_at,
	removed_at = excluded.removed_at,
	last_played_at = excluded.last_played_at,
	similar_titles = excluded.similar_titles`

const upsertCandidateQuery = `
INSERT INTO candidates (
	game_id, title, genres, themes, modes, perspectives, developer,
	publisher, metacritic, recommendations, review_count, review_positive,
	achievement_count, player_count, release_date, price_cents,
	discount_percent, similar_titles, embedding
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (game_id) DO UPDATE SET
	title = excluded.title,
	genres = excluded.genres,
	themes = excluded.themes,
	modes = excluded.modes,
	perspectives = excluded.perspectives,
	developer = excluded.developer,
	publisher = excluded.publisher,
	metacritic = excluded.metacritic,
	recommendations = excluded.recommendations,
	review_count = excluded.review_count,
	review_positive = excluded.review_positive,
	achievement_count = excluded.achievement_count,
	player_count = excluded.player_count,
	release_date = excluded.release_date,
	price_cents = excluded.price_cents,
	discount_percent = excluded.discount_percent,
	similar_titles = excluded.similar_titles,
	embedding = excluded.embedding`

// UpsertUserGame writes one library entry, replacing its sessions and
// status history with the snapshot's.
func (s *Store) UpsertUserGame(ctx context.Context, userID string, g *recommend.UserGameSnapshot) (err error) {
	start := time.Now()
	defer func() { observe("upsert", "user_games", start, err) }()

	genres, err := encodeStrings(g.Genres)
	if err != nil {
		return err
	}
	themes, err := encodeStrings(g.Themes)
	if err != nil {
		return err
	}
	modes, err := encodeStrings(g.Modes)
	if err != nil {
		return err
	}
	persp, err := encodeStrings(g.Perspectives)
	if err != nil {
		return err
	}
	similar, err := encodeStrings(g.SimilarTitles)
	if err != nil {
		return err
	}
	embedding, err := encodeVector(g.Embedding)
	if err != nil {
		return err
	}

	stmt, err := s.getStmt(ctx, upsertUserGameQuery)
	if err != nil {
		return err
	}
	if _, err = stmt.ExecContext(ctx,
		userID, g.ID, g.Title, genres, themes, modes, persp,
		g.Developer, g.Publisher, g.Rating, g.HoursPlayed, g.Status.String(),
		embedding, g.ReleaseDate, g.AddedAt, g.RemovedAt, g.LastPlayedAt, similar,
	); err != nil {
		return fmt.Errorf("upserting user game %s: %w", g.ID, err)
	}

	if err = s.replaceSessions(ctx, userID, g.ID, g.Sessions); err != nil {
		return err
	}
	return s.replaceStatusHistory(ctx, userID, g.ID, g.StatusHistory)
}

// replaceSessions rewrites the session log for one game.
func (s *Store) replaceSessions(ctx context.Context, userID, gameID string, sessions []recommend.Session) (err error) {
	start := time.Now()
	defer func() { observe("replace", "game_sessions", start, err) }()

	if _, err = s.conn.ExecContext(ctx,
		`DELETE FROM game_sessions WHERE user_id = ? AND game_id = ?`, userID, gameID); err != nil {
		return fmt.Errorf("clearing sessions for %s: %w", gameID, err)
	}

	stmt, err := s.getStmt(ctx,
		`INSERT INTO game_sessions (user_id, game_id, started_at, duration_minutes) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	for _, session := range sessions {
		if _, err = stmt.ExecContext(ctx, userID, gameID, session.StartedAt, session.DurationMinutes); err != nil {
			return fmt.Errorf("inserting session for %s: %w", gameID, err)
		}
	}
	return nil
}

// replaceStatusHistory rewrites the status transitions for one game. The
// change timestamp is synthetic; only the order matters to the engine.
func (s *Store) replaceStatusHistory(ctx context.Context, userID, gameID string, history []recommend.PlayStatus) (err error) {
	start := time.Now()
	defer func() { observe("replace", "status_changes", start, err) }()

	if _, err = s.conn.ExecContext(ctx,
		`DELETE FROM status_changes WHERE user_id = ? AND game_id = ?`, userID, gameID); err != nil {
		return fmt.Errorf("clearing status history for %s: %w", gameID, err)
	}

	stmt, err := s.getStmt(ctx,
		`INSERT INTO status_changes (user_id, game_id, status, changed_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	for i, status := range history {
		if _, err = stmt.ExecContext(ctx, userID, gameID, status.String(), int64(i)); err != nil {
			return fmt.Errorf("inserting status change for %s: %w", gameID, err)
		}
	}
	return nil
}

// UpsertCandidate writes one catalog entry.
func (s *Store) UpsertCandidate(ctx context.Context, c *recommend.CandidateGame) (err error) {
	start := time.Now()
	defer func() { observe("upsert", "candidates", start, err) }()

	genres, err := encodeStrings(c.Genres)
	if err != nil {
		return err
	}
	themes, err := encodeStrings(c.Themes)
	if err != nil {
		return err
	}
	modes, err := encodeStrings(c.Modes)
	if err != nil {
		return err
	}
	persp, err := encodeStrings(c.Perspectives)
	if err != nil {
		return err
	}
	similar, err := encodeStrings(c.SimilarTitles)
	if err != nil {
		return err
	}
	embedding, err := encodeVector(c.Embedding)
	if err != nil {
		return err
	}

	stmt, err := s.getStmt(ctx, upsertCandidateQuery)
	if err != nil {
		return err
	}
	if _, err = stmt.ExecContext(ctx,
		c.ID, c.Title, genres, themes, modes, persp, c.Developer,
		c.Publisher, c.Metacritic, c.Recommendations, c.ReviewCount,
		c.ReviewPositive, c.AchievementCount, c.PlayerCount, c.ReleaseDate,
		c.PriceCents, c.DiscountPercent, similar, embedding,
	); err != nil {
		return fmt.Errorf("upserting candidate %s: %w", c.ID, err)
	}
	return nil
}
