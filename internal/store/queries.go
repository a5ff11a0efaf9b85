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

const userLibraryQuery = `
SELECT game_id, title, genres, themes, modes, perspectives,
       developer, publisher, rating, hours_played, status, embedding,
       release_date, added_at, removed_at, last_played_at, similar_titles
FROM user_games
WHERE user_id = ?
ORDER BY game_id`

const userSessionsQuery = `
SELECT game_id, started_at, duration_minutes
FROM game_sessions
WHERE user_id = ?
ORDER BY game_id, started_at`

const userStatusChangesQuery = `
SELECT game_id, status
FROM status_changes
WHERE user_id = ?
ORDER BY game_id, changed_at`

const candidatePoolQuery = `
SELECT game_id, title, genres, themes, modes, perspectives,
       developer, publisher, metacritic, recommendations, review_count,
       review_positive, achievement_count, player_count, release_date,
       price_cents, discount_percent, similar_titles, embedding
FROM candidates
ORDER BY player_count DESC, game_id
LIMIT ?`

// UserLibrary loads the full library snapshot for one user, including
// removed games, the session log, and the status history. Removed games
// stay in the result because the engine mines them for negative signals.
func (s *Store) UserLibrary(ctx context.Context, userID string) (games []recommend.UserGameSnapshot, err error) {
	start := time.Now()
	defer func() { observe("select", "user_games", start, err) }()

	stmt, err := s.getStmt(ctx, userLibraryQuery)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("querying user library: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-side close

	index := make(map[string]int)
	for rows.Next() {
		var (
			g                             recommend.UserGameSnapshot
			genres, themes, modes, persp  string
			embedding, similar, statusStr string
		)
		if err := rows.Scan(
			&g.ID, &g.Title, &genres, &themes, &modes, &persp,
			&g.Developer, &g.Publisher, &g.Rating, &g.HoursPlayed, &statusStr,
			&embedding, &g.ReleaseDate, &g.AddedAt, &g.RemovedAt,
			&g.LastPlayedAt, &similar,
		); err != nil {
			return nil, fmt.Errorf("scanning user game: %w", err)
		}

		g.Status = recommend.ParsePlayStatus(statusStr)
		if g.Genres, err = decodeStrings(genres); err != nil {
			return nil, err
		}
		if g.Themes, err = decodeStrings(themes); err != nil {
			return nil, err
		}
		if g.Modes, err = decodeStrings(modes); err != nil {
			return nil, err
		}
		if g.Perspectives, err = decodeStrings(persp); err != nil {
			return nil, err
		}
		if g.SimilarTitles, err = decodeStrings(similar); err != nil {
			return nil, err
		}
		if g.Embedding, err = decodeVector(embedding); err != nil {
			return nil, err
		}

		index[g.ID] = len(games)
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user library: %w", err)
	}

	if err := s.attachSessions(ctx, userID, games, index); err != nil {
		return nil, err
	}
	if err := s.attachStatusHistory(ctx, userID, games, index); err != nil {
		return nil, err
	}
	return games, nil
}

// attachSessions loads the play-session log and distributes it onto the
// snapshots, oldest session first.
func (s *Store) attachSessions(ctx context.Context, userID string, games []recommend.UserGameSnapshot, index map[string]int) (err error) {
	start := time.Now()
	defer func() { observe("select", "game_sessions", start, err) }()

	stmt, err := s.getStmt(ctx, userSessionsQuery)
	if err != nil {
		return err
	}
	rows, err := stmt.QueryContext(ctx, userID)
	if err != nil {
		return fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-side close

	for rows.Next() {
		var (
			gameID  string
			session recommend.Session
		)
		if err := rows.Scan(&gameID, &session.StartedAt, &session.DurationMinutes); err != nil {
			return fmt.Errorf("scanning session: %w", err)
		}
		if i, ok := index[gameID]; ok {
			games[i].Sessions = append(games[i].Sessions, session)
		}
	}
	return rows.Err()
}

// attachStatusHistory loads the ordered status transitions per game.
func (s *Store) attachStatusHistory(ctx context.Context, userID string, games []recommend.UserGameSnapshot, index map[string]int) (err error) {
	start := time.Now()
	defer func() { observe("select", "status_changes", start, err) }()

	stmt, err := s.getStmt(ctx, userStatusChangesQuery)
	if err != nil {
		return err
	}
	rows, err := stmt.QueryContext(ctx, userID)
	if err != nil {
		return fmt.Errorf("querying status changes: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-side close

	for rows.Next() {
		var gameID, status string
		if err := rows.Scan(&gameID, &status); err != nil {
			return fmt.Errorf("scanning status change: %w", err)
		}
		if i, ok := index[gameID]; ok {
			games[i].StatusHistory = append(games[i].StatusHistory, recommend.ParsePlayStatus(status))
		}
	}
	return rows.Err()
}

// CandidatePool loads up to limit catalog candidates, most played first.
func (s *Store) CandidatePool(ctx context.Context, limit int) (candidates []recommend.CandidateGame, err error) {
	start := time.Now()
	defer func() { observe("select", "candidates", start, err) }()

	stmt, err := s.getStmt(ctx, candidatePoolQuery)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("querying candidate pool: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-side close

	for rows.Next() {
		var (
			c                            recommend.CandidateGame
			genres, themes, modes, persp string
			similar, embedding           string
		)
		if err := rows.Scan(
			&c.ID, &c.Title, &genres, &themes, &modes, &persp,
			&c.Developer, &c.Publisher, &c.Metacritic, &c.Recommendations,
			&c.ReviewCount, &c.ReviewPositive, &c.AchievementCount,
			&c.PlayerCount, &c.ReleaseDate, &c.PriceCents,
			&c.DiscountPercent, &similar, &embedding,
		); err != nil {
			return nil, fmt.Errorf("scanning candidate: %w", err)
		}

		if c.Genres, err = decodeStrings(genres); err != nil {
			return nil, err
		}
		if c.Themes, err = decodeStrings(themes); err != nil {
			return nil, err
		}
		if c.Modes, err = decodeStrings(modes); err != nil {
			return nil, err
		}
		if c.Perspectives, err = decodeStrings(persp); err != nil {
			return nil, err
		}
		if c.SimilarTitles, err = decodeStrings(similar); err != nil {
			return nil, err
		}
		if c.Embedding, err = decodeVector(embedding); err != nil {
			return nil, err
		}

		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating candidate pool: %w", err)
	}
	return candidates, nil
}
