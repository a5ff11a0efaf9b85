// Ludographus - Game Library Recommendations and Shelf Discovery
// Copyright 2026 Ludograph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludograph/ludographus

// Package store persists user libraries and the candidate catalog in
// DuckDB and loads them into engine snapshots.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // database/sql driver

	"github.com/ludograph/ludographus/internal/logging"
	"github.com/ludograph/ludographus/internal/metrics"
)

// Config configures the store.
type Config struct {
	// Path is the database file; ":memory:" or empty opens an in-memory
	// database, used by tests.
	Path string
}

// Store wraps the DuckDB connection and provides library access methods.
type Store struct {
	conn *sql.DB

	stmtCache   map[string]*sql.Stmt
	stmtCacheMu sync.RWMutex
}

// Open creates the connection and initializes the schema.
func Open(cfg Config) (*Store, error) {
	dsn := cfg.Path
	if dsn == ":memory:" {
		dsn = ""
	}

	if dsn != "" {
		dir := filepath.Dir(dsn)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
			}
		}
		dsn += "?access_mode=read_write"
	}

	conn, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	conn.SetMaxOpenConns(runtime.NumCPU())
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	s := &Store{
		conn:      conn,
		stmtCache: make(map[string]*sql.Stmt),
	}

	if err := s.initSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	logging.Info().Str("path", cfg.Path).Msg("store opened")
	return s, nil
}

// Ping verifies the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

// Close releases prepared statements and the connection.
func (s *Store) Close() error {
	s.stmtCacheMu.Lock()
	for _, stmt := range s.stmtCache {
		_ = stmt.Close()
	}
	s.stmtCache = make(map[string]*sql.Stmt)
	s.stmtCacheMu.Unlock()

	return s.conn.Close()
}

// initSchema creates the tables when missing. List-valued game metadata is
// stored as JSON text; DuckDB handles it natively and the engine only ever
// needs the decoded slices.
func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS user_games (
			user_id        VARCHAR NOT NULL,
			game_id        VARCHAR NOT NULL,
			title          VARCHAR NOT NULL,
			genres         VARCHAR,
			themes         VARCHAR,
			modes          VARCHAR,
			perspectives   VARCHAR,
			developer      VARCHAR,
			publisher      VARCHAR,
			rating         DOUBLE DEFAULT 0,
			hours_played   DOUBLE DEFAULT 0,
			status         VARCHAR DEFAULT 'want_to_play',
			embedding      VARCHAR,
			release_date   VARCHAR,
			added_at       BIGINT DEFAULT 0,
			removed_at     BIGINT DEFAULT 0,
			last_played_at BIGINT DEFAULT 0,
			similar_titles VARCHAR,
			PRIMARY KEY (user_id, game_id)
		)`,
		`CREATE TABLE IF NOT EXISTS game_sessions (
			user_id          VARCHAR NOT NULL,
			game_id          VARCHAR NOT NULL,
			started_at       BIGINT NOT NULL,
			duration_minutes DOUBLE NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS status_changes (
			user_id    VARCHAR NOT NULL,
			game_id    VARCHAR NOT NULL,
			status     VARCHAR NOT NULL,
			changed_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS candidates (
			game_id           VARCHAR PRIMARY KEY,
			title             VARCHAR NOT NULL,
			genres            VARCHAR,
			themes            VARCHAR,
			modes             VARCHAR,
			perspectives      VARCHAR,
			developer         VARCHAR,
			publisher         VARCHAR,
			metacritic        DOUBLE DEFAULT 0,
			recommendations   INTEGER DEFAULT 0,
			review_count      INTEGER DEFAULT 0,
			review_positive   DOUBLE DEFAULT 0,
			achievement_count INTEGER DEFAULT 0,
			player_count      INTEGER DEFAULT 0,
			release_date      VARCHAR,
			price_cents       INTEGER DEFAULT 0,
			discount_percent  INTEGER DEFAULT 0,
			similar_titles    VARCHAR,
			embedding         VARCHAR
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_game ON game_sessions (user_id, game_id)`,
		`CREATE INDEX IF NOT EXISTS idx_status_user_game ON status_changes (user_id, game_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.conn.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// getStmt returns a cached prepared statement, preparing it on first use.
func (s *Store) getStmt(ctx context.Context, query string) (*sql.Stmt, error) {
	s.stmtCacheMu.RLock()
	stmt, ok := s.stmtCache[query]
	s.stmtCacheMu.RUnlock()
	if ok {
		return stmt, nil
	}

	s.stmtCacheMu.Lock()
	defer s.stmtCacheMu.Unlock()
	if stmt, ok := s.stmtCache[query]; ok {
		return stmt, nil
	}

	stmt, err := s.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("preparing statement: %w", err)
	}
	s.stmtCache[query] = stmt
	return stmt, nil
}

// observe records query metrics for one store operation.
func observe(operation, table string, start time.Time, err error) {
	metrics.DBQueryDuration.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}
