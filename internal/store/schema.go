// Package store provides the SQLite persistence layer for posts, tag
// associations, and daily tag statistics.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS posts (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	url        TEXT,
	author     TEXT,
	points     INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS post_tags (
	tag     TEXT NOT NULL,
	post_id TEXT NOT NULL,
	UNIQUE(tag, post_id)
);

CREATE INDEX IF NOT EXISTS idx_post_tags_tag ON post_tags(tag);

CREATE TABLE IF NOT EXISTS tag_daily_stats (
	tag   TEXT NOT NULL,
	date  TEXT NOT NULL,
	count INTEGER NOT NULL DEFAULT 0,
	UNIQUE(tag, date)
);

CREATE INDEX IF NOT EXISTS idx_tag_daily_stats_tag ON tag_daily_stats(tag);

CREATE TABLE IF NOT EXISTS scrape_runs (
	id          TEXT PRIMARY KEY,
	started_at  TEXT NOT NULL,
	posts       INTEGER NOT NULL DEFAULT 0,
	tag_matches INTEGER NOT NULL DEFAULT 0
);
`

// Timestamps are stored as RFC3339 UTC strings and dates as YYYY-MM-DD, so
// string comparison in SQL matches chronological order.
const (
	timeLayout = time.RFC3339
	DateLayout = "2006-01-02"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("store: parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// DB wraps a sql.DB with trend-store operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
