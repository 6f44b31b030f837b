package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

// GetPost returns a single post by id, or apperr.ErrNotFound.
func (db *DB) GetPost(id string) (*models.Post, error) {
	row := db.conn.QueryRow(`SELECT id, title, url, author, points, created_at FROM posts WHERE id = ?`, id)
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("store: get post: %w", err)
	}
	return p, nil
}

// TagHistory returns the recorded daily counts for a tag in ascending date
// order. Days without a row are absent; gap filling is the service's job.
func (db *DB) TagHistory(tag string) ([]models.DailyCount, error) {
	rows, err := db.conn.Query(`
		SELECT date, count FROM tag_daily_stats
		WHERE tag = ?
		ORDER BY date ASC
	`, tag)
	if err != nil {
		return nil, fmt.Errorf("store: tag history: %w", err)
	}
	defer rows.Close()

	var out []models.DailyCount
	for rows.Next() {
		var d models.DailyCount
		if err := rows.Scan(&d.Date, &d.Count); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// TagTotals returns per-tag totals across all history, highest first.
// Equal totals are ordered lexicographically by tag so rankings are stable.
func (db *DB) TagTotals(limit int) ([]models.TagCount, error) {
	rows, err := db.conn.Query(`
		SELECT tag, SUM(count) AS total FROM tag_daily_stats
		GROUP BY tag
		ORDER BY total DESC, tag ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: tag totals: %w", err)
	}
	defer rows.Close()
	return scanTagCounts(rows)
}

// TagTotalsSince returns per-tag totals restricted to statistic dates on or
// after since (YYYY-MM-DD), with the same ordering as TagTotals.
func (db *DB) TagTotalsSince(since string, limit int) ([]models.TagCount, error) {
	rows, err := db.conn.Query(`
		SELECT tag, SUM(count) AS total FROM tag_daily_stats
		WHERE date >= ?
		GROUP BY tag
		ORDER BY total DESC, tag ASC
		LIMIT ?
	`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("store: tag totals since: %w", err)
	}
	defer rows.Close()
	return scanTagCounts(rows)
}

// PostsByTag returns posts associated with tag and created on or after since,
// ordered by points descending. Equal points fall back to id order so pages
// are stable across requests.
func (db *DB) PostsByTag(tag string, since time.Time, limit, offset int) ([]models.Post, error) {
	rows, err := db.conn.Query(`
		SELECT p.id, p.title, p.url, p.author, p.points, p.created_at
		FROM posts p
		JOIN post_tags t ON p.id = t.post_id
		WHERE t.tag = ? AND p.created_at >= ?
		ORDER BY p.points DESC, p.id ASC
		LIMIT ? OFFSET ?
	`, tag, formatTime(since), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("store: posts by tag: %w", err)
	}
	defer rows.Close()

	var out []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// CountPostsByTag returns the number of posts PostsByTag would match before
// pagination.
func (db *DB) CountPostsByTag(tag string, since time.Time) (int, error) {
	var n int
	err := db.conn.QueryRow(`
		SELECT count(*)
		FROM posts p
		JOIN post_tags t ON p.id = t.post_id
		WHERE t.tag = ? AND p.created_at >= ?
	`, tag, formatTime(since)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("store: count posts by tag: %w", err)
	}
	return n, nil
}

// RecentRuns returns the latest scrape runs, newest first.
func (db *DB) RecentRuns(limit int) ([]models.ScrapeRun, error) {
	rows, err := db.conn.Query(`
		SELECT id, started_at, posts, tag_matches FROM scrape_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: recent runs: %w", err)
	}
	defer rows.Close()

	var out []models.ScrapeRun
	for rows.Next() {
		var (
			r       models.ScrapeRun
			id      string
			started string
		)
		if err := rows.Scan(&id, &started, &r.Posts, &r.TagMatches); err != nil {
			return nil, err
		}
		r.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("store: parse run id %q: %w", id, err)
		}
		r.StartedAt, err = parseTime(started)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*models.Post, error) {
	var (
		p       models.Post
		url     sql.NullString
		author  sql.NullString
		created string
	)
	if err := row.Scan(&p.ID, &p.Title, &url, &author, &p.Points, &created); err != nil {
		return nil, err
	}
	p.URL = url.String
	p.Author = author.String
	createdAt, err := parseTime(created)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = createdAt
	return &p, nil
}

func scanTagCounts(rows *sql.Rows) ([]models.TagCount, error) {
	var out []models.TagCount
	for rows.Next() {
		var tc models.TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, err
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}
