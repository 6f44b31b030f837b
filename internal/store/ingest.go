package store

import (
	"fmt"
)

// IngestBatch persists one scrape batch within a single transaction: post
// upserts, tag associations, daily statistics, and the run record. Either
// everything in the batch lands or nothing does.
//
// Post rows merge additively on conflict: points grows by the newly observed
// value while title, url, author, and created_at keep their first-insert
// values. Statistics merge the same way, as a conditional increment on
// conflict, so concurrent batches for the same (tag, date) never lose counts.
func (db *DB) IngestBatch(b Batch) error {
	if len(b.Posts) == 0 {
		// An empty scrape is a valid no-op, not an error.
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	postStmt, err := tx.Prepare(`
		INSERT INTO posts (id, title, url, author, points, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			points = points + excluded.points
	`)
	if err != nil {
		return fmt.Errorf("store: prepare post upsert: %w", err)
	}
	defer postStmt.Close()

	for _, p := range b.Posts {
		if _, err := postStmt.Exec(p.ID, p.Title, nullable(p.URL), nullable(p.Author), p.Points, formatTime(p.CreatedAt)); err != nil {
			return fmt.Errorf("store: upsert post %s: %w", p.ID, err)
		}
	}

	if len(b.Associations) > 0 {
		assocStmt, err := tx.Prepare(`INSERT OR IGNORE INTO post_tags (tag, post_id) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("store: prepare association insert: %w", err)
		}
		defer assocStmt.Close()
		for _, a := range b.Associations {
			if _, err := assocStmt.Exec(a.Tag, a.PostID); err != nil {
				return fmt.Errorf("store: insert association (%s, %s): %w", a.Tag, a.PostID, err)
			}
		}
	}

	if len(b.Tags) > 0 {
		counts := make(map[string]int, len(b.Tags))
		for _, tag := range b.Tags {
			counts[tag]++
		}

		statStmt, err := tx.Prepare(`
			INSERT INTO tag_daily_stats (tag, date, count)
			VALUES (?, ?, ?)
			ON CONFLICT(tag, date) DO UPDATE SET
				count = count + excluded.count
		`)
		if err != nil {
			return fmt.Errorf("store: prepare stat upsert: %w", err)
		}
		defer statStmt.Close()

		for tag, n := range counts {
			if _, err := statStmt.Exec(tag, b.Date, n); err != nil {
				return fmt.Errorf("store: upsert stat (%s, %s): %w", tag, b.Date, err)
			}
		}
	}

	_, err = tx.Exec(`INSERT INTO scrape_runs (id, started_at, posts, tag_matches) VALUES (?, ?, ?, ?)`,
		b.Run.ID.String(), formatTime(b.Run.StartedAt), b.Run.Posts, b.Run.TagMatches)
	if err != nil {
		return fmt.Errorf("store: insert run: %w", err)
	}

	return tx.Commit()
}

// nullable maps the empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
