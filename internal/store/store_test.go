package store

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "ansuz-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func rawPost(id, title string, points int, created time.Time) models.RawPost {
	return models.RawPost{
		ID:        id,
		Title:     title,
		URL:       "https://example.com/" + id,
		Author:    "alice",
		Points:    points,
		CreatedAt: created,
	}
}

func newRun(posts, matches int) models.ScrapeRun {
	return models.ScrapeRun{ID: uuid.New(), StartedAt: time.Now(), Posts: posts, TagMatches: matches}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	for _, table := range []string{"posts", "post_tags", "tag_daily_stats", "scrape_runs"} {
		var count int
		if err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count); err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestIngestBatch_PointsMergeAdditively(t *testing.T) {
	db := testDB(t)
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	batch := Batch{
		Run:   newRun(1, 0),
		Posts: []models.RawPost{rawPost("1", "Original title", 5, created)},
		Date:  "2024-06-01",
	}
	if err := db.IngestBatch(batch); err != nil {
		t.Fatalf("first ingest: %v", err)
	}

	// Re-ingest the same id with a changed title; points add, the rest stays.
	batch.Run = newRun(1, 0)
	batch.Posts = []models.RawPost{rawPost("1", "Changed title", 5, created.Add(time.Hour))}
	if err := db.IngestBatch(batch); err != nil {
		t.Fatalf("second ingest: %v", err)
	}

	p, err := db.GetPost("1")
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if p.Points != 10 {
		t.Errorf("points = %d, want 10", p.Points)
	}
	if p.Title != "Original title" {
		t.Errorf("title = %q, want first-insert value", p.Title)
	}
	if !p.CreatedAt.Equal(created) {
		t.Errorf("created_at = %v, want first-insert value %v", p.CreatedAt, created)
	}
}

func TestIngestBatch_AssociationIdempotent(t *testing.T) {
	db := testDB(t)
	created := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		err := db.IngestBatch(Batch{
			Run:          newRun(1, 1),
			Posts:        []models.RawPost{rawPost("123", "Python tips", 1, created)},
			Associations: []Association{{Tag: "python", PostID: "123"}},
			Tags:         []string{"python"},
			Date:         "2024-06-01",
		})
		if err != nil {
			t.Fatalf("ingest %d: %v", i, err)
		}
	}

	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM post_tags WHERE tag = 'python' AND post_id = '123'`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("association rows = %d, want 1", n)
	}
}

func TestIngestBatch_StatsAdditive(t *testing.T) {
	db := testDB(t)
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	err := db.IngestBatch(Batch{
		Run:   newRun(1, 3),
		Posts: []models.RawPost{rawPost("1", "Go Go Rust", 1, created)},
		Tags:  []string{"go", "go", "rust"},
		Date:  "2024-01-01",
	})
	if err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	err = db.IngestBatch(Batch{
		Run:   newRun(1, 1),
		Posts: []models.RawPost{rawPost("2", "More Go", 1, created)},
		Tags:  []string{"go"},
		Date:  "2024-01-01",
	})
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}

	hist, err := db.TagHistory("go")
	if err != nil {
		t.Fatalf("TagHistory: %v", err)
	}
	if len(hist) != 1 || hist[0].Count != 3 {
		t.Errorf("go history = %+v, want one row with count 3", hist)
	}
	hist, _ = db.TagHistory("rust")
	if len(hist) != 1 || hist[0].Count != 1 {
		t.Errorf("rust history = %+v, want one row with count 1", hist)
	}
}

func TestIngestBatch_EmptyIsNoOp(t *testing.T) {
	db := testDB(t)
	if err := db.IngestBatch(Batch{Run: newRun(0, 0), Date: "2024-01-01"}); err != nil {
		t.Fatalf("empty ingest: %v", err)
	}
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM scrape_runs`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("scrape_runs rows = %d, want 0 for empty batch", n)
	}
}

func TestIngestBatch_RollbackOnFailure(t *testing.T) {
	db := testDB(t)
	created := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	run := newRun(1, 1)
	err := db.IngestBatch(Batch{
		Run:          run,
		Posts:        []models.RawPost{rawPost("1", "Go intro", 5, created)},
		Associations: []Association{{Tag: "go", PostID: "1"}},
		Tags:         []string{"go"},
		Date:         "2024-06-01",
	})
	if err != nil {
		t.Fatalf("first ingest: %v", err)
	}

	// Reusing the run id makes the final scrape_runs insert conflict, after
	// the batch's posts and stats have already been written inside the tx.
	err = db.IngestBatch(Batch{
		Run: run,
		Posts: []models.RawPost{
			rawPost("1", "Go intro", 5, created),
			rawPost("2", "Go followup", 7, created),
		},
		Associations: []Association{{Tag: "go", PostID: "1"}, {Tag: "go", PostID: "2"}},
		Tags:         []string{"go", "go"},
		Date:         "2024-06-01",
	})
	if err == nil {
		t.Fatal("expected second ingest to fail on duplicate run id")
	}

	// Everything from the failed batch must be rolled back.
	if _, err := db.GetPost("2"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("post from failed batch present, GetPost err = %v", err)
	}

	// Prior data is untouched: no double-applied point or stat merges.
	p, err := db.GetPost("1")
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if p.Points != 5 {
		t.Errorf("points = %d, want 5 (failed batch's merge rolled back)", p.Points)
	}
	hist, err := db.TagHistory("go")
	if err != nil {
		t.Fatal(err)
	}
	if len(hist) != 1 || hist[0].Count != 1 {
		t.Errorf("go history = %+v, want single row with count 1", hist)
	}
}

func TestCorruptTimestamps_ReportError(t *testing.T) {
	db := testDB(t)
	created := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	err := db.IngestBatch(Batch{
		Run:   newRun(1, 0),
		Posts: []models.RawPost{rawPost("1", "Go intro", 5, created)},
		Date:  "2024-06-01",
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := db.conn.Exec(`UPDATE posts SET created_at = 'garbage'`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.conn.Exec(`UPDATE scrape_runs SET started_at = 'garbage'`); err != nil {
		t.Fatal(err)
	}

	if _, err := db.GetPost("1"); err == nil {
		t.Error("GetPost: expected error for unparseable created_at")
	}
	if _, err := db.RecentRuns(10); err == nil {
		t.Error("RecentRuns: expected error for unparseable started_at")
	}
}

func TestTagTotals_OrderAndTieBreak(t *testing.T) {
	db := testDB(t)
	created := time.Now().UTC()
	err := db.IngestBatch(Batch{
		Run:   newRun(1, 5),
		Posts: []models.RawPost{rawPost("1", "x", 1, created)},
		Tags:  []string{"zig", "ada", "go", "go", "ada"},
		Date:  "2024-03-01",
	})
	if err != nil {
		t.Fatal(err)
	}

	totals, err := db.TagTotals(10)
	if err != nil {
		t.Fatalf("TagTotals: %v", err)
	}
	if len(totals) != 3 {
		t.Fatalf("totals = %+v, want 3 entries", totals)
	}
	// ada and go tie at 2; lexicographic order breaks the tie.
	if totals[0].Tag != "ada" || totals[1].Tag != "go" || totals[2].Tag != "zig" {
		t.Errorf("order = %s,%s,%s, want ada,go,zig", totals[0].Tag, totals[1].Tag, totals[2].Tag)
	}
}

func TestTagTotalsSince_ExcludesOlderDates(t *testing.T) {
	db := testDB(t)
	created := time.Now().UTC()
	_ = db.IngestBatch(Batch{
		Run: newRun(1, 1), Posts: []models.RawPost{rawPost("1", "x", 1, created)},
		Tags: []string{"go"}, Date: "2024-01-01",
	})
	_ = db.IngestBatch(Batch{
		Run: newRun(1, 1), Posts: []models.RawPost{rawPost("2", "x", 1, created)},
		Tags: []string{"go"}, Date: "2024-05-01",
	})

	totals, err := db.TagTotalsSince("2024-04-01", 10)
	if err != nil {
		t.Fatalf("TagTotalsSince: %v", err)
	}
	if len(totals) != 1 || totals[0].Count != 1 {
		t.Errorf("totals = %+v, want go=1 (older row excluded)", totals)
	}
}

func TestPostsByTag_FilterOrderPaging(t *testing.T) {
	db := testDB(t)
	old := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	batch := Batch{
		Run: newRun(3, 3),
		Posts: []models.RawPost{
			rawPost("a", "Go one", 10, recent),
			rawPost("b", "Go two", 30, recent),
			rawPost("c", "Go but old", 99, old),
		},
		Associations: []Association{
			{Tag: "go", PostID: "a"}, {Tag: "go", PostID: "b"}, {Tag: "go", PostID: "c"},
		},
		Tags: []string{"go", "go", "go"},
		Date: "2024-06-10",
	}
	if err := db.IngestBatch(batch); err != nil {
		t.Fatal(err)
	}

	since := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	posts, err := db.PostsByTag("go", since, 10, 0)
	if err != nil {
		t.Fatalf("PostsByTag: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("got %d posts, want 2 (old one filtered)", len(posts))
	}
	if posts[0].ID != "b" || posts[1].ID != "a" {
		t.Errorf("order = %s,%s, want b,a (points desc)", posts[0].ID, posts[1].ID)
	}

	n, err := db.CountPostsByTag("go", since)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}

	page2, err := db.PostsByTag("go", since, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(page2) != 1 || page2[0].ID != "a" {
		t.Errorf("page2 = %+v, want just post a", page2)
	}
}

func TestRecentRuns(t *testing.T) {
	db := testDB(t)
	created := time.Now().UTC()

	first := models.ScrapeRun{ID: uuid.New(), StartedAt: created.Add(-time.Hour), Posts: 1, TagMatches: 0}
	second := models.ScrapeRun{ID: uuid.New(), StartedAt: created, Posts: 1, TagMatches: 2}
	_ = db.IngestBatch(Batch{Run: first, Posts: []models.RawPost{rawPost("1", "x", 1, created)}, Date: "2024-06-01"})
	_ = db.IngestBatch(Batch{Run: second, Posts: []models.RawPost{rawPost("2", "y", 1, created)}, Date: "2024-06-01"})

	runs, err := db.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID != second.ID {
		t.Errorf("newest run first: got %s, want %s", runs[0].ID, second.ID)
	}
	if runs[0].TagMatches != 2 {
		t.Errorf("tag_matches = %d, want 2", runs[0].TagMatches)
	}
}

func TestGetPost_NotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.GetPost("missing")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestPostsByTag_NullURLAndAuthor(t *testing.T) {
	db := testDB(t)
	created := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	err := db.IngestBatch(Batch{
		Run:          newRun(1, 1),
		Posts:        []models.RawPost{{ID: "n", Title: "Go untitled", Points: 1, CreatedAt: created}},
		Associations: []Association{{Tag: "go", PostID: "n"}},
		Tags:         []string{"go"},
		Date:         "2024-06-01",
	})
	if err != nil {
		t.Fatal(err)
	}
	p, err := db.GetPost("n")
	if err != nil {
		t.Fatalf("GetPost: %v", err)
	}
	if p.URL != "" || p.Author != "" {
		t.Errorf("url=%q author=%q, want empty for NULL columns", p.URL, p.Author)
	}
}
