package store

import (
	"time"

	"github.com/starford/ansuz/internal/models"
)

// Association links a tag to a post.
type Association struct {
	Tag    string
	PostID string
}

// Batch is one ingestion unit: the scraped posts, the extracted tag
// associations, the flat tag occurrence list (one entry per post-tag match),
// and the statistics date bucket the occurrences accumulate into.
type Batch struct {
	Run          models.ScrapeRun
	Posts        []models.RawPost
	Associations []Association
	Tags         []string
	Date         string // YYYY-MM-DD
}

// TrendStore defines the persistence operations the service layer depends on.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type TrendStore interface {
	IngestBatch(b Batch) error
	GetPost(id string) (*models.Post, error)
	TagHistory(tag string) ([]models.DailyCount, error)
	TagTotals(limit int) ([]models.TagCount, error)
	TagTotalsSince(since string, limit int) ([]models.TagCount, error)
	PostsByTag(tag string, since time.Time, limit, offset int) ([]models.Post, error)
	CountPostsByTag(tag string, since time.Time) (int, error)
	RecentRuns(limit int) ([]models.ScrapeRun, error)
	Close() error
}

// Verify *DB satisfies TrendStore at compile time.
var _ TrendStore = (*DB)(nil)
