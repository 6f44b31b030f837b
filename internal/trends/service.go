// Package trends implements the tag-extraction and statistics pipeline:
// ingesting scraped posts, recording tag associations and daily counters,
// and answering history, popularity, and top-post queries.
package trends

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/store"
	"github.com/starford/ansuz/internal/tagdict"
)

// historyEpoch is the first calendar day of the gap-filled history series.
const historyEpoch = "2024-01-01"

const (
	defaultTopTagsLimit     = 50
	defaultPopularTagsLimit = 10
	defaultPerPage          = 12
	maxPerPage              = 100
)

// Pagination describes one page of a top-posts result.
type Pagination struct {
	CurrentPage int  `json:"current_page"`
	PerPage     int  `json:"per_page"`
	TotalPosts  int  `json:"total_posts"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrev     bool `json:"has_prev"`
}

// TopPostsResult is a page of posts plus its pagination envelope.
type TopPostsResult struct {
	Posts      []models.Post `json:"posts"`
	Pagination Pagination    `json:"pagination"`
}

// Service coordinates the dictionary, the store, and the clock.
type Service struct {
	store store.TrendStore
	dict  *tagdict.Dictionary
	now   func() time.Time
}

// Option is a functional option for configuring the service.
type Option func(*Service)

// WithNow overrides the clock. Used by tests to pin "today".
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new trends service.
func NewService(st store.TrendStore, dict *tagdict.Dictionary, opts ...Option) *Service {
	s := &Service{store: st, dict: dict, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest runs one scrape batch through the pipeline: post upserts, tag
// extraction, association recording, and daily statistics accumulation, all
// within a single store transaction. An empty batch writes nothing and is
// not an error.
func (s *Service) Ingest(_ context.Context, posts []models.RawPost) (*models.ScrapeRun, error) {
	run := models.ScrapeRun{
		ID:        uuid.New(),
		StartedAt: s.now().UTC(),
		Posts:     len(posts),
	}
	if len(posts) == 0 {
		return &run, nil
	}

	var (
		tags         []string
		associations []store.Association
	)
	for _, p := range posts {
		for _, tag := range s.dict.Matches(p.Title) {
			tags = append(tags, tag)
			associations = append(associations, store.Association{Tag: tag, PostID: p.ID})
		}
	}
	run.TagMatches = len(tags)

	batch := store.Batch{
		Run:          run,
		Posts:        posts,
		Associations: associations,
		Tags:         tags,
		Date:         run.StartedAt.Format(store.DateLayout),
	}
	if err := s.store.IngestBatch(batch); err != nil {
		return nil, err
	}
	return &run, nil
}

// History returns one entry per calendar day from the epoch through today
// inclusive, zero-filled on days without a recorded statistic, so the series
// charts directly without client-side gap handling.
func (s *Service) History(_ context.Context, tag string) ([]models.DailyCount, error) {
	rows, err := s.store.TagHistory(normalizeTag(tag))
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]int, len(rows))
	for _, r := range rows {
		byDate[r.Date] = r.Count
	}

	epoch, _ := time.Parse(store.DateLayout, historyEpoch)
	today := startOfDay(s.now())

	var out []models.DailyCount
	for d := epoch; !d.After(today); d = d.AddDate(0, 0, 1) {
		date := d.Format(store.DateLayout)
		out = append(out, models.DailyCount{Date: date, Count: byDate[date]})
	}
	return out, nil
}

// TopTags returns all-time per-tag totals, highest first, truncated to limit
// (default when limit is not positive).
func (s *Service) TopTags(_ context.Context, limit int) ([]models.TagCount, error) {
	if limit <= 0 {
		limit = defaultTopTagsLimit
	}
	tags, err := s.store.TagTotals(limit)
	if err != nil {
		return nil, err
	}
	return nonNil(tags), nil
}

// PopularTags returns per-tag totals restricted to statistic dates within the
// period, highest first. Unknown period tokens fail with ErrInvalidPeriod.
func (s *Service) PopularTags(_ context.Context, period string, limit int) ([]models.TagCount, error) {
	start, err := periodStart(period, s.now())
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultPopularTagsLimit
	}
	tags, err := s.store.TagTotalsSince(start.UTC().Format(store.DateLayout), limit)
	if err != nil {
		return nil, err
	}
	return nonNil(tags), nil
}

// TopPosts returns the requested page of posts associated with tag and
// created within the period, ordered by points descending.
//
// Out-of-range pagination inputs are clamped, not rejected: page below 1
// becomes 1 and perPage outside [1,100] becomes the default 12. That silent
// clamp is a wart inherited from the original system and kept deliberately.
func (s *Service) TopPosts(_ context.Context, tag, period string, page, perPage int) (*TopPostsResult, error) {
	start, err := periodStart(period, s.now())
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > maxPerPage {
		perPage = defaultPerPage
	}

	tag = normalizeTag(tag)
	since := startOfDay(start)

	total, err := s.store.CountPostsByTag(tag, since)
	if err != nil {
		return nil, err
	}
	posts, err := s.store.PostsByTag(tag, since, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.Post{}
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + perPage - 1) / perPage
	}

	return &TopPostsResult{
		Posts: posts,
		Pagination: Pagination{
			CurrentPage: page,
			PerPage:     perPage,
			TotalPosts:  total,
			TotalPages:  totalPages,
			HasNext:     page < totalPages,
			HasPrev:     page > 1,
		},
	}, nil
}

// Runs returns the most recent scrape runs, newest first.
func (s *Service) Runs(_ context.Context, limit int) ([]models.ScrapeRun, error) {
	if limit <= 0 {
		limit = 20
	}
	runs, err := s.store.RecentRuns(limit)
	if err != nil {
		return nil, err
	}
	if runs == nil {
		runs = []models.ScrapeRun{}
	}
	return runs, nil
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

func nonNil(tags []models.TagCount) []models.TagCount {
	if tags == nil {
		return []models.TagCount{}
	}
	return tags
}
