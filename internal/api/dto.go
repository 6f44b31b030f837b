package api

import (
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/trends"
)

// ScrapeResponse summarizes one triggered scrape run.
type ScrapeResponse struct {
	Message string           `json:"message"`
	Run     models.ScrapeRun `json:"run"`
}

// TagListResponse wraps aggregated tag counts.
type TagListResponse struct {
	Tags []models.TagCount `json:"tags"`
}

// HistoryResponse is a dense daily series for one tag.
type HistoryResponse struct {
	Tag     string              `json:"tag"`
	History []models.DailyCount `json:"history"`
}

// TopPostsResponse is a page of posts plus its pagination envelope
// (aliased from the domain layer).
type TopPostsResponse = trends.TopPostsResult

// RunListResponse wraps recent scrape runs.
type RunListResponse struct {
	Runs []models.ScrapeRun `json:"runs"`
}
