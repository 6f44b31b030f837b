// Package models defines the domain types for Ansuz.
package models

import (
	"time"

	"github.com/google/uuid"
)

// RawPost is a single post record as produced by the scraper, before any
// persistence. URL and Author may be empty when the source row lacked them.
type RawPost struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Author    string    `json:"author"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"created_at"`
}

// Post is a stored post. Points accumulate across sightings of the same ID;
// every other field is fixed at first insert.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	URL       string    `json:"url,omitempty"`
	Author    string    `json:"author,omitempty"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"created_at"`
}

// TagCount is a tag with an aggregated occurrence count.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// DailyCount is one day of a tag's history series.
type DailyCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// ScrapeRun records one ingestion pass over the front page.
type ScrapeRun struct {
	ID         uuid.UUID `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	Posts      int       `json:"posts"`
	TagMatches int       `json:"tag_matches"`
}
