// Package api implements the Ansuz REST API using chi.
package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/sse"
	"github.com/starford/ansuz/internal/trends"
)

// NewRouter creates a chi router with all API routes mounted.
// broker, if non-nil, also serves the SSE feed at GET /events.
func NewRouter(svc *trends.Service, fetcher Fetcher, broker *sse.Broker) chi.Router {
	h := NewHandler(svc, fetcher, broker)

	r := chi.NewRouter()

	// Scraping.
	r.Post("/scrape", h.Scrape)
	r.Get("/scrape/runs", h.Runs)

	// Tag statistics.
	r.Get("/tags", h.TopTags)
	r.Get("/tags/popular", h.PopularTags)
	r.Get("/tags/history/{tag}", h.TagHistory)

	// Posts.
	r.Get("/posts/top", h.TopPosts)

	// SSE event feed.
	if broker != nil {
		r.Get("/events", broker.ServeHTTP)
	}

	return r
}
