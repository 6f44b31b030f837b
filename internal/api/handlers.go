package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/sse"
	"github.com/starford/ansuz/internal/trends"
)

// Fetcher produces raw posts from the external front page.
type Fetcher interface {
	Fetch(ctx context.Context) ([]models.RawPost, error)
}

// Handler holds API route handlers.
type Handler struct {
	svc     *trends.Service
	fetcher Fetcher
	broker  *sse.Broker
}

// NewHandler creates a new Handler. broker may be nil when no event feed is
// wired (e.g. in tests).
func NewHandler(svc *trends.Service, fetcher Fetcher, broker *sse.Broker) *Handler {
	return &Handler{svc: svc, fetcher: fetcher, broker: broker}
}

// Scrape handles POST /api/scrape: fetch the front page and run it through
// the ingestion pipeline.
func (h *Handler) Scrape(w http.ResponseWriter, r *http.Request) {
	posts, err := h.fetcher.Fetch(r.Context())
	if err != nil {
		slog.Error("scrape fetch failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, errorBody("scrape failed"))
		return
	}

	run, err := h.svc.Ingest(r.Context(), posts)
	if err != nil {
		slog.Error("ingest failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	if h.broker != nil {
		h.broker.PublishScrapeRun(*run)
	}

	writeJSON(w, http.StatusOK, ScrapeResponse{
		Message: fmt.Sprintf("%d posts scraped and saved.", run.Posts),
		Run:     *run,
	})
}

// TopTags handles GET /api/tags.
func (h *Handler) TopTags(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	tags, err := h.svc.TopTags(r.Context(), limit)
	if err != nil {
		slog.Error("top tags failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, TagListResponse{Tags: tags})
}

// PopularTags handles GET /api/tags/popular.
func (h *Handler) PopularTags(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	period := q.Get("period")
	if period == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'period' is required"))
		return
	}
	limit, _ := strconv.Atoi(q.Get("limit"))

	tags, err := h.svc.PopularTags(r.Context(), period, limit)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidPeriod) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		} else {
			slog.Error("popular tags failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, TagListResponse{Tags: tags})
}

// TagHistory handles GET /api/tags/history/{tag}.
func (h *Handler) TagHistory(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	if tag == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("tag is required"))
		return
	}

	history, err := h.svc.History(r.Context(), tag)
	if err != nil {
		slog.Error("tag history failed", slog.String("tag", tag), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, HistoryResponse{Tag: tag, History: history})
}

// TopPosts handles GET /api/posts/top.
func (h *Handler) TopPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tag := q.Get("tag")
	period := q.Get("period")
	if tag == "" || period == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameters 'tag' and 'period' are required"))
		return
	}
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	res, err := h.svc.TopPosts(r.Context(), tag, period, page, perPage)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidPeriod) {
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		} else {
			slog.Error("top posts failed", slog.String("tag", tag), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Runs handles GET /api/scrape/runs.
func (h *Handler) Runs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	runs, err := h.svc.Runs(r.Context(), limit)
	if err != nil {
		slog.Error("list runs failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, RunListResponse{Runs: runs})
}
