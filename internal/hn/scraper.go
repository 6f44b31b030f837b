// Package hn scrapes the Hacker News front page into raw post records.
package hn

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/starford/ansuz/internal/models"
)

// Scraper fetches and parses the front page.
type Scraper struct {
	url       string
	userAgent string
	client    *http.Client
	now       func() time.Time
}

// New creates a scraper for the given front-page URL.
func New(url, userAgent string, timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Scraper{
		url:       url,
		userAgent: userAgent,
		client:    &http.Client{Timeout: timeout},
		now:       time.Now,
	}
}

// Fetch downloads the front page and returns its posts. The returned slice
// may be empty when the page layout yields no parseable rows; that is the
// caller's no-op case, not an error.
func (s *Scraper) Fetch(ctx context.Context) ([]models.RawPost, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("hn: build request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hn: fetch %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hn: fetch %s: unexpected status %d", s.url, resp.StatusCode)
	}

	return s.Parse(resp.Body)
}

// Parse extracts posts from front-page HTML. Each story is a tr.athing row
// holding the id and title link, followed by a sibling row with the score
// and author. Rows missing a title are skipped; missing score or author just
// leave those fields zero.
func (s *Scraper) Parse(r io.Reader) ([]models.RawPost, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("hn: parse html: %w", err)
	}

	observed := s.now().UTC()

	var posts []models.RawPost
	doc.Find("tr.athing").Each(func(_ int, row *goquery.Selection) {
		id, ok := row.Attr("id")
		if !ok || id == "" {
			return
		}
		titleLink := row.Find(".titleline > a").First()
		title := strings.TrimSpace(titleLink.Text())
		if title == "" {
			return
		}
		href, _ := titleLink.Attr("href")

		subtext := row.Next()
		author := strings.TrimSpace(subtext.Find(".hnuser").First().Text())
		points := parsePoints(subtext.Find(".score").First().Text())

		posts = append(posts, models.RawPost{
			ID:        id,
			Title:     title,
			URL:       href,
			Author:    author,
			Points:    points,
			CreatedAt: observed,
		})
	})

	return posts, nil
}

// parsePoints reads "123 points" (or "1 point") into an integer, zero when
// the element is absent or malformed.
func parsePoints(text string) int {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return 0
	}
	return n
}
