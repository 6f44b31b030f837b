package trends

import (
	"fmt"
	"time"

	"github.com/starford/ansuz/internal/apperr"
)

// Lookback windows accepted by the popularity and top-posts queries.
// "1m" means 30 days.
var periodDays = map[string]int{
	"1d": 1,
	"3d": 3,
	"1w": 7,
	"2w": 14,
	"1m": 30,
}

// Periods returns the recognized period tokens.
func Periods() []string {
	return []string{"1d", "3d", "1w", "2w", "1m"}
}

// periodStart resolves a period token to its window start relative to now.
func periodStart(token string, now time.Time) (time.Time, error) {
	days, ok := periodDays[token]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", apperr.ErrInvalidPeriod, token)
	}
	return now.AddDate(0, 0, -days), nil
}

// startOfDay truncates t to midnight UTC.
func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
