package presence

import (
	"strings"
	"time"

	"showroom-presence-svc/src/internal/models"
)

// BrowserFamily classifies a user agent by substring. Order matters: Chrome
// agents also mention Safari, and Edge agents mention Chrome.
func BrowserFamily(userAgent string) string {
	switch {
	case strings.Contains(userAgent, "Chrome"):
		return "Chrome"
	case strings.Contains(userAgent, "Firefox"):
		return "Firefox"
	case strings.Contains(userAgent, "Safari"):
		return "Safari"
	case strings.Contains(userAgent, "Edge"):
		return "Edge"
	default:
		return UnknownBrowser
	}
}

// aggregate derives the stats breakdowns from one snapshot. The activity
// tiers partition the records: a record counted in the recent tier is not
// counted again in the timeout tier.
func aggregate(snapshot []Record, now time.Time, recent, timeout time.Duration) *models.Stats {
	stats := &models.Stats{
		TotalSessions:       len(snapshot),
		PagesVisited:        make(map[string]int),
		BrowserDistribution: make(map[string]int),
	}

	for _, rec := range snapshot {
		idle := rec.Idle(now)
		if idle < recent {
			stats.ActiveLastMinute++
		} else if idle < timeout {
			stats.ActiveLast5Minutes++
		}

		stats.PagesVisited[valueOr(rec.CurrentPage, DefaultPage)]++
		stats.BrowserDistribution[BrowserFamily(rec.UserAgent)]++
	}

	return stats
}
