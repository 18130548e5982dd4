// Package news holds the candidate item model shared by every pipeline stage.
package news

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// StaleAgeDays is assigned when a published timestamp cannot be parsed,
// pushing the item to zero freshness instead of failing the run.
const StaleAgeDays = 999

// Item is one raw candidate produced by the collectors. The URL is the
// identity key within a run; collectors never emit two items with the
// same URL.
type Item struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Source    string `json:"source"`
	Published string `json:"published"` // RFC3339 UTC, may be empty
	Text      string `json:"text"`      // extracted body, possibly empty

	SectionID    string `json:"section_id,omitempty"`
	SectionTitle string `json:"section_title,omitempty"`
	SectionIndex int    `json:"section_index,omitempty"`
}

// AxisScores holds the per-axis signals, each clamped to [0,1].
type AxisScores struct {
	Tech float64 `json:"tech"`
	App  float64 `json:"app"`
	Biz  float64 `json:"biz"`
}

// Scored is an Item annotated by the axis scorer. Rank stays zero until a
// selector assigns it; ranks are dense from 1 within their scope.
type Scored struct {
	Item
	Axes       AxisScores `json:"axes"`
	FinalScore float64    `json:"final_score"`
	Domain     string     `json:"domain"`
	Rank       int        `json:"rank,omitempty"`

	SummaryP1 string `json:"summary_p1,omitempty"`
	SummaryP2 string `json:"summary_p2,omitempty"`

	EditorReason string `json:"editor_reason,omitempty"`
}

// Domain extracts the registrable domain from a URL, lowercased and with a
// leading www. stripped. Anything unparseable maps to "unknown".
func Domain(rawURL string) string {
	if rawURL == "" {
		return "unknown"
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	if host == "" {
		return "unknown"
	}
	return host
}

// AgeDays returns whole days between the published timestamp and now,
// clamped at zero for future dates. Empty or unparseable timestamps count
// as maximally stale.
func AgeDays(published string, now time.Time) int {
	if published == "" {
		return StaleAgeDays
	}
	t, err := parsePublished(published)
	if err != nil {
		return StaleAgeDays
	}
	days := int(now.UTC().Sub(t.UTC()).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func parsePublished(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized published timestamp %q", s)
}
