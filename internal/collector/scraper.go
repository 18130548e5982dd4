package collector

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const userAgent = "aiweekly/1.0 (+digest collector)"

// articleSelectors is tried in order; the first selector yielding enough
// paragraphs wins.
var articleSelectors = []string{
	"article p",
	".article-body p",
	".article-content p",
	".post-content p",
	".entry-content p",
	".content p",
	"main p",
	"p",
}

var junkIndicators = []string{
	"cookie", "gdpr", "subscribe", "newsletter", "advertisement",
	"sign up", "log in", "follow us", "share this", "read more",
}

// ExtractText fetches a page and pulls readable body text out of it.
// Returns an empty string (with the error) when nothing useful was found;
// callers treat that as a degraded candidate, not a failure.
func ExtractText(client *http.Client, url string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	return extractParagraphs(doc), nil
}

func extractParagraphs(doc *goquery.Document) string {
	var best []string
	for _, selector := range articleSelectors {
		var got []string
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) < 20 || isJunk(text) {
				return
			}
			got = append(got, text)
		})
		if len(got) >= 3 {
			return strings.Join(got, "\n\n")
		}
		if len(got) > len(best) {
			best = got
		}
	}
	return strings.Join(best, "\n\n")
}

func isJunk(line string) bool {
	lower := strings.ToLower(line)
	for _, ind := range junkIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
