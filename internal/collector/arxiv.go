package collector

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"gopkg.in/yaml.v3"

	"github.com/jatayu/aiweekly/internal/logger"
	"github.com/jatayu/aiweekly/internal/metrics"
	"github.com/jatayu/aiweekly/internal/news"
	"github.com/jatayu/aiweekly/internal/storage"
)

const arxivAPI = "http://export.arxiv.org/api/query"

// ArxivConfig is the arxiv.yaml shape.
type ArxivConfig struct {
	Categories      []string `yaml:"categories"`
	DaysBack        int      `yaml:"days_back"`
	MaxResults      int      `yaml:"max_results"`
	IncludeKeywords []string `yaml:"include_keywords"`
	ExcludeKeywords []string `yaml:"exclude_keywords"`
	MinChars        int      `yaml:"min_chars"`
}

// LoadArxivConfig reads arxiv.yaml, applying the usual defaults.
func LoadArxivConfig(path string) (ArxivConfig, error) {
	cfg := ArxivConfig{
		Categories: []string{"cs.AI", "cs.CL", "cs.LG", "stat.ML"},
		DaysBack:   8,
		MaxResults: 400,
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read arxiv config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("decode arxiv config: %w", err)
	}
	return cfg, nil
}

// CollectArxiv queries the arXiv Atom API across all configured
// categories (newest first) and appends matching abstracts as candidates.
// The abstract serves as the body text; no scraping needed.
func CollectArxiv(ctx context.Context, cfg ArxivConfig, candidatesPath string, textLimit int) (int, error) {
	if textLimit <= 0 {
		textLimit = 20000
	}

	cats := make([]string, 0, len(cfg.Categories))
	for _, c := range cfg.Categories {
		cats = append(cats, "cat:"+c)
	}
	params := url.Values{
		"search_query": {strings.Join(cats, " OR ")},
		"sortBy":       {"submittedDate"},
		"sortOrder":    {"descending"},
		"max_results":  {fmt.Sprintf("%d", cfg.MaxResults)},
	}

	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	feed, err := parser.ParseURLWithContext(arxivAPI+"?"+params.Encode(), ctx)
	if err != nil {
		return 0, fmt.Errorf("query arXiv API: %w", err)
	}

	seen := storage.ExistingURLs(candidatesPath)
	cutoff := time.Now().UTC().AddDate(0, 0, -cfg.DaysBack)

	var items []news.Item
	for _, e := range feed.Items {
		published := publishedTime(e)
		if published.Before(cutoff) {
			continue
		}
		title := trimmedTitle(e.Title)
		abstract := strings.TrimSpace(e.Description)
		if len(abstract) < cfg.MinChars {
			continue
		}
		link := e.Link
		if link == "" {
			continue
		}
		if _, dup := seen[link]; dup {
			continue
		}

		hay := strings.ToLower(title + " " + abstract)
		if len(cfg.IncludeKeywords) > 0 && !containsAnyKeyword(hay, cfg.IncludeKeywords) {
			continue
		}
		if containsAnyKeyword(hay, cfg.ExcludeKeywords) {
			continue
		}

		seen[link] = struct{}{}
		items = append(items, news.Item{
			Title:     title,
			URL:       link,
			Source:    arxivSource(e),
			Published: published.Format(time.RFC3339),
			Text:      clipText(abstract, textLimit),
		})
	}

	if err := storage.AppendCandidates(candidatesPath, items); err != nil {
		return 0, err
	}
	metrics.Global.IncrementItemsCollected(len(items))
	logger.Info("arXiv collected", "added", len(items), "entries", len(feed.Items))
	return len(items), nil
}

func containsAnyKeyword(hay string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(hay, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

func arxivSource(e *gofeed.Item) string {
	for _, c := range e.Categories {
		if c != "" {
			return "arXiv " + c
		}
	}
	return "arXiv"
}
