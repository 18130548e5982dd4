// Package collector fetches candidates from RSS feeds and the arXiv API
// and extracts readable body text. It sits outside the ranking core and
// only produces the candidates JSONL the core consumes.
package collector

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/jatayu/aiweekly/internal/logger"
	"github.com/jatayu/aiweekly/internal/metrics"
	"github.com/jatayu/aiweekly/internal/news"
	"github.com/jatayu/aiweekly/internal/storage"
)

// FeedSource is one entry in feeds.yaml.
type FeedSource struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type feedsConfig struct {
	Sources []FeedSource `yaml:"sources"`
}

// LoadFeeds reads the RSS source list.
func LoadFeeds(path string) ([]FeedSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feeds config: %w", err)
	}
	defer f.Close()

	var cfg feedsConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode feeds config: %w", err)
	}
	return cfg.Sources, nil
}

// Options bounds a collection run.
type Options struct {
	RecentDays     int
	MaxPerFeed     int
	TextLimit      int
	Concurrency    int
	RequestTimeout time.Duration
}

// CollectRSS fetches every feed, scrapes body text for recent entries and
// appends new candidates to the JSONL file. Feed failures are logged and
// skipped; the run never aborts on a single bad source.
func CollectRSS(ctx context.Context, sources []FeedSource, candidatesPath string, opts Options) (int, error) {
	if opts.RecentDays <= 0 {
		opts.RecentDays = 7
	}
	if opts.MaxPerFeed <= 0 {
		opts.MaxPerFeed = 50
	}
	if opts.TextLimit <= 0 {
		opts.TextLimit = 20000
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}

	seen := storage.ExistingURLs(candidatesPath)
	parser := gofeed.NewParser()
	client := newHTTPClient(opts.RequestTimeout)
	cutoff := time.Now().UTC().AddDate(0, 0, -opts.RecentDays)

	type pending struct {
		item news.Item
	}
	var toScrape []pending

	okFeeds := 0
	for _, src := range sources {
		feed, err := parser.ParseURLWithContext(src.URL, ctx)
		if err != nil {
			logger.Warn("feed parse failed", "url", src.URL, "error", err)
			continue
		}
		okFeeds++

		count := 0
		for _, e := range feed.Items {
			if count >= opts.MaxPerFeed {
				break
			}
			published := publishedTime(e)
			if published.Before(cutoff) {
				continue
			}
			if e.Link == "" {
				continue
			}
			if _, dup := seen[e.Link]; dup {
				continue
			}
			seen[e.Link] = struct{}{}
			toScrape = append(toScrape, pending{item: news.Item{
				Title:     trimmedTitle(e.Title),
				URL:       e.Link,
				Source:    src.Name,
				Published: published.Format(time.RFC3339),
			}})
			count++
		}
		logger.Info("feed loaded", "source", src.Name, "entries", count)
	}
	logger.Info("feeds processed", "ok", okFeeds, "total", len(sources))

	// Scrape bodies with bounded concurrency; a failed extraction keeps
	// the candidate with an empty body.
	texts := make([]string, len(toScrape))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i := range toScrape {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			text, err := ExtractText(client, toScrape[i].item.URL)
			if err != nil {
				logger.Debug("text extraction failed", "url", toScrape[i].item.URL, "error", err)
				return nil
			}
			mu.Lock()
			texts[i] = text
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	items := make([]news.Item, 0, len(toScrape))
	for i, p := range toScrape {
		p.item.Text = clipText(texts[i], opts.TextLimit)
		items = append(items, p.item)
	}

	if err := storage.AppendCandidates(candidatesPath, items); err != nil {
		return 0, err
	}
	metrics.Global.IncrementItemsCollected(len(items))
	return len(items), nil
}

func publishedTime(e *gofeed.Item) time.Time {
	if e.PublishedParsed != nil {
		return e.PublishedParsed.UTC()
	}
	if e.UpdatedParsed != nil {
		return e.UpdatedParsed.UTC()
	}
	return time.Now().UTC()
}

func trimmedTitle(title string) string {
	return strings.Join(strings.Fields(title), " ")
}

func clipText(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
