package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jatayu/aiweekly/internal/collector"
	"github.com/jatayu/aiweekly/internal/config"
	"github.com/jatayu/aiweekly/internal/editorial"
	"github.com/jatayu/aiweekly/internal/gemini"
	"github.com/jatayu/aiweekly/internal/logger"
	"github.com/jatayu/aiweekly/internal/metrics"
	"github.com/jatayu/aiweekly/internal/rank"
	"github.com/jatayu/aiweekly/internal/ratelimit"
	"github.com/jatayu/aiweekly/internal/retry"
	"github.com/jatayu/aiweekly/internal/section"
	"github.com/jatayu/aiweekly/internal/storage"
	"github.com/jatayu/aiweekly/internal/summary"
)

// App owns the configured pipeline. The Gemini client is optional: with
// no API key every stage degrades deterministically (lexical scoring,
// backfilled picks, preview summaries).
type App struct {
	cfg *config.Config
	ai  *gemini.Client
}

func New(cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set, running fully degraded (lexical scoring, backfilled picks)")
		return a, nil
	}

	limiter := ratelimit.New(cfg.MaxGenerateRequests, cfg.MaxEmbedRequests, cfg.SelectorPause)
	client, err := gemini.NewClient(context.Background(), cfg.GeminiAPIKey,
		gemini.WithModels(cfg.GeminiModel, cfg.EmbedModel),
		gemini.WithLimiter(limiter),
		gemini.WithRetry(retry.Config{
			MaxAttempts: cfg.RetryAttempts,
			Delay:       cfg.RetryDelay,
			Backoff:     true,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("init gemini: %w", err)
	}
	a.ai = client
	return a, nil
}

func (a *App) Close() {
	if a.ai != nil {
		a.ai.Close()
	}
}

// recordErr notes a stage failure in the run metrics before returning it.
func recordErr(err error) error {
	if err != nil {
		metrics.Global.SetError(err.Error())
	}
	return err
}

// Collect runs the RSS and arXiv collectors, appending to the candidates
// JSONL.
func (a *App) Collect(ctx context.Context) error {
	return recordErr(a.collect(ctx))
}

func (a *App) collect(ctx context.Context) error {
	sources, err := collector.LoadFeeds(a.cfg.FeedsConfigPath)
	if err != nil {
		return err
	}
	opts := collector.Options{
		RecentDays:     a.cfg.RecentDays,
		MaxPerFeed:     a.cfg.MaxPerFeed,
		TextLimit:      a.cfg.TextLimit,
		Concurrency:    a.cfg.ScrapeConcurrency,
		RequestTimeout: a.cfg.RequestTimeout,
	}
	fromRSS, err := collector.CollectRSS(ctx, sources, a.cfg.CandidatesPath, opts)
	if err != nil {
		return fmt.Errorf("rss collection: %w", err)
	}

	arxivCfg, err := collector.LoadArxivConfig(a.cfg.ArxivConfigPath)
	if err != nil {
		return err
	}
	fromArxiv, err := collector.CollectArxiv(ctx, arxivCfg, a.cfg.CandidatesPath, a.cfg.TextLimit)
	if err != nil {
		// arXiv being down should not lose the RSS harvest.
		logger.Warn("arXiv collection failed", "error", err)
	}

	logger.Info("collection complete", "rss", fromRSS, "arxiv", fromArxiv)
	return nil
}

// Rank produces the global top-N shortlist.
func (a *App) Rank(ctx context.Context) error {
	return recordErr(a.rank(ctx))
}

func (a *App) rank(ctx context.Context) error {
	start := time.Now()
	defer func() {
		metrics.Global.RecordProcessingTime(time.Since(start))
		metrics.Global.SetLastRun()
	}()

	items, err := storage.LoadCandidates(a.cfg.CandidatesPath)
	if err != nil {
		return err
	}
	scoreCfg, err := config.LoadScoreConfig(a.cfg.WeightsConfigPath)
	if err != nil {
		return err
	}

	var emb rank.Embedder
	if a.ai != nil {
		emb = a.ai
	}
	top := RankTop(ctx, items, scoreCfg, emb, RankOptions{
		TopN:      a.cfg.TopN,
		DomainCap: a.cfg.DomainCap,
		Diversity: a.cfg.Diversity,
	}, time.Now())

	if err := storage.WriteResults(a.cfg.TopPath, top); err != nil {
		return err
	}
	logger.Info("wrote shortlist", "path", a.cfg.TopPath, "items", len(top))
	return nil
}

// Select produces the per-section picks.
func (a *App) Select(ctx context.Context) error {
	return recordErr(a.selectPicks(ctx))
}

func (a *App) selectPicks(ctx context.Context) error {
	items, err := storage.LoadCandidates(a.cfg.CandidatesPath)
	if err != nil {
		return err
	}
	tax, err := section.Load(a.cfg.SectionsConfigPath)
	if err != nil {
		return err
	}

	var gen editorial.Generator
	if a.ai != nil {
		gen = a.ai
	}
	picker := editorial.New(gen, editorial.Config{
		TopN:          a.cfg.TopPerSection,
		ShortlistSize: a.cfg.ShortlistPerSection,
		DomainCap:     a.cfg.DomainCapPerSection,
	})

	var pacer Pacer
	if a.ai != nil {
		pacer = a.ai
	}
	selected := SelectSections(ctx, items, tax, picker, pacer, time.Now())

	if err := storage.WriteResults(a.cfg.SelectedPath, selected); err != nil {
		return err
	}
	logger.Info("wrote section picks", "path", a.cfg.SelectedPath, "items", len(selected))
	return nil
}

// Summarize fills long-form summaries for the selected items, reusing the
// on-disk cache.
func (a *App) Summarize(ctx context.Context) error {
	return recordErr(a.summarize(ctx))
}

func (a *App) summarize(ctx context.Context) error {
	selected, err := storage.LoadResults(a.cfg.SelectedPath)
	if err != nil {
		return err
	}

	cache := storage.NewSummaryCache(a.cfg.SummaryCachePath)
	if err := cache.Load(); err != nil {
		logger.Warn("summary cache unreadable, starting empty", "error", err)
	}

	var gen summary.Generator
	var pacer summary.Pacer
	if a.ai != nil {
		gen = a.ai
		pacer = pausePacer{delay: a.cfg.SummaryPause}
	}
	s := summary.New(gen, pacer, cache, summary.DefaultConfig())
	out := s.SummarizeAll(ctx, selected)

	if err := cache.Save(); err != nil {
		logger.Warn("summary cache not saved", "error", err)
	}
	if err := storage.WriteResults(a.cfg.SelectedPath, out); err != nil {
		return err
	}
	logger.Info("wrote summaries", "path", a.cfg.SelectedPath, "cached", cache.Len())
	return nil
}

// pausePacer sleeps a fixed delay between summarization calls; the
// selector pause is owned by the rate limiter instead.
type pausePacer struct {
	delay time.Duration
}

func (p pausePacer) Pace(ctx context.Context) {
	if p.delay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(p.delay):
	}
}

// Run executes the full pipeline in order.
func (a *App) Run(ctx context.Context) error {
	if err := a.Collect(ctx); err != nil {
		return err
	}
	if err := a.Rank(ctx); err != nil {
		return err
	}
	if err := a.Select(ctx); err != nil {
		return err
	}
	if err := a.Summarize(ctx); err != nil {
		return err
	}
	logger.Info("pipeline complete", "stats", metrics.Global.GetStats())
	return nil
}
