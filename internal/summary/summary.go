// Package summary produces the two-paragraph long-form summaries for
// selected items, and the cheap lexical preview attached to every scored
// row.
package summary

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jatayu/aiweekly/internal/editorial"
	"github.com/jatayu/aiweekly/internal/logger"
	"github.com/jatayu/aiweekly/internal/metrics"
	"github.com/jatayu/aiweekly/internal/news"
	"github.com/jatayu/aiweekly/internal/storage"
)

var sentenceRe = regexp.MustCompile(`(?s)(.*?[.!?])\s+`)

// Preview returns the first two sentences of text, falling back to a
// 240-rune slice when no sentence boundary is found. Pure, no provider.
func Preview(text string) string {
	t := strings.TrimSpace(text)
	if t == "" {
		return ""
	}
	matches := sentenceRe.FindAllStringSubmatch(t+" ", 2)
	if len(matches) > 0 {
		parts := make([]string, 0, 2)
		for _, m := range matches {
			parts = append(parts, strings.TrimSpace(m[1]))
		}
		return strings.Join(parts, " ")
	}
	if utf8.RuneCountInString(t) > 240 {
		return string([]rune(t)[:240])
	}
	return t
}

// Generator matches the text-generation collaborator (same contract as the
// editorial picker's).
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error)
}

// Pacer inserts the mandatory delay between sequential provider calls.
type Pacer interface {
	Pace(ctx context.Context)
}

// Config bounds one summarization call.
type Config struct {
	MaxInputChars int // article context given to the model
	MaxTokens     int // output budget
}

func DefaultConfig() Config {
	return Config{MaxInputChars: 24000, MaxTokens: 1400}
}

// Summarizer generates summaries through the provider, guarded by the
// file-backed cache so identical (title, url) items never pay twice.
type Summarizer struct {
	gen   Generator
	pacer Pacer
	cache *storage.SummaryCache
	cfg   Config
}

func New(gen Generator, pacer Pacer, cache *storage.SummaryCache, cfg Config) *Summarizer {
	if cfg.MaxInputChars <= 0 {
		cfg.MaxInputChars = DefaultConfig().MaxInputChars
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultConfig().MaxTokens
	}
	return &Summarizer{gen: gen, pacer: pacer, cache: cache, cfg: cfg}
}

// Summarize returns the two-paragraph summary for an item. The cache is
// consulted before any external call; a failed or absent provider degrades
// to the deterministic preview, never an error.
func (s *Summarizer) Summarize(ctx context.Context, it news.Item) storage.CachedSummary {
	var key string
	if s.cache != nil {
		key = s.cache.Key(it.Title, it.URL)
		if cached, ok := s.cache.Get(key); ok && cached.P1 != "" {
			metrics.Global.IncrementSummariesCached()
			return cached
		}
	}

	out := s.generate(ctx, it)
	if out.P1 == "" {
		out = storage.CachedSummary{
			P1: Preview(it.Text),
			P2: "Why it matters: implications for enterprises/security/business.",
		}
	}

	if s.cache != nil && out.P1 != "" {
		s.cache.Put(key, out)
	}
	return out
}

func (s *Summarizer) generate(ctx context.Context, it news.Item) storage.CachedSummary {
	if s.gen == nil {
		return storage.CachedSummary{}
	}

	raw, err := s.gen.Generate(ctx, s.prompt(it), s.cfg.MaxTokens, 0.2)
	if s.pacer != nil {
		s.pacer.Pace(ctx)
	}
	if err != nil {
		logger.Warn("summary generation failed, using preview fallback", "url", it.URL, "error", err)
		return storage.CachedSummary{}
	}

	var payload struct {
		P1 string `json:"summary_p1"`
		P2 string `json:"summary_p2"`
	}
	if err := editorial.LenientUnmarshal(raw, &payload); err != nil {
		logger.Warn("summary response was not JSON, using preview fallback", "url", it.URL)
		return storage.CachedSummary{}
	}
	metrics.Global.IncrementSummariesGenerated()
	return storage.CachedSummary{
		P1: strings.TrimSpace(payload.P1),
		P2: strings.TrimSpace(payload.P2),
	}
}

func (s *Summarizer) prompt(it news.Item) string {
	text := it.Text
	if len(text) > s.cfg.MaxInputChars {
		cut := s.cfg.MaxInputChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return fmt.Sprintf(`You are an expert AI/ML analyst writing long-form summaries for enterprise readers. Return ONLY valid JSON with keys summary_p1 and summary_p2 (no other keys, no preface). Both values must be plain text paragraphs (no bullets). Write with high factual discipline; if metrics/datasets/limits aren't stated, say 'not stated'.

Title: %s
URL: %s

Article (truncated to provide context):
%s

Write TWO paragraphs in JSON (keys: summary_p1, summary_p2).
- summary_p1 (WHAT + HOW): cover novelty, method/architecture, data/training, evals/metrics, limitations.
- summary_p2 (WHY IT MATTERS): map to enterprise use-cases, security/GRC implications, ops/perf, cost, ROI, adoption risks.
- Use concrete details and numbers when available; do not invent facts. No citations or quotes.
Return ONLY JSON.`, it.Title, it.URL, text)
}

// SummarizeAll fills SummaryP1/P2 for every selected item in order.
func (s *Summarizer) SummarizeAll(ctx context.Context, items []news.Scored) []news.Scored {
	start := time.Now()
	out := make([]news.Scored, len(items))
	copy(out, items)
	for i := range out {
		sum := s.Summarize(ctx, out[i].Item)
		out[i].SummaryP1 = sum.P1
		out[i].SummaryP2 = sum.P2
	}
	logger.Info("summaries ready", "items", len(out), "took", time.Since(start).Round(time.Millisecond))
	return out
}
