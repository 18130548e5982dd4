// Package editorial delegates each section's pick to an external text
// generator and sanitizes whatever comes back into an exact-count,
// domain-capped selection.
package editorial

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jatayu/aiweekly/internal/logger"
	"github.com/jatayu/aiweekly/internal/metrics"
	"github.com/jatayu/aiweekly/internal/news"
	"github.com/jatayu/aiweekly/internal/section"
)

// Generator is the external text-generation collaborator. Its output
// carries no guarantees; the picker treats it as untrusted and applies
// sanitize+backfill unconditionally.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error)
}

// Config bounds one section's pick.
type Config struct {
	TopN          int // items chosen per section
	ShortlistSize int // candidates exposed to the generator
	DomainCap     int // max items per registrable domain within a section
}

func DefaultConfig() Config {
	return Config{TopN: 5, ShortlistSize: 30, DomainCap: 2}
}

// Picker chooses the top items for one section at a time.
type Picker struct {
	gen Generator
	cfg Config
}

func New(gen Generator, cfg Config) *Picker {
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultConfig().TopN
	}
	if cfg.ShortlistSize <= 0 {
		cfg.ShortlistSize = DefaultConfig().ShortlistSize
	}
	if cfg.DomainCap <= 0 {
		cfg.DomainCap = DefaultConfig().DomainCap
	}
	return &Picker{gen: gen, cfg: cfg}
}

const systemPrompt = "You are an editor for senior IT leaders. From the list, PICK EXACTLY N items " +
	"that maximize enterprise relevance, novelty, and decision value. Prefer freshness, " +
	"source diversity, and clear implications. Output ONLY JSON with keys 'picks' (array of indices) " +
	"and 'reasons' (map index->short reason). No other text."

// PickSection returns exactly min(TopN, shortlist size) chosen items for
// the section (unless the domain cap binds tighter), ranked densely from 1,
// no matter how the generator misbehaves. An empty candidate list returns
// empty, which is terminal but not an error.
func (p *Picker) PickSection(ctx context.Context, sec *section.Section, items []news.Item, now time.Time) []news.Scored {
	short := p.shortlist(items, now)
	if len(short) == 0 {
		return []news.Scored{}
	}

	n := p.cfg.TopN
	if n > len(short) {
		n = len(short)
	}

	resp := p.ask(ctx, sec, short, n)
	indices := sanitize(resp.Picks, len(short))
	indices = backfill(indices, n, len(short))

	// Domain cap: resolve indices in order, skipping exhausted domains.
	chosen := make([]news.Scored, 0, n)
	perDomain := make(map[string]int)
	for _, idx := range indices {
		it := short[idx-1]
		d := news.Domain(it.URL)
		perDomain[d]++
		if perDomain[d] > p.cfg.DomainCap {
			continue
		}
		chosen = append(chosen, news.Scored{
			Item:         it,
			Domain:       d,
			Rank:         len(chosen) + 1,
			EditorReason: resp.Reasons[idx],
		})
		if len(chosen) == n {
			break
		}
	}
	return chosen
}

// shortlist orders candidates freshest-first, longer-bodied first on equal
// age, and keeps the first ShortlistSize.
func (p *Picker) shortlist(items []news.Item, now time.Time) []news.Item {
	short := make([]news.Item, len(items))
	copy(short, items)
	sort.SliceStable(short, func(i, j int) bool {
		ai := news.AgeDays(short[i].Published, now)
		aj := news.AgeDays(short[j].Published, now)
		if ai != aj {
			return ai < aj
		}
		return len(short[i].Text) > len(short[j].Text)
	})
	if len(short) > p.cfg.ShortlistSize {
		short = short[:p.cfg.ShortlistSize]
	}
	return short
}

func (p *Picker) ask(ctx context.Context, sec *section.Section, short []news.Item, n int) PickResponse {
	if p.gen == nil {
		return PickResponse{}
	}
	raw, err := p.gen.Generate(ctx, buildPrompt(sec.Title, short, n), 900, 0.2)
	if err != nil {
		logger.Warn("section pick generation failed, backfilling", "section", sec.ID, "error", err)
		return PickResponse{}
	}
	return CoercePicks(raw)
}

func buildPrompt(sectionTitle string, short []news.Item, n int) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Section: %s\nPick exactly %d.\n\nCandidates (numbered):\n", sectionTitle, n)
	for i, it := range short {
		excerpt := strings.ReplaceAll(clipRunes(it.Text, 600), "\n", " ")
		fmt.Fprintf(&b, "%d. title=%s | source=%s | date=%s | url=%s\n   excerpt: %s\n",
			i+1, it.Title, it.Source, it.Published, it.URL, excerpt)
	}
	fmt.Fprintf(&b, "\nReturn JSON:\n{\n  \"picks\": [<exactly %d indices from 1..%d>],\n  \"reasons\": {\"<index>\":\"<why useful for leaders>\"}\n}\n", n, len(short))
	return b.String()
}

// sanitize keeps indices inside [1, limit], dropping duplicates while
// preserving first-seen order.
func sanitize(picks []int, limit int) []int {
	seen := make(map[int]struct{}, len(picks))
	out := make([]int, 0, len(picks))
	for _, p := range picks {
		if p < 1 || p > limit {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// backfill appends the lowest unused indices in ascending order until n
// picks exist or the shortlist is exhausted, so the picker returns
// min(n, limit) items even on total model failure.
func backfill(picks []int, n, limit int) []int {
	if n > limit {
		n = limit
	}
	used := make(map[int]struct{}, len(picks))
	for _, p := range picks {
		used[p] = struct{}{}
	}
	for k := 1; len(picks) < n && k <= limit; k++ {
		if _, ok := used[k]; ok {
			continue
		}
		picks = append(picks, k)
		used[k] = struct{}{}
		metrics.Global.IncrementPicksBackfilled()
	}
	return picks
}

func clipRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
