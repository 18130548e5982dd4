// Package app wires the collectors, the ranking core, the section picker
// and the summarizer into the digest pipeline.
package app

import (
	"context"
	"time"

	"github.com/jatayu/aiweekly/internal/editorial"
	"github.com/jatayu/aiweekly/internal/logger"
	"github.com/jatayu/aiweekly/internal/metrics"
	"github.com/jatayu/aiweekly/internal/news"
	"github.com/jatayu/aiweekly/internal/rank"
	"github.com/jatayu/aiweekly/internal/section"
	"github.com/jatayu/aiweekly/internal/summary"
)

// RankOptions bounds the global ranking pass.
type RankOptions struct {
	TopN      int
	DomainCap int
	Diversity float64
}

// RankTop runs the global path: dedup → score → domain cap → MMR. The
// embedder may be nil (lexical-only). An empty pool returns empty, never
// an error.
func RankTop(ctx context.Context, items []news.Item, scoreCfg rank.ScoreConfig, emb rank.Embedder, opts RankOptions, now time.Time) []news.Scored {
	deduped := rank.Dedup(items)
	logger.Info("dedup complete", "in", len(items), "kept", len(deduped))

	scored, vectors := rank.ScoreAll(ctx, deduped, scoreCfg, emb, now)
	for i := range scored {
		scored[i].SummaryP1 = summary.Preview(scored[i].Text)
		scored[i].SummaryP2 = "Why it matters: enterprise/security & business relevance at-a-glance."
		metrics.Global.IncrementItemsScored()
	}

	// The capper needs score order; carry each kept item's original pool
	// index so MMR can keep using the run's embedding vectors.
	sorted := rank.SortByScore(scored)
	sortedIdx := originalIndices(scored, sorted)

	capped, keptPos := rank.CapByDomain(sorted, opts.DomainCap)

	var sim rank.SimilarityFunc
	if vectors != nil {
		cappedVectors := make([][]float32, len(keptPos))
		for i, pos := range keptPos {
			cappedVectors[i] = vectors[sortedIdx[pos]]
		}
		sim = rank.VectorSimilarity(cappedVectors)
	} else {
		sim = rank.TitleSimilarityFunc(capped)
	}

	top := rank.MMRSelect(capped, sim, opts.TopN, opts.Diversity)
	logger.Info("ranking complete", "pool", len(capped), "selected", len(top))
	return top
}

// originalIndices maps each position in sorted back to its index in the
// pre-sort slice. URLs identify items within a run, so the mapping keys
// on URL with a fallback to first-unused matching position.
func originalIndices(orig, sorted []news.Scored) []int {
	byURL := make(map[string][]int, len(orig))
	for i, s := range orig {
		byURL[s.URL] = append(byURL[s.URL], i)
	}
	out := make([]int, len(sorted))
	for i, s := range sorted {
		idxs := byURL[s.URL]
		out[i] = idxs[0]
		byURL[s.URL] = idxs[1:]
	}
	return out
}

// Pacer is the between-calls delay hook, satisfied by the Gemini client.
type Pacer interface {
	Pace(ctx context.Context)
}

// SelectSections classifies candidates into the taxonomy and runs the LLM
// picker for each section in taxonomy order, pacing between calls. The
// result is the concatenation of per-section picks, each ranked 1..n
// within its section.
func SelectSections(ctx context.Context, items []news.Item, tax *section.Taxonomy, picker *editorial.Picker, pacer Pacer, now time.Time) []news.Scored {
	deduped := rank.Dedup(items)
	bySection := tax.Assign(deduped)

	var out []news.Scored
	for _, sid := range tax.Order {
		sec := tax.ByID(sid)
		if sec == nil {
			logger.Warn("order references unknown section", "id", sid)
			continue
		}
		chosen := picker.PickSection(ctx, sec, bySection[sid], now)
		logger.Info("section picked", "section", sid, "candidates", len(bySection[sid]), "chosen", len(chosen))
		out = append(out, chosen...)
		if pacer != nil {
			pacer.Pace(ctx)
		}
	}
	return out
}
