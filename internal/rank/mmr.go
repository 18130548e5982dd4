package rank

import (
	"github.com/jatayu/aiweekly/internal/news"
)

// DefaultDiversity is the λ weight on the max-similarity penalty.
const DefaultDiversity = 0.35

// SimilarityFunc reports topical similarity between two pool items by
// index, expected in roughly [-1,1].
type SimilarityFunc func(i, j int) float64

// VectorSimilarity builds a SimilarityFunc over embedding vectors.
func VectorSimilarity(vectors [][]float32) SimilarityFunc {
	return func(i, j int) float64 {
		return Cosine(vectors[i], vectors[j])
	}
}

// TitleSimilarityFunc approximates topical similarity from title token
// overlap, used when the run degraded to lexical-only scoring so the MMR
// penalty still discourages redundancy.
func TitleSimilarityFunc(items []news.Scored) SimilarityFunc {
	return func(i, j int) float64 {
		return float64(TitleSimilarity(items[i].Title, items[j].Title)) / 100.0
	}
}

// MMRSelect greedily picks k items maximizing
//
//	value(i) = finalScore(i) − λ · max similarity(i, selected)
//
// with ties broken by lowest original index. The selected set is then
// re-sorted by final score descending (not selection order) and given
// dense ranks from 1. A pool no larger than k skips the greedy walk and
// is simply ranked by score.
func MMRSelect(pool []news.Scored, sim SimilarityFunc, k int, diversity float64) []news.Scored {
	if k <= 0 || len(pool) == 0 {
		return []news.Scored{}
	}
	if len(pool) <= k {
		return RankByScore(pool)
	}

	selectedIdx := make([]int, 0, k)
	taken := make([]bool, len(pool))
	for len(selectedIdx) < k {
		bestI := -1
		bestVal := 0.0
		for i := range pool {
			if taken[i] {
				continue
			}
			// True max over the selected set, not floored at zero: an
			// anti-similar candidate (negative cosine) earns a bonus.
			penalty := 0.0
			for k, j := range selectedIdx {
				if s := sim(i, j); k == 0 || s > penalty {
					penalty = s
				}
			}
			val := pool[i].FinalScore - diversity*penalty
			if bestI == -1 || val > bestVal {
				bestI, bestVal = i, val
			}
		}
		taken[bestI] = true
		selectedIdx = append(selectedIdx, bestI)
	}

	selected := make([]news.Scored, 0, k)
	for _, i := range selectedIdx {
		selected = append(selected, pool[i])
	}
	return RankByScore(selected)
}

// RankByScore sorts by final score descending (stable) and assigns dense
// ranks starting at 1.
func RankByScore(items []news.Scored) []news.Scored {
	out := SortByScore(items)
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
