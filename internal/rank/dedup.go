// Package rank implements the ranking-and-selection core: title
// deduplication, axis scoring, per-domain capping and MMR selection.
package rank

import (
	"strings"
	"unicode"

	"github.com/jatayu/aiweekly/internal/metrics"
	"github.com/jatayu/aiweekly/internal/news"
)

// DedupThreshold is the token-set similarity (0..100) above which a title
// counts as a near-duplicate of one already kept.
const DedupThreshold = 90

// Dedup filters near-identical titles, preserving input order. For each
// item the title is compared against every title already kept; anything
// scoring above DedupThreshold is dropped. O(n²), fine for the few hundred
// candidates a run produces.
func Dedup(items []news.Item) []news.Item {
	kept := make([]news.Item, 0, len(items))
	for _, it := range items {
		dup := false
		for i := range kept {
			if TitleSimilarity(it.Title, kept[i].Title) > DedupThreshold {
				dup = true
				break
			}
		}
		if dup {
			metrics.Global.IncrementDuplicatesFiltered()
			continue
		}
		kept = append(kept, it)
	}
	return kept
}

// TitleSimilarity is a token-set overlap ratio in 0..100, case and word
// order insensitive. Two empty titles score 0, not 100: untitled items are
// never considered duplicates of each other, so a batch of legitimately
// distinct untitled candidates survives dedup intact.
func TitleSimilarity(a, b string) int {
	sa := tokenSet(a)
	sb := tokenSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}
	inter := 0
	for tok := range sa {
		if _, ok := sb[tok]; ok {
			inter++
		}
	}
	union := len(sa) + len(sb) - inter
	if union == 0 {
		return 0
	}
	// token_set_ratio flavor: weight the overlap against the smaller set,
	// so "GPT-5 released" matches "GPT-5 released today" strongly.
	smaller := len(sa)
	if len(sb) < smaller {
		smaller = len(sb)
	}
	base := (2 * 100 * inter) / (len(sa) + len(sb))
	contained := (100 * inter) / smaller
	if contained > base {
		return contained
	}
	return base
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			set[b.String()] = struct{}{}
			b.Reset()
		}
	}
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return set
}
