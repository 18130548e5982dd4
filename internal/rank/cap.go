package rank

import (
	"sort"

	"github.com/jatayu/aiweekly/internal/news"
)

// DefaultDomainCap bounds how many items a single registrable domain may
// contribute to the global shortlist.
const DefaultDomainCap = 3

// SortByScore orders items by final score descending, stable so that
// equal scores keep their original input order. Every sort in this core
// is stable; reproducibility depends on it.
func SortByScore(items []news.Scored) []news.Scored {
	out := make([]news.Scored, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FinalScore > out[j].FinalScore
	})
	return out
}

// CapByDomain walks a score-descending sequence once and skips items whose
// domain already contributed cap entries. Order is preserved. indices in
// the returned slice pair each kept item with its position in the input,
// letting callers carry embedding vectors alongside.
func CapByDomain(sorted []news.Scored, cap int) ([]news.Scored, []int) {
	if cap <= 0 {
		return nil, nil
	}
	perDomain := make(map[string]int)
	kept := make([]news.Scored, 0, len(sorted))
	indices := make([]int, 0, len(sorted))
	for i, s := range sorted {
		perDomain[s.Domain]++
		if perDomain[s.Domain] > cap {
			continue
		}
		kept = append(kept, s)
		indices = append(indices, i)
	}
	return kept, indices
}
