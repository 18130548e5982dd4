// Package section loads the digest's section taxonomy and assigns every
// candidate to its best-matching section before selection.
package section

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jatayu/aiweekly/internal/news"
)

// Match holds the substring rules a section matches candidates on.
type Match struct {
	Domains  []string `yaml:"domains"`
	Sources  []string `yaml:"sources"`
	Keywords []string `yaml:"keywords"`
}

// Section is one named digest section.
type Section struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
	Index int    `yaml:"index"`
	Match Match  `yaml:"match"`
}

// Taxonomy is the ordered section list from sections.yaml.
type Taxonomy struct {
	Order    []string  `yaml:"order"`
	Sections []Section `yaml:"sections"`
}

// DefaultFallbackID is assigned when no rule matches at all.
const DefaultFallbackID = "applied"

// Load reads the taxonomy YAML.
func Load(path string) (*Taxonomy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sections config: %w", err)
	}
	defer f.Close()

	var tax Taxonomy
	if err := yaml.NewDecoder(f).Decode(&tax); err != nil {
		return nil, fmt.Errorf("decode sections config: %w", err)
	}
	if len(tax.Sections) == 0 {
		return nil, fmt.Errorf("sections config %s lists no sections", path)
	}
	if len(tax.Order) == 0 {
		for _, s := range tax.Sections {
			tax.Order = append(tax.Order, s.ID)
		}
	}
	return &tax, nil
}

// ByID returns the section with the given id, or nil.
func (t *Taxonomy) ByID(id string) *Section {
	for i := range t.Sections {
		if t.Sections[i].ID == id {
			return &t.Sections[i]
		}
	}
	return nil
}

// Classify scores every section's match rules against the item and returns
// the best one: +2.5 per domain substring in the URL, +2.0 per source
// substring, +1.0 per keyword in title+body. Ties keep the first section
// in file order. Falls back to DefaultFallbackID (or the first section)
// when nothing matches.
func (t *Taxonomy) Classify(it news.Item) *Section {
	text := strings.ToLower(it.Title + " " + it.Text)
	src := strings.ToLower(it.Source)

	var best *Section
	bestScore := -1.0
	for i := range t.Sections {
		s := &t.Sections[i]
		score := 0.0
		for _, d := range s.Match.Domains {
			if d != "" && strings.Contains(it.URL, d) {
				score += 2.5
			}
		}
		for _, name := range s.Match.Sources {
			if name != "" && strings.Contains(src, strings.ToLower(name)) {
				score += 2.0
			}
		}
		for _, kw := range s.Match.Keywords {
			if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
				score += 1.0
			}
		}
		if score > bestScore {
			best, bestScore = s, score
		}
	}

	if bestScore <= 0 {
		if fb := t.ByID(DefaultFallbackID); fb != nil {
			return fb
		}
		return &t.Sections[0]
	}
	return best
}

// Assign stamps section metadata onto every item and returns items grouped
// by section id, preserving input order within each group.
func (t *Taxonomy) Assign(items []news.Item) map[string][]news.Item {
	bySection := make(map[string][]news.Item)
	for _, it := range items {
		s := t.Classify(it)
		it.SectionID = s.ID
		it.SectionTitle = s.Title
		it.SectionIndex = s.Index
		bySection[s.ID] = append(bySection[s.ID], it)
	}
	return bySection
}
