package section

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jatayu/aiweekly/internal/news"
)

const testTaxonomyYAML = `order:
  - research
  - applied
  - business
sections:
  - id: research
    title: "Research & Papers"
    index: 0
    match:
      domains: ["arxiv.org", "openreview.net"]
      keywords: ["paper", "preprint"]
  - id: applied
    title: "Applied & Enterprise"
    index: 1
    match:
      sources: ["Hugging Face"]
      keywords: ["enterprise", "deployment"]
  - id: business
    title: "Business & Market"
    index: 2
    match:
      keywords: ["funding", "pricing", "acquisition"]
`

func writeTaxonomy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sections.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	tax, err := Load(writeTaxonomy(t, testTaxonomyYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tax.Sections) != 3 {
		t.Fatalf("loaded %d sections, want 3", len(tax.Sections))
	}
	if got := tax.Order; len(got) != 3 || got[0] != "research" {
		t.Errorf("order = %v", got)
	}
	if s := tax.ByID("business"); s == nil || s.Index != 2 {
		t.Errorf("ByID(business) = %+v", s)
	}
	if s := tax.ByID("nope"); s != nil {
		t.Errorf("ByID(nope) = %+v, want nil", s)
	}
}

func TestLoadDerivesOrderFromSections(t *testing.T) {
	tax, err := Load(writeTaxonomy(t, `sections:
  - id: only
    title: "Only"
    index: 0
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(tax.Order) != 1 || tax.Order[0] != "only" {
		t.Errorf("derived order = %v, want [only]", tax.Order)
	}
}

func TestLoadRejectsEmpty(t *testing.T) {
	if _, err := Load(writeTaxonomy(t, "order: []\n")); err == nil {
		t.Fatal("empty taxonomy accepted")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing file accepted")
	}
}

func TestClassify(t *testing.T) {
	tax, err := Load(writeTaxonomy(t, testTaxonomyYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name string
		item news.Item
		want string
	}{
		{
			"domain rule",
			news.Item{Title: "New method", URL: "https://arxiv.org/abs/2408.01234"},
			"research",
		},
		{
			"source rule",
			news.Item{Title: "Release notes", URL: "https://x.example.com/1", Source: "Hugging Face Blog"},
			"applied",
		},
		{
			"keyword rule",
			news.Item{Title: "Series B funding round", URL: "https://x.example.com/2", Text: "pricing changes too"},
			"business",
		},
		{
			"domain outweighs keywords",
			news.Item{Title: "funding pricing", URL: "https://openreview.net/forum?id=a"},
			"research",
		},
		{
			"no match falls back",
			news.Item{Title: "miscellany", URL: "https://x.example.com/3"},
			DefaultFallbackID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tax.Classify(tt.item); got.ID != tt.want {
				t.Errorf("Classify = %q, want %q", got.ID, tt.want)
			}
		})
	}
}

func TestClassifyFallbackWithoutDefaultSection(t *testing.T) {
	tax := &Taxonomy{Sections: []Section{
		{ID: "alpha", Title: "Alpha", Match: Match{Keywords: []string{"alpha"}}},
		{ID: "beta", Title: "Beta", Match: Match{Keywords: []string{"beta"}}},
	}}
	if got := tax.Classify(news.Item{Title: "nothing relevant"}); got.ID != "alpha" {
		t.Errorf("fallback = %q, want first section", got.ID)
	}
}

func TestAssign(t *testing.T) {
	tax, err := Load(writeTaxonomy(t, testTaxonomyYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	items := []news.Item{
		{Title: "paper one", URL: "https://arxiv.org/abs/1"},
		{Title: "enterprise rollout", URL: "https://a.example.com/1"},
		{Title: "paper two", URL: "https://arxiv.org/abs/2"},
	}

	bySection := tax.Assign(items)
	research := bySection["research"]
	if len(research) != 2 {
		t.Fatalf("research got %d items, want 2", len(research))
	}
	// Input order within a group and section metadata stamped.
	if research[0].URL != "https://arxiv.org/abs/1" || research[1].URL != "https://arxiv.org/abs/2" {
		t.Errorf("group order broken: %q, %q", research[0].URL, research[1].URL)
	}
	if research[0].SectionID != "research" || research[0].SectionTitle != "Research & Papers" || research[0].SectionIndex != 0 {
		t.Errorf("section metadata not stamped: %+v", research[0])
	}
	if len(bySection["applied"]) != 1 {
		t.Errorf("applied got %d items, want 1", len(bySection["applied"]))
	}
	// Originals stay clean.
	if items[0].SectionID != "" {
		t.Errorf("Assign mutated its input")
	}
}
