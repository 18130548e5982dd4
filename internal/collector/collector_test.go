package collector

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestExtractParagraphsPrefersArticleBody(t *testing.T) {
	html := `<html><body>
		<nav><p>Subscribe to our newsletter for more content like this!</p></nav>
		<article>
			<p>The first substantial paragraph of the article body.</p>
			<p>A second paragraph with enough words to count as content.</p>
			<p>And a third paragraph rounding out the main story text.</p>
		</article>
	</body></html>`

	got := extractParagraphs(docFrom(t, html))
	if !strings.Contains(got, "first substantial paragraph") {
		t.Errorf("article body missing: %q", got)
	}
	if strings.Contains(got, "newsletter") {
		t.Errorf("junk line leaked into extraction: %q", got)
	}
	if n := len(strings.Split(got, "\n\n")); n != 3 {
		t.Errorf("got %d paragraphs, want 3", n)
	}
}

func TestExtractParagraphsFallsBackToBestSelector(t *testing.T) {
	// No selector yields three paragraphs; the richest partial match wins.
	html := `<html><body>
		<div class="content">
			<p>Only one long enough paragraph lives under this selector.</p>
			<p>short</p>
		</div>
	</body></html>`

	got := extractParagraphs(docFrom(t, html))
	if !strings.Contains(got, "Only one long enough paragraph") {
		t.Errorf("fallback extraction empty: %q", got)
	}
	if strings.Contains(got, "short") {
		t.Errorf("sub-20-char line kept: %q", got)
	}
}

func TestIsJunk(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"Sign up for our newsletter today", true},
		{"This site uses cookies to improve your experience", true},
		{"The model improves accuracy by twelve percent", false},
		{"FOLLOW US on social media", true},
	}
	for _, tt := range tests {
		if got := isJunk(tt.line); got != tt.want {
			t.Errorf("isJunk(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestTrimmedTitle(t *testing.T) {
	got := trimmedTitle("  A   title\n\twith   odd whitespace  ")
	if got != "A title with odd whitespace" && got != "A title with odd whitespace" {
		t.Errorf("trimmedTitle = %q", got)
	}
	if trimmedTitle("") != "" {
		t.Errorf("empty title mangled")
	}
}

func TestClipText(t *testing.T) {
	if got := clipText("short", 100); got != "short" {
		t.Errorf("clipText short = %q", got)
	}
	long := strings.Repeat("ä", 50) // 100 bytes
	got := clipText(long, 75)
	if len(got) > 75 {
		t.Errorf("clip exceeded limit: %d bytes", len(got))
	}
	// The cut never splits a rune.
	for _, r := range got {
		if r != 'ä' {
			t.Fatalf("broken rune %q in clipped text", r)
		}
	}
}

func TestLoadFeeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.yaml")
	content := `sources:
  - name: "Feed A"
    url: "https://a.example.com/rss"
  - name: "Feed B"
    url: "https://b.example.com/rss"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	sources, err := LoadFeeds(path)
	if err != nil {
		t.Fatalf("LoadFeeds: %v", err)
	}
	if len(sources) != 2 || sources[0].Name != "Feed A" || sources[1].URL != "https://b.example.com/rss" {
		t.Errorf("sources = %+v", sources)
	}

	if _, err := LoadFeeds(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing feeds file accepted")
	}
}

func TestLoadArxivConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arxiv.yaml")
	content := `categories: ["cs.CR"]
days_back: 3
max_results: 50
min_chars: 100
include_keywords: ["agent"]
exclude_keywords: ["survey"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadArxivConfig(path)
	if err != nil {
		t.Fatalf("LoadArxivConfig: %v", err)
	}
	if len(cfg.Categories) != 1 || cfg.Categories[0] != "cs.CR" {
		t.Errorf("categories = %v", cfg.Categories)
	}
	if cfg.DaysBack != 3 || cfg.MaxResults != 50 || cfg.MinChars != 100 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadArxivConfigDefaults(t *testing.T) {
	cfg, err := LoadArxivConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadArxivConfig: %v", err)
	}
	if len(cfg.Categories) != 4 || cfg.DaysBack != 8 || cfg.MaxResults != 400 {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestContainsAnyKeyword(t *testing.T) {
	hay := "a study of multi-agent reasoning systems"
	if !containsAnyKeyword(hay, []string{"nothing", "agent"}) {
		t.Error("expected match on agent")
	}
	if containsAnyKeyword(hay, []string{"survey"}) {
		t.Error("unexpected match")
	}
	if containsAnyKeyword(hay, nil) {
		t.Error("empty keyword list matched")
	}
}

func TestArxivSource(t *testing.T) {
	if got := arxivSource(&gofeed.Item{Categories: []string{"cs.AI"}}); got != "arXiv cs.AI" {
		t.Errorf("arxivSource = %q", got)
	}
	if got := arxivSource(&gofeed.Item{}); got != "arXiv" {
		t.Errorf("arxivSource no categories = %q", got)
	}
}
