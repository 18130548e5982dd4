package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSummaryCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary_cache.json")

	sc := NewSummaryCache(path)
	if err := sc.Load(); err != nil {
		t.Fatalf("Load on missing file: %v", err)
	}
	if sc.Len() != 0 {
		t.Fatalf("fresh cache has %d entries", sc.Len())
	}

	key := sc.Key("GPT-5 ships", "https://a.example.com/1")
	sc.Put(key, CachedSummary{P1: "what happened", P2: "why it matters"})
	if err := sc.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded := NewSummaryCache(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, ok := reloaded.Get(key)
	if !ok {
		t.Fatal("entry lost across save/load")
	}
	if got.P1 != "what happened" || got.P2 != "why it matters" {
		t.Errorf("entry mangled: %+v", got)
	}
}

func TestSummaryCacheKey(t *testing.T) {
	sc := NewSummaryCache("")
	a := sc.Key("title", "https://a.example.com/1")
	b := sc.Key("title", "https://a.example.com/1")
	c := sc.Key("title", "https://b.example.com/2")
	if a != b {
		t.Errorf("key not stable: %q vs %q", a, b)
	}
	if a == c {
		t.Errorf("distinct items share key %q", a)
	}
	if len(a) != 40 {
		t.Errorf("key %q is not a sha1 hex digest", a)
	}
}

func TestSummaryCacheCorruptFileDiscarded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary_cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	sc := NewSummaryCache(path)
	if err := sc.Load(); err != nil {
		t.Fatalf("corrupt cache should not fail the run: %v", err)
	}
	if sc.Len() != 0 {
		t.Errorf("corrupt cache yielded %d entries", sc.Len())
	}
}
