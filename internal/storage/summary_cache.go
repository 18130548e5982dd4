package storage

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// CachedSummary is one generated summary pair, keyed by (title, url).
type CachedSummary struct {
	P1 string `json:"summary_p1"`
	P2 string `json:"summary_p2"`
}

// SummaryCache short-circuits repeated summarization of identical items
// across runs. It is read before any external call and written after.
type SummaryCache struct {
	filePath string
	items    map[string]CachedSummary
	mu       sync.RWMutex
}

func NewSummaryCache(filePath string) *SummaryCache {
	return &SummaryCache{
		filePath: filePath,
		items:    make(map[string]CachedSummary),
	}
}

// Load reads the cache file; a missing file starts an empty cache, a
// corrupt one is discarded rather than failing the run.
func (sc *SummaryCache) Load() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	data, err := os.ReadFile(sc.filePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read summary cache: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	items := make(map[string]CachedSummary)
	if err := json.Unmarshal(data, &items); err != nil {
		sc.items = make(map[string]CachedSummary)
		return nil
	}
	sc.items = items
	return nil
}

// Save persists the cache.
func (sc *SummaryCache) Save() error {
	sc.mu.RLock()
	data, err := json.MarshalIndent(sc.items, "", "  ")
	sc.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal summary cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(sc.filePath), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	if err := os.WriteFile(sc.filePath, data, 0o644); err != nil {
		return fmt.Errorf("write summary cache: %w", err)
	}
	return nil
}

// Key derives the stable cache key for an item.
func (sc *SummaryCache) Key(title, url string) string {
	h := sha1.New()
	h.Write([]byte(title + "|" + url))
	return hex.EncodeToString(h.Sum(nil))
}

func (sc *SummaryCache) Get(key string) (CachedSummary, bool) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	s, ok := sc.items[key]
	return s, ok
}

func (sc *SummaryCache) Put(key string, s CachedSummary) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.items[key] = s
}

func (sc *SummaryCache) Len() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return len(sc.items)
}
