// Package storage reads and writes the pipeline's on-disk artifacts: the
// line-delimited candidates file, the ordered JSON results, and the
// summary cache.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jatayu/aiweekly/internal/logger"
	"github.com/jatayu/aiweekly/internal/news"
)

// LoadCandidates reads one candidate per line. A missing file is the
// collector's failure, not ours, and surfaces as an error; blank and
// malformed lines are skipped with a warning.
func LoadCandidates(path string) ([]news.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open candidates file: %w", err)
	}
	defer f.Close()

	var items []news.Item
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var it news.Item
		if err := json.Unmarshal(line, &it); err != nil {
			logger.Warn("skipping malformed candidate line", "line", lineNo, "error", err)
			continue
		}
		items = append(items, it)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read candidates file: %w", err)
	}
	return items, nil
}

// AppendCandidates writes items to the JSONL file, one object per line,
// creating the file and parent directory as needed.
func AppendCandidates(path string, items []news.Item) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open candidates file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, it := range items {
		if err := enc.Encode(it); err != nil {
			return fmt.Errorf("encode candidate: %w", err)
		}
	}
	return w.Flush()
}

// ExistingURLs returns the set of URLs already present in the candidates
// file, used by collectors to avoid appending duplicates. A missing file
// yields an empty set.
func ExistingURLs(path string) map[string]struct{} {
	seen := make(map[string]struct{})
	items, err := LoadCandidates(path)
	if err != nil {
		return seen
	}
	for _, it := range items {
		if it.URL != "" {
			seen[it.URL] = struct{}{}
		}
	}
	return seen
}
