package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jatayu/aiweekly/internal/news"
)

// WriteResults writes an ordered JSON array of scored items. An empty
// selection still writes "[]" so downstream consumers always find the
// artifact.
func WriteResults(path string, items []news.Scored) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if items == nil {
		items = []news.Scored{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write results file: %w", err)
	}
	return nil
}

// LoadResults reads an ordered JSON array written by WriteResults.
func LoadResults(path string) ([]news.Scored, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	var items []news.Scored
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("unmarshal results: %w", err)
	}
	return items, nil
}
