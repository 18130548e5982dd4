// Package config loads pipeline settings from the environment plus the
// YAML weight file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jatayu/aiweekly/internal/rank"
)

type Config struct {
	// Artifact paths
	CandidatesPath   string
	TopPath          string
	SelectedPath     string
	SummaryCachePath string

	// Config file paths
	WeightsConfigPath  string
	SectionsConfigPath string
	FeedsConfigPath    string
	ArxivConfigPath    string

	// Gemini settings
	GeminiAPIKey        string
	GeminiModel         string
	EmbedModel          string
	MaxGenerateRequests int // 0 = unlimited
	MaxEmbedRequests    int

	// Global ranking
	TopN      int
	DomainCap int
	Diversity float64

	// Per-section selection
	TopPerSection       int
	ShortlistPerSection int
	DomainCapPerSection int
	SelectorPause       time.Duration
	SummaryPause        time.Duration

	// Collector settings
	RecentDays        int
	MaxPerFeed        int
	TextLimit         int
	ScrapeConcurrency int
	RequestTimeout    time.Duration

	// Outbound retry
	RetryAttempts int
	RetryDelay    time.Duration

	Debug bool
}

func Load() (*Config, error) {
	cfg := &Config{
		CandidatesPath:   "data/candidates.jsonl",
		TopPath:          "data/top.json",
		SelectedPath:     "data/selected.json",
		SummaryCachePath: "data/summary_cache.json",

		WeightsConfigPath:  "configs/weights.yaml",
		SectionsConfigPath: "configs/sections.yaml",
		FeedsConfigPath:    "configs/feeds.yaml",
		ArxivConfigPath:    "configs/arxiv.yaml",

		GeminiModel: "gemini-2.0-flash",
		EmbedModel:  "text-embedding-004",

		TopN:      10,
		DomainCap: 3,
		Diversity: rank.DefaultDiversity,

		TopPerSection:       5,
		ShortlistPerSection: 30,
		DomainCapPerSection: 2,
		SelectorPause:       600 * time.Millisecond,
		SummaryPause:        700 * time.Millisecond,

		RecentDays:        7,
		MaxPerFeed:        50,
		TextLimit:         20000,
		ScrapeConcurrency: 8,
		RequestTimeout:    30 * time.Second,

		RetryAttempts: 2,
		RetryDelay:    2 * time.Second,
	}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	cfg.CandidatesPath = getEnvOrDefault("CANDIDATES_FILE", cfg.CandidatesPath)
	cfg.TopPath = getEnvOrDefault("TOP_FILE", cfg.TopPath)
	cfg.SelectedPath = getEnvOrDefault("SELECTED_FILE", cfg.SelectedPath)
	cfg.SummaryCachePath = getEnvOrDefault("SUMMARY_CACHE_FILE", cfg.SummaryCachePath)
	cfg.WeightsConfigPath = getEnvOrDefault("WEIGHTS_CONFIG", cfg.WeightsConfigPath)
	cfg.SectionsConfigPath = getEnvOrDefault("SECTIONS_CONFIG", cfg.SectionsConfigPath)
	cfg.FeedsConfigPath = getEnvOrDefault("FEEDS_CONFIG", cfg.FeedsConfigPath)
	cfg.ArxivConfigPath = getEnvOrDefault("ARXIV_CONFIG", cfg.ArxivConfigPath)
	cfg.GeminiModel = getEnvOrDefault("GEMINI_MODEL", cfg.GeminiModel)
	cfg.EmbedModel = getEnvOrDefault("EMBED_MODEL", cfg.EmbedModel)

	cfg.TopN = getEnvIntOrDefault("TOP_N", cfg.TopN)
	cfg.DomainCap = getEnvIntOrDefault("DOMAIN_CAP", cfg.DomainCap)
	cfg.TopPerSection = getEnvIntOrDefault("TOP_PER_SECTION", cfg.TopPerSection)
	cfg.ShortlistPerSection = getEnvIntOrDefault("SHORTLIST_PER_SECTION", cfg.ShortlistPerSection)
	cfg.DomainCapPerSection = getEnvIntOrDefault("DOMAIN_CAP_PER_SECTION", cfg.DomainCapPerSection)
	cfg.MaxGenerateRequests = getEnvIntOrDefault("MAX_GENERATE_REQUESTS", cfg.MaxGenerateRequests)
	cfg.MaxEmbedRequests = getEnvIntOrDefault("MAX_EMBED_REQUESTS", cfg.MaxEmbedRequests)
	cfg.RecentDays = getEnvIntOrDefault("RECENT_DAYS", cfg.RecentDays)
	cfg.MaxPerFeed = getEnvIntOrDefault("MAX_PER_FEED", cfg.MaxPerFeed)
	cfg.ScrapeConcurrency = getEnvIntOrDefault("SCRAPE_CONCURRENCY", cfg.ScrapeConcurrency)
	cfg.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)

	if v := os.Getenv("DIVERSITY_LAMBDA"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.Diversity = f
		}
	}
	if v := os.Getenv("SELECTOR_PAUSE_SECONDS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.SelectorPause = time.Duration(f * float64(time.Second))
		}
	}
	if v := os.Getenv("SUMMARY_PAUSE_SECONDS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.SummaryPause = time.Duration(f * float64(time.Second))
		}
	}
	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.TopN < 1 {
		return fmt.Errorf("TOP_N must be at least 1")
	}
	if c.DomainCap < 1 || c.DomainCapPerSection < 1 {
		return fmt.Errorf("domain caps must be at least 1")
	}
	if c.TopPerSection < 1 || c.ShortlistPerSection < 1 {
		return fmt.Errorf("per-section counts must be at least 1")
	}
	return nil
}

// LoadScoreConfig reads the axis weights YAML. A missing file falls back
// to the built-in defaults; a malformed one is an error.
func LoadScoreConfig(path string) (rank.ScoreConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return rank.DefaultScoreConfig(), nil
	}
	if err != nil {
		return rank.ScoreConfig{}, fmt.Errorf("read weights config: %w", err)
	}

	cfg := rank.DefaultScoreConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return rank.ScoreConfig{}, fmt.Errorf("decode weights config: %w", err)
	}
	if cfg.SecurityMultiplier <= 0 {
		cfg.SecurityMultiplier = 1.0
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
