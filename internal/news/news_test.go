package news

import (
	"testing"
	"time"
)

func TestDomain(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"plain host", "https://arxiv.org/abs/2408.01234", "arxiv.org"},
		{"strips www", "https://www.example.com/post", "example.com"},
		{"lowercases", "https://Blog.Example.COM/x", "blog.example.com"},
		{"strips port", "https://example.com:8443/a", "example.com"},
		{"www and port", "http://www.Example.com:80/", "example.com"},
		{"empty url", "", "unknown"},
		{"no host", "not a url", "unknown"},
		{"relative path", "/just/a/path", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Domain(tt.url); got != tt.want {
				t.Errorf("Domain(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestAgeDays(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		published string
		want      int
	}{
		{"same moment", "2026-08-29T12:00:00Z", 0},
		{"three days ago", "2026-08-26T10:00:00Z", 3},
		{"date only", "2026-08-22", 7},
		{"no offset", "2026-08-28T06:30:00", 1},
		{"future clamps to zero", "2026-09-05T00:00:00Z", 0},
		{"empty is stale", "", StaleAgeDays},
		{"garbage is stale", "yesterday-ish", StaleAgeDays},
		{"partial garbage is stale", "2026-13-99T99:00:00Z", StaleAgeDays},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AgeDays(tt.published, now); got != tt.want {
				t.Errorf("AgeDays(%q) = %d, want %d", tt.published, got, tt.want)
			}
		})
	}
}
