package editorial

import (
	"reflect"
	"testing"
)

func TestCoercePicks(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantPicks   []int
		wantReasons map[int]string
	}{
		{
			"plain json",
			`{"picks": [3, 1, 5], "reasons": {"3": "fresh", "1": "impactful"}}`,
			[]int{3, 1, 5},
			map[int]string{3: "fresh", 1: "impactful"},
		},
		{
			"fenced json",
			"```json\n{\"picks\": [2, 4], \"reasons\": {\"2\": \"novel\"}}\n```",
			[]int{2, 4},
			map[int]string{2: "novel"},
		},
		{
			"bare fence",
			"```\n{\"picks\": [1]}\n```",
			[]int{1},
			map[int]string{},
		},
		{
			"reasoning tag stripped",
			"<think>let me consider the candidates...</think>{\"picks\": [7]}",
			[]int{7},
			map[int]string{},
		},
		{
			"prose around the object",
			"Sure! Here is my selection:\n{\"picks\": [1, 2]}\nHope that helps.",
			[]int{1, 2},
			map[int]string{},
		},
		{
			"digit strings accepted",
			`{"picks": ["3", " 1 "], "reasons": {" 3 ": "ok"}}`,
			[]int{3, 1},
			map[int]string{3: "ok"},
		},
		{
			"non-integer entries dropped",
			`{"picks": [1.5, 2, "abc", null, 3]}`,
			[]int{2, 3},
			map[int]string{},
		},
		{
			"non-string reasons skipped",
			`{"picks": [1], "reasons": {"1": 42, "x": "bad key"}}`,
			[]int{1},
			map[int]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CoercePicks(tt.raw)
			if !reflect.DeepEqual(got.Picks, tt.wantPicks) {
				t.Errorf("Picks = %v, want %v", got.Picks, tt.wantPicks)
			}
			if !reflect.DeepEqual(got.Reasons, tt.wantReasons) {
				t.Errorf("Reasons = %v, want %v", got.Reasons, tt.wantReasons)
			}
		})
	}
}

func TestCoercePicksGarbage(t *testing.T) {
	for _, raw := range []string{
		"",
		"I cannot help with that.",
		"picks: 1, 2, 3",
		"[1, 2, 3",
	} {
		got := CoercePicks(raw)
		if len(got.Picks) != 0 {
			t.Errorf("CoercePicks(%q).Picks = %v, want empty", raw, got.Picks)
		}
	}
}

func TestLenientUnmarshal(t *testing.T) {
	var payload struct {
		A string `json:"a"`
	}
	if err := LenientUnmarshal("```json\n{\"a\": \"x\"}\n```", &payload); err != nil {
		t.Fatalf("fenced: %v", err)
	}
	if payload.A != "x" {
		t.Errorf("a = %q, want x", payload.A)
	}
	if err := LenientUnmarshal("no object here", &payload); err == nil {
		t.Error("expected error for text without JSON")
	}
}
