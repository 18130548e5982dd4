package editorial

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// PickResponse is the typed result of leniently parsing a chooser reply.
// A reply that cannot be parsed at all yields the zero value; sanitize and
// backfill operate only on this type, never on raw model text.
type PickResponse struct {
	Picks   []int
	Reasons map[int]string
}

var (
	codeFenceRe = regexp.MustCompile("(?is)^```(?:json)?\\s*|\\s*```$")
	thinkTagRe  = regexp.MustCompile("(?is)<think>.*?</think>")
)

// LenientUnmarshal parses untrusted model output into v. Code fences and
// reasoning tags are stripped first; if direct parsing fails, the
// outermost {...} block is tried.
func LenientUnmarshal(raw string, v any) error {
	s := strings.TrimSpace(raw)
	s = codeFenceRe.ReplaceAllString(s, "")
	s = thinkTagRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	if err := json.Unmarshal([]byte(s), v); err == nil {
		return nil
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object found in response")
	}
	return json.Unmarshal([]byte(s[start:end+1]), v)
}

// CoercePicks parses a chooser reply into a PickResponse. Anything that
// cannot be parsed yields empty picks; sanitize and backfill take it from
// there. Pick entries may be JSON numbers or digit strings.
func CoercePicks(raw string) PickResponse {
	var payload struct {
		Picks   []any          `json:"picks"`
		Reasons map[string]any `json:"reasons"`
	}
	if err := LenientUnmarshal(raw, &payload); err != nil {
		return PickResponse{}
	}

	out := PickResponse{Reasons: make(map[int]string)}
	for _, p := range payload.Picks {
		if idx, ok := toIndex(p); ok {
			out.Picks = append(out.Picks, idx)
		}
	}
	for k, v := range payload.Reasons {
		idx, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			continue
		}
		if text, ok := v.(string); ok {
			out.Reasons[idx] = text
		}
	}
	return out
}

func toIndex(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	case string:
		if idx, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return idx, true
		}
	}
	return 0, false
}
