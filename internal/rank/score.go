package rank

import (
	"context"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jatayu/aiweekly/internal/logger"
	"github.com/jatayu/aiweekly/internal/metrics"
	"github.com/jatayu/aiweekly/internal/news"
)

// Embedder turns texts into fixed-length vectors, order preserving. The
// scorer issues a single batch per run: every item text plus the three
// axis anchors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Weights are the final-score mixing weights, loaded from weights.yaml.
type Weights struct {
	TechnicalInnovation    float64 `yaml:"technical_innovation"`
	PracticalApplicability float64 `yaml:"practical_applicability"`
	Timeliness             float64 `yaml:"timeliness"`
	CommunityImpact        float64 `yaml:"community_impact"`
	EducationalValue       float64 `yaml:"educational_value"`
}

// ScoreConfig is the immutable scorer configuration. SecurityMultiplier is
// applied when security keywords are present, then the result is
// re-clamped to [0,1].
type ScoreConfig struct {
	Weights            Weights `yaml:"weights"`
	SecurityMultiplier float64 `yaml:"security_multiplier"`
}

// DefaultScoreConfig mirrors configs/weights.yaml defaults.
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		Weights: Weights{
			TechnicalInnovation:    0.30,
			PracticalApplicability: 0.30,
			Timeliness:             0.20,
			CommunityImpact:        0.10,
			EducationalValue:       0.10,
		},
		SecurityMultiplier: 1.10,
	}
}

// Axis keyword lists. Matching is case-insensitive substring, counted per
// occurrence.
var (
	techKeywords = []string{
		"arxiv", "benchmark", "sota", "dataset", "eval", "preprint",
		"architecture", "optimization", "scaling law",
	}
	applicKeywords = []string{
		"enterprise", "deployment", "latency", "throughput", "sdk",
		"guardrail", "governance", "policy", "safety", "observability",
	}
	securityKeywords = []string{
		"security", "prompt injection", "exfiltration", "jailbreak",
		"leak", "rbac", "data loss", "pii",
	}
	bizKeywords = []string{
		"launch", "pricing", "general availability", "customers",
		"revenue", "cost", "partnership", "integration", "roadmap",
	}
)

// Natural-language anchors embedded once per run; an item's cosine
// similarity to each anchor is that axis's semantic signal.
var axisAnchors = []string{
	"Does this push the AI/ML research frontier (SOTA, novel evals, new methods, meaningful benchmarks, scaling insights)?",
	"Is this directly useful for enterprises or security teams (deployability, safety, governance, latency/throughput, SDKs, incident reports, mitigations)?",
	"Is there material business impact (pricing/GA launches, partnerships, adoption, ROI, clear productization or cost reductions)?",
}

const embedClipChars = 1500

// ScoreAll scores every item along the three axes and returns the item
// embedding vectors for downstream MMR. When emb is nil or the batch call
// fails, scoring degrades to lexical-only and the returned vectors are nil;
// the degradation is logged, never fatal.
func ScoreAll(ctx context.Context, items []news.Item, cfg ScoreConfig, emb Embedder, now time.Time) ([]news.Scored, [][]float32) {
	var vectors [][]float32
	var anchors [][]float32

	if emb != nil && len(items) > 0 {
		texts := make([]string, 0, len(items)+len(axisAnchors))
		for _, it := range items {
			texts = append(texts, embedText(it))
		}
		texts = append(texts, axisAnchors...)

		all, err := emb.Embed(ctx, texts)
		if err != nil || len(all) != len(texts) {
			logger.Warn("embedding provider unavailable, falling back to lexical scoring", "error", err)
			metrics.Global.IncrementEmbedFallbacks()
		} else {
			vectors = all[:len(items)]
			anchors = all[len(items):]
		}
	}

	scored := make([]news.Scored, 0, len(items))
	for i, it := range items {
		s := scoreOne(it, cfg, vectorAt(vectors, i), anchors, now)
		scored = append(scored, s)
	}
	return scored, vectors
}

func scoreOne(it news.Item, cfg ScoreConfig, vec []float32, anchors [][]float32, now time.Time) news.Scored {
	text := strings.ToLower(it.Title + " " + it.Text)

	kwTech := kwScore(text, techKeywords)
	kwApp := clamp01(kwScore(text, applicKeywords) + 0.5*kwScore(text, securityKeywords))
	kwBiz := kwScore(text, bizKeywords)

	var axes news.AxisScores
	if vec != nil && len(anchors) == 3 {
		axes.Tech = sigmoid(2.2*Cosine(vec, anchors[0]) + 1.2*kwTech)
		axes.App = sigmoid(2.2*Cosine(vec, anchors[1]) + 1.2*kwApp)
		axes.Biz = sigmoid(2.0*Cosine(vec, anchors[2]) + 1.0*kwBiz)
	} else {
		axes.Tech = clamp01(kwTech)
		axes.App = clamp01(kwApp)
		axes.Biz = clamp01(kwBiz)
	}

	timely := 0.0
	if age := news.AgeDays(it.Published, now); age < 7 {
		timely = 1.0 - float64(age)/7.0
	}
	edu := math.Min(1.0, float64(len(it.Text))/10000.0)

	w := cfg.Weights
	base := w.TechnicalInnovation*axes.Tech +
		w.PracticalApplicability*axes.App +
		w.Timeliness*timely +
		w.CommunityImpact*0.0 + // placeholder for stars/mentions later
		w.EducationalValue*edu

	boost := 1.0
	if kwScore(text, securityKeywords) > 0 {
		boost = cfg.SecurityMultiplier
	}

	return news.Scored{
		Item:       it,
		Axes:       axes,
		FinalScore: clamp01(clamp01(base) * boost),
		Domain:     news.Domain(it.URL),
	}
}

// kwScore counts keyword occurrences and normalizes with diminishing
// returns on text length, clamped to [0,1].
func kwScore(loweredText string, words []string) float64 {
	hits := 0
	for _, w := range words {
		hits += strings.Count(loweredText, w)
	}
	if hits == 0 {
		return 0
	}
	return math.Min(1.0, float64(hits)/(1.0+math.Log10(float64(len(loweredText))+10)))
}

func embedText(it news.Item) string {
	body := it.Text
	if len(body) > embedClipChars {
		cut := embedClipChars
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut]
	}
	return it.Title + " — " + body
}

// Cosine similarity with a small epsilon guard against zero vectors.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	return dot / (math.Sqrt(na)*math.Sqrt(nb) + 1e-8)
}

func vectorAt(vectors [][]float32, i int) []float32 {
	if vectors == nil || i >= len(vectors) {
		return nil
	}
	return vectors[i]
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
