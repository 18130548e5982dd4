// Package gemini wraps the Gemini API as the pipeline's text-generation
// and batch-embedding provider.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/jatayu/aiweekly/internal/ratelimit"
	"github.com/jatayu/aiweekly/internal/retry"
)

const (
	defaultGenerateModel = "gemini-2.0-flash"
	defaultEmbedModel    = "text-embedding-004"

	// Prompts beyond this are clipped on a rune boundary; Gemini charges
	// and occasionally chokes on oversized inputs.
	maxPromptRunes = 30000
)

type Client struct {
	client        *genai.Client
	generateModel string
	embedModel    string
	limiter       *ratelimit.Limiter
	retryCfg      retry.Config
}

// Option tweaks client construction.
type Option func(*Client)

func WithModels(generateModel, embedModel string) Option {
	return func(c *Client) {
		if generateModel != "" {
			c.generateModel = generateModel
		}
		if embedModel != "" {
			c.embedModel = embedModel
		}
	}
}

func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

func WithRetry(cfg retry.Config) Option {
	return func(c *Client) { c.retryCfg = cfg }
}

func NewClient(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	inner, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c := &Client{
		client:        inner,
		generateModel: defaultGenerateModel,
		embedModel:    defaultEmbedModel,
		retryCfg:      retry.Config{MaxAttempts: 2, Delay: 2 * time.Second, Backoff: true},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Generate returns raw model text for a prompt. Callers own all parsing;
// nothing about the output is trusted here.
func (c *Client) Generate(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.UseGenerate(); err != nil {
			return "", err
		}
	}

	model := c.client.GenerativeModel(c.generateModel)
	model.SetTemperature(temperature)
	model.SetTopP(0.9)
	model.SetMaxOutputTokens(int32(maxTokens))

	prompt = clipPrompt(prompt)

	var text string
	err := retry.WithRetry(ctx, c.retryCfg, func() error {
		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return fmt.Errorf("generate content: %w", err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			return fmt.Errorf("empty response from Gemini")
		}
		text = fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// Embed returns one vector per input text, order preserving, in a single
// batch request.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if c.limiter != nil {
		if err := c.limiter.UseEmbed(); err != nil {
			return nil, err
		}
	}

	em := c.client.EmbeddingModel(c.embedModel)
	batch := em.NewBatch()
	for _, t := range texts {
		batch = batch.AddContent(genai.Text(t))
	}

	var vectors [][]float32
	err := retry.WithRetry(ctx, c.retryCfg, func() error {
		resp, err := em.BatchEmbedContents(ctx, batch)
		if err != nil {
			return fmt.Errorf("batch embed: %w", err)
		}
		if len(resp.Embeddings) != len(texts) {
			return fmt.Errorf("embed count mismatch: got %d, want %d", len(resp.Embeddings), len(texts))
		}
		vectors = vectors[:0]
		for _, e := range resp.Embeddings {
			vectors = append(vectors, e.Values)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vectors, nil
}

// Pace applies the mandatory delay between sequential generation calls.
func (c *Client) Pace(ctx context.Context) {
	if c.limiter != nil {
		c.limiter.Pace(ctx)
	}
}

func clipPrompt(prompt string) string {
	if utf8.RuneCountInString(prompt) <= maxPromptRunes {
		return prompt
	}
	runes := []rune(prompt)
	trimmed := string(runes[:maxPromptRunes])
	if idx := strings.LastIndex(trimmed, ". "); idx > maxPromptRunes/2 {
		trimmed = trimmed[:idx+1]
	}
	return trimmed + "\n[TRUNCATED]"
}
