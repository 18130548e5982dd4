// Package ratelimit budgets outbound Gemini usage per run day and paces
// sequential generation calls so section picks and summaries respect the
// provider's rate limits.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jatayu/aiweekly/internal/logger"
)

// Limiter tracks per-capability request counts against daily maxima. A
// zero maximum means unlimited.
type Limiter struct {
	mu            sync.Mutex
	generateCount int
	embedCount    int
	maxGenerate   int
	maxEmbed      int
	pause         time.Duration
	resetTime     time.Time
}

func New(maxGenerate, maxEmbed int, pause time.Duration) *Limiter {
	return &Limiter{
		maxGenerate: maxGenerate,
		maxEmbed:    maxEmbed,
		pause:       pause,
		resetTime:   time.Now().Add(24 * time.Hour),
	}
}

// UseGenerate consumes one generation request from the budget.
func (rl *Limiter) UseGenerate() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()
	if rl.maxGenerate > 0 && rl.generateCount >= rl.maxGenerate {
		return fmt.Errorf("generate budget exhausted (%d/%d)", rl.generateCount, rl.maxGenerate)
	}
	rl.generateCount++
	logger.Debug("ai usage", "generate", rl.generateCount, "embed", rl.embedCount)
	return nil
}

// UseEmbed consumes one batch embedding request from the budget.
func (rl *Limiter) UseEmbed() error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()
	if rl.maxEmbed > 0 && rl.embedCount >= rl.maxEmbed {
		return fmt.Errorf("embed budget exhausted (%d/%d)", rl.embedCount, rl.maxEmbed)
	}
	rl.embedCount++
	return nil
}

// Pace sleeps the configured delay between sequential generation calls,
// returning early if the context is cancelled.
func (rl *Limiter) Pace(ctx context.Context) {
	if rl.pause <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(rl.pause):
	}
}

// Stats reports current usage.
func (rl *Limiter) Stats() map[string]int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return map[string]int{
		"generate_used":  rl.generateCount,
		"generate_limit": rl.maxGenerate,
		"embed_used":     rl.embedCount,
		"embed_limit":    rl.maxEmbed,
	}
}

func (rl *Limiter) checkReset() {
	if time.Now().After(rl.resetTime) {
		logger.Debug("resetting ai usage counters")
		rl.generateCount = 0
		rl.embedCount = 0
		rl.resetTime = time.Now().Add(24 * time.Hour)
	}
}
