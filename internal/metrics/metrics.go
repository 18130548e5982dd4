package metrics

import (
	"sync"
	"time"
)

// Metrics tracks pipeline counters for one process. Stages mutate the
// Global instance; the run summary is logged at the end of app.Run.
type Metrics struct {
	mu sync.RWMutex

	// Counters
	ItemsCollected     int64
	ItemsScored        int64
	DuplicatesFiltered int64
	EmbedFallbacks     int64
	PicksBackfilled    int64
	SummariesCached    int64
	SummariesGenerated int64

	// Timings
	LastProcessingTime  time.Duration
	TotalProcessingTime time.Duration
	ProcessingCount     int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
}

var Global = &Metrics{}

func (m *Metrics) IncrementItemsCollected(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsCollected += int64(n)
}

func (m *Metrics) IncrementItemsScored() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ItemsScored++
}

func (m *Metrics) IncrementDuplicatesFiltered() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered++
}

func (m *Metrics) IncrementEmbedFallbacks() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EmbedFallbacks++
}

func (m *Metrics) IncrementPicksBackfilled() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PicksBackfilled++
}

func (m *Metrics) IncrementSummariesCached() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummariesCached++
}

func (m *Metrics) IncrementSummariesGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummariesGenerated++
}

func (m *Metrics) RecordProcessingTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastProcessingTime = duration
	m.TotalProcessingTime += duration
	m.ProcessingCount++
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"items_collected":         m.ItemsCollected,
		"items_scored":            m.ItemsScored,
		"duplicates_filtered":     m.DuplicatesFiltered,
		"embed_fallbacks":         m.EmbedFallbacks,
		"picks_backfilled":        m.PicksBackfilled,
		"summaries_cached":        m.SummariesCached,
		"summaries_generated":     m.SummariesGenerated,
		"last_processing_time_ms": m.LastProcessingTime.Milliseconds(),
		"last_run_time":           m.LastRunTime.Format(time.RFC3339),
		"last_error":              m.LastError,
	}
}
