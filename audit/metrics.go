package audit

import (
	"sync"
	"time"
)

// Metrics collects per-run audit timings. One tracker serves one audit run;
// criterion tasks record into it concurrently.
type Metrics struct {
	mu        sync.Mutex
	startedAt time.Time
	elapsed   time.Duration
	criteria  map[string]criterionMetric
}

type criterionMetric struct {
	elapsed    time.Duration
	confidence float64
}

// MetricsSnapshot is an immutable aggregate view of a tracker.
type MetricsSnapshot struct {
	TotalCriteria int
	TotalElapsed  time.Duration
	AvgElapsed    time.Duration
	AvgConfidence float64
}

// NewMetrics creates an empty tracker.
func NewMetrics() *Metrics {
	return &Metrics{criteria: make(map[string]criterionMetric)}
}

// StartAudit marks the beginning of the run.
func (m *Metrics) StartAudit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startedAt = time.Now()
}

// FinishAudit records the total wall-clock time of the run.
func (m *Metrics) FinishAudit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.startedAt.IsZero() {
		m.elapsed = time.Since(m.startedAt)
	}
}

// FinishCriterion records one criterion's elapsed time and final confidence.
func (m *Metrics) FinishCriterion(criterion string, elapsed time.Duration, confidence float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.criteria[criterion] = criterionMetric{elapsed: elapsed, confidence: confidence}
}

// Snapshot returns the aggregate view of everything recorded so far.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := MetricsSnapshot{
		TotalCriteria: len(m.criteria),
		TotalElapsed:  m.elapsed,
	}

	if len(m.criteria) == 0 {
		return snapshot
	}

	var elapsedSum time.Duration
	var confidenceSum float64
	for _, metric := range m.criteria {
		elapsedSum += metric.elapsed
		confidenceSum += metric.confidence
	}

	snapshot.AvgElapsed = elapsedSum / time.Duration(len(m.criteria))
	snapshot.AvgConfidence = confidenceSum / float64(len(m.criteria))
	return snapshot
}
