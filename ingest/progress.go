package ingest

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Tracker reports embedding progress for an indexing run. Updates may
// arrive from multiple pool workers at once.
type Tracker struct {
	writer         io.Writer
	total          int
	current        int
	reportInterval int
	lastReported   int
	startTime      time.Time
	started        bool
	mu             sync.Mutex
}

// NewTracker creates a progress tracker writing to w every
// reportInterval chunks. A nil writer discards all output.
func NewTracker(w io.Writer, total, reportInterval int) *Tracker {
	if w == nil {
		w = io.Discard
	}
	if reportInterval < 1 {
		reportInterval = 1
	}
	return &Tracker{
		writer:         w,
		total:          total,
		reportInterval: reportInterval,
	}
}

// Start resets the counters and begins the timing window.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.startTime = time.Now()
	t.started = true
	t.current = 0
	t.lastReported = 0
}

// Increment increases the current progress by delta chunks.
func (t *Tracker) Increment(delta int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started {
		return
	}

	t.current += delta
	if t.current > t.total {
		t.current = t.total
	}

	if t.current-t.lastReported >= t.reportInterval {
		t.report()
		t.lastReported = t.current
	}
}

// Finish forces the counter to the total, prints the closing line, and
// terminates the carriage-return overwriting with a newline.
func (t *Tracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started {
		return
	}

	t.current = t.total
	t.report()
	fmt.Fprintln(t.writer)
}

// report writes one progress line. Callers hold the mutex.
func (t *Tracker) report() {
	var percentage float64
	if t.total > 0 {
		percentage = 100.0 * float64(t.current) / float64(t.total)
	}
	rate := float64(t.current) / time.Since(t.startTime).Seconds()

	fmt.Fprintf(t.writer, "\rEmbedding: %d/%d chunks (%.1f%%) - %.1f chunks/s",
		t.current, t.total, percentage, rate)
}
