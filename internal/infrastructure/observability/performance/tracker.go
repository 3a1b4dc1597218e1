// Package performance provides lightweight operation tracking for
// couture-edge with slow-operation alerting.
package performance

import (
	"sync"
	"time"

	"github.com/osamaqaseem39/couture-edge/internal/infrastructure/observability/logging"
)

// Marker tracks a single operation from start to completion.
type Marker struct {
	Operation string
	StartTime time.Time
	Duration  time.Duration
	Success   bool
	Completed bool

	tracker *Tracker
}

// Complete finalizes the marker and records its duration.
func (m *Marker) Complete() {
	if m.Completed {
		return
	}
	m.Duration = time.Since(m.StartTime)
	m.Completed = true
	if m.tracker != nil {
		m.tracker.record(m)
	}
}

// SetSuccess records whether the operation succeeded.
func (m *Marker) SetSuccess(success bool) {
	m.Success = success
}

// Stats is an aggregate view over completed operations.
type Stats struct {
	Completed     int64         `json:"completed"`
	Failed        int64         `json:"failed"`
	SlowOps       int64         `json:"slowOps"`
	TotalDuration time.Duration `json:"totalDuration"`
}

// Tracker aggregates markers and raises alerts for slow operations.
type Tracker struct {
	mu            sync.Mutex
	stats         map[string]*Stats
	slowThreshold time.Duration
	logger        *logging.ChanneledLogger
	started       time.Time
}

// NewTracker creates a tracker. A slowThreshold of zero disables alerting.
func NewTracker(slowThreshold time.Duration, logger *logging.ChanneledLogger) *Tracker {
	return &Tracker{
		stats:         make(map[string]*Stats),
		slowThreshold: slowThreshold,
		logger:        logger,
		started:       time.Now().UTC(),
	}
}

// StartOperation creates and tracks a new performance marker for an operation.
func (t *Tracker) StartOperation(operation string) *Marker {
	return &Marker{
		Operation: operation,
		StartTime: time.Now(),
		Success:   true, // Assume success until proven otherwise
		tracker:   t,
	}
}

func (t *Tracker) record(m *Marker) {
	t.mu.Lock()
	stats, exists := t.stats[m.Operation]
	if !exists {
		stats = &Stats{}
		t.stats[m.Operation] = stats
	}
	stats.Completed++
	stats.TotalDuration += m.Duration
	if !m.Success {
		stats.Failed++
	}
	slow := t.slowThreshold > 0 && m.Duration > t.slowThreshold
	if slow {
		stats.SlowOps++
	}
	t.mu.Unlock()

	if slow && t.logger != nil {
		t.logger.Alert().Warn("Slow operation detected",
			"operation", m.Operation,
			"duration", m.Duration,
			"threshold", t.slowThreshold,
		)
	}
}

// Snapshot returns a copy of the per-operation stats.
func (t *Tracker) Snapshot() map[string]Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]Stats, len(t.stats))
	for op, stats := range t.stats {
		out[op] = *stats
	}
	return out
}

// Uptime reports how long the tracker has been running.
func (t *Tracker) Uptime() time.Duration {
	return time.Since(t.started)
}
