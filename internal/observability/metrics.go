package observability

import (
	"sync"
	"time"
)

// Metrics provides basic in-memory counters keyed by operation and outcome.
type Metrics struct {
	mu       sync.Mutex
	outcomes map[string]map[string]int64
	latency  map[string]time.Duration
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		outcomes: make(map[string]map[string]int64),
		latency:  make(map[string]time.Duration),
	}
}

// RecordOutcome counts one handled request for operation with outcome code.
func (m *Metrics) RecordOutcome(operation, code string, duration time.Duration) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	byCode, ok := m.outcomes[operation]
	if !ok {
		byCode = make(map[string]int64)
		m.outcomes[operation] = byCode
	}
	byCode[code]++
	m.latency[operation] += duration
}

// OperationStats is a point in time view of one operation.
type OperationStats struct {
	Outcomes     map[string]int64 `json:"outcomes"`
	Total        int64            `json:"total"`
	MeanDuration time.Duration    `json:"mean_duration_ns"`
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() map[string]OperationStats {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]OperationStats, len(m.outcomes))
	for op, byCode := range m.outcomes {
		stats := OperationStats{Outcomes: make(map[string]int64, len(byCode))}
		for code, n := range byCode {
			stats.Outcomes[code] = n
			stats.Total += n
		}
		if stats.Total > 0 {
			stats.MeanDuration = m.latency[op] / time.Duration(stats.Total)
		}
		out[op] = stats
	}
	return out
}
