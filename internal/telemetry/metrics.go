// Package telemetry provides metrics collection for monitoring the
// vector-database service.
package telemetry

import (
	"sort"
	"sync"
	"time"
)

// Metric names recorded by the request handlers and the batch inserter.
const (
	// Request counts by operation
	MetricInserts = "store.inserts"
	MetricDeletes = "store.deletes"
	MetricQueries = "store.queries"
	MetricUploads = "ingest.uploads"

	// Volume counters
	MetricInsertedVectors = "store.inserted_vectors"
	MetricUploadLines     = "ingest.upload_lines"
	MetricBatchFlushes    = "ingest.batch_flushes"

	// Embedding adapter
	MetricEmbeddings        = "embedder.calls"
	MetricEmbeddingFailures = "embedder.failures"

	// Latency timers
	TimerEmbedding = "embedder.latency"
	TimerInsert    = "store.insert_latency"
	TimerSearch    = "store.search_latency"
	TimerUpload    = "ingest.upload_latency"
)

// MetricsCollector provides a thread-safe interface for collecting
// application metrics for monitoring and troubleshooting.
type MetricsCollector struct {
	counters   map[string]int64
	gauges     map[string]float64
	timers     map[string][]time.Duration
	latestTime map[string]time.Time
	mu         sync.RWMutex
}

// NewMetricsCollector creates a new MetricsCollector instance.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		counters:   make(map[string]int64),
		gauges:     make(map[string]float64),
		timers:     make(map[string][]time.Duration),
		latestTime: make(map[string]time.Time),
	}
}

// IncrementCounter increments a named counter by the specified amount.
func (m *MetricsCollector) IncrementCounter(name string, amount int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counters[name] += amount
}

// SetGauge sets a named gauge to the specified value.
func (m *MetricsCollector) SetGauge(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gauges[name] = value
}

// RecordTimer records a duration for the specified timer. Only the most
// recent 100 samples of a timer are kept.
func (m *MetricsCollector) RecordTimer(name string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.timers[name] = append(m.timers[name], duration)

	if len(m.timers[name]) > 100 {
		m.timers[name] = m.timers[name][1:]
	}
}

// RecordTimestamp records the current time for the specified event.
func (m *MetricsCollector) RecordTimestamp(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.latestTime[name] = time.Now()
}

// GetCounter retrieves the current value of a counter.
func (m *MetricsCollector) GetCounter(name string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.counters[name]
}

// GetGauge retrieves the current value of a gauge.
func (m *MetricsCollector) GetGauge(name string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.gauges[name]
}

// GetTimerAverage calculates the average duration for a timer.
func (m *MetricsCollector) GetTimerAverage(name string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	durations := m.timers[name]
	if len(durations) == 0 {
		return 0
	}

	var total time.Duration
	for _, d := range durations {
		total += d
	}

	return total / time.Duration(len(durations))
}

// GetTimerP95 calculates the 95th percentile duration for a timer.
func (m *MetricsCollector) GetTimerP95(name string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	durations := m.timers[name]
	if len(durations) == 0 {
		return 0
	}

	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := int(float64(len(sorted)) * 0.95)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}

	return sorted[idx]
}

// GetTimeSince calculates the time elapsed since a recorded timestamp.
func (m *MetricsCollector) GetTimeSince(name string) time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	timestamp, exists := m.latestTime[name]
	if !exists {
		return 0
	}

	return time.Since(timestamp)
}

// TimerStats summarizes one timer for the metrics snapshot.
type TimerStats struct {
	Samples   int     `json:"samples"`
	AverageMS float64 `json:"average_ms"`
	P95MS     float64 `json:"p95_ms"`
}

// Snapshot returns a copy of every collected metric, suitable for JSON
// serialization on the metrics endpoint.
func (m *MetricsCollector) Snapshot() map[string]interface{} {
	m.mu.RLock()
	counters := make(map[string]int64, len(m.counters))
	for k, v := range m.counters {
		counters[k] = v
	}
	gauges := make(map[string]float64, len(m.gauges))
	for k, v := range m.gauges {
		gauges[k] = v
	}
	timerNames := make([]string, 0, len(m.timers))
	for k := range m.timers {
		timerNames = append(timerNames, k)
	}
	m.mu.RUnlock()

	timers := make(map[string]TimerStats, len(timerNames))
	for _, name := range timerNames {
		m.mu.RLock()
		samples := len(m.timers[name])
		m.mu.RUnlock()
		timers[name] = TimerStats{
			Samples:   samples,
			AverageMS: float64(m.GetTimerAverage(name)) / float64(time.Millisecond),
			P95MS:     float64(m.GetTimerP95(name)) / float64(time.Millisecond),
		}
	}

	return map[string]interface{}{
		"counters": counters,
		"gauges":   gauges,
		"timers":   timers,
	}
}
