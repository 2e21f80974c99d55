package telemetry

import (
	"testing"
	"time"
)

func TestCounters(t *testing.T) {
	m := NewMetricsCollector()

	m.IncrementCounter(MetricInserts, 1)
	m.IncrementCounter(MetricInserts, 2)
	m.IncrementCounter(MetricDeletes, 5)

	if got := m.GetCounter(MetricInserts); got != 3 {
		t.Errorf("GetCounter(%q) = %d, want 3", MetricInserts, got)
	}
	if got := m.GetCounter(MetricDeletes); got != 5 {
		t.Errorf("GetCounter(%q) = %d, want 5", MetricDeletes, got)
	}
	if got := m.GetCounter("unknown"); got != 0 {
		t.Errorf("GetCounter(unknown) = %d, want 0", got)
	}
}

func TestGauges(t *testing.T) {
	m := NewMetricsCollector()

	m.SetGauge("collection.row_count", 42)
	m.SetGauge("collection.row_count", 100)

	if got := m.GetGauge("collection.row_count"); got != 100 {
		t.Errorf("GetGauge = %f, want 100", got)
	}
}

func TestTimerAverageAndP95(t *testing.T) {
	m := NewMetricsCollector()

	for i := 1; i <= 10; i++ {
		m.RecordTimer(TimerSearch, time.Duration(i)*time.Millisecond)
	}

	avg := m.GetTimerAverage(TimerSearch)
	want := 5500 * time.Microsecond
	if avg != want {
		t.Errorf("GetTimerAverage = %v, want %v", avg, want)
	}

	p95 := m.GetTimerP95(TimerSearch)
	if p95 != 10*time.Millisecond {
		t.Errorf("GetTimerP95 = %v, want 10ms", p95)
	}
}

func TestTimerCapsSamples(t *testing.T) {
	m := NewMetricsCollector()

	for i := 0; i < 150; i++ {
		m.RecordTimer(TimerInsert, time.Millisecond)
	}

	m.mu.RLock()
	n := len(m.timers[TimerInsert])
	m.mu.RUnlock()

	if n != 100 {
		t.Errorf("timer kept %d samples, want 100", n)
	}
}

func TestEmptyTimer(t *testing.T) {
	m := NewMetricsCollector()

	if got := m.GetTimerAverage("missing"); got != 0 {
		t.Errorf("GetTimerAverage(missing) = %v, want 0", got)
	}
	if got := m.GetTimerP95("missing"); got != 0 {
		t.Errorf("GetTimerP95(missing) = %v, want 0", got)
	}
}

func TestSnapshot(t *testing.T) {
	m := NewMetricsCollector()

	m.IncrementCounter(MetricQueries, 7)
	m.SetGauge("collection.row_count", 3)
	m.RecordTimer(TimerEmbedding, 2*time.Millisecond)

	snap := m.Snapshot()

	counters, ok := snap["counters"].(map[string]int64)
	if !ok {
		t.Fatal("snapshot counters has wrong type")
	}
	if counters[MetricQueries] != 7 {
		t.Errorf("snapshot counter = %d, want 7", counters[MetricQueries])
	}

	timers, ok := snap["timers"].(map[string]TimerStats)
	if !ok {
		t.Fatal("snapshot timers has wrong type")
	}
	ts := timers[TimerEmbedding]
	if ts.Samples != 1 || ts.AverageMS != 2 {
		t.Errorf("snapshot timer = %+v, want 1 sample at 2ms", ts)
	}
}
