// Package metrics keeps in-process timing and cache counters for leadsheet's
// hot paths: file retrieval, parsing, transposition and sheet rendering.
//
// Collection is on by default and can be switched off with
// LEADSHEET_METRICS=0.
//
//	func parse() {
//	    defer metrics.Timer(metrics.Parse)()
//	    ...
//	}
package metrics

import (
	"os"
	"sync/atomic"
	"time"
)

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv("LEADSHEET_METRICS") != "0")
}

// Enabled returns whether metrics collection is enabled.
func Enabled() bool {
	return enabled.Load()
}

// SetEnabled switches collection on or off.
func SetEnabled(e bool) {
	enabled.Store(e)
}

// TimingMetric accumulates durations for one named operation.
type TimingMetric struct {
	name    string
	count   atomic.Int64
	totalNs atomic.Int64
	maxNs   atomic.Int64
	minNs   atomic.Int64 // 0 until the first sample
}

func newTimingMetric(name string) *TimingMetric {
	return &TimingMetric{name: name}
}

// Record adds one sample.
func (m *TimingMetric) Record(d time.Duration) {
	if !Enabled() {
		return
	}
	ns := d.Nanoseconds()
	m.count.Add(1)
	m.totalNs.Add(ns)

	for {
		old := m.maxNs.Load()
		if ns <= old || m.maxNs.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.minNs.Load()
		if old != 0 && ns >= old {
			break
		}
		if m.minNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// Name returns the metric name.
func (m *TimingMetric) Name() string {
	return m.name
}

// Count returns the number of samples.
func (m *TimingMetric) Count() int64 {
	return m.count.Load()
}

// Stats returns a snapshot of the metric.
func (m *TimingMetric) Stats() TimingStats {
	count := m.count.Load()
	total := m.totalNs.Load()
	var avg int64
	if count > 0 {
		avg = total / count
	}
	return TimingStats{
		Name:  m.name,
		Count: count,
		Total: time.Duration(total),
		Avg:   time.Duration(avg),
		Max:   time.Duration(m.maxNs.Load()),
		Min:   time.Duration(m.minNs.Load()),
	}
}

// Reset clears all samples.
func (m *TimingMetric) Reset() {
	m.count.Store(0)
	m.totalNs.Store(0)
	m.maxNs.Store(0)
	m.minNs.Store(0)
}

// TimingStats is a point-in-time view of a TimingMetric.
type TimingStats struct {
	Name  string        `json:"name"`
	Count int64         `json:"count"`
	Total time.Duration `json:"total_ns"`
	Avg   time.Duration `json:"avg_ns"`
	Max   time.Duration `json:"max_ns"`
	Min   time.Duration `json:"min_ns,omitempty"`
}

// Timer starts timing m; call the returned function to record the sample.
func Timer(m *TimingMetric) func() {
	if !Enabled() || m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.Record(time.Since(start))
	}
}

// Counter is a monotonically increasing count.
type Counter struct {
	name string
	n    atomic.Int64
}

// Inc adds one.
func (c *Counter) Inc() {
	if Enabled() {
		c.n.Add(1)
	}
}

// Name returns the counter name.
func (c *Counter) Name() string {
	return c.name
}

// Value returns the current count.
func (c *Counter) Value() int64 {
	return c.n.Load()
}

var (
	FileRetrieve = newTimingMetric("file_retrieve")
	Parse        = newTimingMetric("parse")
	Transpose    = newTimingMetric("transpose")
	SheetRender  = newTimingMetric("sheet_render")

	CacheHits   = &Counter{name: "parse_cache_hits"}
	CacheMisses = &Counter{name: "parse_cache_misses"}
)

// AllTimingMetrics returns every registered timing metric.
func AllTimingMetrics() []*TimingMetric {
	return []*TimingMetric{FileRetrieve, Parse, Transpose, SheetRender}
}

// AllCounters returns every registered counter.
func AllCounters() []*Counter {
	return []*Counter{CacheHits, CacheMisses}
}

// ResetAll clears every metric and counter.
func ResetAll() {
	for _, m := range AllTimingMetrics() {
		m.Reset()
	}
	for _, c := range AllCounters() {
		c.n.Store(0)
	}
}

// AllTimingStats returns stats for the metrics that have samples.
func AllTimingStats() []TimingStats {
	var stats []TimingStats
	for _, m := range AllTimingMetrics() {
		if m.Count() > 0 {
			stats = append(stats, m.Stats())
		}
	}
	return stats
}
