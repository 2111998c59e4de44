// Package metrics keeps in-process timings for the engine's hot paths.
// Collection is on unless INTELLECT_METRICS=0; `intellect snapshot --stats`
// prints what was gathered.
//
//	func (s *Simulation) Tick() {
//	    defer metrics.Timer(metrics.SimulationTick)()
//	    ...
//	}
package metrics

import (
	"os"
	"sync/atomic"
	"time"
)

var enabled = os.Getenv("INTELLECT_METRICS") != "0"

// Enabled reports whether samples are recorded.
func Enabled() bool {
	return enabled
}

// SetEnabled turns collection on or off.
func SetEnabled(e bool) {
	enabled = e
}

// TimingMetric aggregates durations of one operation. Safe for concurrent
// use.
type TimingMetric struct {
	name  string
	count atomic.Int64
	total atomic.Int64 // ns
	max   atomic.Int64 // ns
	min   atomic.Int64 // ns, 0 until the first sample
}

// registry holds every metric in report order.
var registry []*TimingMetric

func newTimingMetric(name string) *TimingMetric {
	return &TimingMetric{name: name}
}

func register(name string) *TimingMetric {
	m := newTimingMetric(name)
	registry = append(registry, m)
	return m
}

// Record adds one sample.
func (m *TimingMetric) Record(d time.Duration) {
	if !enabled {
		return
	}
	ns := d.Nanoseconds()
	m.count.Add(1)
	m.total.Add(ns)
	for old := m.max.Load(); ns > old; old = m.max.Load() {
		if m.max.CompareAndSwap(old, ns) {
			break
		}
	}
	for old := m.min.Load(); old == 0 || ns < old; old = m.min.Load() {
		if m.min.CompareAndSwap(old, ns) {
			break
		}
	}
}

// Name returns the metric's report name.
func (m *TimingMetric) Name() string { return m.name }

// Count returns the number of samples.
func (m *TimingMetric) Count() int64 { return m.count.Load() }

// TimingStats is a point-in-time summary of one metric in milliseconds.
type TimingStats struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	MinMs   float64 `json:"min_ms,omitempty"`
}

// Stats summarises the samples so far.
func (m *TimingMetric) Stats() TimingStats {
	count, total := m.count.Load(), m.total.Load()
	s := TimingStats{
		Name:    m.name,
		Count:   count,
		TotalMs: float64(total) / 1e6,
		MaxMs:   float64(m.max.Load()) / 1e6,
		MinMs:   float64(m.min.Load()) / 1e6,
	}
	if count > 0 {
		s.AvgMs = float64(total/count) / 1e6
	}
	return s
}

// Reset drops every sample.
func (m *TimingMetric) Reset() {
	m.count.Store(0)
	m.total.Store(0)
	m.max.Store(0)
	m.min.Store(0)
}

// Timer starts timing m; call the result to record the sample.
func Timer(m *TimingMetric) func() {
	return TimerWithCallback(m, nil)
}

// TimerWithCallback is Timer that also hands the duration to cb.
func TimerWithCallback(m *TimingMetric, cb func(time.Duration)) func() {
	if !enabled || m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		d := time.Since(start)
		m.Record(d)
		if cb != nil {
			cb(d)
		}
	}
}

// Engine and host timings.
var (
	DocumentLoad   = register("document_load")
	DocumentBuild  = register("document_build")
	FilterCompute  = register("filter_compute")
	GraphRebind    = register("graph_rebind")
	SimulationTick = register("simulation_tick")
	SceneSync      = register("scene_sync")
	SnapshotRender = register("snapshot_render")
	UIRender       = register("ui_render")
)

// ResetAll clears every registered metric.
func ResetAll() {
	for _, m := range registry {
		m.Reset()
	}
}

// AllTimingStats returns stats for the metrics that have samples.
func AllTimingStats() []TimingStats {
	var out []TimingStats
	for _, m := range registry {
		if m.Count() > 0 {
			out = append(out, m.Stats())
		}
	}
	return out
}
