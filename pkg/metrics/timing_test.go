package metrics

import (
	"testing"
	"time"
)

func TestTimingMetric_RecordAndStats(t *testing.T) {
	m := newTimingMetric("test")
	m.Record(2 * time.Millisecond)
	m.Record(4 * time.Millisecond)

	stats := m.Stats()
	if stats.Count != 2 {
		t.Fatalf("expected count 2, got %d", stats.Count)
	}
	if stats.MaxMs != 4 {
		t.Errorf("expected max 4ms, got %v", stats.MaxMs)
	}
	if stats.MinMs != 2 {
		t.Errorf("expected min 2ms, got %v", stats.MinMs)
	}
	if stats.AvgMs != 3 {
		t.Errorf("expected avg 3ms, got %v", stats.AvgMs)
	}

	m.Reset()
	if m.Count() != 0 || m.Stats().MinMs != 0 {
		t.Errorf("reset did not clear metric: %+v", m.Stats())
	}
}

func TestTimer_DisabledRecordsNothing(t *testing.T) {
	prev := Enabled()
	t.Cleanup(func() { SetEnabled(prev) })
	SetEnabled(false)

	m := newTimingMetric("off")
	Timer(m)()
	if m.Count() != 0 {
		t.Fatalf("expected no samples while disabled, got %d", m.Count())
	}
}

func TestTimerWithCallback(t *testing.T) {
	prev := Enabled()
	t.Cleanup(func() { SetEnabled(prev) })
	SetEnabled(true)

	m := newTimingMetric("cb")
	var got time.Duration
	called := false
	TimerWithCallback(m, func(d time.Duration) {
		called = true
		got = d
	})()

	if !called {
		t.Fatal("callback not invoked")
	}
	if got < 0 {
		t.Errorf("negative duration %v", got)
	}
	if m.Count() != 1 {
		t.Errorf("expected one sample, got %d", m.Count())
	}
}

func TestAllTimingStats_OnlyPopulated(t *testing.T) {
	prev := Enabled()
	t.Cleanup(func() {
		SetEnabled(prev)
		ResetAll()
	})
	SetEnabled(true)
	ResetAll()

	FilterCompute.Record(time.Millisecond)
	stats := AllTimingStats()
	if len(stats) != 1 || stats[0].Name != "filter_compute" {
		t.Fatalf("expected only filter_compute, got %+v", stats)
	}
}
