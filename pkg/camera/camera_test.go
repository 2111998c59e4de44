package camera

import (
	"math"
	"testing"
	"time"

	"github.com/DipokalLab/intellect/pkg/config"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

var vp = Viewport{Width: 800, Height: 600}

func TestTransform_ApplyInvert(t *testing.T) {
	tr := Transform{X: 10, Y: -20, K: 2}
	sx, sy := tr.Apply(5, 7)
	if sx != 20 || sy != -6 {
		t.Errorf("Apply = (%g,%g)", sx, sy)
	}
	x, y := tr.Invert(sx, sy)
	if x != 5 || y != 7 {
		t.Errorf("Invert = (%g,%g)", x, y)
	}
	if got := (Transform{K: 20}).Clamp(0.1, 8).K; got != 8 {
		t.Errorf("clamp high = %g", got)
	}
	if got := (Transform{K: 0.01}).Clamp(0.1, 8).K; got != 0.1 {
		t.Errorf("clamp low = %g", got)
	}
}

func TestGesture_PanAndZoomAroundAnchor(t *testing.T) {
	c := NewController(DefaultConfig())
	c.ApplyGesture(Gesture{DX: 30, DY: -10})
	if tr := c.Transform(); tr.X != 30 || tr.Y != -10 || tr.K != 1 {
		t.Fatalf("pan gave %+v", tr)
	}

	wx, wy := c.Transform().Invert(400, 300)
	c.ApplyGesture(Gesture{Zoom: 2, AnchorX: 400, AnchorY: 300})
	ax, ay := c.Transform().Apply(wx, wy)
	if !near(ax, 400) || !near(ay, 300) {
		t.Errorf("anchor moved to (%g,%g)", ax, ay)
	}
	if c.Transform().K != 2 {
		t.Errorf("expected K=2, got %g", c.Transform().K)
	}
}

func TestGesture_ZoomIsClamped(t *testing.T) {
	c := NewController(DefaultConfig())
	for i := 0; i < 20; i++ {
		c.ApplyGesture(Gesture{Zoom: 2})
	}
	if k := c.Transform().K; k != 8 {
		t.Errorf("expected max zoom 8, got %g", k)
	}
	for i := 0; i < 40; i++ {
		c.ApplyGesture(Gesture{Zoom: 0.5})
	}
	if k := c.Transform().K; k != 0.1 {
		t.Errorf("expected min zoom 0.1, got %g", k)
	}
}

func TestInterpolateZoom_Endpoints(t *testing.T) {
	cases := []struct{ p0, p1 view }{
		{view{0, 0, 800}, view{500, 200, 320}},
		{view{10, 10, 800}, view{10, 10, 100}}, // pure zoom
		{view{-300, 40, 200}, view{900, -80, 200}},
	}
	for _, c := range cases {
		f := interpolateZoom(c.p0, c.p1)
		start, end := f(0), f(1)
		for i := 0; i < 3; i++ {
			if math.Abs(start[i]-c.p0[i]) > 1e-6 || math.Abs(end[i]-c.p1[i]) > 1e-6 {
				t.Errorf("%v -> %v: endpoints %v %v", c.p0, c.p1, start, end)
			}
		}
		mid := f(0.5)
		if math.IsNaN(mid[0]) || mid[2] <= 0 {
			t.Errorf("bad midpoint %v", mid)
		}
	}
}

func TestViewRoundTrip(t *testing.T) {
	tr := Transform{X: 123, Y: -45, K: 2.5}
	back := fromView(toView(tr, vp), vp)
	if !near(back.X, tr.X) || !near(back.Y, tr.Y) || !near(back.K, tr.K) {
		t.Errorf("round trip %+v -> %+v", tr, back)
	}
}

func TestFocus_AnimatesToCentre(t *testing.T) {
	cfg := DefaultConfig()
	c := NewController(cfg)
	t0 := time.Unix(1000, 0)

	c.FocusOn("A", 1, 200, 150, vp, t0)
	if !c.Animating() {
		t.Fatal("expected animation")
	}
	if ev := c.Advance(t0.Add(300 * time.Millisecond)); ev.FocusDone {
		t.Fatal("animation finished early")
	}
	mid := c.Transform()
	if mid == Identity() {
		t.Error("transform did not move mid-animation")
	}
	if p := c.Pulse(t0.Add(300 * time.Millisecond)); p == nil || p.NodeID != "A" {
		t.Errorf("expected pulse on A, got %+v", p)
	}

	ev := c.Advance(t0.Add(cfg.FocusDuration))
	if !ev.FocusDone || ev.FocusNode != "A" || ev.FocusSeq != 1 {
		t.Fatalf("expected completion event, got %+v", ev)
	}
	sx, sy := c.Transform().Apply(200, 150)
	if !near(sx, 400) || !near(sy, 300) || c.Transform().K != cfg.FocusScale {
		t.Errorf("node not centred at focus scale: (%g,%g) k=%g", sx, sy, c.Transform().K)
	}

	// Ring lingers, then clears.
	if ev := c.Advance(t0.Add(cfg.FocusDuration + cfg.PulseLinger/2)); ev.PulseCleared {
		t.Error("ring cleared too early")
	}
	if c.Pulse(t0) == nil {
		t.Error("ring should still be visible while lingering")
	}
	ev = c.Advance(t0.Add(cfg.FocusDuration + cfg.PulseLinger))
	if !ev.PulseCleared || c.Pulse(t0) != nil {
		t.Errorf("expected ring cleared, got %+v", ev)
	}
}

func TestFocus_SecondRequestReplacesFirst(t *testing.T) {
	cfg := DefaultConfig()
	c := NewController(cfg)
	t0 := time.Unix(0, 0)

	c.FocusOn("A", 1, 100, 100, vp, t0)
	c.Advance(t0.Add(200 * time.Millisecond))
	c.FocusOn("B", 2, 600, 400, vp, t0.Add(250*time.Millisecond))

	var done []Events
	for ms := 300; ms <= 3000; ms += 50 {
		if ev := c.Advance(t0.Add(time.Duration(ms) * time.Millisecond)); ev.FocusDone || ev.PulseCleared {
			done = append(done, ev)
		}
		if p := c.Pulse(t0.Add(time.Duration(ms) * time.Millisecond)); p != nil && p.NodeID != "B" {
			t.Fatalf("leftover ring on %s", p.NodeID)
		}
	}

	completions := 0
	for _, ev := range done {
		if ev.FocusDone {
			completions++
			if ev.FocusNode != "B" || ev.FocusSeq != 2 {
				t.Errorf("completion for the replaced request: %+v", ev)
			}
		}
	}
	if completions != 1 {
		t.Errorf("expected exactly one completion, got %d", completions)
	}
	sx, sy := c.Transform().Apply(600, 400)
	if !near(sx, 400) || !near(sy, 300) {
		t.Errorf("camera did not settle on B: (%g,%g)", sx, sy)
	}
}

func TestFocus_GestureDuringAnimationIsOverwritten(t *testing.T) {
	c := NewController(DefaultConfig())
	t0 := time.Unix(0, 0)
	c.FocusOn("A", 1, 50, 50, vp, t0)
	c.ApplyGesture(Gesture{DX: 500})
	if c.Transform().X != 500 {
		t.Fatal("gesture should apply immediately")
	}
	c.Advance(t0.Add(time.Second))
	sx, _ := c.Transform().Apply(50, 50)
	if !near(sx, 400) {
		t.Errorf("animation should win at completion, node at %g", sx)
	}
}

func TestCancel(t *testing.T) {
	c := NewController(DefaultConfig())
	t0 := time.Unix(0, 0)
	c.FocusOn("A", 1, 50, 50, vp, t0)
	c.Cancel()
	if c.Animating() || c.Pulse(t0) != nil {
		t.Error("cancel must drop the animation and ring")
	}
	if ev := c.Advance(t0.Add(time.Second)); ev.FocusDone {
		t.Error("cancelled focus must not complete")
	}
}

func TestPulse_Cycles(t *testing.T) {
	cfg := DefaultConfig()
	c := NewController(cfg)
	t0 := time.Unix(0, 0)
	c.FocusOn("A", 1, 0, 0, vp, t0)
	a := c.Pulse(t0)
	b := c.Pulse(t0.Add(cfg.PulsePeriod / 2))
	again := c.Pulse(t0.Add(cfg.PulsePeriod))
	if !(b.Radius > a.Radius && b.Opacity < a.Opacity) {
		t.Errorf("ring should grow and fade: %+v -> %+v", a, b)
	}
	if !near(again.Radius, a.Radius) {
		t.Errorf("ring should restart each period: %+v vs %+v", again, a)
	}
}

func TestZoomToFit(t *testing.T) {
	c := NewController(DefaultConfig())
	tr := c.ZoomToFit(Bounds{MinX: 0, MinY: 0, MaxX: 1600, MaxY: 600}, vp, 0)
	if !near(tr.K, 0.5) {
		t.Errorf("expected k=0.5, got %g", tr.K)
	}
	sx, sy := tr.Apply(800, 300)
	if !near(sx, 400) || !near(sy, 300) {
		t.Errorf("bounds not centred: (%g,%g)", sx, sy)
	}
	huge := c.ZoomToFit(Bounds{MaxX: 1e9, MaxY: 1e9}, vp, 10)
	if huge.K != 0.1 {
		t.Errorf("expected clamp to min zoom, got %g", huge.K)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.CameraConfig{MaxZoom: 4, FocusDuration: time.Second})
	if cfg.MaxZoom != 4 || cfg.FocusDuration != time.Second || cfg.MinZoom != 0.1 {
		t.Errorf("unexpected %+v", cfg)
	}
}
