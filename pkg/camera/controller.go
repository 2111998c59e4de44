package camera

import (
	"math"
	"time"

	"github.com/DipokalLab/intellect/pkg/config"
	"github.com/DipokalLab/intellect/pkg/debug"
)

// Clock supplies the current time. Tests drive a fake one.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// Config holds zoom bounds and focus timings.
type Config struct {
	MinZoom       float64
	MaxZoom       float64
	FocusScale    float64
	FocusDuration time.Duration
	PulseLinger   time.Duration // How long the ring stays after arrival
	PulsePeriod   time.Duration // One grow-and-fade cycle
	PulseMinR     float64
	PulseMaxR     float64
}

// DefaultConfig returns the standard camera settings.
func DefaultConfig() Config {
	return Config{
		MinZoom:       0.1,
		MaxZoom:       8,
		FocusScale:    2.5,
		FocusDuration: 750 * time.Millisecond,
		PulseLinger:   1500 * time.Millisecond,
		PulsePeriod:   1000 * time.Millisecond,
		PulseMinR:     14,
		PulseMaxR:     40,
	}
}

// FromConfig overlays user configuration on the defaults.
func FromConfig(c config.CameraConfig) Config {
	cfg := DefaultConfig()
	if c.MinZoom > 0 {
		cfg.MinZoom = c.MinZoom
	}
	if c.MaxZoom > 0 {
		cfg.MaxZoom = c.MaxZoom
	}
	if c.FocusScale > 0 {
		cfg.FocusScale = c.FocusScale
	}
	if c.FocusDuration > 0 {
		cfg.FocusDuration = c.FocusDuration
	}
	if c.PulseLinger > 0 {
		cfg.PulseLinger = c.PulseLinger
	}
	return cfg
}

// Gesture is one pointer or wheel input. Zoom is a multiplicative factor
// around the anchor; 0 and 1 leave the scale alone.
type Gesture struct {
	DX, DY           float64
	Zoom             float64
	AnchorX, AnchorY float64
}

// Pulse is the ring drawn around the focused node.
type Pulse struct {
	NodeID  string
	Radius  float64
	Opacity float64
}

// Events reports what happened during Advance.
type Events struct {
	// FocusDone is set on the frame the animation reaches its target.
	FocusDone bool
	FocusNode string
	FocusSeq  uint64
	// PulseCleared is set when the ring is removed after lingering.
	PulseCleared bool
}

type animation struct {
	nodeID string
	seq    uint64
	start  time.Time
	vp     Viewport
	target Transform
	path   func(float64) view
}

type pulseState struct {
	nodeID  string
	start   time.Time
	clearAt time.Time // zero while the focus animation runs
}

// Controller owns the view transform. It has a single owner.
type Controller struct {
	cfg   Config
	t     Transform
	anim  *animation
	pulse *pulseState
}

// NewController starts at the identity transform.
func NewController(cfg Config) *Controller {
	return &Controller{cfg: cfg, t: Identity()}
}

// Transform returns the current view.
func (c *Controller) Transform() Transform { return c.t }

// SetTransform replaces the view, clamped.
func (c *Controller) SetTransform(t Transform) {
	c.t = t.Clamp(c.cfg.MinZoom, c.cfg.MaxZoom)
}

// Animating reports whether a focus animation is in flight.
func (c *Controller) Animating() bool { return c.anim != nil }

// ApplyGesture pans and zooms immediately. A gesture during a focus
// animation does not stop it; the next Advance writes over it.
func (c *Controller) ApplyGesture(g Gesture) {
	t := c.t
	t.X += g.DX
	t.Y += g.DY
	if g.Zoom > 0 && g.Zoom != 1 {
		wx, wy := t.Invert(g.AnchorX, g.AnchorY)
		t.K = math.Max(c.cfg.MinZoom, math.Min(c.cfg.MaxZoom, t.K*g.Zoom))
		t.X = g.AnchorX - wx*t.K
		t.Y = g.AnchorY - wy*t.K
	}
	c.t = t
}

// FocusOn starts animating toward (x, y) at FocusScale, centred in vp. Any
// animation or pulse in flight is dropped first.
func (c *Controller) FocusOn(nodeID string, seq uint64, x, y float64, vp Viewport, now time.Time) {
	c.Cancel()

	k := math.Max(c.cfg.MinZoom, math.Min(c.cfg.MaxZoom, c.cfg.FocusScale))
	cx, cy := vp.center()
	target := Transform{X: cx - x*k, Y: cy - y*k, K: k}

	c.anim = &animation{
		nodeID: nodeID,
		seq:    seq,
		start:  now,
		vp:     vp,
		target: target,
		path:   interpolateZoom(toView(c.t, vp), toView(target, vp)),
	}
	c.pulse = &pulseState{nodeID: nodeID, start: now}
	debug.Log("camera: focus on %s (seq %d)", nodeID, seq)
}

// Cancel abandons the focus animation and removes the pulse.
func (c *Controller) Cancel() {
	if c.anim != nil {
		debug.Log("camera: cancel focus on %s", c.anim.nodeID)
	}
	c.anim = nil
	c.pulse = nil
}

// Advance moves the animation and pulse to now.
func (c *Controller) Advance(now time.Time) Events {
	var ev Events

	if a := c.anim; a != nil {
		p := float64(now.Sub(a.start)) / float64(c.cfg.FocusDuration)
		if c.cfg.FocusDuration <= 0 || p >= 1 {
			c.t = a.target
			c.anim = nil
			ev.FocusDone = true
			ev.FocusNode = a.nodeID
			ev.FocusSeq = a.seq
			if c.pulse != nil {
				c.pulse.clearAt = now.Add(c.cfg.PulseLinger)
			}
		} else if p > 0 {
			c.t = fromView(a.path(cubicInOut(p)), a.vp)
		}
	}

	if c.pulse != nil && !c.pulse.clearAt.IsZero() && !now.Before(c.pulse.clearAt) {
		c.pulse = nil
		ev.PulseCleared = true
	}
	return ev
}

// Pulse returns the ring at now, or nil when none is shown.
func (c *Controller) Pulse(now time.Time) *Pulse {
	if c.pulse == nil {
		return nil
	}
	phase := 0.0
	if c.cfg.PulsePeriod > 0 {
		elapsed := now.Sub(c.pulse.start)
		if elapsed < 0 {
			elapsed = 0
		}
		phase = float64(elapsed%c.cfg.PulsePeriod) / float64(c.cfg.PulsePeriod)
	}
	return &Pulse{
		NodeID:  c.pulse.nodeID,
		Radius:  c.cfg.PulseMinR + phase*(c.cfg.PulseMaxR-c.cfg.PulseMinR),
		Opacity: 1 - phase,
	}
}

// ZoomToFit returns the transform showing b in vp with padding on every
// side, clamped to the zoom bounds.
func (c *Controller) ZoomToFit(b Bounds, vp Viewport, padding float64) Transform {
	w := math.Max(b.MaxX-b.MinX, 1)
	h := math.Max(b.MaxY-b.MinY, 1)
	k := math.Min((vp.Width-2*padding)/w, (vp.Height-2*padding)/h)
	if k <= 0 || math.IsNaN(k) {
		k = 1
	}
	k = math.Max(c.cfg.MinZoom, math.Min(c.cfg.MaxZoom, k))
	cx, cy := vp.center()
	mx, my := (b.MinX+b.MaxX)/2, (b.MinY+b.MaxY)/2
	return Transform{X: cx - mx*k, Y: cy - my*k, K: k}
}
