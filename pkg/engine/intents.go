package engine

import (
	"github.com/DipokalLab/intellect/pkg/camera"
	"github.com/DipokalLab/intellect/pkg/debug"
)

type intentKind int

const (
	intentResize intentKind = iota
	intentGesture
	intentHover
	intentHoverAt
	intentLeave
	intentClick
	intentClickAt
	intentClose
	intentFit
)

// intent is one queued external event. Only the fields its kind needs are
// set.
type intent struct {
	kind    intentKind
	id      string
	x, y    float64 // Screen coordinates or size
	gesture camera.Gesture
}

// Resize queues a viewport size change.
func (e *Engine) Resize(width, height float64) {
	e.enqueue(intent{kind: intentResize, x: width, y: height})
}

// Gesture queues a pan/zoom input.
func (e *Engine) Gesture(g camera.Gesture) {
	e.enqueue(intent{kind: intentGesture, gesture: g})
}

// Hover queues a hover on a node id.
func (e *Engine) Hover(id string) {
	e.enqueue(intent{kind: intentHover, id: id})
}

// HoverAt queues a hover at a screen point; empty space ends the hover.
func (e *Engine) HoverAt(sx, sy float64) {
	e.enqueue(intent{kind: intentHoverAt, x: sx, y: sy})
}

// Leave queues the end of a hover.
func (e *Engine) Leave() {
	e.enqueue(intent{kind: intentLeave})
}

// Click queues a click on a node id.
func (e *Engine) Click(id string) {
	e.enqueue(intent{kind: intentClick, id: id})
}

// ClickAt queues a click at a screen point.
func (e *Engine) ClickAt(sx, sy float64) {
	e.enqueue(intent{kind: intentClickAt, x: sx, y: sy})
}

// CloseInspector queues dismissal of the inspector.
func (e *Engine) CloseInspector() {
	e.enqueue(intent{kind: intentClose})
}

// FitView queues a camera reset that shows every positioned node.
func (e *Engine) FitView() {
	e.enqueue(intent{kind: intentFit})
}

func (e *Engine) enqueue(in intent) {
	e.intents = append(e.intents, in)
}

func (e *Engine) applyIntents() {
	queue := e.intents
	e.intents = nil
	for _, in := range queue {
		e.apply(in)
	}
}

func (e *Engine) apply(in intent) {
	switch in.kind {
	case intentResize:
		if err := e.sim.Resize(in.x, in.y); err != nil {
			debug.Log("engine: resize ignored: %v", err)
			return
		}
		e.vp = camera.Viewport{Width: in.x, Height: in.y}
	case intentGesture:
		e.cam.ApplyGesture(in.gesture)
	case intentHover:
		if !e.hl.Hover(in.id) {
			e.hl.Leave()
		}
	case intentHoverAt:
		if id, ok := e.hit(in.x, in.y); ok {
			e.hl.Hover(id)
		} else {
			e.hl.Leave()
		}
	case intentLeave:
		e.hl.Leave()
	case intentClick:
		e.click(in.id)
	case intentClickAt:
		if id, ok := e.hit(in.x, in.y); ok {
			e.click(id)
		}
	case intentClose:
		e.insp.Close()
	case intentFit:
		minX, minY, maxX, maxY, ok := e.sim.Bounds()
		if !ok {
			return
		}
		if e.cam.Animating() {
			e.state.ClearFocusIf(e.animSeq)
		}
		e.cam.Cancel()
		b := camera.Bounds{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}
		e.cam.SetTransform(e.cam.ZoomToFit(b, e.vp, 40))
	}
}

func (e *Engine) hit(sx, sy float64) (string, bool) {
	wx, wy := e.cam.Transform().Invert(sx, sy)
	return e.scene.HitTest(wx, wy)
}

// click only acts on visible nodes.
func (e *Engine) click(id string) {
	if !e.sub.Has(id) {
		return
	}
	if ev, ok := e.insp.Click(id); ok {
		e.events = append(e.events, ev)
	}
}
