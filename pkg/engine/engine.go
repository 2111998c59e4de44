// Package engine owns the timeline graph and advances it one authoritative
// tick at a time.
//
// Hosts enqueue intents (resize, gestures, pointer input) at any point
// between ticks; Tick applies them in order, rebinds the visible subgraph
// when the store revision changed, steps the simulation, handles focus
// requests and advances the camera. An Engine has a single owner and is not
// safe for concurrent use; the StateStore it reads may be.
package engine

import (
	"time"

	"github.com/DipokalLab/intellect/pkg/camera"
	"github.com/DipokalLab/intellect/pkg/config"
	"github.com/DipokalLab/intellect/pkg/debug"
	"github.com/DipokalLab/intellect/pkg/filter"
	"github.com/DipokalLab/intellect/pkg/interact"
	"github.com/DipokalLab/intellect/pkg/layout"
	"github.com/DipokalLab/intellect/pkg/model"
	"github.com/DipokalLab/intellect/pkg/render"
	"github.com/DipokalLab/intellect/pkg/store"
)

// StateStore is what the engine reads from and writes to the shared state.
// *store.Store implements it.
type StateStore interface {
	interact.Selection

	Document() *model.GraphDocument
	Revision() uint64
	SelectedFields() map[string]bool
	Focus() store.Focus
	ClearFocusIf(seq uint64) bool
	Connected() []string
}

// Options configures the engine's components.
type Options struct {
	Layout layout.Config
	Camera camera.Config
	Render render.Config
	Clock  camera.Clock

	Width, Height float64
}

// DefaultOptions returns defaults for every component and the wall clock.
func DefaultOptions() Options {
	return Options{
		Layout: layout.DefaultConfig(),
		Camera: camera.DefaultConfig(),
		Render: render.DefaultConfig(),
		Clock:  camera.SystemClock{},
		Width:  800,
		Height: 600,
	}
}

// OptionsFromConfig maps user configuration onto engine options.
func OptionsFromConfig(c config.Config) Options {
	o := DefaultOptions()
	o.Layout = layout.FromConfig(c.Layout)
	o.Camera = camera.FromConfig(c.Camera)
	o.Render = render.FromConfig(c.Render)
	return o
}

// Engine is the single-owner core.
type Engine struct {
	state StateStore
	clock camera.Clock

	sim   *layout.Simulation
	scene *render.Scene
	cam   *camera.Controller
	hl    *interact.Highlighter
	insp  *interact.Inspector

	doc   *model.GraphDocument
	sub   *filter.Subgraph
	rev   uint64
	bound bool

	// handledSeq is the last store focus request acted on; animSeq is the
	// one the camera is currently animating.
	handledSeq uint64
	animSeq    uint64

	vp      camera.Viewport
	now     time.Time
	intents []intent
	events  []interact.NodeSelected
}

// New creates an engine reading state. Nothing is bound until the first
// Tick after the store has data.
func New(state StateStore, opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = camera.SystemClock{}
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 800, 600
	}
	scene := render.NewScene(opts.Render)
	e := &Engine{
		state: state,
		clock: opts.Clock,
		sim:   layout.New(opts.Layout),
		scene: scene,
		cam:   camera.NewController(opts.Camera),
		hl:    interact.NewHighlighter(scene),
		insp:  interact.NewInspector(state),
		sub:   filter.Filter(nil, nil),
		vp:    camera.Viewport{Width: opts.Width, Height: opts.Height},
	}
	if err := e.sim.Resize(opts.Width, opts.Height); err != nil {
		debug.Log("engine: %v", err)
	}
	e.now = e.clock.Now()
	return e
}

// Tick runs one frame:
//
//  1. apply queued intents in arrival order
//  2. rebind when the store revision changed (filter, join, rebind, reheat)
//  3. step the simulation and copy positions into the scene
//  4. act on a new focus request
//  5. advance the camera and rescale labels for its zoom
func (e *Engine) Tick() {
	e.now = e.clock.Now()

	e.applyIntents()
	e.syncState()

	e.sim.Tick()
	e.scene.Sync(e.sim)

	e.handleFocus()

	ev := e.cam.Advance(e.now)
	if ev.FocusDone {
		e.state.ClearFocusIf(ev.FocusSeq)
		debug.Log("engine: focus on %s done", ev.FocusNode)
	}
	e.scene.ApplyZoom(e.cam.Transform().K)
}

// syncState rebinds to the store when its revision moved.
func (e *Engine) syncState() {
	rev := e.state.Revision()
	if e.bound && rev == e.rev {
		return
	}
	doc := e.state.Document()
	if doc == nil {
		return
	}
	defer debug.LogEnterExit("engine: rebind")()

	if doc != e.doc {
		e.doc = doc
		if lo, hi, ok := doc.YearRange(); ok {
			e.sim.SetYearDomain(lo, hi)
		}
	}

	// A rebind supersedes any focus animation in flight.
	if e.cam.Animating() {
		e.cam.Cancel()
		e.state.ClearFocusIf(e.animSeq)
	}

	e.sub = filter.Filter(doc, e.state.SelectedFields())
	res := e.scene.Join(e.sub)
	e.sim.SetGraph(e.sub)
	e.hl.Refresh()

	e.rev = rev
	e.bound = true
	debug.Log("engine: revision %d bound, %d visible (+%d -%d)",
		rev, e.sub.Len(), len(res.Entered), len(res.Exited))
}

// handleFocus starts a camera focus for a new store request. A request for
// a node that is not visible is cleared without moving the camera.
func (e *Engine) handleFocus() {
	f := e.state.Focus()
	if f.NodeID == "" || f.Seq == e.handledSeq {
		return
	}
	e.handledSeq = f.Seq

	n, ok := e.sim.Node(f.NodeID)
	if !ok {
		e.state.ClearFocusIf(f.Seq)
		debug.Log("engine: focus target %s not visible, cleared", f.NodeID)
		return
	}
	e.cam.FocusOn(f.NodeID, f.Seq, n.X, n.Y, e.vp, e.now)
	e.animSeq = f.Seq
}

// Events drains the inspector events emitted since the last call.
func (e *Engine) Events() []interact.NodeSelected {
	out := e.events
	e.events = nil
	return out
}

// Frame snapshots the scene as of the last tick.
func (e *Engine) Frame() render.Frame {
	return e.scene.Frame(e.vp.Width, e.vp.Height, e.cam.Transform(), e.cam.Pulse(e.now))
}

// Subgraph returns the currently bound visible subgraph.
func (e *Engine) Subgraph() *filter.Subgraph { return e.sub }

// Simulation exposes the layout for read-only inspection by hosts.
func (e *Engine) Simulation() *layout.Simulation { return e.sim }

// Scene exposes the element pool for read-only inspection by hosts.
func (e *Engine) Scene() *render.Scene { return e.scene }

// Transform returns the current camera transform.
func (e *Engine) Transform() camera.Transform { return e.cam.Transform() }

// Viewport returns the current viewport size.
func (e *Engine) Viewport() camera.Viewport { return e.vp }

// Hovered returns the hovered node id, or "".
func (e *Engine) Hovered() string { return e.hl.Hovered() }

// Settled reports whether nothing is moving: the simulation is at rest and
// no focus animation or pulse is running.
func (e *Engine) Settled() bool {
	return e.sim.Settled() && !e.cam.Animating() && e.cam.Pulse(e.now) == nil
}

// RunToRest ticks until the engine settles or maxTicks pass, and returns
// the number of ticks run.
func (e *Engine) RunToRest(maxTicks int) int {
	n := 0
	for ; n < maxTicks; n++ {
		e.Tick()
		if e.bound && e.Settled() {
			return n + 1
		}
	}
	return n
}

// ConnectionPath returns the shortest chain linking the store's connected
// persons over the visible graph.
func (e *Engine) ConnectionPath() ([]string, bool) {
	return interact.ConnectionPath(e.sub, e.state.Connected())
}
