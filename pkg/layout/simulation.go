// Package layout positions the visible subgraph on a timeline with a
// force-directed solver.
//
// The simulation follows d3-force: every tick applies link, many-body,
// band, collision and time-axis forces to velocities, then integrates with
// velocity decay while alpha (the temperature) decays toward zero. Nodes
// are pinned on x to their year unless pinning is disabled.
//
// A Simulation has a single owner and is not safe for concurrent use.
package layout

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/barneshut"

	"github.com/DipokalLab/intellect/pkg/debug"
	"github.com/DipokalLab/intellect/pkg/filter"
	"github.com/DipokalLab/intellect/pkg/metrics"
	"github.com/DipokalLab/intellect/pkg/model"
)

// Node is the mutable simulation state of one visible node.
type Node struct {
	ID   string
	Kind model.NodeKind
	Year int

	X, Y   float64
	VX, VY float64
	// FX, when set, is authoritative on x.
	FX *float64

	// Positioned is false until the node has been through one tick.
	Positioned bool
	Radius     float64
	Degree     int
}

// Link is a bound edge.
type Link struct {
	Source, Target *Node

	strength float64
	bias     float64
}

// Simulation is the force-directed timeline solver.
type Simulation struct {
	cfg Config

	width, height float64
	scale         TimeScale
	domainSet     bool
	minYear       int
	maxYear       int

	nodes []*Node
	byID  map[string]*Node
	links []*Link

	alpha float64
	ticks int

	rng    *rand.Rand
	bodies []barneshut.Particle2
	grid   map[cell][]int
}

// New returns an empty simulation with an 800x600 viewport.
func New(cfg Config) *Simulation {
	s := &Simulation{
		cfg:    cfg,
		width:  800,
		height: 600,
		byID:   make(map[string]*Node),
		alpha:  cfg.Alpha,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		grid:   make(map[cell][]int),
	}
	s.scale = NewTimeScale(0, 1, s.width, cfg.Margin)
	return s
}

// Config returns the active parameters.
func (s *Simulation) Config() Config { return s.cfg }

// Size returns the viewport dimensions.
func (s *Simulation) Size() (w, h float64) { return s.width, s.height }

// Scale returns the current year-to-x mapping.
func (s *Simulation) Scale() TimeScale { return s.scale }

// Nodes returns the bound nodes, persons first in subgraph order.
func (s *Simulation) Nodes() []*Node { return s.nodes }

// Links returns the bound links.
func (s *Simulation) Links() []*Link { return s.links }

// Node looks up a bound node.
func (s *Simulation) Node(id string) (*Node, bool) {
	n, ok := s.byID[id]
	return n, ok
}

// Alpha returns the current temperature.
func (s *Simulation) Alpha() float64 { return s.alpha }

// Ticks returns how many steps have run.
func (s *Simulation) Ticks() int { return s.ticks }

// Settled reports whether alpha has decayed below AlphaMin.
func (s *Simulation) Settled() bool { return s.alpha < s.cfg.AlphaMin }

// Reheat raises alpha to at least a, putting the layout back in motion
// without discarding positions.
func (s *Simulation) Reheat(a float64) {
	if a > s.alpha {
		s.alpha = a
	}
	debug.Log("layout: reheat to %.3f", s.alpha)
}

// SetYearDomain fixes the time axis to [lo, hi] regardless of which nodes
// are visible, so x positions do not shift when the filter changes.
func (s *Simulation) SetYearDomain(lo, hi int) {
	s.domainSet = true
	s.minYear, s.maxYear = lo, hi
	s.rebuildScale()
}

func (s *Simulation) rebuildScale() TimeScale {
	old := s.scale
	lo, hi := s.minYear, s.maxYear
	if !s.domainSet {
		lo, hi = s.visibleYearRange()
	}
	s.scale = NewTimeScale(lo, hi, s.width, s.cfg.Margin)
	return old
}

func (s *Simulation) visibleYearRange() (lo, hi int) {
	for i, n := range s.nodes {
		if i == 0 || n.Year < lo {
			lo = n.Year
		}
		if i == 0 || n.Year > hi {
			hi = n.Year
		}
	}
	return lo, hi
}

func (s *Simulation) radius(kind model.NodeKind) float64 {
	if kind == model.KindPerson {
		return s.cfg.CollideRadiusPerson
	}
	return s.cfg.CollideRadiusAchievement
}

// pin fixes n on x at its year.
func (s *Simulation) pin(n *Node) {
	x := s.scale.X(n.Year)
	n.FX = &x
	n.X = x
}

// SetGraph rebinds the simulation to sub. Nodes present before and after
// keep their position, velocity and pin. Entering nodes start at their
// year's x and a random y near their band. Links are rebuilt. The
// simulation is reheated unless this is the first binding.
func (s *Simulation) SetGraph(sub *filter.Subgraph) {
	defer metrics.Timer(metrics.GraphRebind)()
	defer debug.LogEnterExit("layout: set graph")()

	first := len(s.byID) == 0 && s.ticks == 0
	next := make(map[string]*Node, sub.Len())
	nodes := make([]*Node, 0, sub.Len())
	var entering []*Node

	for _, mn := range sub.Nodes() {
		n, ok := s.byID[mn.ID]
		if !ok || n.Kind != mn.Kind {
			n = &Node{ID: mn.ID, Kind: mn.Kind, Radius: s.radius(mn.Kind)}
			entering = append(entering, n)
		}
		n.Year = mn.Year()
		n.Degree = 0
		next[n.ID] = n
		nodes = append(nodes, n)
	}
	exited := len(s.byID) - (len(nodes) - len(entering))
	s.nodes = nodes
	s.byID = next

	if !s.domainSet {
		old := s.rebuildScale()
		if old != s.scale {
			s.rescaleX(old)
		}
	}

	for _, n := range entering {
		if s.cfg.Pin {
			s.pin(n)
		} else {
			n.X = s.scale.X(n.Year)
		}
		n.Y = s.bandY(n.Kind) + (s.rng.Float64()-0.5)*s.height*0.2
	}

	s.links = s.links[:0]
	for _, e := range sub.Edges {
		src, tgt := next[e.Source], next[e.Target]
		if src == nil || tgt == nil {
			continue
		}
		src.Degree++
		tgt.Degree++
		s.links = append(s.links, &Link{Source: src, Target: tgt})
	}
	for _, l := range s.links {
		l.bias = float64(l.Source.Degree) / float64(l.Source.Degree+l.Target.Degree)
		l.strength = s.cfg.LinkStrength
		if l.strength <= 0 {
			l.strength = 1 / float64(min(l.Source.Degree, l.Target.Degree))
		}
	}

	debug.Log("layout: bound %d nodes (%d entered, %d exited), %d links",
		len(s.nodes), len(entering), exited, len(s.links))
	debug.LogIf(len(s.nodes) > 0 && len(s.links) == 0, "layout: no links among %d nodes", len(s.nodes))

	if !first {
		s.Reheat(s.cfg.ReheatAlpha)
	}
}

// rescaleX moves every node from the old scale to the current one so its
// year, and therefore the ordering, is preserved.
func (s *Simulation) rescaleX(old TimeScale) {
	for _, n := range s.nodes {
		if n.FX != nil {
			s.pin(n)
			continue
		}
		n.X = old.Rescale(n.X, s.scale)
	}
}

// Resize updates the viewport. The time axis is rebuilt, x positions are
// rescaled, y positions stretch with the height, and the layout reheats.
func (s *Simulation) Resize(width, height float64) error {
	if width <= 0 || height <= 0 || math.IsNaN(width) || math.IsNaN(height) {
		return fmt.Errorf("invalid viewport %gx%g", width, height)
	}
	if width == s.width && height == s.height {
		return nil
	}
	ky := height / s.height
	s.width, s.height = width, height
	old := s.rebuildScale()
	s.rescaleX(old)
	for _, n := range s.nodes {
		n.Y *= ky
	}
	s.Reheat(s.cfg.ReheatAlpha)
	return nil
}

// Tick advances the simulation one step. It does nothing once settled and
// reports whether a step ran. Numeric failures inside a force are
// recovered: the step is abandoned and offending nodes are reset.
func (s *Simulation) Tick() (stepped bool) {
	if s.Settled() || len(s.nodes) == 0 {
		return false
	}
	defer metrics.Timer(metrics.SimulationTick)()
	defer func() {
		if r := recover(); r != nil {
			debug.Log("layout: recovered from tick failure: %v", r)
			s.repair()
			stepped = true
		}
	}()

	s.alpha += (s.cfg.AlphaTarget - s.alpha) * s.cfg.AlphaDecay

	s.applyLinks(s.alpha)
	s.applyCharge(s.alpha)
	s.applyBands(s.alpha)
	s.applyTimeX(s.alpha)
	s.applyCollision()

	keep := 1 - s.cfg.VelocityDecay
	for _, n := range s.nodes {
		if n.FX != nil {
			n.X = *n.FX
			n.VX = 0
		} else {
			n.VX *= keep
			n.X += n.VX
		}
		n.VY *= keep
		n.Y += n.VY
		n.Positioned = true
	}
	s.repair()
	s.ticks++
	return true
}

// repair resets any node whose state went non-finite.
func (s *Simulation) repair() {
	for _, n := range s.nodes {
		if finite(n.X) && finite(n.Y) && finite(n.VX) && finite(n.VY) {
			continue
		}
		debug.Log("layout: resetting non-finite node %s", n.ID)
		n.VX, n.VY = 0, 0
		if n.FX != nil {
			n.X = *n.FX
		} else {
			n.X = s.scale.X(n.Year)
		}
		n.Y = s.bandY(n.Kind) + s.jiggle()
	}
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// RunUntilSettled ticks until the simulation settles or maxTicks steps
// have run, returning the number of steps.
func (s *Simulation) RunUntilSettled(maxTicks int) int {
	n := 0
	for n < maxTicks && s.Tick() {
		n++
	}
	return n
}

// Bounds returns the bounding box of positioned nodes.
func (s *Simulation) Bounds() (minX, minY, maxX, maxY float64, ok bool) {
	for _, n := range s.nodes {
		if !ok {
			minX, maxX, minY, maxY, ok = n.X, n.X, n.Y, n.Y, true
			continue
		}
		minX = math.Min(minX, n.X)
		maxX = math.Max(maxX, n.X)
		minY = math.Min(minY, n.Y)
		maxY = math.Max(maxY, n.Y)
	}
	return minX, minY, maxX, maxY, ok
}
