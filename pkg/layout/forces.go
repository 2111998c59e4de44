package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/DipokalLab/intellect/pkg/debug"
	"github.com/DipokalLab/intellect/pkg/model"
)

// jiggle returns a tiny deterministic offset for zero-distance pairs.
func (s *Simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * 1e-6
}

// applyLinks pulls linked nodes toward LinkDistance, biased so the
// lower-degree endpoint moves more.
func (s *Simulation) applyLinks(alpha float64) {
	for _, l := range s.links {
		src, tgt := l.Source, l.Target
		x := tgt.X + tgt.VX - src.X - src.VX
		y := tgt.Y + tgt.VY - src.Y - src.VY
		if x == 0 {
			x = s.jiggle()
		}
		if y == 0 {
			y = s.jiggle()
		}
		d := math.Sqrt(x*x + y*y)
		k := (d - s.cfg.LinkDistance) / d * alpha * l.strength
		x *= k
		y *= k
		tgt.VX -= x * l.bias
		tgt.VY -= y * l.bias
		src.VX += x * (1 - l.bias)
		src.VY += y * (1 - l.bias)
	}
}

// body adapts a node to the Barnes-Hut tree. Every node carries unit mass so
// an aggregate's mass is its node count.
type body struct{ n *Node }

func (b body) Coord2() r2.Vec { return r2.Vec{X: b.n.X, Y: b.n.Y} }
func (b body) Mass() float64  { return 1 }

// applyCharge applies many-body repulsion. The quadtree is rebuilt every
// tick; when it cannot be built (coincident or extreme coordinates) the
// force is summed exactly over all pairs.
func (s *Simulation) applyCharge(alpha float64) {
	if len(s.nodes) < 2 || s.cfg.ChargeStrength == 0 {
		return
	}
	if cap(s.bodies) < len(s.nodes) {
		s.bodies = make([]barneshut.Particle2, 0, len(s.nodes))
	}
	s.bodies = s.bodies[:0]
	for _, n := range s.nodes {
		s.bodies = append(s.bodies, body{n})
	}

	theta := s.cfg.Theta
	var plane *barneshut.Plane
	if theta > 0 {
		var err error
		plane, err = barneshut.NewPlane(s.bodies)
		if err != nil {
			debug.Log("layout: quadtree unavailable (%v), using exact repulsion", err)
			plane = nil
		}
	}
	if plane == nil {
		plane = &barneshut.Plane{Particles: s.bodies}
		theta = 0
	}

	dmin2 := s.cfg.DistanceMin * s.cfg.DistanceMin
	dmax2 := math.Inf(1)
	if s.cfg.DistanceMax > 0 {
		dmax2 = s.cfg.DistanceMax * s.cfg.DistanceMax
	}
	strength := s.cfg.ChargeStrength

	force := func(p1, p2 barneshut.Particle2, _, m2 float64, v r2.Vec) r2.Vec {
		if p2 != nil && p1 == p2 {
			return r2.Vec{}
		}
		if v.X == 0 && v.Y == 0 {
			if p2 == nil {
				return r2.Vec{}
			}
			v = r2.Vec{X: s.jiggle(), Y: s.jiggle()}
		}
		l := v.X*v.X + v.Y*v.Y
		if l >= dmax2 {
			return r2.Vec{}
		}
		if l < dmin2 {
			l = math.Sqrt(dmin2 * l)
		}
		return r2.Scale(strength*m2/l, v)
	}

	for i, n := range s.nodes {
		f := plane.ForceOn(s.bodies[i], theta, force)
		n.VX += f.X * alpha
		n.VY += f.Y * alpha
	}
}

// applyBands pulls persons and achievements toward their horizontal bands.
func (s *Simulation) applyBands(alpha float64) {
	k := s.cfg.BandStrength * alpha
	for _, n := range s.nodes {
		n.VY += (s.bandY(n.Kind) - n.Y) * k
	}
}

// applyTimeX pulls unpinned nodes toward their year's x.
func (s *Simulation) applyTimeX(alpha float64) {
	if s.cfg.Pin {
		return
	}
	k := s.cfg.XStrength * alpha
	for _, n := range s.nodes {
		n.VX += (s.scale.X(n.Year) - n.X) * k
	}
}

func (s *Simulation) bandY(kind model.NodeKind) float64 {
	if kind == model.KindPerson {
		return s.height * s.cfg.PersonBand
	}
	return s.height * s.cfg.AchievementBand
}

type cell struct{ cx, cy int }

// applyCollision separates overlapping nodes using a uniform grid hash with
// cells as wide as the largest diameter, so only neighbouring cells need to
// be compared.
func (s *Simulation) applyCollision() {
	if len(s.nodes) < 2 || s.cfg.CollideStrength == 0 {
		return
	}
	size := 2 * math.Max(s.cfg.CollideRadiusPerson, s.cfg.CollideRadiusAchievement)
	if size <= 0 {
		return
	}

	for iter := 0; iter < max(1, s.cfg.CollideIterations); iter++ {
		clear(s.grid)
		for i, n := range s.nodes {
			c := cell{int(math.Floor((n.X + n.VX) / size)), int(math.Floor((n.Y + n.VY) / size))}
			s.grid[c] = append(s.grid[c], i)
		}

		for i, a := range s.nodes {
			ax, ay := a.X+a.VX, a.Y+a.VY
			c := cell{int(math.Floor(ax / size)), int(math.Floor(ay / size))}
			ra := a.Radius
			for dx := -1; dx <= 1; dx++ {
				for dy := -1; dy <= 1; dy++ {
					for _, j := range s.grid[cell{c.cx + dx, c.cy + dy}] {
						if j <= i {
							continue
						}
						b := s.nodes[j]
						rb := b.Radius
						r := ra + rb
						x := ax - b.X - b.VX
						y := ay - b.Y - b.VY
						l := x*x + y*y
						if l >= r*r {
							continue
						}
						if x == 0 {
							x = s.jiggle()
							l += x * x
						}
						if y == 0 {
							y = s.jiggle()
							l += y * y
						}
						l = math.Sqrt(l)
						k := (r - l) / l * s.cfg.CollideStrength
						x *= k
						y *= k
						share := rb * rb / (ra*ra + rb*rb)
						a.VX += x * share
						a.VY += y * share
						b.VX -= x * (1 - share)
						b.VY -= y * (1 - share)
					}
				}
			}
		}
	}
}
