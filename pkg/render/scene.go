// Package render keeps the pool of visual elements for the visible subgraph
// and reconciles it incrementally as the subgraph changes.
//
// Backends (terminal canvas, SVG, PNG) never read the pool directly; they
// draw a Frame, an immutable snapshot taken after each tick.
package render

import (
	"math"
	"strconv"

	"github.com/DipokalLab/intellect/pkg/config"
	"github.com/DipokalLab/intellect/pkg/filter"
	"github.com/DipokalLab/intellect/pkg/layout"
	"github.com/DipokalLab/intellect/pkg/metrics"
	"github.com/DipokalLab/intellect/pkg/model"
)

// Config holds visual parameters.
type Config struct {
	PersonRadius       float64
	AchievementRadius  float64
	LabelZoomThreshold float64
	BaseFontSize       float64
	CurveOffset        float64 // Control point offset as a fraction of chord length
	DimOpacity         float64

	EdgeStroke          string
	EdgeWidth           float64
	EdgeOpacity         float64
	HighlightStroke     string
	HighlightWidth      float64
	PersonFill          string
	AchievementFill     string
	HighlightNodeStroke string
}

// DefaultConfig returns the standard palette and sizes.
func DefaultConfig() Config {
	return Config{
		PersonRadius:        12,
		AchievementRadius:   8,
		LabelZoomThreshold:  0.6,
		BaseFontSize:        12,
		CurveOffset:         0.2,
		DimOpacity:          0.15,
		EdgeStroke:          "#999999",
		EdgeWidth:           1.5,
		EdgeOpacity:         0.6,
		HighlightStroke:     "#f59e0b",
		HighlightWidth:      3,
		PersonFill:          "#3b82f6",
		AchievementFill:     "#10b981",
		HighlightNodeStroke: "#ffffff",
	}
}

// FromConfig overlays user configuration on the defaults.
func FromConfig(c config.RenderConfig) Config {
	cfg := DefaultConfig()
	if c.LabelZoomThreshold > 0 {
		cfg.LabelZoomThreshold = c.LabelZoomThreshold
	}
	if c.BaseFontSize > 0 {
		cfg.BaseFontSize = c.BaseFontSize
	}
	if c.CurveOffset != 0 {
		cfg.CurveOffset = c.CurveOffset
	}
	if c.DimOpacity > 0 {
		cfg.DimOpacity = c.DimOpacity
	}
	return cfg
}

// NodeElement is the pooled visual for one node.
type NodeElement struct {
	ID    string
	Kind  model.NodeKind
	Label string
	Year  int

	X, Y       float64
	Positioned bool
	Radius     float64
	Fill       string
	PatternID  string // Portrait fill, if any

	Opacity      float64
	Highlighted  bool
	LabelOpacity float64
	FontSize     float64
}

// EdgeElement is the pooled visual for one edge.
type EdgeElement struct {
	Key            string
	Source, Target string
	Curve          Curve

	Stroke      string
	StrokeWidth float64
	Opacity     float64
	Highlighted bool
}

// JoinResult lists what a Join created, kept and removed.
type JoinResult struct {
	Entered, Updated, Exited             []string
	EdgesEntered, EdgesUpdated, EdgesOut []string
}

// Scene is the element pool. It has a single owner.
type Scene struct {
	cfg Config

	nodes     map[string]*NodeElement
	nodeOrder []string
	edges     map[string]*EdgeElement
	edgeOrder []string

	patterns *Patterns
	zoom     float64
	axis     []AxisTick
}

// NewScene returns an empty pool at zoom 1.
func NewScene(cfg Config) *Scene {
	s := &Scene{
		cfg:      cfg,
		nodes:    make(map[string]*NodeElement),
		edges:    make(map[string]*EdgeElement),
		patterns: NewPatterns(),
		zoom:     1,
	}
	return s
}

// Config returns the visual parameters.
func (s *Scene) Config() Config { return s.cfg }

// Patterns returns the portrait registry.
func (s *Scene) Patterns() *Patterns { return s.patterns }

// EdgeKeys assigns each edge its element key: "source-target", with "#2",
// "#3", ... appended to repeated pairs in document order.
func EdgeKeys(edges []model.Edge) []string {
	seen := make(map[string]int, len(edges))
	keys := make([]string, len(edges))
	for i, e := range edges {
		k := e.Key()
		seen[k]++
		if n := seen[k]; n > 1 {
			k += "#" + strconv.Itoa(n)
		}
		keys[i] = k
	}
	return keys
}

// Join reconciles the pool with sub. Elements for new nodes and edges are
// created, elements that left are removed, and survivors are rebound to the
// new data with their position and style intact.
func (s *Scene) Join(sub *filter.Subgraph) JoinResult {
	var res JoinResult

	keep := make(map[string]bool, sub.Len())
	order := make([]string, 0, sub.Len())
	for _, n := range sub.Nodes() {
		keep[n.ID] = true
		order = append(order, n.ID)
		if el, ok := s.nodes[n.ID]; ok && el.Kind == n.Kind {
			el.Label = n.Label()
			el.Year = n.Year()
			res.Updated = append(res.Updated, n.ID)
			continue
		}
		s.nodes[n.ID] = s.enterNode(n)
		res.Entered = append(res.Entered, n.ID)
	}
	for _, id := range s.nodeOrder {
		if !keep[id] {
			delete(s.nodes, id)
			res.Exited = append(res.Exited, id)
		}
	}
	s.nodeOrder = order

	keys := EdgeKeys(sub.Edges)
	keepEdges := make(map[string]bool, len(keys))
	for i, e := range sub.Edges {
		k := keys[i]
		keepEdges[k] = true
		if _, ok := s.edges[k]; ok {
			res.EdgesUpdated = append(res.EdgesUpdated, k)
			continue
		}
		s.edges[k] = &EdgeElement{
			Key:         k,
			Source:      e.Source,
			Target:      e.Target,
			Stroke:      s.cfg.EdgeStroke,
			StrokeWidth: s.cfg.EdgeWidth,
			Opacity:     s.cfg.EdgeOpacity,
		}
		res.EdgesEntered = append(res.EdgesEntered, k)
	}
	for _, k := range s.edgeOrder {
		if !keepEdges[k] {
			delete(s.edges, k)
			res.EdgesOut = append(res.EdgesOut, k)
		}
	}
	s.edgeOrder = keys
	return res
}

func (s *Scene) enterNode(n model.Node) *NodeElement {
	el := &NodeElement{
		ID:      n.ID,
		Kind:    n.Kind,
		Label:   n.Label(),
		Year:    n.Year(),
		Opacity: 1,
	}
	if n.Kind == model.KindPerson {
		el.Radius = s.cfg.PersonRadius
		el.Fill = s.cfg.PersonFill
		if url := n.PhotoURL(); url != "" {
			el.PatternID = s.patterns.Ensure(n.ID, url)
		}
	} else {
		el.Radius = s.cfg.AchievementRadius
		el.Fill = s.cfg.AchievementFill
	}
	s.labelStyle(el)
	return el
}

// Sync copies simulation positions onto every element and recomputes edge
// curves. Call it after every tick.
func (s *Scene) Sync(sim *layout.Simulation) {
	defer metrics.Timer(metrics.SceneSync)()

	for _, id := range s.nodeOrder {
		el := s.nodes[id]
		if n, ok := sim.Node(id); ok {
			el.X, el.Y, el.Positioned = n.X, n.Y, n.Positioned
		}
	}
	for _, k := range s.edgeOrder {
		el := s.edges[k]
		src, sok := s.nodes[el.Source]
		tgt, tok := s.nodes[el.Target]
		if !sok || !tok {
			continue
		}
		el.Curve = CurveBetween(src.X, src.Y, tgt.X, tgt.Y, s.cfg.CurveOffset)
	}
	s.axis = axisTicks(sim.Scale())
}

// ApplyZoom rescales labels for zoom factor k: hidden below the threshold,
// font size inversely proportional to k so text keeps its screen size.
func (s *Scene) ApplyZoom(k float64) {
	if k <= 0 || math.IsNaN(k) {
		return
	}
	s.zoom = k
	for _, el := range s.nodes {
		s.labelStyle(el)
	}
}

// Zoom returns the zoom factor labels are scaled for.
func (s *Scene) Zoom() float64 { return s.zoom }

func (s *Scene) labelStyle(el *NodeElement) {
	el.FontSize = s.cfg.BaseFontSize / s.zoom
	if s.zoom < s.cfg.LabelZoomThreshold {
		el.LabelOpacity = 0
	} else {
		el.LabelOpacity = 1
	}
}

// Node returns the element for id.
func (s *Scene) Node(id string) (*NodeElement, bool) {
	el, ok := s.nodes[id]
	return el, ok
}

// Edge returns the element for key.
func (s *Scene) Edge(key string) (*EdgeElement, bool) {
	el, ok := s.edges[key]
	return el, ok
}

// Nodes returns the elements in subgraph order.
func (s *Scene) Nodes() []*NodeElement {
	out := make([]*NodeElement, 0, len(s.nodeOrder))
	for _, id := range s.nodeOrder {
		out = append(out, s.nodes[id])
	}
	return out
}

// Edges returns the elements in subgraph order.
func (s *Scene) Edges() []*EdgeElement {
	out := make([]*EdgeElement, 0, len(s.edgeOrder))
	for _, k := range s.edgeOrder {
		out = append(out, s.edges[k])
	}
	return out
}

// ResetStyles restores default opacity and stroke on every element.
func (s *Scene) ResetStyles() {
	for _, el := range s.nodes {
		el.Opacity = 1
		el.Highlighted = false
	}
	for _, el := range s.edges {
		el.Stroke = s.cfg.EdgeStroke
		el.StrokeWidth = s.cfg.EdgeWidth
		el.Opacity = s.cfg.EdgeOpacity
		el.Highlighted = false
	}
}

// HitTest returns the topmost node whose circle contains the world point.
func (s *Scene) HitTest(x, y float64) (string, bool) {
	for i := len(s.nodeOrder) - 1; i >= 0; i-- {
		el := s.nodes[s.nodeOrder[i]]
		if !el.Positioned {
			continue
		}
		if math.Hypot(el.X-x, el.Y-y) <= el.Radius {
			return el.ID, true
		}
	}
	return "", false
}
