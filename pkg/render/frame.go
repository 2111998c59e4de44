package render

import "github.com/DipokalLab/intellect/pkg/camera"

// Frame is an immutable snapshot of the scene for drawing.
type Frame struct {
	Width, Height float64
	Transform     camera.Transform
	Zoom          float64

	Nodes    []NodeElement
	Edges    []EdgeElement
	Patterns []Pattern
	Axis     []AxisTick

	// Pulse is the focus ring, positioned on its node. Nil when none.
	Pulse *PulseElement
}

// PulseElement is the focus ring in world coordinates.
type PulseElement struct {
	NodeID  string
	X, Y    float64
	Radius  float64
	Opacity float64
}

// Frame copies the pool. Only positioned nodes and edges with both ends
// positioned are included. The pulse is dropped when its node is not in the
// scene.
func (s *Scene) Frame(width, height float64, t camera.Transform, pulse *camera.Pulse) Frame {
	f := Frame{
		Width:     width,
		Height:    height,
		Transform: t,
		Zoom:      s.zoom,
		Nodes:     make([]NodeElement, 0, len(s.nodeOrder)),
		Edges:     make([]EdgeElement, 0, len(s.edgeOrder)),
		Patterns:  s.patterns.All(),
		Axis:      append([]AxisTick(nil), s.axis...),
	}
	for _, id := range s.nodeOrder {
		if el := s.nodes[id]; el.Positioned {
			f.Nodes = append(f.Nodes, *el)
		}
	}
	for _, k := range s.edgeOrder {
		el := s.edges[k]
		if s.nodes[el.Source].Positioned && s.nodes[el.Target].Positioned {
			f.Edges = append(f.Edges, *el)
		}
	}
	if pulse != nil {
		if el, ok := s.nodes[pulse.NodeID]; ok && el.Positioned {
			f.Pulse = &PulseElement{
				NodeID:  pulse.NodeID,
				X:       el.X,
				Y:       el.Y,
				Radius:  pulse.Radius,
				Opacity: pulse.Opacity,
			}
		}
	}
	return f
}

// Node finds a node in the frame.
func (f Frame) Node(id string) (NodeElement, bool) {
	for _, n := range f.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeElement{}, false
}
