// Package interact turns pointer input into visual styling and inspector
// events: hover highlighting, click-to-inspect and connect-mode selection.
package interact

import (
	"github.com/DipokalLab/intellect/pkg/debug"
	"github.com/DipokalLab/intellect/pkg/render"
)

// Highlighter dims everything that is not one hop away from the hovered
// node. It writes styles on the scene's pooled elements only.
type Highlighter struct {
	scene   *render.Scene
	hovered string
}

// NewHighlighter binds a highlighter to a scene.
func NewHighlighter(scene *render.Scene) *Highlighter {
	return &Highlighter{scene: scene}
}

// Hovered returns the node under the pointer, or "".
func (h *Highlighter) Hovered() string { return h.hovered }

// Neighbors returns id plus every node sharing a visible edge with it.
func Neighbors(scene *render.Scene, id string) map[string]bool {
	set := map[string]bool{id: true}
	for _, e := range scene.Edges() {
		switch id {
		case e.Source:
			set[e.Target] = true
		case e.Target:
			set[e.Source] = true
		}
	}
	return set
}

// Hover highlights id and its neighbours. It reports false, leaving styles
// untouched, when id is not in the scene.
func (h *Highlighter) Hover(id string) bool {
	if _, ok := h.scene.Node(id); !ok {
		return false
	}
	cfg := h.scene.Config()
	near := Neighbors(h.scene, id)

	for _, el := range h.scene.Nodes() {
		if near[el.ID] {
			el.Opacity = 1
		} else {
			el.Opacity = cfg.DimOpacity
		}
		el.Highlighted = el.ID == id
	}
	for _, el := range h.scene.Edges() {
		if el.Source == id || el.Target == id {
			el.Stroke = cfg.HighlightStroke
			el.StrokeWidth = cfg.HighlightWidth
			el.Opacity = 1
			el.Highlighted = true
			continue
		}
		el.Stroke = cfg.EdgeStroke
		el.StrokeWidth = cfg.EdgeWidth
		el.Opacity = cfg.EdgeOpacity
		el.Highlighted = false
	}
	h.hovered = id
	debug.Log("interact: hover %s (%d neighbours)", id, len(near)-1)
	return true
}

// Leave restores default styling on every element.
func (h *Highlighter) Leave() {
	if h.hovered == "" {
		return
	}
	h.scene.ResetStyles()
	h.hovered = ""
}

// Refresh re-applies the hover after the scene was rejoined. If the hovered
// node left the scene the hover ends.
func (h *Highlighter) Refresh() {
	if h.hovered == "" {
		return
	}
	if !h.Hover(h.hovered) {
		h.scene.ResetStyles()
		h.hovered = ""
	}
}
