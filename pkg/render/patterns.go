package render

import (
	"strings"
	"unicode"
)

// Pattern is a portrait fill registered for a person.
type Pattern struct {
	ID     string
	NodeID string
	URL    string
}

// Patterns registers portrait fills lazily: one pattern per node id,
// created on first use and reused afterwards, even across exit and
// re-entry of the node.
type Patterns struct {
	byNode map[string]Pattern
	order  []string
}

// NewPatterns returns an empty registry.
func NewPatterns() *Patterns {
	return &Patterns{byNode: make(map[string]Pattern)}
}

// Ensure returns the pattern id for nodeID, registering it on first call.
// Later calls keep the first URL.
func (p *Patterns) Ensure(nodeID, url string) string {
	if pat, ok := p.byNode[nodeID]; ok {
		return pat.ID
	}
	pat := Pattern{ID: "portrait-" + safeID(nodeID), NodeID: nodeID, URL: url}
	p.byNode[nodeID] = pat
	p.order = append(p.order, nodeID)
	return pat.ID
}

// Get returns the pattern for nodeID.
func (p *Patterns) Get(nodeID string) (Pattern, bool) {
	pat, ok := p.byNode[nodeID]
	return pat, ok
}

// Len returns the number of registered patterns.
func (p *Patterns) Len() int { return len(p.order) }

// All returns patterns in registration order.
func (p *Patterns) All() []Pattern {
	out := make([]Pattern, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.byNode[id])
	}
	return out
}

// safeID keeps characters valid in an XML id.
func safeID(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
