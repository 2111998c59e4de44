// Package filter derives the visible subgraph of a document from the active
// field selection.
package filter

import (
	"github.com/DipokalLab/intellect/pkg/metrics"
	"github.com/DipokalLab/intellect/pkg/model"
)

// Subgraph is the visible part of a document. It points into the document
// it was computed from and never carries simulation state, so recomputing
// it is free of side effects. Ordering follows the document.
type Subgraph struct {
	Persons      []*model.PersonNode
	Achievements []*model.AchievementNode
	Edges        []model.Edge

	members map[string]model.NodeKind
}

// Has reports whether id is a visible node.
func (s *Subgraph) Has(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.members[id]
	return ok
}

// Kind returns the kind of a visible node.
func (s *Subgraph) Kind(id string) (model.NodeKind, bool) {
	if s == nil {
		return "", false
	}
	k, ok := s.members[id]
	return k, ok
}

// Len returns the number of visible nodes.
func (s *Subgraph) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Persons) + len(s.Achievements)
}

// Empty reports whether nothing is visible.
func (s *Subgraph) Empty() bool {
	return s.Len() == 0 && (s == nil || len(s.Edges) == 0)
}

// NodeIDs returns persons then achievements.
func (s *Subgraph) NodeIDs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, s.Len())
	for _, p := range s.Persons {
		out = append(out, p.ID)
	}
	for _, a := range s.Achievements {
		out = append(out, a.ID)
	}
	return out
}

// Nodes returns a view per visible node, persons first.
func (s *Subgraph) Nodes() []model.Node {
	if s == nil {
		return nil
	}
	out := make([]model.Node, 0, s.Len())
	for _, p := range s.Persons {
		out = append(out, model.PersonRef(p))
	}
	for _, a := range s.Achievements {
		out = append(out, model.AchievementRef(a))
	}
	return out
}

// Filter computes the visible subgraph for the selected fields.
//
// An empty selection shows nothing. A person is visible when any of its
// field tokens is selected. An achievement is visible when an edge links it
// directly to a visible person. An edge is visible when both of its
// endpoints are.
func Filter(doc *model.GraphDocument, selected map[string]bool) *Subgraph {
	defer metrics.Timer(metrics.FilterCompute)()

	sub := &Subgraph{
		Persons:      []*model.PersonNode{},
		Achievements: []*model.AchievementNode{},
		Edges:        []model.Edge{},
		members:      make(map[string]model.NodeKind),
	}
	if doc == nil || len(selected) == 0 {
		return sub
	}

	for i := range doc.Persons {
		p := &doc.Persons[i]
		for _, f := range p.Fields {
			if selected[f] {
				sub.Persons = append(sub.Persons, p)
				sub.members[p.ID] = model.KindPerson
				break
			}
		}
	}

	// Achievements linked to a visible person, in either edge direction.
	linked := make(map[string]bool)
	for _, e := range doc.Edges {
		if sub.members[e.Source] == model.KindPerson {
			linked[e.Target] = true
		}
		if sub.members[e.Target] == model.KindPerson {
			linked[e.Source] = true
		}
	}
	for i := range doc.Achievements {
		a := &doc.Achievements[i]
		if !linked[a.ID] {
			continue
		}
		if _, taken := sub.members[a.ID]; taken {
			continue
		}
		sub.Achievements = append(sub.Achievements, a)
		sub.members[a.ID] = model.KindAchievement
	}

	for _, e := range doc.Edges {
		if sub.Has(e.Source) && sub.Has(e.Target) {
			sub.Edges = append(sub.Edges, e)
		}
	}
	return sub
}

// FieldSet turns a field list into a selection set.
func FieldSet(fields []string) map[string]bool {
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

// AllFields returns every field token the document carries, sorted.
func AllFields(doc *model.GraphDocument) []string {
	return doc.AllFields()
}
