package model

import (
	"sort"
	"strings"
)

// Index maps node ids to nodes of a document. Pointers reference the
// document's slices, so the document must not be resliced while the index
// is in use.
type Index map[string]Node

// BuildIndex indexes persons then achievements. On id collisions the first
// occurrence wins; sanitised documents never collide.
func (d *GraphDocument) BuildIndex() Index {
	idx := make(Index, len(d.Persons)+len(d.Achievements))
	for i := range d.Persons {
		p := &d.Persons[i]
		if _, ok := idx[p.ID]; !ok {
			idx[p.ID] = PersonRef(p)
		}
	}
	for i := range d.Achievements {
		a := &d.Achievements[i]
		if _, ok := idx[a.ID]; !ok {
			idx[a.ID] = AchievementRef(a)
		}
	}
	return idx
}

// Normalize fills derived fields on every node.
func (d *GraphDocument) Normalize() {
	for i := range d.Persons {
		d.Persons[i].Normalize()
	}
	for i := range d.Achievements {
		d.Achievements[i].Normalize()
	}
}

// NodeCount returns persons plus achievements.
func (d *GraphDocument) NodeCount() int {
	if d == nil {
		return 0
	}
	return len(d.Persons) + len(d.Achievements)
}

// AllFields returns the sorted union of every person's field tokens.
func (d *GraphDocument) AllFields() []string {
	if d == nil {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for i := range d.Persons {
		for _, f := range d.Persons[i].Fields {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	sort.Strings(out)
	return out
}

// YearRange returns the minimum and maximum position year over all nodes.
// ok is false for an empty document.
func (d *GraphDocument) YearRange() (lo, hi int, ok bool) {
	if d == nil {
		return 0, 0, false
	}
	first := true
	visit := func(y int) {
		if first {
			lo, hi, first = y, y, false
			return
		}
		if y < lo {
			lo = y
		}
		if y > hi {
			hi = y
		}
	}
	for i := range d.Persons {
		visit(d.Persons[i].Birth)
	}
	for i := range d.Achievements {
		visit(d.Achievements[i].Year)
	}
	return lo, hi, !first
}

// PersonByName finds a person by case-insensitive exact name.
func (d *GraphDocument) PersonByName(name string) *PersonNode {
	for i := range d.Persons {
		if strings.EqualFold(d.Persons[i].Name, name) {
			return &d.Persons[i]
		}
	}
	return nil
}
