// Package model defines the graph document: persons, achievements and the
// participation edges between them.
package model

import (
	"fmt"
	"strings"
)

// NodeKind distinguishes the two node families on the timeline.
type NodeKind string

const (
	KindPerson      NodeKind = "person"
	KindAchievement NodeKind = "achievement"
)

// PersonNode is a historical person placed on the axis by birth year.
type PersonNode struct {
	ID          string `json:"id"`
	Type        string `json:"type,omitempty"`
	Name        string `json:"name"`
	Birth       int    `json:"birth"`
	Death       int    `json:"death"`
	Field       string `json:"field"`
	Nationality string `json:"nationality"`
	PhotoURL    string `json:"photo_url,omitempty"`

	// Fields is the normalised token set derived from Field at load time.
	Fields []string `json:"-"`
}

// AchievementNode is an event placed on the axis by its year.
type AchievementNode struct {
	ID       string `json:"id"`
	Type     string `json:"type,omitempty"`
	Year     int    `json:"year"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Text     string `json:"text"`
}

// Edge links a participant to an achievement by node id.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Key returns the composite source-target key. It is not unique when the
// document carries parallel edges.
func (e Edge) Key() string {
	return e.Source + "-" + e.Target
}

// GraphDocument is the complete dataset. Achievements travel as "nodes" on
// the wire.
type GraphDocument struct {
	Achievements []AchievementNode `json:"nodes"`
	Edges        []Edge            `json:"edges"`
	Persons      []PersonNode      `json:"persons"`
}

// Validate checks the fields a person must carry.
func (p *PersonNode) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("person id cannot be empty")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("person %s: name cannot be empty", p.ID)
	}
	return nil
}

// Validate checks the fields an achievement must carry.
func (a *AchievementNode) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("achievement id cannot be empty")
	}
	if strings.TrimSpace(a.Title) == "" {
		return fmt.Errorf("achievement %s: title cannot be empty", a.ID)
	}
	return nil
}

// HasField reports whether the person carries the given field token.
func (p *PersonNode) HasField(field string) bool {
	for _, f := range p.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// Normalize fills derived fields. It is idempotent.
func (p *PersonNode) Normalize() {
	p.Fields = ParseFields(p.Field)
	p.Type = string(KindPerson)
}

// Normalize fills derived fields. It is idempotent.
func (a *AchievementNode) Normalize() {
	a.Type = string(KindAchievement)
}

// ParseFields splits a comma-separated field string into trimmed, non-empty,
// de-duplicated tokens in first-seen order.
func ParseFields(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, part := range parts {
		tok := strings.TrimSpace(part)
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}
