// Package testutil provides test fixture generators for timeline graph
// documents. All generators produce deterministic output for reproducible
// tests.
package testutil

import (
	"fmt"
	"math/rand"

	"github.com/goccy/go-json"

	"github.com/DipokalLab/intellect/pkg/model"
)

// GeneratorConfig controls document generation.
type GeneratorConfig struct {
	Seed     int64    // Random seed for determinism (0 = 42)
	IDPrefix string   // Prefix for person ids (default: "P"); achievements use "E"
	Fields   []string // Field vocabulary persons draw from
	MinYear  int      // Earliest birth year (may be negative)
	MaxYear  int      // Latest birth year
}

// DefaultConfig returns a config suitable for most tests.
func DefaultConfig() GeneratorConfig {
	return GeneratorConfig{
		Seed:     42, // Deterministic
		IDPrefix: "P",
		Fields:   []string{"Physics", "Mathematics", "Philosophy", "Biology", "Chemistry"},
		MinYear:  -600,
		MaxYear:  1950,
	}
}

// Generator creates documents with various topologies.
type Generator struct {
	cfg GeneratorConfig
	rng *rand.Rand
}

// New creates a Generator with the given config.
func New(cfg GeneratorConfig) *Generator {
	def := DefaultConfig()
	if cfg.Seed == 0 {
		cfg.Seed = def.Seed
	}
	if cfg.IDPrefix == "" {
		cfg.IDPrefix = def.IDPrefix
	}
	if len(cfg.Fields) == 0 {
		cfg.Fields = def.Fields
	}
	if cfg.MaxYear <= cfg.MinYear {
		cfg.MinYear, cfg.MaxYear = def.MinYear, def.MaxYear
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}
}

// NewDefault creates a Generator with default config.
func NewDefault() *Generator {
	return New(DefaultConfig())
}

func (g *Generator) personID(i int) string      { return fmt.Sprintf("%s%d", g.cfg.IDPrefix, i) }
func (g *Generator) achievementID(i int) string { return fmt.Sprintf("E%d", i) }

func (g *Generator) person(i int) model.PersonNode {
	birth := g.cfg.MinYear + g.rng.Intn(g.cfg.MaxYear-g.cfg.MinYear+1)
	field := g.cfg.Fields[g.rng.Intn(len(g.cfg.Fields))]
	if g.rng.Intn(4) == 0 {
		field += ", " + g.cfg.Fields[g.rng.Intn(len(g.cfg.Fields))]
	}
	return model.PersonNode{
		ID:          g.personID(i),
		Name:        fmt.Sprintf("Person %d", i),
		Birth:       birth,
		Death:       birth + 40 + g.rng.Intn(45),
		Field:       field,
		Nationality: "Testland",
	}
}

func (g *Generator) achievement(i, year int) model.AchievementNode {
	return model.AchievementNode{
		ID:       g.achievementID(i),
		Year:     year,
		Title:    fmt.Sprintf("Achievement %d", i),
		Category: "General",
		Text:     fmt.Sprintf("Description of achievement %d.", i),
	}
}

// ============================================================================
// Topology Generators
// ============================================================================

// Timeline creates persons each credited with perPerson achievements dated
// within their lifetime.
func (g *Generator) Timeline(persons, perPerson int) *model.GraphDocument {
	doc := &model.GraphDocument{}
	next := 0
	for i := 0; i < persons; i++ {
		p := g.person(i)
		doc.Persons = append(doc.Persons, p)
		for j := 0; j < perPerson; j++ {
			year := p.Birth + 20 + g.rng.Intn(p.Death-p.Birth-19)
			doc.Achievements = append(doc.Achievements, g.achievement(next, year))
			doc.Edges = append(doc.Edges, model.Edge{Source: p.ID, Target: g.achievementID(next)})
			next++
		}
	}
	doc.Normalize()
	return doc
}

// Star creates one person credited with spokes achievements.
func (g *Generator) Star(spokes int) *model.GraphDocument {
	p := g.person(0)
	doc := &model.GraphDocument{Persons: []model.PersonNode{p}}
	for i := 0; i < spokes; i++ {
		doc.Achievements = append(doc.Achievements, g.achievement(i, p.Birth+20+i))
		doc.Edges = append(doc.Edges, model.Edge{Source: p.ID, Target: g.achievementID(i)})
	}
	doc.Normalize()
	return doc
}

// Shared creates persons who all share a single collaborative achievement.
func (g *Generator) Shared(persons int) *model.GraphDocument {
	doc := &model.GraphDocument{}
	latest := g.cfg.MinYear
	for i := 0; i < persons; i++ {
		p := g.person(i)
		if p.Birth > latest {
			latest = p.Birth
		}
		doc.Persons = append(doc.Persons, p)
		doc.Edges = append(doc.Edges, model.Edge{Source: p.ID, Target: g.achievementID(0)})
	}
	doc.Achievements = []model.AchievementNode{g.achievement(0, latest+30)}
	doc.Normalize()
	return doc
}

// Coincident creates persons born in the same year with the same field, so
// every node starts at the same x.
func (g *Generator) Coincident(persons int, year int) *model.GraphDocument {
	doc := &model.GraphDocument{}
	for i := 0; i < persons; i++ {
		p := g.person(i)
		p.Birth, p.Death = year, year+50
		p.Field = g.cfg.Fields[0]
		doc.Persons = append(doc.Persons, p)
	}
	doc.Normalize()
	return doc
}

// Random creates persons and achievements joined with the given edge
// density in [0,1]. Some achievements may end up without participants.
func (g *Generator) Random(persons, achievements int, density float64) *model.GraphDocument {
	doc := &model.GraphDocument{}
	for i := 0; i < persons; i++ {
		doc.Persons = append(doc.Persons, g.person(i))
	}
	span := g.cfg.MaxYear - g.cfg.MinYear + 1
	for i := 0; i < achievements; i++ {
		doc.Achievements = append(doc.Achievements, g.achievement(i, g.cfg.MinYear+g.rng.Intn(span)))
	}
	for i := 0; i < persons; i++ {
		for j := 0; j < achievements; j++ {
			if g.rng.Float64() < density {
				doc.Edges = append(doc.Edges, model.Edge{Source: g.personID(i), Target: g.achievementID(j)})
			}
		}
	}
	doc.Normalize()
	return doc
}

// ============================================================================
// Named documents
// ============================================================================

// RelativityScenario is one physicist linked to one achievement:
// A (Physics, 1879) -> E1 (1905, "Relativity").
func RelativityScenario() *model.GraphDocument {
	doc := &model.GraphDocument{
		Persons:      []model.PersonNode{{ID: "A", Name: "Albert Einstein", Birth: 1879, Death: 1955, Field: "Physics", Nationality: "German"}},
		Achievements: []model.AchievementNode{{ID: "E1", Year: 1905, Title: "Relativity", Category: "Physics", Text: "Special theory of relativity."}},
		Edges:        []model.Edge{{Source: "A", Target: "E1"}},
	}
	doc.Normalize()
	return doc
}

// HoverScenario holds person A linked to achievement B, plus an unlinked
// person C in the same field.
func HoverScenario() *model.GraphDocument {
	doc := &model.GraphDocument{
		Persons: []model.PersonNode{
			{ID: "A", Name: "Ada Lovelace", Birth: 1815, Death: 1852, Field: "Mathematics"},
			{ID: "C", Name: "Carl Gauss", Birth: 1777, Death: 1855, Field: "Mathematics"},
		},
		Achievements: []model.AchievementNode{{ID: "B", Year: 1843, Title: "First program", Category: "Computing"}},
		Edges:        []model.Edge{{Source: "A", Target: "B"}},
	}
	doc.Normalize()
	return doc
}

// Quick helpers

// QuickTimeline returns a default-seeded Timeline document.
func QuickTimeline(persons, perPerson int) *model.GraphDocument {
	return NewDefault().Timeline(persons, perPerson)
}

// QuickRandom returns a default-seeded Random document.
func QuickRandom(persons, achievements int, density float64) *model.GraphDocument {
	return NewDefault().Random(persons, achievements, density)
}

// Empty returns a document with no nodes.
func Empty() *model.GraphDocument {
	return &model.GraphDocument{}
}

// ToJSON encodes a document in its wire form.
func ToJSON(doc *model.GraphDocument) string {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		panic(fmt.Sprintf("testutil: encoding document: %v", err))
	}
	return string(data)
}
