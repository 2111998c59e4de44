package filter_test

import (
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/DipokalLab/intellect/pkg/filter"
	"github.com/DipokalLab/intellect/pkg/model"
	"github.com/DipokalLab/intellect/pkg/testutil"
)

func TestFilter_RelativityScenario(t *testing.T) {
	doc := testutil.RelativityScenario()

	sub := filter.Filter(doc, filter.FieldSet([]string{"Physics"}))
	if got := sub.NodeIDs(); !reflect.DeepEqual(got, []string{"A", "E1"}) {
		t.Errorf("expected [A E1], got %v", got)
	}
	if len(sub.Edges) != 1 || sub.Edges[0].Key() != "A-E1" {
		t.Errorf("expected the A-E1 edge, got %v", sub.Edges)
	}

	sub = filter.Filter(doc, filter.FieldSet([]string{"Biology"}))
	if !sub.Empty() {
		t.Errorf("expected empty subgraph, got %v", sub.NodeIDs())
	}
}

func TestFilter_EmptySelectionShowsNothing(t *testing.T) {
	doc := testutil.QuickTimeline(10, 2)
	for _, sel := range []map[string]bool{nil, {}} {
		sub := filter.Filter(doc, sel)
		if len(sub.Persons) != 0 || len(sub.Achievements) != 0 || len(sub.Edges) != 0 {
			t.Errorf("expected empty subgraph for %v", sel)
		}
	}
	if sub := filter.Filter(nil, filter.FieldSet([]string{"Physics"})); !sub.Empty() {
		t.Error("nil document should filter to nothing")
	}
}

func TestFilter_MultiFieldPerson(t *testing.T) {
	doc := &model.GraphDocument{
		Persons: []model.PersonNode{
			{ID: "C", Name: "Curie", Field: "Physics, Chemistry"},
			{ID: "D", Name: "Darwin", Field: "Biology"},
		},
		Achievements: []model.AchievementNode{
			{ID: "R", Title: "Radioactivity"},
			{ID: "O", Title: "Origin of Species"},
			{ID: "X", Title: "Orphan"},
		},
		Edges: []model.Edge{{Source: "C", Target: "R"}, {Source: "D", Target: "O"}},
	}
	doc.Normalize()

	sub := filter.Filter(doc, filter.FieldSet([]string{"Chemistry"}))
	if got := sub.NodeIDs(); !reflect.DeepEqual(got, []string{"C", "R"}) {
		t.Errorf("expected [C R], got %v", got)
	}
	if sub.Has("X") {
		t.Error("achievement without participants must stay hidden")
	}
	if k, ok := sub.Kind("R"); !ok || k != model.KindAchievement {
		t.Errorf("unexpected kind %q", k)
	}
}

func TestFilter_SharedAchievementWithHiddenParticipant(t *testing.T) {
	doc := &model.GraphDocument{
		Persons: []model.PersonNode{
			{ID: "P", Name: "Physicist", Field: "Physics"},
			{ID: "B", Name: "Biologist", Field: "Biology"},
		},
		Achievements: []model.AchievementNode{{ID: "J", Title: "Joint work"}},
		Edges:        []model.Edge{{Source: "P", Target: "J"}, {Source: "B", Target: "J"}},
	}
	doc.Normalize()

	sub := filter.Filter(doc, filter.FieldSet([]string{"Physics"}))
	if !sub.Has("J") {
		t.Fatal("J has a visible participant")
	}
	if len(sub.Edges) != 1 || sub.Edges[0].Source != "P" {
		t.Errorf("edge to hidden B must be dropped, got %v", sub.Edges)
	}
}

func TestFilter_KeepsDuplicateEdges(t *testing.T) {
	doc := testutil.RelativityScenario()
	doc.Edges = append(doc.Edges, model.Edge{Source: "A", Target: "E1"})
	sub := filter.Filter(doc, filter.FieldSet([]string{"Physics"}))
	if len(sub.Edges) != 2 {
		t.Errorf("expected both parallel edges, got %d", len(sub.Edges))
	}
}

func TestFilter_AllFieldsShowsEveryPerson(t *testing.T) {
	doc := testutil.QuickRandom(30, 20, 0.1)
	sub := filter.Filter(doc, filter.FieldSet(filter.AllFields(doc)))
	if len(sub.Persons) != len(doc.Persons) {
		t.Errorf("expected all %d persons, got %d", len(doc.Persons), len(sub.Persons))
	}
	linked := map[string]bool{}
	for _, e := range doc.Edges {
		linked[e.Target] = true
	}
	for _, a := range doc.Achievements {
		if linked[a.ID] != sub.Has(a.ID) {
			t.Errorf("achievement %s visibility %v, linked %v", a.ID, sub.Has(a.ID), linked[a.ID])
		}
	}
}

func TestFilter_DoesNotMutateDocument(t *testing.T) {
	doc := testutil.QuickTimeline(8, 2)
	before := testutil.ToJSON(doc)
	filter.Filter(doc, filter.FieldSet([]string{"Physics", "Biology"}))
	if testutil.ToJSON(doc) != before {
		t.Error("Filter mutated the document")
	}
}

func drawDocument(t *rapid.T) (*model.GraphDocument, map[string]bool) {
	seed := rapid.Int64Range(1, 1<<30).Draw(t, "seed")
	persons := rapid.IntRange(0, 25).Draw(t, "persons")
	achievements := rapid.IntRange(0, 25).Draw(t, "achievements")
	density := rapid.Float64Range(0, 0.3).Draw(t, "density")
	doc := testutil.New(testutil.GeneratorConfig{Seed: seed}).Random(persons, achievements, density)

	fields := testutil.DefaultConfig().Fields
	sel := rapid.SliceOfDistinct(rapid.SampledFrom(fields), func(s string) string { return s }).Draw(t, "selected")
	return doc, filter.FieldSet(sel)
}

func TestFilter_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		doc, sel := drawDocument(t)
		a := filter.Filter(doc, sel)
		b := filter.Filter(doc, sel)
		if !reflect.DeepEqual(a.NodeIDs(), b.NodeIDs()) || !reflect.DeepEqual(a.Edges, b.Edges) {
			t.Fatalf("filter is not idempotent")
		}
	})
}

func TestFilter_EdgesNeverDangle(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		doc, sel := drawDocument(t)
		sub := filter.Filter(doc, sel)
		for _, e := range sub.Edges {
			if !sub.Has(e.Source) || !sub.Has(e.Target) {
				t.Fatalf("dangling edge %s", e.Key())
			}
		}
		for _, p := range sub.Persons {
			hit := false
			for _, f := range p.Fields {
				hit = hit || sel[f]
			}
			if !hit {
				t.Fatalf("person %s visible without a selected field", p.ID)
			}
		}
	})
}
