package interact

import (
	"reflect"
	"strings"
	"testing"

	"github.com/DipokalLab/intellect/pkg/filter"
	"github.com/DipokalLab/intellect/pkg/model"
	"github.com/DipokalLab/intellect/pkg/render"
	"github.com/DipokalLab/intellect/pkg/store"
	"github.com/DipokalLab/intellect/pkg/testutil"
)

func hoverScene(t *testing.T) *render.Scene {
	t.Helper()
	doc := testutil.HoverScenario()
	s := render.NewScene(render.DefaultConfig())
	s.Join(filter.Filter(doc, filter.FieldSet(doc.AllFields())))
	if len(s.Nodes()) != 3 {
		t.Fatalf("expected A, B and C in the scene, got %d", len(s.Nodes()))
	}
	return s
}

func opacity(t *testing.T, s *render.Scene, id string) float64 {
	t.Helper()
	el, ok := s.Node(id)
	if !ok {
		t.Fatalf("node %s missing", id)
	}
	return el.Opacity
}

func TestHover_DimsUnconnected(t *testing.T) {
	s := hoverScene(t)
	h := NewHighlighter(s)
	dim := s.Config().DimOpacity

	if !h.Hover("A") {
		t.Fatal("hover on A failed")
	}
	if opacity(t, s, "A") != 1 || opacity(t, s, "B") != 1 {
		t.Error("hovered node and its neighbour must stay opaque")
	}
	if opacity(t, s, "C") != dim {
		t.Errorf("C opacity = %g, want %g", opacity(t, s, "C"), dim)
	}
	e, _ := s.Edge("A-B")
	if !e.Highlighted || e.Stroke != s.Config().HighlightStroke || e.StrokeWidth != s.Config().HighlightWidth {
		t.Errorf("touching edge not highlighted: %+v", e)
	}

	h.Leave()
	for _, id := range []string{"A", "B", "C"} {
		if opacity(t, s, id) != 1 {
			t.Errorf("%s not restored", id)
		}
	}
	if e.Highlighted || e.StrokeWidth != s.Config().EdgeWidth {
		t.Error("edge style not restored")
	}
	if h.Hovered() != "" {
		t.Error("hover state not cleared")
	}
}

func TestHover_FromAchievementSide(t *testing.T) {
	s := hoverScene(t)
	h := NewHighlighter(s)
	h.Hover("B")
	if opacity(t, s, "A") != 1 || opacity(t, s, "C") == 1 {
		t.Error("neighbourhood must follow edges in both directions")
	}
}

func TestHover_UnknownNode(t *testing.T) {
	s := hoverScene(t)
	h := NewHighlighter(s)
	if h.Hover("ghost") {
		t.Error("hover on a missing node should fail")
	}
	if opacity(t, s, "C") != 1 {
		t.Error("styles changed for a missing node")
	}
}

func TestHighlighter_RefreshAfterExit(t *testing.T) {
	doc := testutil.HoverScenario()
	s := hoverScene(t)
	h := NewHighlighter(s)
	h.Hover("A")

	s.Join(filter.Filter(doc, nil))
	h.Refresh()
	if h.Hovered() != "" {
		t.Error("hover should end when the node leaves the scene")
	}
}

func TestDetailsFor(t *testing.T) {
	p := &model.PersonNode{ID: "S", Name: "Socrates", Birth: -470, Death: -399, Field: "Philosophy", Nationality: "Greek"}
	d := DetailsFor(model.PersonRef(p))
	want := []Row{
		{Label: "Nationality", Value: "Greek"},
		{Label: "Field", Value: "Philosophy"},
		{Label: "Lifespan", Value: "470 BC – 399 BC"},
	}
	if d.Title != "Socrates" || !reflect.DeepEqual(d.Rows, want) {
		t.Errorf("person details %+v", d)
	}

	a := &model.AchievementNode{ID: "E", Year: -350, Title: "Organon", Category: "Logic", Text: "Six works on logic."}
	d = DetailsFor(model.AchievementRef(a))
	if d.Rows[1].Value != "350 BC" || d.Text != "Six works on logic." {
		t.Errorf("achievement details %+v", d)
	}
	if !strings.Contains(d.Markdown(), "# Organon") || !strings.Contains(d.Markdown(), "**Category:** Logic") {
		t.Errorf("markdown %q", d.Markdown())
	}
	if !strings.HasPrefix(d.String(), "Organon\nCategory: Logic") {
		t.Errorf("plain %q", d.String())
	}
}

func TestInspector_ClickAndClose(t *testing.T) {
	st := store.New()
	st.SetData(testutil.RelativityScenario())
	st.SetFocusedPerson("A")
	in := NewInspector(st)

	ev, ok := in.Click("E1")
	if !ok || ev.Details.Title != "Relativity" {
		t.Fatalf("click did not inspect: %+v", ev)
	}
	if st.SelectedNode() != "E1" {
		t.Error("selection not recorded")
	}
	rev := st.Revision()
	focus := st.Focus()

	in.Close()
	if st.SelectedNode() != "" {
		t.Error("close must clear the selection")
	}
	if st.Revision() != rev || st.Focus() != focus {
		t.Error("close must not touch other state")
	}

	if _, ok := in.Click("ghost"); ok {
		t.Error("click on a missing node should not emit")
	}
}

func TestInspector_ConnectMode(t *testing.T) {
	st := store.New()
	st.SetData(testutil.RelativityScenario())
	st.SetConnectEnabled(true)
	in := NewInspector(st)

	if _, ok := in.Click("A"); ok {
		t.Error("connect mode should not open the inspector")
	}
	if _, ok := in.Click("E1"); ok {
		t.Error("connect mode should not open the inspector")
	}
	if !reflect.DeepEqual(st.Connected(), []string{"A"}) {
		t.Errorf("connected = %v, want [A]", st.Connected())
	}
	in.Click("A")
	if len(st.Connected()) != 0 {
		t.Error("second click should remove A")
	}
	if st.SelectedNode() != "" {
		t.Error("connect clicks must not select")
	}
}

func chainDoc() *model.GraphDocument {
	doc := &model.GraphDocument{
		Persons: []model.PersonNode{
			{ID: "P1", Name: "One", Field: "Math"},
			{ID: "P2", Name: "Two", Field: "Math"},
			{ID: "P3", Name: "Three", Field: "Math"},
			{ID: "P4", Name: "Four", Field: "Art"},
		},
		Achievements: []model.AchievementNode{
			{ID: "E1", Title: "First"},
			{ID: "E2", Title: "Second"},
			{ID: "E3", Title: "Third"},
		},
		Edges: []model.Edge{
			{Source: "P1", Target: "E1"},
			{Source: "P2", Target: "E1"},
			{Source: "P2", Target: "E2"},
			{Source: "P3", Target: "E2"},
			{Source: "P4", Target: "E3"},
		},
	}
	doc.Normalize()
	return doc
}

func TestConnectionPath(t *testing.T) {
	doc := chainDoc()
	sub := filter.Filter(doc, filter.FieldSet(doc.AllFields()))

	tests := []struct {
		name string
		ids  []string
		want []string
		ok   bool
	}{
		{"direct", []string{"P1", "P2"}, []string{"P1", "E1", "P2"}, true},
		{"two hops", []string{"P1", "P3"}, []string{"P1", "E1", "P2", "E2", "P3"}, true},
		{"legs share endpoints", []string{"P1", "P2", "P3"}, []string{"P1", "E1", "P2", "E2", "P3"}, true},
		{"disconnected", []string{"P1", "P4"}, nil, false},
		{"single id", []string{"P1"}, nil, false},
		{"unknown id", []string{"P1", "ghost"}, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ConnectionPath(sub, tt.ids)
			if ok != tt.ok || !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ConnectionPath(%v) = %v, %v; want %v, %v", tt.ids, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestConnectionPath_RespectsFilter(t *testing.T) {
	doc := chainDoc()
	sub := filter.Filter(doc, filter.FieldSet([]string{"Art"}))
	if _, ok := ConnectionPath(sub, []string{"P1", "P2"}); ok {
		t.Error("hidden persons cannot be connected")
	}
}
