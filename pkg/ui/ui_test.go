package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DipokalLab/intellect/pkg/camera"
	"github.com/DipokalLab/intellect/pkg/config"
	"github.com/DipokalLab/intellect/pkg/metrics"
	"github.com/DipokalLab/intellect/pkg/model"
	"github.com/DipokalLab/intellect/pkg/render"
	"github.com/DipokalLab/intellect/pkg/store"
	"github.com/DipokalLab/intellect/pkg/testutil"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return out
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func readyModel(t *testing.T, doc *model.GraphDocument) Model {
	t.Helper()
	st := store.New()
	st.SetData(doc)
	m := NewModel(st, Options{Config: config.DefaultConfig()})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return update(t, m, tickMsg(time.Now()))
}

func TestCanvas_TextAndString(t *testing.T) {
	c := NewCanvas(6, 2)
	c.Text(0, 0, "ab漢cd", clsLabel)
	if got := strings.Split(c.String(), "\n")[0]; got != "ab漢cd" {
		t.Errorf("row 0 = %q", got)
	}
	c.Set(2, 1, glyphPerson, clsPerson)
	c.Text(0, 1, "xyz", clsLabel)
	if got := strings.Split(c.String(), "\n")[1]; got != "xy●   " {
		t.Errorf("label should stop at the node glyph, row 1 = %q", got)
	}
	c.Set(-1, 0, 'q', clsLabel)
	c.Set(6, 0, 'q', clsLabel)
	if c.Rune(99, 99) != ' ' {
		t.Error("out-of-range read should be blank")
	}
}

func testFrame() render.Frame {
	return render.Frame{
		Width: 160, Height: 64,
		Transform: camera.Identity(),
		Nodes: []render.NodeElement{
			{ID: "A", Kind: model.KindPerson, Label: "Ada", X: 20, Y: 24, Opacity: 1, LabelOpacity: 1},
			{ID: "B", Kind: model.KindAchievement, Label: "Engine", X: 100, Y: 24, Opacity: 1, LabelOpacity: 0},
		},
		Edges: []render.EdgeElement{{
			Key: "A-B", Source: "A", Target: "B",
			Curve:   render.CurveBetween(20, 24, 100, 24, 0),
			Opacity: 1,
		}},
		Axis: []render.AxisTick{{X: 24, Label: "1843"}},
	}
}

func TestDrawFrame(t *testing.T) {
	c := NewCanvas(20, 4)
	f := testFrame()
	DrawFrame(c, f, Overlay{})

	if r := c.Rune(2, 1); r != glyphPerson {
		t.Errorf("person glyph at (2,1) = %q", r)
	}
	if r := c.Rune(12, 1); r != glyphAchievement {
		t.Errorf("achievement glyph at (12,1) = %q", r)
	}
	row := strings.Split(c.String(), "\n")[1]
	if !strings.Contains(row, "Ada") {
		t.Errorf("person label missing: %q", row)
	}
	if strings.Contains(row, "Engine") {
		t.Errorf("label below zoom threshold drawn: %q", row)
	}
	if c.Rune(7, 1) != glyphEdge && c.Rune(8, 1) != glyphEdge {
		t.Errorf("edge not drawn between nodes: %q", row)
	}
	axis := strings.Split(c.String(), "\n")[3]
	if !strings.Contains(axis, "1843") || !strings.ContainsRune(axis, glyphTick) {
		t.Errorf("axis row = %q", axis)
	}

	c = NewCanvas(20, 4)
	DrawFrame(c, f, Overlay{Connected: map[string]bool{"A": true}, Cursor: "B"})
	if c.Rune(2, 1) != glyphConnected {
		t.Error("connected person should use the connected glyph")
	}
	if c.class(12, 1) != clsNodeHi {
		t.Error("cursor node should be highlighted")
	}
	if !strings.Contains(strings.Split(c.String(), "\n")[1], "Engine") {
		t.Error("cursor node should show its label")
	}
}

func TestDrawFrame_Pulse(t *testing.T) {
	c := NewCanvas(20, 4)
	f := testFrame()
	f.Pulse = &render.PulseElement{NodeID: "B", X: 100, Y: 24, Radius: 12, Opacity: 1}
	DrawFrame(c, f, Overlay{})
	if c.Rune(11, 1) != '(' || c.Rune(13, 1) != ')' {
		t.Errorf("pulse ring missing: %q", strings.Split(c.String(), "\n")[1])
	}
}

func TestNodeAtCell(t *testing.T) {
	f := testFrame()
	tests := []struct {
		col, row int
		want     string
		ok       bool
	}{
		{2, 1, "A", true},
		{3, 2, "A", true},
		{12, 0, "B", true},
		{7, 1, "", false},
	}
	for _, tt := range tests {
		got, ok := NodeAtCell(f, tt.col, tt.row)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NodeAtCell(%d,%d) = %q,%v want %q,%v", tt.col, tt.row, got, ok, tt.want, tt.ok)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		w    int
		want string
	}{
		{"Einstein", 10, "Einstein"},
		{"Einstein", 5, "Eins…"},
		{"漢字漢字", 5, "漢字…"},
		{"abc", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.w); got != tt.want {
			t.Errorf("truncate(%q,%d) = %q, want %q", tt.in, tt.w, got, tt.want)
		}
	}
	if got := padRight("ab", 4); got != "ab  " {
		t.Errorf("padRight = %q", got)
	}
}

func TestFieldSummary(t *testing.T) {
	tests := []struct {
		sel   []string
		total int
		want  string
	}{
		{nil, 3, "none"},
		{[]string{"Art", "Physics"}, 2, "all"},
		{[]string{"Art"}, 5, "Art"},
		{[]string{"A", "B", "C", "D"}, 9, "4 of 9"},
	}
	for _, tt := range tests {
		if got := fieldSummary(tt.sel, tt.total); got != tt.want {
			t.Errorf("fieldSummary(%v,%d) = %q, want %q", tt.sel, tt.total, got, tt.want)
		}
	}
}

func TestPersonSearch(t *testing.T) {
	s := NewPersonSearch(testutil.HoverScenario(), DefaultTheme(lipgloss.DefaultRenderer()))
	if got := s.Matches(); len(got) != 2 {
		t.Errorf("empty query should list everyone, got %v", got)
	}

	s.SetQuery("Gauss")
	if got := s.Matches(); len(got) == 0 || got[0] != "Carl Gauss" {
		t.Errorf("Gauss matches = %v", got)
	}
	if id, ok := s.Selected(); !ok || id != "C" {
		t.Errorf("Selected = %q,%v", id, ok)
	}

	s.SetQuery("ada lovelace")
	if got := s.Matches(); len(got) == 0 || got[0] != "Ada Lovelace" {
		t.Errorf("exact name should rank first, got %v", got)
	}

	s.SetQuery("qqq")
	if _, ok := s.Selected(); ok {
		t.Error("no match should select nothing")
	}
}

func TestFieldPicker_Preselects(t *testing.T) {
	p := NewFieldPicker([]string{"Physics", "Art", "Biology"}, map[string]bool{"Physics": true, "Art": true})
	got := p.Selected()
	if len(got) != 2 || got[0] != "Art" || got[1] != "Physics" {
		t.Errorf("preselected = %v", got)
	}
	if p.Done() || p.Aborted() {
		t.Error("fresh picker should be in progress")
	}
}

func TestModel_LoadingAndFailure(t *testing.T) {
	st := store.New()
	m := NewModel(st, Options{
		Config: config.DefaultConfig(),
		Load: func(context.Context) (*model.GraphDocument, error) {
			return nil, errors.New("boom")
		},
	})
	if !strings.Contains(m.View(), "Loading") {
		t.Errorf("expected loading state, got %q", m.View())
	}
	if m.Init() == nil {
		t.Fatal("Init should schedule ticks and the load")
	}

	m = update(t, m, dataLoadedMsg{err: errors.New("boom")})
	if status, _ := st.Status(); status != store.StatusFailed {
		t.Errorf("status = %v", status)
	}
	if !strings.Contains(m.View(), "Failed: boom") {
		t.Errorf("failure not shown: %q", m.View())
	}
}

func TestModel_DataLoadedAppliesDefaultFields(t *testing.T) {
	doc := testutil.QuickTimeline(4, 1)
	fields := doc.AllFields()
	if len(fields) < 2 {
		t.Skip("generator produced a single field")
	}
	cfg := config.DefaultConfig()
	cfg.UI.DefaultFields = fields[:1]

	st := store.New()
	m := NewModel(st, Options{Config: cfg})
	update(t, m, dataLoadedMsg{doc: doc})

	if got := st.SelectedFieldList(); len(got) != 1 || got[0] != fields[0] {
		t.Errorf("selected fields = %v, want %v", got, fields[:1])
	}
}

func TestModel_TabEnterOpensInspector(t *testing.T) {
	m := readyModel(t, testutil.RelativityScenario())
	if len(m.frame.Nodes) != 2 {
		t.Fatalf("expected 2 nodes after a tick, got %d", len(m.frame.Nodes))
	}

	m = update(t, m, key("tab"))
	if m.cursor != "A" {
		t.Fatalf("first tab should land on the earliest node, got %q", m.cursor)
	}
	m = update(t, m, tickMsg(time.Now()))
	if m.Engine().Hovered() != "A" {
		t.Errorf("cursor should hover, hovered = %q", m.Engine().Hovered())
	}

	m = update(t, m, key("enter"))
	m = update(t, m, tickMsg(time.Now()))
	if m.mode != modeInspect {
		t.Fatalf("mode = %v, want inspector", m.mode)
	}
	if m.inspector.Details().ID != "A" || m.store.SelectedNode() != "A" {
		t.Errorf("inspected %q, store selection %q", m.inspector.Details().ID, m.store.SelectedNode())
	}

	var copied string
	m.inspector.copy = func(s string) error { copied = s; return nil }
	m = update(t, m, key("c"))
	if !strings.Contains(copied, "Albert Einstein") {
		t.Errorf("copied %q", copied)
	}

	m = update(t, m, key("esc"))
	m = update(t, m, tickMsg(time.Now()))
	if m.mode != modeGraph || m.store.SelectedNode() != "" {
		t.Errorf("esc should close the inspector, mode %v selection %q", m.mode, m.store.SelectedNode())
	}
}

func TestModel_SearchFocusesPerson(t *testing.T) {
	m := readyModel(t, testutil.HoverScenario())
	m = update(t, m, key("/"))
	if m.mode != modeSearch {
		t.Fatalf("mode = %v", m.mode)
	}
	for _, r := range "Gauss" {
		m = update(t, m, key(string(r)))
	}
	m = update(t, m, key("enter"))
	if m.mode != modeGraph {
		t.Errorf("enter should return to the graph")
	}
	if f := m.store.Focus(); f.NodeID != "C" {
		t.Errorf("focus = %+v, want C", f)
	}
}

func TestModel_ConnectAndFieldKeys(t *testing.T) {
	m := readyModel(t, testutil.HoverScenario())

	m = update(t, m, key("c"))
	if !m.store.ConnectEnabled() {
		t.Fatal("c should enable connect mode")
	}
	if !strings.Contains(m.View(), "0 people selected") {
		t.Errorf("connect label missing from top bar")
	}
	m = update(t, m, key("c"))
	if m.store.ConnectEnabled() {
		t.Error("second c should disable connect mode")
	}

	m = update(t, m, key("n"))
	m = update(t, m, tickMsg(time.Now()))
	if len(m.frame.Nodes) != 0 {
		t.Errorf("no fields should show no nodes, got %d", len(m.frame.Nodes))
	}
	m = update(t, m, key("a"))
	m = update(t, m, tickMsg(time.Now()))
	if len(m.frame.Nodes) != 3 {
		t.Errorf("all fields should show every node, got %d", len(m.frame.Nodes))
	}

	m = update(t, m, key("?"))
	if m.mode != modeCredits || !strings.Contains(m.View(), RepositoryURL) {
		t.Error("? should open the credits")
	}
	m = update(t, m, key("esc"))
	if m.mode != modeGraph {
		t.Error("esc should close the credits")
	}
}

func TestModel_ResizeSizesEngine(t *testing.T) {
	m := readyModel(t, testutil.RelativityScenario())
	m = update(t, m, tea.WindowSizeMsg{Width: 50, Height: 12})
	m = update(t, m, tickMsg(time.Now()))
	vp := m.Engine().Viewport()
	if vp.Width != 50*CellWidth || vp.Height != 10*CellHeight {
		t.Errorf("viewport = %+v", vp)
	}
	lines := strings.Split(m.View(), "\n")
	if len(lines) != 12 {
		t.Errorf("view has %d lines, want 12", len(lines))
	}
}

func TestModel_ViewRecordsRenderTiming(t *testing.T) {
	prev := metrics.Enabled()
	t.Cleanup(func() {
		metrics.SetEnabled(prev)
		metrics.ResetAll()
	})
	metrics.SetEnabled(true)
	metrics.UIRender.Reset()

	m := readyModel(t, testutil.RelativityScenario())
	_ = m.View()
	_ = m.View()
	if n := metrics.UIRender.Count(); n != 2 {
		t.Errorf("ui_render samples = %d, want 2", n)
	}
}
