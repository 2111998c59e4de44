// Package ui is the terminal host for the timeline graph engine.
package ui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DipokalLab/intellect/pkg/camera"
	"github.com/DipokalLab/intellect/pkg/config"
	"github.com/DipokalLab/intellect/pkg/debug"
	"github.com/DipokalLab/intellect/pkg/engine"
	"github.com/DipokalLab/intellect/pkg/metrics"
	"github.com/DipokalLab/intellect/pkg/model"
	"github.com/DipokalLab/intellect/pkg/render"
	"github.com/DipokalLab/intellect/pkg/store"
)

// DefaultTickInterval is roughly 30 frames per second.
const DefaultTickInterval = 33 * time.Millisecond

const (
	topBarHeight = 1
	footerHeight = 1
	panCells     = 4
	zoomStep     = 1.25
)

var keyHelp = []string{
	"←↑↓→ pan", "+/- zoom", "0 fit", "tab next", "enter open",
	"f fields", "/ find", "c connect", "? about", "q quit",
}

type mode int

const (
	modeGraph mode = iota
	modeFilter
	modeSearch
	modeInspect
	modeCredits
)

// LoadFunc fetches the graph document.
type LoadFunc func(ctx context.Context) (*model.GraphDocument, error)

// Options configures a Model.
type Options struct {
	Config  config.Config
	Load    LoadFunc // Nil when the caller fills the store itself
	Context context.Context
	Engine  *engine.Options // Nil derives options from Config
}

type tickMsg time.Time

type dataLoadedMsg struct {
	doc *model.GraphDocument
	err error
}

// Model is the bubbletea model driving one engine.
type Model struct {
	store  *store.Store
	engine *engine.Engine
	theme  Theme
	ui     config.UIConfig
	load   LoadFunc
	ctx    context.Context

	width, height int
	mode          mode

	picker    *FieldPicker
	search    PersonSearch
	inspector InspectorModal

	frame  render.Frame
	cursor string
	path   []string
	status string
}

// NewModel builds the TUI over st.
func NewModel(st *store.Store, opts Options) Model {
	eopts := engine.OptionsFromConfig(opts.Config)
	if opts.Engine != nil {
		eopts = *opts.Engine
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Load != nil {
		st.SetLoading()
	}
	ui := opts.Config.UI
	if ui.TickInterval <= 0 {
		ui.TickInterval = DefaultTickInterval
	}
	m := Model{
		store:  st,
		engine: engine.New(st, eopts),
		theme:  DefaultTheme(lipgloss.DefaultRenderer()),
		ui:     ui,
		load:   opts.Load,
		ctx:    ctx,
		width:  int(eopts.Width / CellWidth),
		height: int(eopts.Height/CellHeight) + topBarHeight + footerHeight,
	}
	return m
}

// Engine exposes the engine, mainly for tests.
func (m Model) Engine() *engine.Engine { return m.engine }

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) loadCmd() tea.Cmd {
	load, ctx := m.load, m.ctx
	return func() tea.Msg {
		doc, err := load(ctx)
		return dataLoadedMsg{doc: doc, err: err}
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.ui.TickInterval)}
	if m.load != nil {
		cmds = append(cmds, m.loadCmd())
	}
	return tea.Batch(cmds...)
}

func (m Model) canvasSize() (int, int) {
	return max(m.width, 1), max(m.height-topBarHeight-footerHeight, 1)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.step()
		return m, tickCmd(m.ui.TickInterval)

	case dataLoadedMsg:
		if msg.err != nil {
			m.store.SetFailed(msg.err)
			return m, nil
		}
		m.store.SetData(msg.doc)
		if len(m.ui.DefaultFields) > 0 {
			m.store.SetSelectedFields(m.ui.DefaultFields)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		cw, ch := m.canvasSize()
		m.engine.Resize(float64(cw)*CellWidth, float64(ch)*CellHeight)
		if m.mode == modeInspect {
			m.inspector.SetSize(m.width, m.height)
		}
		return m, nil
	}

	// huh needs every message type, not only keys.
	if m.mode == modeFilter {
		return m.updateFilter(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeInspect:
			return m.updateInspect(msg)
		case modeCredits:
			return m.updateCredits(msg)
		}
		return m.updateGraph(msg)

	case tea.MouseMsg:
		if m.mode == modeGraph {
			m.handleMouse(msg)
		}
	}
	return m, nil
}

// step advances the engine one frame and collects its output.
func (m *Model) step() {
	m.engine.Tick()
	m.frame = m.engine.Frame()
	for _, ev := range m.engine.Events() {
		m.inspector = NewInspectorModal(ev.Details, m.width, m.height, m.theme)
		m.mode = modeInspect
	}
	m.path = nil
	if m.store.ConnectEnabled() {
		if p, ok := m.engine.ConnectionPath(); ok {
			m.path = p
		}
	}
	if m.cursor != "" {
		if _, ok := m.frame.Node(m.cursor); !ok {
			m.cursor = ""
		}
	}
}

func (m Model) updateGraph(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	vp := m.engine.Viewport()
	m.status = ""
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "left", "h":
		m.engine.Gesture(camera.Gesture{DX: panCells * CellWidth})
	case "right", "l":
		m.engine.Gesture(camera.Gesture{DX: -panCells * CellWidth})
	case "up", "k":
		m.engine.Gesture(camera.Gesture{DY: panCells * CellHeight})
	case "down", "j":
		m.engine.Gesture(camera.Gesture{DY: -panCells * CellHeight})
	case "+", "=":
		m.engine.Gesture(camera.Gesture{Zoom: zoomStep, AnchorX: vp.Width / 2, AnchorY: vp.Height / 2})
	case "-", "_":
		m.engine.Gesture(camera.Gesture{Zoom: 1 / zoomStep, AnchorX: vp.Width / 2, AnchorY: vp.Height / 2})
	case "0":
		m.engine.FitView()
	case "tab":
		m.moveCursor(1)
	case "shift+tab":
		m.moveCursor(-1)
	case "enter":
		if m.cursor != "" {
			m.engine.Click(m.cursor)
		}
	case "esc":
		m.cursor = ""
		m.engine.Leave()
	case "f":
		doc := m.store.Document()
		if doc == nil {
			m.status = "no data loaded"
			break
		}
		m.picker = NewFieldPicker(doc.AllFields(), m.store.SelectedFields())
		m.mode = modeFilter
		return m, m.picker.Init()
	case "/":
		m.search = NewPersonSearch(m.store.Document(), m.theme)
		m.mode = modeSearch
	case "c":
		m.store.SetConnectEnabled(!m.store.ConnectEnabled())
	case "x":
		m.store.ClearConnected()
	case "a":
		m.store.SelectAllFields()
	case "n":
		m.store.ClearFields()
	case "?":
		m.mode = modeCredits
	}
	return m, nil
}

// moveCursor walks visible nodes in timeline order and hovers the result.
func (m *Model) moveCursor(delta int) {
	nodes := append([]render.NodeElement(nil), m.frame.Nodes...)
	if len(nodes) == 0 {
		return
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].X != nodes[j].X {
			return nodes[i].X < nodes[j].X
		}
		return nodes[i].ID < nodes[j].ID
	})
	idx := -1
	for i, n := range nodes {
		if n.ID == m.cursor {
			idx = i
			break
		}
	}
	switch {
	case idx < 0 && delta < 0:
		idx = len(nodes) - 1
	case idx < 0:
		idx = 0
	default:
		idx = (idx + delta + len(nodes)) % len(nodes)
	}
	m.cursor = nodes[idx].ID
	m.engine.Hover(m.cursor)
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	col, row := msg.X, msg.Y-topBarHeight
	px := (float64(col) + 0.5) * CellWidth
	py := (float64(row) + 0.5) * CellHeight

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.engine.Gesture(camera.Gesture{Zoom: zoomStep, AnchorX: px, AnchorY: py})
		return
	case tea.MouseButtonWheelDown:
		m.engine.Gesture(camera.Gesture{Zoom: 1 / zoomStep, AnchorX: px, AnchorY: py})
		return
	}

	id, hit := NodeAtCell(m.frame, col, row)
	switch msg.Action {
	case tea.MouseActionMotion:
		if hit {
			m.cursor = id
			m.engine.Hover(id)
		} else if m.cursor != "" {
			m.cursor = ""
			m.engine.Leave()
		}
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft && hit {
			m.engine.Click(id)
		}
	}
}

func (m Model) updateFilter(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "ctrl+c" {
		return m, tea.Quit
	}
	cmd := m.picker.Update(msg)
	switch {
	case m.picker.Done():
		m.store.SetSelectedFields(m.picker.Selected())
		debug.Log("ui: fields set to %v", m.picker.Selected())
		m.picker = nil
		m.mode = modeGraph
		return m, nil
	case m.picker.Aborted():
		m.picker = nil
		m.mode = modeGraph
		return m, nil
	}
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.mode = modeGraph
	case "up", "ctrl+p":
		m.search.MoveUp()
	case "down", "ctrl+n":
		m.search.MoveDown()
	case "enter":
		if id, ok := m.search.Selected(); ok {
			m.store.SetFocusedPerson(id)
		}
		m.mode = modeGraph
	default:
		m.search.UpdateInput(msg)
	}
	return m, nil
}

func (m Model) updateInspect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "q", "enter":
		m.engine.CloseInspector()
		m.mode = modeGraph
	case "c", "y":
		m.inspector.Copy()
	case "up", "k":
		m.inspector.ScrollUp()
	case "down", "j":
		m.inspector.ScrollDown()
	}
	return m, nil
}

func (m Model) updateCredits(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc", "q", "?", "enter":
		m.mode = modeGraph
	}
	return m, nil
}

func (m Model) View() string {
	defer metrics.Timer(metrics.UIRender)()
	cw, ch := m.canvasSize()

	var body string
	switch m.mode {
	case modeGraph:
		body = m.canvasView(cw, ch)
	default:
		body = lipgloss.Place(cw, ch, lipgloss.Center, lipgloss.Center, m.theme.Modal.Render(m.modalView()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.topBar(), body, m.footer())
}

func (m Model) modalView() string {
	switch m.mode {
	case modeFilter:
		if m.picker != nil {
			return m.picker.View()
		}
	case modeSearch:
		return m.search.View()
	case modeInspect:
		return m.inspector.View()
	case modeCredits:
		return m.creditsView()
	}
	return ""
}

func (m Model) canvasView(w, h int) string {
	c := NewCanvas(w, h)
	ov := Overlay{Cursor: m.cursor}
	if m.store.ConnectEnabled() {
		ov.Connected = make(map[string]bool)
		for _, id := range m.store.Connected() {
			ov.Connected[id] = true
		}
		ov.Path = make(map[string]bool, len(m.path))
		for _, id := range m.path {
			ov.Path[id] = true
		}
	}
	DrawFrame(c, m.frame, ov)
	return c.Render(m.theme)
}

// statusText summarises load state and the current view for the top bar.
func (m Model) statusText() string {
	status, err := m.store.Status()
	switch status {
	case store.StatusIdle, store.StatusLoading:
		return "Loading…"
	case store.StatusFailed:
		if m.store.Document() == nil {
			return m.theme.Error.Render("Failed: " + err.Error())
		}
		return m.theme.Error.Render("Reload failed: " + err.Error())
	}

	doc := m.store.Document()
	fields := m.store.SelectedFieldList()
	parts := []string{
		fmt.Sprintf("%d/%d nodes", len(m.frame.Nodes), doc.NodeCount()),
		fmt.Sprintf("fields: %s", fieldSummary(fields, len(doc.AllFields()))),
	}
	if m.store.ConnectEnabled() {
		parts = append(parts, "connect: "+store.ConnectLabel(len(m.store.Connected())))
	}
	if m.cursor != "" {
		if n, ok := m.store.Node(m.cursor); ok {
			parts = append(parts, n.Label())
		}
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	return strings.Join(parts, " · ")
}

func fieldSummary(selected []string, total int) string {
	switch {
	case len(selected) == 0:
		return "none"
	case len(selected) == total:
		return "all"
	case len(selected) <= 3:
		return strings.Join(selected, ", ")
	}
	return fmt.Sprintf("%d of %d", len(selected), total)
}

func (m Model) topBar() string {
	line := m.theme.Title.Render("Intellect") + "  " + m.statusText()
	return m.theme.TopBar.Width(max(m.width, 1)).MaxHeight(1).Render(line)
}

func (m Model) footer() string {
	if len(m.path) > 1 {
		labels := make([]string, 0, len(m.path))
		for _, id := range m.path {
			if n, ok := m.store.Node(id); ok {
				labels = append(labels, n.Label())
			}
		}
		return truncate("path: "+strings.Join(labels, " → "), max(m.width, 1))
	}
	return m.theme.Help.Render(truncate(strings.Join(keyHelp, "  "), max(m.width, 1)))
}
