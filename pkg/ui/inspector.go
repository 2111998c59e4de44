package ui

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"

	"github.com/DipokalLab/intellect/pkg/interact"
)

// InspectorModal shows a node's details rendered as markdown.
type InspectorModal struct {
	details  interact.Details
	viewport viewport.Model
	rendered string
	status   string
	theme    Theme

	// copy is swappable so tests never touch the system clipboard.
	copy func(string) error
}

// NewInspectorModal renders d for a modal of the given outer size.
func NewInspectorModal(d interact.Details, width, height int, theme Theme) InspectorModal {
	m := InspectorModal{details: d, theme: theme, copy: clipboard.WriteAll}
	m.SetSize(width, height)
	return m
}

// SetSize re-wraps the content for a new modal size.
func (m *InspectorModal) SetSize(width, height int) {
	w := clampInt(width-8, 20, 80)
	h := clampInt(height-8, 4, 30)
	m.rendered = renderMarkdown(m.details.Markdown(), w)
	m.viewport = viewport.New(w, h)
	m.viewport.SetContent(m.rendered)
}

func renderMarkdown(md string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

// Details returns what the modal shows.
func (m *InspectorModal) Details() interact.Details { return m.details }

// Copy puts the plain-text details on the clipboard.
func (m *InspectorModal) Copy() {
	if err := m.copy(m.details.String()); err != nil {
		m.status = "copy failed: " + err.Error()
		return
	}
	m.status = "copied"
}

// ScrollUp scrolls the body up one line.
func (m *InspectorModal) ScrollUp() { m.viewport.LineUp(1) }

// ScrollDown scrolls the body down one line.
func (m *InspectorModal) ScrollDown() { m.viewport.LineDown(1) }

// View renders the modal body.
func (m *InspectorModal) View() string {
	var sb strings.Builder
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n\n")
	help := "esc close · c copy · ↑/↓ scroll"
	if m.status != "" {
		help += " · " + m.status
	}
	sb.WriteString(m.theme.Help.Render(help))
	return sb.String()
}
