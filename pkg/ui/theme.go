package ui

import (
	"os"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss"
)

// TermProfile holds the detected terminal color profile.
var TermProfile colorprofile.Profile

func init() {
	TermProfile = colorprofile.Detect(os.Stdout, os.Environ())
}

// ThemeBg returns hex on TrueColor terminals and NoColor otherwise, so
// 16/256-color terminals keep their own background.
func ThemeBg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.TrueColor {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(hex)
}

// ThemeFg returns hex on ANSI256+ terminals and ANSI white below that.
func ThemeFg(hex string) lipgloss.TerminalColor {
	if TermProfile < colorprofile.ANSI256 {
		return lipgloss.ANSIColor(7)
	}
	return lipgloss.Color(hex)
}

// Theme carries every style the TUI draws with.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Danger    lipgloss.AdaptiveColor

	Person      lipgloss.AdaptiveColor
	Achievement lipgloss.AdaptiveColor
	Edge        lipgloss.AdaptiveColor
	EdgeHi      lipgloss.AdaptiveColor
	Pulse       lipgloss.AdaptiveColor
	Path        lipgloss.AdaptiveColor

	Base    lipgloss.Style
	TopBar  lipgloss.Style
	Title   lipgloss.Style
	Help    lipgloss.Style
	Error   lipgloss.Style
	Modal   lipgloss.Style
	Heading lipgloss.Style
	Cursor  lipgloss.Style

	// Canvas cell styles, indexed by cellClass.
	cells [numCellClasses]lipgloss.Style
}

// DefaultTheme returns the Dracula-inspired adaptive theme.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"},
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"},
		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Muted:     lipgloss.AdaptiveColor{Light: "#888888", Dark: "#44475A"},
		Danger:    lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},

		Person:      lipgloss.AdaptiveColor{Light: "#0066CC", Dark: "#8BE9FD"},
		Achievement: lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"},
		Edge:        lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#6272A4"},
		EdgeHi:      lipgloss.AdaptiveColor{Light: "#CC0066", Dark: "#FF79C6"},
		Pulse:       lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"},
		Path:        lipgloss.AdaptiveColor{Light: "#808000", Dark: "#F1FA8C"},
	}

	text := lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	t.Base = r.NewStyle().Foreground(text)
	t.TopBar = r.NewStyle().Foreground(text).Background(ThemeBg("#282A36")).Padding(0, 1)
	t.Title = r.NewStyle().Foreground(t.Primary).Bold(true)
	t.Help = r.NewStyle().Foreground(t.Secondary)
	t.Error = r.NewStyle().Foreground(t.Danger).Bold(true)
	t.Modal = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2)
	t.Heading = r.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1)
	t.Cursor = r.NewStyle().Foreground(t.Primary).Bold(true)

	t.cells[clsBlank] = r.NewStyle()
	t.cells[clsAxis] = r.NewStyle().Foreground(t.Secondary)
	t.cells[clsEdge] = r.NewStyle().Foreground(t.Edge)
	t.cells[clsEdgeHi] = r.NewStyle().Foreground(t.EdgeHi)
	t.cells[clsEdgeDim] = r.NewStyle().Foreground(t.Muted)
	t.cells[clsPerson] = r.NewStyle().Foreground(t.Person).Bold(true)
	t.cells[clsAchievement] = r.NewStyle().Foreground(t.Achievement).Bold(true)
	t.cells[clsNodeDim] = r.NewStyle().Foreground(t.Muted)
	t.cells[clsNodeHi] = r.NewStyle().Foreground(t.EdgeHi).Bold(true)
	t.cells[clsLabel] = r.NewStyle().Foreground(t.Subtext)
	t.cells[clsLabelDim] = r.NewStyle().Foreground(t.Muted)
	t.cells[clsPulse] = r.NewStyle().Foreground(t.Pulse).Bold(true)
	t.cells[clsPath] = r.NewStyle().Foreground(t.Path).Bold(true)
	return t
}

// cellStyle returns the style for a canvas cell class.
func (t Theme) cellStyle(c cellClass) lipgloss.Style {
	return t.cells[c]
}
