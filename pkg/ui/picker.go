package ui

import (
	"os"
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// isTerminal reports whether stdin is a terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm builds a form, falling back to accessible mode without a TTY.
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

func fieldSelect(all []string, selected map[string]bool, values *[]string) *huh.MultiSelect[string] {
	sorted := append([]string(nil), all...)
	sort.Strings(sorted)

	*values = (*values)[:0]
	opts := make([]huh.Option[string], 0, len(sorted))
	for _, f := range sorted {
		opts = append(opts, huh.NewOption(f, f).Selected(selected[f]))
		if selected[f] {
			*values = append(*values, f)
		}
	}
	return huh.NewMultiSelect[string]().
		Title("Fields").
		Description("Space toggles, / filters, enter applies").
		Options(opts...).
		Filterable(true).
		Height(clampInt(len(opts)+2, 4, 16)).
		Value(values)
}

// FieldPicker is the in-TUI field filter, a huh multi-select.
type FieldPicker struct {
	form   *huh.Form
	values []string
}

// NewFieldPicker builds a picker over all with selected pre-checked.
func NewFieldPicker(all []string, selected map[string]bool) *FieldPicker {
	p := &FieldPicker{}
	p.form = huh.NewForm(huh.NewGroup(fieldSelect(all, selected, &p.values))).
		WithTheme(huh.ThemeDracula()).
		WithShowHelp(true)
	p.form.SubmitCmd = nil
	p.form.CancelCmd = nil
	return p
}

// Init starts the form.
func (p *FieldPicker) Init() tea.Cmd { return p.form.Init() }

// Update forwards every message to the form.
func (p *FieldPicker) Update(msg tea.Msg) tea.Cmd {
	m, cmd := p.form.Update(msg)
	if f, ok := m.(*huh.Form); ok {
		p.form = f
	}
	return cmd
}

// View renders the form.
func (p *FieldPicker) View() string { return p.form.View() }

// Done reports whether the user applied the selection.
func (p *FieldPicker) Done() bool { return p.form.State == huh.StateCompleted }

// Aborted reports whether the user backed out.
func (p *FieldPicker) Aborted() bool { return p.form.State == huh.StateAborted }

// Selected returns the checked fields.
func (p *FieldPicker) Selected() []string {
	return append([]string(nil), p.values...)
}

// PickFields runs a standalone picker on the terminal and returns the
// chosen fields.
func PickFields(all []string, selected map[string]bool) ([]string, error) {
	var values []string
	form := newForm(huh.NewGroup(fieldSelect(all, selected, &values)))
	if err := form.Run(); err != nil {
		return nil, err
	}
	return values, nil
}
