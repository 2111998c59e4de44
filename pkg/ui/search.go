package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/sahilm/fuzzy"

	"github.com/DipokalLab/intellect/pkg/model"
)

const maxSearchResults = 8

// personSource adapts persons to fuzzy.Source.
type personSource []model.PersonNode

func (s personSource) String(i int) string { return s[i].Name }
func (s personSource) Len() int            { return len(s) }

// PersonSearch is the "find a person" popup.
type PersonSearch struct {
	persons       personSource
	matches       []model.PersonNode
	input         textinput.Model
	selectedIndex int
	theme         Theme
}

// NewPersonSearch builds a search over doc's persons.
func NewPersonSearch(doc *model.GraphDocument, theme Theme) PersonSearch {
	ti := textinput.New()
	ti.Placeholder = "name..."
	ti.CharLimit = 60
	ti.Width = 32
	ti.Focus()

	s := PersonSearch{input: ti, theme: theme}
	if doc != nil {
		s.persons = personSource(doc.Persons)
	}
	s.filter()
	return s
}

// UpdateInput feeds a key to the text input and re-ranks.
func (s *PersonSearch) UpdateInput(msg interface{}) {
	s.input, _ = s.input.Update(msg)
	s.filter()
}

// SetQuery replaces the query text.
func (s *PersonSearch) SetQuery(q string) {
	s.input.SetValue(q)
	s.filter()
}

func (s *PersonSearch) filter() {
	s.selectedIndex = 0
	q := strings.TrimSpace(s.input.Value())
	if q == "" {
		n := min(len(s.persons), maxSearchResults)
		s.matches = append(s.matches[:0], s.persons[:n]...)
		return
	}
	s.matches = s.matches[:0]
	// An exact case-insensitive name match always ranks first.
	for _, p := range s.persons {
		if strings.EqualFold(p.Name, q) {
			s.matches = append(s.matches, p)
		}
	}
	for _, m := range fuzzy.FindFrom(q, s.persons) {
		p := s.persons[m.Index]
		if strings.EqualFold(p.Name, q) {
			continue
		}
		s.matches = append(s.matches, p)
		if len(s.matches) >= maxSearchResults {
			break
		}
	}
}

// MoveUp moves the cursor up.
func (s *PersonSearch) MoveUp() {
	if s.selectedIndex > 0 {
		s.selectedIndex--
	}
}

// MoveDown moves the cursor down.
func (s *PersonSearch) MoveDown() {
	if s.selectedIndex < len(s.matches)-1 {
		s.selectedIndex++
	}
}

// Selected returns the highlighted person id.
func (s *PersonSearch) Selected() (string, bool) {
	if s.selectedIndex >= len(s.matches) {
		return "", false
	}
	return s.matches[s.selectedIndex].ID, true
}

// Matches returns the ranked names, for tests and the view.
func (s *PersonSearch) Matches() []string {
	out := make([]string, len(s.matches))
	for i, p := range s.matches {
		out[i] = p.Name
	}
	return out
}

// View renders the popup body.
func (s *PersonSearch) View() string {
	var sb strings.Builder
	sb.WriteString(s.theme.Heading.Render("Find a person"))
	sb.WriteByte('\n')
	sb.WriteString(s.input.View())
	sb.WriteString("\n\n")
	if len(s.matches) == 0 {
		sb.WriteString(s.theme.Help.Render("no matches"))
	}
	for i, p := range s.matches {
		line := fmt.Sprintf("%s  %s", truncate(p.Name, 28), s.theme.Help.Render(model.FormatLifespan(p.Birth, p.Death)))
		if i == s.selectedIndex {
			sb.WriteString(s.theme.Cursor.Render("▸ ") + line)
		} else {
			sb.WriteString("  " + line)
		}
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n")
}
