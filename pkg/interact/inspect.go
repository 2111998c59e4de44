package interact

import (
	"fmt"
	"strings"

	"github.com/DipokalLab/intellect/pkg/debug"
	"github.com/DipokalLab/intellect/pkg/model"
)

// Row is one labelled attribute line of the inspector.
type Row struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Details is everything the inspector shows for a node.
type Details struct {
	ID       string         `json:"id"`
	Kind     model.NodeKind `json:"kind"`
	Title    string         `json:"title"`
	Rows     []Row          `json:"rows"`
	Text     string         `json:"text,omitempty"` // Achievement description
	PhotoURL string         `json:"photo_url,omitempty"`
}

// NodeSelected is emitted when a node is clicked outside connect mode.
type NodeSelected struct {
	Details Details
}

// DetailsFor builds inspector content from a node's attributes.
func DetailsFor(n model.Node) Details {
	d := Details{ID: n.ID, Kind: n.Kind, Title: n.Label()}
	switch n.Kind {
	case model.KindPerson:
		p := n.Person
		d.PhotoURL = p.PhotoURL
		d.Rows = []Row{
			{Label: "Nationality", Value: p.Nationality},
			{Label: "Field", Value: p.Field},
			{Label: "Lifespan", Value: model.FormatLifespan(p.Birth, p.Death)},
		}
	case model.KindAchievement:
		a := n.Achievement
		d.Text = a.Text
		d.Rows = []Row{
			{Label: "Category", Value: a.Category},
			{Label: "Year", Value: model.FormatYear(a.Year)},
		}
	}
	return d
}

// Markdown renders the details for a markdown renderer.
func (d Details) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", d.Title)
	for _, r := range d.Rows {
		if r.Value == "" {
			continue
		}
		fmt.Fprintf(&b, "- **%s:** %s\n", r.Label, r.Value)
	}
	if d.Text != "" {
		b.WriteString("\n")
		b.WriteString(d.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// String renders the details as plain text.
func (d Details) String() string {
	var b strings.Builder
	b.WriteString(d.Title)
	for _, r := range d.Rows {
		if r.Value == "" {
			continue
		}
		fmt.Fprintf(&b, "\n%s: %s", r.Label, r.Value)
	}
	if d.Text != "" {
		b.WriteString("\n\n")
		b.WriteString(d.Text)
	}
	return b.String()
}

// Selection is the slice of the state store the inspector writes to.
type Selection interface {
	Node(id string) (model.Node, bool)
	SetSelectedNode(id string)
	ClearSelection()
	ConnectEnabled() bool
	ToggleConnected(id string)
}

// Inspector handles clicks on nodes.
type Inspector struct {
	state Selection
}

// NewInspector returns an inspector writing to state.
func NewInspector(state Selection) *Inspector {
	return &Inspector{state: state}
}

// Click handles a click on id. In connect mode a person is toggled in the
// connected list and no event is emitted; otherwise the node is inspected.
func (in *Inspector) Click(id string) (NodeSelected, bool) {
	n, ok := in.state.Node(id)
	if !ok {
		return NodeSelected{}, false
	}
	if in.state.ConnectEnabled() {
		if n.Kind == model.KindPerson {
			in.state.ToggleConnected(id)
			debug.Log("interact: toggled %s in connect mode", id)
		}
		return NodeSelected{}, false
	}
	return in.Inspect(id)
}

// Inspect selects id and returns the event carrying its details.
func (in *Inspector) Inspect(id string) (NodeSelected, bool) {
	n, ok := in.state.Node(id)
	if !ok {
		return NodeSelected{}, false
	}
	in.state.SetSelectedNode(id)
	return NodeSelected{Details: DetailsFor(n)}, true
}

// Close dismisses the inspector. Only the selection is cleared.
func (in *Inspector) Close() {
	in.state.ClearSelection()
}
