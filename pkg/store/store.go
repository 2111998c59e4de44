// Package store holds the loaded graph document and the UI state shared
// between the engine and the chrome around it.
//
// The store is the only channel between the two: chrome writes intents
// (selected fields, focus requests, connect mode) and the engine reads them
// at the start of each tick. All methods are safe for concurrent use; the
// loader goroutine writes into the store while the host loop reads it.
package store

import (
	"sort"
	"strconv"
	"sync"

	"github.com/DipokalLab/intellect/pkg/debug"
	"github.com/DipokalLab/intellect/pkg/model"
)

// Status is the lifecycle of the document held by the store.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Focus is a pending camera focus request. Seq increases with every request,
// so asking twice for the same node is still two requests.
type Focus struct {
	NodeID string
	Seq    uint64
}

// Store is the shared state container.
type Store struct {
	mu sync.RWMutex

	status Status
	err    error
	doc    *model.GraphDocument
	index  model.Index

	// revision increases whenever the visible subgraph may have changed:
	// new data or a new field selection.
	revision uint64
	fields   map[string]bool

	focus    Focus
	selected string

	connectEnabled bool
	connected      []string
}

// New returns an empty store in StatusIdle.
func New() *Store {
	return &Store{fields: make(map[string]bool)}
}

// SetLoading marks a fetch as in flight.
func (s *Store) SetLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusLoading
	s.err = nil
}

// SetFailed records a load failure. Previously loaded data is kept.
func (s *Store) SetFailed(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusFailed
	s.err = err
	debug.Log("store: load failed: %v", err)
}

// SetData installs a loaded document and selects every field it carries.
// Focus, selection and the connected list are reset because their ids may
// no longer exist.
func (s *Store) SetData(doc *model.GraphDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc = doc
	s.index = doc.BuildIndex()
	s.status = StatusReady
	s.err = nil

	s.fields = make(map[string]bool)
	for _, f := range doc.AllFields() {
		s.fields[f] = true
	}
	s.focus = Focus{Seq: s.focus.Seq}
	s.selected = ""
	s.connected = nil
	s.revision++
	debug.Log("store: data set (%d nodes, %d fields), revision %d", doc.NodeCount(), len(s.fields), s.revision)
}

// Status returns the load status and the failure, if any.
func (s *Store) Status() (Status, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, s.err
}

// Document returns the loaded document, or nil before the first load.
// The document is immutable once installed.
func (s *Store) Document() *model.GraphDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

// Node looks up a node of the loaded document by id.
func (s *Store) Node(id string) (model.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.index[id]
	return n, ok
}

// Revision returns the counter bumped by data and field changes.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// SelectedFields returns a copy of the active field set.
func (s *Store) SelectedFields() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]bool, len(s.fields))
	for f, on := range s.fields {
		if on {
			out[f] = true
		}
	}
	return out
}

// SelectedFieldList returns the active fields sorted.
func (s *Store) SelectedFieldList() []string {
	set := s.SelectedFields()
	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// IsFieldSelected reports whether field is active.
func (s *Store) IsFieldSelected(field string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fields[field]
}

// SetSelectedFields replaces the active field set.
func (s *Store) SetSelectedFields(fields []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields = make(map[string]bool, len(fields))
	for _, f := range fields {
		s.fields[f] = true
	}
	s.revision++
}

// ToggleField flips one field in or out of the selection.
func (s *Store) ToggleField(field string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fields[field] {
		delete(s.fields, field)
	} else {
		s.fields[field] = true
	}
	s.revision++
}

// SelectAllFields selects every field of the loaded document.
func (s *Store) SelectAllFields() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields = make(map[string]bool)
	for _, f := range s.doc.AllFields() {
		s.fields[f] = true
	}
	s.revision++
}

// ClearFields empties the selection, which hides every node.
func (s *Store) ClearFields() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields = make(map[string]bool)
	s.revision++
}

// SetFocusedPerson requests a camera focus on id.
func (s *Store) SetFocusedPerson(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focus = Focus{NodeID: id, Seq: s.focus.Seq + 1}
}

// FocusByName finds a person by case-insensitive name and requests focus on
// them. It reports whether a person matched.
func (s *Store) FocusByName(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return false
	}
	p := s.doc.PersonByName(name)
	if p == nil {
		return false
	}
	s.focus = Focus{NodeID: p.ID, Seq: s.focus.Seq + 1}
	return true
}

// ClearFocus drops the pending focus request. The sequence is kept so a
// cleared request is never mistaken for a new one.
func (s *Store) ClearFocus() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focus.NodeID = ""
}

// ClearFocusIf clears the focus only if seq is still the current request.
// It returns false when a newer request has replaced it.
func (s *Store) ClearFocusIf(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.focus.Seq != seq {
		return false
	}
	s.focus.NodeID = ""
	return true
}

// Focus returns the current focus request. NodeID is empty when none.
func (s *Store) Focus() Focus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.focus
}

// SetSelectedNode records the node open in the inspector.
func (s *Store) SetSelectedNode(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = id
}

// ClearSelection closes the inspector.
func (s *Store) ClearSelection() {
	s.SetSelectedNode("")
}

// SelectedNode returns the inspected node id, or "".
func (s *Store) SelectedNode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// SetConnectEnabled switches connect mode. Leaving connect mode clears the
// connected list.
func (s *Store) SetConnectEnabled(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connectEnabled = on
	if !on {
		s.connected = nil
	}
}

// ConnectEnabled reports whether clicks toggle connection membership.
func (s *Store) ConnectEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connectEnabled
}

// ToggleConnected adds id to the connected list, or removes it if present.
func (s *Store) ToggleConnected(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.connected {
		if c == id {
			s.connected = append(s.connected[:i:i], s.connected[i+1:]...)
			return
		}
	}
	s.connected = append(s.connected, id)
}

// Connected returns a copy of the connected list in selection order.
func (s *Store) Connected() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.connected...)
}

// ClearConnected empties the connected list.
func (s *Store) ClearConnected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = nil
}

// ConnectLabel renders the selection count the way the connect button does.
func ConnectLabel(n int) string {
	if n == 1 {
		return "1 person selected"
	}
	return strconv.Itoa(n) + " people selected"
}
