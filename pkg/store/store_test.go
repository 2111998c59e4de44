package store

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/DipokalLab/intellect/pkg/model"
)

func testDocument() *model.GraphDocument {
	doc := &model.GraphDocument{
		Persons: []model.PersonNode{
			{ID: "A", Name: "Albert Einstein", Birth: 1879, Field: "Physics"},
			{ID: "C", Name: "Marie Curie", Birth: 1867, Field: "Physics, Chemistry"},
			{ID: "D", Name: "Charles Darwin", Birth: 1809, Field: "Biology"},
		},
		Achievements: []model.AchievementNode{{ID: "E1", Year: 1905, Title: "Relativity"}},
		Edges:        []model.Edge{{Source: "A", Target: "E1"}},
	}
	doc.Normalize()
	return doc
}

func TestStore_Lifecycle(t *testing.T) {
	s := New()
	if st, _ := s.Status(); st != StatusIdle {
		t.Fatalf("expected idle, got %v", st)
	}
	s.SetLoading()
	if st, _ := s.Status(); st != StatusLoading {
		t.Fatalf("expected loading, got %v", st)
	}

	boom := errors.New("connection refused")
	s.SetFailed(boom)
	st, err := s.Status()
	if st != StatusFailed || !errors.Is(err, boom) {
		t.Fatalf("expected failed with error, got %v %v", st, err)
	}

	rev := s.Revision()
	s.SetData(testDocument())
	st, err = s.Status()
	if st != StatusReady || err != nil {
		t.Fatalf("expected ready, got %v %v", st, err)
	}
	if s.Revision() == rev {
		t.Error("SetData must bump the revision")
	}
	if n, ok := s.Node("E1"); !ok || n.Kind != model.KindAchievement {
		t.Errorf("expected E1 in index, got %+v", n)
	}
}

func TestStore_SetDataSelectsEveryField(t *testing.T) {
	s := New()
	s.SetData(testDocument())
	want := []string{"Biology", "Chemistry", "Physics"}
	if got := s.SelectedFieldList(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestStore_FieldOperations(t *testing.T) {
	s := New()
	s.SetData(testDocument())

	rev := s.Revision()
	s.ToggleField("Biology")
	if s.IsFieldSelected("Biology") {
		t.Error("Biology should be deselected")
	}
	if s.Revision() == rev {
		t.Error("toggle must bump the revision")
	}
	s.ToggleField("Biology")
	if !s.IsFieldSelected("Biology") {
		t.Error("Biology should be selected again")
	}

	s.ClearFields()
	if len(s.SelectedFields()) != 0 {
		t.Errorf("expected empty selection, got %v", s.SelectedFields())
	}

	s.SelectAllFields()
	if len(s.SelectedFields()) != 3 {
		t.Errorf("expected all 3 fields, got %v", s.SelectedFields())
	}

	s.SetSelectedFields([]string{"Physics"})
	if got := s.SelectedFieldList(); !reflect.DeepEqual(got, []string{"Physics"}) {
		t.Errorf("expected [Physics], got %v", got)
	}

	// The returned map is a copy.
	m := s.SelectedFields()
	m["Biology"] = true
	if s.IsFieldSelected("Biology") {
		t.Error("mutating the returned map leaked into the store")
	}
}

func TestStore_Focus(t *testing.T) {
	s := New()
	s.SetData(testDocument())

	s.SetFocusedPerson("A")
	first := s.Focus()
	if first.NodeID != "A" {
		t.Fatalf("expected focus on A, got %+v", first)
	}
	s.SetFocusedPerson("A")
	second := s.Focus()
	if second.Seq == first.Seq {
		t.Error("repeated focus must be a new request")
	}

	if s.ClearFocusIf(first.Seq) {
		t.Error("stale sequence must not clear a newer request")
	}
	if !s.ClearFocusIf(second.Seq) || s.Focus().NodeID != "" {
		t.Error("current sequence should clear focus")
	}

	if !s.FocusByName("marie curie") || s.Focus().NodeID != "C" {
		t.Errorf("expected case-insensitive name focus on C, got %+v", s.Focus())
	}
	if s.FocusByName("Newton") {
		t.Error("unknown name should not match")
	}
	s.ClearFocus()
	if s.Focus().NodeID != "" {
		t.Error("ClearFocus should drop the request")
	}
}

func TestStore_SelectionAndConnect(t *testing.T) {
	s := New()
	s.SetData(testDocument())

	s.SetSelectedNode("E1")
	if s.SelectedNode() != "E1" {
		t.Fatal("selection not recorded")
	}
	rev := s.Revision()
	s.ClearSelection()
	if s.SelectedNode() != "" || s.Revision() != rev {
		t.Error("closing the inspector must only clear the selection")
	}

	s.SetConnectEnabled(true)
	s.ToggleConnected("A")
	s.ToggleConnected("C")
	s.ToggleConnected("D")
	s.ToggleConnected("C")
	if got := s.Connected(); !reflect.DeepEqual(got, []string{"A", "D"}) {
		t.Errorf("expected [A D], got %v", got)
	}
	s.SetConnectEnabled(false)
	if len(s.Connected()) != 0 {
		t.Error("leaving connect mode should clear the list")
	}
}

func TestConnectLabel(t *testing.T) {
	if got := ConnectLabel(1); got != "1 person selected" {
		t.Errorf("got %q", got)
	}
	if got := ConnectLabel(3); got != "3 people selected" {
		t.Errorf("got %q", got)
	}
	if got := ConnectLabel(0); got != "0 people selected" {
		t.Errorf("got %q", got)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := New()
	doc := testDocument()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.SetData(doc)
			s.ToggleField("Physics")
		}()
		go func() {
			defer wg.Done()
			_ = s.SelectedFields()
			_ = s.Revision()
			_, _ = s.Status()
		}()
	}
	wg.Wait()
	if st, _ := s.Status(); st != StatusReady {
		t.Errorf("expected ready, got %v", st)
	}
}
