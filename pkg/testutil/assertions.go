package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"

	"github.com/DipokalLab/intellect/pkg/model"
)

// AssertNodeCount verifies the number of persons and achievements.
func AssertNodeCount(t *testing.T, doc *model.GraphDocument, persons, achievements int) {
	t.Helper()
	if len(doc.Persons) != persons {
		t.Errorf("expected %d persons, got %d", persons, len(doc.Persons))
	}
	if len(doc.Achievements) != achievements {
		t.Errorf("expected %d achievements, got %d", achievements, len(doc.Achievements))
	}
}

// AssertNoDuplicateIDs verifies ids are unique across persons and achievements.
func AssertNoDuplicateIDs(t *testing.T, doc *model.GraphDocument) {
	t.Helper()
	seen := make(map[string]bool)
	for _, id := range NodeIDs(doc) {
		if seen[id] {
			t.Errorf("duplicate node ID: %s", id)
		}
		seen[id] = true
	}
}

// AssertEdgesResolve verifies every edge endpoint names a node in ids.
func AssertEdgesResolve(t *testing.T, edges []model.Edge, has func(string) bool) {
	t.Helper()
	for _, e := range edges {
		if !has(e.Source) || !has(e.Target) {
			t.Errorf("dangling edge %s", e.Key())
		}
	}
}

// AssertJSONEqual compares two values after JSON round-tripping.
func AssertJSONEqual(t *testing.T, expected, actual any) {
	t.Helper()

	expectedJSON, err := json.Marshal(expected)
	if err != nil {
		t.Fatalf("failed to marshal expected: %v", err)
	}

	actualJSON, err := json.Marshal(actual)
	if err != nil {
		t.Fatalf("failed to marshal actual: %v", err)
	}

	if string(expectedJSON) != string(actualJSON) {
		t.Errorf("JSON mismatch:\nexpected: %s\nactual:   %s", expectedJSON, actualJSON)
	}
}

// WriteDocumentFile writes doc as graph-data.json under dir and returns the path.
func WriteDocumentFile(t *testing.T, dir string, doc *model.GraphDocument) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	path := filepath.Join(dir, "graph-data.json")
	if err := os.WriteFile(path, []byte(ToJSON(doc)), 0o644); err != nil {
		t.Fatalf("failed to write document: %v", err)
	}
	return path
}

// NodeIDs returns person ids then achievement ids.
func NodeIDs(doc *model.GraphDocument) []string {
	ids := make([]string, 0, doc.NodeCount())
	for _, p := range doc.Persons {
		ids = append(ids, p.ID)
	}
	for _, a := range doc.Achievements {
		ids = append(ids, a.ID)
	}
	return ids
}
