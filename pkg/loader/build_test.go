package loader_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DipokalLab/intellect/pkg/loader"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestBuild_AssemblesDocument(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "data", "persons", "einstein.yml"), `
scholar_id: einstein
name: Albert Einstein
birth: 1879
death: 1955
field: Physics
nationality: German
photo_url: https://example.org/einstein.jpg
`)
	writeFile(t, filepath.Join(root, "data", "persons", "aristotle.yml"), `
scholar_id: aristotle
name: Aristotle
birth: -384
death: -322
field: Philosophy, Logic
nationality: Greek
`)
	writeFile(t, filepath.Join(root, "data", "persons", "anonymous.yml"), `
name: Nobody
`)
	writeFile(t, filepath.Join(root, "data", "achievements.yml"), `
- key: relativity
  year: 1905
  title: Special relativity
  category: Physics
  participants: [einstein]
- key: organon
  year: -350
  title: Organon
  participants:
    - aristotle
- title: Keyless
`)

	var warnings []string
	opts := loader.DefaultBuildOptions(root)
	opts.WarningHandler = func(msg string) { warnings = append(warnings, msg) }

	res, err := loader.Build(context.Background(), opts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	doc := res.Document

	if len(doc.Persons) != 2 {
		t.Fatalf("expected 2 persons, got %d", len(doc.Persons))
	}
	// Sorted by file name: anonymous (skipped), aristotle, einstein.
	if doc.Persons[0].ID != "aristotle" || doc.Persons[1].ID != "einstein" {
		t.Errorf("unexpected person order: %s, %s", doc.Persons[0].ID, doc.Persons[1].ID)
	}
	if doc.Persons[1].PhotoURL == "" || doc.Persons[1].Type != "person" {
		t.Errorf("person fields not carried: %+v", doc.Persons[1])
	}
	if len(doc.Achievements) != 2 || doc.Achievements[1].Year != -350 {
		t.Errorf("unexpected achievements %+v", doc.Achievements)
	}
	if len(doc.Edges) != 2 || doc.Edges[0].Key() != "einstein-relativity" || doc.Edges[1].Key() != "aristotle-organon" {
		t.Errorf("unexpected edges %+v", doc.Edges)
	}
	if len(res.Skipped) != 2 || len(warnings) != 2 {
		t.Fatalf("expected 2 skipped records, got %v", res.Skipped)
	}
	if !strings.Contains(res.Skipped[0], "scholar_id") || !strings.Contains(res.Skipped[1], "key") {
		t.Errorf("unexpected skip messages %v", res.Skipped)
	}

	// The built document must load cleanly.
	out := filepath.Join(root, "public", "graph-data.json")
	if err := loader.WriteDocument(out, doc); err != nil {
		t.Fatal(err)
	}
	loaded, report, err := loader.LoadFile(out, loader.ParseOptions{})
	if err != nil || !report.Empty() {
		t.Fatalf("reload: %v %v", err, report)
	}
	if loaded.NodeCount() != 4 {
		t.Errorf("expected 4 nodes after reload, got %d", loaded.NodeCount())
	}
}

func TestBuild_MissingAchievements(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "data", "persons"), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := loader.Build(context.Background(), loader.DefaultBuildOptions(root)); err == nil {
		t.Fatal("expected error for missing achievements.yml")
	}
}

func TestBuild_InvalidPersonYAML(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "data", "persons", "bad.yml"), "scholar_id: [unclosed\n")
	writeFile(t, filepath.Join(root, "data", "achievements.yml"), "[]\n")
	_, err := loader.Build(context.Background(), loader.DefaultBuildOptions(root))
	if err == nil || !strings.Contains(err.Error(), "bad.yml") {
		t.Fatalf("expected parse error naming the file, got %v", err)
	}
}
