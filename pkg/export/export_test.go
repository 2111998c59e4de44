package export

import (
	"bytes"
	"database/sql"
	"encoding/xml"
	"errors"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DipokalLab/intellect/pkg/engine"
	"github.com/DipokalLab/intellect/pkg/model"
	"github.com/DipokalLab/intellect/pkg/testutil"
)

func settled(t *testing.T, doc *model.GraphDocument) []byte {
	t.Helper()
	frame, err := Settle(doc, nil, engine.DefaultOptions(), 400)
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}
	var buf bytes.Buffer
	if err := WriteSVG(&buf, frame, "Test & Title"); err != nil {
		t.Fatalf("WriteSVG: %v", err)
	}
	return buf.Bytes()
}

func TestWriteSVG_ValidXML(t *testing.T) {
	doc := testutil.RelativityScenario()
	doc.Persons[0].PhotoURL = "https://example.org/a.jpg?w=64&h=64"
	out := settled(t, doc)

	dec := xml.NewDecoder(bytes.NewReader(out))
	circles, patterns := 0, 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("invalid XML: %v\n%s", err, out)
		}
		if se, ok := tok.(xml.StartElement); ok {
			switch se.Name.Local {
			case "circle":
				circles++
			case "pattern":
				patterns++
			}
		}
	}
	// Two nodes plus two legend markers.
	if circles != 4 {
		t.Errorf("expected 4 circles, got %d", circles)
	}
	if patterns != 1 {
		t.Errorf("expected 1 portrait pattern, got %d", patterns)
	}
	s := string(out)
	if !strings.Contains(s, "url(#portrait-A)") {
		t.Error("portrait fill not referenced")
	}
	if !strings.Contains(s, "Relativity") || !strings.Contains(s, "Test &amp; Title") {
		t.Error("labels or title missing")
	}
}

func TestWritePNG_Dimensions(t *testing.T) {
	opts := engine.DefaultOptions()
	opts.Width, opts.Height = 640, 400
	frame, err := Settle(testutil.QuickTimeline(4, 2), nil, opts, 400)
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}
	var buf bytes.Buffer
	if err := WritePNG(&buf, frame, ""); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 640 || b.Dy() != 400+int(headerHeight) {
		t.Errorf("image is %dx%d", b.Dx(), b.Dy())
	}
}

func TestSaveSnapshot_Formats(t *testing.T) {
	tmp := t.TempDir()
	doc := testutil.QuickTimeline(3, 1)
	cases := []struct {
		name string
		path string
		want string
	}{
		{"svg by extension", filepath.Join(tmp, "graph.svg"), filepath.Join(tmp, "graph.svg")},
		{"png by extension", filepath.Join(tmp, "graph.png"), filepath.Join(tmp, "graph.png")},
		{"no extension", filepath.Join(tmp, "sub", "graph"), filepath.Join(tmp, "sub", "graph.svg")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := SaveSnapshot(doc, SnapshotOptions{Path: tc.path, MaxTicks: 300}); err != nil {
				t.Fatalf("SaveSnapshot: %v", err)
			}
			info, err := os.Stat(tc.want)
			if err != nil {
				t.Fatalf("output not created: %v", err)
			}
			if info.Size() == 0 {
				t.Fatal("output file is empty")
			}
		})
	}
}

func TestSaveSnapshot_Errors(t *testing.T) {
	doc := testutil.RelativityScenario()
	tmp := t.TempDir()

	err := SaveSnapshot(doc, SnapshotOptions{Path: filepath.Join(tmp, "graph.txt")})
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Errorf("expected unsupported format error, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmp, "graph.txt")); !os.IsNotExist(err) {
		t.Errorf("unsupported format still wrote a file: %v", err)
	}

	err = SaveSnapshot(doc, SnapshotOptions{Path: filepath.Join(tmp, "graph.svg"), Fields: []string{"Biology"}})
	if !errors.Is(err, ErrNoNodes) {
		t.Errorf("expected ErrNoNodes, got %v", err)
	}

	if err := SaveSnapshot(doc, SnapshotOptions{Format: "svg"}); err == nil {
		t.Error("missing path should fail")
	}
}

func TestResolveFormat(t *testing.T) {
	cases := []struct {
		format, path      string
		wantFmt, wantPath string
		wantErr           bool
	}{
		{"", "out/graph.svg", "svg", "out/graph.svg", false},
		{"", "graph.PNG", "png", "graph.PNG", false},
		{"", "graph", "svg", "graph.svg", false},
		{".png", "graph.svg", "png", "graph.svg", false},
		{"", "graph.txt", "", "", true},
		{"", "graph.jpeg", "", "", true},
		{"pdf", "graph.svg", "", "", true},
		{"svg", "", "", "", true},
	}
	for _, tc := range cases {
		format, path, err := ResolveFormat(tc.format, tc.path)
		if (err != nil) != tc.wantErr {
			t.Errorf("ResolveFormat(%q, %q) error = %v, wantErr %v", tc.format, tc.path, err, tc.wantErr)
			continue
		}
		if format != tc.wantFmt || path != tc.wantPath {
			t.Errorf("ResolveFormat(%q, %q) = %q, %q; want %q, %q", tc.format, tc.path, format, path, tc.wantFmt, tc.wantPath)
		}
	}
}

func TestSQLiteExport_RowCounts(t *testing.T) {
	doc := testutil.RelativityScenario()
	doc.Persons = append(doc.Persons, model.PersonNode{ID: "B", Name: "Bohr", Birth: 1885, Field: "Physics, Philosophy"})
	doc.Edges = append(doc.Edges, model.Edge{Source: "B", Target: "E1"}, model.Edge{Source: "A", Target: "E1"})
	doc.Normalize()

	frame, err := Settle(doc, nil, engine.DefaultOptions(), 300)
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}
	path := filepath.Join(t.TempDir(), "out", "graph.sqlite3")
	if err := NewSQLiteExporter(doc, &frame, []string{"Physics"}).Export(path); err != nil {
		t.Fatalf("Export: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	counts := map[string]int{
		"persons":       2,
		"person_fields": 3,
		"achievements":  1,
		"edges":         3,
		"positions":     3,
	}
	for table, want := range counts {
		var got int
		if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&got); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if got != want {
			t.Errorf("%s: got %d rows, want %d", table, got, want)
		}
	}

	var ordinal int
	if err := db.QueryRow(`SELECT MAX(ordinal) FROM edges WHERE source = 'A'`).Scan(&ordinal); err != nil {
		t.Fatal(err)
	}
	if ordinal != 2 {
		t.Errorf("parallel edge ordinal = %d, want 2", ordinal)
	}

	var fields string
	if err := db.QueryRow(`SELECT value FROM export_meta WHERE key = 'fields'`).Scan(&fields); err != nil {
		t.Fatal(err)
	}
	if fields != "Physics" {
		t.Errorf("meta fields = %q", fields)
	}
}

func TestSQLiteExport_Empty(t *testing.T) {
	err := NewSQLiteExporter(testutil.Empty(), nil, nil).Export(filepath.Join(t.TempDir(), "x.sqlite3"))
	if !errors.Is(err, ErrNoNodes) {
		t.Errorf("expected ErrNoNodes, got %v", err)
	}
}
