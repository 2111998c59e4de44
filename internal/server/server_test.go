package server

import (
	"errors"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/DipokalLab/intellect/pkg/interact"
	"github.com/DipokalLab/intellect/pkg/loader"
	"github.com/DipokalLab/intellect/pkg/model"
	"github.com/DipokalLab/intellect/pkg/store"
	"github.com/DipokalLab/intellect/pkg/testutil"
)

func twoFieldDoc() *model.GraphDocument {
	doc := testutil.RelativityScenario()
	doc.Persons = append(doc.Persons, model.PersonNode{ID: "D", Name: "Charles Darwin", Birth: 1809, Death: 1882, Field: "Biology"})
	doc.Achievements = append(doc.Achievements, model.AchievementNode{ID: "E2", Year: 1859, Title: "Origin of Species", Category: "Biology"})
	doc.Edges = append(doc.Edges, model.Edge{Source: "D", Target: "E2"})
	doc.Normalize()
	return doc
}

func newTestServer(t *testing.T, st *store.Store) *httptest.Server {
	t.Helper()
	opts := DefaultOptions()
	opts.MaxTicks = 200
	ts := httptest.NewServer(New(st, opts))
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	st := store.New()
	ts := newTestServer(t, st)

	var body healthBody
	resp := get(t, ts, "/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "idle" || body.Nodes != 0 {
		t.Errorf("body = %+v", body)
	}

	st.SetFailed(errors.New("fetch failed"))
	if resp := get(t, ts, "/healthz"); resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("failed first load should be unhealthy, got %d", resp.StatusCode)
	}

	st.SetData(twoFieldDoc())
	resp = get(t, ts, "/healthz")
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || body.Nodes != 4 || body.Revision == 0 {
		t.Errorf("status %d body %+v", resp.StatusCode, body)
	}
}

func TestDocumentAndFields(t *testing.T) {
	st := store.New()
	ts := newTestServer(t, st)

	if resp := get(t, ts, "/graph-data.json"); resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("before load: %d", resp.StatusCode)
	}

	st.SetData(twoFieldDoc())
	st.SetSelectedFields([]string{"Physics"})

	resp := get(t, ts, "/graph-data.json")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	doc, _, err := loader.ParseDocument(resp.Body, loader.ParseOptions{})
	if err != nil {
		t.Fatalf("served document does not parse: %v", err)
	}
	testutil.AssertNodeCount(t, doc, 2, 2)

	var fields []fieldBody
	if err := json.NewDecoder(get(t, ts, "/fields").Body).Decode(&fields); err != nil {
		t.Fatal(err)
	}
	want := map[string]bool{"Physics": true, "Biology": false}
	if len(fields) != 2 {
		t.Fatalf("fields = %+v", fields)
	}
	for _, f := range fields {
		if sel, ok := want[f.Name]; !ok || sel != f.Selected || f.Persons != 1 {
			t.Errorf("field %+v", f)
		}
	}
}

func TestNodeDetails(t *testing.T) {
	st := store.New()
	st.SetData(twoFieldDoc())
	ts := newTestServer(t, st)

	var d interact.Details
	resp := get(t, ts, "/nodes/E2")
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		t.Fatal(err)
	}
	if d.Title != "Origin of Species" || d.Kind != model.KindAchievement {
		t.Errorf("details = %+v", d)
	}
	n, _ := st.Node("E2")
	testutil.AssertJSONEqual(t, interact.DetailsFor(n), d)

	if resp := get(t, ts, "/nodes/nope"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown node: %d", resp.StatusCode)
	}
}

func TestSnapshot(t *testing.T) {
	st := store.New()
	st.SetData(twoFieldDoc())
	ts := newTestServer(t, st)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"svg with fields", "/snapshot.svg?fields=Physics&width=320&height=200", http.StatusOK},
		{"all selected fields", "/snapshot.svg", http.StatusOK},
		{"nothing visible", "/snapshot.svg?fields=Chemistry", http.StatusNotFound},
		{"bad width", "/snapshot.svg?width=wide", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := get(t, ts, tt.path)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}

	resp := get(t, ts, "/snapshot.svg?fields=Physics&width=320&height=200")
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type %q", ct)
	}
	buf := new(strings.Builder)
	if _, err := io.Copy(buf, resp.Body); err != nil {
		t.Fatal(err)
	}
	svg := buf.String()
	if !strings.Contains(svg, `width="320"`) || strings.Contains(svg, "Origin of Species") {
		t.Errorf("unexpected svg:\n%s", svg)
	}
}

func TestSnapshot_PNGAndEmptySelection(t *testing.T) {
	st := store.New()
	st.SetData(twoFieldDoc())
	ts := newTestServer(t, st)

	resp := get(t, ts, "/snapshot.png?width=256&height=128")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 256 {
		t.Errorf("width = %d", img.Bounds().Dx())
	}

	st.ClearFields()
	if resp := get(t, ts, "/snapshot.svg"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("empty selection should be 404, got %d", resp.StatusCode)
	}
}

func TestParseSnapshotQuery_Clamps(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/snapshot.svg?width=5&height=99999&fields=Physics,%20Art", nil)
	req, err := parseSnapshotQuery(r, DefaultOptions().Engine)
	if err != nil {
		t.Fatal(err)
	}
	if req.width != minSnapshotSize || req.height != maxSnapshotSize {
		t.Errorf("size = %dx%d", req.width, req.height)
	}
	if len(req.fields) != 2 || req.fields[1] != "Art" {
		t.Errorf("fields = %v", req.fields)
	}
}
