package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/DipokalLab/intellect/pkg/debug"
	"github.com/DipokalLab/intellect/pkg/metrics"
	"github.com/DipokalLab/intellect/pkg/model"
)

// DataFileEnvVar overrides the document location for every command.
const DataFileEnvVar = "INTELLECT_DATA"

// DefaultDataFile is where the build step writes the document.
var DefaultDataFile = filepath.Join("public", "graph-data.json")

// ErrEmptyDocument is returned when a document holds no usable nodes.
var ErrEmptyDocument = errors.New("graph document contains no persons or achievements")

// DefaultMaxDocumentSize caps how much of a document is read (64MB).
const DefaultMaxDocumentSize = 64 << 20

// ParseOptions configures the behavior of ParseDocument.
type ParseOptions struct {
	// WarningHandler is called with a message for every dropped record.
	// If nil, warnings go to the debug log.
	WarningHandler func(string)

	// MaxSize bounds the number of bytes read. If 0, uses DefaultMaxDocumentSize.
	MaxSize int64

	// AllowEmpty accepts documents without nodes instead of returning
	// ErrEmptyDocument.
	AllowEmpty bool
}

// rawDocument defers record decoding so a single malformed record drops
// only itself.
type rawDocument struct {
	Nodes   []json.RawMessage `json:"nodes"`
	Edges   []json.RawMessage `json:"edges"`
	Persons []json.RawMessage `json:"persons"`
}

// ResolvePath returns the document path, respecting INTELLECT_DATA.
func ResolvePath(path string) string {
	if env := os.Getenv(DataFileEnvVar); env != "" {
		return env
	}
	if path == "" {
		return DefaultDataFile
	}
	return path
}

// IsRemote reports whether source is an HTTP(S) URL.
func IsRemote(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Load reads a document from a file path or URL.
func Load(ctx context.Context, source string, fetch FetchOptions, opts ParseOptions) (*model.GraphDocument, *Report, error) {
	if IsRemote(source) {
		return Fetch(ctx, source, fetch, opts)
	}
	return LoadFile(source, opts)
}

// LoadFile reads and sanitises the document at path.
func LoadFile(path string, opts ParseOptions) (*model.GraphDocument, *Report, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil, fmt.Errorf("no graph document found at %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open graph document: %w", err)
	}
	defer file.Close()

	return ParseDocument(file, opts)
}

// ParseDocument decodes a {nodes, edges, persons} document and sanitises it.
// Records that fail to decode or validate are dropped and reported; only an
// unreadable or structurally invalid document is an error.
func ParseDocument(r io.Reader, opts ParseOptions) (*model.GraphDocument, *Report, error) {
	defer metrics.TimerWithCallback(metrics.DocumentLoad, func(d time.Duration) {
		debug.LogTiming("parse graph document", d)
	})()

	maxSize := opts.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxDocumentSize
	}
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, nil, fmt.Errorf("reading graph document: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, nil, fmt.Errorf("graph document exceeds %d bytes", maxSize)
	}

	// Strip UTF-8 BOM if present
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("parsing graph document: %w", err)
	}

	report := &Report{}
	doc := &model.GraphDocument{
		Achievements: make([]model.AchievementNode, 0, len(raw.Nodes)),
		Persons:      make([]model.PersonNode, 0, len(raw.Persons)),
		Edges:        make([]model.Edge, 0, len(raw.Edges)),
	}

	for i, msg := range raw.Persons {
		var p model.PersonNode
		if err := json.Unmarshal(msg, &p); err != nil {
			report.add(IssueMalformed, "", fmt.Sprintf("persons[%d]: %v", i, err))
			continue
		}
		doc.Persons = append(doc.Persons, p)
	}
	for i, msg := range raw.Nodes {
		var a model.AchievementNode
		if err := json.Unmarshal(msg, &a); err != nil {
			report.add(IssueMalformed, "", fmt.Sprintf("nodes[%d]: %v", i, err))
			continue
		}
		doc.Achievements = append(doc.Achievements, a)
	}
	for i, msg := range raw.Edges {
		var e model.Edge
		if err := json.Unmarshal(msg, &e); err != nil {
			report.add(IssueMalformed, "", fmt.Sprintf("edges[%d]: %v", i, err))
			continue
		}
		doc.Edges = append(doc.Edges, e)
	}

	Sanitize(doc, report)

	warn := opts.WarningHandler
	if warn == nil {
		warn = func(msg string) { debug.Log("loader: %s", msg) }
	}
	for _, issue := range report.Issues {
		warn(issue.String())
	}

	if doc.NodeCount() == 0 && !opts.AllowEmpty {
		return doc, report, ErrEmptyDocument
	}

	debug.Log("loader: %d persons, %d achievements, %d edges (%d dropped)",
		len(doc.Persons), len(doc.Achievements), len(doc.Edges), len(report.Issues))
	return doc, report, nil
}

// Sanitize normalises the document in place and drops records that break
// its invariants: nodes missing required fields, ids already used by an
// earlier node (persons are kept before achievements), and edges whose
// endpoints do not resolve. Drops are appended to report.
func Sanitize(doc *model.GraphDocument, report *Report) {
	if report == nil {
		report = &Report{}
	}
	seen := make(map[string]bool, doc.NodeCount())

	persons := doc.Persons[:0]
	for _, p := range doc.Persons {
		p.ID = strings.TrimSpace(p.ID)
		if err := p.Validate(); err != nil {
			report.add(IssueMissingField, p.ID, err.Error())
			continue
		}
		if seen[p.ID] {
			report.add(IssueDuplicateID, p.ID, "duplicate person id")
			continue
		}
		seen[p.ID] = true
		p.Normalize()
		persons = append(persons, p)
	}
	doc.Persons = persons

	achievements := doc.Achievements[:0]
	for _, a := range doc.Achievements {
		a.ID = strings.TrimSpace(a.ID)
		if err := a.Validate(); err != nil {
			report.add(IssueMissingField, a.ID, err.Error())
			continue
		}
		if seen[a.ID] {
			report.add(IssueDuplicateID, a.ID, "id already used by another node")
			continue
		}
		seen[a.ID] = true
		a.Normalize()
		achievements = append(achievements, a)
	}
	doc.Achievements = achievements

	edges := doc.Edges[:0]
	for _, e := range doc.Edges {
		e.Source = strings.TrimSpace(e.Source)
		e.Target = strings.TrimSpace(e.Target)
		switch {
		case !seen[e.Source]:
			report.add(IssueDanglingEdge, e.Key(), fmt.Sprintf("unknown source %q", e.Source))
			continue
		case !seen[e.Target]:
			report.add(IssueDanglingEdge, e.Key(), fmt.Sprintf("unknown target %q", e.Target))
			continue
		}
		edges = append(edges, e)
	}
	doc.Edges = edges
}

// WriteDocument encodes doc as indented JSON at path, creating parent
// directories.
func WriteDocument(path string, doc *model.GraphDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode graph document: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write graph document: %w", err)
	}
	return nil
}
