// Package datasource resolves where the graph document comes from: a JSON
// file, a URL, or a SQLite export written by intellect itself. It can also
// discover candidate files in a directory and pick the freshest valid one.
package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/DipokalLab/intellect/pkg/loader"
)

// SourceType identifies the kind of data source.
type SourceType string

const (
	SourceTypeURL    SourceType = "url"
	SourceTypeJSON   SourceType = "json"
	SourceTypeSQLite SourceType = "sqlite"
)

// Priority breaks mod-time ties; the JSON document is authoritative and a
// SQLite export is derived from it.
const (
	PriorityJSON   = 100
	PrioritySQLite = 50
)

// Source is one place a document can be read from.
type Source struct {
	Type     SourceType `json:"type"`
	Location string     `json:"location"`
	Priority int        `json:"priority"`
	ModTime  time.Time  `json:"mod_time"`
	Size     int64      `json:"size"`

	// Set by ValidateSource.
	Valid           bool   `json:"valid"`
	ValidationError string `json:"validation_error,omitempty"`
	NodeCount       int    `json:"node_count"`
}

// String returns a one-line description.
func (s Source) String() string {
	status := "valid"
	if !s.Valid {
		status = "unvalidated"
		if s.ValidationError != "" {
			status = "invalid: " + s.ValidationError
		}
	}
	if s.Type == SourceTypeURL {
		return fmt.Sprintf("%s (%s, %s)", s.Location, s.Type, status)
	}
	return fmt.Sprintf("%s (%s, mod=%s, nodes=%d, %s)",
		s.Location, s.Type, s.ModTime.Format(time.RFC3339), s.NodeCount, status)
}

// sqliteExtensions are the suffixes written by `intellect export`.
var sqliteExtensions = []string{".sqlite3", ".sqlite", ".db"}

func isSQLitePath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range sqliteExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Detect classifies location without reading it. Local paths are stat'ed
// for their mod time and size when they exist.
func Detect(location string) Source {
	if loader.IsRemote(location) {
		return Source{Type: SourceTypeURL, Location: location, Priority: PriorityJSON}
	}
	s := Source{Type: SourceTypeJSON, Location: location, Priority: PriorityJSON}
	if isSQLitePath(location) {
		s.Type = SourceTypeSQLite
		s.Priority = PrioritySQLite
	}
	if info, err := os.Stat(location); err == nil {
		s.ModTime = info.ModTime()
		s.Size = info.Size()
	}
	return s
}

// DiscoveryOptions configures Discover.
type DiscoveryOptions struct {
	// Dir is searched, along with its public/ subdirectory.
	Dir string
	// ValidateAfterDiscovery opens every candidate and records the result.
	ValidateAfterDiscovery bool
	// IncludeInvalid keeps candidates that failed validation.
	IncludeInvalid bool
	// Logger receives progress lines when set.
	Logger func(msg string)
}

// Discover lists candidate documents under opts.Dir, freshest first.
func Discover(opts DiscoveryOptions) ([]Source, error) {
	logf := func(format string, args ...any) {
		if opts.Logger != nil {
			opts.Logger(fmt.Sprintf(format, args...))
		}
	}
	dir := opts.Dir
	if dir == "" {
		var err error
		if dir, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
	}

	var sources []Source
	for _, d := range []string{dir, filepath.Join(dir, "public")} {
		entries, err := os.ReadDir(d)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name := e.Name()
			if !strings.HasSuffix(strings.ToLower(name), ".json") && !isSQLitePath(name) {
				continue
			}
			s := Detect(filepath.Join(d, name))
			logf("found %s", s.Location)
			sources = append(sources, s)
		}
	}

	if opts.ValidateAfterDiscovery {
		for i := range sources {
			if err := ValidateSource(&sources[i]); err != nil {
				logf("validation failed for %s: %v", sources[i].Location, err)
			}
		}
		if !opts.IncludeInvalid {
			valid := sources[:0]
			for _, s := range sources {
				if s.Valid {
					valid = append(valid, s)
				}
			}
			sources = valid
		}
	}

	sortSources(sources)
	logf("discovered %d sources", len(sources))
	return sources, nil
}

func sortSources(sources []Source) {
	sort.SliceStable(sources, func(i, j int) bool {
		if sources[i].ModTime.Equal(sources[j].ModTime) {
			return sources[i].Priority > sources[j].Priority
		}
		return sources[i].ModTime.After(sources[j].ModTime)
	})
}

// SelectBestSource returns the first valid source in freshness order.
func SelectBestSource(sources []Source) (Source, error) {
	ranked := append([]Source(nil), sources...)
	sortSources(ranked)
	for _, s := range ranked {
		if s.Valid {
			return s, nil
		}
	}
	return Source{}, fmt.Errorf("no valid sources among %d candidates", len(sources))
}

// ValidateSource reads a local source and records whether it yields a
// non-empty document. URLs are not fetched and stay unvalidated.
func ValidateSource(s *Source) error {
	if s.Type == SourceTypeURL {
		return nil
	}
	doc, err := readLocal(*s, loader.ParseOptions{WarningHandler: func(string) {}})
	if err != nil {
		s.Valid = false
		s.ValidationError = err.Error()
		return err
	}
	s.Valid = true
	s.ValidationError = ""
	s.NodeCount = doc.NodeCount()
	return nil
}
