package datasource

import (
	"context"
	"fmt"

	"github.com/DipokalLab/intellect/pkg/loader"
	"github.com/DipokalLab/intellect/pkg/model"
)

// Load reads the document at location, dispatching on its detected type.
func Load(ctx context.Context, location string, fetch loader.FetchOptions, opts loader.ParseOptions) (*model.GraphDocument, Source, error) {
	s := Detect(location)
	if s.Type == SourceTypeURL {
		doc, _, err := loader.Fetch(ctx, location, fetch, opts)
		return doc, s, err
	}
	doc, err := readLocal(s, opts)
	return doc, s, err
}

// LoadDir discovers candidates in dir and loads the freshest valid one.
func LoadDir(dir string, opts loader.ParseOptions) (*model.GraphDocument, Source, error) {
	sources, err := Discover(DiscoveryOptions{Dir: dir, ValidateAfterDiscovery: true})
	if err != nil {
		return nil, Source{}, err
	}
	if len(sources) == 0 {
		return nil, Source{}, fmt.Errorf("no graph document found in %s", dir)
	}
	best, err := SelectBestSource(sources)
	if err != nil {
		return nil, Source{}, err
	}
	doc, err := readLocal(best, opts)
	return doc, best, err
}

func readLocal(s Source, opts loader.ParseOptions) (*model.GraphDocument, error) {
	switch s.Type {
	case SourceTypeSQLite:
		reader, err := NewSQLiteReader(s)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite source %s: %w", s.Location, err)
		}
		defer reader.Close()
		return reader.LoadDocument(opts)

	case SourceTypeJSON:
		doc, _, err := loader.LoadFile(s.Location, opts)
		return doc, err

	default:
		return nil, fmt.Errorf("unknown source type: %s", s.Type)
	}
}
