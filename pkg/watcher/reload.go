package watcher

import (
	"errors"

	"github.com/DipokalLab/intellect/pkg/debug"
	"github.com/DipokalLab/intellect/pkg/loader"
	"github.com/DipokalLab/intellect/pkg/model"
)

// Sink receives reloaded documents. *store.Store satisfies it.
type Sink interface {
	SetData(doc *model.GraphDocument)
	SetFailed(err error)
}

// Reloader re-reads a data file into a Sink whenever it changes on disk.
type Reloader struct {
	w    *Watcher
	sink Sink
	opts loader.ParseOptions
}

// NewReloader watches path and feeds parsed documents to sink. A document
// that fails to parse is reported through SetFailed; the sink keeps the
// previous data in that case.
func NewReloader(path string, sink Sink, parse loader.ParseOptions, opts ...Option) (*Reloader, error) {
	r := &Reloader{sink: sink, opts: parse}
	all := append([]Option{
		WithOnChange(r.reload),
		WithOnError(r.fail),
	}, opts...)
	w, err := New(path, all...)
	if err != nil {
		return nil, err
	}
	r.w = w
	return r, nil
}

// Start begins watching.
func (r *Reloader) Start() error { return r.w.Start() }

// Stop ends watching.
func (r *Reloader) Stop() { r.w.Stop() }

// Watcher exposes the underlying file watcher.
func (r *Reloader) Watcher() *Watcher { return r.w }

func (r *Reloader) reload() {
	doc, report, err := loader.LoadFile(r.w.Path(), r.opts)
	if err != nil {
		r.sink.SetFailed(err)
		return
	}
	if report != nil && !report.Empty() {
		debug.Log("watcher: reload of %s dropped %d records", r.w.Path(), len(report.Issues))
	}
	r.sink.SetData(doc)
}

func (r *Reloader) fail(err error) {
	if errors.Is(err, ErrFileRemoved) {
		// Editors that save by delete-and-recreate trigger this; the
		// following Create reloads.
		debug.Log("watcher: %s removed", r.w.Path())
		return
	}
	r.sink.SetFailed(err)
}
