// Package server exposes the loaded graph over HTTP: the document itself,
// its fields, node details and rendered snapshots.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"

	"github.com/DipokalLab/intellect/pkg/debug"
	"github.com/DipokalLab/intellect/pkg/engine"
	"github.com/DipokalLab/intellect/pkg/export"
	"github.com/DipokalLab/intellect/pkg/interact"
	"github.com/DipokalLab/intellect/pkg/model"
	"github.com/DipokalLab/intellect/pkg/store"
)

// Snapshot sizes are clamped to this range.
const (
	minSnapshotSize = 64
	maxSnapshotSize = 4096
)

// Options configures the HTTP host.
type Options struct {
	Engine   engine.Options
	MaxTicks int
	Title    string
	// RequestTimeout bounds each request, snapshots included.
	RequestTimeout time.Duration
}

// DefaultOptions returns defaults suitable for local use.
func DefaultOptions() Options {
	return Options{
		Engine:         engine.DefaultOptions(),
		MaxTicks:       export.DefaultMaxTicks,
		Title:          "Intellect",
		RequestTimeout: 30 * time.Second,
	}
}

// Server serves one store. Every snapshot request lays out on a private
// engine, so requests never share simulation state.
type Server struct {
	store *store.Store
	opts  Options
	mux   *chi.Mux
}

// New builds the router over st.
func New(st *store.Store, opts Options) *Server {
	s := &Server{store: st, opts: opts, mux: chi.NewRouter()}
	s.mux.Use(middleware.RealIP)
	s.mux.Use(middleware.Recoverer)
	if opts.RequestTimeout > 0 {
		s.mux.Use(middleware.Timeout(opts.RequestTimeout))
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.Get("/healthz", s.handleHealth)
	s.mux.Get("/graph-data.json", s.handleDocument)
	s.mux.Get("/fields", s.handleFields)
	s.mux.Get("/nodes/{id}", s.handleNode)
	s.mux.Get("/snapshot.svg", s.handleSnapshot("svg"))
	s.mux.Get("/snapshot.png", s.handleSnapshot("png"))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		debug.Log("server: listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		debug.Log("server: encode response: %v", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// document returns the loaded document or writes 503 with the load state.
func (s *Server) document(w http.ResponseWriter) (*model.GraphDocument, bool) {
	if doc := s.store.Document(); doc != nil {
		return doc, true
	}
	status, err := s.store.Status()
	msg := "graph data is " + status.String()
	if err != nil {
		msg += ": " + err.Error()
	}
	writeError(w, http.StatusServiceUnavailable, msg)
	return nil, false
}

type healthBody struct {
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	Nodes    int    `json:"nodes"`
	Revision uint64 `json:"revision"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, err := s.store.Status()
	body := healthBody{Status: status.String(), Revision: s.store.Revision()}
	if err != nil {
		body.Error = err.Error()
	}
	if doc := s.store.Document(); doc != nil {
		body.Nodes = doc.NodeCount()
	}
	code := http.StatusOK
	if status == store.StatusFailed && s.store.Document() == nil {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, body)
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

type fieldBody struct {
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
	Persons  int    `json:"persons"`
}

func (s *Server) handleFields(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w)
	if !ok {
		return
	}
	counts := make(map[string]int)
	for _, p := range doc.Persons {
		for _, f := range p.Fields {
			counts[f]++
		}
	}
	selected := s.store.SelectedFields()
	all := doc.AllFields()
	out := make([]fieldBody, 0, len(all))
	for _, f := range all {
		out = append(out, fieldBody{Name: f, Selected: selected[f], Persons: counts[f]})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.document(w); !ok {
		return
	}
	id := chi.URLParam(r, "id")
	n, ok := s.store.Node(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no node %q", id))
		return
	}
	writeJSON(w, http.StatusOK, interact.DetailsFor(n))
}

// snapshotRequest is the parsed query of a snapshot URL.
type snapshotRequest struct {
	fields        []string
	width, height int
}

func parseSnapshotQuery(r *http.Request, def engine.Options) (snapshotRequest, error) {
	q := r.URL.Query()
	req := snapshotRequest{width: int(def.Width), height: int(def.Height)}
	if raw := q.Get("fields"); raw != "" {
		req.fields = model.ParseFields(raw)
	}
	for _, dim := range []struct {
		name string
		dst  *int
	}{{"width", &req.width}, {"height", &req.height}} {
		raw := q.Get(dim.name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("invalid %s %q", dim.name, raw)
		}
		*dim.dst = min(max(v, minSnapshotSize), maxSnapshotSize)
	}
	return req, nil
}

func (s *Server) handleSnapshot(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, ok := s.document(w)
		if !ok {
			return
		}
		req, err := parseSnapshotQuery(r, s.opts.Engine)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.fields == nil {
			req.fields = s.store.SelectedFieldList()
			if len(req.fields) == 0 {
				writeError(w, http.StatusNotFound, export.ErrNoNodes.Error())
				return
			}
		}

		opts := s.opts.Engine
		opts.Width, opts.Height = float64(req.width), float64(req.height)
		frame, err := export.Settle(doc, req.fields, opts, s.opts.MaxTicks)
		if errors.Is(err, export.ErrNoNodes) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}

		title := s.opts.Title
		if len(req.fields) > 0 && len(req.fields) < len(doc.AllFields()) {
			title += " · " + strings.Join(req.fields, ", ")
		}
		switch format {
		case "png":
			w.Header().Set("Content-Type", "image/png")
			err = export.WritePNG(w, frame, title)
		default:
			w.Header().Set("Content-Type", "image/svg+xml")
			err = export.WriteSVG(w, frame, title)
		}
		if err != nil {
			debug.Log("server: snapshot write failed: %v", err)
		}
	}
}
