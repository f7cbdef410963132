package server

import (
	"context"
	stderrors "errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/pathlattice/pkg/buildinfo"
	"github.com/matzehuels/pathlattice/pkg/cache"
	"github.com/matzehuels/pathlattice/pkg/errors"
	pathio "github.com/matzehuels/pathlattice/pkg/io"
	"github.com/matzehuels/pathlattice/pkg/pipeline"
	"github.com/matzehuels/pathlattice/pkg/store"
)

// Summary describes a stored lattice.
type Summary struct {
	ID        string     `json:"id"`
	Name      string     `json:"name,omitempty"`
	Links     int        `json:"links"`
	Edges     int        `json:"edges"`
	BestScore *float64   `json:"best_score,omitempty"` // absent when the lattice holds no path
	BestPath  string     `json:"best_path,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// TopKResponse is the body of a top-K query.
type TopKResponse struct {
	ID    string              `json:"id"`
	K     int                 `json:"k"`
	Paths []pathio.PathResult `json:"paths"`
}

// HasResponse is the body of a has-sequence query.
type HasResponse struct {
	ID       string `json:"id"`
	Sequence string `json:"sequence"`
	Count    int    `json:"count"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Current(),
	})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doc, err := pathio.ReadJSON(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := pathio.Marshal(*doc)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "serialize lattice"))
		return
	}

	name := ""
	if doc.Profile != nil {
		name = doc.Profile.Name
	}
	entry := store.NewEntry(name, data, max(s.cfg.TTL, 0))
	if err := s.cfg.Store.Put(ctx, entry); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "store lattice"))
		return
	}

	d := newDecoded(doc, entry)
	s.decoded.Add(entry.ID, d)
	s.cfg.Logger.Info("stored lattice", "id", entry.ID, "name", name, "bytes", len(data))
	writeJSON(w, http.StatusCreated, d.summary())
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	d, err := s.load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d.summary())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidateLatticeID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.decoded.Remove(id)
	if err := s.cfg.Store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "delete lattice"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTopK(w http.ResponseWriter, r *http.Request) {
	opts, err := parseTopK(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d, err := s.load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	paths, err := s.cfg.Runner.Search(r.Context(), d.doc, d.hash, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if paths == nil {
		paths = []pathio.PathResult{}
	}
	writeJSON(w, http.StatusOK, TopKResponse{ID: d.entry.ID, K: opts.K, Paths: paths})
}

// handleHas answers GET /v1/lattices/{id}/has?seq=. Each residue of seq costs
// one pass over the frontier, which holds each link at most once, so the work
// is bounded by MaxQueryLength times the lattice size.
func (s *Server) handleHas(w http.ResponseWriter, r *http.Request) {
	seq := r.URL.Query().Get("seq")
	if seq != "" {
		if err := errors.ValidateResidues(seq, errors.MaxQueryLength); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	d, err := s.load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	n := d.doc.Paths.HasSequence(seq, d.doc.Graph)
	writeJSON(w, http.StatusOK, HasResponse{ID: d.entry.ID, Sequence: seq, Count: n})
}

var contentTypes = map[string]string{
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:  "image/svg+xml",
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}
	detailed, err := parseBool(q.Get("detailed"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	d, err := s.load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	artifacts, err := s.cfg.Runner.Render(r.Context(), d.doc, d.hash, pipeline.Options{
		Formats:  []string{format},
		Detailed: detailed,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

// load returns the decoded lattice id, from the LRU when possible.
func (s *Server) load(ctx context.Context, id string) (*decoded, error) {
	if err := errors.ValidateLatticeID(id); err != nil {
		return nil, err
	}
	if d, ok := s.decoded.Get(id); ok {
		if !d.entry.IsExpired() {
			return d, nil
		}
		s.decoded.Remove(id)
	}

	e, err := s.cfg.Store.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "load lattice %s", id)
	}
	if e == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "lattice %s not found", id)
	}
	doc, err := pathio.Unmarshal(e.Document)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode stored lattice %s", id)
	}
	d := newDecoded(doc, e)
	s.decoded.Add(id, d)
	return d, nil
}

func newDecoded(doc *pathio.Document, e *store.Entry) *decoded {
	d := &decoded{doc: doc, hash: cache.Hash(e.Document), entry: *e}
	d.entry.Document = nil
	return d
}

func (d *decoded) summary() Summary {
	ps := d.doc.Paths
	sum := Summary{
		ID:        d.entry.ID,
		Name:      d.entry.Name,
		Links:     len(ps.Collect()),
		Edges:     ps.EdgeCount(),
		CreatedAt: d.entry.CreatedAt,
	}
	if best := ps.BestScore(); !math.IsInf(best, 0) {
		sum.BestScore = &best
		sum.BestPath = ps.BestPathString(d.doc.Graph)
	}
	if !d.entry.ExpiresAt.IsZero() {
		t := d.entry.ExpiresAt
		sum.ExpiresAt = &t
	}
	return sum
}

func parseTopK(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	var opts pipeline.Options
	if v := q.Get("k"); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "k must be an integer, got %q", v)
		}
		opts.K = k
	}
	if v := q.Get("min_score"); v != "" {
		ms, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "min_score must be a number, got %q", v)
		}
		opts.MinScore = &ms
	}
	return opts, opts.ValidateForSearch()
}

func parseBool(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New(errors.ErrCodeInvalidInput, "expected a boolean, got %q", v)
	}
	return b, nil
}

// statusOf maps err to a response status. Oversized bodies are reported as
// such whatever code wraps them.
func statusOf(err error) int {
	var mbe *http.MaxBytesError
	if stderrors.As(err, &mbe) {
		return http.StatusRequestEntityTooLarge
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return errors.HTTPStatus(err)
}
