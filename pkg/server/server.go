// Package server exposes stored lattices over HTTP.
//
// # Routes
//
//	POST   /v1/lattices                 upload a lattice document, returns its id
//	GET    /v1/lattices/{id}            summary: links, best score, best path
//	DELETE /v1/lattices/{id}            remove a lattice
//	GET    /v1/lattices/{id}/topk       ?k=&min_score= best distinct paths
//	GET    /v1/lattices/{id}/has        ?seq= count of positions spelling seq
//	GET    /v1/lattices/{id}/render     ?format=dot|svg&detailed=true
//	GET    /healthz                     liveness and build info
//	GET    /metrics                     Prometheus exposition, when enabled
//
// Errors are JSON objects {"code": ..., "message": ...} with the status
// chosen by [errors.HTTPStatus].
//
// Uploaded documents are kept in a [store.Store]. Decoded lattices are held
// in a small LRU so repeated queries against a hot lattice skip JSON
// decoding. Query results and renders go through a [pipeline.Runner] and its
// cache.
package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	pathio "github.com/matzehuels/pathlattice/pkg/io"
	"github.com/matzehuels/pathlattice/pkg/pipeline"
	"github.com/matzehuels/pathlattice/pkg/store"
)

// Defaults for [Config].
const (
	DefaultMaxBodyBytes    = 32 << 20
	DefaultDecodedEntries  = 64
	DefaultCleanupInterval = 10 * time.Minute
	DefaultRequestTimeout  = 60 * time.Second
)

// Config configures a [Server]. Store is required.
type Config struct {
	Store  store.Store
	Runner *pipeline.Runner
	Logger *log.Logger

	// Gatherer backs /metrics. Nil disables the route.
	Gatherer prometheus.Gatherer

	// TTL is the lifetime of uploaded lattices. Zero means store.DefaultTTL;
	// negative means uploads never expire.
	TTL time.Duration

	MaxBodyBytes    int64
	DecodedEntries  int
	CleanupInterval time.Duration
	RequestTimeout  time.Duration
}

// ValidateAndSetDefaults checks required fields and applies defaults.
func (c *Config) ValidateAndSetDefaults() error {
	if c.Store == nil {
		return stderrors.New("server: store is required")
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	if c.Runner == nil {
		c.Runner = pipeline.NewRunner(nil, nil, c.Logger)
	}
	if c.TTL == 0 {
		c.TTL = store.DefaultTTL
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.DecodedEntries <= 0 {
		c.DecodedEntries = DefaultDecodedEntries
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = DefaultCleanupInterval
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	return nil
}

// Server is the HTTP API. It is an [http.Handler].
type Server struct {
	cfg     Config
	router  chi.Router
	decoded *lru.Cache[string, *decoded]
}

// decoded is a parsed stored lattice, its content hash and its store
// metadata without the document bytes.
type decoded struct {
	doc   *pathio.Document
	hash  string
	entry store.Entry
}

// New builds a server and its routes.
func New(cfg Config) (*Server, error) {
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	d, err := lru.New[string, *decoded](cfg.DecodedEntries)
	if err != nil {
		return nil, fmt.Errorf("create decoded lattice cache: %w", err)
	}
	s := &Server{cfg: cfg, decoded: d}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))

	r.Get("/healthz", s.handleHealth)
	if s.cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1/lattices", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Get("/topk", s.handleTopK)
			r.Get("/has", s.handleHas)
			r.Get("/render", s.handleRender)
		})
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully. Expired lattices are purged every CleanupInterval.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go s.cleanupLoop(ctx)

	errc := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.cfg.Logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) cleanupLoop(ctx context.Context) {
	t := time.NewTicker(s.cfg.CleanupInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := s.cfg.Store.Cleanup(ctx); err != nil {
				s.cfg.Logger.Warn("store cleanup failed", "error", err)
			}
		}
	}
}
