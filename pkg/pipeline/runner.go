package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pathlattice/pkg/cache"
	"github.com/matzehuels/pathlattice/pkg/hmm"
	pathio "github.com/matzehuels/pathlattice/pkg/io"
	"github.com/matzehuels/pathlattice/pkg/observability"
	"github.com/matzehuels/pathlattice/pkg/seqgraph"
)

// Cache key types reported to the cache hooks.
const (
	keyTypeLattice  = "lattice"
	keyTypeResult   = "result"
	keyTypeArtifact = "artifact"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete align → search → render pipeline with caching.
// The render stage runs only when opts.Formats is non-empty.
func (r *Runner) Execute(ctx context.Context, fees *hmm.Fees, g *seqgraph.Graph, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Align
	alignStart := time.Now()
	doc, hash, alignHit, err := r.AlignWithCacheInfo(ctx, fees, g, opts)
	if err != nil {
		return nil, fmt.Errorf("align: %w", err)
	}
	result.Document = doc
	result.LatticeHash = hash
	result.Stats.AlignTime = time.Since(alignStart)
	result.Stats.NodeCount = g.Len()
	result.Stats.EdgeCount = g.EdgeCount()
	result.Stats.LinkCount = doc.Paths.Len()
	result.CacheInfo.AlignHit = alignHit

	r.Logger.Info("aligned profile",
		"profile", fees.Name,
		"nodes", g.Len(),
		"links", doc.Paths.Len(),
		"cached", alignHit,
		"duration", result.Stats.AlignTime)

	// Stage 2: Search
	searchStart := time.Now()
	paths, searchHit, err := r.SearchWithCacheInfo(ctx, doc, hash, opts)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	result.Paths = paths
	result.Stats.SearchTime = time.Since(searchStart)
	result.CacheInfo.SearchHit = searchHit

	r.Logger.Info("extracted paths",
		"k", opts.K,
		"found", len(paths),
		"cached", searchHit,
		"duration", result.Stats.SearchTime)

	// Stage 3: Render
	if len(opts.Formats) > 0 {
		renderStart := time.Now()
		artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, doc, hash, opts)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		result.Artifacts = artifacts
		result.Stats.RenderTime = time.Since(renderStart)
		result.CacheInfo.RenderHit = renderHit

		r.Logger.Info("rendered outputs",
			"formats", opts.Formats,
			"duration", result.Stats.RenderTime)
	}

	return result, nil
}

// AlignWithCacheInfo builds a lattice with caching. It returns the document,
// the content hash of its serialized form and whether it came from cache.
func (r *Runner) AlignWithCacheInfo(ctx context.Context, fees *hmm.Fees, g *seqgraph.Graph, opts Options) (*pathio.Document, string, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForAlign(); err != nil {
		return nil, "", false, err
	}

	// Compute cache key
	profileHash, err := cache.HashJSON(fees)
	if err != nil {
		return nil, "", false, fmt.Errorf("hash profile for cache key: %w", err)
	}
	graphHash, err := cache.HashJSON(g)
	if err != nil {
		return nil, "", false, fmt.Errorf("hash graph for cache key: %w", err)
	}
	cacheKey := r.Keyer.LatticeKey(profileHash, graphHash, opts.LatticeKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			doc, err := pathio.Unmarshal(data)
			if err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeLattice)
				return doc, cache.Hash(data), true, nil // Cache hit
			}
			r.Logger.Warn("discarding unreadable cached lattice", "key", cacheKey, "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeLattice)
	}

	// Align
	doc, err := Align(ctx, fees, g, opts)
	if err != nil {
		return nil, "", false, err
	}

	// Cache the result
	data, err := pathio.Marshal(*doc)
	if err != nil {
		return nil, "", false, fmt.Errorf("serialize lattice: %w", err)
	}
	if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLLattice); err == nil {
		observability.Cache().OnCacheSet(ctx, keyTypeLattice, len(data))
	} else {
		r.Logger.Debug("cache set failed", "key", cacheKey, "error", err)
	}

	return doc, cache.Hash(data), false, nil // Cache miss
}

// Align is a convenience wrapper that calls AlignWithCacheInfo and discards
// the hash and the cache hit info.
func (r *Runner) Align(ctx context.Context, fees *hmm.Fees, g *seqgraph.Graph, opts Options) (*pathio.Document, error) {
	doc, _, _, err := r.AlignWithCacheInfo(ctx, fees, g, opts)
	return doc, err
}

// SearchWithCacheInfo runs a top-K query with caching and returns cache hit
// info. latticeHash identifies doc; see [HashDocument]. An empty hash
// disables caching for the query.
func (r *Runner) SearchWithCacheInfo(ctx context.Context, doc *pathio.Document, latticeHash string, opts Options) ([]pathio.PathResult, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForSearch(); err != nil {
		return nil, false, err
	}

	cacheKey := ""
	if latticeHash != "" {
		cacheKey = r.Keyer.ResultKey(latticeHash, opts.ResultKeyOpts())
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached []pathio.PathResult
			if err := json.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeResult)
				return cached, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeResult)
	}

	paths, err := Search(ctx, doc, opts)
	if err != nil {
		return nil, false, err
	}

	if cacheKey != "" {
		if data, err := json.Marshal(paths); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLResults); err == nil {
				observability.Cache().OnCacheSet(ctx, keyTypeResult, len(data))
			}
		}
	}

	return paths, false, nil // Cache miss
}

// Search is a convenience wrapper that calls SearchWithCacheInfo and discards the cache hit info.
func (r *Runner) Search(ctx context.Context, doc *pathio.Document, latticeHash string, opts Options) ([]pathio.PathResult, error) {
	paths, _, err := r.SearchWithCacheInfo(ctx, doc, latticeHash, opts)
	return paths, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, doc *pathio.Document, latticeHash string, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	// Try to get all formats from cache
	if latticeHash != "" {
		artifacts := make(map[string][]byte)
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(latticeHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, cacheKey)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
			return artifacts, true, nil // All artifacts from cache
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)
	}

	// Render all formats
	rendered, err := Render(ctx, doc, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	if latticeHash != "" {
		for format, data := range rendered {
			cacheKey := r.Keyer.ArtifactKey(latticeHash, opts.ArtifactKeyOpts(format))
			if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
				observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
			}
		}
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, doc *pathio.Document, latticeHash string, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, doc, latticeHash, opts)
	return artifacts, err
}

// HashDocument returns the content hash used to key queries against doc.
func HashDocument(doc *pathio.Document) (string, error) {
	data, err := pathio.Marshal(*doc)
	if err != nil {
		return "", fmt.Errorf("serialize lattice: %w", err)
	}
	return cache.Hash(data), nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
