// Package pipeline provides the align → search → render pipeline for
// pathlattice.
//
// This package implements the complete pipeline that the CLI and the HTTP
// server share. By centralizing this logic, both entry points cache, log and
// report hooks the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Align: Build the lattice of a profile against a sequence graph
//  2. Search: Extract the K best distinct paths from the lattice
//  3. Render: Draw the lattice (DOT, SVG) or serialize it (JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{K: 5}
//	result, err := runner.Execute(ctx, fees, g, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	best := result.Paths[0]
//
// Run individual stages:
//
//	doc, err := runner.Align(ctx, fees, g, opts)
//	paths, err := runner.Search(ctx, doc, hash, opts)
//	artifacts, err := runner.Render(ctx, doc, hash, opts)
package pipeline

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/pathlattice/pkg/align"
	"github.com/matzehuels/pathlattice/pkg/cache"
	"github.com/matzehuels/pathlattice/pkg/errors"
	pathio "github.com/matzehuels/pathlattice/pkg/io"
	"github.com/matzehuels/pathlattice/pkg/lattice"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultK is the number of paths returned when Options.K is zero.
const DefaultK = 10

// MaxK bounds Options.K so one request cannot drain the search queue.
const MaxK = 10000

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Align options
	Finishes []int `json:"finishes,omitempty"` // node IDs a path may end in
	Workers  int   `json:"workers,omitempty"`
	Refresh  bool  `json:"refresh,omitempty"`

	// Search options
	K        int      `json:"k,omitempty"`
	MinScore *float64 `json:"min_score,omitempty"` // nil means no cutoff

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`

	// Runtime options (not serialized)
	Logger  *log.Logger      `json:"-"`
	Metrics *lattice.Metrics `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the frozen lattice with its graph and profile.
	Document *pathio.Document

	// LatticeHash is the content hash of the serialized lattice.
	LatticeHash string

	// Paths are the extracted paths, best first.
	Paths []pathio.PathResult

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LinkCount  int
	AlignTime  time.Duration
	SearchTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	AlignHit  bool // Whether the lattice came from cache
	SearchHit bool // Whether the paths came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every stage's fields and applies defaults.
// Formats stay empty unless set: Execute renders only when asked to.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForAlign(); err != nil {
		return err
	}
	if err := o.ValidateForSearch(); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForAlign checks the alignment fields.
func (o *Options) ValidateForAlign() error {
	if o.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "workers must be non-negative, got %d", o.Workers)
	}
	for _, id := range o.Finishes {
		if id <= 0 {
			return errors.New(errors.ErrCodeInvalidInput, "finish node id must be positive, got %d", id)
		}
	}
	o.setLogger()
	return nil
}

// ValidateForSearch checks the search fields and applies defaults.
func (o *Options) ValidateForSearch() error {
	if o.K < 0 || o.K > MaxK {
		return errors.New(errors.ErrCodeInvalidInput, "k must be in [0, %d], got %d", MaxK, o.K)
	}
	if o.K == 0 {
		o.K = DefaultK
	}
	if o.MinScore != nil && math.IsNaN(*o.MinScore) {
		return errors.New(errors.ErrCodeInvalidInput, "min_score is NaN")
	}
	o.setLogger()
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// MinScoreValue returns the search cutoff, -Inf when none is set.
func (o *Options) MinScoreValue() float64 {
	if o.MinScore == nil {
		return math.Inf(-1)
	}
	return *o.MinScore
}

// AlignOptions returns the options passed to the aligner.
func (o *Options) AlignOptions() align.Options {
	return align.Options{
		Workers:  o.Workers,
		Finishes: o.Finishes,
		Metrics:  o.Metrics,
		Logger:   o.Logger,
	}
}

// SearchOptions returns the options passed to [lattice.PathSet.TopK].
func (o *Options) SearchOptions(m *lattice.Metrics) []lattice.Option {
	return []lattice.Option{
		lattice.WithMinScore(o.MinScoreValue()),
		lattice.WithMetrics(m),
		lattice.WithLogger(o.Logger),
	}
}

// LatticeKeyOpts returns cache key options for lattice construction.
func (o *Options) LatticeKeyOpts() cache.LatticeKeyOpts {
	return cache.LatticeKeyOpts{Finishes: o.Finishes}
}

// ResultKeyOpts returns cache key options for a top-K query.
func (o *Options) ResultKeyOpts() cache.ResultKeyOpts {
	return cache.ResultKeyOpts{K: o.K, MinScore: o.MinScoreValue()}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: format, Detailed: o.Detailed}
}

// String summarizes the options for logs.
func (o *Options) String() string {
	return fmt.Sprintf("k=%d min_score=%g finishes=%v formats=%v", o.K, o.MinScoreValue(), o.Finishes, o.Formats)
}
