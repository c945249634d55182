// Package pipeline runs augmentation recipes over image files.
//
// This package implements the decode → transform → encode pipeline shared by
// the CLI and the API server. By centralizing it here, every entry point uses
// the same defaults, the same cache keys and the same record format.
//
// # Architecture
//
// One sample flows through three stages:
//
//  1. Decode: read the source image and resolve its extent
//  2. Transform: apply each recipe operation to pixels and box together
//  3. Encode: write the result in the requested format
//
// Encoded artifacts are cached under a key derived from the image content,
// the recipe hash and the render parameters, so re-running a recipe over an
// unchanged dataset only copies bytes.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:  "cat.jpg",
//	    Output: "cat-rot.png",
//	    Recipe: augment.NewRecipe("rot", augment.Rotate{Angle: 30}),
//	    Box:    geom.Some(geom.NewBox(10, 20, 110, 140)),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Box)
//
// Box-only traces skip pixels entirely:
//
//	trace, err := runner.Trace(ctx, extent, box, recipe)
package pipeline

import (
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/augment/pkg/augment"
	"github.com/matzehuels/augment/pkg/boxtf"
	"github.com/matzehuels/augment/pkg/cache"
	"github.com/matzehuels/augment/pkg/errors"
	"github.com/matzehuels/augment/pkg/geom"
	"github.com/matzehuels/augment/pkg/raster"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultFormat is the output encoding when neither Format nor an
	// output file extension selects one.
	DefaultFormat = "png"

	// DefaultQuality is the JPEG quality used for jpeg outputs.
	DefaultQuality = raster.DefaultQuality
)

// DefaultConcurrency is the number of samples ExecuteBatch processes at once
// when no limit is given.
func DefaultConcurrency() int {
	return runtime.NumCPU()
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures one sample run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Input is the source image path.
	Input string `json:"input"`

	// Output is where the encoded result is written. Empty keeps the
	// artifact in memory only.
	Output string `json:"output,omitempty"`

	Recipe augment.Recipe `json:"recipe"`
	Box    geom.OptBox    `json:"box"`

	// Format defaults to the output extension, then to DefaultFormat.
	Format  string `json:"format,omitempty"`
	Quality int    `json:"quality,omitempty"`

	// Refresh bypasses the artifact cache read; the result is still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	ops        []augment.Op
	recipeHash string

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Source string
	Output string

	// Extent and Box describe the transformed sample.
	Extent geom.Extent
	Box    geom.OptBox

	// Trace holds the per-operation extents and boxes.
	Trace augment.Trace

	// Artifact is the encoded output image.
	Artifact []byte
	Format   string

	// RecipeHash identifies the recipe in cache keys and records.
	RecipeHash string

	Warnings []boxtf.Warning

	// RecordID is set when the runner persisted a record.
	RecordID string

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Steps         int
	DecodeTime    time.Duration
	TransformTime time.Duration
	EncodeTime    time.Duration
}

// CacheInfo tracks cache hits for a run.
type CacheInfo struct {
	ArtifactHit bool // Whether the encoded artifact came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Input == "" {
		return errors.New(errors.ErrCodeInvalidInput, "input is required")
	}
	if o.Output != "" {
		if err := errors.ValidateImagePath(o.Output); err != nil {
			return err
		}
	}
	if b, ok := o.Box.Get(); ok {
		if err := b.Validate(); err != nil {
			return err
		}
	}

	ops, err := o.Recipe.Ops()
	if err != nil {
		return err
	}
	hash, err := o.Recipe.Hash()
	if err != nil {
		return err
	}
	o.ops, o.recipeHash = ops, hash

	if err := o.setFormat(); err != nil {
		return err
	}
	if o.Quality == 0 {
		o.Quality = DefaultQuality
	}
	if o.Quality < 1 || o.Quality > 100 {
		return errors.New(errors.ErrCodeInvalidInput, "quality must be in 1..100, got %d", o.Quality)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

func (o *Options) setFormat() error {
	name := o.Format
	if name == "" && o.Output != "" {
		f, err := raster.FormatFromPath(o.Output)
		if err != nil {
			return err
		}
		name = f
	}
	if name == "" {
		name = DefaultFormat
	}
	f, err := raster.FormatOf(name)
	if err != nil {
		return err
	}
	o.Format = f
	return nil
}

// ArtifactKeyOpts returns cache key options for the encoded artifact.
func (o *Options) ArtifactKeyOpts() cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: o.Format}
	if b, ok := o.Box.Get(); ok {
		a := b.Array()
		opts.Box = a[:]
	}
	if o.Format == "jpeg" {
		opts.Quality = o.Quality
	}
	return opts
}
