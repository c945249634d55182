package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/augment/pkg/augment"
	"github.com/matzehuels/augment/pkg/cache"
	"github.com/matzehuels/augment/pkg/errors"
	"github.com/matzehuels/augment/pkg/geom"
	"github.com/matzehuels/augment/pkg/observability"
	"github.com/matzehuels/augment/pkg/raster"
	"github.com/matzehuels/augment/pkg/store"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for its backends. Multiple goroutines can
// safely use the same Runner with different options.
type Runner struct {
	Cache cache.Cache
	Keyer cache.Keyer

	// Store receives a record for every successful run when non-nil.
	Store store.Store

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

// cachedArtifact is the cache payload of one run: the trace is needed to
// answer with boxes on a hit.
type cachedArtifact struct {
	Format string        `json:"format"`
	Trace  augment.Trace `json:"trace"`
	Data   []byte        `json:"data"`
}

// Execute runs the complete decode → transform → encode pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (res *Result, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnSampleStart(ctx, opts.Input)
	defer func() {
		warnings := 0
		if res != nil {
			warnings = len(res.Warnings)
		}
		hooks.OnSampleComplete(ctx, opts.Input, warnings, time.Since(start), err)
	}()

	imageHash, err := cache.HashFile(opts.Input)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "image not found: %s", opts.Input)
		}
		return nil, fmt.Errorf("hash input: %w", err)
	}
	cacheKey := r.Keyer.ArtifactKey(imageHash, opts.recipeHash, opts.ArtifactKeyOpts())

	res = &Result{
		Source:     opts.Input,
		Output:     opts.Output,
		Format:     opts.Format,
		RecipeHash: opts.recipeHash,
		Stats:      Stats{Steps: len(opts.ops)},
	}

	if cached, ok := r.lookup(ctx, cacheKey, "artifact", opts.Refresh); ok {
		res.Trace = cached.Trace
		res.Artifact = cached.Data
		res.CacheInfo.ArtifactHit = true
		opts.Logger.Debug("artifact from cache", "source", opts.Input)
	} else {
		if err := r.render(ctx, opts, res); err != nil {
			return nil, err
		}
		if data, err := json.Marshal(cachedArtifact{Format: opts.Format, Trace: res.Trace, Data: res.Artifact}); err == nil {
			r.store(ctx, cacheKey, "artifact", data, cache.TTLArtifact)
		}
	}

	res.Extent = res.Trace.Extent()
	res.Box = res.Trace.Box()
	res.Warnings = res.Trace.Warnings()
	for _, w := range res.Warnings {
		opts.Logger.Warn(w.Message, "code", w.Code, "source", opts.Input)
	}

	if opts.Output != "" {
		if err := writeFile(opts.Output, res.Artifact); err != nil {
			return nil, err
		}
	}

	if r.Store != nil {
		rec := &store.Record{
			Source:       opts.Input,
			Output:       opts.Output,
			Recipe:       opts.Recipe,
			RecipeHash:   opts.recipeHash,
			SourceExtent: res.Trace.Source,
			Extent:       res.Extent,
			SourceBox:    res.Trace.SourceBox,
			Box:          res.Box,
			Warnings:     res.Warnings,
		}
		if err := r.Store.Put(ctx, rec); err != nil {
			return nil, fmt.Errorf("store record: %w", err)
		}
		res.RecordID = rec.ID
	}

	opts.Logger.Info("augmented image",
		"source", opts.Input,
		"extent", res.Extent,
		"box", res.Box,
		"cached", res.CacheInfo.ArtifactHit,
		"duration", time.Since(start))

	return res, nil
}

// render decodes, transforms and encodes one sample into res.
func (r *Runner) render(ctx context.Context, opts Options, res *Result) error {
	decodeStart := time.Now()
	img, _, err := raster.Open(opts.Input)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	res.Stats.DecodeTime = time.Since(decodeStart)

	transformStart := time.Now()
	out, trace, err := r.transform(ctx, img, opts.Box, opts.ops)
	if err != nil {
		return fmt.Errorf("transform: %w", err)
	}
	res.Trace = trace
	res.Stats.TransformTime = time.Since(transformStart)

	encodeStart := time.Now()
	data, err := raster.EncodeBytes(out, opts.Format, opts.Quality)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	res.Artifact = data
	res.Stats.EncodeTime = time.Since(encodeStart)

	opts.Logger.Debug("rendered sample",
		"source", opts.Input,
		"steps", len(opts.ops),
		"decode", res.Stats.DecodeTime,
		"transform", res.Stats.TransformTime,
		"encode", res.Stats.EncodeTime)
	return nil
}

// transform applies ops one at a time so each step is observable.
func (r *Runner) transform(ctx context.Context, img image.Image, box geom.OptBox, ops []augment.Op) (image.Image, augment.Trace, error) {
	trace := augment.Trace{Source: raster.ExtentOf(img), SourceBox: box}
	cur := img
	for i, op := range ops {
		if err := ctx.Err(); err != nil {
			return nil, trace, err
		}
		stepStart := time.Now()
		next, t, err := augment.Apply(cur, box, op)
		observability.Pipeline().OnStepComplete(ctx, op.Kind(), time.Since(stepStart), err)
		if err != nil {
			return nil, trace, fmt.Errorf("step %d (%s): %w", i+1, op.Kind(), err)
		}
		trace.Steps = append(trace.Steps, t.Steps...)
		cur, box = next, t.Box()
	}
	return cur, trace, nil
}

// Augment applies recipe to an in-memory image. It fires the same hooks as
// Execute but neither caches nor persists anything.
func (r *Runner) Augment(ctx context.Context, source string, img image.Image, box geom.OptBox, recipe augment.Recipe) (out image.Image, trace augment.Trace, err error) {
	ops, err := recipe.Ops()
	if err != nil {
		return nil, augment.Trace{}, err
	}
	if b, ok := box.Get(); ok {
		if err := b.Validate(); err != nil {
			return nil, augment.Trace{}, err
		}
	}

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnSampleStart(ctx, source)
	defer func() {
		hooks.OnSampleComplete(ctx, source, len(trace.Warnings()), time.Since(start), err)
	}()

	out, trace, err = r.transform(ctx, img, box, ops)
	if err != nil {
		return nil, trace, err
	}
	for _, w := range trace.Warnings() {
		r.Logger.Warn(w.Message, "code", w.Code, "source", source)
	}
	return out, trace, nil
}

// Trace runs recipe on an extent and box without pixels, with caching.
func (r *Runner) Trace(ctx context.Context, src geom.Extent, box geom.OptBox, recipe augment.Recipe) (augment.Trace, bool, error) {
	if err := src.Validate(); err != nil {
		return augment.Trace{}, false, err
	}
	ops, err := recipe.Ops()
	if err != nil {
		return augment.Trace{}, false, err
	}
	hash, err := recipe.Hash()
	if err != nil {
		return augment.Trace{}, false, err
	}

	keyOpts := cache.TraceKeyOpts{Width: src.W, Height: src.H}
	if b, ok := box.Get(); ok {
		a := b.Array()
		keyOpts.Box = a[:]
	}
	cacheKey := r.Keyer.TraceKey(hash, keyOpts)

	if data, ok := r.get(ctx, cacheKey, "trace", false); ok {
		var t augment.Trace
		if err := json.Unmarshal(data, &t); err == nil {
			return t, true, nil
		}
	}

	t, err := augment.Chain(src, box, ops...)
	if err != nil {
		return augment.Trace{}, false, err
	}
	if data, err := json.Marshal(t); err == nil {
		r.store(ctx, cacheKey, "trace", data, cache.TTLTrace)
	}
	return t, false, nil
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	var firstErr error
	if r.Cache != nil {
		firstErr = r.Cache.Close()
	}
	if r.Store != nil {
		if err := r.Store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// lookup reads and decodes a cached artifact. Undecodable entries count as
// misses and are overwritten by the fresh render.
func (r *Runner) lookup(ctx context.Context, key, keyType string, refresh bool) (cachedArtifact, bool) {
	data, ok := r.get(ctx, key, keyType, refresh)
	if !ok {
		return cachedArtifact{}, false
	}
	var c cachedArtifact
	if err := json.Unmarshal(data, &c); err != nil || len(c.Data) == 0 {
		return cachedArtifact{}, false
	}
	return c, true
}

func (r *Runner) get(ctx context.Context, key, keyType string, refresh bool) ([]byte, bool) {
	if refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "error", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) store(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
