package pipeline

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/augment/pkg/augment"
	"github.com/matzehuels/augment/pkg/cache"
	"github.com/matzehuels/augment/pkg/errors"
	"github.com/matzehuels/augment/pkg/geom"
	"github.com/matzehuels/augment/pkg/observability"
	"github.com/matzehuels/augment/pkg/raster"
	"github.com/matzehuels/augment/pkg/store"
)

var optBox = cmp.AllowUnexported(geom.OptBox{})

// writeImage saves a w×h PNG to dir and returns its path.
func writeImage(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
	if err := raster.Save(path, img, 0); err != nil {
		t.Fatal(err)
	}
	return path
}

func shiftRecipe() augment.Recipe {
	return augment.NewRecipe("shift", augment.Translate{TX: 5, TY: 0})
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Input: "in.png", Recipe: shiftRecipe()}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Format != DefaultFormat {
		t.Errorf("Format = %q, want %q", opts.Format, DefaultFormat)
	}
	if opts.Quality != DefaultQuality {
		t.Errorf("Quality = %d, want %d", opts.Quality, DefaultQuality)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
	if opts.recipeHash == "" || len(opts.ops) != 1 {
		t.Errorf("recipe not resolved: hash=%q ops=%d", opts.recipeHash, len(opts.ops))
	}
}

func TestOptionsFormatFromOutput(t *testing.T) {
	tests := []struct {
		output, format, want string
	}{
		{"out.jpg", "", "jpeg"},
		{"out.PNG", "", "png"},
		{"out.png", "jpg", "jpeg"},
		{"", "tif", "tiff"},
	}
	for _, tt := range tests {
		opts := Options{Input: "in.png", Output: tt.output, Format: tt.format, Recipe: shiftRecipe()}
		if err := opts.ValidateAndSetDefaults(); err != nil {
			t.Fatalf("%q/%q: %v", tt.output, tt.format, err)
		}
		if opts.Format != tt.want {
			t.Errorf("output %q format %q: got %q, want %q", tt.output, tt.format, opts.Format, tt.want)
		}
	}
}

func TestOptionsInvalid(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no input", Options{Recipe: shiftRecipe()}, errors.ErrCodeInvalidInput},
		{"empty recipe", Options{Input: "in.png"}, errors.ErrCodeInvalidRecipe},
		{"bad output", Options{Input: "in.png", Output: "out.txt", Recipe: shiftRecipe()}, errors.ErrCodeInvalidPath},
		{"bad format", Options{Input: "in.png", Format: "webp", Recipe: shiftRecipe()}, errors.ErrCodeInvalidFormat},
		{"bad box", Options{Input: "in.png", Box: geom.Some(geom.NewBox(5, 5, 1, 1)), Recipe: shiftRecipe()}, errors.ErrCodeInvalidBox},
		{"bad quality", Options{Input: "in.png", Quality: 101, Recipe: shiftRecipe()}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Input: "in.png", Output: "out.jpg", Recipe: shiftRecipe()}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	first := opts.ArtifactKeyOpts()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first, opts.ArtifactKeyOpts()); diff != "" {
		t.Errorf("second call changed options (-first +second):\n%s", diff)
	}
	if first.Quality != DefaultQuality {
		t.Errorf("jpeg key should carry quality, got %d", first.Quality)
	}
}

func TestExecute(t *testing.T) {
	dir := t.TempDir()
	in := writeImage(t, dir, "in.png", 40, 30)
	out := filepath.Join(dir, "out", "shifted.png")

	fc, err := cache.NewFileCache(filepath.Join(dir, "cache"))
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	opts := Options{
		Input:  in,
		Output: out,
		Recipe: shiftRecipe(),
		Box:    geom.Some(geom.NewBox(0, 0, 10, 10)),
	}

	res, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.ArtifactHit {
		t.Error("first run should miss the cache")
	}
	if res.Extent != (geom.Extent{W: 40, H: 30}) {
		t.Errorf("Extent = %v", res.Extent)
	}
	if b, ok := res.Box.Get(); !ok || b != geom.NewBox(5, 0, 15, 10) {
		t.Errorf("Box = %v, want [5 0 15 10]", res.Box)
	}
	if len(res.Trace.Steps) != 1 || res.Stats.Steps != 1 {
		t.Errorf("steps = %d/%d, want 1", len(res.Trace.Steps), res.Stats.Steps)
	}

	img, format, err := raster.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	if format != "png" || raster.ExtentOf(img) != res.Extent {
		t.Errorf("output %s %v", format, raster.ExtentOf(img))
	}

	again, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheInfo.ArtifactHit {
		t.Error("second run should hit the cache")
	}
	if diff := cmp.Diff(res.Box, again.Box, optBox); diff != "" {
		t.Errorf("cached box differs (-fresh +cached):\n%s", diff)
	}
	if string(again.Artifact) != string(res.Artifact) {
		t.Error("cached artifact differs from rendered artifact")
	}

	opts.Refresh = true
	fresh, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.CacheInfo.ArtifactHit {
		t.Error("refresh should bypass the cache")
	}
}

func TestExecuteMissingInput(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{
		Input:  filepath.Join(t.TempDir(), "missing.png"),
		Recipe: shiftRecipe(),
	})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestExecuteInvalidStep(t *testing.T) {
	dir := t.TempDir()
	in := writeImage(t, dir, "in.png", 20, 20)
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{
		Input:  in,
		Recipe: augment.NewRecipe("", augment.Crop{X1: 0, Y1: 0, X2: 50, Y2: 10}),
	})
	if !errors.Is(err, errors.ErrCodeInvalidCrop) {
		t.Errorf("err = %v, want INVALID_CROP", err)
	}
}

func TestExecuteStoresRecord(t *testing.T) {
	dir := t.TempDir()
	in := writeImage(t, dir, "in.png", 40, 30)

	r := NewRunner(nil, nil, nil)
	r.Store = store.NewMemoryStore()
	res, err := r.Execute(context.Background(), Options{
		Input:  in,
		Recipe: shiftRecipe(),
		Box:    geom.Some(geom.NewBox(0, 0, 10, 10)),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.RecordID == "" {
		t.Fatal("expected a record id")
	}
	rec, err := r.Store.Get(context.Background(), res.RecordID)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Source != in || rec.RecipeHash != res.RecipeHash {
		t.Errorf("record = %+v", rec)
	}
	if diff := cmp.Diff(res.Box, rec.Box, optBox); diff != "" {
		t.Errorf("record box (-result +record):\n%s", diff)
	}
	if rec.SourceExtent != (geom.Extent{W: 40, H: 30}) {
		t.Errorf("SourceExtent = %v", rec.SourceExtent)
	}
}

func TestExecuteWarnings(t *testing.T) {
	dir := t.TempDir()
	in := writeImage(t, dir, "in.png", 40, 40)
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{
		Input:  in,
		Recipe: augment.NewRecipe("", augment.Scale{FX: 0.5, FY: 0.5, KeepResolution: true}),
		Box:    geom.Some(geom.NewBox(4, 4, 20, 20)),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("warnings = %v, want one", res.Warnings)
	}
	if res.Extent != (geom.Extent{W: 20, H: 20}) {
		t.Errorf("Extent = %v, want 20x20", res.Extent)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu      sync.Mutex
	steps   []string
	samples int
}

func (h *recordingHooks) OnStepComplete(_ context.Context, op string, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.steps = append(h.steps, op)
}

func (h *recordingHooks) OnSampleComplete(context.Context, string, int, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.samples++
}

func TestExecuteHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	dir := t.TempDir()
	in := writeImage(t, dir, "in.png", 30, 30)
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{
		Input: in,
		Recipe: augment.NewRecipe("",
			augment.Rotate{Angle: 10, KeepResolution: true},
			augment.Shear{Value: 0.2, Axis: 0},
		),
	})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"rotate", "shear"}, hooks.steps); diff != "" {
		t.Errorf("steps (-want +got):\n%s", diff)
	}
	if hooks.samples != 1 {
		t.Errorf("samples = %d, want 1", hooks.samples)
	}
}

func TestExecuteBatch(t *testing.T) {
	dir := t.TempDir()
	var batch []Options
	for i := range 5 {
		in := writeImage(t, dir, fmt.Sprintf("img%d.png", i), 20+i, 20)
		batch = append(batch, Options{Input: in, Recipe: shiftRecipe()})
	}

	r := NewRunner(nil, nil, nil)
	results, err := r.ExecuteBatch(context.Background(), batch, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(batch) {
		t.Fatalf("results = %d, want %d", len(results), len(batch))
	}
	for i, res := range results {
		if res.Source != batch[i].Input {
			t.Errorf("result %d source = %s, want %s", i, res.Source, batch[i].Input)
		}
		if res.Extent.W != 20+i {
			t.Errorf("result %d width = %d, want %d", i, res.Extent.W, 20+i)
		}
	}
}

func TestExecuteBatchError(t *testing.T) {
	dir := t.TempDir()
	good := writeImage(t, dir, "good.png", 20, 20)
	missing := filepath.Join(dir, "missing.png")

	r := NewRunner(nil, nil, nil)
	_, err := r.ExecuteBatch(context.Background(), []Options{
		{Input: good, Recipe: shiftRecipe()},
		{Input: missing, Recipe: shiftRecipe()},
	}, 1)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Fatalf("err = %v, want FILE_NOT_FOUND", err)
	}
	if _, statErr := os.Stat(missing); !os.IsNotExist(statErr) {
		t.Error("missing input should not be created")
	}
}

func TestTrace(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	src := geom.Extent{W: 100, H: 100}
	box := geom.Some(geom.NewBox(10, 10, 20, 20))

	tr, hit, err := r.Trace(context.Background(), src, box, shiftRecipe())
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("first trace should miss")
	}
	if b, ok := tr.Box().Get(); !ok || b != geom.NewBox(15, 10, 25, 20) {
		t.Errorf("Box = %v", tr.Box())
	}

	cached, hit, err := r.Trace(context.Background(), src, box, shiftRecipe())
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Error("second trace should hit")
	}
	if diff := cmp.Diff(tr, cached, optBox); diff != "" {
		t.Errorf("cached trace (-fresh +cached):\n%s", diff)
	}
}

func TestTraceInvalidExtent(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, _, err := r.Trace(context.Background(), geom.Extent{W: 0, H: 10}, geom.None, shiftRecipe())
	if !errors.Is(err, errors.ErrCodeInvalidExtent) {
		t.Errorf("err = %v, want INVALID_EXTENT", err)
	}
}

func TestAugment(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	r := NewRunner(nil, nil, nil)
	img := imaging.New(50, 40, color.NRGBA{B: 255, A: 255})
	out, tr, err := r.Augment(context.Background(), "mem", img, geom.Some(geom.NewBox(0, 0, 10, 10)),
		augment.NewRecipe("", augment.Crop{X1: 5, Y1: 5, X2: 45, Y2: 35}))
	if err != nil {
		t.Fatal(err)
	}
	if raster.ExtentOf(out) != (geom.Extent{W: 40, H: 30}) {
		t.Errorf("extent = %v", raster.ExtentOf(out))
	}
	if b, ok := tr.Box().Get(); !ok || b != geom.NewBox(0, 0, 5, 5) {
		t.Errorf("box = %v", tr.Box())
	}
	if hooks.samples != 1 || len(hooks.steps) != 1 {
		t.Errorf("hooks: samples=%d steps=%v", hooks.samples, hooks.steps)
	}
	if raster.ExtentOf(img) != (geom.Extent{W: 50, H: 40}) {
		t.Error("source image was modified")
	}
}
