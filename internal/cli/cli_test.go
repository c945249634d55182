package cli

import (
	"bytes"
	"context"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/augment/pkg/augment"
	"github.com/matzehuels/augment/pkg/boxtf"
	"github.com/matzehuels/augment/pkg/errors"
	"github.com/matzehuels/augment/pkg/geom"
	"github.com/matzehuels/augment/pkg/raster"
	"github.com/matzehuels/augment/pkg/store"
)

// isolate points the cache and record directories at a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	return dir
}

func writeImage(t *testing.T, path string, w, h int) {
	t.Helper()
	if err := raster.Save(path, imaging.New(w, h, color.NRGBA{R: 90, A: 255}), 0); err != nil {
		t.Fatal(err)
	}
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func buildFlags(t *testing.T, args ...string) (augment.Recipe, error) {
	t.Helper()
	var f opFlags
	cmd := &cobra.Command{Use: "test"}
	f.register(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatal(err)
	}
	return f.build(cmd)
}

func TestOpFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []augment.Op
	}{
		{
			name: "rotate keeps resolution",
			args: []string{"--rotate", "30"},
			want: []augment.Op{augment.Rotate{Angle: 30, KeepResolution: true}},
		},
		{
			name: "rotate expand",
			args: []string{"--rotate", "30", "--expand"},
			want: []augment.Op{augment.Rotate{Angle: 30}},
		},
		{
			name: "uniform scale",
			args: []string{"--scale", "2", "--keep-resolution"},
			want: []augment.Op{augment.Scale{FX: 2, FY: 2, KeepResolution: true}},
		},
		{
			name: "fixed order",
			args: []string{"--translate", "3,-4", "--shear", "0.2", "--shear-axis", "y", "--crop", "1,2,30,40", "--scale", "1.5,2"},
			want: []augment.Op{
				augment.Crop{X1: 1, Y1: 2, X2: 30, Y2: 40},
				augment.Scale{FX: 1.5, FY: 2},
				augment.Shear{Value: 0.2, Axis: boxtf.AxisY},
				augment.Translate{TX: 3, TY: -4},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recipe, err := buildFlags(t, tt.args...)
			if err != nil {
				t.Fatal(err)
			}
			ops, err := recipe.Ops()
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, ops); diff != "" {
				t.Errorf("ops mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOpFlagsErrors(t *testing.T) {
	recipePath := filepath.Join(t.TempDir(), "r.toml")
	if err := os.WriteFile(recipePath, []byte("[[steps]]\nop = \"rotate\"\nangle = 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"nothing", nil, errors.ErrCodeInvalidInput},
		{"recipe and flag", []string{"--recipe", recipePath, "--rotate", "5"}, errors.ErrCodeInvalidInput},
		{"short crop", []string{"--crop", "1,2,3"}, errors.ErrCodeInvalidInput},
		{"bad axis", []string{"--shear", "0.1", "--shear-axis", "z"}, errors.ErrCodeInvalidAxis},
		{"bad scale", []string{"--scale", "big"}, errors.ErrCodeInvalidScale},
		{"missing recipe", []string{"--recipe", recipePath + ".missing"}, errors.ErrCodeFileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildFlags(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}

	recipe, err := buildFlags(t, "--recipe", recipePath)
	if err != nil {
		t.Fatal(err)
	}
	if len(recipe.Steps) != 1 || recipe.Steps[0].Op != "rotate" {
		t.Errorf("recipe = %+v", recipe)
	}
}

func TestParseBox(t *testing.T) {
	b, err := parseBox("1, 2,30,40.5")
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := b.Get(); got != geom.NewBox(1, 2, 30, 40.5) {
		t.Errorf("box = %v", b)
	}
	if b, err := parseBox(""); err != nil || b.Present() {
		t.Errorf("empty = %v, %v", b, err)
	}
	for _, bad := range []string{"1,2,3", "a,b,c,d", "5,5,1,1"} {
		if _, err := parseBox(bad); err == nil {
			t.Errorf("parseBox(%q) should fail", bad)
		}
	}
}

func TestParseSize(t *testing.T) {
	e, err := parseSize("640X480")
	if err != nil {
		t.Fatal(err)
	}
	if e != (geom.Extent{W: 640, H: 480}) {
		t.Errorf("size = %v", e)
	}
	for _, bad := range []string{"640", "0x10", "ax10", ""} {
		if _, err := parseSize(bad); !errors.Is(err, errors.ErrCodeInvalidExtent) {
			t.Errorf("parseSize(%q) err = %v", bad, err)
		}
	}
}

func TestDefaultOutput(t *testing.T) {
	tests := []struct {
		input, format, want string
	}{
		{"photos/cat.jpg", "", "photos/cat-aug.jpg"},
		{"cat.jpg", "png", "cat-aug.png"},
		{"cat.png", "jpg", "cat-aug.jpeg"},
	}
	for _, tt := range tests {
		got, err := defaultOutput(tt.input, tt.format)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("defaultOutput(%q, %q) = %q, want %q", tt.input, tt.format, got, tt.want)
		}
	}
}

func TestLoadSidecar(t *testing.T) {
	dir := t.TempDir()
	boxes, err := loadSidecar(dir)
	if err != nil || len(boxes) != 0 {
		t.Fatalf("missing sidecar: %v, %v", boxes, err)
	}

	data := "[boxes]\n\"cat.jpg\" = [10, 20, 110, 140.5]\n"
	if err := os.WriteFile(filepath.Join(dir, sidecarName), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	boxes, err = loadSidecar(dir)
	if err != nil {
		t.Fatal(err)
	}
	if b, ok := boxes["cat.jpg"].Get(); !ok || b != geom.NewBox(10, 20, 110, 140.5) {
		t.Errorf("cat.jpg = %v", boxes["cat.jpg"])
	}

	if err := os.WriteFile(filepath.Join(dir, sidecarName), []byte("[boxes]\n\"a.png\" = [1, 2]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadSidecar(dir); !errors.Is(err, errors.ErrCodeInvalidBox) {
		t.Errorf("short box err = %v", err)
	}
}

func TestListImages(t *testing.T) {
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "b.png"), 4, 4)
	writeImage(t, filepath.Join(dir, "a.jpg"), 4, 4)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	names, err := listImages(dir)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a.jpg", "b.png"}, names); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
	if _, err := listImages(filepath.Join(dir, "missing")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing dir err = %v", err)
	}
}

func TestApplyCommand(t *testing.T) {
	dir := isolate(t)
	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.png")
	writeImage(t, in, 40, 30)

	if err := run(t, "apply", in, "--box", "0,0,10,10", "--translate", "5,0", "-o", out); err != nil {
		t.Fatal(err)
	}
	img, _, err := raster.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	if raster.ExtentOf(img) != (geom.Extent{W: 40, H: 30}) {
		t.Errorf("output extent = %v", raster.ExtentOf(img))
	}

	st, err := newRecordStore()
	if err != nil {
		t.Fatal(err)
	}
	records, err := st.List(context.Background(), store.ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if b, ok := records[0].Box.Get(); !ok || b != geom.NewBox(5, 0, 15, 10) {
		t.Errorf("record box = %v", records[0].Box)
	}

	if err := run(t, "records", "show", records[0].ID); err != nil {
		t.Errorf("records show: %v", err)
	}
	if err := run(t, "records", "list"); err != nil {
		t.Errorf("records list: %v", err)
	}
	if err := run(t, "records", "show", "nope"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("records show nope: %v", err)
	}
}

func TestApplyCommandErrors(t *testing.T) {
	dir := isolate(t)
	in := filepath.Join(dir, "in.png")
	writeImage(t, in, 20, 20)

	if err := run(t, "apply", in, "--crop", "0,0,50,10", "--no-record"); !errors.Is(err, errors.ErrCodeInvalidCrop) {
		t.Errorf("crop outside image: %v", err)
	}
	if err := run(t, "apply", filepath.Join(dir, "missing.png"), "--rotate", "5"); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing input: %v", err)
	}
}

func TestBoxCommand(t *testing.T) {
	isolate(t)
	if err := run(t, "box", "--size", "100x100", "--box", "10,10,20,20", "--rotate", "90"); err != nil {
		t.Fatal(err)
	}
	if err := run(t, "box", "--box", "10,10,20,20", "--rotate", "90"); err == nil {
		t.Error("missing --size should fail")
	}
}

func TestBatchCommand(t *testing.T) {
	dir := isolate(t)
	src := filepath.Join(dir, "images")
	if err := os.Mkdir(src, 0o755); err != nil {
		t.Fatal(err)
	}
	writeImage(t, filepath.Join(src, "a.png"), 30, 30)
	writeImage(t, filepath.Join(src, "b.png"), 20, 40)
	sidecar := "[boxes]\n\"a.png\" = [1, 1, 10, 10]\n"
	if err := os.WriteFile(filepath.Join(src, sidecarName), []byte(sidecar), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "out")
	if err := run(t, "batch", src, "--translate", "2,2", "-o", out, "-j", "2", "-f", "jpeg"); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a.jpeg", "b.jpeg"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}

	st, err := newRecordStore()
	if err != nil {
		t.Fatal(err)
	}
	records, err := st.List(context.Background(), store.ListOptions{Source: filepath.Join(src, "a.png")})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("records for a.png = %d", len(records))
	}
	if b, ok := records[0].Box.Get(); !ok || b != geom.NewBox(3, 3, 12, 12) {
		t.Errorf("a.png box = %v", records[0].Box)
	}
}

func TestCacheCommands(t *testing.T) {
	dir := isolate(t)
	in := filepath.Join(dir, "in.png")
	writeImage(t, in, 10, 10)
	if err := run(t, "apply", in, "--rotate", "3", "--no-record"); err != nil {
		t.Fatal(err)
	}
	cache, _ := cacheDir()
	if _, err := os.Stat(cache); err != nil {
		t.Fatalf("cache dir not created: %v", err)
	}
	if err := run(t, "cache", "clear"); err != nil {
		t.Fatal(err)
	}
	if err := run(t, "cache", "path"); err != nil {
		t.Fatal(err)
	}
}

func TestLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "augment.log")
	var console bytes.Buffer
	c := New(&console, LogInfo)
	c.SetLogFile(path)
	c.Logger.Info("written twice")
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "written twice") {
		t.Errorf("log file = %q", data)
	}
	if !strings.Contains(console.String(), "written twice") {
		t.Errorf("console = %q", console.String())
	}
}

func TestTraceTable(t *testing.T) {
	tr, err := augment.Chain(geom.Extent{W: 100, H: 100}, geom.Some(geom.NewBox(10, 10, 20, 20)),
		augment.Translate{TX: 500})
	if err != nil {
		t.Fatal(err)
	}
	out := traceTable(tr)
	for _, want := range []string{"source", "translate", "100x100", "lost"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}
