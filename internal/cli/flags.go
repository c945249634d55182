package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/augment/pkg/augment"
	"github.com/matzehuels/augment/pkg/boxtf"
	"github.com/matzehuels/augment/pkg/errors"
	"github.com/matzehuels/augment/pkg/geom"
)

// opFlags builds a recipe either from a TOML file or from per-operation
// flags. Flag operations run in a fixed order: crop, rotate, scale, shear,
// translate.
type opFlags struct {
	recipe string

	crop      string
	rotate    float64
	expand    bool
	scale     string
	keep      bool
	shear     float64
	shearAxis string
	translate string
}

var opFlagNames = []string{"crop", "rotate", "scale", "shear", "translate"}

func (f *opFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.recipe, "recipe", "r", "", "TOML recipe file (excludes the operation flags)")
	fl.StringVar(&f.crop, "crop", "", "crop window x1,y1,x2,y2")
	fl.Float64Var(&f.rotate, "rotate", 0, "rotate by degrees, counter-clockwise")
	fl.BoolVar(&f.expand, "expand", false, "grow the canvas to fit the rotated image instead of keeping its size")
	fl.StringVar(&f.scale, "scale", "", "scale factor f or fx,fy")
	fl.BoolVar(&f.keep, "keep-resolution", false, "center-crop an upscaled image back to its source size")
	fl.Float64Var(&f.shear, "shear", 0, "shear factor")
	fl.StringVar(&f.shearAxis, "shear-axis", "x", "shear axis: x or y")
	fl.StringVar(&f.translate, "translate", "", "shift by tx,ty pixels")
}

// build returns the recipe selected by the flags of cmd.
func (f *opFlags) build(cmd *cobra.Command) (augment.Recipe, error) {
	var changed []string
	for _, name := range opFlagNames {
		if cmd.Flags().Changed(name) {
			changed = append(changed, name)
		}
	}

	if f.recipe != "" {
		if len(changed) > 0 {
			return augment.Recipe{}, errors.New(errors.ErrCodeInvalidInput,
				"--recipe cannot be combined with --%s", strings.Join(changed, ", --"))
		}
		return augment.LoadRecipe(f.recipe)
	}
	if len(changed) == 0 {
		return augment.Recipe{}, errors.New(errors.ErrCodeInvalidInput,
			"no operations given: use --recipe or one of --%s", strings.Join(opFlagNames, ", --"))
	}

	var ops []augment.Op
	for _, name := range changed {
		op, err := f.op(name)
		if err != nil {
			return augment.Recipe{}, err
		}
		ops = append(ops, op)
	}
	return augment.NewRecipe("", ops...), nil
}

func (f *opFlags) op(name string) (augment.Op, error) {
	switch name {
	case "crop":
		v, err := parseInts(f.crop, 4, "--crop")
		if err != nil {
			return nil, err
		}
		return augment.Crop{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}, nil
	case "rotate":
		return augment.Rotate{Angle: f.rotate, KeepResolution: !f.expand}, nil
	case "scale":
		fx, fy, err := parseFactor(f.scale)
		if err != nil {
			return nil, err
		}
		return augment.Scale{FX: fx, FY: fy, KeepResolution: f.keep}, nil
	case "shear":
		axis, err := parseAxis(f.shearAxis)
		if err != nil {
			return nil, err
		}
		return augment.Shear{Value: f.shear, Axis: axis}, nil
	case "translate":
		v, err := parseFloats(f.translate, 2, "--translate")
		if err != nil {
			return nil, err
		}
		return augment.Translate{TX: v[0], TY: v[1]}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidOp, "unknown operation %q", name)
}

// =============================================================================
// Value Parsers
// =============================================================================

func parseFloats(s string, n int, what string) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s needs %d comma-separated numbers, got %q", what, n, s)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s: bad number %q", what, p)
		}
		out[i] = v
	}
	return out, nil
}

func parseInts(s string, n int, what string) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s needs %d comma-separated integers, got %q", what, n, s)
	}
	out := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s: bad integer %q", what, p)
		}
		out[i] = v
	}
	return out, nil
}

// parseBox parses "xmin,ymin,xmax,ymax"; an empty string means no box.
func parseBox(s string) (geom.OptBox, error) {
	if s == "" {
		return geom.None, nil
	}
	v, err := parseFloats(s, 4, "--box")
	if err != nil {
		return geom.None, err
	}
	b, err := geom.BoxFromSlice(v)
	if err != nil {
		return geom.None, err
	}
	if err := b.Validate(); err != nil {
		return geom.None, err
	}
	return geom.Some(b), nil
}

// parseSize parses "WIDTHxHEIGHT".
func parseSize(s string) (geom.Extent, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return geom.Extent{}, errors.New(errors.ErrCodeInvalidExtent, "size must look like 640x480, got %q", s)
	}
	wi, errW := strconv.Atoi(w)
	hi, errH := strconv.Atoi(h)
	if errW != nil || errH != nil {
		return geom.Extent{}, errors.New(errors.ErrCodeInvalidExtent, "size must look like 640x480, got %q", s)
	}
	e := geom.Extent{W: wi, H: hi}
	return e, e.Validate()
}

// parseFactor accepts "f" for a uniform scale or "fx,fy".
func parseFactor(s string) (float64, float64, error) {
	if !strings.Contains(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, 0, errors.Wrap(errors.ErrCodeInvalidScale, err, "--scale: bad number %q", s)
		}
		return v, v, nil
	}
	v, err := parseFloats(s, 2, "--scale")
	if err != nil {
		return 0, 0, err
	}
	return v[0], v[1], nil
}

func parseAxis(s string) (boxtf.Axis, error) {
	switch strings.ToLower(s) {
	case "x", "0":
		return boxtf.AxisX, nil
	case "y", "1":
		return boxtf.AxisY, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidAxis, "shear axis must be x or y, got %q", s)
}
