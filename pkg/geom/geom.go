package geom

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/matzehuels/augment/pkg/errors"
)

// =============================================================================
// Extent
// =============================================================================

// Extent is the size of an image in pixels.
type Extent struct {
	W int `json:"width" toml:"width" bson:"width"`
	H int `json:"height" toml:"height" bson:"height"`
}

// Valid reports whether both dimensions are positive.
func (e Extent) Valid() bool { return e.W > 0 && e.H > 0 }

// Validate returns an INVALID_EXTENT error unless e is valid.
func (e Extent) Validate() error {
	if !e.Valid() {
		return errors.New(errors.ErrCodeInvalidExtent, "extent must be positive, got %dx%d", e.W, e.H)
	}
	return nil
}

func (e Extent) String() string { return fmt.Sprintf("%dx%d", e.W, e.H) }

// =============================================================================
// Point
// =============================================================================

// Point is a pixel coordinate. Intermediate results of affine maps are not
// rounded, so both components are real-valued.
type Point struct {
	X, Y float64
}

// =============================================================================
// Box
// =============================================================================

// Box is an axis-aligned bounding box. Valid input boxes satisfy
// XMin < XMax and YMin < YMax; the zero value is the sentinel.
type Box struct {
	XMin float64 `json:"x_min" bson:"x_min"`
	YMin float64 `json:"y_min" bson:"y_min"`
	XMax float64 `json:"x_max" bson:"x_max"`
	YMax float64 `json:"y_max" bson:"y_max"`
}

// Sentinel is the canonical degenerate box (0,0,0,0).
var Sentinel = Box{}

// NewBox builds a box from its four coordinates.
func NewBox(xmin, ymin, xmax, ymax float64) Box {
	return Box{XMin: xmin, YMin: ymin, XMax: xmax, YMax: ymax}
}

// BoxFromSlice builds a box from exactly four numbers.
func BoxFromSlice(v []float64) (Box, error) {
	if len(v) != 4 {
		return Box{}, errors.New(errors.ErrCodeInvalidBox, "box must have four coordinates, got %d", len(v))
	}
	return NewBox(v[0], v[1], v[2], v[3]), nil
}

// Validate checks the input contract: finite coordinates, min < max on both axes.
func (b Box) Validate() error {
	for _, v := range b.Array() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeInvalidBox, "box coordinates must be finite: %v", b)
		}
	}
	if b.XMin >= b.XMax || b.YMin >= b.YMax {
		return errors.New(errors.ErrCodeInvalidBox,
			"top-left coordinates of box must be smaller than bottom-right: %v", b)
	}
	return nil
}

// IsSentinel reports whether b is exactly (0,0,0,0).
func (b Box) IsSentinel() bool { return b == Sentinel }

// Width returns XMax - XMin.
func (b Box) Width() float64 { return b.XMax - b.XMin }

// Height returns YMax - YMin.
func (b Box) Height() float64 { return b.YMax - b.YMin }

// Translate returns b shifted by (dx, dy).
func (b Box) Translate(dx, dy float64) Box {
	return Box{XMin: b.XMin + dx, YMin: b.YMin + dy, XMax: b.XMax + dx, YMax: b.YMax + dy}
}

// Scale returns b with x coordinates multiplied by fx and y coordinates by fy.
func (b Box) Scale(fx, fy float64) Box {
	return Box{XMin: b.XMin * fx, YMin: b.YMin * fy, XMax: b.XMax * fx, YMax: b.YMax * fy}
}

// Corners returns the four corners in the order
// top-left, bottom-left, bottom-right, top-right.
func (b Box) Corners() [4]Point {
	return [4]Point{
		{b.XMin, b.YMin},
		{b.XMin, b.YMax},
		{b.XMax, b.YMax},
		{b.XMax, b.YMin},
	}
}

// Array returns the coordinates as [x_min, y_min, x_max, y_max].
func (b Box) Array() [4]float64 { return [4]float64{b.XMin, b.YMin, b.XMax, b.YMax} }

func (b Box) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", b.XMin, b.YMin, b.XMax, b.YMax)
}

// Bound returns the smallest box containing every point.
// It returns the sentinel for an empty slice.
func Bound(pts ...Point) Box {
	if len(pts) == 0 {
		return Sentinel
	}
	out := Box{XMin: pts[0].X, YMin: pts[0].Y, XMax: pts[0].X, YMax: pts[0].Y}
	for _, p := range pts[1:] {
		out.XMin = math.Min(out.XMin, p.X)
		out.YMin = math.Min(out.YMin, p.Y)
		out.XMax = math.Max(out.XMax, p.X)
		out.YMax = math.Max(out.YMax, p.Y)
	}
	return out
}

// =============================================================================
// OptBox
// =============================================================================

// OptBox is a box that may be absent. Transforms called with [None] compute
// only the new extent and return None.
type OptBox struct {
	box Box
	ok  bool
}

// None is the absent box.
var None = OptBox{}

// Some wraps b as a present box.
func Some(b Box) OptBox { return OptBox{box: b, ok: true} }

// Get returns the box and whether it is present.
func (o OptBox) Get() (Box, bool) { return o.box, o.ok }

// Present reports whether a box is attached.
func (o OptBox) Present() bool { return o.ok }

// MustGet returns the box or panics when absent.
func (o OptBox) MustGet() Box {
	if !o.ok {
		panic("geom: MustGet on absent box")
	}
	return o.box
}

func (o OptBox) String() string {
	if !o.ok {
		return "none"
	}
	return o.box.String()
}

// MarshalJSON encodes a present box as [x_min, y_min, x_max, y_max] and an
// absent one as null.
func (o OptBox) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.box.Array())
}

// UnmarshalJSON accepts null or a four-element number array.
func (o *OptBox) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = None
		return nil
	}
	var v []float64
	if err := json.Unmarshal(data, &v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidBox, err, "decode box")
	}
	b, err := BoxFromSlice(v)
	if err != nil {
		return err
	}
	*o = Some(b)
	return nil
}
