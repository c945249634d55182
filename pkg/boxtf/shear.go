package boxtf

import (
	"github.com/matzehuels/augment/pkg/errors"
	"github.com/matzehuels/augment/pkg/geom"
)

// Shear skews the image by val along axis; the extent is unchanged. The map is
// [[1, val, 0], [0, 1, 0]] for AxisX and [[1, 0, 0], [val, 1, 0]] for AxisY.
//
// The box bounds on the sheared axis come from all four mapped corners; the
// bounds on the other axis are carried over.
func Shear(src geom.Extent, val float64, axis Axis, box geom.OptBox) (Result, error) {
	if err := src.Validate(); err != nil {
		return Result{}, err
	}
	if err := axis.Validate(); err != nil {
		return Result{}, err
	}
	if !finite(val) {
		return Result{}, errors.New(errors.ErrCodeInvalidInput, "shear value must be finite, got %v", val)
	}
	if err := checkBox(box); err != nil {
		return Result{}, err
	}

	m := geom.Shearing(val, axis == AxisY)
	res := Result{Extent: src, Map: m}
	if b, ok := box.Get(); ok {
		sheared := m.ApplyBox(b)
		out := b
		if axis == AxisX {
			out.XMin, out.XMax = sheared.XMin, sheared.XMax
		} else {
			out.YMin, out.YMax = sheared.YMin, sheared.YMax
		}
		res.Box = geom.Some(Normalize(out, src))
	}
	return res, nil
}
