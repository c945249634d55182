package boxtf

import (
	"math"

	"github.com/matzehuels/augment/pkg/errors"
	"github.com/matzehuels/augment/pkg/geom"
)

// Rotate turns the image by degrees about its center; positive angles are
// counter-clockwise as displayed.
//
// With keepResolution the extent is unchanged and corners rotated past the
// frame are cut off. Otherwise the canvas grows to
// (floor(H·|sin|+W·|cos|), floor(H·|cos|+W·|sin|)) and the map is shifted so
// the rotated content is centered in it.
func Rotate(src geom.Extent, degrees float64, keepResolution bool, box geom.OptBox) (Result, error) {
	if err := src.Validate(); err != nil {
		return Result{}, err
	}
	if !finite(degrees) {
		return Result{}, errors.New(errors.ErrCodeInvalidInput, "angle must be finite, got %v", degrees)
	}
	if err := checkBox(box); err != nil {
		return Result{}, err
	}

	w, h := float64(src.W), float64(src.H)
	m := geom.Rotation(geom.Point{X: w / 2, Y: h / 2}, degrees)
	ext := src
	if !keepResolution {
		cos, sin := math.Abs(m.A), math.Abs(m.B)
		ext = geom.Extent{
			W: int(math.Floor(h*sin + w*cos)),
			H: int(math.Floor(h*cos + w*sin)),
		}
		m.TX += float64(ext.W)/2 - w/2
		m.TY += float64(ext.H)/2 - h/2
	}

	res := Result{Extent: ext, Map: m}
	if b, ok := box.Get(); ok {
		res.Box = geom.Some(Normalize(m.ApplyBox(b), ext))
	}
	return res, nil
}
