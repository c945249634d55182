package boxtf

import (
	"image"

	"github.com/matzehuels/augment/pkg/errors"
	"github.com/matzehuels/augment/pkg/geom"
)

// Crop keeps the window from p1 (inclusive) to p2 (exclusive). The points
// must satisfy 0 <= p1.X < p2.X < src.W and 0 <= p1.Y < p2.Y < src.H.
//
// A box that covers the whole window becomes (0, 0, newW, newH). Any other box
// is shifted to the window origin and normalized, so a partly visible box is
// clipped to its visible part and one outside the window becomes the sentinel.
func Crop(src geom.Extent, p1, p2 image.Point, box geom.OptBox) (Result, error) {
	if err := src.Validate(); err != nil {
		return Result{}, err
	}
	if p1.X < 0 || p1.Y < 0 || p2.X >= src.W || p2.Y >= src.H {
		return Result{}, errors.New(errors.ErrCodeInvalidCrop,
			"crop points %v, %v must lie within the %v image", p1, p2, src)
	}
	if p2.X <= p1.X || p2.Y <= p1.Y {
		return Result{}, errors.New(errors.ErrCodeInvalidCrop,
			"point2 %v must be greater than point1 %v on both axes", p2, p1)
	}
	if err := checkBox(box); err != nil {
		return Result{}, err
	}

	win := image.Rectangle{Min: p1, Max: p2}
	res := Result{
		Extent: geom.Extent{W: win.Dx(), H: win.Dy()},
		Map:    geom.Translation(-float64(p1.X), -float64(p1.Y)),
	}
	if b, ok := box.Get(); ok {
		res.Box = geom.Some(cropBox(b, win))
	}
	return res, nil
}
