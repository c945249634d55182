package boxtf

import (
	"fmt"
	"image"
	"math"

	"github.com/matzehuels/augment/pkg/errors"
	"github.com/matzehuels/augment/pkg/geom"
)

// Scale resizes the image by fx horizontally and fy vertically, giving an
// extent of (round(W·fx), round(H·fy)). Box coordinates are multiplied by the
// same factors.
//
// Without keepResolution a box inside the source frame is scaled exactly,
// even when it touches the far edge. A box reaching past the frame is
// normalized against the scaled extent.
//
// keepResolution center-crops the scaled image back to the source extent; it
// only makes sense when both factors are >= 1. Otherwise the flag is dropped
// and a [WarnKeepResolutionDisabled] warning is attached to the result. When
// active, the box follows the same rules as [Crop].
func Scale(src geom.Extent, fx, fy float64, keepResolution bool, box geom.OptBox) (Result, error) {
	if err := src.Validate(); err != nil {
		return Result{}, err
	}
	if !finite(fx, fy) || fx <= 0 || fy <= 0 {
		return Result{}, errors.New(errors.ErrCodeInvalidScale,
			"scale factors must be positive, got fx=%v fy=%v", fx, fy)
	}
	scaled := ScaledExtent(src, fx, fy)
	if !scaled.Valid() {
		return Result{}, errors.New(errors.ErrCodeInvalidScale,
			"scaling %v by (%v, %v) leaves no pixels", src, fx, fy)
	}
	if err := checkBox(box); err != nil {
		return Result{}, err
	}

	var res Result
	if keepResolution && (fx < 1 || fy < 1) {
		keepResolution = false
		res.Warnings = append(res.Warnings, Warning{
			Code: WarnKeepResolutionDisabled,
			Message: fmt.Sprintf("keep_resolution requires fx, fy >= 1 (got %v, %v); "+
				"returning the scaled image at %v", fx, fy, scaled),
		})
	}

	res.Extent = scaled
	res.Map = geom.Scaling(fx, fy)
	if !keepResolution {
		if b, ok := box.Get(); ok {
			res.Box = geom.Some(scaleBox(b, fx, fy, src, scaled))
		}
		return res, nil
	}

	win := CenterWindow(scaled, src)
	res.Extent = src
	res.Map = res.Map.Then(geom.Translation(-float64(win.Min.X), -float64(win.Min.Y)))
	if b, ok := box.Get(); ok {
		res.Box = geom.Some(cropBox(b.Scale(fx, fy), win))
	}
	return res, nil
}

func scaleBox(b geom.Box, fx, fy float64, src, scaled geom.Extent) geom.Box {
	if within(b, src) {
		return b.Scale(fx, fy)
	}
	return Normalize(b.Scale(fx, fy), scaled)
}

// ScaledExtent returns (round(W·fx), round(H·fy)), rounding halves away
// from zero.
func ScaledExtent(src geom.Extent, fx, fy float64) geom.Extent {
	return geom.Extent{
		W: int(math.Round(float64(src.W) * fx)),
		H: int(math.Round(float64(src.H) * fy)),
	}
}

// CenterWindow returns the window of size inner centered inside outer, with
// the offset rounded down.
func CenterWindow(outer, inner geom.Extent) image.Rectangle {
	x := (outer.W - inner.W) / 2
	y := (outer.H - inner.H) / 2
	return image.Rect(x, y, x+inner.W, y+inner.H)
}
