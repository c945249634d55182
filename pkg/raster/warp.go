package raster

import (
	"image"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/matzehuels/augment/pkg/geom"
)

// ExtentOf returns the pixel size of img.
func ExtentOf(img image.Image) geom.Extent {
	b := img.Bounds()
	return geom.Extent{W: b.Dx(), H: b.Dy()}
}

// Warp resamples src through m into a new image of extent dst using bilinear
// interpolation. m maps source pixel indices, counted from the top-left of
// src, to destination pixel indices. Destination pixels with no source behind
// them stay transparent black.
func Warp(src image.Image, m geom.Affine, dst geom.Extent) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, dst.W, dst.H))
	if !dst.Valid() {
		return out
	}
	sb := src.Bounds()
	s2d := geom.Translation(-float64(sb.Min.X)-0.5, -float64(sb.Min.Y)-0.5).
		Then(m).
		Then(geom.Translation(0.5, 0.5))

	xdraw.BiLinear.Transform(out, toAff3(s2d), src, sb, xdraw.Src, nil)
	return out
}

func toAff3(m geom.Affine) f64.Aff3 {
	return f64.Aff3(m.Array())
}

// Resize scales src to exactly dst using a linear filter.
func Resize(src image.Image, dst geom.Extent) *image.NRGBA {
	if ExtentOf(src) == dst {
		return imaging.Clone(src)
	}
	return imaging.Resize(src, dst.W, dst.H, imaging.Linear)
}

// Crop copies the pixels of rect, given relative to the top-left of src.
// The part of rect outside src is dropped.
func Crop(src image.Image, rect image.Rectangle) *image.NRGBA {
	return imaging.Crop(src, rect.Add(src.Bounds().Min))
}
