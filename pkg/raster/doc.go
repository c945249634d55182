// Package raster moves pixels for the box transforms in [boxtf].
//
// Every geometric operation in this module is planned by [boxtf] as an extent
// plus an affine map from source to destination pixels. This package executes
// those plans on real images:
//
//   - [Warp] resamples through an arbitrary affine map (rotate, shear, translate)
//   - [Resize] and [Crop] cover the axis-aligned cases (scale, crop)
//   - [Decode], [Open], [Encode] and [Save] handle png, jpeg, gif, bmp and tiff
//
// Pixel indices follow the usual raster convention: pixel (i, j) is the unit
// square whose center is (i+0.5, j+0.5) in continuous coordinates. Maps built
// by [geom] address pixel indices, so [Warp] shifts them by half a pixel
// before handing them to the resampler.
//
// No function modifies its source; each returns a freshly allocated
// [image.NRGBA].
//
// [boxtf]: github.com/matzehuels/augment/pkg/boxtf
// [geom]: github.com/matzehuels/augment/pkg/geom
package raster
