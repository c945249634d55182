// Package boxtf is the box transform engine: it recomputes an axis-aligned
// bounding box under the same geometric mapping that is applied to an image.
//
// # Operations
//
// There is one pure function per geometric operation:
//
//   - [Crop]: axis-aligned window, extent becomes the window size
//   - [Rotate]: rotation about the image center, optionally growing the canvas
//   - [Scale]: independent x/y factors, optionally center-cropped back
//   - [Shear]: shear along x or y, extent unchanged
//   - [Translate]: shift by (tx, ty), extent unchanged
//
// Each takes the source [geom.Extent], the operation parameters and a
// [geom.OptBox], and returns a [Result] holding the new extent, the
// source-to-destination [geom.Affine] map for the pixel layer, and the
// recomputed box. Calls share no state and may run in parallel.
//
// # Box Rules
//
// Rotation and shear turn a box into a quadrilateral, so all four corners are
// mapped and the new box is their axis-aligned bound. Every result box then
// passes through the same normalization:
//
//  1. If the box lies entirely on one out-of-frame side of either axis
//     (min and max both <= 0, or both >= the dimension), it becomes the sentinel.
//  2. Each coordinate is clamped into [0, dimension-1].
//  3. A box with zero width OR zero height becomes the sentinel (0,0,0,0).
//
// Crop (and re-centering scale) has one extra rule: a box that covers the whole
// crop window maps to (0, 0, newW, newH).
//
// # Errors
//
// Invalid arguments fail before any computation with a coded error from
// pkg/errors (INVALID_BOX, INVALID_CROP, INVALID_SCALE, INVALID_AXIS,
// INVALID_EXTENT, INVALID_INPUT). A box that collapses is not an error.
// Incompatible flags are reported as [Warning] values in the result.
package boxtf
