// Package geom defines the coordinate types shared by the augmentation engine.
//
// Coordinates follow image conventions: the origin is the top-left pixel, x grows
// to the right and y grows downward.
//
// # Core Types
//
//   - [Extent]: image size in pixels (width, height)
//   - [Point]: a real-valued pixel coordinate
//   - [Box]: an axis-aligned bounding box (x_min, y_min, x_max, y_max)
//   - [OptBox]: an explicitly optional box, used wherever a transform may run
//     with or without an annotation attached
//   - [Affine]: a 2×3 affine map applied to points and boxes
//
// # The Sentinel Box
//
// The zero [Box] is the canonical "object no longer visible" value (0,0,0,0).
// Transforms return it whenever a box collapses to zero width or height, or
// leaves the frame entirely. Use [Box.IsSentinel] to test for it.
//
// All types are small values; nothing in this package holds shared state.
package geom
