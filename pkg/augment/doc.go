// Package augment turns the box transforms of [boxtf] into composable
// operations that move pixels and boxes together.
//
// # Operations
//
// Each [Op] is a small value type ([Crop], [Rotate], [Scale], [Shear],
// [Translate]) that can plan its effect on an extent and box without touching
// pixels, and render that plan onto an image:
//
//	op := augment.Rotate{Angle: 30, KeepResolution: true}
//	plan, err := op.Plan(geom.Extent{W: 640, H: 480}, geom.Some(box))
//	out := op.Render(img, plan)
//
// # Recipes
//
// A [Recipe] is an ordered list of [Step] entries, usually read from TOML:
//
//	name = "tilt-and-crop"
//
//	[[steps]]
//	op = "rotate"
//	angle = 15
//
//	[[steps]]
//	op = "crop"
//	point1 = [20, 20]
//	point2 = [600, 440]
//
// [Chain] runs a sequence of operations on a box only; [Apply] runs it on an
// image and its box. Both feed each step's output box into the next step and
// record every intermediate state in a [Trace]. Once a box has left the frame
// it stays the sentinel for the rest of the sequence.
//
// [boxtf]: github.com/matzehuels/augment/pkg/boxtf
package augment
