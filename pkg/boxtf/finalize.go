package boxtf

import (
	"image"
	"math"

	"github.com/matzehuels/augment/pkg/geom"
)

// Normalize applies the rules every transformed box goes through: fully
// outside on either axis gives the sentinel, otherwise coordinates are clamped
// into [0, dim-1] and a zero-width or zero-height result gives the sentinel.
func Normalize(b geom.Box, ext geom.Extent) geom.Box {
	w, h := float64(ext.W), float64(ext.H)
	// Fast path only: clamping a fully-outside box collapses it anyway.
	if outside(b.XMin, b.XMax, w) || outside(b.YMin, b.YMax, h) {
		return geom.Sentinel
	}
	out := geom.Box{
		XMin: clamp(b.XMin, w-1),
		YMin: clamp(b.YMin, h-1),
		XMax: clamp(b.XMax, w-1),
		YMax: clamp(b.YMax, h-1),
	}
	if out.XMin == out.XMax || out.YMin == out.YMax {
		return geom.Sentinel
	}
	return out
}

// outside reports whether [lo, hi] sits entirely on one out-of-range side of
// an axis of length dim.
func outside(lo, hi, dim float64) bool {
	return (lo <= 0 && hi <= 0) || (lo >= dim && hi >= dim)
}

func clamp(v, hi float64) float64 {
	return math.Min(math.Max(0, v), hi)
}

// within reports whether b lies inside the frame ext, edges included.
func within(b geom.Box, ext geom.Extent) bool {
	return b.XMin >= 0 && b.YMin >= 0 &&
		b.XMax <= float64(ext.W) && b.YMax <= float64(ext.H)
}

// covers reports whether b contains the whole window.
func covers(b geom.Box, win image.Rectangle) bool {
	return b.XMin <= float64(win.Min.X) && float64(win.Max.X) <= b.XMax &&
		b.YMin <= float64(win.Min.Y) && float64(win.Max.Y) <= b.YMax
}

// cropBox maps b into the coordinate frame of win. A box covering the whole
// window spans the full new frame, (0, 0, w, h).
func cropBox(b geom.Box, win image.Rectangle) geom.Box {
	ext := geom.Extent{W: win.Dx(), H: win.Dy()}
	if covers(b, win) {
		return geom.NewBox(0, 0, float64(ext.W), float64(ext.H))
	}
	return Normalize(b.Translate(-float64(win.Min.X), -float64(win.Min.Y)), ext)
}
