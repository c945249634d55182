package boxtf

import (
	"github.com/matzehuels/augment/pkg/errors"
	"github.com/matzehuels/augment/pkg/geom"
)

// Translate shifts every pixel by (tx, ty); the extent is unchanged. A box
// pushed entirely off the frame becomes the sentinel.
func Translate(src geom.Extent, tx, ty float64, box geom.OptBox) (Result, error) {
	if err := src.Validate(); err != nil {
		return Result{}, err
	}
	if !finite(tx, ty) {
		return Result{}, errors.New(errors.ErrCodeInvalidInput, "translation must be finite, got (%v, %v)", tx, ty)
	}
	if err := checkBox(box); err != nil {
		return Result{}, err
	}

	res := Result{Extent: src, Map: geom.Translation(tx, ty)}
	if b, ok := box.Get(); ok {
		res.Box = geom.Some(Normalize(b.Translate(tx, ty), src))
	}
	return res, nil
}
