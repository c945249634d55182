package boxtf

import (
	"math"

	"github.com/matzehuels/augment/pkg/errors"
	"github.com/matzehuels/augment/pkg/geom"
)

// Warning codes.
const (
	// WarnKeepResolutionDisabled is emitted when scale is asked to keep the
	// source resolution while shrinking along some axis.
	WarnKeepResolutionDisabled = "KEEP_RESOLUTION_DISABLED"
)

// Warning is a non-fatal note about a transform; the call still succeeded.
type Warning struct {
	Code    string `json:"code" bson:"code"`
	Message string `json:"message" bson:"message"`
}

func (w Warning) String() string { return w.Code + ": " + w.Message }

// Result is the outcome of one geometric operation.
type Result struct {
	// Extent is the size of the transformed image.
	Extent geom.Extent `json:"extent"`

	// Map takes source pixel coordinates to destination pixel coordinates.
	Map geom.Affine `json:"-"`

	// Box is the recomputed box, or None when no box was supplied.
	Box geom.OptBox `json:"box"`

	// Warnings lists flag fallbacks applied during the call.
	Warnings []Warning `json:"warnings,omitempty"`
}

// Axis selects the direction of a shear.
type Axis int

const (
	AxisX Axis = 0
	AxisY Axis = 1
)

// Validate returns INVALID_AXIS unless a is AxisX or AxisY.
func (a Axis) Validate() error {
	if a != AxisX && a != AxisY {
		return errors.New(errors.ErrCodeInvalidAxis, "axis must be 0 (x) or 1 (y), got %d", int(a))
	}
	return nil
}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	default:
		return "invalid"
	}
}

// checkBox validates an optional input box.
func checkBox(box geom.OptBox) error {
	if b, ok := box.Get(); ok {
		return b.Validate()
	}
	return nil
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
