package augment

import (
	"strings"

	"github.com/matzehuels/augment/pkg/boxtf"
	"github.com/matzehuels/augment/pkg/errors"
)

// Step is the serialized form of an [Op]: the kind in Op plus the parameters
// that kind uses. Unused parameters are ignored.
type Step struct {
	Op string `json:"op" toml:"op" bson:"op"`

	// crop
	Point1 []int `json:"point1,omitempty" toml:"point1,omitempty" bson:"point1,omitempty"`
	Point2 []int `json:"point2,omitempty" toml:"point2,omitempty" bson:"point2,omitempty"`

	// rotate, scale
	Angle          float64 `json:"angle,omitempty" toml:"angle,omitempty" bson:"angle,omitempty"`
	KeepResolution *bool   `json:"keep_resolution,omitempty" toml:"keep_resolution,omitempty" bson:"keep_resolution,omitempty"`
	FX             float64 `json:"fx,omitempty" toml:"fx,omitempty" bson:"fx,omitempty"`
	FY             float64 `json:"fy,omitempty" toml:"fy,omitempty" bson:"fy,omitempty"`

	// shear
	Value float64 `json:"value,omitempty" toml:"value,omitempty" bson:"value,omitempty"`
	Axis  int     `json:"axis,omitempty" toml:"axis,omitempty" bson:"axis,omitempty"`

	// translate
	TX float64 `json:"tx,omitempty" toml:"tx,omitempty" bson:"tx,omitempty"`
	TY float64 `json:"ty,omitempty" toml:"ty,omitempty" bson:"ty,omitempty"`
}

// Build converts the step into an [Op].
//
// Defaults: rotate keeps the resolution unless keep_resolution = false;
// scale does not unless keep_resolution = true; shear runs along x.
// Parameter ranges are checked later, when the op is planned against an
// extent.
func (s Step) Build() (Op, error) {
	switch kind := strings.ToLower(strings.TrimSpace(s.Op)); kind {
	case KindCrop:
		if len(s.Point1) != 2 || len(s.Point2) != 2 {
			return nil, errors.New(errors.ErrCodeInvalidRecipe, "crop needs point1 and point2 as [x, y]")
		}
		return Crop{X1: s.Point1[0], Y1: s.Point1[1], X2: s.Point2[0], Y2: s.Point2[1]}, nil
	case KindRotate:
		return Rotate{Angle: s.Angle, KeepResolution: s.keep(true)}, nil
	case KindScale:
		return Scale{FX: s.FX, FY: s.FY, KeepResolution: s.keep(false)}, nil
	case KindShear:
		axis := boxtf.Axis(s.Axis)
		if err := axis.Validate(); err != nil {
			return nil, err
		}
		return Shear{Value: s.Value, Axis: axis}, nil
	case KindTranslate:
		return Translate{TX: s.TX, TY: s.TY}, nil
	case "":
		return nil, errors.New(errors.ErrCodeInvalidOp, "step has no op")
	default:
		return nil, errors.New(errors.ErrCodeInvalidOp,
			"unknown op %q (must be one of: %s)", s.Op, strings.Join(Kinds, ", "))
	}
}

func (s Step) keep(def bool) bool {
	if s.KeepResolution == nil {
		return def
	}
	return *s.KeepResolution
}

// StepOf returns the serialized form of op with every default made explicit.
func StepOf(op Op) Step {
	switch o := op.(type) {
	case Crop:
		return Step{Op: KindCrop, Point1: []int{o.X1, o.Y1}, Point2: []int{o.X2, o.Y2}}
	case Rotate:
		return Step{Op: KindRotate, Angle: o.Angle, KeepResolution: &o.KeepResolution}
	case Scale:
		return Step{Op: KindScale, FX: o.FX, FY: o.FY, KeepResolution: &o.KeepResolution}
	case Shear:
		return Step{Op: KindShear, Value: o.Value, Axis: int(o.Axis)}
	case Translate:
		return Step{Op: KindTranslate, TX: o.TX, TY: o.TY}
	default:
		return Step{Op: op.Kind()}
	}
}
