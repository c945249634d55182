package augment

import (
	"fmt"
	"image"

	"github.com/matzehuels/augment/pkg/boxtf"
	"github.com/matzehuels/augment/pkg/geom"
	"github.com/matzehuels/augment/pkg/raster"
)

// Operation kinds as they appear in recipes and API paths.
const (
	KindCrop      = "crop"
	KindRotate    = "rotate"
	KindScale     = "scale"
	KindShear     = "shear"
	KindTranslate = "translate"
)

// Kinds lists every supported operation kind.
var Kinds = []string{KindCrop, KindRotate, KindScale, KindShear, KindTranslate}

// Op is one geometric operation.
//
// Plan computes the output extent, the pixel map and the transformed box for
// an input of extent src. Render applies a plan produced by the same Op to
// img and returns a new image; img is never modified.
type Op interface {
	Kind() string
	Plan(src geom.Extent, box geom.OptBox) (boxtf.Result, error)
	Render(img image.Image, plan boxtf.Result) image.Image
}

// =============================================================================
// Crop
// =============================================================================

// Crop keeps the window from (X1, Y1) inclusive to (X2, Y2) exclusive.
type Crop struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func (Crop) Kind() string { return KindCrop }

func (o Crop) Plan(src geom.Extent, box geom.OptBox) (boxtf.Result, error) {
	return boxtf.Crop(src, image.Pt(o.X1, o.Y1), image.Pt(o.X2, o.Y2), box)
}

func (o Crop) Render(img image.Image, _ boxtf.Result) image.Image {
	return raster.Crop(img, image.Rect(o.X1, o.Y1, o.X2, o.Y2))
}

func (o Crop) String() string {
	return fmt.Sprintf("crop (%d,%d)-(%d,%d)", o.X1, o.Y1, o.X2, o.Y2)
}

// =============================================================================
// Rotate
// =============================================================================

// Rotate turns the image counter-clockwise by Angle degrees about its center.
type Rotate struct {
	Angle          float64 `json:"angle"`
	KeepResolution bool    `json:"keep_resolution"`
}

func (Rotate) Kind() string { return KindRotate }

func (o Rotate) Plan(src geom.Extent, box geom.OptBox) (boxtf.Result, error) {
	return boxtf.Rotate(src, o.Angle, o.KeepResolution, box)
}

func (o Rotate) Render(img image.Image, plan boxtf.Result) image.Image {
	return raster.Warp(img, plan.Map, plan.Extent)
}

func (o Rotate) String() string {
	return fmt.Sprintf("rotate %g°%s", o.Angle, keepSuffix(o.KeepResolution))
}

// =============================================================================
// Scale
// =============================================================================

// Scale resizes by FX horizontally and FY vertically. KeepResolution
// center-crops the result back to the input size when both factors are >= 1.
type Scale struct {
	FX             float64 `json:"fx"`
	FY             float64 `json:"fy"`
	KeepResolution bool    `json:"keep_resolution"`
}

func (Scale) Kind() string { return KindScale }

func (o Scale) Plan(src geom.Extent, box geom.OptBox) (boxtf.Result, error) {
	return boxtf.Scale(src, o.FX, o.FY, o.KeepResolution, box)
}

// Render resizes with a proper filter and then cuts the centered window, which
// samples better than warping through the scale map when shrinking.
func (o Scale) Render(img image.Image, plan boxtf.Result) image.Image {
	scaled := boxtf.ScaledExtent(raster.ExtentOf(img), o.FX, o.FY)
	out := raster.Resize(img, scaled)
	if plan.Extent == scaled {
		return out
	}
	return raster.Crop(out, boxtf.CenterWindow(scaled, plan.Extent))
}

func (o Scale) String() string {
	return fmt.Sprintf("scale %g×%g%s", o.FX, o.FY, keepSuffix(o.KeepResolution))
}

// =============================================================================
// Shear
// =============================================================================

// Shear skews the image by Value along Axis.
type Shear struct {
	Value float64    `json:"value"`
	Axis  boxtf.Axis `json:"axis"`
}

func (Shear) Kind() string { return KindShear }

func (o Shear) Plan(src geom.Extent, box geom.OptBox) (boxtf.Result, error) {
	return boxtf.Shear(src, o.Value, o.Axis, box)
}

func (o Shear) Render(img image.Image, plan boxtf.Result) image.Image {
	return raster.Warp(img, plan.Map, plan.Extent)
}

func (o Shear) String() string { return fmt.Sprintf("shear %g along %s", o.Value, o.Axis) }

// =============================================================================
// Translate
// =============================================================================

// Translate shifts the image by (TX, TY) pixels.
type Translate struct {
	TX float64 `json:"tx"`
	TY float64 `json:"ty"`
}

func (Translate) Kind() string { return KindTranslate }

func (o Translate) Plan(src geom.Extent, box geom.OptBox) (boxtf.Result, error) {
	return boxtf.Translate(src, o.TX, o.TY, box)
}

func (o Translate) Render(img image.Image, plan boxtf.Result) image.Image {
	return raster.Warp(img, plan.Map, plan.Extent)
}

func (o Translate) String() string { return fmt.Sprintf("translate (%g, %g)", o.TX, o.TY) }

func keepSuffix(keep bool) string {
	if keep {
		return ", keep resolution"
	}
	return ""
}

var (
	_ Op = Crop{}
	_ Op = Rotate{}
	_ Op = Scale{}
	_ Op = Shear{}
	_ Op = Translate{}
)
