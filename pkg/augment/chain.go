package augment

import (
	"fmt"
	"image"

	"github.com/matzehuels/augment/pkg/boxtf"
	"github.com/matzehuels/augment/pkg/geom"
	"github.com/matzehuels/augment/pkg/raster"
)

// StepTrace is the state after one operation of a sequence.
type StepTrace struct {
	Op       string          `json:"op" bson:"op"`
	Extent   geom.Extent     `json:"extent" bson:"extent"`
	Box      geom.OptBox     `json:"box" bson:"box"`
	Warnings []boxtf.Warning `json:"warnings,omitempty" bson:"warnings,omitempty"`
}

// Trace records a sequence of operations applied to one extent and box.
type Trace struct {
	Source    geom.Extent `json:"source" bson:"source"`
	SourceBox geom.OptBox `json:"source_box" bson:"source_box"`
	Steps     []StepTrace `json:"steps" bson:"steps"`
}

// Extent returns the extent after the last step.
func (t Trace) Extent() geom.Extent {
	if len(t.Steps) == 0 {
		return t.Source
	}
	return t.Steps[len(t.Steps)-1].Extent
}

// Box returns the box after the last step.
func (t Trace) Box() geom.OptBox {
	if len(t.Steps) == 0 {
		return t.SourceBox
	}
	return t.Steps[len(t.Steps)-1].Box
}

// Warnings collects the warnings of every step in order.
func (t Trace) Warnings() []boxtf.Warning {
	var out []boxtf.Warning
	for _, s := range t.Steps {
		out = append(out, s.Warnings...)
	}
	return out
}

// Chain runs ops on an extent and box without touching pixels.
func Chain(src geom.Extent, box geom.OptBox, ops ...Op) (Trace, error) {
	t := Trace{Source: src, SourceBox: box, Steps: make([]StepTrace, 0, len(ops))}
	ext := src
	for i, op := range ops {
		res, err := plan(op, ext, box)
		if err != nil {
			return t, fmt.Errorf("step %d (%s): %w", i+1, op.Kind(), err)
		}
		t.Steps = append(t.Steps, traceOf(op, res))
		ext, box = res.Extent, res.Box
	}
	return t, nil
}

// Apply runs ops on img and its box. img is left unchanged.
func Apply(img image.Image, box geom.OptBox, ops ...Op) (image.Image, Trace, error) {
	src := raster.ExtentOf(img)
	t := Trace{Source: src, SourceBox: box, Steps: make([]StepTrace, 0, len(ops))}
	cur := img
	for i, op := range ops {
		res, err := plan(op, raster.ExtentOf(cur), box)
		if err != nil {
			return nil, t, fmt.Errorf("step %d (%s): %w", i+1, op.Kind(), err)
		}
		cur = op.Render(cur, res)
		t.Steps = append(t.Steps, traceOf(op, res))
		box = res.Box
	}
	return cur, t, nil
}

// plan runs op.Plan, keeping a box that already left the frame as the
// sentinel instead of feeding it to the next operation.
func plan(op Op, ext geom.Extent, box geom.OptBox) (boxtf.Result, error) {
	if b, ok := box.Get(); ok && b.IsSentinel() {
		res, err := op.Plan(ext, geom.None)
		if err != nil {
			return res, err
		}
		res.Box = box
		return res, nil
	}
	return op.Plan(ext, box)
}

func traceOf(op Op, res boxtf.Result) StepTrace {
	return StepTrace{Op: op.Kind(), Extent: res.Extent, Box: res.Box, Warnings: res.Warnings}
}
