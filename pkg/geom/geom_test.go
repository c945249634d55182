package geom

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/matzehuels/augment/pkg/errors"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestBoxValidate(t *testing.T) {
	tests := []struct {
		name string
		box  Box
		ok   bool
	}{
		{"valid", NewBox(0, 0, 10, 10), true},
		{"zero width", NewBox(5, 0, 5, 10), false},
		{"inverted y", NewBox(0, 10, 10, 0), false},
		{"nan", NewBox(math.NaN(), 0, 10, 10), false},
		{"inf", NewBox(0, 0, math.Inf(1), 10), false},
		{"sentinel", Sentinel, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.box.Validate()
			if tt.ok && err != nil {
				t.Fatalf("Validate() = %v, want nil", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("Validate() = nil, want error")
				}
				if !errors.Is(err, errors.ErrCodeInvalidBox) {
					t.Errorf("code = %q, want %q", errors.GetCode(err), errors.ErrCodeInvalidBox)
				}
			}
		})
	}
}

func TestBoxFromSlice(t *testing.T) {
	if _, err := BoxFromSlice([]float64{1, 2, 3}); !errors.Is(err, errors.ErrCodeInvalidBox) {
		t.Errorf("three coordinates: err = %v, want INVALID_BOX", err)
	}
	b, err := BoxFromSlice([]float64{1, 2, 3, 4})
	if err != nil {
		t.Fatal(err)
	}
	if b != NewBox(1, 2, 3, 4) {
		t.Errorf("got %v", b)
	}
}

func TestBound(t *testing.T) {
	got := Bound(Point{3, 1}, Point{-2, 5}, Point{0, -4})
	want := NewBox(-2, -4, 3, 5)
	if got != want {
		t.Errorf("Bound = %v, want %v", got, want)
	}
	if !Bound().IsSentinel() {
		t.Error("Bound() of no points should be the sentinel")
	}
}

func TestOptBoxJSON(t *testing.T) {
	type payload struct {
		Box OptBox `json:"box"`
	}

	var p payload
	if err := json.Unmarshal([]byte(`{"box":[1,2,3,4]}`), &p); err != nil {
		t.Fatal(err)
	}
	if b, ok := p.Box.Get(); !ok || b != NewBox(1, 2, 3, 4) {
		t.Errorf("decoded %v", p.Box)
	}

	p = payload{}
	if err := json.Unmarshal([]byte(`{"box":null}`), &p); err != nil {
		t.Fatal(err)
	}
	if p.Box.Present() {
		t.Error("null should decode to an absent box")
	}

	if err := json.Unmarshal([]byte(`{"box":[1,2]}`), &p); err == nil {
		t.Error("two coordinates should fail to decode")
	}

	out, err := json.Marshal(payload{Box: Some(NewBox(0, 0, 5.5, 6))})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"box":[0,0,5.5,6]}` {
		t.Errorf("marshal = %s", out)
	}
	out, _ = json.Marshal(payload{})
	if string(out) != `{"box":null}` {
		t.Errorf("marshal none = %s", out)
	}
}

func TestRotationQuarterTurn(t *testing.T) {
	// 90° counter-clockwise about the center of a 10x10 image moves the
	// top-right corner to the top-left.
	m := Rotation(Point{5, 5}, 90)
	got := m.Apply(Point{10, 0})
	if diff := cmp.Diff(Point{0, 0}, got, approx); diff != "" {
		t.Errorf("Apply mismatch (-want +got):\n%s", diff)
	}
	center := m.Apply(Point{5, 5})
	if diff := cmp.Diff(Point{5, 5}, center, approx); diff != "" {
		t.Errorf("center moved (-want +got):\n%s", diff)
	}
}

func TestApplyBoxUsesAllCorners(t *testing.T) {
	m := Rotation(Point{0, 0}, 45)
	b := NewBox(0, 0, 10, 10)
	got := m.ApplyBox(b)

	// Two opposite corners only.
	p1, p2 := m.Apply(Point{0, 0}), m.Apply(Point{10, 10})
	two := Bound(p1, p2)

	if got.Height() <= two.Height()+1e-9 {
		t.Errorf("four-corner height %g should exceed two-corner height %g", got.Height(), two.Height())
	}
	want := 10 * math.Sqrt2
	if math.Abs(got.Width()-want) > 1e-9 || math.Abs(got.Height()-want) > 1e-9 {
		t.Errorf("rotated bound = %v, want %gx%g", got, want, want)
	}
}

func TestAffineThenAndInvert(t *testing.T) {
	m := Rotation(Point{4, 7}, 33).Then(Translation(3, -2)).Then(Scaling(2, 0.5))
	inv, ok := m.Invert()
	if !ok {
		t.Fatal("expected invertible map")
	}
	p := Point{12.5, -3}
	back := inv.Apply(m.Apply(p))
	if diff := cmp.Diff(p, back, approx); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	if _, ok := Scaling(0, 1).Invert(); ok {
		t.Error("singular map should not invert")
	}
}

func TestShearing(t *testing.T) {
	x := Shearing(0.5, false).Apply(Point{2, 4})
	if x != (Point{4, 4}) {
		t.Errorf("x-shear = %v", x)
	}
	y := Shearing(0.5, true).Apply(Point{2, 4})
	if y != (Point{2, 5}) {
		t.Errorf("y-shear = %v", y)
	}
}

func TestOptBoxBSON(t *testing.T) {
	type doc struct {
		Box  OptBox `bson:"box"`
		Lost OptBox `bson:"lost"`
	}
	data, err := bson.Marshal(doc{Box: Some(NewBox(1, 2, 3.5, 4))})
	if err != nil {
		t.Fatal(err)
	}
	var got doc
	if err := bson.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if b, ok := got.Box.Get(); !ok || b != NewBox(1, 2, 3.5, 4) {
		t.Errorf("box = %v", got.Box)
	}
	if got.Lost.Present() {
		t.Errorf("absent box decoded as %v", got.Lost)
	}
}
