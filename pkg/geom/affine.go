package geom

import "math"

// Affine is the 2×3 matrix [[A, B, TX], [C, D, TY]] mapping
// (x, y) to (A·x + B·y + TX, C·x + D·y + TY).
type Affine struct {
	A, B, TX float64
	C, D, TY float64
}

// Identity returns the map that leaves every point in place.
func Identity() Affine {
	return Affine{A: 1, D: 1}
}

// Translation returns the map (x, y) -> (x+tx, y+ty).
func Translation(tx, ty float64) Affine {
	return Affine{A: 1, TX: tx, D: 1, TY: ty}
}

// Scaling returns the map (x, y) -> (fx·x, fy·y).
func Scaling(fx, fy float64) Affine {
	return Affine{A: fx, D: fy}
}

// Rotation returns a rotation by degrees about center. Positive angles turn
// the image counter-clockwise as displayed (y pointing down), matching the
// convention of OpenCV's getRotationMatrix2D with unit scale.
func Rotation(center Point, degrees float64) Affine {
	rad := degrees * math.Pi / 180
	alpha, beta := math.Cos(rad), math.Sin(rad)
	return Affine{
		A: alpha, B: beta, TX: (1-alpha)*center.X - beta*center.Y,
		C: -beta, D: alpha, TY: beta*center.X + (1-alpha)*center.Y,
	}
}

// Shearing returns [[1, val, 0], [0, 1, 0]] for the x axis and
// [[1, 0, 0], [val, 1, 0]] for the y axis.
func Shearing(val float64, alongY bool) Affine {
	if alongY {
		return Affine{A: 1, C: val, D: 1}
	}
	return Affine{A: 1, B: val, D: 1}
}

// Apply maps p.
func (m Affine) Apply(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.TX,
		Y: m.C*p.X + m.D*p.Y + m.TY,
	}
}

// ApplyBox maps all four corners of b and returns their axis-aligned bound.
// Mapping only two opposite corners under-estimates the extent of any
// rotated or sheared box.
func (m Affine) ApplyBox(b Box) Box {
	c := b.Corners()
	return Bound(m.Apply(c[0]), m.Apply(c[1]), m.Apply(c[2]), m.Apply(c[3]))
}

// Then returns the map that applies m first and next second.
func (m Affine) Then(next Affine) Affine {
	return Affine{
		A:  next.A*m.A + next.B*m.C,
		B:  next.A*m.B + next.B*m.D,
		TX: next.A*m.TX + next.B*m.TY + next.TX,
		C:  next.C*m.A + next.D*m.C,
		D:  next.C*m.B + next.D*m.D,
		TY: next.C*m.TX + next.D*m.TY + next.TY,
	}
}

// Invert returns the inverse map. It reports false for singular matrices.
func (m Affine) Invert() (Affine, bool) {
	det := m.A*m.D - m.B*m.C
	if math.Abs(det) < 1e-12 {
		return Affine{}, false
	}
	inv := 1 / det
	return Affine{
		A:  m.D * inv,
		B:  -m.B * inv,
		TX: (m.B*m.TY - m.D*m.TX) * inv,
		C:  -m.C * inv,
		D:  m.A * inv,
		TY: (m.C*m.TX - m.A*m.TY) * inv,
	}, true
}

// Array returns the matrix rows flattened as [A, B, TX, C, D, TY].
func (m Affine) Array() [6]float64 {
	return [6]float64{m.A, m.B, m.TX, m.C, m.D, m.TY}
}
