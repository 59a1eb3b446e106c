package imaging

import (
	"github.com/ironsheep/docscan-mcp/internal/geometry"
)

// Homography is a 3x3 projective transform acting on row vectors
// [x y 1]. Element aRC multiplies input component R into output component C.
type Homography struct {
	a11, a12, a13 float64
	a21, a22, a23 float64
	a31, a32, a33 float64
}

// QuadToQuad returns the transform that maps each corner of from onto the
// corner of to with the same index.
func QuadToQuad(from, to [4]geometry.Point) Homography {
	fromToSquare := squareToQuad(from).adjoint()
	squareToDest := squareToQuad(to)
	return squareToDest.times(fromToSquare)
}

// Map applies the transform to p.
func (h Homography) Map(p geometry.Point) geometry.Point {
	den := h.a13*p.X + h.a23*p.Y + h.a33
	return geometry.Point{
		X: (h.a11*p.X + h.a21*p.Y + h.a31) / den,
		Y: (h.a12*p.X + h.a22*p.Y + h.a32) / den,
	}
}

// squareToQuad maps the unit square corners (0,0),(1,0),(1,1),(0,1) onto q.
func squareToQuad(q [4]geometry.Point) Homography {
	x0, y0 := q[0].X, q[0].Y
	x1, y1 := q[1].X, q[1].Y
	x2, y2 := q[2].X, q[2].Y
	x3, y3 := q[3].X, q[3].Y

	dx3 := x0 - x1 + x2 - x3
	dy3 := y0 - y1 + y2 - y3
	if dx3 == 0 && dy3 == 0 {
		// parallelogram
		return Homography{
			a11: x1 - x0, a21: x2 - x1, a31: x0,
			a12: y1 - y0, a22: y2 - y1, a32: y0,
			a13: 0, a23: 0, a33: 1,
		}
	}

	dx1 := x1 - x2
	dx2 := x3 - x2
	dy1 := y1 - y2
	dy2 := y3 - y2
	den := dx1*dy2 - dx2*dy1
	a13 := (dx3*dy2 - dx2*dy3) / den
	a23 := (dx1*dy3 - dx3*dy1) / den
	return Homography{
		a11: x1 - x0 + a13*x1, a21: x3 - x0 + a23*x3, a31: x0,
		a12: y1 - y0 + a13*y1, a22: y3 - y0 + a23*y3, a32: y0,
		a13: a13, a23: a23, a33: 1,
	}
}

// adjoint is the inverse up to scale, which is all a projective map needs.
func (h Homography) adjoint() Homography {
	return Homography{
		a11: h.a22*h.a33 - h.a23*h.a32,
		a21: h.a23*h.a31 - h.a21*h.a33,
		a31: h.a21*h.a32 - h.a22*h.a31,
		a12: h.a13*h.a32 - h.a12*h.a33,
		a22: h.a11*h.a33 - h.a13*h.a31,
		a32: h.a12*h.a31 - h.a11*h.a32,
		a13: h.a12*h.a23 - h.a13*h.a22,
		a23: h.a13*h.a21 - h.a11*h.a23,
		a33: h.a11*h.a22 - h.a12*h.a21,
	}
}

// times returns h applied after o.
func (h Homography) times(o Homography) Homography {
	return Homography{
		a11: h.a11*o.a11 + h.a21*o.a12 + h.a31*o.a13,
		a21: h.a11*o.a21 + h.a21*o.a22 + h.a31*o.a23,
		a31: h.a11*o.a31 + h.a21*o.a32 + h.a31*o.a33,
		a12: h.a12*o.a11 + h.a22*o.a12 + h.a32*o.a13,
		a22: h.a12*o.a21 + h.a22*o.a22 + h.a32*o.a23,
		a32: h.a12*o.a31 + h.a22*o.a32 + h.a32*o.a33,
		a13: h.a13*o.a11 + h.a23*o.a12 + h.a33*o.a13,
		a23: h.a13*o.a21 + h.a23*o.a22 + h.a33*o.a23,
		a33: h.a13*o.a31 + h.a23*o.a32 + h.a33*o.a33,
	}
}
