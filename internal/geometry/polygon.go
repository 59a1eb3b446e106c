package geometry

import (
	"math"
	"sort"
)

// PolygonArea returns the absolute area enclosed by a closed polygon using the
// shoelace formula. Fewer than three points enclose nothing.
func PolygonArea(points []Point) float64 {
	n := len(points)
	if n < 3 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += points[i].X*points[j].Y - points[j].X*points[i].Y
	}
	return math.Abs(sum) / 2
}

// ArcLength returns the perimeter of a closed polygon.
func ArcLength(points []Point) float64 {
	n := len(points)
	if n < 2 {
		return 0
	}
	var length float64
	for i := 0; i < n; i++ {
		length += points[i].Dist(points[(i+1)%n])
	}
	return length
}

// ApproxPolygon simplifies a closed contour with the Douglas-Peucker algorithm.
// Vertices farther than epsilon from the simplified outline are kept.
//
// The contour is split at its first point and the point farthest from it, and
// each half is simplified independently, so the first point always survives.
func ApproxPolygon(contour []Point, epsilon float64) []Point {
	n := len(contour)
	if n <= 3 {
		out := make([]Point, n)
		copy(out, contour)
		return out
	}

	far := 0
	var best float64
	for i := 1; i < n; i++ {
		if d := contour[0].Dist(contour[i]); d > best {
			best, far = d, i
		}
	}
	if far == 0 {
		return []Point{contour[0]}
	}

	keep := make([]bool, n)
	keep[0], keep[far] = true, true
	simplifyRange(contour, 0, far, epsilon, keep)

	// The second half wraps around to the first point.
	wrapped := make([]Point, 0, n-far+1)
	wrapped = append(wrapped, contour[far:]...)
	wrapped = append(wrapped, contour[0])
	wrappedKeep := make([]bool, len(wrapped))
	simplifyRange(wrapped, 0, len(wrapped)-1, epsilon, wrappedKeep)
	for i := 1; i < len(wrapped)-1; i++ {
		if wrappedKeep[i] {
			keep[far+i] = true
		}
	}

	out := make([]Point, 0, 8)
	for i, k := range keep {
		if k {
			out = append(out, contour[i])
		}
	}
	return out
}

// simplifyRange marks vertices strictly between first and last that must be
// kept. Implemented with an explicit stack so long contours cannot overflow.
func simplifyRange(points []Point, first, last int, epsilon float64, keep []bool) {
	type span struct{ a, b int }
	stack := []span{{first, last}}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if s.b-s.a < 2 {
			continue
		}

		idx := -1
		var dmax float64
		for i := s.a + 1; i < s.b; i++ {
			if d := segmentDistance(points[i], points[s.a], points[s.b]); d > dmax {
				dmax, idx = d, i
			}
		}
		if idx >= 0 && dmax > epsilon {
			keep[idx] = true
			stack = append(stack, span{s.a, idx}, span{idx, s.b})
		}
	}
}

// segmentDistance returns the distance from p to the segment ab.
func segmentDistance(p, a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return p.Dist(Point{X: a.X + t*dx, Y: a.Y + t*dy})
}

// ConvexHull returns the convex hull of points in counter-clockwise order
// (in a y-up frame) using Andrew's monotone chain. Collinear points on the
// hull boundary are dropped.
func ConvexHull(points []Point) []Point {
	pts := make([]Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	// Drop exact duplicates.
	uniq := pts[:0]
	for i, p := range pts {
		if i == 0 || p != pts[i-1] {
			uniq = append(uniq, p)
		}
	}
	pts = uniq
	if len(pts) < 3 {
		return pts
	}

	cross := func(o, a, b Point) float64 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	hull := make([]Point, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// MinAreaRect returns the four corners of the smallest-area rectangle, of any
// rotation, that encloses points. The corners are unordered; pass them through
// SortCorners before use. Input with fewer than one point returns ok=false.
//
// One side of the optimal rectangle is collinear with a hull edge, so every
// hull edge direction is tried.
func MinAreaRect(points []Point) (corners [4]Point, ok bool) {
	if len(points) == 0 {
		return corners, false
	}
	hull := ConvexHull(points)
	if len(hull) == 1 {
		return [4]Point{hull[0], hull[0], hull[0], hull[0]}, true
	}

	bestArea := math.Inf(1)
	for i := range hull {
		a := hull[i]
		b := hull[(i+1)%len(hull)]
		edgeLen := a.Dist(b)
		if edgeLen == 0 {
			continue
		}
		ux, uy := (b.X-a.X)/edgeLen, (b.Y-a.Y)/edgeLen // along edge
		vx, vy := -uy, ux                               // normal

		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			dx, dy := p.X-a.X, p.Y-a.Y
			u := dx*ux + dy*uy
			v := dx*vx + dy*vy
			minU, maxU = math.Min(minU, u), math.Max(maxU, u)
			minV, maxV = math.Min(minV, v), math.Max(maxV, v)
		}

		area := (maxU - minU) * (maxV - minV)
		if area < bestArea {
			bestArea = area
			at := func(u, v float64) Point {
				return Point{X: a.X + u*ux + v*vx, Y: a.Y + u*uy + v*vy}
			}
			corners = [4]Point{at(minU, minV), at(maxU, minV), at(maxU, maxV), at(minU, maxV)}
		}
	}
	return corners, true
}
