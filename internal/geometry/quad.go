package geometry

import (
	"fmt"
	"math"

	scanerr "github.com/ironsheep/docscan-mcp/internal/errors"
)

// Point is a 2-D coordinate in the pixel space of one image buffer.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// String formats the point as (x,y).
func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

// Size is the width and height of the buffer a set of points was measured in.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether the size has no area.
func (s Size) Empty() bool {
	return s.Width <= 0 || s.Height <= 0
}

// Corner indexes into an ordered Quadrilateral.
const (
	TopLeft = iota
	TopRight
	BottomRight
	BottomLeft
)

// Quadrilateral is four corners in TL, TR, BR, BL order plus the size of the
// buffer they were computed against. It is a value type; copies are
// independent.
type Quadrilateral struct {
	Corners [4]Point `json:"corners"`
	Size    Size     `json:"size"`
}

// NewQuadrilateral orders points with SortCorners and binds them to size.
func NewQuadrilateral(points []Point, size Size) (Quadrilateral, error) {
	corners, err := SortCorners(points)
	if err != nil {
		return Quadrilateral{}, err
	}
	return Quadrilateral{Corners: corners, Size: size}, nil
}

func (q Quadrilateral) TopLeft() Point     { return q.Corners[TopLeft] }
func (q Quadrilateral) TopRight() Point    { return q.Corners[TopRight] }
func (q Quadrilateral) BottomRight() Point { return q.Corners[BottomRight] }
func (q Quadrilateral) BottomLeft() Point  { return q.Corners[BottomLeft] }

// Area returns the enclosed area of the corner polygon.
func (q Quadrilateral) Area() float64 {
	return PolygonArea(q.Corners[:])
}

// IsDegenerate reports whether the quadrilateral encloses no area, which is
// how the connected-component extractor signals "nothing found".
func (q Quadrilateral) IsDegenerate() bool {
	return q.Area() < 1e-9
}

// ScaleTo maps the corners into a buffer of the given size. Each axis is
// scaled independently by target/source.
func (q Quadrilateral) ScaleTo(target Size) (Quadrilateral, error) {
	if q.Size.Empty() {
		return Quadrilateral{}, scanerr.NewMalformedInput(
			fmt.Sprintf("cannot scale quadrilateral measured against %dx%d", q.Size.Width, q.Size.Height), nil)
	}
	if q.Size == target {
		return q, nil
	}
	sx := float64(target.Width) / float64(q.Size.Width)
	sy := float64(target.Height) / float64(q.Size.Height)
	out := Quadrilateral{Size: target}
	for i, p := range q.Corners {
		out.Corners[i] = Point{X: p.X * sx, Y: p.Y * sy}
	}
	return out, nil
}

// String formats the quadrilateral for logs.
func (q Quadrilateral) String() string {
	return fmt.Sprintf("quad[tl=%v tr=%v br=%v bl=%v size=%dx%d]",
		q.Corners[TopLeft], q.Corners[TopRight], q.Corners[BottomRight], q.Corners[BottomLeft],
		q.Size.Width, q.Size.Height)
}

// SortCorners picks the top-left, top-right, bottom-right and bottom-left
// extremes from points using the x+y and y-x keys. More than four points are
// allowed; the result always contains exactly four. Ties keep the first point
// encountered.
func SortCorners(points []Point) ([4]Point, error) {
	var out [4]Point
	if len(points) < 4 {
		return out, scanerr.NewMalformedInput(fmt.Sprintf("need at least 4 points, got %d", len(points)), nil)
	}

	tl, br, tr, bl := 0, 0, 0, 0
	for i := 1; i < len(points); i++ {
		sum := points[i].X + points[i].Y
		diff := points[i].Y - points[i].X
		if sum < points[tl].X+points[tl].Y {
			tl = i
		}
		if sum > points[br].X+points[br].Y {
			br = i
		}
		if diff < points[tr].Y-points[tr].X {
			tr = i
		}
		if diff > points[bl].Y-points[bl].X {
			bl = i
		}
	}

	out[TopLeft] = points[tl]
	out[TopRight] = points[tr]
	out[BottomRight] = points[br]
	out[BottomLeft] = points[bl]
	return out, nil
}

// IsPlausibleRectangle applies the document-shape filter to ordered corners:
//   - no side has zero extent along its own axis (horizontal sides differ in
//     x, vertical sides differ in y)
//   - every side extent is at least width/10
//   - opposite sides are within width/10 of axis-parallel
func IsPlausibleRectangle(c [4]Point, size Size) bool {
	minimum := float64(size.Width / 10)
	tl, tr, br, bl := c[TopLeft], c[TopRight], c[BottomRight], c[BottomLeft]

	// Exactly horizontal or vertical sides are allowed; only zero extent
	// along a side's own axis is rejected.
	normal := tl.X != tr.X && bl.X != br.X && tl.Y != bl.Y && tr.Y != br.Y

	bigEnough := tr.X-tl.X >= minimum &&
		br.X-bl.X >= minimum &&
		bl.Y-tl.Y >= minimum &&
		br.Y-tr.Y >= minimum

	within := func(v float64) bool { return v <= minimum && v >= -minimum }
	rectangular := within(tl.X-bl.X) &&
		within(tr.X-br.X) &&
		within(tl.Y-tr.Y) &&
		within(br.Y-bl.Y)

	return normal && bigEnough && rectangular
}
