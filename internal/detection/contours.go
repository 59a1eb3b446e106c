package detection

import (
	"image"
	"sort"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
)

// Moore neighbourhood in clockwise order on screen (y grows downward),
// starting west.
var mooreDirs = [8]image.Point{
	{-1, 0},  // W
	{-1, -1}, // NW
	{0, -1},  // N
	{1, -1},  // NE
	{1, 0},   // E
	{1, 1},   // SE
	{0, 1},   // S
	{-1, 1},  // SW
}

// Contour is a closed outer boundary traced around one component.
type Contour struct {
	Points []geometry.Point
	Area   float64
}

// TraceContour follows the outer boundary of the 8-connected region of
// non-zero pixels containing start, clockwise, using Moore-neighbour
// tracing with Jacob's stopping criterion. start must be the region's first
// pixel in raster order so that its west neighbour is background.
func TraceContour(mask *image.Gray, start image.Point) []geometry.Point {
	w, h := mask.Rect.Dx(), mask.Rect.Dy()
	fg := func(p image.Point) bool {
		if p.X < 0 || p.Y < 0 || p.X >= w || p.Y >= h {
			return false
		}
		return mask.Pix[p.Y*mask.Stride+p.X] != 0
	}

	// next finds the first foreground neighbour of p clockwise from 'from'.
	next := func(p image.Point, from int) (int, bool) {
		for i := 0; i < 8; i++ {
			d := (from + i) % 8
			if fg(p.Add(mooreDirs[d])) {
				return d, true
			}
		}
		return 0, false
	}

	contour := []geometry.Point{geometry.Pt(float64(start.X), float64(start.Y))}

	// The west neighbour is background, so the search begins just after it.
	first, ok := next(start, 1)
	if !ok {
		return contour
	}

	p, d := start, first
	// Each boundary pixel is entered at most 4 times.
	limit := 4*w*h + 8
	for step := 0; step < limit; step++ {
		p = p.Add(mooreDirs[d])
		nd, _ := next(p, (d+6)%8)
		if p == start && nd == first {
			break
		}
		contour = append(contour, geometry.Pt(float64(p.X), float64(p.Y)))
		d = nd
	}
	return contour
}

// FindContours traces the outer boundary of every component in edges and
// returns them ordered by enclosed area, largest first. Components smaller
// than minPixels are skipped.
func FindContours(edges *image.Gray, minPixels int) []Contour {
	comps, _ := LabelComponents(edges)

	contours := make([]Contour, 0, len(comps))
	for _, c := range comps {
		if c.Area < minPixels {
			continue
		}
		pts := TraceContour(edges, c.Start)
		contours = append(contours, Contour{Points: pts, Area: geometry.PolygonArea(pts)})
	}

	sort.SliceStable(contours, func(i, j int) bool {
		return contours[i].Area > contours[j].Area
	})
	return contours
}
