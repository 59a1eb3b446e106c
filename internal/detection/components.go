package detection

import (
	"image"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
)

// Component is one 8-connected region of non-zero pixels.
type Component struct {
	// Label is the component's 1-based label in the label map.
	Label int

	// Area is the number of pixels in the component.
	Area int

	// Bounds is the tight bounding box; Max is exclusive.
	Bounds image.Rectangle

	// Centroid is the mean pixel position.
	Centroid geometry.Point

	// Start is the first pixel in raster order (topmost, then leftmost).
	Start image.Point
}

// FillRatio returns Area*10 / (bounding-box area) in integer arithmetic, so
// a value of 8 means at least 80% of the box is covered.
func (c Component) FillRatio() int {
	boxArea := c.Bounds.Dx() * c.Bounds.Dy()
	if boxArea == 0 {
		return 0
	}
	return c.Area * 10 / boxArea
}

var neighbors8 = [8]image.Point{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// LabelComponents labels the 8-connected components of mask's non-zero
// pixels. It returns the components in label order (raster order of their
// first pixel) and a label map with one entry per pixel, 0 for background.
func LabelComponents(mask *image.Gray) ([]Component, []int32) {
	w, h := mask.Rect.Dx(), mask.Rect.Dy()
	labels := make([]int32, w*h)
	var comps []Component

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if mask.Pix[y*mask.Stride+x] == 0 || labels[y*w+x] != 0 {
				continue
			}
			label := int32(len(comps) + 1)
			comps = append(comps, floodFill(mask, labels, x, y, label))
		}
	}
	return comps, labels
}

// floodFill labels the component containing (sx, sy) with an explicit
// stack and accumulates its statistics.
func floodFill(mask *image.Gray, labels []int32, sx, sy int, label int32) Component {
	w, h := mask.Rect.Dx(), mask.Rect.Dy()
	minX, minY, maxX, maxY := sx, sy, sx, sy
	var area int
	var sumX, sumY float64

	stack := []image.Point{{X: sx, Y: sy}}
	labels[sy*w+sx] = label

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		area++
		sumX += float64(p.X)
		sumY += float64(p.Y)
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}

		for _, d := range neighbors8 {
			nx, ny := p.X+d.X, p.Y+d.Y
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			if mask.Pix[ny*mask.Stride+nx] == 0 || labels[ny*w+nx] != 0 {
				continue
			}
			labels[ny*w+nx] = label
			stack = append(stack, image.Point{X: nx, Y: ny})
		}
	}

	return Component{
		Label:    int(label),
		Area:     area,
		Bounds:   image.Rect(minX, minY, maxX+1, maxY+1),
		Centroid: geometry.Pt(sumX/float64(area), sumY/float64(area)),
		Start:    image.Point{X: sx, Y: sy},
	}
}
