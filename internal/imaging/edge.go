package imaging

import (
	"image"
)

// BoundaryMap returns an edge map of a binary mask: a pixel is white (255)
// when it is foreground (non-zero) and at least one of its 4-neighbours is
// background or lies outside the image. Everything else is black.
//
// Because the image border counts as background, a foreground region that
// touches the border still gets a closed outline, which the contour tracer
// relies on.
func BoundaryMap(mask *image.Gray) *image.Gray {
	w, h := mask.Rect.Dx(), mask.Rect.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))

	fg := func(x, y int) bool {
		if x < 0 || y < 0 || x >= w || y >= h {
			return false
		}
		return mask.Pix[y*mask.Stride+x] != 0
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !fg(x, y) {
				continue
			}
			if !fg(x-1, y) || !fg(x+1, y) || !fg(x, y-1) || !fg(x, y+1) {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}
	return out
}

// CountNonZero returns the number of non-zero pixels in g.
func CountNonZero(g *image.Gray) int {
	n := 0
	for y := 0; y < g.Rect.Dy(); y++ {
		row := g.Pix[y*g.Stride : y*g.Stride+g.Rect.Dx()]
		for _, v := range row {
			if v != 0 {
				n++
			}
		}
	}
	return n
}
