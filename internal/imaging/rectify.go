package imaging

import (
	"fmt"
	"image"
	"math"

	scanerr "github.com/ironsheep/docscan-mcp/internal/errors"
	"github.com/ironsheep/docscan-mcp/internal/geometry"
)

// MaxRectifyScale bounds Rectify's output to this many times the source
// pixel count.
const MaxRectifyScale = 4

// RectifiedSize returns the output dimensions Rectify produces for corners:
// the longer of the top and bottom edges by the longer of the left and
// right edges, truncated to whole pixels.
func RectifiedSize(corners [4]geometry.Point) geometry.Size {
	tl, tr, br, bl := corners[geometry.TopLeft], corners[geometry.TopRight], corners[geometry.BottomRight], corners[geometry.BottomLeft]
	width := math.Max(br.Dist(bl), tr.Dist(tl))
	height := math.Max(tr.Dist(br), tl.Dist(bl))
	return geometry.Size{Width: int(width), Height: int(height)}
}

// Rectify warps the region of src bounded by corners (TL, TR, BR, BL) into
// an upright rectangle sized by RectifiedSize.
//
// Each output pixel is mapped back into src through the inverse projective
// transform and sampled bilinearly. Samples that fall outside src blend with
// transparent black. src is never modified.
//
// # Errors
//
//   - malformed_input if the corners collapse to a zero-width or zero-height
//     output, are not finite, or would produce more than MaxRectifyScale
//     times the source pixel count
func Rectify(src image.Image, corners [4]geometry.Point) (*image.NRGBA, error) {
	// The destination rectangle keeps the fractional edge lengths so the
	// mapping matches the measured document, while the buffer is whole pixels.
	tl, tr, br, bl := corners[geometry.TopLeft], corners[geometry.TopRight], corners[geometry.BottomRight], corners[geometry.BottomLeft]
	dw := math.Max(br.Dist(bl), tr.Dist(tl))
	dh := math.Max(tr.Dist(br), tl.Dist(bl))
	if math.IsNaN(dw) || math.IsNaN(dh) || math.IsInf(dw, 0) || math.IsInf(dh, 0) {
		return nil, scanerr.NewMalformedInput(fmt.Sprintf("corners %v are not finite", corners), nil)
	}

	b := src.Bounds()
	limit := float64(MaxRectifyScale) * float64(b.Dx()) * float64(b.Dy())
	if math.Floor(dw)*math.Floor(dh) > limit {
		return nil, scanerr.NewMalformedInput(
			fmt.Sprintf("corners produce a %.0fx%.0f output, over %dx the %dx%d source",
				dw, dh, MaxRectifyScale, b.Dx(), b.Dy()), nil)
	}

	size := RectifiedSize(corners)
	if size.Width < 1 || size.Height < 1 {
		return nil, scanerr.NewMalformedInput(
			fmt.Sprintf("corners produce a %dx%d output", size.Width, size.Height), nil)
	}
	dest := [4]geometry.Point{
		geometry.Pt(0, 0),
		geometry.Pt(dw, 0),
		geometry.Pt(dw, dh),
		geometry.Pt(0, dh),
	}
	inverse := QuadToQuad(dest, corners)

	source := ToNRGBA(src)
	out := image.NewNRGBA(image.Rect(0, 0, size.Width, size.Height))
	for y := 0; y < size.Height; y++ {
		row := out.Pix[y*out.Stride:]
		for x := 0; x < size.Width; x++ {
			p := inverse.Map(geometry.Pt(float64(x), float64(y)))
			r, g, b, a := sampleBilinear(source, p.X, p.Y)
			i := x * 4
			row[i+0] = r
			row[i+1] = g
			row[i+2] = b
			row[i+3] = a
		}
	}
	return out, nil
}

// sampleBilinear interpolates the four pixels around (fx, fy). Neighbours
// outside the buffer contribute transparent black.
func sampleBilinear(img *image.NRGBA, fx, fy float64) (r, g, b, a uint8) {
	if math.IsNaN(fx) || math.IsNaN(fy) || math.IsInf(fx, 0) || math.IsInf(fy, 0) {
		return 0, 0, 0, 0
	}
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	wx := fx - float64(x0)
	wy := fy - float64(y0)

	var acc [4]float64
	add := func(x, y int, w float64) {
		if w == 0 || x < 0 || y < 0 || x >= img.Rect.Dx() || y >= img.Rect.Dy() {
			return
		}
		i := y*img.Stride + x*4
		for c := 0; c < 4; c++ {
			acc[c] += float64(img.Pix[i+c]) * w
		}
	}
	add(x0, y0, (1-wx)*(1-wy))
	add(x0+1, y0, wx*(1-wy))
	add(x0, y0+1, (1-wx)*wy)
	add(x0+1, y0+1, wx*wy)

	return clampByte(acc[0]), clampByte(acc[1]), clampByte(acc[2]), clampByte(acc[3])
}

func clampByte(v float64) uint8 {
	v += 0.5
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
