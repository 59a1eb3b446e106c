package imaging

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
)

// SizeOf returns the pixel dimensions of img.
func SizeOf(img image.Image) geometry.Size {
	b := img.Bounds()
	return geometry.Size{Width: b.Dx(), Height: b.Dy()}
}

// Channels reports the channel layout of img: 1 for grayscale, 4 for
// formats that carry alpha, 3 otherwise.
func Channels(img image.Image) int {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return 1
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64:
		return 4
	default:
		return 3
	}
}

// ToGray returns a zero-origin 8-bit grayscale copy of img using BT.601
// luminance weights. A zero-origin *image.Gray is returned as is.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g
	}
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(gray, gray.Bounds(), img, bounds.Min, draw.Src)
	return gray
}

// Grayscale converts img to a single-channel buffer via imaging.Grayscale,
// which keeps the luminance computation consistent with the filters.
func Grayscale(img image.Image) *image.Gray {
	return ToGray(imaging.Grayscale(img))
}

// ToNRGBA returns a zero-origin NRGBA copy of img.
func ToNRGBA(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}

// ScaleToHeight downscales img so its height equals height, keeping the
// aspect ratio. Images already at or below height, and height <= 0, are
// returned unchanged.
func ScaleToHeight(img image.Image, height int) image.Image {
	if height <= 0 || img.Bounds().Dy() <= height {
		return img
	}
	return imaging.Resize(img, 0, height, imaging.Linear)
}

// GrayAt returns the 8-bit luminance at (x, y) of a zero-origin gray buffer,
// or 0 outside its bounds.
func GrayAt(g *image.Gray, x, y int) uint8 {
	if x < 0 || y < 0 || x >= g.Rect.Dx() || y >= g.Rect.Dy() {
		return 0
	}
	return g.Pix[y*g.Stride+x]
}

// Uniform returns a w x h NRGBA image filled with c.
func Uniform(w, h int, c color.Color) *image.NRGBA {
	return imaging.New(w, h, c)
}
