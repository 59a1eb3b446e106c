package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	scanerr "github.com/ironsheep/docscan-mcp/internal/errors"
	"github.com/ironsheep/docscan-mcp/internal/geometry"
)

// OutlineStyle controls how DrawOutline marks a page.
type OutlineStyle struct {
	Color     color.NRGBA
	Thickness int
	Labels    bool
}

// DefaultOutlineStyle is a 3px opaque green outline with corner labels.
func DefaultOutlineStyle() OutlineStyle {
	return OutlineStyle{Color: color.NRGBA{G: 255, A: 255}, Thickness: 3, Labels: true}
}

var cornerLabels = [4]string{"TL", "TR", "BR", "BL"}

// DrawOutline returns a copy of img with the quadrilateral's edges drawn and,
// if style.Labels is set, each corner tagged TL, TR, BR or BL.
func DrawOutline(img image.Image, corners [4]geometry.Point, style OutlineStyle) *image.NRGBA {
	out := imaging.Clone(img)
	src := image.NewUniform(style.Color)
	thickness := style.Thickness
	if thickness < 1 {
		thickness = 1
	}

	for i := range corners {
		drawSegment(out, corners[i], corners[(i+1)%4], thickness, src)
	}

	if style.Labels {
		var cx, cy float64
		for _, p := range corners {
			cx += p.X / 4
			cy += p.Y / 4
		}
		for i, p := range corners {
			// Nudge labels toward the centre so they sit inside the page.
			x := int(math.Round(p.X + math.Copysign(6, cx-p.X)))
			y := int(math.Round(p.Y + math.Copysign(6, cy-p.Y)))
			drawLabel(out, x, y, cornerLabels[i], style.Color)
		}
	}
	return out
}

// drawSegment stamps a thickness-wide square at every pixel step from a to b.
func drawSegment(dst *image.NRGBA, a, b geometry.Point, thickness int, src image.Image) {
	steps := int(math.Ceil(math.Max(math.Abs(b.X-a.X), math.Abs(b.Y-a.Y))))
	if steps == 0 {
		steps = 1
	}
	half := thickness / 2
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(math.Round(a.X + t*(b.X-a.X)))
		y := int(math.Round(a.Y + t*(b.Y-a.Y)))
		r := image.Rect(x-half, y-half, x-half+thickness, y-half+thickness)
		draw.Draw(dst, r, src, image.Point{}, draw.Over)
	}
}

// drawLabel writes text with its top-left near (x, y) on a dark backing
// box, kept inside the image.
func drawLabel(dst *image.NRGBA, x, y int, text string, fg color.NRGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(fg), Face: face}
	w := d.MeasureString(text).Ceil()
	h := face.Height

	b := dst.Bounds()
	x = clampInt(x, b.Min.X, b.Max.X-w-2)
	y = clampInt(y, b.Min.Y, b.Max.Y-h-2)

	box := image.Rect(x, y, x+w+2, y+h+2)
	draw.Draw(dst, box, image.NewUniform(color.NRGBA{A: 180}), image.Point{}, draw.Over)

	d.Dot = fixed.P(x+1, y+1+face.Ascent)
	d.DrawString(text)
}

func clampInt(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// ParseHexColor parses "#RRGGBB" or "#RRGGBBAA"; the leading # is optional.
func ParseHexColor(hex string) (color.NRGBA, error) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")

	val, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, scanerr.NewInvalidArgument(fmt.Sprintf("invalid hex color %q", hex), err)
	}

	switch len(hex) {
	case 6:
		return color.NRGBA{R: uint8(val >> 16), G: uint8(val >> 8), B: uint8(val), A: 255}, nil
	case 8:
		return color.NRGBA{R: uint8(val >> 24), G: uint8(val >> 16), B: uint8(val >> 8), A: uint8(val)}, nil
	default:
		return color.NRGBA{}, scanerr.NewInvalidArgument(fmt.Sprintf("hex color %q must have 6 or 8 digits", hex), nil)
	}
}
