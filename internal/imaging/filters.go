package imaging

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"

	scanerr "github.com/ironsheep/docscan-mcp/internal/errors"
)

// Filter is a post-processing step applied to a rectified page.
type Filter string

// Available filters.
const (
	FilterNone       Filter = "none"
	FilterGrayscale  Filter = "grayscale"
	FilterBlackWhite Filter = "bw"
	FilterColor      Filter = "color"
)

const (
	blackWhiteOffset = 10
	colorGain        = 1.2
)

// ParseFilter accepts a filter name case-insensitively. The empty string
// means FilterNone.
func ParseFilter(name string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FilterNone, nil
	case FilterNone, FilterGrayscale, FilterBlackWhite, FilterColor:
		return f, nil
	default:
		return "", scanerr.NewInvalidArgument(
			fmt.Sprintf("unknown filter %q (want none, grayscale, bw or color)", name), nil)
	}
}

// ApplyFilter returns a filtered copy of img:
//
//   - grayscale: luminance only
//   - bw: luminance lifted by a fixed offset of 10 levels
//   - color: every channel scaled by 1.2, saturating at 255
//
// FilterNone returns a plain copy.
func ApplyFilter(img image.Image, f Filter) *image.NRGBA {
	switch f {
	case FilterGrayscale:
		return imaging.Grayscale(img)
	case FilterBlackWhite:
		return imaging.AdjustFunc(imaging.Grayscale(img), func(c color.NRGBA) color.NRGBA {
			c.R = addSaturate(c.R, blackWhiteOffset)
			c.G = addSaturate(c.G, blackWhiteOffset)
			c.B = addSaturate(c.B, blackWhiteOffset)
			return c
		})
	case FilterColor:
		return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
			boosted := colorful.Color{
				R: float64(c.R) / 255 * colorGain,
				G: float64(c.G) / 255 * colorGain,
				B: float64(c.B) / 255 * colorGain,
			}
			r, g, b := boosted.Clamped().RGB255()
			return color.NRGBA{R: r, G: g, B: b, A: c.A}
		})
	default:
		return imaging.Clone(img)
	}
}

func addSaturate(v uint8, d int) uint8 {
	s := int(v) + d
	if s > 255 {
		return 255
	}
	return uint8(s)
}
