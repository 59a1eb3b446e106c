package detection

import (
	"fmt"
	"image"
	"strings"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/lucasb-eyer/go-colorful"

	scanerr "github.com/ironsheep/docscan-mcp/internal/errors"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
)

// Binarization selects how the connected-component strategy separates the
// page from the background.
type Binarization string

const (
	// BinarizeOtsu thresholds the blurred luminance at Otsu's level.
	BinarizeOtsu Binarization = "otsu"

	// BinarizeBrightness keeps pixels whose red, green and blue channels all
	// lie in a fixed bright range after a median filter.
	BinarizeBrightness Binarization = "brightness"
)

// minContrast is the smallest luminance spread, in levels, that Otsu will
// split. Flatter frames have no distinguishable foreground.
const minContrast = 16

// Brightness range used by BinarizeBrightness, inclusive.
const (
	brightnessLow  = 155
	brightnessHigh = 255
)

// ParseBinarization accepts "otsu" or "brightness".
func ParseBinarization(s string) (Binarization, error) {
	switch b := Binarization(strings.ToLower(strings.TrimSpace(s))); b {
	case BinarizeOtsu, BinarizeBrightness:
		return b, nil
	default:
		return "", scanerr.NewInvalidArgument(fmt.Sprintf("unknown binarization %q", s), nil)
	}
}

// Otsu returns the global threshold that maximises the between-class
// variance of g's histogram, where the lower class is every level <= t.
// Ties resolve to the lowest level. ok is false when the darkest and
// brightest levels in g are less than 16 apart, in which case no split is
// meaningful.
func Otsu(g *image.Gray) (t uint8, ok bool) {
	var hist [256]int
	w, h := g.Rect.Dx(), g.Rect.Dy()
	for y := 0; y < h; y++ {
		for _, v := range g.Pix[y*g.Stride : y*g.Stride+w] {
			hist[v]++
		}
	}

	total := w * h
	lo, hi := -1, -1
	var sumAll float64
	for i, n := range hist {
		if n > 0 {
			if lo < 0 {
				lo = i
			}
			hi = i
		}
		sumAll += float64(i * n)
	}
	if lo < 0 || hi-lo < minContrast {
		return 0, false
	}

	var (
		best     float64
		weightLo int
		sumLo    float64
	)
	for i := 0; i < 256; i++ {
		weightLo += hist[i]
		if weightLo == 0 {
			continue
		}
		weightHi := total - weightLo
		if weightHi == 0 {
			break
		}
		sumLo += float64(i * hist[i])

		meanLo := sumLo / float64(weightLo)
		meanHi := (sumAll - sumLo) / float64(weightHi)
		d := meanLo - meanHi
		between := float64(weightLo) * float64(weightHi) * d * d
		if between > best {
			best = between
			t = uint8(i)
		}
	}
	return t, true
}

// OtsuMask binarizes g at its Otsu threshold: pixels brighter than the
// threshold become 255, the rest 0. A frame too flat for Otsu yields an
// empty mask.
func OtsuMask(g *image.Gray) *image.Gray {
	t, ok := Otsu(g)
	if !ok || t == 255 {
		return image.NewGray(image.Rect(0, 0, g.Rect.Dx(), g.Rect.Dy()))
	}
	return imaging.ToGray(segment.Threshold(g, t+1))
}

// BrightnessMask median-filters img and keeps pixels whose red, green and
// blue channels all lie in [155, 255].
func BrightnessMask(img image.Image) *image.Gray {
	smoothed := effect.Median(img, 2)
	b := smoothed.Bounds()
	mask := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c, _ := colorful.MakeColor(smoothed.At(b.Min.X+x, b.Min.Y+y))
			r, g, bl := c.RGB255()
			if inBrightRange(r) && inBrightRange(g) && inBrightRange(bl) {
				mask.Pix[y*mask.Stride+x] = 255
			}
		}
	}
	return mask
}

func inBrightRange(v uint8) bool {
	return v >= brightnessLow && v <= brightnessHigh
}
