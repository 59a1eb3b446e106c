package detection

import (
	"context"
	"image"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
)

// ConnectedComponent finds the page as the largest roughly rectangular,
// roughly centred blob in a binarized frame.
type ConnectedComponent struct {
	binarize Binarization
	log      logrus.FieldLogger
}

// NewConnectedComponent creates the connected-component strategy.
func NewConnectedComponent(binarize Binarization, log logrus.FieldLogger) *ConnectedComponent {
	if binarize == "" {
		binarize = BinarizeOtsu
	}
	return &ConnectedComponent{
		binarize: binarize,
		log:      log.WithField("strategy", StrategyConnectedComponent),
	}
}

// Name implements Extractor.
func (c *ConnectedComponent) Name() Strategy { return StrategyConnectedComponent }

// Extract binarizes img, labels its components and keeps the largest one
// that satisfies all of:
//
//   - area > W*H/8
//   - area*10 / bounding-box area >= 8, in integer arithmetic
//   - centroid within W/4 of the horizontal centre and H/4 of the vertical
//     centre
//
// The winner's bounding box corners are sorted into a quadrilateral. With
// no qualifier the candidate is the zero box, which is degenerate and
// reported as no detection.
func (c *ConnectedComponent) Extract(ctx context.Context, img image.Image) (Detection, error) {
	if err := ctx.Err(); err != nil {
		return Detection{}, err
	}

	size := imaging.SizeOf(img)
	var mask *image.Gray
	switch c.binarize {
	case BinarizeBrightness:
		mask = BrightnessMask(img)
	default:
		gray := imaging.Grayscale(img)
		mask = OtsuMask(imaging.ToGray(blur.Gaussian(gray, blurRadius)))
	}

	comps, _ := LabelComponents(mask)
	best, ok := selectPage(comps, size)
	if !ok {
		c.log.WithField("components", len(comps)).Debug("no qualifying component")
		return Detection{Strategy: StrategyConnectedComponent}, nil
	}

	b := best.Bounds
	x, y := float64(b.Min.X), float64(b.Min.Y)
	bw, bh := float64(b.Dx()), float64(b.Dy())
	corners, err := geometry.SortCorners([]geometry.Point{
		geometry.Pt(x, y),
		geometry.Pt(x, y+bh),
		geometry.Pt(x+bw, y),
		geometry.Pt(x+bw, y+bh),
	})
	if err != nil {
		return Detection{}, err
	}

	quad := geometry.Quadrilateral{Corners: corners, Size: size}
	if quad.IsDegenerate() {
		return Detection{Strategy: StrategyConnectedComponent}, nil
	}

	c.log.WithFields(logrus.Fields{
		"area":  best.Area,
		"fill":  best.FillRatio(),
		"quad":  quad.String(),
		"label": best.Label,
	}).Debug("component accepted")
	return Detection{Strategy: StrategyConnectedComponent, Quad: &quad}, nil
}

// selectPage applies the size, fill and centring criteria and returns the
// largest qualifying component.
func selectPage(comps []Component, size geometry.Size) (Component, bool) {
	w, h := float64(size.Width), float64(size.Height)
	minArea := size.Width * size.Height / 8

	var best Component
	found := false
	for _, comp := range comps {
		if comp.Area <= minArea || (found && comp.Area <= best.Area) {
			continue
		}
		if comp.FillRatio() < 8 {
			continue
		}
		if math.Abs(w/2-comp.Centroid.X) >= w/4 || math.Abs(h/2-comp.Centroid.Y) >= h/4 {
			continue
		}
		best, found = comp, true
	}
	return best, found
}
