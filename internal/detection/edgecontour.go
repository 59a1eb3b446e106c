package detection

import (
	"context"
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
)

const (
	// blurRadius approximates a 5x5 Gaussian kernel.
	blurRadius = 2.0

	// approxFactor is the polygon simplification tolerance as a fraction of
	// the contour's arc length.
	approxFactor = 0.02

	// minContourPixels skips specks that cannot be a page at any size.
	minContourPixels = 16
)

// EdgeContour finds the page as the largest traced contour whose simplified
// polygon passes the plausibility filter.
type EdgeContour struct {
	log logrus.FieldLogger
}

// NewEdgeContour creates the edge/contour strategy.
func NewEdgeContour(log logrus.FieldLogger) *EdgeContour {
	return &EdgeContour{log: log.WithField("strategy", StrategyEdgeContour)}
}

// Name implements Extractor.
func (e *EdgeContour) Name() Strategy { return StrategyEdgeContour }

// Extract runs grayscale, Gaussian blur, Otsu threshold and a boundary map,
// then walks the traced contours from largest to smallest area. Each
// contour is simplified with a tolerance of 2% of its arc length and reduced
// to four corners; the first set that passes IsPlausibleRectangle wins.
//
// A frame with no accepted contour is a normal negative result: the returned
// Detection has no quadrilateral and the error is nil.
func (e *EdgeContour) Extract(ctx context.Context, img image.Image) (Detection, error) {
	size := imaging.SizeOf(img)
	edges := EdgeMap(img)

	contours := FindContours(edges, minContourPixels)
	for i, c := range contours {
		if err := ctx.Err(); err != nil {
			return Detection{}, err
		}
		approx := geometry.ApproxPolygon(c.Points, approxFactor*geometry.ArcLength(c.Points))
		if len(approx) < 4 {
			continue
		}
		corners, err := geometry.SortCorners(approx)
		if err != nil {
			continue
		}
		if !geometry.IsPlausibleRectangle(corners, size) {
			continue
		}

		quad := geometry.Quadrilateral{Corners: corners, Size: size}
		e.log.WithFields(logrus.Fields{
			"contour":  i,
			"contours": len(contours),
			"vertices": len(approx),
			"quad":     quad.String(),
		}).Debug("contour accepted")
		return Detection{Strategy: StrategyEdgeContour, Quad: &quad}, nil
	}

	e.log.WithField("contours", len(contours)).Debug("no plausible contour")
	return Detection{Strategy: StrategyEdgeContour}, nil
}

// EdgeMap is the edge/contour strategy's preprocessing on its own: the
// outline of the Otsu-thresholded, blurred luminance of img.
func EdgeMap(img image.Image) *image.Gray {
	gray := imaging.Grayscale(img)
	blurred := imaging.ToGray(blur.Gaussian(gray, blurRadius))
	return imaging.BoundaryMap(OtsuMask(blurred))
}
