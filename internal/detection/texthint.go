package detection

import (
	"context"
	"image"

	"github.com/sirupsen/logrus"

	scanerr "github.com/ironsheep/docscan-mcp/internal/errors"
	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/ironsheep/docscan-mcp/internal/ocr"
)

// TextHint locates the page as the tightest rotated rectangle around all
// recognised text blocks.
type TextHint struct {
	recognizer ocr.Recognizer
	log        logrus.FieldLogger
}

// NewTextHint creates the text-hint strategy backed by rec.
func NewTextHint(rec ocr.Recognizer, log logrus.FieldLogger) *TextHint {
	return &TextHint{
		recognizer: rec,
		log:        log.WithField("strategy", StrategyTextHint),
	}
}

// Name implements Extractor.
func (t *TextHint) Name() Strategy { return StrategyTextHint }

// Extract recognises text in img and derives the quadrilateral from the
// block corners with QuadFromTextCorners. The recognised text is attached
// to the Detection whether or not a quadrilateral was found.
//
// # Errors
//
//   - external_service if the recogniser fails; callers treat this as no
//     detection for the frame
func (t *TextHint) Extract(ctx context.Context, img image.Image) (Detection, error) {
	res, err := t.recognizer.Recognize(ctx, img)
	if err != nil {
		if scanerr.IsKind(err, scanerr.KindExternalService) {
			return Detection{}, err
		}
		return Detection{}, scanerr.NewExternalServiceError("text recognition failed", err)
	}

	det := Detection{Strategy: StrategyTextHint}
	if !res.Empty() {
		det.Text = res
	}

	quad, ok := QuadFromTextCorners(res.CornerPoints(), imaging.SizeOf(img))
	if !ok {
		t.log.WithField("blocks", len(res.Blocks)).Debug("no text geometry")
		return det, nil
	}
	det.Quad = &quad
	return det, nil
}

// QuadFromTextCorners returns the sorted corners of the minimum-area
// rotated rectangle enclosing points, measured against size. It reports
// false for an empty point set or a rectangle with no area.
func QuadFromTextCorners(points []geometry.Point, size geometry.Size) (geometry.Quadrilateral, bool) {
	rect, ok := geometry.MinAreaRect(points)
	if !ok {
		return geometry.Quadrilateral{}, false
	}
	corners, err := geometry.SortCorners(rect[:])
	if err != nil {
		return geometry.Quadrilateral{}, false
	}
	quad := geometry.Quadrilateral{Corners: corners, Size: size}
	if quad.IsDegenerate() {
		return geometry.Quadrilateral{}, false
	}
	return quad, true
}
