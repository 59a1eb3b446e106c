package ocr

import (
	"context"
	"image"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
)

// Recognizer is the OCR collaborator. Implementations must be safe for
// concurrent use and should honour ctx cancellation.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (*Result, error)
}

// Result is the recognised text of one frame.
type Result struct {
	// Text is all recognised text with the recogniser's own spacing and
	// newlines.
	Text string `json:"text"`

	// Blocks is the block/line/element structure. May be empty even when
	// Text is not.
	Blocks []TextBlock `json:"blocks"`
}

// TextBlock is a paragraph-level region.
type TextBlock struct {
	Text       string          `json:"text"`
	Corners    []geometry.Point `json:"corners"`
	Confidence float64         `json:"confidence"`
	Lines      []TextLine      `json:"lines,omitempty"`
}

// TextLine is a single line inside a block.
type TextLine struct {
	Text       string          `json:"text"`
	Corners    []geometry.Point `json:"corners"`
	Confidence float64         `json:"confidence"`
	Elements   []TextElement   `json:"elements,omitempty"`
}

// TextElement is a single word.
type TextElement struct {
	Text       string          `json:"text"`
	Corners    []geometry.Point `json:"corners"`
	Confidence float64         `json:"confidence"`
}

// CornerPoints flattens the corner points of every block, which is the
// only geometric input the text-hint strategy needs.
func (r *Result) CornerPoints() []geometry.Point {
	if r == nil {
		return nil
	}
	var pts []geometry.Point
	for _, b := range r.Blocks {
		pts = append(pts, b.Corners...)
	}
	return pts
}

// Empty reports whether nothing was recognised.
func (r *Result) Empty() bool {
	return r == nil || (r.Text == "" && len(r.Blocks) == 0)
}

// rectCorners returns the corners of r in TL, TR, BR, BL order.
func rectCorners(r image.Rectangle) []geometry.Point {
	x1, y1 := float64(r.Min.X), float64(r.Min.Y)
	x2, y2 := float64(r.Max.X), float64(r.Max.Y)
	return []geometry.Point{
		geometry.Pt(x1, y1),
		geometry.Pt(x2, y1),
		geometry.Pt(x2, y2),
		geometry.Pt(x1, y2),
	}
}
