package frame

import (
	"image"

	"github.com/ironsheep/docscan-mcp/internal/detection"
	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/ocr"
)

// Sink receives the outcome of every frame the controller accepts.
// Implementations are called from the controller's worker goroutine and
// must not block for long.
type Sink interface {
	// RectangleDetected is called once per processed preview frame, whether
	// or not a page was found.
	RectangleDetected(report PreviewReport)

	// CaptureProcessed is called once per successful capture.
	CaptureProcessed(report CaptureReport)

	// SetProcessorBusy mirrors the admission token: true when a preview
	// frame is admitted, false once it has been reported.
	SetProcessorBusy(busy bool)
}

// PreviewReport is the result of one preview frame.
type PreviewReport struct {
	FrameID   string             `json:"frame_id"`
	SessionID string             `json:"session_id"`
	Detected  bool               `json:"detected"`
	Strategy  detection.Strategy `json:"strategy,omitempty"`

	// Quad is scaled to the oriented frame's full size.
	Quad *geometry.Quadrilateral `json:"quadrilateral,omitempty"`
	Text *ocr.Result             `json:"text,omitempty"`

	// Error is set when the frame failed. A failed frame is also reported
	// as not detected.
	Error string `json:"error,omitempty"`
}

// CaptureReport is the result of a capture or explicit-corner crop.
type CaptureReport struct {
	FrameID string `json:"frame_id"`

	// Image is the rectified (or uncropped) page after filtering.
	Image *image.NRGBA  `json:"-"`
	Size  geometry.Size `json:"size"`

	// OriginalSize is the oriented source frame's size.
	OriginalSize geometry.Size `json:"original_size"`

	// Quad is the outline used for rectification in source coordinates,
	// nil when the full frame was returned.
	Quad *geometry.Quadrilateral `json:"quadrilateral,omitempty"`
}

// Rectified reports whether a quadrilateral was applied.
func (r CaptureReport) Rectified() bool { return r.Quad != nil }

// DiscardSink drops every report.
type DiscardSink struct{}

func (DiscardSink) RectangleDetected(PreviewReport) {}
func (DiscardSink) CaptureProcessed(CaptureReport)  {}
func (DiscardSink) SetProcessorBusy(bool)           {}
