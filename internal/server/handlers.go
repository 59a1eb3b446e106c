package server

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"runtime/debug"
	"time"

	"github.com/ironsheep/docscan-mcp/internal/detection"
	scanerr "github.com/ironsheep/docscan-mcp/internal/errors"
	"github.com/ironsheep/docscan-mcp/internal/frame"
	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "document_preview").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Argument errors return JSON-RPC code -32602, every other tool failure
// -32000. The error text is carried in data.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	log := s.log.WithField("tool", params.Name)
	start := time.Now()
	result, err := s.runTool(ctx, params.Name, params.Arguments)
	if err != nil {
		log.WithError(err).WithField("kind", scanerr.KindOf(err)).Warn("tool call failed")
		if scanerr.IsKind(err, scanerr.KindInvalidArgument) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	log.WithField("elapsed", time.Since(start)).Debug("tool call finished")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// runTool calls executeTool and reports a panic as an ordinary error.
func (s *Server) runTool(ctx context.Context, name string, args json.RawMessage) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.WithField("tool", name).Errorf("tool panicked: %v\n%s", r, debug.Stack())
			result, err = nil, fmt.Errorf("tool %s panicked: %v", name, r)
		}
	}()
	return s.executeTool(ctx, name, args)
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Frame source
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Scanning
	case "document_preview":
		return s.handleDocumentPreview(ctx, args)
	case "document_capture":
		return s.handleDocumentCapture(ctx, args)
	case "document_crop":
		return s.handleDocumentCrop(ctx, args)
	case "document_find":
		return s.handleDocumentFind(ctx, args)
	case "document_edges":
		return s.handleDocumentEdges(args)
	case "document_overlay":
		return s.handleDocumentOverlay(ctx, args)
	case "document_session":
		return s.handleDocumentSession(args)

	default:
		return nil, scanerr.NewInvalidArgument(fmt.Sprintf("unknown tool: %s", name), nil)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments; missing arguments decode as {}.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return scanerr.NewInvalidArgument("malformed tool arguments", err)
	}
	return nil
}

// imageSource names a frame either by absolute path (optionally a file://
// URI) or by inline base64 data.
type imageSource struct {
	Path string `json:"path"`
	Data string `json:"data,omitempty"`
}

func (s *Server) loadImage(src imageSource) (image.Image, error) {
	if src.Data != "" {
		return imaging.DecodeBase64(src.Data)
	}
	path, err := imaging.NormalizePath(src.Path)
	if err != nil {
		return nil, err
	}
	return s.cache.Load(path)
}

// rotationArg is the reported device rotation. Absent means 90, the
// sensor's native orientation, so files from disk pass through untouched.
type rotationArg struct {
	Rotation *int `json:"rotation,omitempty"`
}

func (r rotationArg) value() imaging.Rotation {
	if r.Rotation == nil {
		return imaging.Rotate90
	}
	return imaging.Rotation(*r.Rotation)
}

func (s *Server) filterOrDefault(name string) (imaging.Filter, error) {
	if name == "" {
		return s.cfg.Filter, nil
	}
	return imaging.ParseFilter(name)
}

// === Frame Source Handlers ===

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageSource
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	path, err := imaging.NormalizePath(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, path)
}

type dimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageSource
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadImage(a)
	if err != nil {
		return nil, err
	}
	size := imaging.SizeOf(img)
	return &dimensionsResult{Width: size.Width, Height: size.Height}, nil
}

// === Scanning Handlers ===

type documentPreviewArgs struct {
	imageSource
	rotationArg
}

type previewResult struct {
	FrameID  string `json:"frame_id"`
	Accepted bool   `json:"accepted"`
}

func (s *Server) handleDocumentPreview(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a documentPreviewArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadImage(a.imageSource)
	if err != nil {
		return nil, err
	}
	id, accepted := s.controller.SubmitPreview(ctx, img, a.value())
	return &previewResult{FrameID: id, Accepted: accepted}, nil
}

type documentCaptureArgs struct {
	imageSource
	rotationArg
	Filter string `json:"filter,omitempty"`
}

type captureResult struct {
	FrameID      string                  `json:"frame_id"`
	Rectified    bool                    `json:"rectified"`
	Quad         *geometry.Quadrilateral `json:"quadrilateral,omitempty"`
	OriginalSize geometry.Size           `json:"original_size"`
	Image        *imaging.EncodedImage   `json:"image"`
}

func (s *Server) handleDocumentCapture(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a documentCaptureArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	filter, err := s.filterOrDefault(a.Filter)
	if err != nil {
		return nil, err
	}
	img, err := s.loadImage(a.imageSource)
	if err != nil {
		return nil, err
	}

	report, err := s.controller.Capture(ctx, img, a.value(), filter)
	if err != nil {
		return nil, err
	}
	return s.captureResult(report)
}

type documentCropArgs struct {
	imageSource
	TopLeft     *geometry.Point `json:"top_left"`
	TopRight    *geometry.Point `json:"top_right"`
	BottomRight *geometry.Point `json:"bottom_right"`
	BottomLeft  *geometry.Point `json:"bottom_left"`
	Filter      string          `json:"filter,omitempty"`
}

func (a documentCropArgs) corners() ([4]geometry.Point, error) {
	pts := [4]*geometry.Point{a.TopLeft, a.TopRight, a.BottomRight, a.BottomLeft}
	var out [4]geometry.Point
	for i, p := range pts {
		if p == nil {
			return out, scanerr.NewInvalidArgument("top_left, top_right, bottom_right and bottom_left are required", nil)
		}
		out[i] = *p
	}
	return out, nil
}

func (s *Server) handleDocumentCrop(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a documentCropArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	corners, err := a.corners()
	if err != nil {
		return nil, err
	}
	filter, err := s.filterOrDefault(a.Filter)
	if err != nil {
		return nil, err
	}
	img, err := s.loadImage(a.imageSource)
	if err != nil {
		return nil, err
	}

	report, err := s.controller.Crop(ctx, img, corners, filter)
	if err != nil {
		return nil, err
	}
	return s.captureResult(report)
}

func (s *Server) captureResult(report *frame.CaptureReport) (*captureResult, error) {
	encoded, err := imaging.EncodeJPEG(report.Image, s.cfg.JPEGQuality)
	if err != nil {
		return nil, err
	}
	return &captureResult{
		FrameID:      report.FrameID,
		Rectified:    report.Rectified(),
		Quad:         report.Quad,
		OriginalSize: report.OriginalSize,
		Image:        encoded,
	}, nil
}

type documentFindArgs struct {
	imageSource
	rotationArg
}

type findResult struct {
	Found    bool                    `json:"found"`
	Strategy detection.Strategy      `json:"strategy,omitempty"`
	Quad     *geometry.Quadrilateral `json:"quadrilateral,omitempty"`
	Text     string                  `json:"text,omitempty"`
}

func (s *Server) handleDocumentFind(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a documentFindArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadImage(a.imageSource)
	if err != nil {
		return nil, err
	}

	det, err := s.controller.Detect(ctx, img, a.value())
	if err != nil && !scanerr.IsKind(err, scanerr.KindNoCandidate) {
		return nil, err
	}
	res := &findResult{Found: det.Found(), Strategy: det.Strategy, Quad: det.Quad}
	if det.Text != nil {
		res.Text = det.Text.Text
	}
	return res, nil
}

type documentEdgesArgs struct {
	imageSource
	rotationArg
}

// handleDocumentEdges returns the boundary map the edge-contour strategy
// traces, at working resolution.
func (s *Server) handleDocumentEdges(args json.RawMessage) (interface{}, error) {
	var a documentEdgesArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.loadImage(a.imageSource)
	if err != nil {
		return nil, err
	}
	work := imaging.ScaleToHeight(imaging.Normalize(img, a.value()), s.cfg.WorkingHeight)
	return imaging.EncodePNG(detection.EdgeMap(work))
}

type documentOverlayArgs struct {
	imageSource
	rotationArg
	Color string `json:"color,omitempty"`
}

type overlayResult struct {
	Found bool                    `json:"found"`
	Quad  *geometry.Quadrilateral `json:"quadrilateral,omitempty"`
	Image *imaging.EncodedImage   `json:"image"`
}

// handleDocumentOverlay runs detection once and draws the outline onto the
// oriented frame. Without a page the frame is returned unmarked.
func (s *Server) handleDocumentOverlay(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a documentOverlayArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	style := imaging.DefaultOutlineStyle()
	if a.Color != "" {
		c, err := imaging.ParseHexColor(a.Color)
		if err != nil {
			return nil, err
		}
		style.Color = c
	}
	img, err := s.loadImage(a.imageSource)
	if err != nil {
		return nil, err
	}

	det, err := s.controller.Detect(ctx, img, a.value())
	if err != nil && !scanerr.IsKind(err, scanerr.KindNoCandidate) {
		return nil, err
	}

	var marked image.Image = imaging.Normalize(img, a.value())
	if det.Found() {
		marked = imaging.DrawOutline(marked, det.Quad.Corners, style)
	}
	encoded, err := imaging.EncodePNG(marked)
	if err != nil {
		return nil, err
	}
	return &overlayResult{Found: det.Found(), Quad: det.Quad, Image: encoded}, nil
}

type documentSessionArgs struct {
	Reset bool `json:"reset"`
}

type sessionResult struct {
	SessionID  string                  `json:"session_id"`
	Quad       *geometry.Quadrilateral `json:"quadrilateral,omitempty"`
	UpdatedAt  *time.Time              `json:"updated_at,omitempty"`
	Strategies []detection.Strategy    `json:"strategies"`
	Stats      frame.Stats             `json:"stats"`
}

func (s *Server) handleDocumentSession(args json.RawMessage) (interface{}, error) {
	var a documentSessionArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	session := s.controller.Session()
	if a.Reset {
		session.Reset()
		s.log.WithField("session_id", session.ID()).Info("session reset")
	}

	res := &sessionResult{
		SessionID:  session.ID(),
		Strategies: s.chain.Strategies(),
		Stats:      s.controller.Stats(),
	}
	if quad, ok := session.Snapshot(); ok {
		updated := session.UpdatedAt()
		res.Quad = &quad
		res.UpdatedAt = &updated
	}
	return res, nil
}
