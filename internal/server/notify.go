package server

import (
	"github.com/ironsheep/docscan-mcp/internal/frame"
)

// Notification methods pushed to the client.
const (
	methodDocumentDetected = "notifications/document/detected"
	methodProcessorBusy    = "notifications/document/busy"
)

// notifier is the frame.Sink that turns controller reports into MCP
// notifications.
type notifier struct {
	s *Server
}

func (n *notifier) RectangleDetected(report frame.PreviewReport) {
	n.s.write(&MCPNotification{
		JSONRPC: "2.0",
		Method:  methodDocumentDetected,
		Params:  report,
	})
}

// CaptureProcessed only logs; captures answer their own tool call.
func (n *notifier) CaptureProcessed(report frame.CaptureReport) {
	n.s.log.WithField("frame_id", report.FrameID).Debug("capture delivered")
}

func (n *notifier) SetProcessorBusy(busy bool) {
	n.s.write(&MCPNotification{
		JSONRPC: "2.0",
		Method:  methodProcessorBusy,
		Params:  map[string]interface{}{"busy": busy},
	})
}
