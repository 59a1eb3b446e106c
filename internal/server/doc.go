// Package server implements the MCP (Model Context Protocol) server for
// document scanning.
//
// The server speaks JSON-RPC 2.0 over stdio, one message per line:
//   - Input: requests on stdin
//   - Output: responses and notifications on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Frame source:
//   - image_load: Load a frame file and get metadata
//   - image_dimensions: Get width and height
//
// Scanning:
//   - document_preview: Submit a preview frame (result pushed as a notification)
//   - document_capture: Rectify a capture with the session's page outline
//   - document_crop: Rectify with explicit corners
//   - document_find: One-shot page detection
//   - document_edges: Boundary map used by edge-contour detection
//   - document_overlay: Frame with the detected outline drawn on it
//   - document_session: Inspect or reset the preview session
//
// Images are named by absolute path (file:// URIs accepted) or passed inline
// as base64 in a data argument.
//
// # Notifications
//
// Preview frames are processed asynchronously by a frame.Controller. Each
// admitted frame produces one notifications/document/detected message
// carrying a frame.PreviewReport, bracketed by notifications/document/busy
// messages with busy=true and busy=false.
//
// # Error Handling
//
// Tool errors are returned as JSON-RPC error responses:
//   - -32602 for unknown tools and bad arguments
//   - -32000 for every other failure
//
// The data field carries the error text, prefixed with its kind.
//
// # Usage
//
//	cfg, _ := config.LoadFromEnv()
//	srv, err := server.New(cfg, recognizer, log)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
