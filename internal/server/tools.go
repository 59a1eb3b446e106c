package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path (or file:// URI) of the image file",
	}
}

func dataProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Base64 image data, optionally as a data: URI. Used instead of path when set",
	}
}

func rotationProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"enum":        []int{0, 90, 180, 270},
		"description": "Device rotation reported with the frame. 90 is the sensor's native orientation. Default 90",
		"default":     90,
	}
}

func filterProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"none", "grayscale", "bw", "color"},
		"description": "Filter applied to the output page. Defaults to the server's DOCSCAN_FILTER",
	}
}

func pointProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"x": map[string]interface{}{"type": "number"},
			"y": map[string]interface{}{"type": "number"},
		},
		"required": []string{"x", "y"},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Frame source
		{
			Name:        "image_load",
			Description: "Load an image file into the frame cache and return its dimensions, format and channel count. The file is decoded again when it changes on disk.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"data": dataProperty(),
				},
			},
		},

		// Scanning
		{
			Name:        "document_preview",
			Description: "Submit a live preview frame for page detection. Returns immediately; the result arrives as a notifications/document/detected notification. Frames submitted while another is being processed are dropped (accepted=false).",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":     pathProperty(),
					"data":     dataProperty(),
					"rotation": rotationProperty(),
				},
			},
		},
		{
			Name:        "document_capture",
			Description: "Rectify a full-resolution capture using the page outline accepted by the last successful preview. Without an outline the whole frame is returned. Returns a base64 JPEG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":     pathProperty(),
					"data":     dataProperty(),
					"rotation": rotationProperty(),
					"filter":   filterProperty(),
				},
			},
		},
		{
			Name:        "document_crop",
			Description: "Rectify an image with explicit corner points, in image pixel coordinates. Does not use or change the preview session. Returns a base64 JPEG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":         pathProperty(),
					"data":         dataProperty(),
					"top_left":     pointProperty("Top-left corner of the page"),
					"top_right":    pointProperty("Top-right corner of the page"),
					"bottom_right": pointProperty("Bottom-right corner of the page"),
					"bottom_left":  pointProperty("Bottom-left corner of the page"),
					"filter":       filterProperty(),
				},
				"required": []string{"top_left", "top_right", "bottom_right", "bottom_left"},
			},
		},
		{
			Name:        "document_find",
			Description: "Run page detection once on an image and return the outline in image coordinates, or found=false. Does not change the preview session.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":     pathProperty(),
					"data":     dataProperty(),
					"rotation": rotationProperty(),
				},
			},
		},
		{
			Name:        "document_edges",
			Description: "Return the binarized boundary map the edge-contour detector traces, at working resolution, as a base64 PNG. Useful to see why a page was or was not found.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":     pathProperty(),
					"data":     dataProperty(),
					"rotation": rotationProperty(),
				},
			},
		},
		{
			Name:        "document_overlay",
			Description: "Run page detection once and return the oriented frame with the outline and corner labels drawn on it, as a base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":     pathProperty(),
					"data":     dataProperty(),
					"rotation": rotationProperty(),
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Outline color as #RRGGBB or #RRGGBBAA. Default #00FF00",
					},
				},
			},
		},
		{
			Name:        "document_session",
			Description: "Show the preview session: the last accepted page outline, the detector chain and processed/dropped/failed frame counts. Set reset to forget the outline.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"reset": map[string]interface{}{
						"type":        "boolean",
						"description": "Clear the accepted outline",
						"default":     false,
					},
				},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
