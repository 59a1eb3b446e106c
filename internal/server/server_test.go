package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docscan-mcp/internal/config"
	"github.com/ironsheep/docscan-mcp/internal/detection"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func testConfig() *config.Config {
	return &config.Config{
		LogLevel:      "info",
		LogFormat:     "text",
		Strategies:    []detection.Strategy{detection.StrategyEdgeContour},
		Binarize:      detection.BinarizeOtsu,
		WorkingHeight: 500,
		OCRLanguage:   "eng",
		OCRTimeout:    time.Second,
		Filter:        imaging.FilterNone,
		JPEGQuality:   imaging.DefaultJPEGQuality,
		CacheSize:     imaging.DefaultFrameCacheSize,
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := New(testConfig(), nil, quietLogger())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s
}

func TestNew(t *testing.T) {
	s := newTestServer(t)
	if s.cache == nil || s.controller == nil || s.chain == nil {
		t.Fatal("New() left the server partially initialised")
	}

	cfg := testConfig()
	cfg.Strategies = []detection.Strategy{detection.StrategyTextHint}
	if _, err := New(cfg, nil, quietLogger()); err == nil {
		t.Error("text-hint without a recognizer should fail")
	}
}

func TestMCPRequest_Unmarshal(t *testing.T) {
	tests := []struct {
		name       string
		json       string
		wantID     interface{}
		wantMethod string
	}{
		{
			"string id",
			`{"jsonrpc":"2.0","id":"test-1","method":"tools/list"}`,
			"test-1",
			"tools/list",
		},
		{
			"number id",
			`{"jsonrpc":"2.0","id":42,"method":"ping"}`,
			float64(42), // JSON numbers decode as float64
			"ping",
		},
		{
			"null id",
			`{"jsonrpc":"2.0","id":null,"method":"initialize"}`,
			nil,
			"initialize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req MCPRequest
			if err := json.Unmarshal([]byte(tt.json), &req); err != nil {
				t.Fatalf("Failed to unmarshal: %v", err)
			}
			if req.ID != tt.wantID {
				t.Errorf("ID: got %v (%T), want %v (%T)", req.ID, req.ID, tt.wantID, tt.wantID)
			}
			if req.Method != tt.wantMethod {
				t.Errorf("Method: got %s, want %s", req.Method, tt.wantMethod)
			}
		})
	}
}

func TestHandleRequest_Initialize(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(bgCtx, &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "initialize"})

	if resp == nil || resp.Error != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	result := resp.Result.(map[string]interface{})
	info := result["serverInfo"].(map[string]interface{})
	if info["name"] != "docscan-mcp" {
		t.Errorf("serverInfo.name: got %v", info["name"])
	}
	if result["protocolVersion"] != "2024-11-05" {
		t.Errorf("protocolVersion: got %v", result["protocolVersion"])
	}
}

func TestHandleRequest_Routing(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		method   string
		wantNil  bool
		wantCode int
	}{
		{"ping", false, 0},
		{"tools/list", false, 0},
		{"notifications/initialized", true, 0},
		{"resources/list", false, -32601},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			resp := s.handleRequest(bgCtx, &MCPRequest{JSONRPC: "2.0", ID: 7, Method: tt.method})
			if tt.wantNil {
				if resp != nil {
					t.Errorf("expected no response, got %+v", resp)
				}
				return
			}
			if resp == nil {
				t.Fatal("expected a response")
			}
			if resp.ID != 7 {
				t.Errorf("ID: got %v", resp.ID)
			}
			if tt.wantCode == 0 && resp.Error != nil {
				t.Errorf("unexpected error: %+v", resp.Error)
			}
			if tt.wantCode != 0 && (resp.Error == nil || resp.Error.Code != tt.wantCode) {
				t.Errorf("expected error %d, got %+v", tt.wantCode, resp.Error)
			}
		})
	}
}

func TestMCPNotification_Marshal(t *testing.T) {
	n := MCPNotification{JSONRPC: "2.0", Method: methodProcessorBusy, Params: map[string]interface{}{"busy": true}}
	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	if strings.Contains(string(data), `"id"`) {
		t.Errorf("notifications must not carry an id: %s", data)
	}
}

// serveLines runs Serve over the given requests and splits the output
// into responses keyed by id and notifications in arrival order.
func serveLines(t *testing.T, s *Server, requests ...string) (map[float64]map[string]interface{}, []map[string]interface{}) {
	t.Helper()
	var out bytes.Buffer
	if err := s.Serve(strings.NewReader(strings.Join(requests, "\n")+"\n"), &out); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}

	responses := make(map[float64]map[string]interface{})
	var notifications []map[string]interface{}
	sc := bufio.NewScanner(&out)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		var msg map[string]interface{}
		if err := json.Unmarshal(sc.Bytes(), &msg); err != nil {
			t.Fatalf("invalid output line %q: %v", sc.Text(), err)
		}
		if id, ok := msg["id"].(float64); ok {
			responses[id] = msg
		} else {
			notifications = append(notifications, msg)
		}
	}
	return responses, notifications
}

func toolCall(id int, name string, args map[string]interface{}) string {
	params, _ := json.Marshal(map[string]interface{}{"name": name, "arguments": args})
	return fmt.Sprintf(`{"jsonrpc":"2.0","id":%d,"method":"tools/call","params":%s}`, id, params)
}

func TestServe_PreviewThenCapture(t *testing.T) {
	s := newTestServer(t)
	path := createDocumentFile(t)

	responses, notifications := serveLines(t, s,
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`not json`,
		toolCall(2, "document_preview", map[string]interface{}{"path": path}),
		toolCall(3, "document_capture", map[string]interface{}{"path": path}),
		toolCall(4, "document_session", nil),
	)

	for id := 1.0; id <= 4; id++ {
		if resp, ok := responses[id]; !ok || resp["error"] != nil {
			t.Fatalf("response %v: got %v", id, resp)
		}
	}

	var preview previewResult
	decodeContent(t, responses[2], &preview)
	if !preview.Accepted || preview.FrameID == "" {
		t.Errorf("preview: got %+v", preview)
	}

	var capture captureResult
	decodeContent(t, responses[3], &capture)
	if !capture.Rectified {
		t.Error("capture should use the outline from the preview")
	}
	if capture.Image == nil || capture.Image.MimeType != "image/jpeg" {
		t.Errorf("capture image: got %+v", capture.Image)
	}

	var session sessionResult
	decodeContent(t, responses[4], &session)
	if session.Quad == nil || session.Stats.Processed != 1 {
		t.Errorf("session: got %+v", session)
	}

	var methods []string
	var detected map[string]interface{}
	for _, n := range notifications {
		methods = append(methods, n["method"].(string))
		if n["method"] == methodDocumentDetected {
			detected = n["params"].(map[string]interface{})
		}
	}
	if len(methods) != 3 || methods[0] != methodProcessorBusy || methods[1] != methodDocumentDetected || methods[2] != methodProcessorBusy {
		t.Fatalf("notifications: got %v", methods)
	}
	if detected["detected"] != true || detected["frame_id"] != preview.FrameID {
		t.Errorf("detected notification: got %v", detected)
	}
}
