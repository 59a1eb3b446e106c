package detection

import (
	"context"
	"errors"
	"math"
	"testing"

	scanerr "github.com/ironsheep/docscan-mcp/internal/errors"
	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/ocr"
)

func block(text string, x1, y1, x2, y2 float64) ocr.TextBlock {
	return ocr.TextBlock{
		Text: text,
		Corners: []geometry.Point{
			geometry.Pt(x1, y1), geometry.Pt(x2, y1), geometry.Pt(x2, y2), geometry.Pt(x1, y2),
		},
	}
}

func TestTextHint_Extract(t *testing.T) {
	rec := &fakeRecognizer{result: &ocr.Result{
		Text: "INVOICE\nTotal 42",
		Blocks: []ocr.TextBlock{
			block("INVOICE", 250, 320, 600, 360),
			block("Total 42", 300, 600, 750, 660),
		},
	}}

	det, err := NewTextHint(rec, quietLogger()).Extract(context.Background(), grayFrame(1000, 1000, 200))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if !det.Found() {
		t.Fatal("expected a quadrilateral")
	}
	if det.Text == nil || det.Text.Text != "INVOICE\nTotal 42" {
		t.Errorf("text payload not forwarded: %+v", det.Text)
	}

	want := [4]geometry.Point{geometry.Pt(250, 320), geometry.Pt(750, 320), geometry.Pt(750, 660), geometry.Pt(250, 660)}
	assertCornersNear(t, det.Quad.Corners, want, 1e-6)
}

func TestTextHint_NoText(t *testing.T) {
	rec := &fakeRecognizer{result: &ocr.Result{}}

	det, err := NewTextHint(rec, quietLogger()).Extract(context.Background(), grayFrame(1000, 1000, 10))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if det.Found() {
		t.Errorf("expected no quadrilateral, got %v", det.Quad)
	}
	if det.Text != nil {
		t.Errorf("expected no text payload, got %+v", det.Text)
	}
}

func TestTextHint_RecognizerFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"plain error", errors.New("engine crashed")},
		{"already classified", scanerr.NewExternalServiceError("timeout", context.DeadlineExceeded)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &fakeRecognizer{err: tt.err}
			_, err := NewTextHint(rec, quietLogger()).Extract(context.Background(), grayFrame(10, 10, 0))
			if !scanerr.IsKind(err, scanerr.KindExternalService) {
				t.Errorf("expected external_service, got %v", err)
			}
		})
	}
}

func TestQuadFromTextCorners(t *testing.T) {
	size := geometry.Size{Width: 500, Height: 500}

	t.Run("empty", func(t *testing.T) {
		if _, ok := QuadFromTextCorners(nil, size); ok {
			t.Error("expected no quadrilateral")
		}
	})

	t.Run("single line has no area", func(t *testing.T) {
		pts := []geometry.Point{geometry.Pt(10, 10), geometry.Pt(100, 10), geometry.Pt(200, 10)}
		if _, ok := QuadFromTextCorners(pts, size); ok {
			t.Error("expected no quadrilateral for collinear points")
		}
	})

	t.Run("rotated text keeps its tilt", func(t *testing.T) {
		// A 200x60 text area rotated 10 degrees about (250,250).
		angle := 10 * math.Pi / 180
		cos, sin := math.Cos(angle), math.Sin(angle)
		var pts []geometry.Point
		for _, c := range []geometry.Point{geometry.Pt(-100, -30), geometry.Pt(100, -30), geometry.Pt(100, 30), geometry.Pt(-100, 30), geometry.Pt(0, 0)} {
			pts = append(pts, geometry.Pt(250+c.X*cos-c.Y*sin, 250+c.X*sin+c.Y*cos))
		}

		quad, ok := QuadFromTextCorners(pts, size)
		if !ok {
			t.Fatal("expected a quadrilateral")
		}
		if math.Abs(quad.Area()-12000) > 1e-6 {
			t.Errorf("area: got %v, want 12000", quad.Area())
		}
		if quad.TopRight().Y <= quad.TopLeft().Y {
			t.Errorf("top edge should slope down: %v -> %v", quad.TopLeft(), quad.TopRight())
		}
		if quad.Size != size {
			t.Errorf("size: got %v", quad.Size)
		}
	})
}
