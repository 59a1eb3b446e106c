package detection

import (
	"context"
	"errors"
	"testing"

	scanerr "github.com/ironsheep/docscan-mcp/internal/errors"
	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/ocr"
)

func TestParseStrategies(t *testing.T) {
	tests := []struct {
		in      string
		want    []Strategy
		wantErr bool
	}{
		{"edge-contour", []Strategy{StrategyEdgeContour}, false},
		{"text-hint, edge-contour", []Strategy{StrategyTextHint, StrategyEdgeContour}, false},
		{"Connected-Component,,", []Strategy{StrategyConnectedComponent}, false},
		{"", nil, true},
		{"edge-contour,hough", nil, true},
		{"edge-contour,edge-contour", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStrategies(tt.in)
			if tt.wantErr {
				if !scanerr.IsKind(err, scanerr.KindInvalidArgument) {
					t.Errorf("expected invalid_argument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStrategies failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("position %d: got %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBuild(t *testing.T) {
	chain, err := Build([]Strategy{StrategyTextHint, StrategyEdgeContour, StrategyConnectedComponent}, BinarizeOtsu, &fakeRecognizer{}, quietLogger())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	got := chain.Strategies()
	if len(got) != 3 || got[0] != StrategyTextHint || got[2] != StrategyConnectedComponent {
		t.Errorf("strategies: got %v", got)
	}

	if _, err := Build([]Strategy{StrategyTextHint}, BinarizeOtsu, nil, quietLogger()); !scanerr.IsKind(err, scanerr.KindInvalidArgument) {
		t.Errorf("text-hint without recognizer: expected invalid_argument, got %v", err)
	}
}

func TestChain_Extract(t *testing.T) {
	quad := &geometry.Quadrilateral{
		Corners: [4]geometry.Point{geometry.Pt(1, 1), geometry.Pt(9, 1), geometry.Pt(9, 9), geometry.Pt(1, 9)},
		Size:    geometry.Size{Width: 10, Height: 10},
	}
	text := &ocr.Result{Text: "hello"}

	t.Run("first hit wins", func(t *testing.T) {
		a := &stubExtractor{name: StrategyEdgeContour, det: Detection{Strategy: StrategyEdgeContour, Quad: quad}}
		b := &stubExtractor{name: StrategyConnectedComponent}

		det, err := NewChain(quietLogger(), a, b).Extract(context.Background(), grayFrame(10, 10, 0))
		if err != nil {
			t.Fatalf("Extract failed: %v", err)
		}
		if det.Quad != quad || det.Strategy != StrategyEdgeContour {
			t.Errorf("got %+v", det)
		}
		if b.calls != 0 {
			t.Error("second extractor should not run")
		}
	})

	t.Run("ocr failure falls through with no text", func(t *testing.T) {
		a := &stubExtractor{name: StrategyTextHint, err: scanerr.NewExternalServiceError("ocr down", errors.New("boom"))}
		b := &stubExtractor{name: StrategyEdgeContour, det: Detection{Strategy: StrategyEdgeContour, Quad: quad}}

		det, err := NewChain(quietLogger(), a, b).Extract(context.Background(), grayFrame(10, 10, 0))
		if err != nil {
			t.Fatalf("Extract failed: %v", err)
		}
		if !det.Found() || det.Strategy != StrategyEdgeContour {
			t.Errorf("got %+v", det)
		}
	})

	t.Run("text is carried to the geometric hit", func(t *testing.T) {
		a := &stubExtractor{name: StrategyTextHint, det: Detection{Strategy: StrategyTextHint, Text: text}}
		b := &stubExtractor{name: StrategyEdgeContour, det: Detection{Strategy: StrategyEdgeContour, Quad: quad}}

		det, err := NewChain(quietLogger(), a, b).Extract(context.Background(), grayFrame(10, 10, 0))
		if err != nil {
			t.Fatalf("Extract failed: %v", err)
		}
		if det.Text != text {
			t.Errorf("text: got %+v", det.Text)
		}
	})

	t.Run("nothing found keeps text", func(t *testing.T) {
		a := &stubExtractor{name: StrategyTextHint, det: Detection{Strategy: StrategyTextHint, Text: text}}
		b := &stubExtractor{name: StrategyEdgeContour}

		det, err := NewChain(quietLogger(), a, b).Extract(context.Background(), grayFrame(10, 10, 0))
		if err != nil {
			t.Fatalf("Extract failed: %v", err)
		}
		if det.Found() {
			t.Error("expected no quadrilateral")
		}
		if det.Text != text || det.Strategy != StrategyEdgeContour {
			t.Errorf("got %+v", det)
		}
	})

	t.Run("malformed input stops the chain", func(t *testing.T) {
		a := &stubExtractor{name: StrategyEdgeContour, err: scanerr.NewMalformedInput("3 points", nil)}
		b := &stubExtractor{name: StrategyConnectedComponent, det: Detection{Quad: quad}}

		_, err := NewChain(quietLogger(), a, b).Extract(context.Background(), grayFrame(10, 10, 0))
		if !scanerr.IsKind(err, scanerr.KindMalformedInput) {
			t.Errorf("expected malformed_input, got %v", err)
		}
		if b.calls != 0 {
			t.Error("second extractor should not run")
		}
	})
}

func TestAllStrategies_DarkFrame(t *testing.T) {
	frame := grayFrame(1000, 1000, 8)
	extractors := []Extractor{
		NewEdgeContour(quietLogger()),
		NewConnectedComponent(BinarizeOtsu, quietLogger()),
		NewConnectedComponent(BinarizeBrightness, quietLogger()),
		NewTextHint(&fakeRecognizer{result: &ocr.Result{}}, quietLogger()),
	}

	for _, e := range extractors {
		det, err := e.Extract(context.Background(), frame)
		if err != nil {
			t.Fatalf("%s: Extract failed: %v", e.Name(), err)
		}
		if det.Found() {
			t.Errorf("%s: expected no quadrilateral, got %v", e.Name(), det.Quad)
		}
	}
}
