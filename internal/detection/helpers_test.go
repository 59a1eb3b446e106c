package detection

import (
	"context"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
	"github.com/ironsheep/docscan-mcp/internal/ocr"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

// grayFrame creates a w x h frame filled with bg.
func grayFrame(w, h int, bg uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = bg
	}
	return g
}

// fillRect paints [x1,x2) x [y1,y2) with v.
func fillRect(g *image.Gray, x1, y1, x2, y2 int, v uint8) {
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			g.Pix[y*g.Stride+x] = v
		}
	}
}

// centeredDocument is the 1000x1000 frame with a bright 600x400 page in the
// middle of a dark background.
func centeredDocument() *image.Gray {
	g := grayFrame(1000, 1000, 30)
	fillRect(g, 200, 300, 800, 700, 220)
	return g
}

// warpedDocument paints a bright page onto quad in a dark w x h frame by
// mapping each pixel back through the homography.
func warpedDocument(w, h int, pageW, pageH float64, quad [4]geometry.Point) *image.Gray {
	page := [4]geometry.Point{geometry.Pt(0, 0), geometry.Pt(pageW, 0), geometry.Pt(pageW, pageH), geometry.Pt(0, pageH)}
	toPage := imaging.QuadToQuad(quad, page)

	g := grayFrame(w, h, 25)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := toPage.Map(geometry.Pt(float64(x), float64(y)))
			if p.X >= 0 && p.Y >= 0 && p.X <= pageW && p.Y <= pageH {
				g.Pix[y*g.Stride+x] = 230
			}
		}
	}
	return g
}

func assertCornersNear(t *testing.T, got [4]geometry.Point, want [4]geometry.Point, tol float64) {
	t.Helper()
	names := [4]string{"top-left", "top-right", "bottom-right", "bottom-left"}
	for i := range want {
		if math.Abs(got[i].X-want[i].X) > tol || math.Abs(got[i].Y-want[i].Y) > tol {
			t.Errorf("%s: got %v, want %v (±%.0f)", names[i], got[i], want[i], tol)
		}
	}
}

// fakeRecognizer returns a canned result or error.
type fakeRecognizer struct {
	result *ocr.Result
	err    error
	calls  int
}

func (f *fakeRecognizer) Recognize(ctx context.Context, img image.Image) (*ocr.Result, error) {
	f.calls++
	return f.result, f.err
}

// stubExtractor returns a canned detection or error.
type stubExtractor struct {
	name  Strategy
	det   Detection
	err   error
	calls int
}

func (s *stubExtractor) Name() Strategy { return s.name }

func (s *stubExtractor) Extract(ctx context.Context, img image.Image) (Detection, error) {
	s.calls++
	return s.det, s.err
}

var (
	white = color.NRGBA{230, 230, 230, 255}
	dark  = color.NRGBA{20, 20, 20, 255}
)
