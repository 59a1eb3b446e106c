package imaging

import (
	"image/color"
	"testing"

	scanerr "github.com/ironsheep/docscan-mcp/internal/errors"
)

func TestParseFilter(t *testing.T) {
	tests := []struct {
		in      string
		want    Filter
		wantErr bool
	}{
		{"", FilterNone, false},
		{"none", FilterNone, false},
		{"Grayscale", FilterGrayscale, false},
		{" bw ", FilterBlackWhite, false},
		{"color", FilterColor, false},
		{"sepia", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFilter(tt.in)
			if tt.wantErr {
				if !scanerr.IsKind(err, scanerr.KindInvalidArgument) {
					t.Errorf("expected invalid_argument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFilter failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestApplyFilter(t *testing.T) {
	src := Uniform(4, 4, color.NRGBA{R: 100, G: 150, B: 250, A: 255})

	tests := []struct {
		name   string
		filter Filter
		check  func(t *testing.T, c color.NRGBA)
	}{
		{
			"none copies",
			FilterNone,
			func(t *testing.T, c color.NRGBA) {
				if c != (color.NRGBA{R: 100, G: 150, B: 250, A: 255}) {
					t.Errorf("got %v", c)
				}
			},
		},
		{
			"grayscale equalizes channels",
			FilterGrayscale,
			func(t *testing.T, c color.NRGBA) {
				if c.R != c.G || c.G != c.B {
					t.Errorf("channels differ: %v", c)
				}
			},
		},
		{
			"color boosts and saturates",
			FilterColor,
			func(t *testing.T, c color.NRGBA) {
				want := color.NRGBA{R: 120, G: 180, B: 255, A: 255}
				if c != want {
					t.Errorf("got %v, want %v", c, want)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ApplyFilter(src, tt.filter)
			if out.Bounds() != src.Bounds() {
				t.Fatalf("bounds changed: %v", out.Bounds())
			}
			tt.check(t, out.NRGBAAt(1, 1))
		})
	}

	if src.NRGBAAt(0, 0) != (color.NRGBA{R: 100, G: 150, B: 250, A: 255}) {
		t.Error("source image was modified")
	}
}

func TestApplyFilter_BlackWhiteLiftsGrayscale(t *testing.T) {
	src := Uniform(3, 3, color.NRGBA{R: 60, G: 90, B: 30, A: 255})

	gray := ApplyFilter(src, FilterGrayscale).NRGBAAt(0, 0)
	bw := ApplyFilter(src, FilterBlackWhite).NRGBAAt(0, 0)
	if int(bw.R) != int(gray.R)+10 {
		t.Errorf("bw: got %d, want grayscale %d + 10", bw.R, gray.R)
	}

	white := Uniform(2, 2, color.White)
	if got := ApplyFilter(white, FilterBlackWhite).NRGBAAt(0, 0); got.R != 255 {
		t.Errorf("white should saturate at 255, got %d", got.R)
	}
}
