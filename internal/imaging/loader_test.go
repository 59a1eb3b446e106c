package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"golang.org/x/image/bmp"

	scanerr "github.com/ironsheep/docscan-mcp/internal/errors"
)

// writeTestImage encodes a uniform image as PNG at path.
func writeTestImage(t *testing.T, path string, width, height int, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
}

// createTestImage writes a uniform PNG into the test's temp dir and returns
// its path.
func createTestImage(t *testing.T, width, height int, c color.Color) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frame.png")
	writeTestImage(t, path, width, height, c)
	return path
}

func TestFrameCache_Load(t *testing.T) {
	cache := NewFrameCache(0)
	imgPath := createTestImage(t, 100, 100, color.RGBA{255, 0, 0, 255})

	img1, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	bounds := img1.Bounds()
	if bounds.Dx() != 100 || bounds.Dy() != 100 {
		t.Errorf("unexpected dimensions: got %dx%d, want 100x100", bounds.Dx(), bounds.Dy())
	}

	// Unchanged file is served from the cache
	img2, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if img1 != img2 {
		t.Error("second Load did not return cached image")
	}
}

func TestFrameCache_Load_ReloadsChangedFile(t *testing.T) {
	cache := NewFrameCache(0)
	imgPath := createTestImage(t, 40, 30, color.Black)

	first, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// A new frame written to the same path
	writeTestImage(t, imgPath, 80, 60, color.White)
	later := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(imgPath, later, later); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	second, err := cache.Load(imgPath)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if first == second {
		t.Fatal("changed file was served from the cache")
	}
	if second.Bounds().Dx() != 80 {
		t.Errorf("width: got %d, want 80", second.Bounds().Dx())
	}
	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}
}

func TestFrameCache_Load_Errors(t *testing.T) {
	invalid := filepath.Join(t.TempDir(), "invalid.png")
	if err := os.WriteFile(invalid, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"non-existent", "/nonexistent/path/to/image.png"},
		{"invalid data", invalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFrameCache(0).Load(tt.path)
			if !scanerr.IsKind(err, scanerr.KindIO) {
				t.Errorf("expected io error, got %v", err)
			}
		})
	}
}

func TestFrameCache_EvictAndClear(t *testing.T) {
	cache := NewFrameCache(0)
	a := createTestImage(t, 10, 10, color.White)
	b := createTestImage(t, 10, 10, color.Black)

	for _, p := range []string{a, b} {
		if _, err := cache.Load(p); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
	}

	cache.Evict(a)
	if cache.Len() != 1 {
		t.Errorf("after Evict: got %d entries, want 1", cache.Len())
	}

	// Unknown paths are ignored
	cache.Evict("/nonexistent/path")

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("after Clear: got %d entries, want 0", cache.Len())
	}
}

func TestFrameCache_DropsLeastRecentlyUsed(t *testing.T) {
	cache := NewFrameCache(2)
	a := createTestImage(t, 10, 10, color.White)
	b := createTestImage(t, 10, 10, color.Black)
	c := createTestImage(t, 10, 10, color.Gray{Y: 128})

	for _, p := range []string{a, b, a, c} {
		if _, err := cache.Load(p); err != nil {
			t.Fatalf("Load(%s) failed: %v", p, err)
		}
	}

	if cache.Len() != 2 {
		t.Fatalf("got %d entries, want 2", cache.Len())
	}
	for path, want := range map[string]bool{a: true, b: false, c: true} {
		if _, ok := cache.entries[path]; ok != want {
			t.Errorf("%s cached = %v, want %v", filepath.Base(filepath.Dir(path)), ok, want)
		}
	}
}

func TestFrameCache_BoundedOverManyFrames(t *testing.T) {
	cache := NewFrameCache(3)
	dir := t.TempDir()
	for i := 0; i < 20; i++ {
		path := filepath.Join(dir, fmt.Sprintf("preview-%02d.png", i))
		writeTestImage(t, path, 4, 4, color.White)
		if _, err := cache.Load(path); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
	}
	if cache.Len() != 3 || cache.order.Len() != 3 {
		t.Errorf("got %d entries (%d in order), want 3", cache.Len(), cache.order.Len())
	}

	if got := NewFrameCache(0).Capacity(); got != DefaultFrameCacheSize {
		t.Errorf("default capacity: got %d, want %d", got, DefaultFrameCacheSize)
	}
}

func TestFrameCache_ConcurrentAccess(t *testing.T) {
	cache := NewFrameCache(0)
	imgPath := createTestImage(t, 50, 50, color.RGBA{128, 128, 128, 255})

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(imgPath); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Load error: %v", err)
	}
}

func TestLoadImageInfo(t *testing.T) {
	cache := NewFrameCache(0)
	imgPath := createTestImage(t, 200, 150, color.RGBA{255, 128, 64, 255})

	info, err := LoadImageInfo(cache, imgPath)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}

	if info.Width != 200 || info.Height != 150 {
		t.Errorf("dimensions: got %dx%d, want 200x150", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("Format: got %s, want png", info.Format)
	}
	if info.FileSizeBytes <= 0 {
		t.Errorf("FileSizeBytes: got %d, want > 0", info.FileSizeBytes)
	}
}

func TestLoadImageInfo_BMP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.bmp")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	if err := bmp.Encode(f, image.NewRGBA(image.Rect(0, 0, 32, 24))); err != nil {
		t.Fatalf("failed to encode bmp: %v", err)
	}
	f.Close()

	info, err := LoadImageInfo(NewFrameCache(0), path)
	if err != nil {
		t.Fatalf("LoadImageInfo failed: %v", err)
	}
	if info.Format != "bmp" || info.Width != 32 || info.Height != 24 {
		t.Errorf("got %s %dx%d", info.Format, info.Width, info.Height)
	}
}

func TestDecodeBase64(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 7, 5))); err != nil {
		t.Fatalf("failed to encode: %v", err)
	}
	raw := base64.StdEncoding.EncodeToString(buf.Bytes())

	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{"plain", raw, false},
		{"data uri", "data:image/png;base64," + raw, false},
		{"not base64", "!!!", true},
		{"not an image", base64.StdEncoding.EncodeToString([]byte("hello")), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeBase64(tt.data)
			if tt.wantErr {
				if !scanerr.IsKind(err, scanerr.KindIO) {
					t.Errorf("expected io error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeBase64 failed: %v", err)
			}
			if img.Bounds().Dx() != 7 || img.Bounds().Dy() != 5 {
				t.Errorf("dimensions: got %v", img.Bounds())
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"file:///tmp/scan/frame.jpg", "/tmp/scan/frame.jpg", false},
		{"/tmp/scan/../scan/frame.jpg", "/tmp/scan/frame.jpg", false},
		{"relative/frame.jpg", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizePath(tt.in)
			if tt.wantErr {
				if !scanerr.IsKind(err, scanerr.KindInvalidArgument) {
					t.Errorf("expected invalid_argument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizePath failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
