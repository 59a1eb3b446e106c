package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	scanerr "github.com/ironsheep/docscan-mcp/internal/errors"
)

// DefaultJPEGQuality matches the quality the host application has always
// used for scanned pages.
const DefaultJPEGQuality = 70

// EncodedImage is an image serialized for transport back to the host.
type EncodedImage struct {
	// Width of the encoded image in pixels.
	Width int `json:"width"`

	// Height of the encoded image in pixels.
	Height int `json:"height"`

	// MimeType is "image/jpeg" for pages and "image/png" for masks.
	MimeType string `json:"mime_type"`

	// Data is the encoded image, base64 (standard alphabet, padded).
	Data string `json:"data"`
}

// EncodeJPEG serializes img as JPEG. A quality outside 1..100 falls back to
// DefaultJPEGQuality.
func EncodeJPEG(img image.Image, quality int) (*EncodedImage, error) {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return encode(img, imaging.JPEG, "image/jpeg", imaging.JPEGQuality(quality))
}

// EncodePNG serializes img losslessly, which is what masks and edge maps
// need.
func EncodePNG(img image.Image) (*EncodedImage, error) {
	return encode(img, imaging.PNG, "image/png")
}

func encode(img image.Image, format imaging.Format, mime string, opts ...imaging.EncodeOption) (*EncodedImage, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format, opts...); err != nil {
		return nil, scanerr.NewIOError(fmt.Sprintf("failed to encode %s", mime), err)
	}
	b := img.Bounds()
	return &EncodedImage{
		Width:    b.Dx(),
		Height:   b.Dy(),
		MimeType: mime,
		Data:     base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}
