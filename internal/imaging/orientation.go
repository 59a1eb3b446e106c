package imaging

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Rotation is the device rotation reported alongside a camera frame, in
// degrees.
type Rotation int

// Reported rotations understood by Normalize.
const (
	Rotate0   Rotation = 0
	Rotate90  Rotation = 90
	Rotate180 Rotation = 180
	Rotate270 Rotation = 270
)

// Valid reports whether r is one of the four discrete rotations.
func (r Rotation) Valid() bool {
	switch r {
	case Rotate0, Rotate90, Rotate180, Rotate270:
		return true
	}
	return false
}

func (r Rotation) String() string {
	return fmt.Sprintf("%d°", int(r))
}

// Normalize brings a sensor frame into the pipeline's upright orientation.
//
// The mapping is tied to the sensor/display relationship of the capture
// hardware rather than being a general rotation:
//
//   - 90: no transform, this is the sensor's native orientation
//   - 180: transpose, then flip top-to-bottom
//   - 270: flip top-to-bottom, then flip left-to-right
//   - 0 and anything unrecognised: transpose, then flip left-to-right
//
// The result is always a new buffer except for 90, where img is returned
// untouched.
//
// TODO: validate the 180 and 270 branches against frames from current
// hardware; both were derived from a single device family.
func Normalize(img image.Image, r Rotation) image.Image {
	switch r {
	case Rotate90:
		return img
	case Rotate180:
		return imaging.FlipV(imaging.Transpose(img))
	case Rotate270:
		return imaging.FlipH(imaging.FlipV(img))
	default:
		return imaging.FlipH(imaging.Transpose(img))
	}
}
