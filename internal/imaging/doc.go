// Package imaging provides the pixel-buffer operations of the document
// scanner: loading frames, orientation correction, perspective
// rectification, post-processing filters and encoding.
//
// Buffers are ordinary image.Image values. Every operation returns a new
// zero-origin buffer and leaves its input untouched, so frames held by the
// FrameCache can be shared between goroutines.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Corner sets passed to
// Rectify use the canonical order from the geometry package: top-left,
// top-right, bottom-right, bottom-left.
//
// # Orientation
//
// Normalize maps a reported device rotation to a fixed transpose/flip
// sequence. The mapping mirrors the capture hardware and is not a general
// rotation: 90 degrees is the native orientation and is left alone.
//
// # Rectification
//
// Rectify measures the output as the longer of each pair of opposite edges
// and fills it by inverse-mapping each pixel through a projective transform
// (QuadToQuad) with bilinear sampling. Samples outside the source are
// transparent black.
//
// # Filters
//
// ApplyFilter offers the scanner's output looks: grayscale, bw (grayscale
// lifted by 10 levels) and color (channels scaled by 1.2). DrawOutline marks
// a detected page on a frame for inspection.
//
// # Error Handling
//
// Errors carry a kind from the internal errors package: io for file and
// codec failures, invalid_argument for bad parameters, malformed_input for
// corners that cannot be rectified.
package imaging
