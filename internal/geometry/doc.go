// Package geometry provides the point and quadrilateral primitives used by the
// document scanner, together with the pure polygon helpers the boundary
// extractors are built on.
//
// # Coordinate System
//
// Points are floating-point pixel coordinates in the space of one specific
// image buffer. The origin is the top-left corner, X increases rightward and
// Y increases downward. A Quadrilateral records the buffer size it was
// measured against so it can be rescaled to another resolution of the same
// frame.
//
// # Corner Ordering
//
// Raw detections produce an unordered set of points. SortCorners reduces any
// set of four or more points to the canonical order top-left, top-right,
// bottom-right, bottom-left:
//   - top-left: smallest x+y
//   - bottom-right: largest x+y
//   - top-right: smallest y-x
//   - bottom-left: largest y-x
//
// Ties go to the first point encountered, so the result for inputs with equal
// sums or differences depends on input order.
//
// # Plausibility
//
// IsPlausibleRectangle is a loose axis-aligned filter, not a true rectangle
// test. Every threshold is width/10 of the measured image (integer division),
// for both horizontal and vertical extents.
//
// All functions in this package are free of side effects and safe for
// concurrent use.
package geometry
