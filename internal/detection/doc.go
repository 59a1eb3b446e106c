// Package detection finds the outline of a paper page in a camera frame.
//
// Three strategies implement the Extractor interface. Each examines one
// buffer and yields at most one geometry.Quadrilateral, measured against
// that buffer's size:
//
//   - edge-contour: grayscale, Gaussian blur, Otsu threshold and a boundary
//     map, then Moore-neighbour tracing of every outline. Contours are tried
//     from the largest enclosed area down; the first whose 2%-of-perimeter
//     polygon approximation, reduced to four sorted corners, passes
//     geometry.IsPlausibleRectangle is accepted.
//   - connected-component: an Otsu or fixed-brightness mask, 8-connected
//     labelling, and the largest component that covers more than 1/8 of the
//     frame, fills at least 80% of its bounding box and is centred within a
//     quarter of the frame on both axes.
//   - text-hint: the minimum-area rotated rectangle around every text block
//     reported by an ocr.Recognizer.
//
// # Chains
//
// A Chain runs strategies in a configured order and stops at the first
// accepted quadrilateral. An OCR failure is logged and the chain moves on,
// so text-hint followed by edge-contour degrades to pure geometry when the
// recogniser is unavailable.
//
// # Negative Results
//
// Finding nothing is not an error: Extract returns a Detection whose Found
// method is false and a nil error. Errors mean a collaborator failed
// (external_service) or an internal contract broke (malformed_input).
//
// # Performance
//
// All strategies are linear in the pixel count apart from the median filter
// of the brightness mask. Run them on a downscaled working copy of the
// frame (the frame controller uses a height of 500) and scale the result
// back with Quadrilateral.ScaleTo.
package detection
