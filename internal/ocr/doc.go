// Package ocr provides the text recognition collaborator used by the
// text-hint boundary strategy.
//
// Recognizer is the contract: given a frame it returns the recognised text
// and its block/line/word structure, or an external_service error. The
// scanner only uses the geometry of the blocks (Result.CornerPoints) to
// locate the page; the text itself is forwarded to the host untouched.
//
// # Tesseract
//
// Tesseract implements Recognizer on top of gosseract, which needs CGO and a
// system Tesseract installation with the requested language data:
//
//	# Debian/Ubuntu
//	apt-get install libtesseract-dev tesseract-ocr-eng
//
//	# macOS
//	brew install tesseract
//
// Blocks, lines and words come from three bounding-box passes
// (RIL_BLOCK, RIL_TEXTLINE, RIL_WORD) and are nested by containment of each
// child's centre point. Confidence values are normalised to 0..1.
//
// # Cancellation
//
// Tesseract calls cannot be interrupted. Recognize returns as soon as the
// context is done; the abandoned call finishes in the background and frees
// its client.
package ocr
