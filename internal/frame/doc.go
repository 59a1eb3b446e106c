// Package frame drives camera frames through the scanning pipeline.
//
// A Controller accepts two kinds of request. Preview frames arrive from a
// live camera at whatever rate it produces them; each is oriented, reduced
// to a working height, and handed to a Detector. The accepted outline is kept
// in the controller's Session at working resolution and reported to a Sink
// at full resolution. Capture takes one full-resolution frame, scales the
// session outline to it and returns the rectified page.
//
// Only one preview runs at a time. SubmitPreview drops frames that arrive
// while the worker is busy and counts them in Stats. The admission token is
// returned and the sink's busy flag cleared on every exit path, including
// detector errors and panics, so a failing frame never stalls later ones.
//
// Crop and Detect are one-shot operations used by the command surface: Crop
// rectifies with explicit corners and Detect finds an outline without
// storing it.
package frame
