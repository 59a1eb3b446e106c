package frame

import (
	"context"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ironsheep/docscan-mcp/internal/detection"
	scanerr "github.com/ironsheep/docscan-mcp/internal/errors"
	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/imaging"
)

// DefaultWorkingHeight is the height preview frames are reduced to before
// detection.
const DefaultWorkingHeight = 500

// Detector finds a page outline in one buffer. *detection.Chain and every
// detection.Extractor satisfy it.
type Detector interface {
	Extract(ctx context.Context, img image.Image) (detection.Detection, error)
}

// Options tunes a Controller.
type Options struct {
	// WorkingHeight is the height preview frames are downscaled to before
	// detection. Zero or negative disables downscaling.
	WorkingHeight int
}

// DefaultOptions returns the options used by the server.
func DefaultOptions() Options {
	return Options{WorkingHeight: DefaultWorkingHeight}
}

// WithWorkingHeight returns a copy of o with the working height set.
func (o Options) WithWorkingHeight(h int) Options {
	o.WorkingHeight = h
	return o
}

// Stats are the controller's preview counters.
type Stats struct {
	Processed int64 `json:"processed"`
	Dropped   int64 `json:"dropped"`
	Failed    int64 `json:"failed"`
	Busy      bool  `json:"busy"`
}

// Controller runs camera frames through detection and rectification.
//
// At most one preview frame is in flight at a time. A preview that arrives
// while another is being processed is dropped, never queued, so a fast
// camera cannot build up latency or memory. Capture shares the same
// admission token, which keeps it from reading the session while a preview
// is writing it.
type Controller struct {
	detector Detector
	session  *Session
	sink     Sink
	opts     Options
	log      logrus.FieldLogger
	tracer   trace.Tracer

	token chan struct{}
	wg    sync.WaitGroup

	processed atomic.Int64
	dropped   atomic.Int64
	failed    atomic.Int64
}

// New creates a controller with a fresh session. A nil sink discards
// reports.
func New(detector Detector, sink Sink, log logrus.FieldLogger, opts Options) *Controller {
	if sink == nil {
		sink = DiscardSink{}
	}
	session := NewSession()
	return &Controller{
		detector: detector,
		session:  session,
		sink:     sink,
		opts:     opts,
		log:      log.WithFields(logrus.Fields{"component": "frame", "session_id": session.ID()}),
		tracer:   otel.Tracer("docscan/frame"),
		token:    make(chan struct{}, 1),
	}
}

// Session returns the controller's session.
func (c *Controller) Session() *Session {
	return c.session
}

// Stats returns a snapshot of the preview counters.
func (c *Controller) Stats() Stats {
	return Stats{
		Processed: c.processed.Load(),
		Dropped:   c.dropped.Load(),
		Failed:    c.failed.Load(),
		Busy:      len(c.token) > 0,
	}
}

// Wait blocks until every admitted preview frame has been reported.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// SubmitPreview offers a preview frame. It never blocks: if a frame is
// already in flight the new one is dropped and accepted is false.
// Otherwise the frame is processed on its own goroutine and the outcome is
// delivered to the sink's RectangleDetected.
//
// Cancelling ctx after SubmitPreview returns does not stop the frame; an
// admitted frame always runs to completion.
func (c *Controller) SubmitPreview(ctx context.Context, img image.Image, rotation imaging.Rotation) (frameID string, accepted bool) {
	frameID = uuid.NewString()
	select {
	case c.token <- struct{}{}:
	default:
		c.dropped.Add(1)
		c.log.WithField("frame_id", frameID).Debug("processor busy, dropping preview frame")
		return frameID, false
	}

	c.sink.SetProcessorBusy(true)
	c.wg.Add(1)
	go c.preview(context.WithoutCancel(ctx), frameID, img, rotation)
	return frameID, true
}

func (c *Controller) preview(ctx context.Context, frameID string, img image.Image, rotation imaging.Rotation) {
	defer c.wg.Done()
	defer c.release()

	log := c.log.WithFields(logrus.Fields{"frame_id": frameID, "rotation": int(rotation)})
	ctx, span := c.tracer.Start(ctx, "frame.preview", trace.WithAttributes(
		attribute.String("frame_id", frameID),
		attribute.String("session_id", c.session.ID()),
		attribute.Int("rotation", int(rotation)),
	))
	defer span.End()

	report := PreviewReport{FrameID: frameID, SessionID: c.session.ID()}
	defer func() {
		if r := recover(); r != nil {
			c.failed.Add(1)
			log.WithField("panic", r).Error("preview frame panicked")
			span.SetStatus(codes.Error, "panic")
			report = PreviewReport{FrameID: frameID, SessionID: c.session.ID(), Error: fmt.Sprint(r)}
		}
		span.SetAttributes(attribute.Bool("detected", report.Detected))
		c.sink.RectangleDetected(report)
	}()

	det, size, err := c.detect(ctx, img, rotation, c.opts.WorkingHeight)
	if err != nil {
		c.failed.Add(1)
		log.WithError(err).WithField("kind", scanerr.KindOf(err)).Warn("preview frame failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		report.Error = err.Error()
		return
	}
	c.processed.Add(1)

	report.Strategy = det.Strategy
	report.Text = det.Text
	if !det.Found() {
		log.Debug("no page in frame")
		return
	}

	full, err := det.Quad.ScaleTo(size)
	if err != nil {
		c.failed.Add(1)
		log.WithError(err).Warn("cannot scale detected outline")
		report.Error = err.Error()
		return
	}
	c.session.Store(*det.Quad)
	report.Detected = true
	report.Quad = &full
	span.SetAttributes(attribute.String("strategy", string(det.Strategy)))
	log.WithFields(logrus.Fields{"strategy": det.Strategy, "quad": full}).Debug("page detected")
}

// release clears the busy flag and returns the admission token.
func (c *Controller) release() {
	c.sink.SetProcessorBusy(false)
	<-c.token
}

// detect orients img, reduces it to workingHeight and runs the detector.
// The returned Detection is in working coordinates; size is the oriented
// full-resolution size.
func (c *Controller) detect(ctx context.Context, img image.Image, rotation imaging.Rotation, workingHeight int) (detection.Detection, geometry.Size, error) {
	oriented := imaging.Normalize(img, rotation)
	size := imaging.SizeOf(oriented)
	if size.Empty() {
		return detection.Detection{}, size, scanerr.NewMalformedInput("empty frame", nil)
	}
	work := imaging.ScaleToHeight(oriented, workingHeight)

	det, err := c.detector.Extract(ctx, work)
	if err != nil {
		return detection.Detection{}, size, err
	}
	return det, size, nil
}

// Capture rectifies a full-resolution frame using the session's last
// accepted outline, scaled from working resolution to the frame. Without an
// outline the oriented frame is returned whole. The filter is applied to
// the result either way.
//
// Capture waits for an in-flight preview to finish, or for ctx.
func (c *Controller) Capture(ctx context.Context, img image.Image, rotation imaging.Rotation, filter imaging.Filter) (*CaptureReport, error) {
	frameID := uuid.NewString()
	select {
	case c.token <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-c.token }()

	log := c.log.WithFields(logrus.Fields{"frame_id": frameID, "rotation": int(rotation)})
	_, span := c.tracer.Start(ctx, "frame.capture", trace.WithAttributes(
		attribute.String("frame_id", frameID),
		attribute.String("session_id", c.session.ID()),
		attribute.Int("rotation", int(rotation)),
	))
	defer span.End()

	oriented := imaging.Normalize(img, rotation)
	report := &CaptureReport{FrameID: frameID, OriginalSize: imaging.SizeOf(oriented)}
	if report.OriginalSize.Empty() {
		return nil, scanerr.NewMalformedInput("empty capture frame", nil)
	}

	var page *image.NRGBA
	if quad, ok := c.session.Snapshot(); ok {
		scaled, err := quad.ScaleTo(report.OriginalSize)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		page, err = imaging.Rectify(oriented, scaled.Corners)
		if err != nil {
			span.RecordError(err)
			log.WithError(err).Error("capture rectification failed")
			return nil, err
		}
		report.Quad = &scaled
	} else {
		log.Info("no accepted outline, returning the full frame")
		page = imaging.ToNRGBA(oriented)
	}

	if filter != imaging.FilterNone {
		page = imaging.ApplyFilter(page, filter)
	}
	report.Image = page
	report.Size = imaging.SizeOf(page)

	span.SetAttributes(attribute.Bool("rectified", report.Rectified()))
	log.WithFields(logrus.Fields{"width": report.Size.Width, "height": report.Size.Height}).Info("capture processed")
	c.sink.CaptureProcessed(*report)
	return report, nil
}

// Crop rectifies img with caller-supplied corners in TL, TR, BR, BL order.
// It does not read or write the session.
func (c *Controller) Crop(ctx context.Context, img image.Image, corners [4]geometry.Point, filter imaging.Filter) (*CaptureReport, error) {
	frameID := uuid.NewString()
	_, span := c.tracer.Start(ctx, "frame.crop", trace.WithAttributes(attribute.String("frame_id", frameID)))
	defer span.End()

	size := imaging.SizeOf(img)
	quad := geometry.Quadrilateral{Corners: corners, Size: size}
	if quad.IsDegenerate() {
		return nil, scanerr.NewInvalidArgument(fmt.Sprintf("corners %v enclose no area", quad), nil)
	}

	page, err := imaging.Rectify(img, corners)
	if err != nil {
		span.RecordError(err)
		if scanerr.IsKind(err, scanerr.KindMalformedInput) {
			return nil, scanerr.NewInvalidArgument("corners cannot be rectified", err)
		}
		return nil, err
	}
	if filter != imaging.FilterNone {
		page = imaging.ApplyFilter(page, filter)
	}

	c.log.WithFields(logrus.Fields{"frame_id": frameID, "quad": quad}).Debug("explicit crop")
	return &CaptureReport{
		FrameID:      frameID,
		Image:        page,
		Size:         imaging.SizeOf(page),
		OriginalSize: size,
		Quad:         &quad,
	}, nil
}

// Detect runs the detector once on a full-resolution image and returns the
// outline scaled to the oriented image. It does not touch the session or
// the admission token. A frame without a page yields a no_candidate error.
func (c *Controller) Detect(ctx context.Context, img image.Image, rotation imaging.Rotation) (detection.Detection, error) {
	ctx, span := c.tracer.Start(ctx, "frame.detect")
	defer span.End()

	det, size, err := c.detect(ctx, img, rotation, c.opts.WorkingHeight)
	if err != nil {
		span.RecordError(err)
		return detection.Detection{}, err
	}
	if !det.Found() {
		return det, scanerr.NewNoCandidate("no document found")
	}

	full, err := det.Quad.ScaleTo(size)
	if err != nil {
		return detection.Detection{}, err
	}
	det.Quad = &full
	return det, nil
}
