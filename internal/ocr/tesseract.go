package ocr

import (
	"bytes"
	"context"
	"image"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
	"github.com/sirupsen/logrus"

	scanerr "github.com/ironsheep/docscan-mcp/internal/errors"
)

// Tesseract recognises text with a local Tesseract installation through
// gosseract. Each call uses its own client, so a Tesseract value can be
// shared between goroutines.
type Tesseract struct {
	language string
	timeout  time.Duration
	log      logrus.FieldLogger
}

// NewTesseract creates a recogniser for language (a Tesseract code such as
// "eng"). A positive timeout bounds every Recognize call in addition to the
// caller's context.
func NewTesseract(language string, timeout time.Duration, log logrus.FieldLogger) *Tesseract {
	return &Tesseract{
		language: language,
		timeout:  timeout,
		log:      log.WithField("component", "tesseract"),
	}
}

// Recognize runs OCR on img.
//
// The image is handed to Tesseract as PNG bytes. Text is returned together
// with the block, line and word structure; if Tesseract cannot produce
// bounding boxes the text is still returned with no blocks.
//
// # Errors
//
//   - external_service if Tesseract fails, the context is cancelled or the
//     timeout expires. A call abandoned on cancellation keeps running in the
//     background until Tesseract returns, then releases its client.
//   - io if the image cannot be encoded
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (*Result, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return nil, scanerr.NewExternalServiceError("ocr cancelled before start", err)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, scanerr.NewIOError("failed to encode frame for ocr", err)
	}

	type outcome struct {
		res *Result
		err error
	}
	done := make(chan outcome, 1)
	started := time.Now()
	go func() {
		res, err := t.run(buf.Bytes())
		done <- outcome{res, err}
	}()

	select {
	case <-ctx.Done():
		return nil, scanerr.NewExternalServiceError("ocr did not finish", ctx.Err())
	case o := <-done:
		if o.err == nil {
			t.log.WithFields(logrus.Fields{
				"blocks":   len(o.res.Blocks),
				"duration": time.Since(started),
			}).Debug("ocr finished")
		}
		return o.res, o.err
	}
}

func (t *Tesseract) run(data []byte) (*Result, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.language); err != nil {
		return nil, scanerr.NewExternalServiceError("failed to set ocr language", err)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return nil, scanerr.NewExternalServiceError("failed to set ocr image", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, scanerr.NewExternalServiceError("ocr failed", err)
	}

	levels := make(map[gosseract.PageIteratorLevel][]box, 3)
	for _, level := range []gosseract.PageIteratorLevel{gosseract.RIL_BLOCK, gosseract.RIL_TEXTLINE, gosseract.RIL_WORD} {
		bbs, err := client.GetBoundingBoxes(level)
		if err != nil {
			// Text without structure is still useful to the caller.
			t.log.WithError(err).Debug("bounding boxes unavailable")
			return &Result{Text: text, Blocks: []TextBlock{}}, nil
		}
		levels[level] = toBoxes(bbs)
	}

	return &Result{
		Text:   text,
		Blocks: assemble(levels[gosseract.RIL_BLOCK], levels[gosseract.RIL_TEXTLINE], levels[gosseract.RIL_WORD]),
	}, nil
}

// box is one Tesseract bounding box reduced to what assemble needs.
type box struct {
	rect       image.Rectangle
	text       string
	confidence float64
}

func toBoxes(bbs []gosseract.BoundingBox) []box {
	out := make([]box, 0, len(bbs))
	for _, bb := range bbs {
		out = append(out, box{
			rect:       bb.Box,
			text:       strings.TrimSpace(bb.Word),
			confidence: float64(bb.Confidence) / 100.0,
		})
	}
	return out
}

// assemble nests words into lines and lines into blocks. A child belongs to
// the first parent whose rectangle contains the child's centre; children
// with no parent are dropped, as are empty rectangles.
func assemble(blocks, lines, words []box) []TextBlock {
	out := make([]TextBlock, 0, len(blocks))
	for _, b := range blocks {
		if b.rect.Empty() {
			continue
		}
		out = append(out, TextBlock{
			Text:       b.text,
			Corners:    rectCorners(b.rect),
			Confidence: b.confidence,
		})
	}

	type lineRef struct {
		rect        image.Rectangle
		block, line int
	}
	refs := make([]lineRef, 0, len(lines))
	for _, l := range lines {
		if l.rect.Empty() {
			continue
		}
		owner := containing(out, l.rect)
		if owner < 0 {
			continue
		}
		out[owner].Lines = append(out[owner].Lines, TextLine{
			Text:       l.text,
			Corners:    rectCorners(l.rect),
			Confidence: l.confidence,
		})
		refs = append(refs, lineRef{rect: l.rect, block: owner, line: len(out[owner].Lines) - 1})
	}

	for _, w := range words {
		if w.rect.Empty() || w.text == "" {
			continue
		}
		c := center(w.rect)
		for _, ref := range refs {
			if !c.In(ref.rect) {
				continue
			}
			line := &out[ref.block].Lines[ref.line]
			line.Elements = append(line.Elements, TextElement{
				Text:       w.text,
				Corners:    rectCorners(w.rect),
				Confidence: w.confidence,
			})
			break
		}
	}
	return out
}

func containing(blocks []TextBlock, r image.Rectangle) int {
	c := center(r)
	for i, b := range blocks {
		lo, hi := b.Corners[0], b.Corners[2]
		br := image.Rect(int(lo.X), int(lo.Y), int(hi.X), int(hi.Y))
		if c.In(br) {
			return i
		}
	}
	return -1
}

func center(r image.Rectangle) image.Point {
	return image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
}
