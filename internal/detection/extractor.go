package detection

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	scanerr "github.com/ironsheep/docscan-mcp/internal/errors"
	"github.com/ironsheep/docscan-mcp/internal/geometry"
	"github.com/ironsheep/docscan-mcp/internal/ocr"
)

// Strategy names a boundary candidate extractor.
type Strategy string

// Available strategies.
const (
	StrategyEdgeContour        Strategy = "edge-contour"
	StrategyConnectedComponent Strategy = "connected-component"
	StrategyTextHint           Strategy = "text-hint"
)

// ParseStrategies parses a comma-separated, ordered list of strategy names.
// Duplicates are rejected.
func ParseStrategies(s string) ([]Strategy, error) {
	var out []Strategy
	seen := make(map[Strategy]bool)
	for _, part := range strings.Split(s, ",") {
		name := Strategy(strings.ToLower(strings.TrimSpace(part)))
		if name == "" {
			continue
		}
		switch name {
		case StrategyEdgeContour, StrategyConnectedComponent, StrategyTextHint:
		default:
			return nil, scanerr.NewInvalidArgument(fmt.Sprintf("unknown strategy %q", part), nil)
		}
		if seen[name] {
			return nil, scanerr.NewInvalidArgument(fmt.Sprintf("strategy %q listed twice", name), nil)
		}
		seen[name] = true
		out = append(out, name)
	}
	if len(out) == 0 {
		return nil, scanerr.NewInvalidArgument("no detection strategy configured", nil)
	}
	return out, nil
}

// Detection is the outcome of examining one frame. Quad and Text are
// independent: a frame may yield geometry without text or text without an
// accepted quadrilateral.
type Detection struct {
	// Strategy is the extractor that produced Quad, or the last one tried.
	Strategy Strategy `json:"strategy,omitempty"`

	// Quad is the accepted page outline in the examined buffer's
	// coordinates, nil when nothing plausible was found.
	Quad *geometry.Quadrilateral `json:"quad,omitempty"`

	// Text is the recognised text payload, forwarded unmodified.
	Text *ocr.Result `json:"text,omitempty"`
}

// Found reports whether a quadrilateral was accepted.
func (d Detection) Found() bool { return d.Quad != nil }

// Extractor is one boundary candidate strategy.
//
// Extract returns a Detection without Quad and a nil error when nothing
// plausible is in the frame. Errors are reserved for collaborator failures
// (external_service) and broken internal contracts (malformed_input).
type Extractor interface {
	Name() Strategy
	Extract(ctx context.Context, img image.Image) (Detection, error)
}

// Chain runs extractors in order until one accepts a quadrilateral.
type Chain struct {
	extractors []Extractor
	log        logrus.FieldLogger
	tracer     trace.Tracer
}

// NewChain creates a chain over extractors, tried in the given order.
func NewChain(log logrus.FieldLogger, extractors ...Extractor) *Chain {
	return &Chain{
		extractors: extractors,
		log:        log.WithField("component", "detection"),
		tracer:     otel.Tracer("docscan/detection"),
	}
}

// Build constructs the chain for the named strategies. rec is required only
// when StrategyTextHint is listed.
func Build(strategies []Strategy, binarize Binarization, rec ocr.Recognizer, log logrus.FieldLogger) (*Chain, error) {
	extractors := make([]Extractor, 0, len(strategies))
	for _, s := range strategies {
		switch s {
		case StrategyEdgeContour:
			extractors = append(extractors, NewEdgeContour(log))
		case StrategyConnectedComponent:
			extractors = append(extractors, NewConnectedComponent(binarize, log))
		case StrategyTextHint:
			if rec == nil {
				return nil, scanerr.NewInvalidArgument("text-hint strategy needs a recognizer", nil)
			}
			extractors = append(extractors, NewTextHint(rec, log))
		default:
			return nil, scanerr.NewInvalidArgument(fmt.Sprintf("unknown strategy %q", s), nil)
		}
	}
	return NewChain(log, extractors...), nil
}

// Strategies lists the chain's extractors in order.
func (c *Chain) Strategies() []Strategy {
	out := make([]Strategy, len(c.extractors))
	for i, e := range c.extractors {
		out[i] = e.Name()
	}
	return out
}

// Extract tries each extractor in turn and returns the first accepted
// quadrilateral. Recognised text from any extractor is carried on the
// result.
//
// An external_service failure is logged and the next extractor is tried,
// so a failing OCR service degrades to the geometric strategies. Any other
// error ends the frame and is returned.
func (c *Chain) Extract(ctx context.Context, img image.Image) (Detection, error) {
	var text *ocr.Result
	var last Strategy
	for _, e := range c.extractors {
		if err := ctx.Err(); err != nil {
			return Detection{}, err
		}

		det, err := c.run(ctx, e, img)
		last = e.Name()
		if err != nil {
			if scanerr.IsKind(err, scanerr.KindExternalService) {
				c.log.WithError(err).WithField("strategy", e.Name()).Warn("extractor unavailable, trying next")
				continue
			}
			return Detection{}, err
		}
		if det.Text != nil {
			text = det.Text
		}
		if det.Found() {
			det.Text = text
			return det, nil
		}
	}
	return Detection{Strategy: last, Text: text}, nil
}

func (c *Chain) run(ctx context.Context, e Extractor, img image.Image) (Detection, error) {
	ctx, span := c.tracer.Start(ctx, "detection.extract",
		trace.WithAttributes(attribute.String("strategy", string(e.Name()))))
	defer span.End()

	det, err := e.Extract(ctx, img)
	if err != nil {
		span.RecordError(err)
		return det, err
	}
	span.SetAttributes(attribute.Bool("found", det.Found()))
	return det, nil
}
