package ocr

import (
	"context"
	"time"

	"github.com/shortalex12333/Image-processing-sub000/model"
)

// FastEngine is the baseline-accuracy local engine: cheap, always
// available, lower confidence ceiling.
type FastEngine struct {
	enabled bool
	extract func(ctx context.Context, imageBytes []byte) (string, float64, error)
}

// NewFastEngine builds the fast local engine. extractFn is the actual
// recognition call (a bound local binary or embedded model); tests inject
// a stub.
func NewFastEngine(enabled bool, extractFn func(ctx context.Context, imageBytes []byte) (string, float64, error)) *FastEngine {
	return &FastEngine{enabled: enabled, extract: extractFn}
}

func (e *FastEngine) Name() string { return "fast" }

func (e *FastEngine) Precondition() bool { return e.enabled }

func (e *FastEngine) HealthCheck(ctx context.Context) bool { return e.enabled }

func (e *FastEngine) Extract(ctx context.Context, imageBytes []byte) (*model.OCRResult, error) {
	start := time.Now()
	text, confidence, err := e.extract(ctx, imageBytes)
	if err != nil {
		return nil, err
	}
	return &model.OCRResult{
		Text:           text,
		Confidence:     confidence,
		Engine:         e.Name(),
		ProcessingTime: time.Since(start),
	}, nil
}

// AccurateEngine is the higher-accuracy local engine: slower, higher
// confidence ceiling, used as the primary by default priority order.
type AccurateEngine struct {
	enabled bool
	extract func(ctx context.Context, imageBytes []byte) (string, float64, error)
}

// NewAccurateEngine builds the accurate local engine.
func NewAccurateEngine(enabled bool, extractFn func(ctx context.Context, imageBytes []byte) (string, float64, error)) *AccurateEngine {
	return &AccurateEngine{enabled: enabled, extract: extractFn}
}

func (e *AccurateEngine) Name() string { return "accurate" }

func (e *AccurateEngine) Precondition() bool { return e.enabled }

func (e *AccurateEngine) HealthCheck(ctx context.Context) bool { return e.enabled }

func (e *AccurateEngine) Extract(ctx context.Context, imageBytes []byte) (*model.OCRResult, error) {
	start := time.Now()
	text, confidence, err := e.extract(ctx, imageBytes)
	if err != nil {
		return nil, err
	}
	return &model.OCRResult{
		Text:           text,
		Confidence:     confidence,
		Engine:         e.Name(),
		ProcessingTime: time.Since(start),
	}, nil
}
