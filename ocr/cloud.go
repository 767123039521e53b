package ocr

import (
	"context"
	"time"

	"github.com/shortalex12333/Image-processing-sub000/model"
)

// CloudClient is the narrow boundary interface to a vendor OCR API; the
// vendor itself is out of scope (spec §1), so callers supply a concrete
// implementation at startup.
type CloudClient interface {
	Recognize(ctx context.Context, imageBytes []byte) (text string, confidence float64, err error)
}

// CloudEngine wraps a vendor OCR API behind the Engine contract. NewLayer
// accepts it as the fallback engine invoked when a local engine's
// confidence falls below the configured threshold; main.go does not
// construct it and passes the fast engine as that fallback instead.
type CloudEngine struct {
	enabled    bool
	hasCreds   bool
	client     CloudClient
}

// NewCloudEngine builds the cloud engine. hasCreds models the engine's
// precondition (credentials present); it is checked before every selection.
func NewCloudEngine(enabled, hasCreds bool, client CloudClient) *CloudEngine {
	return &CloudEngine{enabled: enabled, hasCreds: hasCreds, client: client}
}

func (e *CloudEngine) Name() string { return "cloud" }

func (e *CloudEngine) Precondition() bool { return e.enabled && e.hasCreds && e.client != nil }

func (e *CloudEngine) HealthCheck(ctx context.Context) bool { return e.Precondition() }

func (e *CloudEngine) Extract(ctx context.Context, imageBytes []byte) (*model.OCRResult, error) {
	start := time.Now()
	text, confidence, err := e.client.Recognize(ctx, imageBytes)
	if err != nil {
		return nil, err
	}
	return &model.OCRResult{
		Text:           text,
		Confidence:     confidence,
		Engine:         e.Name(),
		ProcessingTime: time.Since(start),
		Metadata:       map[string]interface{}{"vendor_call": true},
	}, nil
}
