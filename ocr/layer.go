package ocr

import (
	"context"

	"github.com/shortalex12333/Image-processing-sub000/model"
)

// Layer is the OCR Layer entrypoint: preprocess, select an engine, run it,
// and fall back to the configured fallback engine when confidence is low,
// per spec §4.2.
type Layer struct {
	registry        *Registry
	pdf             *PDFEngine
	fallback        Engine
	fallbackThresh  float64
	maxDimensionPx  int
	rasterize       func(pdfBytes []byte) ([][]byte, error)
}

// NewLayer builds the OCR layer. rasterize converts PDF pages to page
// images when no embedded text is present; it is nil-able for callers
// that never submit PDFs without embedded text.
func NewLayer(registry *Registry, pdf *PDFEngine, fallback Engine, fallbackThreshold float64, maxDimensionPx int, rasterize func([]byte) ([][]byte, error)) *Layer {
	return &Layer{
		registry:       registry,
		pdf:            pdf,
		fallback:       fallback,
		fallbackThresh: fallbackThreshold,
		maxDimensionPx: maxDimensionPx,
		rasterize:      rasterize,
	}
}

// Run produces a uniform OCRResult for one uploaded file.
func (l *Layer) Run(ctx context.Context, bytes []byte, mimeType string) (*model.OCRResult, error) {
	if mimeType == "application/pdf" {
		return l.runPDF(ctx, bytes)
	}
	return l.runImage(ctx, bytes)
}

func (l *Layer) runPDF(ctx context.Context, pdfBytes []byte) (*model.OCRResult, error) {
	text, err := ExtractEmbeddedText(pdfBytes)
	if err == nil && HasEmbeddedText(text) {
		return ToOCRResult(text), nil
	}

	if l.rasterize == nil {
		if err != nil {
			return nil, model.NewError(model.ErrOCRFailed, "pdf text extraction failed and no rasterizer configured", nil)
		}
		return nil, model.NewError(model.ErrOCRFailed, "pdf has no embedded text and no rasterizer configured", nil)
	}

	pages, rerr := l.rasterize(pdfBytes)
	if rerr != nil || len(pages) == 0 {
		return nil, model.NewError(model.ErrOCRFailed, "pdf rasterization failed", nil)
	}

	var combined model.OCRResult
	combined.Engine = "pdf+raster"
	totalConfidence := 0.0
	for _, page := range pages {
		res, perr := l.runImage(ctx, page)
		if perr != nil {
			continue
		}
		combined.Text += res.Text + "\n"
		combined.Fragments = append(combined.Fragments, res.Fragments...)
		totalConfidence += res.Confidence
	}
	if len(pages) > 0 {
		combined.Confidence = totalConfidence / float64(len(pages))
	}
	return &combined, nil
}

func (l *Layer) runImage(ctx context.Context, imageBytes []byte) (*model.OCRResult, error) {
	preprocessed := Preprocess(imageBytes, l.maxDimensionPx)

	engine, ok := l.registry.Select()
	if !ok {
		return nil, model.NewError(model.ErrOCRFailed, "no OCR engine available", nil)
	}

	primary, err := engine.Extract(ctx, preprocessed)
	if err != nil {
		if l.fallback == nil {
			return nil, model.NewError(model.ErrOCRFailed, "primary OCR engine failed: "+err.Error(), nil)
		}
		fb, ferr := l.fallback.Extract(ctx, preprocessed)
		if ferr != nil {
			return nil, model.NewError(model.ErrOCRFailed, "primary and fallback OCR engines both failed", nil)
		}
		fb.Metadata = mergeMeta(fb.Metadata, map[string]interface{}{"primary_error": err.Error()})
		return fb, nil
	}

	if primary.Confidence < l.fallbackThresh && l.fallback != nil && l.fallback.Name() != primary.Engine {
		fb, ferr := l.fallback.Extract(ctx, preprocessed)
		if ferr == nil && fb.Confidence > primary.Confidence {
			return fb, nil
		}
	}

	return primary, nil
}

func mergeMeta(base map[string]interface{}, extra map[string]interface{}) map[string]interface{} {
	if base == nil {
		base = make(map[string]interface{}, len(extra))
	}
	for k, v := range extra {
		base[k] = v
	}
	return base
}
