package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/shortalex12333/Image-processing-sub000/model"
)

type stubEngine struct {
	name       string
	available  bool
	confidence float64
	text       string
	err        error
}

func (s *stubEngine) Name() string            { return s.name }
func (s *stubEngine) Precondition() bool      { return s.available }
func (s *stubEngine) HealthCheck(context.Context) bool { return s.available }
func (s *stubEngine) Extract(ctx context.Context, imageBytes []byte) (*model.OCRResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.OCRResult{Text: s.text, Confidence: s.confidence, Engine: s.name}, nil
}

func TestRegistrySelectsByPriority(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubEngine{name: "cloud", available: true, confidence: 0.9})
	r.Register(&stubEngine{name: "accurate", available: true, confidence: 0.9})
	r.SetPriority([]string{"accurate", "cloud"})

	e, ok := r.Select()
	if !ok {
		t.Fatalf("expected an engine to be selected")
	}
	if e.Name() != "accurate" {
		t.Errorf("Select() = %q, want %q", e.Name(), "accurate")
	}
}

func TestRegistrySkipsUnavailableEngines(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubEngine{name: "accurate", available: false})
	r.Register(&stubEngine{name: "fast", available: true})
	r.SetPriority([]string{"accurate", "fast"})

	e, ok := r.Select()
	if !ok || e.Name() != "fast" {
		t.Fatalf("expected fast engine to be selected as fallback, got %v ok=%v", e, ok)
	}
}

func TestRegistrySelectIsMemoizedUntilReset(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubEngine{name: "fast", available: true})
	r.SetPriority([]string{"fast"})

	first, _ := r.Select()
	r.Register(&stubEngine{name: "accurate", available: true})
	r.SetPriority([]string{"accurate", "fast"})
	second, _ := r.Select()

	if first.Name() != second.Name() {
		t.Errorf("expected memoized selection to persist, got %q then %q", first.Name(), second.Name())
	}

	r.Reset()
	third, _ := r.Select()
	if third.Name() != "accurate" {
		t.Errorf("expected reset to pick up new priority, got %q", third.Name())
	}
}

func TestHealthCheckAllReportsPerEngine(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubEngine{name: "a", available: true})
	r.Register(&stubEngine{name: "b", available: false})

	details := r.HealthCheckAll(context.Background())
	if len(details) != 2 {
		t.Fatalf("expected 2 health details, got %d", len(details))
	}
	byName := map[string]bool{}
	for _, d := range details {
		byName[d.Name] = d.Healthy
	}
	if !byName["a"] || byName["b"] {
		t.Errorf("unexpected health detail contents: %+v", details)
	}
}

func TestLayerFallsBackOnLowConfidence(t *testing.T) {
	r := NewRegistry()
	primary := &stubEngine{name: "accurate", available: true, confidence: 0.4, text: "low conf"}
	r.Register(primary)
	r.SetPriority([]string{"accurate"})

	fallback := &stubEngine{name: "cloud", available: true, confidence: 0.95, text: "high conf"}
	layer := NewLayer(r, NewPDFEngine(true), fallback, 0.6, 3000, nil)

	res, err := layer.Run(context.Background(), []byte{0xFF, 0xD8, 0xFF}, "image/jpeg")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.Engine != "cloud" {
		t.Errorf("expected fallback engine result, got %q", res.Engine)
	}
}

func TestLayerUsesFallbackWhenPrimaryErrors(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubEngine{name: "accurate", available: true, err: errors.New("boom")})
	r.SetPriority([]string{"accurate"})
	fallback := &stubEngine{name: "cloud", available: true, confidence: 0.8, text: "recovered"}

	layer := NewLayer(r, NewPDFEngine(true), fallback, 0.6, 3000, nil)
	res, err := layer.Run(context.Background(), []byte{0xFF, 0xD8, 0xFF}, "image/jpeg")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if res.Engine != "cloud" {
		t.Errorf("expected fallback engine, got %q", res.Engine)
	}
	if res.Metadata["primary_error"] == nil {
		t.Errorf("expected primary_error recorded in metadata")
	}
}

func TestLayerSurfacesOCRFailedWhenNoEngineAvailable(t *testing.T) {
	r := NewRegistry()
	layer := NewLayer(r, NewPDFEngine(true), nil, 0.6, 3000, nil)

	_, err := layer.Run(context.Background(), []byte{0xFF, 0xD8, 0xFF}, "image/jpeg")
	pe := model.AsPipelineError(err)
	if pe.Code != model.ErrOCRFailed {
		t.Fatalf("expected OCR_FAILED, got %v", pe)
	}
}
