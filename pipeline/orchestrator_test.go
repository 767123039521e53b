package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/shortalex12333/Image-processing-sub000/config"
	"github.com/shortalex12333/Image-processing-sub000/extraction"
	"github.com/shortalex12333/Image-processing-sub000/intake"
	"github.com/shortalex12333/Image-processing-sub000/model"
	"github.com/shortalex12333/Image-processing-sub000/ocr"
	"github.com/shortalex12333/Image-processing-sub000/reconciliation"
	"github.com/shortalex12333/Image-processing-sub000/repository/memory"
)

// samplePNG builds a small, validly-encoded PNG so intake's DQS path
// decodes a real image rather than failing on garbage bytes.
func samplePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.Gray{Y: uint8((x + y) % 255)})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func testConfig() *config.Config {
	return &config.Config{
		MaxFileSizeMB:                15,
		MinImageWidth:                1,
		MinImageHeight:               1,
		DQSThreshold:                 0,
		MaxUploadsPerHour:            50,
		UploadRateLimitWindowSeconds: 3600,
		OCRFallbackConfidence:        0.6,
		OCRMaxDimensionPx:            3000,
		MaxLLMCallsPerSession:        3,
		MaxCostPerSession:            0.50,
		LLMCoverageThreshold:         0.8,
	}
}

func testOrchestrator(t *testing.T, extractedText string) (*Orchestrator, *memory.Store) {
	t.Helper()
	cfg := testConfig()
	logger := zerolog.New(io.Discard)
	store := memory.New()
	set := store.Set()

	gate := intake.NewGate(cfg, logger, set.Uploads, set.Blob, nil)

	registry := ocr.NewRegistry()
	registry.Register(ocr.NewFastEngine(true, func(ctx context.Context, imageBytes []byte) (string, float64, error) {
		return extractedText, 0.95, nil
	}))
	registry.SetPriority([]string{"fast"})
	ocrLayer := ocr.NewLayer(registry, ocr.NewPDFEngine(false), nil, cfg.OCRFallbackConfidence, cfg.OCRMaxDimensionPx, nil)

	extractionLayer := extraction.NewLayer(cfg, nil)
	reconLayer := reconciliation.NewLayer(set.Catalog, set.Orders, nil)

	return NewOrchestrator(gate, ocrLayer, extractionLayer, reconLayer, logger), store
}

func TestProcessUploadExtractsLinesFromRegexParseableText(t *testing.T) {
	orch, _ := testOrchestrator(t, "2 ea Oil Filter MTU-4521\n4 ea Fuel Line MTU-9981\n")

	req := intake.Request{
		TenantID:     "tenant-1",
		UploaderID:   "user-1",
		Filename:     "packing-slip.png",
		DeclaredMIME: "image/png",
		Bytes:        samplePNG(t, 4, 4),
		Kind:         model.UploadKindReceiving,
	}

	outcome, err := orch.ProcessUpload(context.Background(), "tenant-1", "user-1", req)
	if err != nil {
		t.Fatalf("ProcessUpload returned error: %v", err)
	}
	if outcome.Duplicate {
		t.Fatal("first upload of unique bytes should not be a duplicate")
	}
	if len(outcome.Lines) != 2 {
		t.Fatalf("len(Lines) = %d, want 2", len(outcome.Lines))
	}
	if outcome.Lines[0].PartNumber != "MTU-4521" && outcome.Lines[0].Description == "" {
		t.Errorf("first line looks unparsed: %+v", outcome.Lines[0])
	}
}

func TestProcessUploadDetectsDuplicateBySHA(t *testing.T) {
	orch, _ := testOrchestrator(t, "3 ea Air Filter MTU-1001\n")
	bytesIn := samplePNG(t, 4, 4)

	req := intake.Request{
		TenantID:     "tenant-1",
		UploaderID:   "user-1",
		Filename:     "slip.png",
		DeclaredMIME: "image/png",
		Bytes:        bytesIn,
		Kind:         model.UploadKindReceiving,
	}

	first, err := orch.ProcessUpload(context.Background(), "tenant-1", "user-1", req)
	if err != nil {
		t.Fatalf("first ProcessUpload returned error: %v", err)
	}
	if first.Duplicate {
		t.Fatal("first upload should not be flagged duplicate")
	}

	second, err := orch.ProcessUpload(context.Background(), "tenant-1", "user-1", req)
	if err != nil {
		t.Fatalf("second ProcessUpload returned error: %v", err)
	}
	if !second.Duplicate {
		t.Fatal("re-submitting identical bytes for the same tenant must be flagged duplicate")
	}
}

func TestProcessUploadRespectsContextCancellation(t *testing.T) {
	orch, _ := testOrchestrator(t, "1 ea Widget Assembly MTU-1\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := intake.Request{
		TenantID:     "tenant-1",
		UploaderID:   "user-1",
		Filename:     "slip.png",
		DeclaredMIME: "image/png",
		Bytes:        samplePNG(t, 4, 4),
		Kind:         model.UploadKindReceiving,
	}

	if _, err := orch.ProcessUpload(ctx, "tenant-1", "user-1", req); err == nil {
		t.Fatal("expected an error once the context is already cancelled")
	}
}

func TestCreateSessionAssignsMonotonicSessionNumber(t *testing.T) {
	orch, store := testOrchestrator(t, "")
	set := store.Set()

	lines := []model.ExtractedLine{{SeqNumber: 1, Description: "Oil Filter"}}
	session, err := orch.CreateSession(context.Background(), set.Sessions, "tenant-1", "user-1", []string{"u1"}, lines)
	if err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}
	if session.Status != model.SessionDraft {
		t.Errorf("Status = %q, want draft", session.Status)
	}
	if session.SessionNumber == "" {
		t.Error("expected a non-empty session number")
	}
}
