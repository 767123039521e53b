package ocr

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/shortalex12333/Image-processing-sub000/model"
)

// PDFEngine extracts embedded text from a PDF first; if no page carries
// non-empty text, the caller must rasterize pages and feed them through
// an image Engine instead (HasEmbeddedText reports which path to take).
type PDFEngine struct {
	enabled bool
}

// NewPDFEngine builds the embedded-text PDF extractor.
func NewPDFEngine(enabled bool) *PDFEngine {
	return &PDFEngine{enabled: enabled}
}

func (e *PDFEngine) Name() string { return "pdf" }

func (e *PDFEngine) Precondition() bool { return e.enabled }

func (e *PDFEngine) HealthCheck(ctx context.Context) bool { return e.enabled }

// Extract satisfies the Engine interface for a PDF upload already known to
// carry embedded text; rasterize-then-OCR is handled one level up in
// the Layer, since it needs an image Engine, not this one.
func (e *PDFEngine) Extract(ctx context.Context, pdfBytes []byte) (*model.OCRResult, error) {
	text, err := ExtractEmbeddedText(pdfBytes)
	if err != nil {
		return nil, err
	}
	return ToOCRResult(text), nil
}

// showTextOperator matches PDF content-stream text-show operators: simple
// strings before Tj/' and array form before TJ.
var showTextOperator = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)\s*(?:Tj|'|TJ)`)

// ExtractEmbeddedText pulls the raw content streams out of the PDF via
// pdfcpu and scans them for text-show operators, concatenating the
// decoded string literals page by page.
func ExtractEmbeddedText(pdfBytes []byte) (string, error) {
	tmpDir, err := os.MkdirTemp("", "rcv-pdf-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmpDir)

	inFile := filepath.Join(tmpDir, "in.pdf")
	if err := os.WriteFile(inFile, pdfBytes, 0o600); err != nil {
		return "", err
	}

	if err := api.ExtractContentFile(inFile, tmpDir, nil, nil); err != nil {
		return "", err
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return "", err
	}

	var out strings.Builder
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(tmpDir, entry.Name()))
		if err != nil {
			continue
		}
		for _, m := range showTextOperator.FindAllSubmatch(data, -1) {
			out.Write(unescapePDFString(m[1]))
			out.WriteByte(' ')
		}
		out.WriteByte('\n')
	}

	return strings.TrimSpace(out.String()), nil
}

func unescapePDFString(b []byte) []byte {
	b = bytes.ReplaceAll(b, []byte(`\(`), []byte("("))
	b = bytes.ReplaceAll(b, []byte(`\)`), []byte(")"))
	b = bytes.ReplaceAll(b, []byte(`\\`), []byte(`\`))
	return b
}

// HasEmbeddedText reports whether ExtractEmbeddedText produced any
// non-whitespace content worth treating as authoritative.
func HasEmbeddedText(text string) bool {
	return strings.TrimSpace(text) != ""
}

// ToOCRResult wraps embedded-text extraction in the uniform result shape
// so the rest of the pipeline never special-cases PDFs.
func ToOCRResult(text string) *model.OCRResult {
	return &model.OCRResult{
		Text:       text,
		Confidence: 1.0,
		Engine:     "pdf",
	}
}
