package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func makeTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/4+y/4)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 220})
			} else {
				img.SetGray(x, y, color.Gray{Y: 30})
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestPreprocessReturnsDecodableImage(t *testing.T) {
	raw := makeTestPNG(t, 200, 150)
	out := Preprocess(raw, 3000)

	if len(out) == 0 {
		t.Fatalf("Preprocess returned empty output")
	}
	if _, _, err := image.Decode(bytes.NewReader(out)); err != nil {
		t.Fatalf("Preprocess output is not a decodable image: %v", err)
	}
}

func TestPreprocessDownscalesOversizedImages(t *testing.T) {
	raw := makeTestPNG(t, 4000, 3000)
	out := Preprocess(raw, 3000)

	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("failed to decode preprocessed image: %v", err)
	}
	b := img.Bounds()
	if b.Dx() > 3000 || b.Dy() > 3000 {
		t.Errorf("expected downscale to <=3000px, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestPreprocessFallsBackOnInvalidInput(t *testing.T) {
	garbage := []byte{0x00, 0x01, 0x02, 0x03}
	out := Preprocess(garbage, 3000)
	if !bytes.Equal(out, garbage) {
		t.Errorf("expected fallback to original bytes on decode failure")
	}
}
