package intake

import (
	"image"
	"image/color"
	"testing"

	"github.com/shortalex12333/Image-processing-sub000/config"
)

func solidImage(w, h int, c color.Gray) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetGray(x, y, c)
		}
	}
	return img
}

func checkerImage(w, h int) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.SetGray(x, y, color.Gray{Y: 255})
			} else {
				img.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return img
}

func testConfig() *config.Config {
	return &config.Config{
		DQSThreshold:        70.0,
		DQSBlurWeight:       0.4,
		DQSGlareWeight:      0.3,
		DQSContrastWeight:   0.3,
		GlarePixelThreshold: 250,
	}
}

func TestComputeDQSFlatImageIsLowQuality(t *testing.T) {
	cfg := testConfig()
	img := solidImage(100, 100, color.Gray{Y: 128})
	q := ComputeDQS(cfg, img)

	if q.Contrast != 0 {
		t.Errorf("flat image contrast = %v, want 0", q.Contrast)
	}
	if q.Blur != 0 {
		t.Errorf("flat image blur score = %v, want 0 (no edges)", q.Blur)
	}
	if q.DQS >= cfg.DQSThreshold {
		t.Errorf("flat image DQS = %v, expected below threshold %v", q.DQS, cfg.DQSThreshold)
	}
}

func TestComputeDQSHighContrastImageScoresHigher(t *testing.T) {
	cfg := testConfig()
	flat := ComputeDQS(cfg, solidImage(100, 100, color.Gray{Y: 128}))
	checker := ComputeDQS(cfg, checkerImage(100, 100))

	if checker.Contrast <= flat.Contrast {
		t.Errorf("checkerboard contrast %v should exceed flat contrast %v", checker.Contrast, flat.Contrast)
	}
	if checker.DQS <= flat.DQS {
		t.Errorf("checkerboard DQS %v should exceed flat DQS %v", checker.DQS, flat.DQS)
	}
}

func TestGlareScorePenalizesBrightPixels(t *testing.T) {
	cfg := testConfig()
	bright := ComputeDQS(cfg, solidImage(50, 50, color.Gray{Y: 255}))
	mid := ComputeDQS(cfg, solidImage(50, 50, color.Gray{Y: 128}))

	if bright.Glare >= mid.Glare {
		t.Errorf("all-bright image glare score %v should be lower than mid-gray %v", bright.Glare, mid.Glare)
	}
}
