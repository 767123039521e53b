package intake

import (
	"image"
	"image/color"

	"github.com/shortalex12333/Image-processing-sub000/config"
	"github.com/shortalex12333/Image-processing-sub000/model"
)

// ComputeDQS implements spec §4.1's Document Quality Score:
// DQS = w_b*B + w_g*G + w_c*C, where B is a normalized Laplacian-variance
// blur proxy, G is a glare penalty, and C is Michelson contrast.
func ComputeDQS(cfg *config.Config, img image.Image) model.QualityMetadata {
	gray := toGrayscale(img)

	blur := blurScore(gray)
	glare := glareScore(gray, cfg.GlarePixelThreshold)
	contrast := contrastScore(gray)

	dqs := cfg.DQSBlurWeight*blur + cfg.DQSGlareWeight*glare + cfg.DQSContrastWeight*contrast

	return model.QualityMetadata{
		Blur:     blur,
		Glare:    glare,
		Contrast: contrast,
		DQS:      dqs,
	}
}

func toGrayscale(img image.Image) [][]float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([][]float64, h)
	for y := 0; y < h; y++ {
		row := make([]float64, w)
		for x := 0; x < w; x++ {
			c := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			row[x] = float64(c.Y)
		}
		out[y] = row
	}
	return out
}

// blurScore applies a discrete Laplacian kernel and returns the variance of
// the response, normalized to a 0-100 scale (higher = sharper).
func blurScore(gray [][]float64) float64 {
	h := len(gray)
	if h < 3 {
		return 0
	}
	w := len(gray[0])
	if w < 3 {
		return 0
	}

	var values []float64
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			lap := -4*gray[y][x] + gray[y-1][x] + gray[y+1][x] + gray[y][x-1] + gray[y][x+1]
			values = append(values, lap)
		}
	}
	if len(values) == 0 {
		return 0
	}

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))

	// Normalize: empirically, variance above ~2000 indicates a sharp
	// document scan; clamp to [0,100].
	normalized := variance / 20.0
	if normalized > 100 {
		normalized = 100
	}
	return normalized
}

// glareScore penalizes the percentage of near-white pixels.
func glareScore(gray [][]float64, threshold int) float64 {
	total := 0
	bright := 0
	for _, row := range gray {
		for _, v := range row {
			total++
			if v >= float64(threshold) {
				bright++
			}
		}
	}
	if total == 0 {
		return 100
	}
	pctBright := float64(bright) / float64(total) * 100.0
	score := 100.0 - pctBright*10.0
	if score < 0 {
		score = 0
	}
	return score
}

// contrastScore computes 100 * Michelson contrast (Lmax-Lmin)/(Lmax+Lmin).
func contrastScore(gray [][]float64) float64 {
	lmin, lmax := 255.0, 0.0
	for _, row := range gray {
		for _, v := range row {
			if v < lmin {
				lmin = v
			}
			if v > lmax {
				lmax = v
			}
		}
	}
	if lmax+lmin == 0 {
		return 0
	}
	return 100.0 * (lmax - lmin) / (lmax + lmin)
}
