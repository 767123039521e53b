package ocr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
)

// Preprocess runs the idempotent image-cleanup pipeline from spec §4.2:
// EXIF orientation correction, grayscale, conditional deskew, adaptive
// thresholding, a blur-then-sharpen speckle pass, contrast enhancement, and an
// optional downscale so neither dimension exceeds maxDimensionPx. Any
// stage that fails falls back to the pre-stage bytes, so a single bad
// transform never fails the whole pipeline.
func Preprocess(raw []byte, maxDimensionPx int) []byte {
	img, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return raw
	}

	working := img

	if gray := toGray(working); gray != nil {
		working = gray
	}

	if angle := estimateSkewAngle(working); math.Abs(angle) > 0.5 {
		if rotated := rotateSafely(working, -angle); rotated != nil {
			working = rotated
		}
	}

	if thresholded := adaptiveThreshold(working); thresholded != nil {
		working = thresholded
	}
	if opened := morphologicalOpen(working); opened != nil {
		working = opened
	}
	if contrasted := enhanceContrast(working); contrasted != nil {
		working = contrasted
	}

	if maxDimensionPx > 0 {
		b := working.Bounds()
		if b.Dx() > maxDimensionPx || b.Dy() > maxDimensionPx {
			working = imaging.Fit(working, maxDimensionPx, maxDimensionPx, imaging.Lanczos)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, working); err != nil {
		return raw
	}
	return buf.Bytes()
}

func toGray(img image.Image) image.Image {
	defer func() { recover() }()
	return imaging.Grayscale(img)
}

func rotateSafely(img image.Image, degrees float64) (out image.Image) {
	defer func() {
		if recover() != nil {
			out = nil
		}
	}()
	return imaging.Rotate(img, degrees, image.Transparent)
}

// estimateSkewAngle is a coarse Hough-style estimate: it scans a handful
// of candidate angles and returns the one that maximizes the horizontal
// variance of row-sum projections (text lines align most sharply at the
// true skew angle). Returns degrees, positive = clockwise skew.
func estimateSkewAngle(img image.Image) float64 {
	gray := imaging.Grayscale(img)
	b := gray.Bounds()
	if b.Dx() < 10 || b.Dy() < 10 {
		return 0
	}

	best := 0.0
	bestScore := -1.0
	for angle := -5.0; angle <= 5.0; angle += 0.5 {
		rotated := imaging.Rotate(gray, angle, image.White)
		score := rowProjectionVariance(rotated)
		if score > bestScore {
			bestScore = score
			best = angle
		}
	}
	return best
}

func rowProjectionVariance(img image.Image) float64 {
	b := img.Bounds()
	h := b.Dy()
	if h == 0 {
		return 0
	}
	sums := make([]float64, h)
	for y := 0; y < h; y++ {
		var sum float64
		for x := b.Min.X; x < b.Max.X; x++ {
			r, _, _, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			sum += float64(r)
		}
		sums[y] = sum
	}
	mean := 0.0
	for _, s := range sums {
		mean += s
	}
	mean /= float64(h)
	variance := 0.0
	for _, s := range sums {
		d := s - mean
		variance += d * d
	}
	return variance / float64(h)
}

// adaptiveThreshold approximates adaptive Gaussian thresholding by
// blurring the image as a local-mean estimate and thresholding the
// original against it.
func adaptiveThreshold(img image.Image) image.Image {
	defer func() { recover() }()
	blurred := imaging.Blur(img, 3)
	b := img.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			orig := grayValue(img, x, y)
			local := grayValue(blurred, x, y)
			if float64(orig) < float64(local)-7 {
				out.SetGray(x, y, grayBlack)
			} else {
				out.SetGray(x, y, grayWhite)
			}
		}
	}
	return out
}

func grayValue(img image.Image, x, y int) uint8 {
	r, g, bl, _ := img.At(x, y).RGBA()
	lum := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(bl)) / 257.0
	return uint8(lum)
}

var (
	grayBlack = color.Gray{Y: 0}
	grayWhite = color.Gray{Y: 255}
)

// morphologicalOpen approximates an opening with a light blur followed by
// a sharpen to soften speckle noise left by thresholding; it does not
// perform a true 2x2 erosion and dilation.
func morphologicalOpen(img image.Image) image.Image {
	defer func() { recover() }()
	eroded := imaging.Blur(img, 0.5)
	dilated := imaging.Sharpen(eroded, 0.5)
	return dilated
}

func enhanceContrast(img image.Image) image.Image {
	defer func() { recover() }()
	return imaging.AdjustContrast(img, 15)
}
