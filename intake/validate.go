package intake

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	"github.com/shortalex12333/Image-processing-sub000/config"
	"github.com/shortalex12333/Image-processing-sub000/model"
)

// allowedMIME maps an upload kind to its MIME/extension allow-list.
var allowedMIME = map[model.UploadKind][]string{
	model.UploadKindReceiving:     {"image/jpeg", "image/png", "image/heic", "application/pdf"},
	model.UploadKindShippingLabel: {"image/jpeg", "image/png", "application/pdf"},
	model.UploadKindDiscrepancy:   {"image/jpeg", "image/png"},
	model.UploadKindPartPhoto:     {"image/jpeg", "image/png"},
	model.UploadKindFinance:       {"application/pdf", "image/jpeg", "image/png"},
}

var imageMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/heic": true,
	"image/gif":  true,
}

// ValidationInput is the payload handed to Validate.
type ValidationInput struct {
	Filename     string
	DeclaredMIME string
	Bytes        []byte
	Kind         model.UploadKind
}

// Validate enforces spec §4.1's validate operation: size, type, image
// dimensions, and Document Quality Score, in that order.
func Validate(cfg *config.Config, in ValidationInput) (*model.QualityMetadata, *model.PipelineError) {
	maxBytes := cfg.MaxFileSizeMB * 1024 * 1024
	if int64(len(in.Bytes)) > maxBytes {
		return nil, model.NewError(model.ErrFileTooLarge,
			fmt.Sprintf("file exceeds maximum size of %d MB", cfg.MaxFileSizeMB),
			map[string]interface{}{"max_bytes": maxBytes, "actual_bytes": len(in.Bytes)})
	}

	allow, ok := allowedMIME[in.Kind]
	if !ok {
		allow = allowedMIME[model.UploadKindReceiving]
	}
	if !mimeAllowed(in.DeclaredMIME, in.Filename, allow) {
		return nil, model.NewError(model.ErrInvalidFileType,
			fmt.Sprintf("MIME type %q not permitted for upload kind %q", in.DeclaredMIME, in.Kind), nil)
	}

	if !imageMIME[in.DeclaredMIME] {
		// PDFs and non-image kinds carry no DQS; quality gate only applies
		// to images.
		return &model.QualityMetadata{}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(in.Bytes))
	if err != nil {
		return nil, model.NewError(model.ErrInvalidImage, "unable to decode image bytes", nil)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < cfg.MinImageWidth || height < cfg.MinImageHeight {
		return nil, model.NewError(model.ErrImageTooSmall,
			fmt.Sprintf("image %dx%d below minimum %dx%d", width, height, cfg.MinImageWidth, cfg.MinImageHeight),
			map[string]interface{}{"width": width, "height": height})
	}

	quality := ComputeDQS(cfg, img)
	if quality.DQS < cfg.DQSThreshold {
		quality.Remediation = remediationHint(quality)
		return &quality, model.NewError(model.ErrImageQualityTooLow,
			fmt.Sprintf("document quality score %.1f below threshold %.1f", quality.DQS, cfg.DQSThreshold),
			map[string]interface{}{
				"dqs":         quality.DQS,
				"blur":        quality.Blur,
				"glare":       quality.Glare,
				"contrast":    quality.Contrast,
				"remediation": quality.Remediation,
			})
	}

	return &quality, nil
}

func mimeAllowed(declared, filename string, allow []string) bool {
	for _, m := range allow {
		if strings.EqualFold(m, declared) {
			return true
		}
	}
	// Fall back to extension sniffing when the declared MIME is empty or
	// generic (multipart form uploads frequently send octet-stream).
	ext := strings.ToLower(filepath.Ext(filename))
	extToMIME := map[string]string{
		".jpg": "image/jpeg", ".jpeg": "image/jpeg", ".png": "image/png",
		".heic": "image/heic", ".pdf": "application/pdf", ".gif": "image/gif",
	}
	if mt, ok := extToMIME[ext]; ok {
		for _, m := range allow {
			if strings.EqualFold(m, mt) {
				return true
			}
		}
	}
	return false
}

// remediationHint names the worst-scoring DQS component with actionable
// guidance, recovered from the original implementation's validator.
func remediationHint(q model.QualityMetadata) string {
	type component struct {
		name  string
		score float64
		hint  string
	}
	components := []component{
		{"blur", q.Blur, "Hold the camera steady and refocus before capturing the document."},
		{"glare", q.Glare, "Turn off flash or tilt the document to reduce glare."},
		{"contrast", q.Contrast, "Increase lighting or move to a more evenly lit surface for better contrast."},
	}

	worst := components[0]
	for _, c := range components[1:] {
		if c.score < worst.score {
			worst = c
		}
	}
	return worst.hint
}
