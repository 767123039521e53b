// Package intake is the receiving pipeline's front door: validation,
// quality scoring, deduplication, and per-tenant rate limiting, per
// spec §4.1.
package intake

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/shortalex12333/Image-processing-sub000/config"
	"github.com/shortalex12333/Image-processing-sub000/model"
	"github.com/shortalex12333/Image-processing-sub000/repository"
)

// Gate admits or rejects a single uploaded file.
type Gate struct {
	cfg     *config.Config
	logger  zerolog.Logger
	uploads repository.Uploads
	blob    repository.Blob
	abuse   *AbuseGuard
}

// NewGate builds an intake gate.
func NewGate(cfg *config.Config, logger zerolog.Logger, uploads repository.Uploads, blob repository.Blob, abuse *AbuseGuard) *Gate {
	return &Gate{cfg: cfg, logger: logger, uploads: uploads, blob: blob, abuse: abuse}
}

// Request is a single file submitted for intake.
type Request struct {
	TenantID     string
	UploaderID   string
	Filename     string
	DeclaredMIME string
	Bytes        []byte
	Kind         model.UploadKind
}

// Result is returned for each file processed by Admit, whether newly
// accepted or resolved to an existing duplicate.
type Result struct {
	Upload      *model.Upload
	IsDuplicate bool
}

// Admit runs the full intake sequence for one file: rate limit check
// first (so cancellation manifests before any paid work), then validate,
// then dedupe, then persist. Validation errors are terminal for this
// upload but never abort sibling uploads in the same request — callers
// iterate Admit per file and collect partial successes.
func (g *Gate) Admit(ctx context.Context, req Request) (*Result, *model.PipelineError) {
	if pe := EnforceRateLimit(ctx, g.logger, g.uploads, g.cfg, req.TenantID); pe != nil {
		return nil, pe
	}
	if g.abuse != nil {
		if pe := g.abuse.Admit(ctx, req.TenantID); pe != nil {
			return nil, pe
		}
	}

	quality, pe := Validate(g.cfg, ValidationInput{
		Filename:     req.Filename,
		DeclaredMIME: req.DeclaredMIME,
		Bytes:        req.Bytes,
		Kind:         req.Kind,
	})
	if pe != nil {
		return nil, pe
	}

	sha := SHA256Hex(req.Bytes)

	existing, err := FindDuplicate(ctx, g.uploads, req.TenantID, sha)
	if err != nil {
		return nil, model.NewError(model.ErrInternal, "duplicate lookup failed", nil)
	}
	if existing != nil {
		return &Result{Upload: existing, IsDuplicate: true}, nil
	}

	now := time.Now().UTC()
	sanitized := SanitizeFilename(req.Filename)
	storagePath := fmt.Sprintf("%s/%s/%04d/%02d/%s_%s", req.TenantID, req.Kind, now.Year(), now.Month(), model.NewID(), sanitized)

	if g.blob != nil {
		if err := g.blob.Put(ctx, storagePath, req.Bytes); err != nil {
			return nil, model.NewError(model.ErrInternal, "failed to persist upload bytes", nil)
		}
	}

	upload := &model.Upload{
		ID:               model.NewID(),
		TenantID:         req.TenantID,
		UploaderID:       req.UploaderID,
		OriginalFilename: sanitized,
		MimeType:         req.DeclaredMIME,
		ByteSize:         int64(len(req.Bytes)),
		SHA256:           sha,
		StoragePath:      storagePath,
		Kind:             req.Kind,
		Status:           model.ProcessingQueued,
		CreatedAt:        now,
	}
	if quality != nil {
		upload.Quality = *quality
	}

	id, err := g.uploads.Insert(ctx, upload)
	if err != nil {
		// Unique-index collision: a concurrent identical upload won the
		// race. Read its row rather than fail.
		if winner, lookupErr := FindDuplicate(ctx, g.uploads, req.TenantID, sha); lookupErr == nil && winner != nil {
			return &Result{Upload: winner, IsDuplicate: true}, nil
		}
		return nil, model.NewError(model.ErrInternal, "failed to persist upload record", nil)
	}
	upload.ID = id

	return &Result{Upload: upload, IsDuplicate: false}, nil
}
