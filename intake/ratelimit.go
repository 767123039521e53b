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

// EnforceRateLimit implements spec §4.1's enforce-rate-limit operation:
// count upload records for the tenant within the sliding window, fail with
// RATE_LIMIT_EXCEEDED above the limit. A transient repository failure
// during the count is tolerated — availability is preferred over strict
// enforcement for this read.
func EnforceRateLimit(ctx context.Context, logger zerolog.Logger, uploads repository.Uploads, cfg *config.Config, tenantID string) *model.PipelineError {
	window := time.Duration(cfg.UploadRateLimitWindowSeconds) * time.Second
	since := time.Now().Add(-window)

	count, err := uploads.CountSince(ctx, tenantID, since)
	if err != nil {
		logger.Warn().Err(err).Str("tenant_id", tenantID).Msg("rate limit count unavailable, admitting upload")
		return nil
	}

	if count >= cfg.MaxUploadsPerHour {
		return model.NewError(model.ErrRateLimitExceeded,
			fmt.Sprintf("upload rate limit of %d per %d seconds exceeded", cfg.MaxUploadsPerHour, cfg.UploadRateLimitWindowSeconds),
			map[string]interface{}{
				"current_count":       count,
				"limit":                cfg.MaxUploadsPerHour,
				"retry_after_seconds": cfg.UploadRateLimitWindowSeconds,
			})
	}

	return nil
}
