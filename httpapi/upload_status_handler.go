package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/shortalex12333/Image-processing-sub000/config"
	"github.com/shortalex12333/Image-processing-sub000/middleware"
	"github.com/shortalex12333/Image-processing-sub000/model"
	"github.com/shortalex12333/Image-processing-sub000/repository"
)

// UploadStatusHandler serves GET /api/v1/images/{image_id}/status.
type UploadStatusHandler struct {
	cfg     *config.Config
	logger  zerolog.Logger
	uploads repository.Uploads
}

// NewUploadStatusHandler builds the upload status handler.
func NewUploadStatusHandler(cfg *config.Config, logger zerolog.Logger, uploads repository.Uploads) *UploadStatusHandler {
	return &UploadStatusHandler{cfg: cfg, logger: logger, uploads: uploads}
}

// Status reports the current processing status of one uploaded image.
func (h *UploadStatusHandler) Status(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantID(r.Context())
	imageID := chi.URLParam(r, "image_id")

	upload, err := h.uploads.Get(r.Context(), tenantID, imageID)
	if err != nil {
		if err == repository.ErrNoRows {
			writeError(w, r, h.cfg, model.NewError(model.ErrSessionNotFound, "upload not found", nil))
			return
		}
		writeError(w, r, h.cfg, model.NewError(model.ErrInternal, err.Error(), nil))
		return
	}
	if upload == nil {
		writeError(w, r, h.cfg, model.NewError(model.ErrSessionNotFound, "upload not found", nil))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":           "ok",
		"upload_id":        upload.ID,
		"processing_status": upload.Status,
		"quality":          upload.Quality,
		"created_at":       upload.CreatedAt,
	})
}
