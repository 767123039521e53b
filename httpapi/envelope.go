// Package httpapi wires the receiving pipeline's HTTP surface: the chi
// router, per-route handlers, and the error envelope shared by all of
// them, following the teacher's router/handler split.
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/shortalex12333/Image-processing-sub000/config"
	"github.com/shortalex12333/Image-processing-sub000/model"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

var errorStatus = map[model.ErrorCode]int{
	model.ErrFileTooLarge:           http.StatusBadRequest,
	model.ErrInvalidFileType:        http.StatusBadRequest,
	model.ErrImageTooSmall:          http.StatusBadRequest,
	model.ErrImageQualityTooLow:     http.StatusBadRequest,
	model.ErrInvalidImage:           http.StatusBadRequest,
	model.ErrRateLimitExceeded:      http.StatusTooManyRequests,
	model.ErrOCRFailed:              http.StatusUnprocessableEntity,
	model.ErrLLMBudgetExceeded:      http.StatusOK,
	model.ErrNormalizationFailed:    http.StatusUnprocessableEntity,
	model.ErrSessionNotFound:        http.StatusNotFound,
	model.ErrUnverifiedLines:        http.StatusBadRequest,
	model.ErrSessionAlreadyCommitted: http.StatusConflict,
	model.ErrInsufficientStock:      http.StatusConflict,
	model.ErrForbiddenPrivileged:    http.StatusForbidden,
	model.ErrSignatureMismatch:      http.StatusUnprocessableEntity,
	model.ErrInternal:               http.StatusInternalServerError,
}

// writeError renders err as the error envelope described in spec §6/§7:
// {status:"error", error_code, message, details?, timestamp, request_id?}.
// For INTERNAL_ERROR the original message is included only in development
// (cfg.IsDevelopment()), per §7's propagation policy for uncaught errors.
func writeError(w http.ResponseWriter, r *http.Request, cfg *config.Config, err error) {
	pe := model.AsPipelineError(err)
	status, ok := errorStatus[pe.Code]
	if !ok {
		status = http.StatusInternalServerError
	}

	message := pe.Message
	if pe.Code == model.ErrInternal && !cfg.IsDevelopment() {
		message = "an internal error occurred"
	}

	body := map[string]interface{}{
		"status":     "error",
		"error_code": string(pe.Code),
		"message":    message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	if pe.Details != nil {
		body["details"] = pe.Details
	}
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		body["request_id"] = reqID
	}
	writeJSON(w, status, body)
}
