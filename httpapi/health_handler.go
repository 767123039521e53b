package httpapi

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/shortalex12333/Image-processing-sub000/ocr"
)

// HealthHandler serves GET /health: liveness plus the active OCR engine
// and a per-engine health breakdown, per spec §6.
type HealthHandler struct {
	logger   zerolog.Logger
	registry *ocr.Registry
}

// NewHealthHandler builds the health handler.
func NewHealthHandler(logger zerolog.Logger, registry *ocr.Registry) *HealthHandler {
	return &HealthHandler{logger: logger, registry: registry}
}

// Health reports liveness and OCR engine status. It returns 503 when no
// engine in priority order is currently usable.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	details := h.registry.HealthCheckAll(r.Context())

	active := ""
	if engine, ok := h.registry.Select(); ok {
		active = engine.Name()
	}

	status := http.StatusOK
	body := "healthy"
	if active == "" {
		status = http.StatusServiceUnavailable
		body = "degraded"
	}

	writeJSON(w, status, map[string]interface{}{
		"status":      body,
		"active_ocr_engine": active,
		"ocr_engines": details,
	})
}
