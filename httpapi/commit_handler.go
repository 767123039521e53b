package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/shortalex12333/Image-processing-sub000/commit"
	"github.com/shortalex12333/Image-processing-sub000/config"
	"github.com/shortalex12333/Image-processing-sub000/middleware"
	"github.com/shortalex12333/Image-processing-sub000/model"
	"github.com/shortalex12333/Image-processing-sub000/observability"
)

// CommitHandler serves POST .../sessions/{session_id}/commit. Committing
// is a privileged action — the authenticated actor must carry the
// privileged (HOD) capability, enforced here rather than trusted from
// the request body.
type CommitHandler struct {
	cfg    *config.Config
	logger zerolog.Logger
	engine *commit.Engine
}

// NewCommitHandler builds the commit handler.
func NewCommitHandler(cfg *config.Config, logger zerolog.Logger, engine *commit.Engine) *CommitHandler {
	return &CommitHandler{cfg: cfg, logger: logger, engine: engine}
}

type commitRequestBody struct {
	CommitmentNotes    string `json:"commitment_notes"`
	OverrideUnverified bool   `json:"override_unverified"`
}

// Commit handles the commit endpoint.
func (h *CommitHandler) Commit(w http.ResponseWriter, r *http.Request) {
	if !middleware.IsPrivileged(r.Context()) {
		writeError(w, r, h.cfg, model.NewError(model.ErrForbiddenPrivileged, "committing a receiving session requires the privileged role", nil))
		return
	}

	tenantID := middleware.TenantID(r.Context())
	actorID := middleware.ActorID(r.Context())
	sessionID := chi.URLParam(r, "session_id")

	var body commitRequestBody
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	result, err := h.engine.Commit(r.Context(), commit.Request{
		TenantID:           tenantID,
		SessionID:          sessionID,
		ActorID:            actorID,
		Notes:              body.CommitmentNotes,
		OverrideUnverified: body.OverrideUnverified,
	})
	if err != nil {
		pe := model.AsPipelineError(err)
		if pe.Code == model.ErrSessionAlreadyCommitted {
			observability.CommitConflictsTotal.Inc()
		}
		if pe.Code == model.ErrInsufficientStock {
			observability.InsufficientStockTotal.Inc()
		}
		writeError(w, r, h.cfg, err)
		return
	}
	observability.SessionsCommittedTotal.Inc()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":           "ok",
		"event":            result.Event,
		"inventory":        result.Inventory,
		"finance":          result.Finance,
		"audit_id":         result.AuditID,
		"low_stock_alerts": result.LowStockAlerts,
	})
}
