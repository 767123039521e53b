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

// SessionHandler serves the receiving-session read/verify endpoints.
type SessionHandler struct {
	cfg      *config.Config
	logger   zerolog.Logger
	sessions repository.Sessions
}

// NewSessionHandler builds the session handler.
func NewSessionHandler(cfg *config.Config, logger zerolog.Logger, sessions repository.Sessions) *SessionHandler {
	return &SessionHandler{cfg: cfg, logger: logger, sessions: sessions}
}

// GetSession handles GET /api/v1/receiving/sessions/{session_id}: the
// session with its lines, suggestions, and a verification summary. The
// caller's privileged flag is echoed back so the UI can decide whether to
// offer the commit action.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantID(r.Context())
	sessionID := chi.URLParam(r, "session_id")

	sess, err := h.sessions.GetSession(r.Context(), tenantID, sessionID)
	if err != nil {
		if err == repository.ErrNoRows {
			writeError(w, r, h.cfg, model.NewError(model.ErrSessionNotFound, "session not found", nil))
			return
		}
		writeError(w, r, h.cfg, model.NewError(model.ErrInternal, err.Error(), nil))
		return
	}
	if sess == nil {
		writeError(w, r, h.cfg, model.NewError(model.ErrSessionNotFound, "session not found", nil))
		return
	}

	verified := 0
	for _, l := range sess.Lines {
		if l.IsVerified {
			verified++
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"session": map[string]interface{}{
			"id":             sess.ID,
			"session_number": sess.SessionNumber,
			"status":         sess.Status,
			"lines":          sess.Lines,
			"summary":        sess.Summary,
			"created_at":     sess.CreatedAt,
			"committed_at":   sess.CommittedAt,
		},
		"verification": map[string]interface{}{
			"total_lines":    len(sess.Lines),
			"verified_lines": verified,
		},
		"permissions": map[string]interface{}{
			"can_commit": middleware.IsPrivileged(r.Context()),
		},
	})
}

// VerifyLine handles PATCH .../lines/{line_id}/verify: marks one draft
// line verified by the authenticated actor.
func (h *SessionHandler) VerifyLine(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantID(r.Context())
	actorID := middleware.ActorID(r.Context())
	sessionID := chi.URLParam(r, "session_id")
	lineID := chi.URLParam(r, "line_id")

	if err := h.sessions.UpdateLineVerified(r.Context(), tenantID, sessionID, lineID, actorID); err != nil {
		if err == repository.ErrNoRows {
			writeError(w, r, h.cfg, model.NewError(model.ErrSessionNotFound, "session or line not found", nil))
			return
		}
		writeError(w, r, h.cfg, model.NewError(model.ErrInternal, err.Error(), nil))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"line_id": lineID,
		"verified_by": actorID,
	})
}
