package httpapi

import (
	"mime/multipart"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/shortalex12333/Image-processing-sub000/config"
	"github.com/shortalex12333/Image-processing-sub000/intake"
	"github.com/shortalex12333/Image-processing-sub000/middleware"
	"github.com/shortalex12333/Image-processing-sub000/model"
	"github.com/shortalex12333/Image-processing-sub000/observability"
	"github.com/shortalex12333/Image-processing-sub000/pipeline"
	"github.com/shortalex12333/Image-processing-sub000/repository"
)

// UploadHandler serves POST /api/v1/images/upload: admits each multipart
// file into the intake gate, runs it through the pre-commit pipeline, and
// appends the resulting lines to a session — either an existing draft
// named by the optional session_id field, or a freshly created one.
type UploadHandler struct {
	cfg          *config.Config
	logger       zerolog.Logger
	orchestrator *pipeline.Orchestrator
	sessions     repository.Sessions
}

// NewUploadHandler builds the upload handler.
func NewUploadHandler(cfg *config.Config, logger zerolog.Logger, orchestrator *pipeline.Orchestrator, sessions repository.Sessions) *UploadHandler {
	return &UploadHandler{cfg: cfg, logger: logger, orchestrator: orchestrator, sessions: sessions}
}

type fileResult struct {
	Filename      string `json:"filename"`
	UploadID      string `json:"upload_id"`
	IsDuplicate   bool   `json:"is_duplicate"`
	StoragePath   string `json:"storage_path"`
	Status        string `json:"status"`
	LinesExtracted int   `json:"lines_extracted,omitempty"`
}

// Upload handles the multipart admission request. Each file is admitted
// independently — one file's validation failure never aborts siblings in
// the same request, per the intake gate's stated per-file policy.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantID(r.Context())
	actorID := middleware.ActorID(r.Context())

	maxMem := h.cfg.MaxFileSizeMB * (1 << 20)
	if err := r.ParseMultipartForm(maxMem); err != nil {
		writeError(w, r, h.cfg, model.NewError(model.ErrInvalidImage, "failed to parse multipart form: "+err.Error(), nil))
		return
	}

	uploadType := r.FormValue("upload_type")
	kind := model.UploadKindReceiving
	switch uploadType {
	case string(model.UploadKindShippingLabel):
		kind = model.UploadKindShippingLabel
	case string(model.UploadKindDiscrepancy):
		kind = model.UploadKindDiscrepancy
	case string(model.UploadKindPartPhoto):
		kind = model.UploadKindPartPhoto
	case string(model.UploadKindFinance):
		kind = model.UploadKindFinance
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, r, h.cfg, model.NewError(model.ErrInvalidImage, "no files submitted under 'files'", nil))
		return
	}

	sessionID := r.FormValue("session_id")

	results := make([]fileResult, 0, len(files))
	uploadIDs := make([]string, 0, len(files))
	var allLines []model.ExtractedLine
	for _, fh := range files {
		result, lines, pe := h.admitOne(r, tenantID, actorID, kind, fh)
		if pe != nil {
			results = append(results, fileResult{
				Filename: fh.Filename,
				Status:   string(pe.Code),
			})
			continue
		}
		results = append(results, *result)
		if !result.IsDuplicate {
			uploadIDs = append(uploadIDs, result.UploadID)
			allLines = append(allLines, lines...)
		}
	}

	if len(allLines) > 0 {
		var err error
		sessionID, err = h.assignSession(r, tenantID, actorID, sessionID, uploadIDs, allLines)
		if err != nil {
			h.logger.Warn().Err(err).Str("tenant_id", tenantID).Msg("failed to persist session for admitted uploads")
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "ok",
		"session_id": sessionID,
		"files":      results,
	})
}

// assignSession appends lines to an existing draft session, or creates a
// new one, depending on whether the caller supplied a session_id.
func (h *UploadHandler) assignSession(r *http.Request, tenantID, actorID, sessionID string, uploadIDs []string, lines []model.ExtractedLine) (string, error) {
	if sessionID != "" {
		for i := range lines {
			if _, err := h.sessions.InsertLine(r.Context(), tenantID, sessionID, &lines[i]); err != nil {
				return sessionID, err
			}
		}
		return sessionID, nil
	}

	session, err := h.orchestrator.CreateSession(r.Context(), h.sessions, tenantID, actorID, uploadIDs, lines)
	if err != nil {
		return "", err
	}
	return session.ID, nil
}

func (h *UploadHandler) admitOne(r *http.Request, tenantID, actorID string, kind model.UploadKind, fh *multipart.FileHeader) (*fileResult, []model.ExtractedLine, *model.PipelineError) {
	f, err := fh.Open()
	if err != nil {
		return nil, nil, model.NewError(model.ErrInvalidImage, "failed to open uploaded file", nil)
	}
	defer f.Close()

	buf := make([]byte, fh.Size)
	if _, err := f.Read(buf); err != nil && fh.Size > 0 {
		return nil, nil, model.NewError(model.ErrInvalidImage, "failed to read uploaded file", nil)
	}

	req := intake.Request{
		TenantID:     tenantID,
		UploaderID:   actorID,
		Filename:     fh.Filename,
		DeclaredMIME: fh.Header.Get("Content-Type"),
		Bytes:        buf,
		Kind:         kind,
	}

	outcome, err := h.orchestrator.ProcessUpload(r.Context(), tenantID, actorID, req)
	if err != nil {
		observability.UploadsTotal.WithLabelValues("rejected").Inc()
		return nil, nil, model.AsPipelineError(err)
	}
	observability.UploadsTotal.WithLabelValues("accepted").Inc()

	status := string(model.ProcessingCompleted)
	if outcome.Duplicate {
		status = string(outcome.Upload.Status)
	}

	return &fileResult{
		Filename:       outcome.Upload.OriginalFilename,
		UploadID:       outcome.Upload.ID,
		IsDuplicate:    outcome.Duplicate,
		StoragePath:    outcome.Upload.StoragePath,
		Status:         status,
		LinesExtracted: len(outcome.Lines),
	}, outcome.Lines, nil
}
