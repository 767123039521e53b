package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/shortalex12333/Image-processing-sub000/costtracker"
	"github.com/shortalex12333/Image-processing-sub000/extraction"
	"github.com/shortalex12333/Image-processing-sub000/intake"
	"github.com/shortalex12333/Image-processing-sub000/model"
	"github.com/shortalex12333/Image-processing-sub000/ocr"
	"github.com/shortalex12333/Image-processing-sub000/reconciliation"
	"github.com/shortalex12333/Image-processing-sub000/repository"
)

// Orchestrator runs one upload through Intake → OCR → Extraction →
// Reconciliation. Commit is a separate, explicit caller-triggered
// operation (see the commit package) since it requires a privileged
// actor and operates on a whole session rather than one upload.
type Orchestrator struct {
	gate           *intake.Gate
	ocrLayer       *ocr.Layer
	extractionCfg  *extraction.Layer
	reconciliation *reconciliation.Layer
	logger         zerolog.Logger
}

// NewOrchestrator wires the four pre-commit pipeline stages together.
func NewOrchestrator(gate *intake.Gate, ocrLayer *ocr.Layer, extractionLayer *extraction.Layer, reconLayer *reconciliation.Layer, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		gate:           gate,
		ocrLayer:       ocrLayer,
		extractionCfg:  extractionLayer,
		reconciliation: reconLayer,
		logger:         logger,
	}
}

// UploadOutcome is what one document contributes to a session: the
// intake result, its draft lines after extraction and reconciliation,
// and a per-upload cost tracker snapshot.
type UploadOutcome struct {
	Upload     model.Upload
	Duplicate  bool
	Lines      []model.ExtractedLine
	Classification model.Classification
	CostSnapshot  costtracker.Snapshot
}

// ProcessUpload runs one uploaded document through every pre-commit
// stage. Every suspension point (blob I/O, OCR, LLM, repository calls)
// observes ctx, so caller-side cancellation discards partial state and
// never reaches a commit write — there is no commit write in this path
// at all, by construction.
func (o *Orchestrator) ProcessUpload(ctx context.Context, tenantID, actorID string, req intake.Request) (*UploadOutcome, error) {
	admitted, pipelineErr := o.gate.Admit(ctx, req)
	if pipelineErr != nil {
		return nil, pipelineErr
	}
	if admitted.IsDuplicate {
		return &UploadOutcome{Upload: *admitted.Upload, Duplicate: true}, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ocrResult, err := o.ocrLayer.Run(ctx, req.Bytes, req.DeclaredMIME)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	extractionOutput, err := o.extractionCfg.Run(ctx, ocrResult)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reconciledLines, err := o.reconciliation.ReconcileAll(ctx, tenantID, extractionOutput.Lines)
	if err != nil {
		return nil, err
	}

	tracker := costtracker.New()
	if extractionOutput.Summary.LLMCalls > 0 {
		tracker.RecordCall("extraction", 0, 0, extractionOutput.Summary.TotalCost)
	}

	return &UploadOutcome{
		Upload:         *admitted.Upload,
		Lines:          reconciledLines,
		Classification: extractionOutput.Classification,
		CostSnapshot:   tracker.Snapshot(),
	}, nil
}

// CreateSession persists a new draft session covering the given uploads
// and their reconciled lines.
func (o *Orchestrator) CreateSession(ctx context.Context, sessions repository.Sessions, tenantID, creatorID string, uploadIDs []string, lines []model.ExtractedLine) (*model.ReceivingSession, error) {
	now := time.Now()
	number, err := NextSessionNumber(ctx, sessions, tenantID, now.Year())
	if err != nil {
		o.logger.Warn().Err(err).Str("tenant_id", tenantID).Msg("session numbering fell back")
		number = fallbackSessionNumber(now)
	}

	session := NewDraftSession(tenantID, creatorID, number, uploadIDs, now)
	session.Lines = lines
	session.Summary = model.ProcessingSummary{LinesExtracted: len(lines)}

	if _, err := sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func fallbackSessionNumber(now time.Time) string {
	return "RCV-" + now.Format("2006") + "-" + now.Format("150405")
}
