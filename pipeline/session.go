// Package pipeline stitches Intake, OCR, Extraction, and Reconciliation
// into one orchestrated per-upload run, and assigns the monotonic
// session/event numbering scheme described in spec §4.1/§9.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/shortalex12333/Image-processing-sub000/model"
	"github.com/shortalex12333/Image-processing-sub000/repository"
)

// NextSessionNumber computes RCV-<year>-<NNN>, monotonic per tenant per
// year starting from 001. It is a best-effort next value derived from a
// count, not a reservation — the repository's insert-time uniqueness
// constraint is the final guard under concurrency.
func NextSessionNumber(ctx context.Context, sessions repository.Sessions, tenantID string, year int) (string, error) {
	count, err := sessions.CountEventsForTenantYear(ctx, tenantID, year)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("RCV-%d-%03d", year, count+1), nil
}

// NewDraftSession builds an empty draft ReceivingSession ready to accept
// extraction/reconciliation output.
func NewDraftSession(tenantID, creatorID, sessionNumber string, uploadIDs []string, now time.Time) *model.ReceivingSession {
	return &model.ReceivingSession{
		ID:            model.NewID(),
		TenantID:      tenantID,
		CreatorID:     creatorID,
		SessionNumber: sessionNumber,
		Status:        model.SessionDraft,
		UploadIDs:     uploadIDs,
		CreatedAt:     now,
	}
}
