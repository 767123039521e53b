package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/shortalex12333/Image-processing-sub000/model"
)

type stubSessionCounter struct {
	count int
	err   error
}

func (s *stubSessionCounter) CreateSession(ctx context.Context, sess *model.ReceivingSession) (string, error) {
	return "", nil
}
func (s *stubSessionCounter) GetSession(ctx context.Context, tenantID, sessionID string) (*model.ReceivingSession, error) {
	return nil, nil
}
func (s *stubSessionCounter) ListLines(ctx context.Context, tenantID, sessionID string) ([]model.ExtractedLine, error) {
	return nil, nil
}
func (s *stubSessionCounter) InsertLine(ctx context.Context, tenantID, sessionID string, line *model.ExtractedLine) (string, error) {
	return "", nil
}
func (s *stubSessionCounter) UpdateLineVerified(ctx context.Context, tenantID, sessionID, lineID, actorID string) error {
	return nil
}
func (s *stubSessionCounter) CommitSessionIfDraft(ctx context.Context, tenantID, sessionID, actorID, eventID string, ts time.Time) (bool, error) {
	return true, nil
}
func (s *stubSessionCounter) CountEventsForTenantYear(ctx context.Context, tenantID string, year int) (int, error) {
	return s.count, s.err
}

func TestNextSessionNumberFormatsWithLeadingZeros(t *testing.T) {
	counter := &stubSessionCounter{count: 4}
	number, err := NextSessionNumber(context.Background(), counter, "tenant-1", 2026)
	if err != nil {
		t.Fatalf("NextSessionNumber returned error: %v", err)
	}
	if number != "RCV-2026-005" {
		t.Errorf("NextSessionNumber() = %q, want RCV-2026-005", number)
	}
}

func TestNewDraftSessionIsDraftStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	sess := NewDraftSession("tenant-1", "user-1", "RCV-2026-001", []string{"u1"}, now)
	if sess.Status != model.SessionDraft {
		t.Errorf("Status = %q, want draft", sess.Status)
	}
	if sess.SessionNumber != "RCV-2026-001" {
		t.Errorf("SessionNumber = %q, want RCV-2026-001", sess.SessionNumber)
	}
}
