package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shortalex12333/Image-processing-sub000/model"
)

func TestAtomicApplyDeltaRejectsNegativeResult(t *testing.T) {
	store := New()
	store.SeedPart(model.Part{ID: "p1", TenantID: "t1", PartNumber: "MTU-1", StockOnHand: decimal.NewFromInt(5)})

	set := store.Set()
	_, ok, err := set.Catalog.AtomicApplyDelta(context.Background(), "t1", "p1", -10)
	if err != nil {
		t.Fatalf("AtomicApplyDelta returned error: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false when delta would drive stock negative")
	}
}

func TestCommitSessionIfDraftIsOneShot(t *testing.T) {
	store := New()
	set := store.Set()
	sessionID, err := set.Sessions.CreateSession(context.Background(), &model.ReceivingSession{
		TenantID: "t1",
		Status:   model.SessionDraft,
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	ok1, err := set.Sessions.CommitSessionIfDraft(context.Background(), "t1", sessionID, "actor", "evt-1", time.Now())
	if err != nil || !ok1 {
		t.Fatalf("first commit should succeed: ok=%v err=%v", ok1, err)
	}
	ok2, err := set.Sessions.CommitSessionIfDraft(context.Background(), "t1", sessionID, "actor", "evt-2", time.Now())
	if err != nil || ok2 {
		t.Fatalf("second commit must fail: ok=%v err=%v", ok2, err)
	}
}

func TestTxRollbackDiscardsChanges(t *testing.T) {
	store := New()
	store.SeedPart(model.Part{ID: "p1", TenantID: "t1", PartNumber: "MTU-1", StockOnHand: decimal.NewFromInt(5)})

	tx, err := store.Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if _, ok, err := tx.Catalog().AtomicApplyDelta(context.Background(), "t1", "p1", 100); err != nil || !ok {
		t.Fatalf("AtomicApplyDelta within tx: ok=%v err=%v", ok, err)
	}
	if err := tx.Rollback(context.Background()); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	part, err := store.Set().Catalog.GetPart(context.Background(), "t1", "p1")
	if err != nil {
		t.Fatalf("GetPart: %v", err)
	}
	if !part.StockOnHand.Equal(decimal.NewFromInt(5)) {
		t.Errorf("StockOnHand = %v after rollback, want unchanged at 5", part.StockOnHand)
	}
}
