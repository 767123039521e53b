package commit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/shortalex12333/Image-processing-sub000/model"
	"github.com/shortalex12333/Image-processing-sub000/repository"
)

// fakeStore is an in-memory repository.TxBeginner/Tx/Sessions/... used to
// exercise the Commit Engine's nine-step operation without a database.
type fakeStore struct {
	mu       sync.Mutex
	lines    map[string][]model.ExtractedLine
	sessions map[string]*model.ReceivingSession
	stock    map[string]float64
	minQty   map[string]decimal.Decimal
	events   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		lines:    map[string][]model.ExtractedLine{},
		sessions: map[string]*model.ReceivingSession{},
		stock:    map[string]float64{},
		minQty:   map[string]decimal.Decimal{},
	}
}

func (s *fakeStore) Begin(ctx context.Context) (repository.Tx, error) {
	return &fakeTx{store: s}, nil
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) Sessions() repository.Sessions               { return &fakeSessions{store: t.store} }
func (t *fakeTx) Events() repository.Events                   { return &fakeEvents{store: t.store} }
func (t *fakeTx) InventoryTransactions() repository.InventoryTransactions { return &fakeInvTxns{} }
func (t *fakeTx) FinanceTransactions() repository.FinanceTransactions     { return &fakeFinTxns{} }
func (t *fakeTx) Audit() repository.Audit                     { return &fakeAudit{} }
func (t *fakeTx) Catalog() repository.Catalog                 { return &fakeCommitCatalog{store: t.store} }
func (t *fakeTx) Commit(ctx context.Context) error            { return nil }
func (t *fakeTx) Rollback(ctx context.Context) error          { return nil }

type fakeSessions struct{ store *fakeStore }

func (s *fakeSessions) CreateSession(ctx context.Context, sess *model.ReceivingSession) (string, error) {
	return "", nil
}
func (s *fakeSessions) GetSession(ctx context.Context, tenantID, sessionID string) (*model.ReceivingSession, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	sess, ok := s.store.sessions[sessionID]
	if !ok {
		return nil, repository.ErrNoRows
	}
	return sess, nil
}
func (s *fakeSessions) ListLines(ctx context.Context, tenantID, sessionID string) ([]model.ExtractedLine, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	lines, ok := s.store.lines[sessionID]
	if !ok {
		return nil, repository.ErrNoRows
	}
	return lines, nil
}
func (s *fakeSessions) InsertLine(ctx context.Context, tenantID, sessionID string, line *model.ExtractedLine) (string, error) {
	return "", nil
}
func (s *fakeSessions) UpdateLineVerified(ctx context.Context, tenantID, sessionID, lineID, actorID string) error {
	return nil
}
func (s *fakeSessions) CommitSessionIfDraft(ctx context.Context, tenantID, sessionID, actorID, eventID string, ts time.Time) (bool, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	sess, ok := s.store.sessions[sessionID]
	if !ok || sess.Status != model.SessionDraft {
		return false, nil
	}
	sess.Status = model.SessionCommitted
	sess.EventID = eventID
	sess.CommittedBy = actorID
	sess.CommittedAt = &ts
	return true, nil
}
func (s *fakeSessions) CountEventsForTenantYear(ctx context.Context, tenantID string, year int) (int, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	return s.store.events, nil
}

type fakeEvents struct{ store *fakeStore }

func (e *fakeEvents) Insert(ctx context.Context, ev *model.ReceivingEvent) (string, error) {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	e.store.events++
	return ev.ID, nil
}

type fakeInvTxns struct{}

func (f *fakeInvTxns) Insert(ctx context.Context, t *model.InventoryTransaction) (string, error) {
	return t.ID, nil
}

type fakeFinTxns struct{}

func (f *fakeFinTxns) Insert(ctx context.Context, t *model.FinanceTransaction) (string, error) {
	return t.ID, nil
}

type fakeAudit struct{}

func (f *fakeAudit) Insert(ctx context.Context, a *model.AuditEntry) (string, error) {
	return a.ID, nil
}

type fakeCommitCatalog struct{ store *fakeStore }

func (c *fakeCommitCatalog) ListParts(ctx context.Context, tenantID string) ([]model.Part, error) {
	return nil, nil
}
func (c *fakeCommitCatalog) GetPart(ctx context.Context, tenantID, partID string) (*model.Part, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	qty, ok := c.store.stock[partID]
	if !ok {
		return nil, repository.ErrNoRows
	}
	return &model.Part{ID: partID, PartNumber: partID, StockOnHand: decimal.NewFromFloat(qty), MinQuantity: c.store.minQty[partID]}, nil
}
func (c *fakeCommitCatalog) AtomicApplyDelta(ctx context.Context, tenantID, partID string, delta float64) (float64, bool, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	current, ok := c.store.stock[partID]
	if !ok {
		current = 0
	}
	newQty := current + delta
	if newQty < 0 {
		return 0, false, nil
	}
	c.store.stock[partID] = newQty
	return newQty, true, nil
}

func verifiedLine(id, partID string, qty float64) model.ExtractedLine {
	price := decimal.NewFromFloat(2.50)
	return model.ExtractedLine{
		ID:         id,
		Quantity:   decimal.NewFromFloat(qty),
		IsVerified: true,
		UnitPrice:  &price,
		Suggestion: &model.SuggestedMatch{PartID: partID},
	}
}

func TestCommitHappyPath(t *testing.T) {
	store := newFakeStore()
	store.sessions["s1"] = &model.ReceivingSession{ID: "s1", TenantID: "t1", Status: model.SessionDraft}
	store.lines["s1"] = []model.ExtractedLine{verifiedLine("l1", "p1", 5)}
	store.stock["p1"] = 10
	store.minQty["p1"] = decimal.NewFromInt(3)

	engine := NewEngine(store, zerolog.Nop(), func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) })
	result, err := engine.Commit(context.Background(), Request{TenantID: "t1", SessionID: "s1", ActorID: "actor-1"})
	if err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}
	if result.Event.EventNumber != "RCV-EVT-2026-1" {
		t.Errorf("EventNumber = %q, want RCV-EVT-2026-1", result.Event.EventNumber)
	}
	if result.Inventory.PartsUpdated != 1 {
		t.Errorf("PartsUpdated = %d, want 1", result.Inventory.PartsUpdated)
	}
	if result.Finance.TransactionsCreated != 1 {
		t.Errorf("Finance.TransactionsCreated = %d, want 1", result.Finance.TransactionsCreated)
	}
	if store.sessions["s1"].Status != model.SessionCommitted {
		t.Errorf("session status = %q, want committed", store.sessions["s1"].Status)
	}
}

func TestCommitFailsOnUnverifiedLines(t *testing.T) {
	store := newFakeStore()
	store.sessions["s1"] = &model.ReceivingSession{ID: "s1", TenantID: "t1", Status: model.SessionDraft}
	line := verifiedLine("l1", "p1", 5)
	line.IsVerified = false
	store.lines["s1"] = []model.ExtractedLine{line}

	engine := NewEngine(store, zerolog.Nop(), nil)
	_, err := engine.Commit(context.Background(), Request{TenantID: "t1", SessionID: "s1", ActorID: "actor-1"})
	pe := model.AsPipelineError(err)
	if pe.Code != model.ErrUnverifiedLines {
		t.Fatalf("expected UNVERIFIED_LINES, got %v", pe)
	}
}

func TestCommitFailsOnInsufficientStock(t *testing.T) {
	store := newFakeStore()
	store.sessions["s1"] = &model.ReceivingSession{ID: "s1", TenantID: "t1", Status: model.SessionDraft}
	store.lines["s1"] = []model.ExtractedLine{verifiedLine("l1", "p1", 50)}
	store.stock["p1"] = 10

	line := store.lines["s1"][0]
	line.Quantity = decimal.NewFromFloat(-50)
	store.lines["s1"] = []model.ExtractedLine{line}

	engine := NewEngine(store, zerolog.Nop(), nil)
	_, err := engine.Commit(context.Background(), Request{TenantID: "t1", SessionID: "s1", ActorID: "actor-1"})
	pe := model.AsPipelineError(err)
	if pe.Code != model.ErrInsufficientStock {
		t.Fatalf("expected INSUFFICIENT_STOCK, got %v", pe)
	}
}

func TestCommitFailsWhenSessionNotFound(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store, zerolog.Nop(), nil)
	_, err := engine.Commit(context.Background(), Request{TenantID: "t1", SessionID: "missing", ActorID: "actor-1"})
	pe := model.AsPipelineError(err)
	if pe.Code != model.ErrSessionNotFound {
		t.Fatalf("expected SESSION_NOT_FOUND, got %v", pe)
	}
}

func TestConcurrentCommitsExactlyOneSucceeds(t *testing.T) {
	store := newFakeStore()
	store.sessions["s1"] = &model.ReceivingSession{ID: "s1", TenantID: "t1", Status: model.SessionDraft}
	store.lines["s1"] = []model.ExtractedLine{verifiedLine("l1", "p1", 1)}
	store.stock["p1"] = 10

	engine := NewEngine(store, zerolog.Nop(), nil)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, err := engine.Commit(context.Background(), Request{TenantID: "t1", SessionID: "s1", ActorID: "actor-1"})
			results[idx] = err
		}(i)
	}
	wg.Wait()

	successes := 0
	alreadyCommitted := 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		if model.AsPipelineError(err).Code == model.ErrSessionAlreadyCommitted {
			alreadyCommitted++
		}
	}
	if successes != 1 {
		t.Errorf("expected exactly 1 successful commit, got %d", successes)
	}
	if alreadyCommitted != 1 {
		t.Errorf("expected exactly 1 SESSION_ALREADY_COMMITTED, got %d", alreadyCommitted)
	}
}
