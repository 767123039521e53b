// Package memory is an in-process implementation of every repository
// contract in spec §6, for local development and the module's own
// integration tests. A real deployment replaces this with a SQL-backed
// adapter; the pipeline never imports this package directly, only
// repository.Set.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shortalex12333/Image-processing-sub000/model"
	"github.com/shortalex12333/Image-processing-sub000/repository"
)

// Store holds every table as a tenant-scoped map behind one mutex. It
// satisfies repository.TxBeginner by handing out a txView over copies of
// the session, part, event, and transaction tables taken at Begin —
// Commit writes those copies back over the Store's tables and Rollback
// discards them.
type Store struct {
	mu sync.Mutex

	uploads  map[string]*model.Upload
	parts    map[string]*model.Part
	orders   map[string]*model.Order
	shopping map[string][]model.ShoppingListItem
	poLines  map[string][]model.PurchaseOrderLine
	sessions map[string]*model.ReceivingSession
	events   []model.ReceivingEvent
	invTxns  []model.InventoryTransaction
	finTxns  []model.FinanceTransaction
	audit    []model.AuditEntry
	blobs    map[string][]byte
}

// New builds an empty Store.
func New() *Store {
	return &Store{
		uploads:  map[string]*model.Upload{},
		parts:    map[string]*model.Part{},
		orders:   map[string]*model.Order{},
		shopping: map[string][]model.ShoppingListItem{},
		poLines:  map[string][]model.PurchaseOrderLine{},
		sessions: map[string]*model.ReceivingSession{},
		blobs:    map[string][]byte{},
	}
}

// Set returns a repository.Set backed entirely by this store.
func (s *Store) Set() repository.Set {
	return repository.Set{
		Uploads:               &uploadsView{s},
		Catalog:               &catalogView{s},
		Orders:                &ordersView{s},
		Sessions:              &sessionsView{s},
		Events:                &eventsView{s},
		InventoryTransactions: &invTxnsView{s},
		FinanceTransactions:   &finTxnsView{s},
		Audit:                 &auditView{s},
		Blob:                  &blobView{s},
		TxBeginner:            s,
	}
}

// SeedPart inserts or overwrites a catalog part, for demo/dev seeding.
func (s *Store) SeedPart(p model.Part) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := p
	s.parts[p.ID] = &cp
}

// Begin snapshots the mutable maps and returns a Tx over that snapshot.
// Rollback discards the snapshot; Commit writes it back into the store.
func (s *Store) Begin(ctx context.Context) (repository.Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &txView{
		store:    s,
		sessions: cloneSessions(s.sessions),
		parts:    cloneParts(s.parts),
		events:   append([]model.ReceivingEvent{}, s.events...),
		invTxns:  append([]model.InventoryTransaction{}, s.invTxns...),
		finTxns:  append([]model.FinanceTransaction{}, s.finTxns...),
		audit:    append([]model.AuditEntry{}, s.audit...),
	}, nil
}

func cloneSessions(in map[string]*model.ReceivingSession) map[string]*model.ReceivingSession {
	out := make(map[string]*model.ReceivingSession, len(in))
	for k, v := range in {
		cp := *v
		out[k] = &cp
	}
	return out
}

func cloneParts(in map[string]*model.Part) map[string]*model.Part {
	out := make(map[string]*model.Part, len(in))
	for k, v := range in {
		cp := *v
		out[k] = &cp
	}
	return out
}

// txView is the uncommitted working set for one outer transaction. Its
// own view types (txSessions, txEvents, txInvTxns, txFinTxns, txAudit,
// txCatalog) operate on txView's buffers instead of the Store's live maps.
type txView struct {
	store    *Store
	sessions map[string]*model.ReceivingSession
	parts    map[string]*model.Part
	events   []model.ReceivingEvent
	invTxns  []model.InventoryTransaction
	finTxns  []model.FinanceTransaction
	audit    []model.AuditEntry
}

func (t *txView) Sessions() repository.Sessions { return &txSessions{t} }
func (t *txView) Events() repository.Events     { return &txEvents{t} }
func (t *txView) InventoryTransactions() repository.InventoryTransactions { return &txInvTxns{t} }
func (t *txView) FinanceTransactions() repository.FinanceTransactions     { return &txFinTxns{t} }
func (t *txView) Audit() repository.Audit     { return &txAudit{t} }
func (t *txView) Catalog() repository.Catalog { return &txCatalog{t} }

func (t *txView) Commit(ctx context.Context) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	t.store.sessions = t.sessions
	t.store.parts = t.parts
	t.store.events = t.events
	t.store.invTxns = t.invTxns
	t.store.finTxns = t.finTxns
	t.store.audit = t.audit
	return nil
}

func (t *txView) Rollback(ctx context.Context) error { return nil }

type txSessions struct{ t *txView }

func (s *txSessions) CreateSession(ctx context.Context, sess *model.ReceivingSession) (string, error) {
	cp := *sess
	s.t.sessions[sess.ID] = &cp
	return sess.ID, nil
}
func (s *txSessions) GetSession(ctx context.Context, tenantID, sessionID string) (*model.ReceivingSession, error) {
	sess, ok := s.t.sessions[sessionID]
	if !ok || sess.TenantID != tenantID {
		return nil, repository.ErrNoRows
	}
	return sess, nil
}
func (s *txSessions) ListLines(ctx context.Context, tenantID, sessionID string) ([]model.ExtractedLine, error) {
	sess, ok := s.t.sessions[sessionID]
	if !ok || sess.TenantID != tenantID {
		return nil, repository.ErrNoRows
	}
	return sess.Lines, nil
}
func (s *txSessions) InsertLine(ctx context.Context, tenantID, sessionID string, line *model.ExtractedLine) (string, error) {
	sess, ok := s.t.sessions[sessionID]
	if !ok || sess.TenantID != tenantID {
		return "", repository.ErrNoRows
	}
	if line.ID == "" {
		line.ID = model.NewID()
	}
	sess.Lines = append(sess.Lines, *line)
	return line.ID, nil
}
func (s *txSessions) UpdateLineVerified(ctx context.Context, tenantID, sessionID, lineID, actorID string) error {
	sess, ok := s.t.sessions[sessionID]
	if !ok || sess.TenantID != tenantID {
		return repository.ErrNoRows
	}
	for i := range sess.Lines {
		if sess.Lines[i].ID == lineID {
			now := time.Now()
			sess.Lines[i].IsVerified = true
			sess.Lines[i].VerifiedBy = actorID
			sess.Lines[i].VerifiedAt = &now
			return nil
		}
	}
	return repository.ErrNoRows
}
func (s *txSessions) CommitSessionIfDraft(ctx context.Context, tenantID, sessionID, actorID, eventID string, ts time.Time) (bool, error) {
	sess, ok := s.t.sessions[sessionID]
	if !ok || sess.TenantID != tenantID || sess.Status != model.SessionDraft {
		return false, nil
	}
	sess.Status = model.SessionCommitted
	sess.EventID = eventID
	sess.CommittedBy = actorID
	sess.CommittedAt = &ts
	return true, nil
}
func (s *txSessions) CountEventsForTenantYear(ctx context.Context, tenantID string, year int) (int, error) {
	count := 0
	for _, e := range s.t.events {
		if e.TenantID == tenantID && e.CreatedAt.Year() == year {
			count++
		}
	}
	return count, nil
}

type txEvents struct{ t *txView }

func (e *txEvents) Insert(ctx context.Context, ev *model.ReceivingEvent) (string, error) {
	if ev.ID == "" {
		ev.ID = model.NewID()
	}
	e.t.events = append(e.t.events, *ev)
	return ev.ID, nil
}

type txInvTxns struct{ t *txView }

func (i *txInvTxns) Insert(ctx context.Context, tx *model.InventoryTransaction) (string, error) {
	if tx.ID == "" {
		tx.ID = model.NewID()
	}
	i.t.invTxns = append(i.t.invTxns, *tx)
	return tx.ID, nil
}

type txFinTxns struct{ t *txView }

func (f *txFinTxns) Insert(ctx context.Context, tx *model.FinanceTransaction) (string, error) {
	if tx.ID == "" {
		tx.ID = model.NewID()
	}
	f.t.finTxns = append(f.t.finTxns, *tx)
	return tx.ID, nil
}

type txAudit struct{ t *txView }

func (a *txAudit) Insert(ctx context.Context, entry *model.AuditEntry) (string, error) {
	if entry.ID == "" {
		entry.ID = model.NewID()
	}
	a.t.audit = append(a.t.audit, *entry)
	return entry.ID, nil
}

type txCatalog struct{ t *txView }

func (c *txCatalog) ListParts(ctx context.Context, tenantID string) ([]model.Part, error) {
	out := make([]model.Part, 0, len(c.t.parts))
	for _, p := range c.t.parts {
		if p.TenantID == tenantID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PartNumber < out[j].PartNumber })
	return out, nil
}
func (c *txCatalog) GetPart(ctx context.Context, tenantID, partID string) (*model.Part, error) {
	p, ok := c.t.parts[partID]
	if !ok || p.TenantID != tenantID {
		return nil, repository.ErrNoRows
	}
	cp := *p
	return &cp, nil
}
func (c *txCatalog) AtomicApplyDelta(ctx context.Context, tenantID, partID string, delta float64) (float64, bool, error) {
	p, ok := c.t.parts[partID]
	if !ok || p.TenantID != tenantID {
		return 0, false, nil
	}
	current, _ := p.StockOnHand.Float64()
	newQty := current + delta
	if newQty < 0 {
		return 0, false, nil
	}
	p.StockOnHand = decimalFromFloat(newQty)
	return newQty, true, nil
}

// uploadsView, catalogView, ordersView, sessionsView, eventsView,
// invTxnsView, finTxnsView, auditView, blobView all operate directly on
// the Store's live maps, under the Store's mutex — used outside a
// commit transaction (intake, reads, line verification).
type uploadsView struct{ s *Store }

func (v *uploadsView) Insert(ctx context.Context, u *model.Upload) (string, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if u.ID == "" {
		u.ID = model.NewID()
	}
	cp := *u
	v.s.uploads[u.ID] = &cp
	return u.ID, nil
}
func (v *uploadsView) FindByTenantSHA(ctx context.Context, tenantID, sha256 string) (*model.Upload, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, u := range v.s.uploads {
		if u.TenantID == tenantID && u.SHA256 == sha256 {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNoRows
}
func (v *uploadsView) CountSince(ctx context.Context, tenantID string, since time.Time) (int, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	count := 0
	for _, u := range v.s.uploads {
		if u.TenantID == tenantID && u.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}
func (v *uploadsView) Get(ctx context.Context, tenantID, id string) (*model.Upload, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	u, ok := v.s.uploads[id]
	if !ok || u.TenantID != tenantID {
		return nil, repository.ErrNoRows
	}
	cp := *u
	return &cp, nil
}
func (v *uploadsView) UpdateStatus(ctx context.Context, tenantID, id string, status model.ProcessingStatus) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	u, ok := v.s.uploads[id]
	if !ok || u.TenantID != tenantID {
		return repository.ErrNoRows
	}
	u.Status = status
	return nil
}

type catalogView struct{ s *Store }

func (v *catalogView) ListParts(ctx context.Context, tenantID string) ([]model.Part, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	out := make([]model.Part, 0, len(v.s.parts))
	for _, p := range v.s.parts {
		if p.TenantID == tenantID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PartNumber < out[j].PartNumber })
	return out, nil
}
func (v *catalogView) GetPart(ctx context.Context, tenantID, partID string) (*model.Part, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	p, ok := v.s.parts[partID]
	if !ok || p.TenantID != tenantID {
		return nil, repository.ErrNoRows
	}
	cp := *p
	return &cp, nil
}
func (v *catalogView) AtomicApplyDelta(ctx context.Context, tenantID, partID string, delta float64) (float64, bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	p, ok := v.s.parts[partID]
	if !ok || p.TenantID != tenantID {
		return 0, false, nil
	}
	current, _ := p.StockOnHand.Float64()
	newQty := current + delta
	if newQty < 0 {
		return 0, false, nil
	}
	p.StockOnHand = decimalFromFloat(newQty)
	return newQty, true, nil
}

type ordersView struct{ s *Store }

func (v *ordersView) FindOrder(ctx context.Context, tenantID, orderNumber string) (*model.Order, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, o := range v.s.orders {
		if o.TenantID == tenantID && o.OrderNumber == orderNumber {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}
func (v *ordersView) ListShoppingItems(ctx context.Context, tenantID, partID string) ([]model.ShoppingListItem, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return v.s.shopping[tenantID+":"+partID], nil
}
func (v *ordersView) RecentPOLinesForPart(ctx context.Context, tenantID, partID string, since time.Duration) ([]model.PurchaseOrderLine, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	cutoff := time.Now().Add(-since)
	var out []model.PurchaseOrderLine
	for _, l := range v.s.poLines[tenantID+":"+partID] {
		if l.OrderedAt.After(cutoff) {
			out = append(out, l)
		}
	}
	return out, nil
}
func (v *ordersView) FindOrdersFuzzy(ctx context.Context, tenantID, orderNumber string, minSimilarity float64) ([]model.Order, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var out []model.Order
	for _, o := range v.s.orders {
		if o.TenantID == tenantID {
			out = append(out, *o)
		}
	}
	return out, nil
}

type sessionsView struct{ s *Store }

func (v *sessionsView) CreateSession(ctx context.Context, sess *model.ReceivingSession) (string, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if sess.ID == "" {
		sess.ID = model.NewID()
	}
	cp := *sess
	v.s.sessions[sess.ID] = &cp
	return sess.ID, nil
}
func (v *sessionsView) GetSession(ctx context.Context, tenantID, sessionID string) (*model.ReceivingSession, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	sess, ok := v.s.sessions[sessionID]
	if !ok || sess.TenantID != tenantID {
		return nil, repository.ErrNoRows
	}
	cp := *sess
	return &cp, nil
}
func (v *sessionsView) ListLines(ctx context.Context, tenantID, sessionID string) ([]model.ExtractedLine, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	sess, ok := v.s.sessions[sessionID]
	if !ok || sess.TenantID != tenantID {
		return nil, repository.ErrNoRows
	}
	return sess.Lines, nil
}
func (v *sessionsView) InsertLine(ctx context.Context, tenantID, sessionID string, line *model.ExtractedLine) (string, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	sess, ok := v.s.sessions[sessionID]
	if !ok || sess.TenantID != tenantID {
		return "", repository.ErrNoRows
	}
	if line.ID == "" {
		line.ID = model.NewID()
	}
	sess.Lines = append(sess.Lines, *line)
	return line.ID, nil
}
func (v *sessionsView) UpdateLineVerified(ctx context.Context, tenantID, sessionID, lineID, actorID string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	sess, ok := v.s.sessions[sessionID]
	if !ok || sess.TenantID != tenantID {
		return repository.ErrNoRows
	}
	for i := range sess.Lines {
		if sess.Lines[i].ID == lineID {
			now := time.Now()
			sess.Lines[i].IsVerified = true
			sess.Lines[i].VerifiedBy = actorID
			sess.Lines[i].VerifiedAt = &now
			return nil
		}
	}
	return repository.ErrNoRows
}
func (v *sessionsView) CommitSessionIfDraft(ctx context.Context, tenantID, sessionID, actorID, eventID string, ts time.Time) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	sess, ok := v.s.sessions[sessionID]
	if !ok || sess.TenantID != tenantID || sess.Status != model.SessionDraft {
		return false, nil
	}
	sess.Status = model.SessionCommitted
	sess.EventID = eventID
	sess.CommittedBy = actorID
	sess.CommittedAt = &ts
	return true, nil
}
func (v *sessionsView) CountEventsForTenantYear(ctx context.Context, tenantID string, year int) (int, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	count := 0
	for _, e := range v.s.events {
		if e.TenantID == tenantID && e.CreatedAt.Year() == year {
			count++
		}
	}
	return count, nil
}

type eventsView struct{ s *Store }

func (v *eventsView) Insert(ctx context.Context, e *model.ReceivingEvent) (string, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if e.ID == "" {
		e.ID = model.NewID()
	}
	v.s.events = append(v.s.events, *e)
	return e.ID, nil
}

type invTxnsView struct{ s *Store }

func (v *invTxnsView) Insert(ctx context.Context, t *model.InventoryTransaction) (string, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if t.ID == "" {
		t.ID = model.NewID()
	}
	v.s.invTxns = append(v.s.invTxns, *t)
	return t.ID, nil
}

type finTxnsView struct{ s *Store }

func (v *finTxnsView) Insert(ctx context.Context, t *model.FinanceTransaction) (string, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if t.ID == "" {
		t.ID = model.NewID()
	}
	v.s.finTxns = append(v.s.finTxns, *t)
	return t.ID, nil
}

type auditView struct{ s *Store }

func (v *auditView) Insert(ctx context.Context, a *model.AuditEntry) (string, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if a.ID == "" {
		a.ID = model.NewID()
	}
	v.s.audit = append(v.s.audit, *a)
	return a.ID, nil
}

type blobView struct{ s *Store }

func (v *blobView) Put(ctx context.Context, path string, data []byte) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	v.s.blobs[path] = append([]byte{}, data...)
	return nil
}
func (v *blobView) Get(ctx context.Context, path string) ([]byte, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	data, ok := v.s.blobs[path]
	if !ok {
		return nil, repository.ErrNoRows
	}
	return data, nil
}

func decimalFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
