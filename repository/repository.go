// Package repository defines the storage contracts the pipeline consumes,
// per spec §6. Concrete adapters (SQL, blob store) live outside this
// module; the pipeline only ever depends on these interfaces.
package repository

import (
	"context"
	"time"

	"github.com/shortalex12333/Image-processing-sub000/model"
)

// ErrNoRows is returned by lookups that find nothing, distinct from a
// genuine repository failure.
var ErrNoRows = &notFoundError{}

type notFoundError struct{}

func (*notFoundError) Error() string { return "repository: no rows" }

// Uploads is the Upload Record contract.
type Uploads interface {
	Insert(ctx context.Context, u *model.Upload) (string, error)
	FindByTenantSHA(ctx context.Context, tenantID, sha256 string) (*model.Upload, error)
	CountSince(ctx context.Context, tenantID string, since time.Time) (int, error)
	Get(ctx context.Context, tenantID, id string) (*model.Upload, error)
	UpdateStatus(ctx context.Context, tenantID, id string, status model.ProcessingStatus) error
}

// Catalog is the part-catalog contract, including the atomic inventory step.
type Catalog interface {
	ListParts(ctx context.Context, tenantID string) ([]model.Part, error)
	GetPart(ctx context.Context, tenantID, partID string) (*model.Part, error)
	// AtomicApplyDelta combines the precondition and the mutation in one
	// call. delta may be positive (receiving) or negative (deduction).
	// Returns (newQuantity, true, nil) on success, (0, false, nil) when
	// the precondition failed (no rows affected) — never check-then-act.
	AtomicApplyDelta(ctx context.Context, tenantID, partID string, delta float64) (newQty float64, ok bool, err error)
}

// Orders is the purchase-order / shopping-list contract.
type Orders interface {
	FindOrder(ctx context.Context, tenantID, orderNumber string) (*model.Order, error)
	ListShoppingItems(ctx context.Context, tenantID, partID string) ([]model.ShoppingListItem, error)
	RecentPOLinesForPart(ctx context.Context, tenantID, partID string, since time.Duration) ([]model.PurchaseOrderLine, error)
	FindOrdersFuzzy(ctx context.Context, tenantID, orderNumber string, minSimilarity float64) ([]model.Order, error)
}

// Sessions is the Receiving Session / draft-line contract.
type Sessions interface {
	CreateSession(ctx context.Context, s *model.ReceivingSession) (string, error)
	GetSession(ctx context.Context, tenantID, sessionID string) (*model.ReceivingSession, error)
	ListLines(ctx context.Context, tenantID, sessionID string) ([]model.ExtractedLine, error)
	InsertLine(ctx context.Context, tenantID, sessionID string, line *model.ExtractedLine) (string, error)
	UpdateLineVerified(ctx context.Context, tenantID, sessionID, lineID, actorID string) error
	// CommitSessionIfDraft performs the conditional `WHERE status='draft'`
	// update. ok=false means zero rows affected (already committed).
	CommitSessionIfDraft(ctx context.Context, tenantID, sessionID, actorID, eventID string, ts time.Time) (ok bool, err error)
	CountEventsForTenantYear(ctx context.Context, tenantID string, year int) (int, error)
}

// Events is the append-only Receiving Event contract.
type Events interface {
	Insert(ctx context.Context, e *model.ReceivingEvent) (string, error)
}

// InventoryTransactions is the append-only inventory-transaction contract.
type InventoryTransactions interface {
	Insert(ctx context.Context, t *model.InventoryTransaction) (string, error)
}

// FinanceTransactions is the append-only finance-transaction contract.
type FinanceTransactions interface {
	Insert(ctx context.Context, f *model.FinanceTransaction) (string, error)
}

// Audit is the append-only audit-log contract.
type Audit interface {
	Insert(ctx context.Context, a *model.AuditEntry) (string, error)
}

// Blob is the object-storage contract for uploaded file bytes.
type Blob interface {
	Put(ctx context.Context, path string, data []byte) error
	Get(ctx context.Context, path string) ([]byte, error)
}

// Tx wraps the outer repository transaction the Commit Engine runs inside,
// per spec §4.5 step 9 ("whole commit executes inside one outer
// repository transaction").
type Tx interface {
	Sessions() Sessions
	Events() Events
	InventoryTransactions() InventoryTransactions
	FinanceTransactions() FinanceTransactions
	Audit() Audit
	Catalog() Catalog
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TxBeginner starts a new outer transaction for one commit operation.
type TxBeginner interface {
	Begin(ctx context.Context) (Tx, error)
}

// Set bundles every repository handle the pipeline depends on; it is one
// of the three permitted globals (spec §9), assembled once at startup.
type Set struct {
	Uploads  Uploads
	Catalog  Catalog
	Orders   Orders
	Sessions Sessions
	Events   Events
	InventoryTransactions InventoryTransactions
	FinanceTransactions   FinanceTransactions
	Audit    Audit
	Blob     Blob
	TxBeginner TxBeginner
}
