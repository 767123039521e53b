package commit

import (
	"context"
	"fmt"

	"github.com/go-redsync/redsync/v4"

	"github.com/shortalex12333/Image-processing-sub000/model"
	"github.com/shortalex12333/Image-processing-sub000/repository"
)

// InsufficientStockError marks a failed atomic inventory step where the
// repository reported zero rows affected on a decrement.
type InsufficientStockError struct {
	PartID string
	Delta  float64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for part %s (delta %v)", e.PartID, e.Delta)
}

// LockedCatalog wraps a repository.Catalog whose AtomicApplyDelta cannot
// itself guarantee serializability (e.g. an adapter backed by a store
// without conditional-update support), adding a distributed advisory
// lock around the call via redsync. Adapters that already provide an
// atomic conditional update should be used directly instead — this
// wrapper exists for the ones that can't.
type LockedCatalog struct {
	inner repository.Catalog
	rs    *redsync.Redsync
}

// NewLockedCatalog builds a lock-wrapped Catalog.
func NewLockedCatalog(inner repository.Catalog, rs *redsync.Redsync) *LockedCatalog {
	return &LockedCatalog{inner: inner, rs: rs}
}

func (l *LockedCatalog) ListParts(ctx context.Context, tenantID string) ([]model.Part, error) {
	return l.inner.ListParts(ctx, tenantID)
}

func (l *LockedCatalog) GetPart(ctx context.Context, tenantID, partID string) (*model.Part, error) {
	return l.inner.GetPart(ctx, tenantID, partID)
}

// AtomicApplyDelta acquires a per-part advisory lock, then delegates to
// the inner catalog's own apply-delta call, so two concurrent commits
// touching the same part never interleave their read-modify-write.
func (l *LockedCatalog) AtomicApplyDelta(ctx context.Context, tenantID, partID string, delta float64) (float64, bool, error) {
	mutex := l.rs.NewMutex(lockKey(tenantID, partID))
	if err := mutex.LockContext(ctx); err != nil {
		return 0, false, fmt.Errorf("acquire inventory lock for part %s: %w", partID, err)
	}
	defer mutex.UnlockContext(ctx)

	return l.inner.AtomicApplyDelta(ctx, tenantID, partID, delta)
}

func lockKey(tenantID, partID string) string {
	return "inventory-lock:" + tenantID + ":" + partID
}

// ApplyInventoryDelta runs the atomic inventory step for one committed
// line and translates a failed precondition into InsufficientStockError.
func ApplyInventoryDelta(ctx context.Context, catalog repository.Catalog, tenantID, partID string, delta float64) (float64, error) {
	newQty, ok, err := catalog.AtomicApplyDelta(ctx, tenantID, partID, delta)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &InsufficientStockError{PartID: partID, Delta: delta}
	}
	return newQty, nil
}
