package reconciliation

import (
	"context"
	"time"

	"github.com/shortalex12333/Image-processing-sub000/model"
	"github.com/shortalex12333/Image-processing-sub000/repository"
)

// Layer is the Reconciliation Layer entrypoint: for each extracted line,
// find catalog candidates, boost them with shopping-list/recent-order
// signals, rank them, and flag any quantity discrepancy.
type Layer struct {
	catalog repository.Catalog
	orders  repository.Orders
	now     func() time.Time
}

// NewLayer builds the Reconciliation Layer. now is injectable for tests;
// production callers pass time.Now.
func NewLayer(catalog repository.Catalog, orders repository.Orders, now func() time.Time) *Layer {
	if now == nil {
		now = time.Now
	}
	return &Layer{catalog: catalog, orders: orders, now: now}
}

// Reconcile returns a copy of one extracted line enriched with a
// suggested match and discrepancy; the caller's line is not modified.
func (l *Layer) Reconcile(ctx context.Context, tenantID string, line model.ExtractedLine) (model.ExtractedLine, error) {
	candidates, err := MatchParts(ctx, l.catalog, tenantID, line)
	if err != nil {
		return line, err
	}
	if len(candidates) == 0 {
		return line, nil
	}

	for i := range candidates {
		if serr := AttachShoppingListFulfillment(ctx, l.orders, tenantID, &candidates[i], toFloat(line.Quantity)); serr != nil {
			return line, serr
		}
		if oerr := AttachRecentOrder(ctx, l.orders, tenantID, &candidates[i]); oerr != nil {
			return line, oerr
		}
	}

	ranked := Rank(candidates, l.now())
	line.Suggestion = ranked

	if ranked != nil && ranked.ShoppingList != nil {
		line.Discrepancy = DetectDiscrepancy(ranked.ShoppingList.ApprovedQuantity, line.Quantity)
	}

	return line, nil
}

// ReconcileAll runs Reconcile over every line in a draft session.
func (l *Layer) ReconcileAll(ctx context.Context, tenantID string, lines []model.ExtractedLine) ([]model.ExtractedLine, error) {
	out := make([]model.ExtractedLine, len(lines))
	for i, line := range lines {
		enriched, err := l.Reconcile(ctx, tenantID, line)
		if err != nil {
			return nil, err
		}
		out[i] = enriched
	}
	return out, nil
}

func toFloat(d interface{ Float64() (float64, bool) }) float64 {
	f, _ := d.Float64()
	return f
}
