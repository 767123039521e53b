package reconciliation

import (
	"context"
	"time"

	"github.com/shortalex12333/Image-processing-sub000/model"
	"github.com/shortalex12333/Image-processing-sub000/repository"
)

const (
	recentOrderWindow   = 90 * 24 * time.Hour
	fuzzyOrderThreshold = 0.80
)

// AttachRecentOrder records the most recent purchase-order line for a
// suggested part, within the recent-order window, so the reconciliation
// UI can show "this was last ordered on PO-xxxx".
func AttachRecentOrder(ctx context.Context, orders repository.Orders, tenantID string, suggestion *model.SuggestedMatch) error {
	lines, err := orders.RecentPOLinesForPart(ctx, tenantID, suggestion.PartID, recentOrderWindow)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}

	latest := lines[0]
	for _, l := range lines[1:] {
		if l.OrderedAt.After(latest.OrderedAt) {
			latest = l
		}
	}

	suggestion.RecentOrder = &model.RecentOrderRecord{
		OrderNumber: latest.OrderNumber,
		OrderedAt:   latest.OrderedAt,
		Quantity:    latest.Quantity,
	}
	return nil
}

// ResolveOrderNumber looks up an order by an entity-extracted order
// number, first exactly, then via fuzzy lookup at or above 0.80
// similarity per spec §4.4.
func ResolveOrderNumber(ctx context.Context, orders repository.Orders, tenantID, orderNumber string) (*model.Order, error) {
	if orderNumber == "" {
		return nil, nil
	}

	exact, err := orders.FindOrder(ctx, tenantID, orderNumber)
	if err == nil {
		return exact, nil
	}
	if err != repository.ErrNoRows {
		return nil, err
	}

	candidates, ferr := orders.FindOrdersFuzzy(ctx, tenantID, orderNumber, fuzzyOrderThreshold)
	if ferr != nil {
		return nil, ferr
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return &candidates[0], nil
}
