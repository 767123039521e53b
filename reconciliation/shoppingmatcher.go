package reconciliation

import (
	"context"

	"github.com/shortalex12333/Image-processing-sub000/model"
	"github.com/shortalex12333/Image-processing-sub000/repository"
)

// AttachShoppingListFulfillment looks up open shopping-list entries for a
// suggested part and, if found, records how much of the requested
// quantity this receipt fulfills.
func AttachShoppingListFulfillment(ctx context.Context, orders repository.Orders, tenantID string, suggestion *model.SuggestedMatch, receivedQty float64) error {
	items, err := orders.ListShoppingItems(ctx, tenantID, suggestion.PartID)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	item := items[0]
	received := item.ReceivedQuantity.Add(ToDecimal(receivedQty))
	requested := item.RequestedQuantity

	pct := 0.0
	if requested.IsPositive() {
		pct, _ = received.Div(requested).Float64()
		if pct > 1.0 {
			pct = 1.0
		}
	}

	suggestion.ShoppingList = &model.ShoppingListFulfillment{
		RequestedQuantity: item.RequestedQuantity,
		ApprovedQuantity:  item.ApprovedQuantity,
		ReceivedQuantity:  received,
		Status:            item.Status,
		FulfillmentPct:    pct * 100,
	}
	return nil
}
