package reconciliation

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shortalex12333/Image-processing-sub000/model"
)

func TestLayerReconcileAttachesSuggestionAndDiscrepancy(t *testing.T) {
	catalog := &fakeCatalog{parts: []model.Part{
		{ID: "p1", PartNumber: "BOLT-M6-20", DisplayName: "Hex bolt M6x20mm", StockOnHand: decimal.NewFromInt(50)},
	}}
	orders := &fakeOrders{
		shoppingItems: []model.ShoppingListItem{
			{PartID: "p1", Status: "approved", RequestedQuantity: decimal.NewFromInt(10), ApprovedQuantity: decimal.NewFromInt(10)},
		},
	}
	layer := NewLayer(catalog, orders, func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) })

	line := model.ExtractedLine{PartNumber: "BOLT-M6-20", Description: "Hex bolt M6x20mm", Quantity: decimal.NewFromInt(4)}
	enriched, err := layer.Reconcile(context.Background(), "tenant-1", line)
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}
	if enriched.Suggestion == nil {
		t.Fatalf("expected a suggestion to be attached")
	}
	if enriched.Suggestion.PartID != "p1" {
		t.Errorf("Suggestion.PartID = %q, want p1", enriched.Suggestion.PartID)
	}
	if enriched.Discrepancy == nil {
		t.Fatalf("expected a discrepancy: approved 10, received 4")
	}
	if enriched.Discrepancy.Severity != model.SeverityHigh {
		t.Errorf("Severity = %q, want high", enriched.Discrepancy.Severity)
	}
}

func TestLayerReconcileNoMatchLeavesLineUnchanged(t *testing.T) {
	catalog := &fakeCatalog{}
	orders := &fakeOrders{}
	layer := NewLayer(catalog, orders, nil)

	line := model.ExtractedLine{PartNumber: "UNKNOWN-9", Description: "Nonexistent part"}
	enriched, err := layer.Reconcile(context.Background(), "tenant-1", line)
	if err != nil {
		t.Fatalf("Reconcile returned error: %v", err)
	}
	if enriched.Suggestion != nil {
		t.Errorf("expected no suggestion when catalog is empty")
	}
}
