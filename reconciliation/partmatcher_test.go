package reconciliation

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shortalex12333/Image-processing-sub000/model"
	"github.com/shortalex12333/Image-processing-sub000/repository"
)

type fakeCatalog struct {
	parts []model.Part
}

func (f *fakeCatalog) ListParts(ctx context.Context, tenantID string) ([]model.Part, error) {
	return f.parts, nil
}
func (f *fakeCatalog) GetPart(ctx context.Context, tenantID, partID string) (*model.Part, error) {
	for _, p := range f.parts {
		if p.ID == partID {
			return &p, nil
		}
	}
	return nil, repository.ErrNoRows
}
func (f *fakeCatalog) AtomicApplyDelta(ctx context.Context, tenantID, partID string, delta float64) (float64, bool, error) {
	return 0, false, nil
}

func TestMatchPartsExact(t *testing.T) {
	catalog := &fakeCatalog{parts: []model.Part{
		{ID: "p1", PartNumber: "BOLT-M6-20", DisplayName: "Hex bolt M6x20mm", StockOnHand: decimal.NewFromInt(50)},
		{ID: "p2", PartNumber: "NUT-M6", DisplayName: "Hex nut M6", StockOnHand: decimal.NewFromInt(200)},
	}}
	line := model.ExtractedLine{PartNumber: "BOLT-M6-20", Description: "Hex bolt M6x20mm"}

	matches, err := MatchParts(context.Background(), catalog, "tenant-1", line)
	if err != nil {
		t.Fatalf("MatchParts returned error: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("expected at least one match")
	}
	if matches[0].PartID != "p1" || matches[0].Confidence != 1.0 {
		t.Errorf("expected exact match on p1 with confidence 1.0, got %+v", matches[0])
	}
	if matches[0].MatchReason != model.MatchExactPartNumber {
		t.Errorf("MatchReason = %q, want exact_part_number", matches[0].MatchReason)
	}
}

func TestMatchPartsFuzzyPartNumber(t *testing.T) {
	catalog := &fakeCatalog{parts: []model.Part{
		{ID: "p1", PartNumber: "BOLT-M6-20", DisplayName: "Hex bolt M6x20mm"},
	}}
	line := model.ExtractedLine{PartNumber: "BOLT-M6-2O", Description: "unrelated text"}

	matches, err := MatchParts(context.Background(), catalog, "tenant-1", line)
	if err != nil {
		t.Fatalf("MatchParts returned error: %v", err)
	}
	if len(matches) != 1 || matches[0].MatchReason != model.MatchFuzzyPartNumber {
		t.Fatalf("expected one fuzzy part-number match, got %+v", matches)
	}
}

func TestMatchPartsCapsAtFive(t *testing.T) {
	var parts []model.Part
	for i := 0; i < 8; i++ {
		parts = append(parts, model.Part{ID: string(rune('a' + i)), PartNumber: "BOLT", DisplayName: "Hex bolt"})
	}
	catalog := &fakeCatalog{parts: parts}
	line := model.ExtractedLine{PartNumber: "BOLT", Description: "Hex bolt"}

	matches, err := MatchParts(context.Background(), catalog, "tenant-1", line)
	if err != nil {
		t.Fatalf("MatchParts returned error: %v", err)
	}
	if len(matches) > 5 {
		t.Errorf("expected at most 5 candidates, got %d", len(matches))
	}
}

type fakeOrders struct {
	shoppingItems []model.ShoppingListItem
	recentLines   []model.PurchaseOrderLine
	orders        map[string]model.Order
}

func (f *fakeOrders) FindOrder(ctx context.Context, tenantID, orderNumber string) (*model.Order, error) {
	if o, ok := f.orders[orderNumber]; ok {
		return &o, nil
	}
	return nil, repository.ErrNoRows
}
func (f *fakeOrders) ListShoppingItems(ctx context.Context, tenantID, partID string) ([]model.ShoppingListItem, error) {
	return f.shoppingItems, nil
}
func (f *fakeOrders) RecentPOLinesForPart(ctx context.Context, tenantID, partID string, since time.Duration) ([]model.PurchaseOrderLine, error) {
	return f.recentLines, nil
}
func (f *fakeOrders) FindOrdersFuzzy(ctx context.Context, tenantID, orderNumber string, minSimilarity float64) ([]model.Order, error) {
	return nil, nil
}
