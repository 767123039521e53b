package costtracker

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTrackerAccumulatesAcrossCalls(t *testing.T) {
	tr := New()
	tr.RecordCall("mini", 1000, 200, decimal.NewFromFloat(0.001))
	tr.RecordCall("large", 2000, 400, decimal.NewFromFloat(0.02))

	snap := tr.Snapshot()
	if snap.CallCount != 2 {
		t.Errorf("CallCount = %d, want 2", snap.CallCount)
	}
	if snap.TokenTotal != 3600 {
		t.Errorf("TokenTotal = %d, want 3600", snap.TokenTotal)
	}
	want := decimal.NewFromFloat(0.021)
	if !snap.CostTotal.Equal(want) {
		t.Errorf("CostTotal = %v, want %v", snap.CostTotal, want)
	}
	if snap.ByModel["mini"].Calls != 1 || snap.ByModel["large"].Calls != 1 {
		t.Errorf("unexpected per-model breakdown: %+v", snap.ByModel)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	tr := New()
	tr.RecordCall("mini", 100, 50, decimal.NewFromFloat(0.0001))

	snap := tr.Snapshot()
	snap.ByModel["mini"] = ModelBreakdown{Calls: 999}

	fresh := tr.Snapshot()
	if fresh.ByModel["mini"].Calls != 1 {
		t.Errorf("mutating a returned snapshot must not affect the tracker's internal state")
	}
}
