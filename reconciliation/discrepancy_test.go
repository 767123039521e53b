package reconciliation

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/shortalex12333/Image-processing-sub000/model"
)

func TestDetectDiscrepancyNoneOnEquality(t *testing.T) {
	d := DetectDiscrepancy(decimal.NewFromInt(10), decimal.NewFromInt(10))
	if d != nil {
		t.Errorf("expected nil discrepancy on equality, got %+v", d)
	}
}

func TestDetectDiscrepancyHighSeverity(t *testing.T) {
	d := DetectDiscrepancy(decimal.NewFromInt(10), decimal.NewFromInt(4))
	if d == nil {
		t.Fatalf("expected a discrepancy")
	}
	if !d.Shortage.Equal(decimal.NewFromInt(6)) {
		t.Errorf("Shortage = %v, want 6", d.Shortage)
	}
	if d.Severity != model.SeverityHigh {
		t.Errorf("Severity = %q, want high", d.Severity)
	}
}

func TestDetectDiscrepancyLowSeverity(t *testing.T) {
	d := DetectDiscrepancy(decimal.NewFromInt(10), decimal.NewFromInt(9))
	if d == nil {
		t.Fatalf("expected a discrepancy")
	}
	if d.Severity != model.SeverityLow {
		t.Errorf("Severity = %q, want low", d.Severity)
	}
}

func TestDetectDiscrepancyZeroExpectedIsHigh(t *testing.T) {
	d := DetectDiscrepancy(decimal.Zero, decimal.NewFromInt(3))
	if d == nil {
		t.Fatalf("expected a discrepancy (overage against zero expected)")
	}
	if d.Severity != model.SeverityHigh {
		t.Errorf("Severity = %q, want high", d.Severity)
	}
}
