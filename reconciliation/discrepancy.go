package reconciliation

import (
	"github.com/shopspring/decimal"

	"github.com/shortalex12333/Image-processing-sub000/model"
)

const (
	severityHighRatio   = 0.5
	severityMediumRatio = 0.2
)

// DetectDiscrepancy compares an expected quantity (from a shopping-list
// or order line) against what was actually received, returning nil when
// they are equal. shortage is expected-received; a negative shortage is
// an overage. An expected quantity of zero is always high severity,
// since there is no baseline to ratio against.
func DetectDiscrepancy(expected, received decimal.Decimal) *model.Discrepancy {
	shortage := expected.Sub(received)
	if shortage.IsZero() {
		return nil
	}

	var severity model.DiscrepancySeverity
	if expected.IsZero() {
		severity = model.SeverityHigh
	} else {
		ratio, _ := shortage.Abs().Div(expected).Float64()
		switch {
		case ratio >= severityHighRatio:
			severity = model.SeverityHigh
		case ratio >= severityMediumRatio:
			severity = model.SeverityMedium
		default:
			severity = model.SeverityLow
		}
	}

	return &model.Discrepancy{
		Expected: expected,
		Received: received,
		Shortage: shortage,
		Severity: severity,
	}
}
