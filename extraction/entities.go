package extraction

import (
	"math"
	"regexp"
	"strings"
)

var (
	orderNumberStructured = regexp.MustCompile(`(?i)\bORD-\d{4}-\d{3,}\b`)
	orderNumberGeneric     = regexp.MustCompile(`\b[A-Z]{2,4}-\d{5,6}\b`)
	orderNumberNumeric     = regexp.MustCompile(`\b\d{6,}\b`)

	trackingNumberUPS       = regexp.MustCompile(`(?i)\b1Z[0-9A-Z]{16}\b`)
	trackingNumberNumeric   = regexp.MustCompile(`\b\d{12,}\b`)
	trackingNumberAlphaNum  = regexp.MustCompile(`\b[A-Z0-9]{10,}\b`)

	lineItemPattern = regexp.MustCompile(`(?i)^\s*\d+(?:\.\d+)?\s+(?:ea|each|pcs?|units?)\s+.+$`)
)

// Entities is the output of the Entity Extractor: the best-guess order
// number and tracking number found in a packing-list document, plus how
// many candidate line items it could see, with a combined confidence.
type Entities struct {
	OrderNumber    string
	TrackingNumber string
	LineItemCount  int
	Confidence     float64
}

// ExtractEntities implements the Entity Extractor per spec §4.3: order
// number contributes 0.35, tracking number contributes 0.35, finding any
// line items contributes 0.20, and a second bonus of 0.10 applies when
// more than one line item is found. Total is capped at 1.0.
func ExtractEntities(text string) Entities {
	var e Entities
	var score float64

	if m := orderNumberStructured.FindString(text); m != "" {
		e.OrderNumber = strings.ToUpper(m)
		score += 0.35
	} else if m := orderNumberGeneric.FindString(text); m != "" {
		e.OrderNumber = strings.ToUpper(m)
		score += 0.35
	} else if m := orderNumberNumeric.FindString(text); m != "" {
		e.OrderNumber = m
		score += 0.35
	}

	if m := trackingNumberUPS.FindString(text); m != "" {
		e.TrackingNumber = strings.ToUpper(m)
		score += 0.35
	} else if m := trackingNumberNumeric.FindString(text); m != "" {
		e.TrackingNumber = m
		score += 0.35
	} else if m := trackingNumberAlphaNum.FindString(text); m != "" {
		e.TrackingNumber = strings.ToUpper(m)
		score += 0.35
	}

	for _, line := range strings.Split(text, "\n") {
		if lineItemPattern.MatchString(line) {
			e.LineItemCount++
		}
	}
	if e.LineItemCount > 0 {
		score += 0.20
	}
	if e.LineItemCount > 1 {
		score += 0.10
	}

	// Round to hundredths so the sum of the fixed weights is exact (0.20 +
	// 0.10 would otherwise come out as 0.30000000000000004).
	score = math.Round(score*100) / 100
	if score > 1.0 {
		score = 1.0
	}
	e.Confidence = score
	return e
}
