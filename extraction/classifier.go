// Package extraction converts raw OCR text into structured draft line
// items, consulting an LLM only when the cost controller permits, per
// spec §4.3.
package extraction

import (
	"regexp"
	"strings"

	"github.com/shortalex12333/Image-processing-sub000/model"
)

var indicatorPatterns = map[model.DocumentKind][]*regexp.Regexp{
	model.DocumentPackingList: {
		regexp.MustCompile(`(?i)packing\s*(slip|list)`),
		regexp.MustCompile(`(?i)ship(ped|ping)\s*(to|from)`),
		regexp.MustCompile(`(?i)qty\b`),
		regexp.MustCompile(`(?i)carton`),
	},
	model.DocumentInvoice: {
		regexp.MustCompile(`(?i)\binvoice\b`),
		regexp.MustCompile(`(?i)\bamount\s*due\b`),
		regexp.MustCompile(`(?i)\bbill\s*to\b`),
		regexp.MustCompile(`(?i)\bsubtotal\b`),
	},
	model.DocumentPurchaseOrder: {
		regexp.MustCompile(`(?i)purchase\s*order`),
		regexp.MustCompile(`(?i)\bP\.?O\.?\s*(number|#)\b`),
		regexp.MustCompile(`(?i)\bvendor\b`),
		regexp.MustCompile(`(?i)\brequisition\b`),
	},
	model.DocumentWorkOrder: {
		regexp.MustCompile(`(?i)work\s*order`),
		regexp.MustCompile(`(?i)\btechnician\b`),
		regexp.MustCompile(`(?i)\blabor\s*hours\b`),
		regexp.MustCompile(`(?i)\bjob\s*number\b`),
	},
}

// Classify implements the Document Classifier: counts matches per
// indicator pattern set, picks the set with the most matches, and derives
// confidence from the match count.
func Classify(text string) model.Classification {
	bestKind := model.DocumentUnknown
	bestCount := 0
	var bestTokens []string

	for kind, patterns := range indicatorPatterns {
		var matched []string
		for _, p := range patterns {
			if m := p.FindString(text); m != "" {
				matched = append(matched, strings.TrimSpace(m))
			}
		}
		if len(matched) > bestCount {
			bestCount = len(matched)
			bestKind = kind
			bestTokens = matched
		}
	}

	confidence := 0.0
	switch {
	case bestCount >= 3:
		confidence = 0.9
	case bestCount == 2:
		confidence = 0.75
	case bestCount == 1:
		confidence = 0.5
	default:
		bestKind = model.DocumentUnknown
	}

	return model.Classification{
		Kind:          bestKind,
		Confidence:    confidence,
		MatchedTokens: bestTokens,
	}
}
