package extraction

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/shortalex12333/Image-processing-sub000/model"
)

const (
	minDescriptionLen = 5
	maxDescriptionLen = 500
)

// rowField names the submatch index a pattern uses for one field. A zero
// value means the pattern never captures that field: unit defaults to
// "ea" and part number is left blank.
type rowField struct {
	qty, unit, desc, part int
}

// rowPattern is one shape a packing-slip line can take. Patterns are tried
// in order, most structured first, so a line carrying a unit and a part
// number is never mistaken for the bare "qty + description" fallback.
type rowPattern struct {
	name string
	re   *regexp.Regexp
	rowField
}

var rowPatterns = []rowPattern{
	{
		// "12 ea MTU Oil Filter MTU-OF-4568"
		name:     "qty_unit_desc_part",
		re:       regexp.MustCompile(`(?i)^(\d+\.?\d*)\s+(ea|box|case|pcs|lbs|kg|g|ft|m|gal|L|each)\s+([A-Za-z0-9\s,\.\/\-\(\)]+?)\s+([A-Z0-9\-]{3,20})\s*$`),
		rowField: rowField{qty: 1, unit: 2, desc: 3, part: 4},
	},
	{
		// "MTU-OF-4568 - MTU Oil Filter (12 ea)"
		name:     "part_desc_qty",
		re:       regexp.MustCompile(`(?i)^([A-Z0-9\-]{3,20})\s*-\s*([A-Za-z0-9\s,\.\/\-\(\)]+?)\s*\((\d+\.?\d*)\s+(ea|box|case|pcs|lbs|kg|g|ft|m|gal|L|each)\)`),
		rowField: rowField{part: 1, desc: 2, qty: 3, unit: 4},
	},
	{
		// "12 MTU Oil Filter MTU-OF-4568" -- unit implied ("ea"). The part
		// number must be written in capitals here, so a trailing ordinary
		// word ("12 MTU Oil Filter Assembly") is not taken for one.
		name:     "qty_desc_part",
		re:       regexp.MustCompile(`(?i)^(\d+\.?\d*)\s+([A-Za-z0-9\s,\.\/\-\(\)]+?)\s+((?-i:[A-Z0-9\-]{3,20}))\s*$`),
		rowField: rowField{qty: 1, desc: 2, part: 3},
	},
	{
		// "MTU Oil Filter - 12 pieces" -- no part number column
		name:     "desc_with_qty",
		re:       regexp.MustCompile(`(?i)^([A-Za-z0-9\s,\.\/\-\(\)]+?)\s*[-:]\s*(\d+\.?\d*)\s+(ea|box|case|pcs|pieces|lbs|kg|g|ft|m|gal|L|each)`),
		rowField: rowField{desc: 1, qty: 2, unit: 3},
	},
	{
		// "12    ea    MTU Oil Filter    MTU-OF-4568" -- two-or-more-space tabular
		name:     "tabular",
		re:       regexp.MustCompile(`(?i)^(\d+\.?\d*)\s{2,}(ea|box|case|pcs|lbs|kg|g|ft|m|gal|L|each)\s{2,}([A-Za-z0-9\s,\.\/\-\(\)]+?)\s{2,}([A-Z0-9\-]{3,})`),
		rowField: rowField{qty: 1, unit: 2, desc: 3, part: 4},
	},
	{
		// "12 MTU Oil Filter" -- minimal, just quantity and description
		name:     "qty_desc_only",
		re:       regexp.MustCompile(`(?i)^(\d+\.?\d*)\s+([A-Za-z0-9\s,\.\/\-\(\)]{10,})\s*$`),
		rowField: rowField{qty: 1, desc: 2},
	},
}

var skipLines = map[string]bool{
	"page":     true,
	"total":    true,
	"subtotal": true,
	"tax":      true,
	"shipping": true,
	"thank you": true,
}

func isHeaderOrFooter(line string) bool {
	lower := strings.ToLower(strings.TrimSpace(line))
	if lower == "" {
		return true
	}
	for k := range skipLines {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// ParseRows implements the Row Parser: splits raw OCR text into non-empty
// candidate lines, skips headers/footers, matches each remaining line
// against rowPatterns in order, and reports the fraction of all non-empty
// input lines it could parse (header/footer lines count against coverage,
// they just never contribute a line).
func ParseRows(text string) ([]model.ExtractedLine, float64) {
	var nonEmpty []string
	for _, raw := range strings.Split(text, "\n") {
		if strings.TrimSpace(raw) != "" {
			nonEmpty = append(nonEmpty, raw)
		}
	}
	if len(nonEmpty) == 0 {
		return nil, 0
	}

	var lines []model.ExtractedLine
	parsed := 0
	seq := 1
	for _, raw := range nonEmpty {
		if isHeaderOrFooter(raw) {
			continue
		}
		line, ok := parseRow(raw)
		if !ok {
			continue
		}
		line.SeqNumber = seq
		line.ID = model.NewID()
		line.RawSourceText = strings.TrimSpace(raw)
		line.Provenance = model.ProvenanceRegex
		lines = append(lines, line)
		parsed++
		seq++
	}

	coverage := float64(parsed) / float64(len(nonEmpty))
	return lines, coverage
}

func parseRow(raw string) (model.ExtractedLine, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, p := range rowPatterns {
		m := p.re.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		if line, ok := buildLine(p, m); ok {
			return line, true
		}
	}
	return model.ExtractedLine{}, false
}

func group(m []string, idx int) string {
	if idx == 0 || idx >= len(m) {
		return ""
	}
	return strings.TrimSpace(m[idx])
}

// buildLine validates, normalizes, and confidence-scores one regex match.
// Validation (quantity and description required, description length in
// [5,500]) runs against the raw captured text, before any cleanup.
func buildLine(p rowPattern, m []string) (model.ExtractedLine, bool) {
	qtyRaw := group(m, p.qty)
	descRaw := group(m, p.desc)
	unitRaw := group(m, p.unit)
	partRaw := group(m, p.part)

	if qtyRaw == "" || descRaw == "" {
		return model.ExtractedLine{}, false
	}
	if len(descRaw) < minDescriptionLen || len(descRaw) > maxDescriptionLen {
		return model.ExtractedLine{}, false
	}

	qty, err := decimal.NewFromString(qtyRaw)
	if err != nil || qty.LessThanOrEqual(decimal.Zero) {
		return model.ExtractedLine{}, false
	}

	var line model.ExtractedLine
	line.Quantity = qty
	line.Description = cleanDescription(descRaw)
	line.UnitOfMeasure = normalizeUnit(unitRaw)
	if partRaw != "" {
		line.PartNumber = strings.ToUpper(partRaw)
	}
	line.Confidence = confidenceTier(unitRaw != "", partRaw != "")
	return line, true
}

// confidenceTier implements the extraction confidence rule: quantity and
// description are required to reach this point at all, so only the unit
// and part number presence vary the tier. High needs all four fields,
// medium needs three, anything else is low.
func confidenceTier(hasUnit, hasPart bool) model.ConfidenceTier {
	switch {
	case hasUnit && hasPart:
		return model.ConfidenceHigh
	case hasUnit || hasPart:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}

var unitAliases = map[string]string{
	"each":   "ea",
	"pieces": "pcs",
	"pc":     "pcs",
}

// normalizeUnit lowercases the captured unit token, maps known synonyms
// onto the canonical vocabulary, defaults to "ea" when no unit was
// captured, and restores the liter abbreviation's capital L (a bare
// lowercase "l" reads as the digit 1 on a scanned slip).
func normalizeUnit(raw string) string {
	if raw == "" {
		return "ea"
	}
	u := strings.ToLower(raw)
	if mapped, ok := unitAliases[u]; ok {
		u = mapped
	}
	if u == "l" {
		return "L"
	}
	return u
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// cleanDescription collapses internal whitespace, strips trailing
// punctuation, and title-cases each word while leaving all-caps acronyms
// (MTU, OEM, ...) alone.
func cleanDescription(desc string) string {
	collapsed := whitespaceRe.ReplaceAllString(desc, " ")
	collapsed = strings.TrimSpace(collapsed)
	collapsed = strings.TrimRight(collapsed, ".,;:-")

	words := strings.Fields(collapsed)
	for i, w := range words {
		if isAcronym(w) {
			continue
		}
		words[i] = capitalizeWord(w)
	}
	return strings.Join(words, " ")
}

func isAcronym(w string) bool {
	if len([]rune(w)) <= 1 {
		return false
	}
	for _, r := range w {
		if unicode.IsLower(r) {
			return false
		}
	}
	return true
}

func capitalizeWord(w string) string {
	r := []rune(w)
	if len(r) == 0 {
		return w
	}
	return strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
}
