package extraction

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shortalex12333/Image-processing-sub000/config"
	"github.com/shortalex12333/Image-processing-sub000/model"
)

// Output is everything the Extraction Layer produces for one document:
// the draft lines, the document classification, and a summary suitable
// for attaching to the owning session.
type Output struct {
	Lines          []model.ExtractedLine
	Classification model.Classification
	Entities       Entities
	Summary        model.ProcessingSummary
}

// Layer is the Extraction Layer entrypoint: classify, detect a table
// layout, parse rows with regex, and escalate to an LLM only when the
// Cost Controller's coverage/confidence gates require it.
type Layer struct {
	cfg        *config.Config
	normalizer *Normalizer
	state      *State
}

// NewLayer builds the Extraction Layer. normalizer may be nil when no
// LLM backend is configured, in which case escalation always ends in
// give_up and the regex-only draft is returned as-is.
func NewLayer(cfg *config.Config, normalizer *Normalizer) *Layer {
	return &Layer{cfg: cfg, normalizer: normalizer, state: &State{}}
}

// Run produces the extraction output for one OCR result.
func (l *Layer) Run(ctx context.Context, ocrResult *model.OCRResult) (*Output, error) {
	classification := Classify(ocrResult.Text)
	table := DetectTable(ocrResult.Fragments, ocrResult.Text)
	lines, coverage := ParseRows(ocrResult.Text)

	primaryMethod := model.ProvenanceRegex
	llmCalls := 0

	decision := Decide(l.cfg, l.state, coverage, table.Confidence, l.state.LastLLMConfidence)
	if decision.Action != ActionAccept && l.normalizer != nil {
		modelName := "mini"
		if decision.Action == ActionEscalate {
			modelName = "large"
		}
		if decision.Action != ActionGiveUp {
			llmLines, inTok, outTok, confidence, err := l.normalizer.Normalize(ctx, modelName, ocrResult.Text)
			if err == nil {
				RecordCall(l.cfg, l.state, modelName, inTok, outTok, confidence)
				lines = mergeLines(lines, llmLines)
				primaryMethod = model.ProvenanceLLM
				llmCalls++
			}
		}
	}

	entities := ExtractEntities(ocrResult.Text)

	summary := model.ProcessingSummary{
		LinesExtracted: len(lines),
		LLMCalls:       llmCalls,
		TotalCost:      l.state.TotalCost,
		PrimaryMethod:  primaryMethod,
	}

	return &Output{Lines: lines, Classification: classification, Entities: entities, Summary: summary}, nil
}

// mergeLines appends LLM-recovered lines that don't duplicate an
// existing regex-parsed line (same description after trimming and
// lowercasing), renumbering
// sequence numbers so the combined draft is gap-free.
func mergeLines(regexLines, llmLines []model.ExtractedLine) []model.ExtractedLine {
	seen := make(map[string]bool, len(regexLines))
	for _, l := range regexLines {
		seen[normalizeKey(l.Description)] = true
	}

	merged := append([]model.ExtractedLine{}, regexLines...)
	for _, l := range llmLines {
		key := normalizeKey(l.Description)
		if key != "" && seen[key] {
			continue
		}
		merged = append(merged, l)
	}

	for i := range merged {
		merged[i].SeqNumber = i + 1
	}
	return merged
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// TotalQuoted sums UnitPrice*Quantity across priced lines, giving a
// pre-commit cost estimate; lines without a UnitPrice are skipped.
func TotalQuoted(lines []model.ExtractedLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		if l.UnitPrice == nil {
			continue
		}
		total = total.Add(l.UnitPrice.Mul(l.Quantity))
	}
	return total
}
