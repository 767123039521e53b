package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"

	"github.com/shortalex12333/Image-processing-sub000/model"
)

func decimalFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

const (
	truncateHeadChars = 6000
	truncateTailChars = 2000
)

// LLMClient is the minimal surface the Normalizer needs from an LLM
// provider — deliberately narrow so any chat-completion-shaped backend
// can satisfy it without pulling in a vendor SDK.
type LLMClient interface {
	ChatCompletion(ctx context.Context, model string, prompt string) (text string, inputTokens int, outputTokens int, err error)
}

// RetryableError marks an LLM call failure as safe to retry (rate limit,
// timeout, transient 5xx); any other error is treated as permanent.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// llmLine is the JSON shape the Normalizer asks the model to
// return for each draft line, matched 1:1 against model.ExtractedLine's
// regex-extraction fields.
type llmLine struct {
	Quantity      float64 `json:"quantity"`
	UnitOfMeasure string  `json:"unit"`
	Description   string  `json:"description"`
	PartNumber    string  `json:"part_number,omitempty"`
	Confidence    string  `json:"confidence,omitempty"`
}

// confidenceScore maps the LLM's self-reported per-line tier onto the
// numeric scale the Cost Controller's escalation check compares against
// 0.6. An unrecognized or missing tier is treated as medium.
var confidenceScore = map[string]float64{
	"high":   0.9,
	"medium": 0.6,
	"low":    0.3,
}

func scoreOf(tier string) float64 {
	if score, ok := confidenceScore[strings.ToLower(tier)]; ok {
		return score
	}
	return confidenceScore["medium"]
}

type llmResponse struct {
	Lines []llmLine `json:"lines"`
}

// Normalizer calls an LLM to recover draft lines that regex extraction
// missed or extracted with low confidence, retrying transient failures
// with exponential backoff.
type Normalizer struct {
	client LLMClient
}

// NewNormalizer builds a Normalizer around the given LLM client.
func NewNormalizer(client LLMClient) *Normalizer {
	return &Normalizer{client: client}
}

// Normalize truncates the OCR text to fit the model's effective context,
// prompts it for a JSON line list, and retries up to 3 times on
// transient errors with 2-10s exponential backoff. The returned
// confidence is the mean of each returned line's self-reported tier,
// used by the Cost Controller to decide whether to escalate further.
func (n *Normalizer) Normalize(ctx context.Context, modelName string, ocrText string) ([]model.ExtractedLine, int, int, float64, error) {
	truncated := truncateForModel(ocrText)
	prompt := buildPrompt(truncated)

	var (
		rawText             string
		inputTok, outputTok int
	)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 30 * time.Second
	retrier := backoff.WithMaxRetries(bo, 3)
	retrier = backoff.WithContext(retrier, ctx)

	operation := func() error {
		text, in, out, err := n.client.ChatCompletion(ctx, modelName, prompt)
		if err != nil {
			var retryable *RetryableError
			if errors.As(err, &retryable) {
				return err
			}
			return backoff.Permanent(err)
		}
		rawText, inputTok, outputTok = text, in, out
		return nil
	}

	if err := backoff.Retry(operation, retrier); err != nil {
		return nil, inputTok, outputTok, 0, model.NewError(model.ErrNormalizationFailed, "llm normalization failed: "+err.Error(), nil)
	}

	lines, confidence, err := parseLLMResponse(rawText)
	if err != nil {
		return nil, inputTok, outputTok, 0, model.NewError(model.ErrNormalizationFailed, "llm returned malformed output: "+err.Error(), nil)
	}

	return lines, inputTok, outputTok, confidence, nil
}

func truncateForModel(text string) string {
	if len(text) <= truncateHeadChars+truncateTailChars {
		return text
	}
	head := text[:truncateHeadChars]
	tail := text[len(text)-truncateTailChars:]
	return head + "\n...[truncated]...\n" + tail
}

func buildPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Extract each line item from the following receiving document as JSON matching this schema: ")
	b.WriteString(`{"lines":[{"quantity":number,"unit":string,"description":string,"part_number":string|null,"confidence":"high"|"medium"|"low"}],"extraction_notes":string}`)
	b.WriteString(". Return JSON only, no prose.\n\nDocument text:\n")
	b.WriteString(text)
	return b.String()
}

// parseLLMResponse validates and normalizes each returned line the same
// way the regex parser does (description length in [5,500], whitespace
// collapse, acronym-preserving title case, unit and part-number
// normalization), dropping lines that don't survive validation. It also
// returns the mean confidence across surviving lines, for the Cost
// Controller's escalation check.
func parseLLMResponse(raw string) ([]model.ExtractedLine, float64, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	var resp llmResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, 0, fmt.Errorf("unmarshal llm response: %w", err)
	}

	lines := make([]model.ExtractedLine, 0, len(resp.Lines))
	var scoreTotal float64
	for _, l := range resp.Lines {
		desc := strings.TrimSpace(l.Description)
		if l.Quantity <= 0 || desc == "" {
			continue
		}
		if len(desc) < minDescriptionLen || len(desc) > maxDescriptionLen {
			continue
		}

		line := model.ExtractedLine{
			ID:            model.NewID(),
			Description:   cleanDescription(desc),
			UnitOfMeasure: normalizeUnit(l.UnitOfMeasure),
			Quantity:      decimalFromFloat(l.Quantity),
			Confidence:    tierFromScore(scoreOf(l.Confidence)),
			Provenance:    model.ProvenanceLLM,
		}
		if l.PartNumber != "" {
			line.PartNumber = strings.ToUpper(strings.TrimSpace(l.PartNumber))
		}
		scoreTotal += scoreOf(l.Confidence)
		lines = append(lines, line)
	}

	for i := range lines {
		lines[i].SeqNumber = i + 1
	}

	if len(lines) == 0 {
		return lines, 0, nil
	}
	return lines, scoreTotal / float64(len(lines)), nil
}

func tierFromScore(score float64) model.ConfidenceTier {
	switch {
	case score >= 0.8:
		return model.ConfidenceHigh
	case score >= 0.5:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}
