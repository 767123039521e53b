package extraction

import (
	"github.com/shopspring/decimal"

	"github.com/shortalex12333/Image-processing-sub000/config"
)

// Action is the Cost Controller's verdict for what to do next with a
// document that regex extraction could not fully cover.
type Action string

const (
	ActionAccept   Action = "accept"
	ActionTryMini  Action = "try_mini"
	ActionEscalate Action = "escalate"
	ActionGiveUp   Action = "give_up"
)

// State tracks per-session LLM spend so every extraction decision can be
// made against the running total rather than a per-call budget.
// LastLLMConfidence holds the most recent LLM attempt's confidence,
// feeding Decide's escalation check on the next call.
type State struct {
	CallsMade         int
	TotalCost         decimal.Decimal
	WarnedAt80Pct     bool
	LastLLMConfidence *float64
}

// Decision is the outcome of one cost-control evaluation, including a
// one-shot warning when the session crosses 80% of its cost cap.
type Decision struct {
	Action  Action
	Warning string
}

// miniAttemptTokens and largeAttemptTokens are the projected token counts
// used to estimate cost before committing to an LLM call: 2,000 for the
// first (mini) attempt, 3,000 for an escalation to the larger model.
const (
	miniAttemptTokens  = 2000
	largeAttemptTokens = 3000
)

// Decide implements decide_next_action from the Cost Controller state
// machine: regex coverage and table confidence gate whether an LLM call is
// worth making at all; the session's call count and running cost against
// configured caps gate whether mini or the larger model may be used, or
// whether extraction must give up and surface a low-confidence draft
// instead. lastLLMConfidence is the confidence reported by the previous
// LLM attempt in this session, if any; escalation to the larger model only
// fires when that confidence was below 0.6.
func Decide(cfg *config.Config, state *State, coverage float64, tableConfidence float64, lastLLMConfidence *float64) Decision {
	if coverage >= cfg.LLMCoverageThreshold && tableConfidence >= cfg.LLMTableConfidenceMin {
		return Decision{Action: ActionAccept}
	}

	if state.CallsMade >= cfg.MaxLLMCallsPerSession {
		return Decision{Action: ActionGiveUp}
	}

	costCap := decimal.NewFromFloat(cfg.MaxCostPerSession)
	if state.TotalCost.GreaterThanOrEqual(costCap) {
		return Decision{Action: ActionGiveUp}
	}

	var decision Decision
	switch {
	case state.CallsMade == 0:
		if fitsProjectedCost(cfg, state, "mini", miniAttemptTokens) {
			decision = Decision{Action: ActionTryMini}
		} else {
			decision = Decision{Action: ActionGiveUp}
		}
	case state.CallsMade == 1 && lastLLMConfidence != nil && *lastLLMConfidence < 0.6:
		if fitsProjectedCost(cfg, state, "large", largeAttemptTokens) {
			decision = Decision{Action: ActionEscalate}
		} else {
			decision = Decision{Action: ActionGiveUp}
		}
	default:
		decision = Decision{Action: ActionGiveUp}
	}

	eightyPct := costCap.Mul(decimal.NewFromFloat(0.8))
	if !state.WarnedAt80Pct && state.TotalCost.GreaterThanOrEqual(eightyPct) {
		state.WarnedAt80Pct = true
		decision.Warning = "session has reached 80% of its LLM cost cap"
	}

	return decision
}

// fitsProjectedCost reports whether one more call at modelName, estimated
// at estimatedTokens split 60/40 input:output, keeps the session under
// both the per-session call cap and the monetary cap. It projects rather
// than checking the already-spent total, so a call that would tip the
// session over its cap is refused before it's made.
func fitsProjectedCost(cfg *config.Config, state *State, modelName string, estimatedTokens int) bool {
	if state.CallsMade+1 > cfg.MaxLLMCallsPerSession {
		return false
	}

	price, ok := cfg.ModelPricing[modelName]
	if !ok {
		price = cfg.ModelPricing["mini"]
	}
	inputTokens := int(float64(estimatedTokens) * 0.6)
	outputTokens := estimatedTokens - inputTokens

	estimatedCost := decimal.NewFromFloat(price.InputPricePerToken).Mul(decimal.NewFromInt(int64(inputTokens)))
	estimatedCost = estimatedCost.Add(decimal.NewFromFloat(price.OutputPricePerToken).Mul(decimal.NewFromInt(int64(outputTokens))))

	projectedCost := state.TotalCost.Add(estimatedCost)
	return projectedCost.LessThanOrEqual(decimal.NewFromFloat(cfg.MaxCostPerSession))
}

// RecordCall updates the running session cost and confidence after an LLM
// call returns, using the configured per-model per-token pricing. The
// recorded confidence feeds the next call's escalation check in Decide.
func RecordCall(cfg *config.Config, state *State, model string, inputTokens, outputTokens int, confidence float64) decimal.Decimal {
	price, ok := cfg.ModelPricing[model]
	if !ok {
		price = cfg.ModelPricing["mini"]
	}
	cost := decimal.NewFromFloat(price.InputPricePerToken).Mul(decimal.NewFromInt(int64(inputTokens)))
	cost = cost.Add(decimal.NewFromFloat(price.OutputPricePerToken).Mul(decimal.NewFromInt(int64(outputTokens))))

	state.CallsMade++
	state.TotalCost = state.TotalCost.Add(cost)
	state.LastLLMConfidence = &confidence
	return cost
}
