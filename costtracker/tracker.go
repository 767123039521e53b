// Package costtracker owns the per-session LLM spend snapshot. Per
// spec §9's shared-resource policy, exactly one orchestrator task owns a
// given session's Tracker at a time — it is not meant to be shared
// across goroutines without external synchronization.
package costtracker

import (
	"github.com/shopspring/decimal"
)

// ModelBreakdown is the running call count and cost attributed to one
// model for a session.
type ModelBreakdown struct {
	Calls int
	Cost  decimal.Decimal
}

// Snapshot is the Cost-Tracker Session Snapshot: running totals plus a
// per-model breakdown, returned to the pipeline's caller with each
// processed upload.
type Snapshot struct {
	CallCount    int
	TokenTotal   int
	CostTotal    decimal.Decimal
	ByModel      map[string]ModelBreakdown
}

// Tracker accumulates a session's LLM usage as calls are made.
type Tracker struct {
	snapshot Snapshot
}

// New builds an empty Tracker.
func New() *Tracker {
	return &Tracker{snapshot: Snapshot{CostTotal: decimal.Zero, ByModel: map[string]ModelBreakdown{}}}
}

// RecordCall updates the running snapshot after one LLM call completes.
func (t *Tracker) RecordCall(modelName string, inputTokens, outputTokens int, cost decimal.Decimal) {
	t.snapshot.CallCount++
	t.snapshot.TokenTotal += inputTokens + outputTokens
	t.snapshot.CostTotal = t.snapshot.CostTotal.Add(cost)

	entry := t.snapshot.ByModel[modelName]
	entry.Calls++
	entry.Cost = entry.Cost.Add(cost)
	t.snapshot.ByModel[modelName] = entry
}

// Snapshot returns a copy of the current totals. The ByModel map is
// copied so callers cannot mutate the tracker's internal state.
func (t *Tracker) Snapshot() Snapshot {
	out := t.snapshot
	out.ByModel = make(map[string]ModelBreakdown, len(t.snapshot.ByModel))
	for k, v := range t.snapshot.ByModel {
		out.ByModel[k] = v
	}
	return out
}
