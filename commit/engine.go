package commit

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/shortalex12333/Image-processing-sub000/model"
	"github.com/shortalex12333/Image-processing-sub000/repository"
)

// Request is the input to Commit: the session and actor committing it,
// plus optional notes and an override for unverified lines.
type Request struct {
	TenantID           string
	SessionID          string
	ActorID            string
	Notes              string
	OverrideUnverified bool
}

// InventorySummary aggregates the atomic inventory steps applied during
// one commit.
type InventorySummary struct {
	PartsUpdated      int
	TotalQuantityAdded decimal.Decimal
	TransactionsCreated int
}

// FinanceSummary aggregates the finance transactions inserted during one
// commit.
type FinanceSummary struct {
	TransactionsCreated int
	TotalAmount         decimal.Decimal
	SkippedLines        int
}

// Result is everything the Commit Engine returns on success.
type Result struct {
	Event          model.ReceivingEvent
	Inventory      InventorySummary
	Finance        FinanceSummary
	AuditID        string
	LowStockAlerts []model.LowStockAlert
}

// Engine runs the Commit Engine operation described in spec §4.5.
type Engine struct {
	txBeginner repository.TxBeginner
	logger     zerolog.Logger
	now        func() time.Time
}

// NewEngine builds the Commit Engine. now is injectable for deterministic
// tests; production callers pass time.Now.
func NewEngine(txBeginner repository.TxBeginner, logger zerolog.Logger, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{txBeginner: txBeginner, logger: logger, now: now}
}

// Commit executes the nine-step commit operation inside one outer
// repository transaction, rolling back entirely on any step that fails
// fatally (SESSION_NOT_FOUND, UNVERIFIED_LINES, SESSION_ALREADY_COMMITTED).
func (e *Engine) Commit(ctx context.Context, req Request) (*Result, error) {
	tx, err := e.txBeginner.Begin(ctx)
	if err != nil {
		return nil, model.NewError(model.ErrInternal, "failed to start commit transaction: "+err.Error(), nil)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	// Step 1: load draft lines.
	lines, err := tx.Sessions().ListLines(ctx, req.TenantID, req.SessionID)
	if err != nil {
		if err == repository.ErrNoRows {
			return nil, model.NewError(model.ErrSessionNotFound, "session not found", nil)
		}
		return nil, model.NewError(model.ErrInternal, "failed to load draft lines: "+err.Error(), nil)
	}
	if len(lines) == 0 {
		return nil, model.NewError(model.ErrSessionNotFound, "session has no lines", nil)
	}

	// Step 2: unverified-line gate.
	if !req.OverrideUnverified {
		unverified := 0
		for _, l := range lines {
			if !l.IsVerified {
				unverified++
			}
		}
		if unverified > 0 {
			return nil, model.NewError(model.ErrUnverifiedLines, "session has unverified lines", map[string]interface{}{
				"unverified_count": unverified,
			})
		}
	}

	now := e.now()

	// Step 3: next event number, epoch-seconds fallback on repository error.
	year := now.Year()
	eventNumber, err := nextEventNumber(ctx, tx.Sessions(), req.TenantID, year, now)
	if err != nil {
		e.logger.Warn().Err(err).Str("tenant_id", req.TenantID).Msg("event numbering fell back to epoch seconds")
	}

	// Step 4: event signature over canonical JSON.
	lineIDs := make([]string, 0, len(lines))
	for _, l := range lines {
		lineIDs = append(lineIDs, l.ID)
	}
	eventID := model.NewID()
	signature, err := Sign(map[string]interface{}{
		"session_id": req.SessionID,
		"tenant_id":  req.TenantID,
		"actor_id":   req.ActorID,
		"line_ids":   lineIDs,
		"timestamp":  now.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, model.NewError(model.ErrInternal, "failed to sign event: "+err.Error(), nil)
	}

	// Step 5: insert the Receiving Event.
	event := model.ReceivingEvent{
		ID:          eventID,
		TenantID:    req.TenantID,
		SessionID:   req.SessionID,
		EventNumber: eventNumber,
		CommitterID: req.ActorID,
		Notes:       req.Notes,
		LineCount:   len(lines),
		Signature:   signature,
		CreatedAt:   now,
	}
	if _, err := tx.Events().Insert(ctx, &event); err != nil {
		return nil, model.NewError(model.ErrInternal, "failed to insert receiving event: "+err.Error(), nil)
	}

	// Step 6: atomic inventory step for each verified, matched line.
	inventorySummary := InventorySummary{TotalQuantityAdded: decimal.Zero}
	var lowStock []model.LowStockAlert
	for _, l := range lines {
		if !l.IsVerified || l.Suggestion == nil || l.Suggestion.PartID == "" {
			continue
		}
		delta, _ := l.Quantity.Float64()
		newQty, err := ApplyInventoryDelta(ctx, tx.Catalog(), req.TenantID, l.Suggestion.PartID, delta)
		if err != nil {
			if _, ok := err.(*InsufficientStockError); ok {
				return nil, model.NewError(model.ErrInsufficientStock, err.Error(), map[string]interface{}{
					"part_id": l.Suggestion.PartID,
				})
			}
			return nil, model.NewError(model.ErrInternal, "atomic inventory step failed: "+err.Error(), nil)
		}

		part, perr := tx.Catalog().GetPart(ctx, req.TenantID, l.Suggestion.PartID)
		if perr == nil && part != nil {
			qtyOnHand := decimal.NewFromFloat(newQty)
			if qtyOnHand.LessThan(part.MinQuantity) {
				lowStock = append(lowStock, model.LowStockAlert{
					PartID:          part.ID,
					PartNumber:      part.PartNumber,
					QuantityOnHand:  qtyOnHand,
					MinimumQuantity: part.MinQuantity,
					Shortage:        part.MinQuantity.Sub(qtyOnHand),
				})
			}
		}

		txn := model.InventoryTransaction{
			ID:            model.NewID(),
			TenantID:      req.TenantID,
			PartID:        l.Suggestion.PartID,
			QuantityDelta: l.Quantity,
			Kind:          model.InventoryReceiving,
			ReferenceID:   eventID,
			ReferenceKind: "receiving_event",
			ActorID:       req.ActorID,
			CreatedAt:     now,
		}
		if _, err := tx.InventoryTransactions().Insert(ctx, &txn); err != nil {
			return nil, model.NewError(model.ErrInternal, "failed to record inventory transaction: "+err.Error(), nil)
		}

		inventorySummary.PartsUpdated++
		inventorySummary.TotalQuantityAdded = inventorySummary.TotalQuantityAdded.Add(l.Quantity)
		inventorySummary.TransactionsCreated++
	}

	// Step 7: finance transaction per priced line; failures are logged, not fatal.
	financeSummary := FinanceSummary{TotalAmount: decimal.Zero}
	for _, l := range lines {
		if l.UnitPrice == nil || !l.UnitPrice.IsPositive() {
			continue
		}
		amount := l.UnitPrice.Mul(l.Quantity)
		txn := model.FinanceTransaction{
			ID:               model.NewID(),
			TenantID:         req.TenantID,
			ReferenceEventID: eventID,
			Kind:             "receiving_cost",
			Category:         "inventory",
			Amount:           amount,
			Currency:         "USD",
			ActorID:          req.ActorID,
			CreatedAt:        now,
		}
		if _, err := tx.FinanceTransactions().Insert(ctx, &txn); err != nil {
			e.logger.Warn().Err(err).Str("line_id", l.ID).Msg("finance transaction insert failed, skipping")
			financeSummary.SkippedLines++
			continue
		}
		financeSummary.TransactionsCreated++
		financeSummary.TotalAmount = financeSummary.TotalAmount.Add(amount)
	}
	event.TotalCost = &financeSummary.TotalAmount

	// Step 8: audit entry.
	auditEntry := model.AuditEntry{
		ID:         model.NewID(),
		TenantID:   req.TenantID,
		ActorID:    req.ActorID,
		Action:     "commit_receiving_session",
		EntityKind: "receiving_session",
		EntityID:   req.SessionID,
		OldValue:   map[string]interface{}{"status": string(model.SessionDraft)},
		NewValue: map[string]interface{}{
			"status":          string(model.SessionCommitted),
			"event_id":        eventID,
			"lines_committed": len(lines),
		},
		CreatedAt: now,
	}
	auditSignature, err := Sign(map[string]interface{}{
		"tenant_id":   auditEntry.TenantID,
		"actor_id":    auditEntry.ActorID,
		"action":      auditEntry.Action,
		"entity_kind": auditEntry.EntityKind,
		"entity_id":   auditEntry.EntityID,
		"old_value":   auditEntry.OldValue,
		"new_value":   auditEntry.NewValue,
		"timestamp":   now.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, model.NewError(model.ErrInternal, "failed to sign audit entry: "+err.Error(), nil)
	}
	auditEntry.Signature = auditSignature

	auditID, err := tx.Audit().Insert(ctx, &auditEntry)
	if err != nil {
		return nil, model.NewError(model.ErrInternal, "failed to insert audit entry: "+err.Error(), nil)
	}

	// Step 9: conditional session-commit update — double-commit guard.
	ok, err := tx.Sessions().CommitSessionIfDraft(ctx, req.TenantID, req.SessionID, req.ActorID, eventID, now)
	if err != nil {
		return nil, model.NewError(model.ErrInternal, "failed to update session status: "+err.Error(), nil)
	}
	if !ok {
		return nil, model.NewError(model.ErrSessionAlreadyCommitted, "session was already committed", nil)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, model.NewError(model.ErrInternal, "failed to commit transaction: "+err.Error(), nil)
	}
	committed = true

	return &Result{
		Event:          event,
		Inventory:      inventorySummary,
		Finance:        financeSummary,
		AuditID:        auditID,
		LowStockAlerts: lowStock,
	}, nil
}

func nextEventNumber(ctx context.Context, sessions repository.Sessions, tenantID string, year int, now time.Time) (string, error) {
	count, err := sessions.CountEventsForTenantYear(ctx, tenantID, year)
	if err != nil {
		return fmt.Sprintf("RCV-EVT-%d-%d", year, now.Unix()), err
	}
	return fmt.Sprintf("RCV-EVT-%d-%d", year, count+1), nil
}
