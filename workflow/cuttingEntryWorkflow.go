package workflow

import (
	"context"
	"errors"
	"fmt"

	"bitbucket.org/polifilmdata/films_backend/config"
	"bitbucket.org/polifilmdata/films_backend/models"
	"bitbucket.org/polifilmdata/films_backend/utils"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("bitbucket.org/polifilmdata/films_backend/workflow")

// CuttingEntryResult carries the created entry plus non-fatal warnings the
// caller must surface to the operator.
type CuttingEntryResult struct {
	Entry         *models.CuttingEntry `json:"entry"`
	LeftoverStock *models.StockItem    `json:"leftover_stock,omitempty"`
	Warnings      []string             `json:"warnings,omitempty"`
}

// RecordCuttingEntry registers one physical cut against a plan. There is no
// multi-statement transaction: each step commits on its own and pushes a
// compensation, mirroring how the warehouse process itself works. The cut
// has physically happened by the time this is called, so a failed readiness
// recomputation after the durable writes degrades to a warning instead of
// undoing real material.
//
// Steps, in order:
//  1. load and gate the plan (cancelled/completed plans take no entries)
//  2. insert the entry row
//  3. if the plan is sourced from stock: guarded decrement + out movement
//  4. order piece: recompute production readiness (non-fatal)
//     leftover:    create a new stock item + in movement (fatal)
//  5. advance the plan to in_progress, write audit (both best-effort)
func RecordCuttingEntry(ctx context.Context, input *models.NewCuttingEntry) (*CuttingEntryResult, error) {
	ctx, span := tracer.Start(ctx, "RecordCuttingEntry")
	defer span.End()

	logger := config.GetLogger()
	db := config.GetDB().WithContext(ctx)

	plan, err := models.GetCuttingPlan(ctx, input.CuttingPlanId)
	if err != nil {
		return nil, err
	}
	if plan.Status == models.CuttingPlanStatusCancelled || plan.Status == models.CuttingPlanStatusCompleted {
		return nil, utils.NewConflictError(fmt.Sprintf("cutting plan %d is %s and takes no more entries", plan.ID, plan.Status))
	}

	quantity := input.CutQuantity
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, utils.NewValidationError("cut quantity must be positive")
	}
	if !input.CutKg.IsPositive() || !input.CutWidth.IsPositive() {
		return nil, utils.NewValidationError("cut kg and width must be positive")
	}
	isOrderPiece := utils.DereferencePtr(input.IsOrderPiece, true)

	userId, _ := utils.GetUserIdFromContext(ctx)
	entry := &models.CuttingEntry{
		CuttingPlanId: plan.ID,
		BobbinLabel:   input.BobbinLabel,
		Width:         input.CutWidth,
		Kg:            input.CutKg,
		Quantity:      quantity,
		IsOrderPiece:  &isOrderPiece,
		Notes:         input.Notes,
		CreatedBy:     userId,
	}

	comp := newCompensations("workflow", "RecordCuttingEntry")
	fail := func(cause error) error {
		comp.run()
		return cause
	}

	if err := models.InsertCuttingEntry(db, entry); err != nil {
		return nil, err
	}
	comp.push("delete cutting entry", func() error {
		return models.DeleteCuttingEntryRow(db, entry.ID)
	})

	if plan.SourceStockItemId != nil {
		snapshot, removed, err := GuardedDecrement(db, *plan.SourceStockItemId, input.CutKg)
		if err != nil {
			return nil, fail(err)
		}
		comp.push("restore source stock item", func() error {
			return models.RestoreStockItem(db, snapshot)
		})

		notes := ""
		if removed.LessThan(input.CutKg) {
			notes = fmt.Sprintf("clamped, short %s kg", input.CutKg.Sub(removed))
		}
		movement, err := models.RecordStockMovement(db, &models.NewStockMovement{
			StockItemId:   *plan.SourceStockItemId,
			Direction:     models.MovementDirectionOut,
			Kg:            removed,
			Quantity:      quantity,
			Reason:        models.MovementReasonCuttingSource,
			ReferenceType: models.MovementReferenceCuttingEntry,
			ReferenceID:   entry.ID,
			Notes:         notes,
			CreatedBy:     userId,
		})
		if err != nil {
			return nil, fail(err)
		}
		comp.push("delete source movement", func() error {
			return models.DeleteStockMovementRow(db, movement.ID)
		})
	}

	result := &CuttingEntryResult{Entry: entry}

	if isOrderPiece {
		if _, err := RecomputeProductionReadiness(ctx, plan.OrderId); err != nil {
			config.LogError(logger, "workflow", "RecordCuttingEntry",
				"readiness recompute failed after durable cut",
				map[string]any{"order_id": plan.OrderId, "cutting_entry_id": entry.ID}, err)
			result.Warnings = append(result.Warnings, "order readiness could not be recomputed, run the rebuild tool")
		}
	} else {
		leftover, err := models.CreateStockItemTx(db, &models.NewStockItem{
			Category:    "leftover",
			ProductName: fmt.Sprintf("leftover of plan %d", plan.ID),
			Width:       input.CutWidth,
			Kg:          input.CutKg,
			Quantity:    quantity,
			Notes:       input.Notes,
		})
		if err != nil {
			return nil, fail(err)
		}
		comp.push("delete leftover stock item", func() error {
			return models.DeleteStockItemRow(db, leftover.ID)
		})

		if _, err := models.RecordStockMovement(db, &models.NewStockMovement{
			StockItemId:   leftover.ID,
			Direction:     models.MovementDirectionIn,
			Kg:            input.CutKg,
			Quantity:      quantity,
			Reason:        models.MovementReasonCuttingLeftover,
			ReferenceType: models.MovementReferenceCuttingEntry,
			ReferenceID:   entry.ID,
			CreatedBy:     userId,
		}); err != nil {
			return nil, fail(err)
		}
		result.LeftoverStock = leftover
	}

	if err := models.MarkCuttingPlanInProgress(db, plan.ID); err != nil {
		config.LogError(logger, "workflow", "RecordCuttingEntry",
			"could not advance cutting plan", map[string]any{"cutting_plan_id": plan.ID}, err)
	}

	if warning := RecordAudit(ctx, AuditActionCreate, entry.ID, "cutting_entry", nil, entry,
		fmt.Sprintf("cutting entry recorded for plan %d", plan.ID)); warning != "" {
		result.Warnings = append(result.Warnings, warning)
	}

	return result, nil
}

// DeleteCuttingEntry corrects a mistyped entry. Steps run in reverse of the
// create: remove the row, take back the leftover stock the entry created (a
// leftover whose kilos are already consumed blocks the delete), put the cut
// kilos back on the source item with a reversal ledger line, then recompute
// readiness. Re-credits go through atomic increments so a concurrent
// decrement on the same item is never overwritten. A failed recompute after
// the delete re-inserts nothing (the ledger is already consistent) and
// degrades to a warning, same policy as the create path.
func DeleteCuttingEntry(ctx context.Context, entryId int) ([]string, error) {
	ctx, span := tracer.Start(ctx, "DeleteCuttingEntry")
	defer span.End()

	logger := config.GetLogger()
	db := config.GetDB().WithContext(ctx)

	entry, err := models.GetCuttingEntry(ctx, entryId)
	if err != nil {
		return nil, err
	}
	plan, err := models.GetCuttingPlan(ctx, entry.CuttingPlanId)
	if err != nil {
		return nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)
	comp := newCompensations("workflow", "DeleteCuttingEntry")
	fail := func(cause error) error {
		comp.run()
		return cause
	}

	isOrderPiece := utils.DereferencePtr(entry.IsOrderPiece, true)

	if err := models.DeleteCuttingEntryRow(db, entry.ID); err != nil {
		return nil, err
	}
	comp.push("reinsert cutting entry", func() error {
		return models.InsertCuttingEntry(db, entry)
	})

	leftoverId := 0
	if !isOrderPiece {
		leftoverMovement, err := models.FindLeftoverMovement(db, entry.ID)
		if err != nil {
			return nil, fail(err)
		}
		leftoverId = leftoverMovement.StockItemId

		leftoverSnapshot, err := models.SnapshotStockItem(db, leftoverId)
		if err != nil {
			return nil, fail(err)
		}
		if _, err := models.DecrementStockItem(db, leftoverId, entry.Kg); err != nil {
			var conflict *utils.ConflictError
			if errors.As(err, &conflict) {
				return nil, fail(utils.NewConflictError(fmt.Sprintf(
					"leftover stock of entry %d is already consumed, reverse its consumers first", entry.ID)))
			}
			return nil, fail(err)
		}
		comp.push("restore leftover stock item", func() error {
			return models.RestoreStockItem(db, leftoverSnapshot)
		})

		movement, err := models.RecordStockMovement(db, &models.NewStockMovement{
			StockItemId:   leftoverId,
			Direction:     models.MovementDirectionOut,
			Kg:            entry.Kg,
			Quantity:      entry.Quantity,
			Reason:        models.MovementReasonEntryReversal,
			ReferenceType: models.MovementReferenceCuttingEntry,
			ReferenceID:   entry.ID,
			CreatedBy:     userId,
		})
		if err != nil {
			return nil, fail(err)
		}
		comp.push("delete leftover reversal movement", func() error {
			return models.DeleteStockMovementRow(db, movement.ID)
		})
	}

	if plan.SourceStockItemId != nil {
		if err := models.IncrementStockItem(db, *plan.SourceStockItemId, entry.Kg); err != nil {
			return nil, fail(err)
		}
		comp.push("re-apply source decrement", func() error {
			_, err := models.DecrementStockItem(db, *plan.SourceStockItemId, entry.Kg)
			return err
		})

		if _, err := models.RecordStockMovement(db, &models.NewStockMovement{
			StockItemId:   *plan.SourceStockItemId,
			Direction:     models.MovementDirectionIn,
			Kg:            entry.Kg,
			Quantity:      entry.Quantity,
			Reason:        models.MovementReasonEntryReversal,
			ReferenceType: models.MovementReferenceCuttingEntry,
			ReferenceID:   entry.ID,
			CreatedBy:     userId,
		}); err != nil {
			return nil, fail(err)
		}
	}

	// Past the last fallible step; retiring the drained leftover can no
	// longer be undone by a compensation run.
	if leftoverId != 0 {
		if err := models.DeactivateStockItemIfEmpty(db, leftoverId); err != nil {
			config.LogError(logger, "workflow", "DeleteCuttingEntry",
				"could not deactivate emptied leftover item",
				map[string]any{"stock_item_id": leftoverId, "cutting_entry_id": entry.ID}, err)
		}
	}

	var warnings []string
	if isOrderPiece {
		if _, err := RecomputeProductionReadiness(ctx, plan.OrderId); err != nil {
			config.LogError(logger, "workflow", "DeleteCuttingEntry",
				"readiness recompute failed after delete",
				map[string]any{"order_id": plan.OrderId, "cutting_entry_id": entry.ID}, err)
			warnings = append(warnings, "order readiness could not be recomputed, run the rebuild tool")
		}
	}

	if warning := RecordAudit(ctx, AuditActionDelete, entry.ID, "cutting_entry", entry, nil,
		fmt.Sprintf("cutting entry removed from plan %d", plan.ID)); warning != "" {
		warnings = append(warnings, warning)
	}

	return warnings, nil
}
