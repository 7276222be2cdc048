package workflow

import (
	"context"
	"fmt"

	"bitbucket.org/polifilmdata/films_backend/config"
	"bitbucket.org/polifilmdata/films_backend/models"
	"bitbucket.org/polifilmdata/films_backend/utils"
)

// OrderStockEntryResult is the created entry plus non-fatal warnings.
type OrderStockEntryResult struct {
	Entry    *models.OrderStockEntry `json:"entry"`
	Warnings []string                `json:"warnings,omitempty"`
}

// CreateOrderStockEntry fulfils part of an order straight from warehouse
// stock. Unlike the cutting path nothing physical has happened yet when
// this runs, so the readiness recompute is fatal here: if the order cannot
// reflect the contribution, the whole entry is rolled back.
func CreateOrderStockEntry(ctx context.Context, input *models.NewOrderStockEntry) (*OrderStockEntryResult, error) {
	ctx, span := tracer.Start(ctx, "CreateOrderStockEntry")
	defer span.End()

	db := config.GetDB().WithContext(ctx)

	if err := input.Validate(ctx); err != nil {
		return nil, err
	}

	order, err := models.GetOrder(ctx, input.OrderId)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, utils.NewConflictError(fmt.Sprintf("order %d is %s and takes no more stock", order.ID, order.Status))
	}

	userId, _ := utils.GetUserIdFromContext(ctx)
	entry := &models.OrderStockEntry{
		OrderId:     input.OrderId,
		StockItemId: input.StockItemId,
		Kg:          input.Kg,
		Quantity:    input.Quantity,
		LotNumber:   input.LotNumber,
		Notes:       input.Notes,
		CreatedBy:   userId,
	}

	comp := newCompensations("workflow", "CreateOrderStockEntry")
	fail := func(cause error) error {
		comp.run()
		return cause
	}

	if err := models.InsertOrderStockEntry(db, entry); err != nil {
		return nil, err
	}
	comp.push("delete order stock entry", func() error {
		return models.DeleteOrderStockEntryRow(db, entry.ID)
	})

	if input.StockItemId != nil {
		snapshot, removed, err := GuardedDecrement(db, *input.StockItemId, input.Kg)
		if err != nil {
			return nil, fail(err)
		}
		comp.push("restore stock item", func() error {
			return models.RestoreStockItem(db, snapshot)
		})

		notes := ""
		if removed.LessThan(input.Kg) {
			notes = fmt.Sprintf("clamped, short %s kg", input.Kg.Sub(removed))
		}
		movement, err := models.RecordStockMovement(db, &models.NewStockMovement{
			StockItemId:   *input.StockItemId,
			Direction:     models.MovementDirectionOut,
			Kg:            removed,
			Quantity:      input.Quantity,
			Reason:        models.MovementReasonOrderStockEntry,
			ReferenceType: models.MovementReferenceOrderStockEntry,
			ReferenceID:   entry.ID,
			Notes:         notes,
			CreatedBy:     userId,
		})
		if err != nil {
			return nil, fail(err)
		}
		comp.push("delete movement", func() error {
			return models.DeleteStockMovementRow(db, movement.ID)
		})
	}

	if _, err := RecomputeStockReadiness(ctx, input.OrderId); err != nil {
		return nil, fail(err)
	}

	result := &OrderStockEntryResult{Entry: entry}
	if warning := RecordAudit(ctx, AuditActionCreate, entry.ID, "order_stock_entry", nil, entry,
		fmt.Sprintf("stock entry recorded for order %d", input.OrderId)); warning != "" {
		result.Warnings = append(result.Warnings, warning)
	}
	return result, nil
}

// DeleteOrderStockEntry withdraws a stock contribution: the entry row goes,
// sourced kilos return to the stock item through an atomic increment so a
// concurrent decrement is never overwritten, a reversal ledger line lands, and
// the order's stock readiness is recomputed. The recompute is fatal; on
// failure the captured row is put back with its original id.
func DeleteOrderStockEntry(ctx context.Context, entryId int) ([]string, error) {
	ctx, span := tracer.Start(ctx, "DeleteOrderStockEntry")
	defer span.End()

	db := config.GetDB().WithContext(ctx)

	entry, err := models.GetOrderStockEntry(ctx, entryId)
	if err != nil {
		return nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)
	comp := newCompensations("workflow", "DeleteOrderStockEntry")
	fail := func(cause error) error {
		comp.run()
		return cause
	}

	if err := models.DeleteOrderStockEntryRow(db, entry.ID); err != nil {
		return nil, err
	}
	comp.push("reinsert order stock entry", func() error {
		return models.ReinsertOrderStockEntry(db, entry)
	})

	if entry.StockItemId != nil {
		if err := models.IncrementStockItem(db, *entry.StockItemId, entry.Kg); err != nil {
			return nil, fail(err)
		}
		comp.push("re-apply stock decrement", func() error {
			_, err := models.DecrementStockItem(db, *entry.StockItemId, entry.Kg)
			return err
		})

		if _, err := models.RecordStockMovement(db, &models.NewStockMovement{
			StockItemId:   *entry.StockItemId,
			Direction:     models.MovementDirectionIn,
			Kg:            entry.Kg,
			Quantity:      entry.Quantity,
			Reason:        models.MovementReasonEntryReversal,
			ReferenceType: models.MovementReferenceOrderStockEntry,
			ReferenceID:   entry.ID,
			CreatedBy:     userId,
		}); err != nil {
			return nil, fail(err)
		}
	}

	if _, err := RecomputeStockReadiness(ctx, entry.OrderId); err != nil {
		return nil, fail(err)
	}

	var warnings []string
	if warning := RecordAudit(ctx, AuditActionDelete, entry.ID, "order_stock_entry", entry, nil,
		fmt.Sprintf("stock entry removed from order %d", entry.OrderId)); warning != "" {
		warnings = append(warnings, warning)
	}
	return warnings, nil
}
