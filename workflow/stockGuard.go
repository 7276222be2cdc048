package workflow

import (
	"bitbucket.org/polifilmdata/films_backend/config"
	"bitbucket.org/polifilmdata/films_backend/models"
	"bitbucket.org/polifilmdata/films_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GuardedDecrement takes kg off a stock item without oversell. The decrement
// itself is a conditional single-row UPDATE (kg >= requested in the WHERE
// clause), so two concurrent requests can never both win the same kilos;
// the loser gets a ConflictError and no retry is attempted here.
//
// In strict mode a request for more than the visible balance is rejected
// up front with InsufficientStockError. In legacy mode the item is clamped
// to zero instead, and the short amount is logged loudly.
//
// Returns the pre-decrement snapshot for compensation via
// models.RestoreStockItem, plus the kg actually removed. The removed amount
// equals the request except in legacy clamp mode, where only the remaining
// balance comes off; ledger lines must carry the removed amount, not the
// request, or every clamp drifts the movement sum.
func GuardedDecrement(tx *gorm.DB, stockItemId int, kg decimal.Decimal) (*models.StockItemSnapshot, decimal.Decimal, error) {
	if !kg.IsPositive() {
		return nil, decimal.Zero, utils.NewValidationError("decrement kg must be positive")
	}

	snapshot, err := models.SnapshotStockItem(tx, stockItemId)
	if err != nil {
		return nil, decimal.Zero, err
	}

	if snapshot.Kg.LessThan(kg) {
		if config.StrictStockUnderflow() {
			return nil, decimal.Zero, &utils.InsufficientStockError{
				StockItemId: stockItemId,
				Available:   snapshot.Kg,
				Requested:   kg,
			}
		}
		config.LogWarn(config.GetLogger(), "workflow", "GuardedDecrement",
			"clamping stock item to zero, requested exceeds balance",
			map[string]any{
				"stock_item_id": stockItemId,
				"available":     snapshot.Kg,
				"requested":     kg,
				"short_by":      kg.Sub(snapshot.Kg),
			})
		if _, err := models.ClampStockItemToZero(tx, stockItemId); err != nil {
			return nil, decimal.Zero, err
		}
		return snapshot, snapshot.Kg, nil
	}

	if _, err := models.DecrementStockItem(tx, stockItemId, kg); err != nil {
		return nil, decimal.Zero, err
	}
	return snapshot, kg, nil
}
