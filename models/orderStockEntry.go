package models

import (
	"context"
	"time"

	"bitbucket.org/polifilmdata/films_backend/config"
	"bitbucket.org/polifilmdata/films_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStockEntry is a warehouse-entered stock contribution directly
// against an order: the "stock" sourcing path, parallel to the cutting
// entries' "production" path.
type OrderStockEntry struct {
	ID          int             `gorm:"primary_key" json:"id"`
	OrderId     int             `gorm:"index;not null" json:"order_id"`
	StockItemId *int            `gorm:"index" json:"stock_item_id"`
	Kg          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"kg"`
	Quantity    int             `gorm:"default:0" json:"quantity"`
	LotNumber   string          `gorm:"size:100" json:"lot_number"`
	Notes       string          `gorm:"size:255" json:"notes"`
	CreatedBy   int             `gorm:"index" json:"created_by"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewOrderStockEntry struct {
	OrderId     int             `json:"order_id" binding:"required"`
	StockItemId *int            `json:"stock_item_id"`
	Kg          decimal.Decimal `json:"kg" binding:"required"`
	Quantity    int             `json:"quantity"`
	LotNumber   string          `json:"lot_number"`
	Notes       string          `json:"notes"`
}

func (input *NewOrderStockEntry) Validate(ctx context.Context) error {
	if !input.Kg.IsPositive() {
		return utils.NewValidationError("kg must be positive")
	}
	if input.Quantity < 0 {
		return utils.NewValidationError("quantity must not be negative")
	}
	if err := utils.ValidateResourceId[Order](ctx, input.OrderId); err != nil {
		return utils.NewNotFoundError("order", input.OrderId)
	}
	return nil
}

func GetOrderStockEntry(ctx context.Context, id int) (*OrderStockEntry, error) {
	entry, err := utils.FetchModel[OrderStockEntry](ctx, id)
	if err != nil {
		return nil, utils.NewNotFoundError("order stock entry", id)
	}
	return entry, nil
}

func ListOrderStockEntriesByOrder(ctx context.Context, orderId int) ([]*OrderStockEntry, error) {
	db := config.GetDB()
	var entries []*OrderStockEntry
	err := db.WithContext(ctx).Where("order_id = ?", orderId).Order("id").Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// InsertOrderStockEntry writes the detail row; saga step.
func InsertOrderStockEntry(tx *gorm.DB, entry *OrderStockEntry) error {
	return tx.Create(entry).Error
}

// DeleteOrderStockEntryRow removes the detail row; saga step.
func DeleteOrderStockEntryRow(tx *gorm.DB, id int) error {
	return tx.Delete(&OrderStockEntry{}, id).Error
}

// ReinsertOrderStockEntry puts a captured row back with its original id;
// compensation for a delete whose readiness step failed.
func ReinsertOrderStockEntry(tx *gorm.DB, entry *OrderStockEntry) error {
	return tx.Create(entry).Error
}

// SumOrderStockEntryKg totals the live stock-side contributions of an order.
func SumOrderStockEntryKg(tx *gorm.DB, orderId int) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := tx.Model(&OrderStockEntry{}).
		Select("COALESCE(SUM(kg), 0) AS total").
		Where("order_id = ?", orderId).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}
