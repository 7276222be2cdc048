package models

import (
	"context"
	"time"

	"bitbucket.org/polifilmdata/films_backend/config"
	"bitbucket.org/polifilmdata/films_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockItem is one physical inventory record. Kg is the only field that
// needs mutual exclusion; it is only ever decremented through the
// conditional write in DecrementStockItem.
type StockItem struct {
	ID          int             `gorm:"primary_key" json:"id"`
	Category    string          `gorm:"size:100;index" json:"category"`
	ProductName string          `gorm:"size:255;not null" json:"product_name"`
	Micron      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"micron"`
	Width       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"width"`
	Kg          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"kg"`
	Quantity    int             `gorm:"default:0" json:"quantity"`
	LotNumber   string          `gorm:"size:100;index" json:"lot_number"`
	Notes       string          `gorm:"type:text" json:"notes"`
	IsActive    *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewStockItem struct {
	Category    string          `json:"category"`
	ProductName string          `json:"product_name" binding:"required"`
	Micron      decimal.Decimal `json:"micron"`
	Width       decimal.Decimal `json:"width"`
	Kg          decimal.Decimal `json:"kg" binding:"required"`
	Quantity    int             `json:"quantity"`
	LotNumber   string          `json:"lot_number"`
	Notes       string          `json:"notes"`
}

func (input *NewStockItem) validate() error {
	if !input.Kg.IsPositive() {
		return utils.NewValidationError("kg must be positive")
	}
	if input.Quantity < 0 {
		return utils.NewValidationError("quantity must not be negative")
	}
	if input.Width.IsNegative() || input.Micron.IsNegative() {
		return utils.NewValidationError("width and micron must not be negative")
	}
	return nil
}

// CreateStockItem covers both plain warehouse additions and leftover cuts.
func CreateStockItem(ctx context.Context, input *NewStockItem) (*StockItem, error) {
	db := config.GetDB()
	return CreateStockItemTx(db.WithContext(ctx), input)
}

// CreateStockItemTx is the transactional variant used inside sagas, so the
// created row can be deleted again by a compensation step.
func CreateStockItemTx(tx *gorm.DB, input *NewStockItem) (*StockItem, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	stockItem := StockItem{
		Category:    input.Category,
		ProductName: input.ProductName,
		Micron:      input.Micron,
		Width:       input.Width,
		Kg:          input.Kg,
		Quantity:    input.Quantity,
		LotNumber:   input.LotNumber,
		Notes:       input.Notes,
		IsActive:    utils.NewTrue(),
	}

	if err := tx.Create(&stockItem).Error; err != nil {
		return nil, err
	}
	return &stockItem, nil
}

func GetStockItem(ctx context.Context, id int) (*StockItem, error) {
	item, err := utils.FetchModel[StockItem](ctx, id)
	if err != nil {
		return nil, utils.NewNotFoundError("stock item", id)
	}
	return item, nil
}

func ListStockItems(ctx context.Context, category string, activeOnly bool) ([]*StockItem, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Order("id DESC")
	if category != "" {
		dbCtx = dbCtx.Where("category = ?", category)
	}
	if activeOnly {
		dbCtx = dbCtx.Where("is_active = ?", true)
	}
	var items []*StockItem
	if err := dbCtx.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// StockItemSnapshot captures the values the saga needs to restore on rollback.
type StockItemSnapshot struct {
	ID       int
	Kg       decimal.Decimal
	Quantity int
}

// SnapshotStockItem reads the current {kg, quantity} pair.
func SnapshotStockItem(tx *gorm.DB, id int) (*StockItemSnapshot, error) {
	var item StockItem
	if err := tx.Select("id", "kg", "quantity").First(&item, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.NewNotFoundError("stock item", id)
		}
		return nil, err
	}
	return &StockItemSnapshot{ID: item.ID, Kg: item.Kg, Quantity: item.Quantity}, nil
}

// DecrementStockItem subtracts kg as one conditional write:
//
//	UPDATE stock_items SET kg = kg - ? WHERE id = ? AND kg >= ?
//
// Zero rows affected means a concurrent writer consumed the stock between
// the caller's snapshot and this statement. When kg reaches zero the unit
// count is zeroed too; partial bobbins don't retain a quantity once mass is
// exhausted.
func DecrementStockItem(tx *gorm.DB, id int, kg decimal.Decimal) (*StockItemSnapshot, error) {
	res := tx.Model(&StockItem{}).
		Where("id = ? AND kg >= ?", id, kg).
		UpdateColumn("kg", gorm.Expr("kg - ?", kg))
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, utils.NewConflictError("stock changed concurrently, please retry")
	}

	if err := tx.Model(&StockItem{}).
		Where("id = ? AND kg <= 0", id).
		UpdateColumn("quantity", 0).Error; err != nil {
		return nil, err
	}

	return SnapshotStockItem(tx, id)
}

// IncrementStockItem puts kg back as one unconditional atomic write:
//
//	UPDATE stock_items SET kg = kg + ? WHERE id = ?
//
// The corrective-delete workflows re-credit through this instead of a
// read-then-overwrite, so a decrement landing in between is never erased.
func IncrementStockItem(tx *gorm.DB, id int, kg decimal.Decimal) error {
	res := tx.Model(&StockItem{}).
		Where("id = ?", id).
		UpdateColumn("kg", gorm.Expr("kg + ?", kg))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.NewNotFoundError("stock item", id)
	}
	return nil
}

// DeactivateStockItemIfEmpty retires an item once its mass is exhausted.
// No-op on items that still carry kilos.
func DeactivateStockItemIfEmpty(tx *gorm.DB, id int) error {
	return tx.Model(&StockItem{}).
		Where("id = ? AND kg <= 0", id).
		UpdateColumn("is_active", false).Error
}

// ClampStockItemToZero is the legacy underflow behaviour, kept behind
// config.StrictStockUnderflow. It writes kg=0, quantity=0 regardless of the
// requested amount.
func ClampStockItemToZero(tx *gorm.DB, id int) (*StockItemSnapshot, error) {
	res := tx.Model(&StockItem{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{"kg": decimal.Zero, "quantity": 0})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, utils.NewNotFoundError("stock item", id)
	}
	return SnapshotStockItem(tx, id)
}

// RestoreStockItem puts a snapshot back; rollback only.
func RestoreStockItem(tx *gorm.DB, snapshot *StockItemSnapshot) error {
	return tx.Model(&StockItem{}).
		Where("id = ?", snapshot.ID).
		UpdateColumns(map[string]interface{}{
			"kg":       snapshot.Kg,
			"quantity": snapshot.Quantity,
		}).Error
}

// DeleteStockItemRow removes a row created earlier in the same saga;
// rollback only.
func DeleteStockItemRow(tx *gorm.DB, id int) error {
	return tx.Delete(&StockItem{}, id).Error
}
