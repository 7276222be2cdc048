package models

import (
	"context"
	"time"

	"bitbucket.org/polifilmdata/films_backend/config"
	"bitbucket.org/polifilmdata/films_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockMovement is one immutable ledger line explaining a StockItem quantity
// change. For every stock-affecting detail record the signed sum of its
// movements must equal the net effect recorded on the stock item; the
// ledger-verify tool checks that invariant offline.
type StockMovement struct {
	ID            int                   `gorm:"primary_key" json:"id"`
	StockItemId   int                   `gorm:"index;not null" json:"stock_item_id"`
	Direction     MovementDirection     `gorm:"type:enum('in','out');not null" json:"direction"`
	Kg            decimal.Decimal       `gorm:"type:decimal(20,4);default:0" json:"kg"`
	Quantity      int                   `gorm:"default:0" json:"quantity"`
	Reason        MovementReason        `gorm:"size:50;index;not null" json:"reason"`
	ReferenceType MovementReferenceType `gorm:"type:enum('CE','OSE','ADJ')" json:"reference_type"`
	ReferenceID   int                   `gorm:"index" json:"reference_id"`
	Notes         string                `gorm:"size:255" json:"notes"`
	CreatedBy     int                   `gorm:"index" json:"created_by"`
	CreatedAt     time.Time             `gorm:"autoCreateTime" json:"created_at"`
}

type NewStockMovement struct {
	StockItemId   int
	Direction     MovementDirection
	Kg            decimal.Decimal
	Quantity      int
	Reason        MovementReason
	ReferenceType MovementReferenceType
	ReferenceID   int
	Notes         string
	CreatedBy     int
}

// RecordStockMovement appends one ledger line inside the caller's saga.
func RecordStockMovement(tx *gorm.DB, input *NewStockMovement) (*StockMovement, error) {
	movement := StockMovement{
		StockItemId:   input.StockItemId,
		Direction:     input.Direction,
		Kg:            input.Kg,
		Quantity:      input.Quantity,
		Reason:        input.Reason,
		ReferenceType: input.ReferenceType,
		ReferenceID:   input.ReferenceID,
		Notes:         input.Notes,
		CreatedBy:     input.CreatedBy,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return nil, err
	}
	return &movement, nil
}

// DeleteStockMovementRow removes a movement written earlier in the same
// saga; rollback only. Outside rollback the ledger is append-only.
func DeleteStockMovementRow(tx *gorm.DB, id int) error {
	return tx.Delete(&StockMovement{}, id).Error
}

// FindLeftoverMovement locates the in movement that credited the leftover
// stock item created for a cutting entry. The movement's StockItemId is the
// only durable link from the entry back to its leftover.
func FindLeftoverMovement(tx *gorm.DB, cuttingEntryId int) (*StockMovement, error) {
	var movement StockMovement
	err := tx.Where("reason = ? AND reference_type = ? AND reference_id = ?",
		MovementReasonCuttingLeftover, MovementReferenceCuttingEntry, cuttingEntryId).
		First(&movement).Error
	if err == gorm.ErrRecordNotFound {
		return nil, utils.NewNotFoundError("leftover movement for cutting entry", cuttingEntryId)
	}
	if err != nil {
		return nil, err
	}
	return &movement, nil
}

func ListStockMovements(ctx context.Context, stockItemId int, limit int) ([]*StockMovement, error) {
	db := config.GetDB()
	if limit <= 0 {
		limit = 50
	}
	var movements []*StockMovement
	err := db.WithContext(ctx).
		Where("stock_item_id = ?", stockItemId).
		Order("id DESC").
		Limit(limit).
		Find(&movements).Error
	if err != nil {
		return nil, err
	}
	return movements, nil
}

// SumNetMovementKg returns the signed kg total of all movements for a stock
// item (in positive, out negative).
func SumNetMovementKg(ctx context.Context, stockItemId int) (decimal.Decimal, error) {
	db := config.GetDB()
	var result struct {
		Net decimal.Decimal
	}
	err := db.WithContext(ctx).Model(&StockMovement{}).
		Select("COALESCE(SUM(CASE WHEN direction = 'in' THEN kg ELSE -kg END), 0) AS net").
		Where("stock_item_id = ?", stockItemId).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Net, nil
}
