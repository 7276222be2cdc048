package models

import (
	"context"
	"time"

	"bitbucket.org/polifilmdata/films_backend/config"
	"bitbucket.org/polifilmdata/films_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CuttingEntry is one realized cut under a plan. Rows are immutable once
// created; the only later mutation is a corrective delete, which runs as a
// saga of its own so the ledger and readiness caches stay consistent.
type CuttingEntry struct {
	ID            int             `gorm:"primary_key" json:"id"`
	CuttingPlanId int             `gorm:"index;not null" json:"cutting_plan_id"`
	BobbinLabel   string          `gorm:"size:100" json:"bobbin_label"`
	Width         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"width"`
	Kg            decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"kg"`
	Quantity      int             `gorm:"default:1" json:"quantity"`
	IsOrderPiece  *bool           `gorm:"not null;default:true" json:"is_order_piece"`
	Notes         string          `gorm:"size:255" json:"notes"`
	CreatedBy     int             `gorm:"index" json:"created_by"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewCuttingEntry struct {
	CuttingPlanId int             `json:"cutting_plan_id" binding:"required"`
	BobbinLabel   string          `json:"bobbin_label" binding:"required"`
	CutWidth      decimal.Decimal `json:"cut_width" binding:"required"`
	CutKg         decimal.Decimal `json:"cut_kg" binding:"required"`
	CutQuantity   int             `json:"cut_quantity"`
	IsOrderPiece  *bool           `json:"is_order_piece"`
	Notes         string          `json:"notes"`
}

func GetCuttingEntry(ctx context.Context, id int) (*CuttingEntry, error) {
	entry, err := utils.FetchModel[CuttingEntry](ctx, id)
	if err != nil {
		return nil, utils.NewNotFoundError("cutting entry", id)
	}
	return entry, nil
}

func ListCuttingEntriesByPlan(ctx context.Context, planId int) ([]*CuttingEntry, error) {
	db := config.GetDB()
	var entries []*CuttingEntry
	err := db.WithContext(ctx).Where("cutting_plan_id = ?", planId).Order("id").Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// InsertCuttingEntry writes the detail row; saga step.
func InsertCuttingEntry(tx *gorm.DB, entry *CuttingEntry) error {
	return tx.Create(entry).Error
}

// DeleteCuttingEntryRow removes the detail row; used both as compensation
// and by the corrective-delete saga.
func DeleteCuttingEntryRow(tx *gorm.DB, id int) error {
	return tx.Delete(&CuttingEntry{}, id).Error
}

// SumOrderPieceKgByOrder totals the kg of order-piece cutting entries across
// all plans of one order.
func SumOrderPieceKgByOrder(tx *gorm.DB, orderId int) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := tx.Model(&CuttingEntry{}).
		Select("COALESCE(SUM(cutting_entries.kg), 0) AS total").
		Joins("JOIN cutting_plans ON cutting_plans.id = cutting_entries.cutting_plan_id").
		Where("cutting_plans.order_id = ? AND cutting_entries.is_order_piece = ?", orderId, true).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}
