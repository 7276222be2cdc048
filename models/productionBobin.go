package models

import (
	"context"
	"time"

	"bitbucket.org/polifilmdata/films_backend/config"
	"bitbucket.org/polifilmdata/films_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductionBobin is a produced roll tied to an order. Its status decides
// whether its kg counts toward the order's production readiness.
type ProductionBobin struct {
	ID            int             `gorm:"primary_key" json:"id"`
	OrderId       int             `gorm:"index;not null" json:"order_id"`
	CuttingPlanId *int            `gorm:"index" json:"cutting_plan_id"`
	BobbinLabel   string          `gorm:"size:100;index" json:"bobbin_label"`
	Width         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"width"`
	Kg            decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"kg"`
	Status        BobinStatus     `gorm:"type:enum('produced','warehouse','ready','shipped','scrapped');default:produced" json:"status"`
	Notes         string          `gorm:"size:255" json:"notes"`
	CreatedBy     int             `gorm:"index" json:"created_by"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProductionBobin struct {
	OrderId       int             `json:"order_id" binding:"required"`
	CuttingPlanId *int            `json:"cutting_plan_id"`
	BobbinLabel   string          `json:"bobbin_label" binding:"required"`
	Width         decimal.Decimal `json:"width"`
	Kg            decimal.Decimal `json:"kg" binding:"required"`
	Notes         string          `json:"notes"`
}

func (input *NewProductionBobin) validate(ctx context.Context) error {
	if !input.Kg.IsPositive() {
		return utils.NewValidationError("kg must be positive")
	}
	if err := utils.ValidateResourceId[Order](ctx, input.OrderId); err != nil {
		return utils.NewNotFoundError("order", input.OrderId)
	}
	if input.CuttingPlanId != nil {
		if err := utils.ValidateResourceId[CuttingPlan](ctx, *input.CuttingPlanId); err != nil {
			return utils.NewNotFoundError("cutting plan", *input.CuttingPlanId)
		}
	}
	return nil
}

// InsertProductionBobin validates and writes the row; the workflow layer
// owns the surrounding readiness recomputation.
func InsertProductionBobin(ctx context.Context, tx *gorm.DB, input *NewProductionBobin) (*ProductionBobin, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)
	bobin := ProductionBobin{
		OrderId:       input.OrderId,
		CuttingPlanId: input.CuttingPlanId,
		BobbinLabel:   input.BobbinLabel,
		Width:         input.Width,
		Kg:            input.Kg,
		Status:        BobinStatusProduced,
		Notes:         input.Notes,
		CreatedBy:     userId,
	}
	if err := tx.Create(&bobin).Error; err != nil {
		return nil, err
	}
	return &bobin, nil
}

func GetProductionBobin(ctx context.Context, id int) (*ProductionBobin, error) {
	bobin, err := utils.FetchModel[ProductionBobin](ctx, id)
	if err != nil {
		return nil, utils.NewNotFoundError("production bobin", id)
	}
	return bobin, nil
}

func ListProductionBobinsByOrder(ctx context.Context, orderId int) ([]*ProductionBobin, error) {
	db := config.GetDB()
	var bobins []*ProductionBobin
	err := db.WithContext(ctx).Where("order_id = ?", orderId).Order("id").Find(&bobins).Error
	if err != nil {
		return nil, err
	}
	return bobins, nil
}

// ChangeBobinStatus applies a guarded state-machine transition. Zero rows
// affected means the status moved concurrently.
func ChangeBobinStatus(tx *gorm.DB, bobin *ProductionBobin, requested BobinStatus) error {
	if !requested.IsValid() {
		return utils.NewValidationError("invalid bobin status")
	}
	if !bobin.Status.CanTransitionTo(requested) {
		return utils.NewValidationError("cannot change bobin status from " + string(bobin.Status) + " to " + string(requested))
	}

	res := tx.Model(&ProductionBobin{}).
		Where("id = ? AND status = ?", bobin.ID, bobin.Status).
		Update("status", requested)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.NewConflictError("bobin status changed concurrently, please retry")
	}

	bobin.Status = requested
	return nil
}

// UpdateProductionBobinNotes replaces the free-text notes only.
func UpdateProductionBobinNotes(tx *gorm.DB, id int, notes string) error {
	res := tx.Model(&ProductionBobin{}).Where("id = ?", id).Update("notes", notes)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.NewNotFoundError("production bobin", id)
	}
	return nil
}

// SumReadyBobinKgByOrder totals the kg of bobins whose status counts toward
// readiness.
func SumReadyBobinKgByOrder(tx *gorm.DB, orderId int) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	err := tx.Model(&ProductionBobin{}).
		Select("COALESCE(SUM(kg), 0) AS total").
		Where("order_id = ? AND status IN ?", orderId,
			[]BobinStatus{BobinStatusProduced, BobinStatusWarehouse, BobinStatusReady}).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}
