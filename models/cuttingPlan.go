package models

import (
	"context"
	"time"

	"bitbucket.org/polifilmdata/films_backend/config"
	"bitbucket.org/polifilmdata/films_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CuttingPlan is a planned cut of a source stock item for one order.
// planned -> in_progress is driven only by the first recorded entry;
// completed is an explicit operator action.
type CuttingPlan struct {
	ID                int               `gorm:"primary_key" json:"id"`
	OrderId           int               `gorm:"index;not null" json:"order_id"`
	SourceStockItemId *int              `gorm:"index" json:"source_stock_item_id"`
	TargetWidth       decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"target_width"`
	TargetKg          decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"target_kg"`
	TargetQuantity    int               `gorm:"default:0" json:"target_quantity"`
	OperatorId        int               `gorm:"index" json:"operator_id"`
	Status            CuttingPlanStatus `gorm:"type:enum('planned','in_progress','completed','cancelled');default:planned" json:"status"`
	Notes             string            `gorm:"type:text" json:"notes"`
	CreatedAt         time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCuttingPlan struct {
	OrderId           int             `json:"order_id" binding:"required"`
	SourceStockItemId *int            `json:"source_stock_item_id"`
	TargetWidth       decimal.Decimal `json:"target_width" binding:"required"`
	TargetKg          decimal.Decimal `json:"target_kg" binding:"required"`
	TargetQuantity    int             `json:"target_quantity"`
	OperatorId        int             `json:"operator_id"`
	Notes             string          `json:"notes"`
}

func (input *NewCuttingPlan) validate(ctx context.Context) error {
	if !input.TargetKg.IsPositive() || !input.TargetWidth.IsPositive() {
		return utils.NewValidationError("target kg and width must be positive")
	}
	if input.TargetQuantity < 0 {
		return utils.NewValidationError("target quantity must not be negative")
	}
	if err := utils.ValidateResourceId[Order](ctx, input.OrderId); err != nil {
		return utils.NewNotFoundError("order", input.OrderId)
	}
	if input.SourceStockItemId != nil {
		if err := utils.ValidateResourceId[StockItem](ctx, *input.SourceStockItemId); err != nil {
			return utils.NewNotFoundError("stock item", *input.SourceStockItemId)
		}
	}
	return nil
}

func CreateCuttingPlan(ctx context.Context, input *NewCuttingPlan) (*CuttingPlan, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	plan := CuttingPlan{
		OrderId:           input.OrderId,
		SourceStockItemId: input.SourceStockItemId,
		TargetWidth:       input.TargetWidth,
		TargetKg:          input.TargetKg,
		TargetQuantity:    input.TargetQuantity,
		OperatorId:        input.OperatorId,
		Status:            CuttingPlanStatusPlanned,
		Notes:             input.Notes,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func GetCuttingPlan(ctx context.Context, id int) (*CuttingPlan, error) {
	plan, err := utils.FetchModel[CuttingPlan](ctx, id)
	if err != nil {
		return nil, utils.NewNotFoundError("cutting plan", id)
	}
	return plan, nil
}

func ListCuttingPlansByOrder(ctx context.Context, orderId int) ([]*CuttingPlan, error) {
	db := config.GetDB()
	var plans []*CuttingPlan
	err := db.WithContext(ctx).Where("order_id = ?", orderId).Order("id").Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

// MarkCuttingPlanInProgress advances planned -> in_progress. The update is
// conditional and quietly ignored when the status already moved on; the
// first entry wins and later entries change nothing.
func MarkCuttingPlanInProgress(tx *gorm.DB, id int) error {
	return tx.Model(&CuttingPlan{}).
		Where("id = ? AND status = ?", id, CuttingPlanStatusPlanned).
		Update("status", CuttingPlanStatusInProgress).Error
}

// CompleteCuttingPlan is the explicit operator action closing a plan.
func CompleteCuttingPlan(ctx context.Context, id int) (*CuttingPlan, error) {
	return changeCuttingPlanStatus(ctx, id, CuttingPlanStatusCompleted,
		[]CuttingPlanStatus{CuttingPlanStatusInProgress})
}

// CancelCuttingPlan is reachable from planned and in_progress.
func CancelCuttingPlan(ctx context.Context, id int) (*CuttingPlan, error) {
	return changeCuttingPlanStatus(ctx, id, CuttingPlanStatusCancelled,
		[]CuttingPlanStatus{CuttingPlanStatusPlanned, CuttingPlanStatusInProgress})
}

func changeCuttingPlanStatus(ctx context.Context, id int, to CuttingPlanStatus, from []CuttingPlanStatus) (*CuttingPlan, error) {
	plan, err := GetCuttingPlan(ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	res := db.WithContext(ctx).Model(&CuttingPlan{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, utils.NewConflictError("cutting plan is " + string(plan.Status) + ", cannot move to " + string(to))
	}

	plan.Status = to
	return plan, nil
}
