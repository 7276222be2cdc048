package models

import (
	"context"
	"time"

	"bitbucket.org/polifilmdata/films_backend/config"
	"bitbucket.org/polifilmdata/films_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is the aggregate root. StockReadyKg and ProductionReadyKg are
// derived caches: always recomputable as the sums over the live detail
// rows, never edited by users directly.
type Order struct {
	ID                int             `gorm:"primary_key" json:"id"`
	CustomerName      string          `gorm:"size:255;not null" json:"customer_name"`
	ProductName       string          `gorm:"size:255;not null" json:"product_name"`
	Micron            decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"micron"`
	Width             decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"width"`
	Quantity          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	StockReadyKg      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"stock_ready_kg"`
	ProductionReadyKg decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"production_ready_kg"`
	Status            OrderStatus     `gorm:"type:enum('draft','confirmed','in_production','ready','shipped','delivered','closed','cancelled');default:draft" json:"status"`
	SourceType        OrderSourceType `gorm:"type:enum('stock','production','both');default:both" json:"source_type"`
	DueDate           *time.Time      `json:"due_date"`
	Notes             string          `gorm:"type:text" json:"notes"`
	CreatedBy         int             `gorm:"index" json:"created_by"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewOrder struct {
	CustomerName string          `json:"customer_name" binding:"required"`
	ProductName  string          `json:"product_name" binding:"required"`
	Micron       decimal.Decimal `json:"micron"`
	Width        decimal.Decimal `json:"width"`
	Quantity     decimal.Decimal `json:"quantity" binding:"required"`
	SourceType   OrderSourceType `json:"source_type"`
	DueDate      *time.Time      `json:"due_date"`
	Notes        string          `json:"notes"`
}

func (input *NewOrder) validate() error {
	if !input.Quantity.IsPositive() {
		return utils.NewValidationError("quantity must be positive")
	}
	if input.SourceType != "" && !input.SourceType.IsValid() {
		return utils.NewValidationError("invalid source type")
	}
	return nil
}

func CreateOrder(ctx context.Context, input *NewOrder) (*Order, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	sourceType := input.SourceType
	if sourceType == "" {
		sourceType = OrderSourceTypeBoth
	}
	userId, _ := utils.GetUserIdFromContext(ctx)

	order := Order{
		CustomerName: input.CustomerName,
		ProductName:  input.ProductName,
		Micron:       input.Micron,
		Width:        input.Width,
		Quantity:     input.Quantity,
		Status:       OrderStatusDraft,
		SourceType:   sourceType,
		DueDate:      input.DueDate,
		Notes:        input.Notes,
		CreatedBy:    userId,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func GetOrder(ctx context.Context, id int) (*Order, error) {
	order, err := utils.FetchModel[Order](ctx, id)
	if err != nil {
		return nil, utils.NewNotFoundError("order", id)
	}
	return order, nil
}

func ListOrders(ctx context.Context, status OrderStatus, limit int) ([]*Order, error) {
	db := config.GetDB()
	if limit <= 0 {
		limit = 50
	}
	dbCtx := db.WithContext(ctx).Order("id DESC").Limit(limit)
	if status != "" {
		dbCtx = dbCtx.Where("status = ?", status)
	}
	var orders []*Order
	if err := dbCtx.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// orderStatusTransitions are the operator-driven moves. ready/in_production
// are additionally driven by the readiness engine and bypass this table.
var orderStatusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusDraft:        {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:    {OrderStatusInProduction, OrderStatusCancelled},
	OrderStatusInProduction: {OrderStatusCancelled},
	OrderStatusReady:        {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:      {OrderStatusDelivered},
	OrderStatusDelivered:    {OrderStatusClosed},
}

// ChangeOrderStatus applies an operator-requested transition as a guarded
// conditional update so two concurrent operators cannot both move the same
// order.
func ChangeOrderStatus(ctx context.Context, id int, requested OrderStatus) (*Order, error) {
	if !requested.IsValid() {
		return nil, utils.NewValidationError("invalid order status")
	}

	order, err := GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed := false
	for _, next := range orderStatusTransitions[order.Status] {
		if next == requested {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, utils.NewValidationError("cannot change order status from " + string(order.Status) + " to " + string(requested))
	}

	db := config.GetDB()
	res := db.WithContext(ctx).Model(&Order{}).
		Where("id = ? AND status = ?", id, order.Status).
		Update("status", requested)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, utils.NewConflictError("order status changed concurrently, please retry")
	}

	order.Status = requested
	_ = utils.CleanRedis[Order](id)
	return order, nil
}

// UpdateOrderReadiness persists one recomputed side plus the derived status
// in a single update. Only the recomputed side's column is written, so a
// concurrently updated sibling total is never clobbered.
func UpdateOrderReadiness(tx *gorm.DB, id int, column string, totalKg decimal.Decimal, status OrderStatus) error {
	updates := map[string]interface{}{
		column:   totalKg,
		"status": status,
	}
	if err := tx.Model(&Order{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return err
	}
	_ = utils.CleanRedis[Order](id)
	return nil
}
