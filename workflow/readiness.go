package workflow

import (
	"context"

	"bitbucket.org/polifilmdata/films_backend/config"
	"bitbucket.org/polifilmdata/films_backend/models"
	"bitbucket.org/polifilmdata/films_backend/utils"
	"github.com/shopspring/decimal"
)

// ReadyThresholdPercent is the sole readiness test used everywhere in the
// system: stock_ready_kg + production_ready_kg against Order.Quantity.
const ReadyThresholdPercent = 95

var hundred = decimal.NewFromInt(100)

// ReadinessResult is what a recomputation persisted for one side.
type ReadinessResult struct {
	OrderId      int                `json:"order_id"`
	TotalKg      decimal.Decimal    `json:"total_kg"`
	ReadyPercent decimal.Decimal    `json:"ready_percent"`
	IsReady      bool               `json:"is_ready"`
	Status       models.OrderStatus `json:"status"`
}

// ComputeReadyPercent returns (stock + production) / quantity * 100,
// zero when quantity is not positive.
func ComputeReadyPercent(stockKg, productionKg, quantity decimal.Decimal) decimal.Decimal {
	if !quantity.IsPositive() {
		return decimal.Zero
	}
	return stockKg.Add(productionKg).Mul(hundred).Div(quantity)
}

// IsOrderReady applies the threshold; an order with no requested quantity is
// never ready.
func IsOrderReady(stockKg, productionKg, quantity decimal.Decimal) bool {
	if !quantity.IsPositive() {
		return false
	}
	return ComputeReadyPercent(stockKg, productionKg, quantity).GreaterThanOrEqual(decimal.NewFromInt(ReadyThresholdPercent))
}

// DeriveOrderStatus maps aggregate quantities to the order lifecycle.
// Pure and idempotent: terminal statuses never change, a ready order stays
// ready, an order that regressed below the threshold falls back to
// in_production when its sourcing involves production, else confirmed.
func DeriveOrderStatus(current models.OrderStatus, sourceType models.OrderSourceType, isReady bool) models.OrderStatus {
	if current.IsTerminal() {
		return current
	}
	if isReady {
		return models.OrderStatusReady
	}
	if current == models.OrderStatusReady {
		if sourceType.InvolvesProduction() {
			return models.OrderStatusInProduction
		}
		return models.OrderStatusConfirmed
	}
	return current
}

// RecomputeStockReadiness resummarizes the stock side of an order from its
// live OrderStockEntry rows and persists {totalKg, status}. The sibling
// production total is read immediately prior so the percentage reflects the
// freshest known pair, and only the stock column is written.
func RecomputeStockReadiness(ctx context.Context, orderId int) (*ReadinessResult, error) {
	db := config.GetDB().WithContext(ctx)

	order, err := models.GetOrder(ctx, orderId)
	if err != nil {
		return nil, err
	}

	totalKg, err := models.SumOrderStockEntryKg(db, orderId)
	if err != nil {
		return nil, err
	}

	isReady := IsOrderReady(totalKg, order.ProductionReadyKg, order.Quantity)
	status := DeriveOrderStatus(order.Status, order.SourceType, isReady)

	if err := models.UpdateOrderReadiness(db, orderId, "stock_ready_kg", totalKg, status); err != nil {
		return nil, err
	}

	return &ReadinessResult{
		OrderId:      orderId,
		TotalKg:      totalKg,
		ReadyPercent: ComputeReadyPercent(totalKg, order.ProductionReadyKg, order.Quantity),
		IsReady:      isReady,
		Status:       status,
	}, nil
}

// RecomputeProductionReadiness resummarizes the production side: bobins in
// a ready-counting status plus the order-piece cutting entries of the
// order's plans.
func RecomputeProductionReadiness(ctx context.Context, orderId int) (*ReadinessResult, error) {
	db := config.GetDB().WithContext(ctx)

	order, err := models.GetOrder(ctx, orderId)
	if err != nil {
		return nil, err
	}

	bobinKg, err := models.SumReadyBobinKgByOrder(db, orderId)
	if err != nil {
		return nil, err
	}
	entryKg, err := models.SumOrderPieceKgByOrder(db, orderId)
	if err != nil {
		return nil, err
	}
	totalKg := bobinKg.Add(entryKg)

	isReady := IsOrderReady(order.StockReadyKg, totalKg, order.Quantity)
	status := DeriveOrderStatus(order.Status, order.SourceType, isReady)

	if err := models.UpdateOrderReadiness(db, orderId, "production_ready_kg", totalKg, status); err != nil {
		return nil, err
	}

	return &ReadinessResult{
		OrderId:      orderId,
		TotalKg:      totalKg,
		ReadyPercent: ComputeReadyPercent(order.StockReadyKg, totalKg, order.Quantity),
		IsReady:      isReady,
		Status:       status,
	}, nil
}

// OrderReadiness returns the cached readiness snapshot of an order,
// recomputed from the order row on cache miss. Mutating workflows
// invalidate the cache through models.UpdateOrderReadiness.
func OrderReadiness(ctx context.Context, orderId int) (*ReadinessResult, error) {
	order, err := utils.RetrieveRedis[models.Order](orderId)
	if err != nil || order == nil {
		order, err = models.GetOrder(ctx, orderId)
		if err != nil {
			return nil, err
		}
		// Cache population is best-effort: the order row is already in hand.
		if err := utils.StoreRedis[models.Order](order, orderId); err != nil {
			config.LogWarn(config.GetLogger(), "workflow", "OrderReadiness",
				"readiness cache population failed",
				map[string]any{"order_id": orderId, "error": err.Error()})
		}
	}

	isReady := IsOrderReady(order.StockReadyKg, order.ProductionReadyKg, order.Quantity)
	return &ReadinessResult{
		OrderId:      orderId,
		TotalKg:      order.StockReadyKg.Add(order.ProductionReadyKg),
		ReadyPercent: ComputeReadyPercent(order.StockReadyKg, order.ProductionReadyKg, order.Quantity),
		IsReady:      isReady,
		Status:       order.Status,
	}, nil
}
