package reports

import (
	"context"

	"bitbucket.org/polifilmdata/films_backend/config"
	"github.com/shopspring/decimal"
)

type InventoryCategoryRow struct {
	Category  string          `json:"Category"`
	ItemCount int             `json:"ItemCount"`
	TotalKg   decimal.Decimal `json:"TotalKg"`
	TotalRoll int             `json:"TotalRoll"`
}

type OrderReadinessRow struct {
	OrderID           int             `json:"OrderId"`
	CustomerName      string          `json:"CustomerName"`
	ProductName       string          `json:"ProductName"`
	Status            string          `json:"Status"`
	Quantity          decimal.Decimal `json:"Quantity"`
	StockReadyKg      decimal.Decimal `json:"StockReadyKg"`
	ProductionReadyKg decimal.Decimal `json:"ProductionReadyKg"`
	ReadyPercent      decimal.Decimal `json:"ReadyPercent"`
}

type InventorySummary struct {
	Categories []*InventoryCategoryRow `json:"Categories"`
	Orders     []*OrderReadinessRow    `json:"Orders"`
}

// GetInventorySummary aggregates the live stock per category plus the
// readiness position of every open order.
func GetInventorySummary(ctx context.Context) (*InventorySummary, error) {
	db := config.GetDB()

	categorySQL := `
SELECT
    category,
    COUNT(id) AS item_count,
    SUM(kg) AS total_kg,
    SUM(quantity) AS total_roll
FROM
    stock_items
WHERE
    is_active = 1
GROUP BY category
ORDER BY category;
`
	var categories []*InventoryCategoryRow
	if err := db.WithContext(ctx).Raw(categorySQL).Scan(&categories).Error; err != nil {
		return nil, err
	}

	orderSQL := `
SELECT
    id AS order_id,
    customer_name,
    product_name,
    status,
    quantity,
    stock_ready_kg,
    production_ready_kg,
    CASE
        WHEN quantity > 0 THEN (stock_ready_kg + production_ready_kg) * 100 / quantity
        ELSE 0
    END AS ready_percent
FROM
    orders
WHERE
    status NOT IN ('cancelled', 'closed', 'shipped', 'delivered')
ORDER BY id;
`
	var orders []*OrderReadinessRow
	if err := db.WithContext(ctx).Raw(orderSQL).Scan(&orders).Error; err != nil {
		return nil, err
	}

	return &InventorySummary{Categories: categories, Orders: orders}, nil
}
