package handlers

import (
	"net/http"

	"bitbucket.org/polifilmdata/films_backend/models"
	"bitbucket.org/polifilmdata/films_backend/utils"
	"bitbucket.org/polifilmdata/films_backend/workflow"
	"github.com/gin-gonic/gin"
)

// CreateOrderStockEntry handles POST /api/v1/order-stock-entries.
func CreateOrderStockEntry() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := utils.RequireRole(ctx, RoleWarehouse); err != nil {
			writeError(c, "handlers", "CreateOrderStockEntry", err)
			return
		}

		var input models.NewOrderStockEntry
		if err := bindJSON(c, &input); err != nil {
			writeError(c, "handlers", "CreateOrderStockEntry", err)
			return
		}

		result, err := workflow.CreateOrderStockEntry(ctx, &input)
		if err != nil {
			writeError(c, "handlers", "CreateOrderStockEntry", err)
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}

// DeleteOrderStockEntry handles DELETE /api/v1/order-stock-entries/:id.
func DeleteOrderStockEntry() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := utils.RequireRole(ctx, RoleWarehouse); err != nil {
			writeError(c, "handlers", "DeleteOrderStockEntry", err)
			return
		}

		id, err := pathId(c, "id")
		if err != nil {
			writeError(c, "handlers", "DeleteOrderStockEntry", err)
			return
		}

		warnings, err := workflow.DeleteOrderStockEntry(ctx, id)
		if err != nil {
			writeError(c, "handlers", "DeleteOrderStockEntry", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "warnings": warnings})
	}
}

// ListOrderStockEntries handles GET /api/v1/orders/:id/stock-entries.
func ListOrderStockEntries() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		orderId, err := pathId(c, "id")
		if err != nil {
			writeError(c, "handlers", "ListOrderStockEntries", err)
			return
		}

		entries, err := models.ListOrderStockEntriesByOrder(ctx, orderId)
		if err != nil {
			writeError(c, "handlers", "ListOrderStockEntries", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": entries})
	}
}
