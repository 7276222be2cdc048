package handlers

import (
	"net/http"
	"strconv"

	"bitbucket.org/polifilmdata/films_backend/config"
	"bitbucket.org/polifilmdata/films_backend/models"
	"bitbucket.org/polifilmdata/films_backend/utils"
	"bitbucket.org/polifilmdata/films_backend/workflow"
	"github.com/gin-gonic/gin"
)

// CreateStockItem handles POST /api/v1/stock-items: a warehouse addition,
// recorded with its opening ledger line so the movement history accounts
// for the full balance.
func CreateStockItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := utils.RequireRole(ctx, RoleWarehouse); err != nil {
			writeError(c, "handlers", "CreateStockItem", err)
			return
		}

		var input models.NewStockItem
		if err := bindJSON(c, &input); err != nil {
			writeError(c, "handlers", "CreateStockItem", err)
			return
		}

		item, err := models.CreateStockItem(ctx, &input)
		if err != nil {
			writeError(c, "handlers", "CreateStockItem", err)
			return
		}

		userId, _ := utils.GetUserIdFromContext(ctx)
		db := config.GetDB().WithContext(ctx)
		var warnings []string
		if _, err := models.RecordStockMovement(db, &models.NewStockMovement{
			StockItemId:   item.ID,
			Direction:     models.MovementDirectionIn,
			Kg:            item.Kg,
			Quantity:      item.Quantity,
			Reason:        models.MovementReasonWarehouseEntry,
			ReferenceType: models.MovementReferenceAdjustment,
			ReferenceID:   item.ID,
			CreatedBy:     userId,
		}); err != nil {
			config.LogError(config.GetLogger(), "handlers", "CreateStockItem",
				"opening movement write failed", map[string]any{"stock_item_id": item.ID}, err)
			warnings = append(warnings, "opening ledger line could not be recorded")
		}

		if warning := workflow.RecordAudit(ctx, workflow.AuditActionCreate, item.ID, "stock_item", nil, item,
			"stock item added to warehouse"); warning != "" {
			warnings = append(warnings, warning)
		}
		c.JSON(http.StatusCreated, gin.H{"stock_item": item, "warnings": warnings})
	}
}

// GetStockItem handles GET /api/v1/stock-items/:id.
func GetStockItem() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		id, err := pathId(c, "id")
		if err != nil {
			writeError(c, "handlers", "GetStockItem", err)
			return
		}

		item, err := models.GetStockItem(ctx, id)
		if err != nil {
			writeError(c, "handlers", "GetStockItem", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"stock_item": item})
	}
}

// ListStockItems handles GET /api/v1/stock-items?category=&active=.
func ListStockItems() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		activeOnly := true
		if v := c.Query("active"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				writeError(c, "handlers", "ListStockItems", utils.NewValidationError("invalid active filter"))
				return
			}
			activeOnly = b
		}

		items, err := models.ListStockItems(ctx, c.Query("category"), activeOnly)
		if err != nil {
			writeError(c, "handlers", "ListStockItems", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"stock_items": items})
	}
}

// ListStockMovements handles GET /api/v1/stock-items/:id/movements?limit=.
func ListStockMovements() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		id, err := pathId(c, "id")
		if err != nil {
			writeError(c, "handlers", "ListStockMovements", err)
			return
		}
		limit := 100
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				writeError(c, "handlers", "ListStockMovements", utils.NewValidationError("invalid limit"))
				return
			}
			limit = n
		}

		movements, err := models.ListStockMovements(ctx, id, limit)
		if err != nil {
			writeError(c, "handlers", "ListStockMovements", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"movements": movements})
	}
}
