package handlers

import (
	"net/http"
	"strconv"

	"bitbucket.org/polifilmdata/films_backend/models"
	"bitbucket.org/polifilmdata/films_backend/utils"
	"bitbucket.org/polifilmdata/films_backend/workflow"
	"github.com/gin-gonic/gin"
)

type changeOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// CreateOrder handles POST /api/v1/orders.
func CreateOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := utils.RequireRole(ctx, RoleProduction, RoleWarehouse); err != nil {
			writeError(c, "handlers", "CreateOrder", err)
			return
		}

		var input models.NewOrder
		if err := bindJSON(c, &input); err != nil {
			writeError(c, "handlers", "CreateOrder", err)
			return
		}

		order, err := models.CreateOrder(ctx, &input)
		if err != nil {
			writeError(c, "handlers", "CreateOrder", err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"order": order})
	}
}

// GetOrder handles GET /api/v1/orders/:id.
func GetOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		id, err := pathId(c, "id")
		if err != nil {
			writeError(c, "handlers", "GetOrder", err)
			return
		}

		order, err := models.GetOrder(ctx, id)
		if err != nil {
			writeError(c, "handlers", "GetOrder", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

// ListOrders handles GET /api/v1/orders?status=&limit=.
func ListOrders() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		status := models.OrderStatus(c.Query("status"))
		if status != "" && !status.IsValid() {
			writeError(c, "handlers", "ListOrders", utils.NewValidationError("invalid status filter"))
			return
		}
		limit := 100
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				writeError(c, "handlers", "ListOrders", utils.NewValidationError("invalid limit"))
				return
			}
			limit = n
		}

		orders, err := models.ListOrders(ctx, status, limit)
		if err != nil {
			writeError(c, "handlers", "ListOrders", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

// ChangeOrderStatus handles PUT /api/v1/orders/:id/status. Lifecycle moves
// go through the guarded transition table; readiness-derived moves happen
// only inside the recompute workflows.
func ChangeOrderStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := utils.RequireRole(ctx, RoleProduction, RoleWarehouse); err != nil {
			writeError(c, "handlers", "ChangeOrderStatus", err)
			return
		}

		id, err := pathId(c, "id")
		if err != nil {
			writeError(c, "handlers", "ChangeOrderStatus", err)
			return
		}

		var req changeOrderStatusRequest
		if err := bindJSON(c, &req); err != nil {
			writeError(c, "handlers", "ChangeOrderStatus", err)
			return
		}
		if !req.Status.IsValid() {
			writeError(c, "handlers", "ChangeOrderStatus", utils.NewValidationError("invalid order status"))
			return
		}

		before, err := models.GetOrder(ctx, id)
		if err != nil {
			writeError(c, "handlers", "ChangeOrderStatus", err)
			return
		}

		order, err := models.ChangeOrderStatus(ctx, id, req.Status)
		if err != nil {
			writeError(c, "handlers", "ChangeOrderStatus", err)
			return
		}

		var warnings []string
		if warning := workflow.RecordAudit(ctx, workflow.AuditActionUpdate, order.ID, "order", before, order,
			"order status changed from "+string(before.Status)+" to "+string(order.Status)); warning != "" {
			warnings = append(warnings, warning)
		}
		c.JSON(http.StatusOK, gin.H{"order": order, "warnings": warnings})
	}
}

// GetOrderReadiness handles GET /api/v1/orders/:id/readiness.
func GetOrderReadiness() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		id, err := pathId(c, "id")
		if err != nil {
			writeError(c, "handlers", "GetOrderReadiness", err)
			return
		}

		readiness, err := workflow.OrderReadiness(ctx, id)
		if err != nil {
			writeError(c, "handlers", "GetOrderReadiness", err)
			return
		}
		c.JSON(http.StatusOK, readiness)
	}
}
