package handlers

import (
	"net/http"

	"bitbucket.org/polifilmdata/films_backend/models"
	"bitbucket.org/polifilmdata/films_backend/utils"
	"bitbucket.org/polifilmdata/films_backend/workflow"
	"github.com/gin-gonic/gin"
)

// CreateCuttingPlan handles POST /api/v1/cutting-plans.
func CreateCuttingPlan() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := utils.RequireRole(ctx, RoleProduction); err != nil {
			writeError(c, "handlers", "CreateCuttingPlan", err)
			return
		}

		var input models.NewCuttingPlan
		if err := bindJSON(c, &input); err != nil {
			writeError(c, "handlers", "CreateCuttingPlan", err)
			return
		}

		plan, err := models.CreateCuttingPlan(ctx, &input)
		if err != nil {
			writeError(c, "handlers", "CreateCuttingPlan", err)
			return
		}

		var warnings []string
		if warning := workflow.RecordAudit(ctx, workflow.AuditActionCreate, plan.ID, "cutting_plan", nil, plan,
			"cutting plan created"); warning != "" {
			warnings = append(warnings, warning)
		}
		c.JSON(http.StatusCreated, gin.H{"plan": plan, "warnings": warnings})
	}
}

// GetCuttingPlan handles GET /api/v1/cutting-plans/:id.
func GetCuttingPlan() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		id, err := pathId(c, "id")
		if err != nil {
			writeError(c, "handlers", "GetCuttingPlan", err)
			return
		}

		plan, err := models.GetCuttingPlan(ctx, id)
		if err != nil {
			writeError(c, "handlers", "GetCuttingPlan", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"plan": plan})
	}
}

// ListCuttingPlans handles GET /api/v1/orders/:id/cutting-plans.
func ListCuttingPlans() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		orderId, err := pathId(c, "id")
		if err != nil {
			writeError(c, "handlers", "ListCuttingPlans", err)
			return
		}

		plans, err := models.ListCuttingPlansByOrder(ctx, orderId)
		if err != nil {
			writeError(c, "handlers", "ListCuttingPlans", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"plans": plans})
	}
}

// CompleteCuttingPlan handles POST /api/v1/cutting-plans/:id/complete.
func CompleteCuttingPlan() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := utils.RequireRole(ctx, RoleProduction); err != nil {
			writeError(c, "handlers", "CompleteCuttingPlan", err)
			return
		}

		id, err := pathId(c, "id")
		if err != nil {
			writeError(c, "handlers", "CompleteCuttingPlan", err)
			return
		}

		plan, err := models.CompleteCuttingPlan(ctx, id)
		if err != nil {
			writeError(c, "handlers", "CompleteCuttingPlan", err)
			return
		}

		var warnings []string
		if warning := workflow.RecordAudit(ctx, workflow.AuditActionUpdate, plan.ID, "cutting_plan", nil, plan,
			"cutting plan completed"); warning != "" {
			warnings = append(warnings, warning)
		}
		c.JSON(http.StatusOK, gin.H{"plan": plan, "warnings": warnings})
	}
}

// CancelCuttingPlan handles POST /api/v1/cutting-plans/:id/cancel.
// Cancelling stops future entries; already recorded cuts stay on the
// ledger and keep counting where they count.
func CancelCuttingPlan() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := utils.RequireRole(ctx, RoleProduction); err != nil {
			writeError(c, "handlers", "CancelCuttingPlan", err)
			return
		}

		id, err := pathId(c, "id")
		if err != nil {
			writeError(c, "handlers", "CancelCuttingPlan", err)
			return
		}

		plan, err := models.CancelCuttingPlan(ctx, id)
		if err != nil {
			writeError(c, "handlers", "CancelCuttingPlan", err)
			return
		}

		var warnings []string
		if warning := workflow.RecordAudit(ctx, workflow.AuditActionUpdate, plan.ID, "cutting_plan", nil, plan,
			"cutting plan cancelled"); warning != "" {
			warnings = append(warnings, warning)
		}
		c.JSON(http.StatusOK, gin.H{"plan": plan, "warnings": warnings})
	}
}
