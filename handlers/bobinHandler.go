package handlers

import (
	"net/http"

	"bitbucket.org/polifilmdata/films_backend/config"
	"bitbucket.org/polifilmdata/films_backend/models"
	"bitbucket.org/polifilmdata/films_backend/utils"
	"bitbucket.org/polifilmdata/films_backend/workflow"
	"github.com/gin-gonic/gin"
)

type patchBobinRequest struct {
	Status models.BobinStatus `json:"status"`
	Notes  *string            `json:"notes"`
}

// CreateProductionBobin handles POST /api/v1/production-bobins.
func CreateProductionBobin() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := utils.RequireRole(ctx, RoleProduction); err != nil {
			writeError(c, "handlers", "CreateProductionBobin", err)
			return
		}

		var input models.NewProductionBobin
		if err := bindJSON(c, &input); err != nil {
			writeError(c, "handlers", "CreateProductionBobin", err)
			return
		}

		result, err := workflow.RegisterProductionBobin(ctx, &input)
		if err != nil {
			writeError(c, "handlers", "CreateProductionBobin", err)
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}

// PatchProductionBobin handles PATCH /api/v1/production-bobins/:id.
// Shipping a bobin is a warehouse action, everything else is production's.
func PatchProductionBobin() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		id, err := pathId(c, "id")
		if err != nil {
			writeError(c, "handlers", "PatchProductionBobin", err)
			return
		}

		var req patchBobinRequest
		if err := bindJSON(c, &req); err != nil {
			writeError(c, "handlers", "PatchProductionBobin", err)
			return
		}
		if req.Status == "" && req.Notes == nil {
			writeError(c, "handlers", "PatchProductionBobin", utils.NewValidationError("nothing to update"))
			return
		}

		allowed := []string{RoleProduction, RoleWarehouse}
		if req.Status == models.BobinStatusShipped {
			allowed = []string{RoleWarehouse}
		}
		if err := utils.RequireRole(ctx, allowed...); err != nil {
			writeError(c, "handlers", "PatchProductionBobin", err)
			return
		}

		if req.Notes != nil {
			db := config.GetDB().WithContext(ctx)
			if err := models.UpdateProductionBobinNotes(db, id, *req.Notes); err != nil {
				writeError(c, "handlers", "PatchProductionBobin", err)
				return
			}
		}

		if req.Status == "" {
			bobin, err := models.GetProductionBobin(ctx, id)
			if err != nil {
				writeError(c, "handlers", "PatchProductionBobin", err)
				return
			}
			c.JSON(http.StatusOK, workflow.BobinResult{Bobin: bobin})
			return
		}

		result, err := workflow.ChangeBobinStatus(ctx, id, req.Status)
		if err != nil {
			writeError(c, "handlers", "PatchProductionBobin", err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// ListProductionBobins handles GET /api/v1/orders/:id/bobins.
func ListProductionBobins() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		orderId, err := pathId(c, "id")
		if err != nil {
			writeError(c, "handlers", "ListProductionBobins", err)
			return
		}

		bobins, err := models.ListProductionBobinsByOrder(ctx, orderId)
		if err != nil {
			writeError(c, "handlers", "ListProductionBobins", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"bobins": bobins})
	}
}
