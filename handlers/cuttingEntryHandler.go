package handlers

import (
	"net/http"

	"bitbucket.org/polifilmdata/films_backend/models"
	"bitbucket.org/polifilmdata/films_backend/utils"
	"bitbucket.org/polifilmdata/films_backend/workflow"
	"github.com/gin-gonic/gin"
)

// CreateCuttingEntry handles POST /api/v1/cutting-entries.
func CreateCuttingEntry() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := utils.RequireRole(ctx, RoleProduction); err != nil {
			writeError(c, "handlers", "CreateCuttingEntry", err)
			return
		}

		var input models.NewCuttingEntry
		if err := bindJSON(c, &input); err != nil {
			writeError(c, "handlers", "CreateCuttingEntry", err)
			return
		}

		result, err := workflow.RecordCuttingEntry(ctx, &input)
		if err != nil {
			writeError(c, "handlers", "CreateCuttingEntry", err)
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}

// DeleteCuttingEntry handles DELETE /api/v1/cutting-entries/:id.
func DeleteCuttingEntry() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := utils.RequireRole(ctx, RoleProduction); err != nil {
			writeError(c, "handlers", "DeleteCuttingEntry", err)
			return
		}

		id, err := pathId(c, "id")
		if err != nil {
			writeError(c, "handlers", "DeleteCuttingEntry", err)
			return
		}

		warnings, err := workflow.DeleteCuttingEntry(ctx, id)
		if err != nil {
			writeError(c, "handlers", "DeleteCuttingEntry", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "warnings": warnings})
	}
}

// ListCuttingEntries handles GET /api/v1/cutting-plans/:id/entries.
func ListCuttingEntries() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		planId, err := pathId(c, "id")
		if err != nil {
			writeError(c, "handlers", "ListCuttingEntries", err)
			return
		}

		entries, err := models.ListCuttingEntriesByPlan(ctx, planId)
		if err != nil {
			writeError(c, "handlers", "ListCuttingEntries", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"entries": entries})
	}
}
