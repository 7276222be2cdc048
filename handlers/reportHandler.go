package handlers

import (
	"net/http"

	"bitbucket.org/polifilmdata/films_backend/reports"
	"github.com/gin-gonic/gin"
)

// InventorySummaryReport handles GET /api/v1/reports/inventory-summary.
// Defaults to JSON; ?format=xlsx streams a workbook.
func InventorySummaryReport() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		summary, err := reports.GetInventorySummary(ctx)
		if err != nil {
			writeError(c, "handlers", "InventorySummaryReport", err)
			return
		}

		if c.Query("format") == "xlsx" {
			c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			c.Header("Content-Disposition", "attachment; filename=inventory-summary.xlsx")
			if err := reports.WriteInventorySummaryXlsx(summary, c.Writer); err != nil {
				writeError(c, "handlers", "InventorySummaryReport", err)
			}
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}
