package handlers

import (
	"net/http"
	"os"
	"strings"

	"bitbucket.org/polifilmdata/films_backend/utils"
	"github.com/gin-gonic/gin"
)

type tokenRequest struct {
	UserId   int    `json:"user_id" binding:"required"`
	UserName string `json:"user_name" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=admin production warehouse"`
}

// MintToken handles POST /api/v1/auth/token. Identity lives in the company
// SSO; this endpoint only exists for local development and staging and is
// disabled in production.
func MintToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}

		var req tokenRequest
		if err := bindJSON(c, &req); err != nil {
			writeError(c, "handlers", "MintToken", err)
			return
		}

		token, err := utils.JwtGenerate(req.UserId, req.UserName, req.Role)
		if err != nil {
			writeError(c, "handlers", "MintToken", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}
