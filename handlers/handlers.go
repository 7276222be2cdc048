package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"bitbucket.org/polifilmdata/films_backend/config"
	"bitbucket.org/polifilmdata/films_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Role names as carried in the JWT.
const (
	RoleAdmin      = "admin"
	RoleProduction = "production"
	RoleWarehouse  = "warehouse"
)

// writeError translates the engine's error types to their HTTP shape.
// Validation errors carry a per-field details map when one exists.
func writeError(c *gin.Context, moduleName, funcName string, err error) {
	status := utils.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		config.LogError(config.GetLogger(), moduleName, funcName, "request failed",
			map[string]any{"path": c.Request.URL.Path}, err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}

	var validationErr *utils.ValidationError
	if errors.As(err, &validationErr) && len(validationErr.Fields) > 0 {
		c.JSON(status, gin.H{"error": validationErr.Message, "details": validationErr.Fields})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// bindJSON wraps gin binding so validator tag failures come back as the
// engine's ValidationError with a field map.
func bindJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return &utils.ValidationError{
				Message: "invalid request body",
				Fields:  utils.ProcessValidationErrors(err),
			}
		}
		return utils.NewValidationError("invalid request body: " + err.Error())
	}
	return nil
}

func pathId(c *gin.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, utils.NewValidationError("invalid " + name)
	}
	return id, nil
}
