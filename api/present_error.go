package api

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"

	"github.com/cmis/automation-backend/models"
	"github.com/cmis/automation-backend/utils"
)

// presentError renders a domain error as an HTTP response and reports whether
// it did so. Handlers bail out when it returns true.
func presentError(ctx context.Context, c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	switch {
	case errors.Is(err, models.BadParameterError):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, models.UnAuthorizedError):
		c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
	case errors.Is(err, models.ForbiddenError):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	case errors.Is(err, models.NotFoundError):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, models.ConflictError):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	case errors.Is(err, models.UnprocessableEntityError):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
	default:
		utils.LoggerFromContext(ctx).ErrorContext(ctx, "Unexpected error", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
	return true
}
