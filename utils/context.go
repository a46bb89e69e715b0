package utils

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cmis/automation-backend/models"
)

type ContextKey int

const (
	ContextKeyLogger ContextKey = iota
	ContextKeyOrganizationId
)

func StoreLoggerInContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ContextKeyLogger, logger)
}

// LoggerFromContext returns the request/job scoped logger, or a default one so
// that callers never have to nil-check.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger, found := ctx.Value(ContextKeyLogger).(*slog.Logger)
	if !found {
		return slog.Default()
	}
	return logger
}

func StoreLoggerInContextMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctxWithLogger := StoreLoggerInContext(c.Request.Context(), logger)
		c.Request = c.Request.WithContext(ctxWithLogger)
	}
}

func StoreOrganizationIdInContext(ctx context.Context, orgId uuid.UUID) context.Context {
	return context.WithValue(ctx, ContextKeyOrganizationId, orgId)
}

// OrganizationIdFromContext returns the org the request is scoped to. The org
// id is always threaded explicitly: it is resolved once by the middleware and
// never read from any other ambient state.
func OrganizationIdFromContext(ctx context.Context) (uuid.UUID, error) {
	orgId, found := ctx.Value(ContextKeyOrganizationId).(uuid.UUID)
	if !found {
		return uuid.Nil, errors.Wrap(models.ForbiddenError, "no organization id in context")
	}
	return orgId, nil
}

// OrganizationMiddleware resolves the calling organization from the
// X-Organization-Id header into the request context.
func OrganizationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-Organization-Id")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": "missing X-Organization-Id header",
			})
			return
		}
		orgId, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"message": "X-Organization-Id is not a valid UUID",
			})
			return
		}
		ctx := StoreOrganizationIdInContext(c.Request.Context(), orgId)
		c.Request = c.Request.WithContext(ctx)
	}
}
