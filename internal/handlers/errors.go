package handlers

import (
	"errors"

	"github.com/campuspool/campuspool-backend/internal/pools"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondError maps the pool error kinds onto HTTP responses. Every kind
// keeps a distinct code so clients can branch without parsing messages.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pools.ErrValidation):
		c.JSON(400, gin.H{"error": err.Error(), "code": "validation_error"})
	case errors.Is(err, pools.ErrInvalidOperation):
		c.JSON(400, gin.H{"error": err.Error(), "code": "invalid_operation"})
	case errors.Is(err, pools.ErrNotAuthorized):
		c.JSON(403, gin.H{"error": err.Error(), "code": "authorization_error"})
	case errors.Is(err, pools.ErrNotFound):
		c.JSON(404, gin.H{"error": err.Error(), "code": "not_found"})
	case errors.Is(err, pools.ErrOperationNotAllowed):
		c.JSON(405, gin.H{"error": err.Error(), "code": "operation_not_allowed"})
	case errors.Is(err, pools.ErrConflict):
		c.JSON(409, gin.H{"error": err.Error(), "code": "conflict"})
	case errors.Is(err, pools.ErrCapacityExceeded):
		c.JSON(409, gin.H{"error": err.Error(), "code": "capacity_exceeded"})
	default:
		logrus.WithError(err).Error("unexpected handler error")
		c.JSON(500, gin.H{"error": "Internal server error", "code": "internal"})
	}
}
