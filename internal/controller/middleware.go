package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lshigami/certprep/internal/dto"
)

const userIDKey = "userID"

// RequireUserID resolves the caller's identity from the X-User-ID header.
// Authentication itself happens upstream (gateway); this layer only checks
// that the header is present and shaped like a UUID.
func RequireUserID() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-User-ID")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "X-User-ID header is required"})
			return
		}
		if _, err := uuid.Parse(raw); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Message: "X-User-ID must be a valid UUID"})
			return
		}
		c.Set(userIDKey, raw)
		c.Next()
	}
}

// CurrentUserID returns the identity set by RequireUserID.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
