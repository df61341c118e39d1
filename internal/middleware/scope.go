package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/school-diary/backend/internal/models"
)

// ScopeMiddleware enforces school isolation. Platform admins see every
// school; everyone else is pinned to the school on their token.
func ScopeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")

		if role == models.RolePlatformAdmin {
			c.Next()
			return
		}

		schoolIDStr := c.GetString("school_id")
		if schoolIDStr == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied: No school assigned"})
			c.Abort()
			return
		}

		if _, err := uuid.Parse(schoolIDStr); err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid school ID"})
			c.Abort()
			return
		}

		c.Set("scope_school_id", schoolIDStr)
		c.Next()
	}
}

// Scope returns the caller's school restriction: nil for platform admins,
// the caller's school otherwise.
func Scope(c *gin.Context) *uuid.UUID {
	s := c.GetString("scope_school_id")
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}
