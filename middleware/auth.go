package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shoplane/shoplane-api/apperr"
	"github.com/shoplane/shoplane-api/auth"
	"github.com/shoplane/shoplane-api/models"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// RequireAuth verifies the bearer token and stores the resolved
// (user_id, role) pair in the request context.
func RequireAuth(tm *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			apperr.Respond(c, apperr.Unauthorized("authorization header is missing"))
			c.Abort()
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims, err := tm.Validate(tokenString)
		if err != nil {
			apperr.Respond(c, apperr.Unauthorized("invalid or expired token"))
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// RequireAdmin rejects requests whose token does not carry the admin role.
// Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if RoleFrom(c) != models.RoleAdmin {
			apperr.Respond(c, apperr.Forbidden("admin role required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserIDFrom returns the authenticated user id set by RequireAuth.
func UserIDFrom(c *gin.Context) uint {
	id, _ := c.Get(ContextUserID)
	userID, _ := id.(uint)
	return userID
}

// RoleFrom returns the authenticated role set by RequireAuth.
func RoleFrom(c *gin.Context) models.Role {
	r, _ := c.Get(ContextRole)
	role, _ := r.(models.Role)
	return role
}
