package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shoplane/shoplane-api/auth"
)

// SetupRoutes is the single entry-point that wires up Auth, User, Admin and
// Order route groups.
func SetupRoutes(r *gin.Engine, db *gorm.DB, tm *auth.TokenManager) {
	// Public auth routes (no middleware)
	SetupAuthRoutes(r, db, tm)

	// Authenticated user routes (JWT)
	SetupUserRoutes(r, db, tm)

	// Admin routes (JWT + admin role)
	SetupAdminRoutes(r, db, tm)

	// Order routes (JWT; visibility enforced per handler)
	SetupOrderRoutes(r, db, tm)
}
