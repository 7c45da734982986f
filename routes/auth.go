package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shoplane/shoplane-api/auth"
	userControllers "github.com/shoplane/shoplane-api/controllers/user"
	"github.com/shoplane/shoplane-api/middleware"
)

// SetupAuthRoutes registers all "/auth/*" endpoints.
func SetupAuthRoutes(r *gin.Engine, db *gorm.DB, tm *auth.TokenManager) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", userControllers.SignupHandler(db))
		authGroup.POST("/login", userControllers.LoginHandler(db, tm))
		authGroup.GET("/me", middleware.RequireAuth(tm), userControllers.MeHandler(db))
	}
}
