package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shoplane/shoplane-api/auth"
	cartControllers "github.com/shoplane/shoplane-api/controllers/cart"
	productController "github.com/shoplane/shoplane-api/controllers/product"
	userControllers "github.com/shoplane/shoplane-api/controllers/user"
	"github.com/shoplane/shoplane-api/middleware"
)

// SetupAdminRoutes registers all "/admin/*" endpoints. Requires a valid
// token carrying the admin role.
func SetupAdminRoutes(r *gin.Engine, db *gorm.DB, tm *auth.TokenManager) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.RequireAuth(tm), middleware.RequireAdmin())
	{
		// User management
		adminGroup.GET("/users", userControllers.GetAllUsers(db))
		adminGroup.GET("/user-cart/:user_id", cartControllers.GetUserCartHandler(db))

		// Product management
		productAdmin := adminGroup.Group("/products")
		{
			productAdmin.POST("", productController.CreateProduct(db))
			productAdmin.PUT("/:id", productController.UpdateProduct(db))
			productAdmin.DELETE("/:id", productController.DeleteProduct(db))
			productAdmin.GET("/export-excel", productController.ExportProductsToExcel(db))
		}

		// Category management
		categoryAdmin := adminGroup.Group("/categories")
		{
			categoryAdmin.POST("", productController.CreateCategory(db))
			categoryAdmin.PUT("/:id", productController.UpdateCategory(db))
			categoryAdmin.DELETE("/:id", productController.DeleteCategory(db))
		}
	}
}
