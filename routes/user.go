package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shoplane/shoplane-api/auth"
	cartControllers "github.com/shoplane/shoplane-api/controllers/cart"
	productController "github.com/shoplane/shoplane-api/controllers/product"
	"github.com/shoplane/shoplane-api/middleware"
)

// SetupUserRoutes registers the catalog browse endpoints (public) and the
// shopping cart endpoints (JWT-protected).
func SetupUserRoutes(r *gin.Engine, db *gorm.DB, tm *auth.TokenManager) {
	// Browse products and categories
	r.GET("/products", productController.GetProducts(db))
	r.GET("/products/:id", productController.GetProductByID(db))
	r.GET("/categories", productController.GetAllCategories(db))
	r.GET("/categories/:id", productController.GetCategoryByID(db))

	// Shopping cart
	cartGroup := r.Group("/cart")
	cartGroup.Use(middleware.RequireAuth(tm))
	{
		cartGroup.GET("", cartControllers.GetCartHandler(db))
		cartGroup.POST("", cartControllers.AddToCartHandler(db))
		cartGroup.PUT("/:product_id", cartControllers.UpdateCartItemHandler(db))
		cartGroup.DELETE("/:product_id", cartControllers.RemoveCartItemHandler(db))
		cartGroup.DELETE("", cartControllers.ClearCartHandler(db))
	}
}
