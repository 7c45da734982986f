package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shoplane/shoplane-api/auth"
	orderControllers "github.com/shoplane/shoplane-api/controllers/order"
	"github.com/shoplane/shoplane-api/middleware"
)

func SetupOrderRoutes(r *gin.Engine, db *gorm.DB, tm *auth.TokenManager) {
	orders := r.Group("/orders")
	orders.Use(middleware.RequireAuth(tm))
	{
		// Convert the current cart into an order (customers only)
		orders.POST("/checkout", orderControllers.CheckoutHandler(db))

		// Customers see their own orders, admins see all
		orders.GET("", orderControllers.ListOrdersHandler(db))
		orders.GET("/:orderID", orderControllers.GetOrderHandler(db))

		// Status transitions (admin only, enforced in the workflow)
		orders.PUT("/:orderID/status", orderControllers.UpdateOrderStatusHandler(db))
	}
}
