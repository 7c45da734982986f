package orderControllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shoplane/shoplane-api/apperr"
	"github.com/shoplane/shoplane-api/middleware"
	"github.com/shoplane/shoplane-api/models"
)

type UpdateOrderStatusInput struct {
	Status string `json:"status" binding:"required"`
}

// POST /orders/checkout
func CheckoutHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := Checkout(c.Request.Context(), db,
			middleware.UserIDFrom(c), middleware.RoleFrom(c))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

// GET /orders
func ListOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		skip, limit := pagination(c)
		orders, err := ListOrders(c.Request.Context(), db,
			middleware.UserIDFrom(c), middleware.RoleFrom(c), skip, limit)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /orders/:orderID
func GetOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := parseID(c.Param("orderID"))
		if err != nil {
			apperr.Respond(c, apperr.InvalidInput("invalid order ID"))
			return
		}

		order, err := GetOrder(c.Request.Context(), db, orderID,
			middleware.UserIDFrom(c), middleware.RoleFrom(c))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// PUT /orders/:orderID/status
func UpdateOrderStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := parseID(c.Param("orderID"))
		if err != nil {
			apperr.Respond(c, apperr.InvalidInput("invalid order ID"))
			return
		}

		var input UpdateOrderStatusInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.InvalidInput(err.Error()))
			return
		}
		newStatus, ok := models.ParseOrderStatus(input.Status)
		if !ok {
			apperr.Respond(c, apperr.InvalidInput("invalid order status"))
			return
		}

		order, err := SetStatus(c.Request.Context(), db, orderID, newStatus,
			middleware.RoleFrom(c))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

func pagination(c *gin.Context) (skip, limit int) {
	skip, _ = strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return skip, limit
}
