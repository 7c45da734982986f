package cartControllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shoplane/shoplane-api/apperr"
	"github.com/shoplane/shoplane-api/middleware"
	"github.com/shoplane/shoplane-api/models"
)

type CartItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

type CartItemUpdateInput struct {
	Quantity int `json:"quantity"`
}

// -------- Core Logic --------

// AddToCart creates a cart row for (user, product) or increments the
// existing one. Stock is deliberately not checked here; checkout is the
// single enforcement point for fulfillment constraints.
func AddToCart(db *gorm.DB, userID, productID uint, qty int) (*models.CartItem, error) {
	if qty <= 0 {
		return nil, apperr.InvalidInput("quantity must be a positive integer")
	}

	var product models.Product
	if err := db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("product", productID)
		}
		return nil, apperr.Internal("failed to validate product", err)
	}

	var item models.CartItem
	err := db.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Internal("failed to fetch cart item", err)
		}
		item = models.CartItem{
			UserID:    userID,
			ProductID: productID,
			Quantity:  qty,
			AddedAt:   time.Now(),
		}
		if err := db.Create(&item).Error; err != nil {
			return nil, apperr.Internal("failed to add item to cart", err)
		}
		item.Product = product
		return &item, nil
	}

	item.Quantity += qty
	item.AddedAt = time.Now()
	if err := db.Save(&item).Error; err != nil {
		return nil, apperr.Internal("failed to update cart item", err)
	}
	item.Product = product
	return &item, nil
}

// UpdateCartItem sets an absolute quantity. A quantity <= 0 removes the row,
// matching an explicit remove. Returns nil when the row was removed.
func UpdateCartItem(db *gorm.DB, userID, productID uint, qty int) (*models.CartItem, error) {
	var item models.CartItem
	if err := db.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("cart_item", productID)
		}
		return nil, apperr.Internal("failed to fetch cart item", err)
	}

	if qty <= 0 {
		if err := db.Delete(&item).Error; err != nil {
			return nil, apperr.Internal("failed to remove cart item", err)
		}
		return nil, nil
	}

	item.Quantity = qty
	if err := db.Save(&item).Error; err != nil {
		return nil, apperr.Internal("failed to update cart item", err)
	}
	return &item, nil
}

// RemoveCartItem deletes one row; missing rows are NotFound.
func RemoveCartItem(db *gorm.DB, userID, productID uint) error {
	res := db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.CartItem{})
	if res.Error != nil {
		return apperr.Internal("failed to delete cart item", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("cart_item", productID)
	}
	return nil
}

// ClearCart empties the user's cart. Clearing an already empty cart is not
// an error.
func ClearCart(db *gorm.DB, userID uint) error {
	if err := db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return apperr.Internal("failed to clear cart", err)
	}
	return nil
}

// ListCart returns the user's cart rows with products preloaded.
func ListCart(db *gorm.DB, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := db.Preload("Product").
		Where("user_id = ?", userID).
		Order("product_id").
		Find(&items).Error; err != nil {
		return nil, apperr.Internal("failed to fetch cart", err)
	}
	return items, nil
}

// -------- Handlers --------

// GET /cart
func GetCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := ListCart(db.WithContext(c.Request.Context()), middleware.UserIDFrom(c))
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

// POST /cart
func AddToCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CartItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.InvalidInput(err.Error()))
			return
		}

		item, err := AddToCart(db.WithContext(c.Request.Context()),
			middleware.UserIDFrom(c), input.ProductID, input.Quantity)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

// PUT /cart/:product_id
func UpdateCartItemHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := parseID(c.Param("product_id"))
		if err != nil {
			apperr.Respond(c, apperr.InvalidInput("invalid product ID"))
			return
		}

		var input CartItemUpdateInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.InvalidInput(err.Error()))
			return
		}

		item, err := UpdateCartItem(db.WithContext(c.Request.Context()),
			middleware.UserIDFrom(c), productID, input.Quantity)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		if item == nil {
			c.JSON(http.StatusOK, gin.H{"message": "Cart item removed"})
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

// DELETE /cart/:product_id
func RemoveCartItemHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := parseID(c.Param("product_id"))
		if err != nil {
			apperr.Respond(c, apperr.InvalidInput("invalid product ID"))
			return
		}

		if err := RemoveCartItem(db.WithContext(c.Request.Context()),
			middleware.UserIDFrom(c), productID); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart item deleted"})
	}
}

// DELETE /cart
func ClearCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ClearCart(db.WithContext(c.Request.Context()), middleware.UserIDFrom(c)); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

// GET /admin/user-cart/:user_id
func GetUserCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := parseID(c.Param("user_id"))
		if err != nil {
			apperr.Respond(c, apperr.InvalidInput("invalid user ID"))
			return
		}

		items, err := ListCart(db.WithContext(c.Request.Context()), userID)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}
