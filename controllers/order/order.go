package orderControllers

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shoplane/shoplane-api/apperr"
	productController "github.com/shoplane/shoplane-api/controllers/product"
	"github.com/shoplane/shoplane-api/models"
)

// generateOrderRef builds a unique, human-opaque order reference.
// Example: 20250908130500-<uuid4>
func generateOrderRef() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}

// Checkout converts the user's cart into a persisted order.
//
// Steps 2-6 of the workflow (stock validation, stock decrement, order +
// item creation, cart clear) run inside one transaction: any failure, a
// storage error or a cancelled context rolls the whole thing back, so a
// failed checkout leaves stock and cart exactly as they were.
func Checkout(ctx context.Context, db *gorm.DB, userID uint, role models.Role) (*models.Order, error) {
	// Policy: only customers check out carts.
	if role != models.RoleCustomer {
		return nil, apperr.Forbidden("only customers can checkout")
	}

	var order models.Order

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cartItems []models.CartItem
		if err := tx.Where("user_id = ?", userID).
			Order("product_id").
			Find(&cartItems).Error; err != nil {
			return apperr.Internal("failed to load cart", err)
		}
		if len(cartItems) == 0 {
			return apperr.EmptyCart()
		}

		var total float64
		var orderItems []models.OrderItem

		for _, item := range cartItems {
			// Resolve the live product; it may have been deleted since it
			// was added to the cart.
			var product models.Product
			if err := tx.First(&product, item.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFound("product", item.ProductID)
				}
				return apperr.Internal("failed to load product", err)
			}

			// The stock check and the deduction are one conditional UPDATE
			// inside this transaction, so a concurrent checkout cannot slip
			// between them.
			if _, err := productController.DecrementStock(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}

			// Freeze the price at this instant.
			total += product.Price * float64(item.Quantity)
			orderItems = append(orderItems, models.OrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: product.Price,
			})
		}

		order = models.Order{
			OrderRef:  generateOrderRef(),
			UserID:    userID,
			Items:     orderItems,
			Total:     total,
			Status:    models.OrderStatusPending,
			CreatedAt: time.Now(),
		}
		if err := tx.Create(&order).Error; err != nil {
			return apperr.Internal("failed to create order", err)
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
			return apperr.Internal("failed to clear cart", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders applies the read-time visibility rule: customers see their own
// orders, admins see everything.
func ListOrders(ctx context.Context, db *gorm.DB, requesterID uint, role models.Role, skip, limit int) ([]models.Order, error) {
	query := db.WithContext(ctx).Model(&models.Order{}).
		Preload("Items").
		Order("created_at desc").
		Offset(skip).Limit(limit)
	if role != models.RoleAdmin {
		query = query.Where("user_id = ?", requesterID)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, apperr.Internal("failed to fetch orders", err)
	}
	return orders, nil
}

// GetOrder loads one order, enforcing the same visibility rule.
func GetOrder(ctx context.Context, db *gorm.DB, orderID, requesterID uint, role models.Role) (*models.Order, error) {
	var order models.Order
	if err := db.WithContext(ctx).Preload("Items").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order", orderID)
		}
		return nil, apperr.Internal("failed to load order", err)
	}
	if role != models.RoleAdmin && order.UserID != requesterID {
		return nil, apperr.Forbidden("not enough permissions to access this order")
	}
	return &order, nil
}

// SetStatus applies one admin-triggered status transition. The monotonic
// ordering is enforced against the status read in the same transaction,
// and the update is a compare-and-set on that status so two concurrent
// transitions cannot both apply.
func SetStatus(ctx context.Context, db *gorm.DB, orderID uint, newStatus models.OrderStatus, role models.Role) (*models.Order, error) {
	if role != models.RoleAdmin {
		return nil, apperr.Forbidden("admin role required")
	}

	var order models.Order
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("order", orderID)
			}
			return apperr.Internal("failed to load order", err)
		}

		if !models.CanTransition(order.Status, newStatus) {
			return apperr.InvalidTransition(string(order.Status), string(newStatus))
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, order.Status).
			Update("status", newStatus)
		if res.Error != nil {
			return apperr.Internal("failed to update order status", res.Error)
		}
		if res.RowsAffected == 0 {
			// Lost the compare-and-set: something else changed the status
			// after we read it. Report the conflict, not a bogus transition.
			return apperr.StatusConflict(orderID)
		}

		order.Status = newStatus
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}
