package productController

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shoplane/shoplane-api/apperr"
	"github.com/shoplane/shoplane-api/models"
)

// DecrementStock applies an atomic compare-and-decrement on a product's
// stock. The check and the decrement happen in one conditional UPDATE, so
// two concurrent callers fighting over the last unit cannot both win.
// Returns the remaining stock after a successful decrement; the value comes
// from the UPDATE's RETURNING row, not a separate reload, so it is the
// stock this decrement produced even when another decrement lands right
// after.
func DecrementStock(db *gorm.DB, productID uint, amount int) (int, error) {
	if amount <= 0 {
		return 0, apperr.InvalidInput("decrement amount must be positive")
	}

	var updated []models.Product
	res := db.Model(&updated).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "stock"}}}).
		Where("id = ? AND stock >= ?", productID, amount).
		UpdateColumn("stock", gorm.Expr("stock - ?", amount))
	if res.Error != nil {
		return 0, apperr.Internal("failed to decrement stock", res.Error)
	}

	if res.RowsAffected == 0 || len(updated) == 0 {
		// Either the product is gone or the stock ran out; distinguish.
		var product models.Product
		if err := db.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, apperr.NotFound("product", productID)
			}
			return 0, apperr.Internal("failed to load product", err)
		}
		return 0, apperr.InsufficientStock(productID, product.Stock)
	}
	return updated[0].Stock, nil
}
