package productController

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shoplane/shoplane-api/apperr"
	"github.com/shoplane/shoplane-api/models"
)

const maxPriceValue = 1e6 // sanity cap, matches the catalog import limits

type ProductInput struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	CategoryID  uint    `json:"category_id" binding:"required"`
}

func validateProductInput(input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return apperr.InvalidInput("product name cannot be empty")
	}
	if input.Price < 0 {
		return apperr.InvalidInput("price cannot be negative")
	}
	if input.Price > maxPriceValue {
		return apperr.InvalidInput("price is too high")
	}
	if input.Stock < 0 {
		return apperr.InvalidInput("stock cannot be negative")
	}
	return nil
}

// POST /admin/products
func CreateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input ProductInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.InvalidInput(err.Error()))
			return
		}
		if err := validateProductInput(input); err != nil {
			apperr.Respond(c, err)
			return
		}

		tx := db.WithContext(c.Request.Context())
		var category models.Category
		if err := tx.First(&category, input.CategoryID).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("category", input.CategoryID))
			return
		}

		product := models.Product{
			Name:        strings.TrimSpace(input.Name),
			Description: input.Description,
			Price:       input.Price,
			Stock:       input.Stock,
			CategoryID:  input.CategoryID,
		}
		if err := tx.Create(&product).Error; err != nil {
			apperr.Respond(c, apperr.Internal("failed to create product", err))
			return
		}
		product.Category = category
		c.JSON(http.StatusCreated, product)
	}
}

// GET /products
//
// Supports filtering by category, price range, stock availability and a
// name/description search, plus skip/limit pagination.
func GetProducts(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.WithContext(c.Request.Context()).
			Model(&models.Product{}).Preload("Category")

		if v := c.Query("category_id"); v != "" {
			cid, err := parseID(v)
			if err != nil {
				apperr.Respond(c, apperr.InvalidInput("invalid category_id"))
				return
			}
			query = query.Where("category_id = ?", cid)
		}
		if v := c.Query("min_price"); v != "" {
			mp, err := strconv.ParseFloat(v, 64)
			if err != nil {
				apperr.Respond(c, apperr.InvalidInput("invalid min_price"))
				return
			}
			query = query.Where("price >= ?", mp)
		}
		if v := c.Query("max_price"); v != "" {
			mp, err := strconv.ParseFloat(v, 64)
			if err != nil {
				apperr.Respond(c, apperr.InvalidInput("invalid max_price"))
				return
			}
			query = query.Where("price <= ?", mp)
		}
		if v := c.Query("in_stock"); v != "" {
			inStock, err := strconv.ParseBool(v)
			if err != nil {
				apperr.Respond(c, apperr.InvalidInput("invalid in_stock"))
				return
			}
			if inStock {
				query = query.Where("stock > 0")
			} else {
				query = query.Where("stock = 0")
			}
		}
		if search := c.Query("search"); search != "" {
			like := "%" + search + "%"
			query = query.Where("name LIKE ? OR description LIKE ?", like, like)
		}

		skip, limit := pagination(c)
		var products []models.Product
		if err := query.Order("created_at desc").
			Offset(skip).Limit(limit).
			Find(&products).Error; err != nil {
			apperr.Respond(c, apperr.Internal("failed to fetch products", err))
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

// GET /products/:id
func GetProductByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c.Param("id"))
		if err != nil {
			apperr.Respond(c, apperr.InvalidInput("invalid product ID"))
			return
		}

		var product models.Product
		if err := db.WithContext(c.Request.Context()).
			Preload("Category").First(&product, id).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("product", id))
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// PUT /admin/products/:id
func UpdateProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c.Param("id"))
		if err != nil {
			apperr.Respond(c, apperr.InvalidInput("invalid product ID"))
			return
		}

		tx := db.WithContext(c.Request.Context())
		var product models.Product
		if err := tx.First(&product, id).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("product", id))
			return
		}

		var input struct {
			Name        *string  `json:"name"`
			Description *string  `json:"description"`
			Price       *float64 `json:"price"`
			Stock       *int     `json:"stock"`
			CategoryID  *uint    `json:"category_id"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.InvalidInput(err.Error()))
			return
		}

		if input.Name != nil {
			if strings.TrimSpace(*input.Name) == "" {
				apperr.Respond(c, apperr.InvalidInput("product name cannot be empty"))
				return
			}
			product.Name = strings.TrimSpace(*input.Name)
		}
		if input.Description != nil {
			product.Description = *input.Description
		}
		if input.Price != nil {
			if *input.Price < 0 || *input.Price > maxPriceValue {
				apperr.Respond(c, apperr.InvalidInput("invalid price"))
				return
			}
			product.Price = *input.Price
		}
		if input.Stock != nil {
			if *input.Stock < 0 {
				apperr.Respond(c, apperr.InvalidInput("stock cannot be negative"))
				return
			}
			product.Stock = *input.Stock
		}
		if input.CategoryID != nil {
			var category models.Category
			if err := tx.First(&category, *input.CategoryID).Error; err != nil {
				apperr.Respond(c, apperr.NotFound("category", *input.CategoryID))
				return
			}
			product.CategoryID = *input.CategoryID
		}

		if err := tx.Save(&product).Error; err != nil {
			apperr.Respond(c, apperr.Internal("failed to update product", err))
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

// DELETE /admin/products/:id
//
// Soft delete: existing order items keep their frozen snapshot; carts that
// still reference the product hit NotFound at checkout.
func DeleteProduct(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c.Param("id"))
		if err != nil {
			apperr.Respond(c, apperr.InvalidInput("invalid product ID"))
			return
		}

		tx := db.WithContext(c.Request.Context())
		var product models.Product
		if err := tx.First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apperr.Respond(c, apperr.NotFound("product", id))
				return
			}
			apperr.Respond(c, apperr.Internal("failed to fetch product", err))
			return
		}

		if err := tx.Delete(&product).Error; err != nil {
			apperr.Respond(c, apperr.Internal("failed to delete product", err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
	}
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
