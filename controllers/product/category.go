package productController

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shoplane/shoplane-api/apperr"
	"github.com/shoplane/shoplane-api/models"
)

type CategoryInput struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

// POST /admin/categories
func CreateCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CategoryInput
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.InvalidInput(err.Error()))
			return
		}

		var count int64
		tx := db.WithContext(c.Request.Context())
		if err := tx.Model(&models.Category{}).Where("name = ?", input.Name).Count(&count).Error; err != nil {
			apperr.Respond(c, apperr.Internal("failed to check category name", err))
			return
		}
		if count > 0 {
			apperr.Respond(c, apperr.InvalidInput("category name already exists"))
			return
		}

		category := models.Category{Name: input.Name, Description: input.Description}
		if err := tx.Create(&category).Error; err != nil {
			apperr.Respond(c, apperr.Internal("failed to create category", err))
			return
		}
		c.JSON(http.StatusCreated, category)
	}
}

// GET /categories
func GetAllCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []models.Category
		if err := db.WithContext(c.Request.Context()).Find(&categories).Error; err != nil {
			apperr.Respond(c, apperr.Internal("failed to fetch categories", err))
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

// GET /categories/:id
func GetCategoryByID(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c.Param("id"))
		if err != nil {
			apperr.Respond(c, apperr.InvalidInput("invalid category ID"))
			return
		}

		var category models.Category
		if err := db.WithContext(c.Request.Context()).
			Preload("Products").First(&category, id).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("category", id))
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

// PUT /admin/categories/:id
func UpdateCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c.Param("id"))
		if err != nil {
			apperr.Respond(c, apperr.InvalidInput("invalid category ID"))
			return
		}

		tx := db.WithContext(c.Request.Context())
		var category models.Category
		if err := tx.First(&category, id).Error; err != nil {
			apperr.Respond(c, apperr.NotFound("category", id))
			return
		}

		var input struct {
			Name        *string `json:"name"`
			Description *string `json:"description"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			apperr.Respond(c, apperr.InvalidInput(err.Error()))
			return
		}
		if input.Name != nil {
			if *input.Name == "" {
				apperr.Respond(c, apperr.InvalidInput("category name cannot be empty"))
				return
			}
			category.Name = *input.Name
		}
		if input.Description != nil {
			category.Description = *input.Description
		}

		if err := tx.Save(&category).Error; err != nil {
			apperr.Respond(c, apperr.Internal("failed to update category", err))
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

// DELETE /admin/categories/:id
func DeleteCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseID(c.Param("id"))
		if err != nil {
			apperr.Respond(c, apperr.InvalidInput("invalid category ID"))
			return
		}

		tx := db.WithContext(c.Request.Context())
		var category models.Category
		if err := tx.First(&category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apperr.Respond(c, apperr.NotFound("category", id))
				return
			}
			apperr.Respond(c, apperr.Internal("failed to fetch category", err))
			return
		}

		// Products keep a hard FK to their category.
		var count int64
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
			apperr.Respond(c, apperr.Internal("failed to count products", err))
			return
		}
		if count > 0 {
			apperr.Respond(c, apperr.InvalidInput("category still has products"))
			return
		}

		if err := tx.Delete(&category).Error; err != nil {
			apperr.Respond(c, apperr.Internal("failed to delete category", err))
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
	}
}

func parseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
