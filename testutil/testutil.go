// Package testutil provides the in-memory database and fixture builders
// shared by controller tests.
package testutil

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shoplane/shoplane-api/auth"
	"github.com/shoplane/shoplane-api/models"
)

// OpenDB opens a fresh in-memory SQLite database with the full schema.
// The pool is capped at one connection: each test gets its own private
// database and concurrent transactions serialize on it the same way the
// production checkout serializes on row state.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// CreateUser inserts a user with the given role and the password "secret123".
func CreateUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("secret123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user %q: %v", username, err)
	}
	return user
}

func CreateCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()

	category := &models.Category{Name: name}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create category %q: %v", name, err)
	}
	return category
}

func CreateProduct(t *testing.T, db *gorm.DB, name string, price float64, stock int, categoryID uint) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:       name,
		Price:      price,
		Stock:      stock,
		CategoryID: categoryID,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("failed to create product %q: %v", name, err)
	}
	return product
}

func AddCartItem(t *testing.T, db *gorm.DB, userID, productID uint, qty int) {
	t.Helper()

	item := &models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  qty,
		AddedAt:   time.Now(),
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to add cart item: %v", err)
	}
}
