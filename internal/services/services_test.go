// internal/services/services_test.go
package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openshelf/shop-backend/internal/config"
	"github.com/openshelf/shop-backend/internal/models"
	"github.com/openshelf/shop-backend/internal/utils"
)

// newTestDB opens an isolated in-memory database with the full schema.
// Connections are capped at one so every query sees the same memory store.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	))

	return db
}

func testConfig() *config.Config {
	cfg := &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:       "test-secret-key-for-unit-tests",
			AccessTokenTTL:  30,
			RefreshTokenTTL: 60,
		},
	}
	utils.SetJWTSecret(cfg.JWT.SecretKey)
	return cfg
}

func createTestUser(t *testing.T, db *gorm.DB, email string, role models.UserRole) *models.User {
	t.Helper()

	username := strings.ReplaceAll(strings.Split(email, "@")[0], ".", "_")

	user := &models.User{
		Username:  username,
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
		IsActive:  true,
	}
	require.NoError(t, user.SetPassword("Password123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestProduct(t *testing.T, db *gorm.DB, name, sku string, price float64, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		Name:              name,
		Slug:              utils.Slugify(name),
		SKU:               sku,
		Price:             price,
		StockQuantity:     stock,
		LowStockThreshold: 5,
		IsActive:          true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}
