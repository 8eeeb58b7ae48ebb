// Package testutil builds throwaway databases for package tests.
package testutil

import (
	"context"
	"testing"

	"derby-shop-api/internal/client"
	"derby-shop-api/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory sqlite database with the service schema.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, client.Migrate(db))
	return db
}

func SeedProduct(t testing.TB, db *gorm.DB, title, price string, stock int) *model.Product {
	t.Helper()

	product := &model.Product{
		Title:   title,
		Price:   decimal.RequireFromString(price),
		Stock:   stock,
		Picture: title + ".png",
	}
	require.NoError(t, db.WithContext(context.Background()).Create(product).Error)
	return product
}

func Stock(t testing.TB, db *gorm.DB, productID uint) int {
	t.Helper()

	var product model.Product
	require.NoError(t, db.First(&product, productID).Error)
	return product.Stock
}
