package repository

import (
	"context"
	"fmt"

	"derby-shop-api/internal/model"

	"gorm.io/gorm"
)

type InventoryRepository interface {
	Decrement(ctx context.Context, tx *gorm.DB, productID uint, quantity int) error
	Restock(ctx context.Context, tx *gorm.DB, productID uint, quantity int) error
	Stock(ctx context.Context, productID uint) (int, error)
}

type inventoryRepoImpl struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepoImpl{
		db: db,
	}
}

// Decrement removes quantity from the product stock in a single guarded statement,
// so concurrent callers can never drive stock below zero.
// It returns ErrInsufficientStock when the guard rejected the update.
func (r *inventoryRepoImpl) Decrement(ctx context.Context, tx *gorm.DB, productID uint, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("decrement product %d: quantity must be positive, got %d", productID, quantity)
	}

	result := conn(r.db, tx).WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("decrement product %d: %w", productID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientStock
	}

	return nil
}

func (r *inventoryRepoImpl) Restock(ctx context.Context, tx *gorm.DB, productID uint, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("restock product %d: quantity must be positive, got %d", productID, quantity)
	}

	result := conn(r.db, tx).WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", productID).
		Update("stock", gorm.Expr("stock + ?", quantity))
	if result.Error != nil {
		return fmt.Errorf("restock product %d: %w", productID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *inventoryRepoImpl) Stock(ctx context.Context, productID uint) (int, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Select("stock").
		Where("id = ?", productID).
		First(&product).Error
	if err != nil {
		return 0, err
	}

	return product.Stock, nil
}
