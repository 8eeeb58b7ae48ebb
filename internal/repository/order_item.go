package repository

import (
	"context"
	"fmt"

	"derby-shop-api/internal/model"

	"gorm.io/gorm"
)

type OrderItemRepository interface {
	AddBatch(ctx context.Context, tx *gorm.DB, orderID uint, items []*model.OrderItem) error
	FindByOrderID(ctx context.Context, orderID uint) ([]*model.OrderItemView, error)
}

type orderItemRepoImpl struct {
	db *gorm.DB
}

func NewOrderItemRepository(db *gorm.DB) OrderItemRepository {
	return &orderItemRepoImpl{
		db: db,
	}
}

// AddBatch inserts all line items of an order in one statement.
// Duplicate products in the batch are kept as separate rows.
func (r *orderItemRepoImpl) AddBatch(ctx context.Context, tx *gorm.DB, orderID uint, items []*model.OrderItem) error {
	if len(items) == 0 {
		return fmt.Errorf("order %d: no line items", orderID)
	}
	for _, item := range items {
		item.OrderID = orderID
	}

	return conn(r.db, tx).WithContext(ctx).Create(&items).Error
}

func (r *orderItemRepoImpl) FindByOrderID(ctx context.Context, orderID uint) ([]*model.OrderItemView, error) {
	var items []*model.OrderItemView
	err := r.db.WithContext(ctx).
		Table("order_details AS od").
		Select("od.*, p.title, p.picture").
		Joins("JOIN products p ON od.products_id = p.id").
		Where("od.orders_id = ?", orderID).
		Order("od.id ASC").
		Scan(&items).Error

	if err != nil {
		return nil, err
	}

	return items, nil
}
