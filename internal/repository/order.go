package repository

import (
	"context"
	"time"

	"derby-shop-api/internal/model"

	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	UpdateStatus(ctx context.Context, tx *gorm.DB, orderID uint, status model.OrderStatus) (int64, error)
	FindByID(ctx context.Context, orderID uint) (*model.Order, error)
	FindAll(ctx context.Context) ([]*model.Order, error)
	Delete(ctx context.Context, tx *gorm.DB, orderID uint) error
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{
		db: db,
	}
}

// Create inserts the order header in processing state and fills in its id.
func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	order.Status = model.OrderStatusProcessing
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	return conn(r.db, tx).WithContext(ctx).Create(order).Error
}

// UpdateStatus overwrites the status without checking the current one.
func (r *orderRepoImpl) UpdateStatus(ctx context.Context, tx *gorm.DB, orderID uint, status model.OrderStatus) (int64, error) {
	result := conn(r.db, tx).WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", orderID).
		Update("status", status)

	return result.RowsAffected, result.Error
}

func (r *orderRepoImpl) FindByID(ctx context.Context, orderID uint) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error

	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindAll(ctx context.Context) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).Error

	if err != nil {
		return nil, err
	}

	return orders, nil
}

// Delete removes the order header together with its line items.
func (r *orderRepoImpl) Delete(ctx context.Context, tx *gorm.DB, orderID uint) error {
	run := func(tx *gorm.DB) error {
		if err := tx.Where("orders_id = ?", orderID).Delete(&model.OrderItem{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", orderID).Delete(&model.Order{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}

	if tx != nil {
		return run(tx.WithContext(ctx))
	}
	return r.db.WithContext(ctx).Transaction(run)
}
