package service

import (
	"context"
	"errors"
	"fmt"

	"derby-shop-api/internal/dto"
	"derby-shop-api/internal/model"
	"derby-shop-api/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OrderService interface {
	GetOrder(ctx context.Context, orderID uint) (*dto.OrderDetail, error)
	ListOrders(ctx context.Context) ([]*model.Order, error)
	UpdateStatus(ctx context.Context, orderID uint, status model.OrderStatus) error
	DeleteOrder(ctx context.Context, orderID uint) error
}

type orderServiceImpl struct {
	orderRepo     repository.OrderRepository
	orderItemRepo repository.OrderItemRepository
	logger        *zap.Logger
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	orderItemRepo repository.OrderItemRepository,
	logger *zap.Logger,
) OrderService {
	return &orderServiceImpl{
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		logger:        logger.Named("orders"),
	}
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, orderID uint) (*dto.OrderDetail, error) {
	const op = "orders.GetOrder"

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, storageOrNotFound(op, err)
	}

	items, err := s.orderItemRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, newError(KindStorage, op, fmt.Errorf("get order details: %w", err))
	}

	return &dto.OrderDetail{
		Order: order,
		Items: items,
	}, nil
}

func (s *orderServiceImpl) ListOrders(ctx context.Context) ([]*model.Order, error) {
	orders, err := s.orderRepo.FindAll(ctx)
	if err != nil {
		return nil, newError(KindStorage, "orders.ListOrders", err)
	}
	return orders, nil
}

// UpdateStatus writes any known status; transitions are not checked.
func (s *orderServiceImpl) UpdateStatus(ctx context.Context, orderID uint, status model.OrderStatus) error {
	const op = "orders.UpdateStatus"

	if !status.Valid() {
		return newError(KindValidation, op, fmt.Errorf("unknown status %q", status))
	}

	rows, err := s.orderRepo.UpdateStatus(ctx, nil, orderID, status)
	if err != nil {
		return newError(KindStorage, op, err)
	}
	if rows == 0 {
		// mysql reports 0 affected rows when the value is unchanged
		if _, err := s.orderRepo.FindByID(ctx, orderID); err != nil {
			return storageOrNotFound(op, err)
		}
	}

	s.logger.Info("order status updated", zap.Uint("order_id", orderID), zap.String("status", string(status)))
	return nil
}

func (s *orderServiceImpl) DeleteOrder(ctx context.Context, orderID uint) error {
	const op = "orders.DeleteOrder"

	if err := s.orderRepo.Delete(ctx, nil, orderID); err != nil {
		return storageOrNotFound(op, err)
	}

	s.logger.Info("order deleted", zap.Uint("order_id", orderID))
	return nil
}

func storageOrNotFound(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return newError(KindNotFound, op, err)
	}
	return newError(KindStorage, op, err)
}
