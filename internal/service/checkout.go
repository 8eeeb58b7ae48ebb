package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"

	"derby-shop-api/internal/client"
	"derby-shop-api/internal/dto"
	"derby-shop-api/internal/metrics"
	"derby-shop-api/internal/model"
	"derby-shop-api/internal/repository"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const tracerName = "derby-shop-api/internal/service"

type CheckoutService interface {
	CreateOrderAndCheckout(ctx context.Context, req *dto.CheckoutRequest) (*CheckoutResult, error)
}

type CheckoutResult struct {
	OrderID   uint
	SessionID string
	URL       string
}

type checkoutServiceImpl struct {
	db            *gorm.DB
	gateway       client.PaymentGateway
	orderRepo     repository.OrderRepository
	orderItemRepo repository.OrderItemRepository
	inventoryRepo repository.InventoryRepository
	logger        *zap.Logger
	metrics       *metrics.Metrics
	tracer        trace.Tracer
}

func NewCheckoutService(
	db *gorm.DB,
	gateway client.PaymentGateway,
	orderRepo repository.OrderRepository,
	orderItemRepo repository.OrderItemRepository,
	inventoryRepo repository.InventoryRepository,
	logger *zap.Logger,
	m *metrics.Metrics,
) CheckoutService {
	return &checkoutServiceImpl{
		db:            db,
		gateway:       gateway,
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		inventoryRepo: inventoryRepo,
		logger:        logger.Named("checkout"),
		metrics:       m,
		tracer:        otel.Tracer(tracerName),
	}
}

// reservation is a stock decrement that was applied and must be undone if the order is abandoned.
type reservation struct {
	productID uint
	quantity  int
}

// stockPlan merges cart lines per product and orders them by product id. Concurrent checkouts
// then lock product rows in the same order and cannot deadlock each other.
func stockPlan(items []*dto.CartItem) []reservation {
	byProduct := make(map[uint]int, len(items))
	for _, item := range items {
		byProduct[item.ProductID] += item.Quantity
	}

	plan := make([]reservation, 0, len(byProduct))
	for productID, quantity := range byProduct {
		plan = append(plan, reservation{productID: productID, quantity: quantity})
	}
	slices.SortFunc(plan, func(a, b reservation) int {
		return cmp.Compare(a.productID, b.productID)
	})
	return plan
}

// CreateOrderAndCheckout persists the order, reserves stock and opens a hosted payment session.
//
// The order header, its line items and the stock decrements commit together. A product without
// enough stock is skipped and the order still goes through. If the gateway then refuses to open a
// session, the committed order is removed and the reserved stock is returned.
func (s *checkoutServiceImpl) CreateOrderAndCheckout(ctx context.Context, req *dto.CheckoutRequest) (_ *CheckoutResult, err error) {
	const op = "checkout.CreateOrderAndCheckout"

	ctx, span := s.tracer.Start(ctx, op)
	defer func() {
		result := metrics.ResultOK
		if err != nil {
			result = KindOf(err).String()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		s.metrics.Checkouts.WithLabelValues(result).Inc()
		span.End()
	}()

	if err := validateCheckout(req); err != nil {
		return nil, newError(KindValidation, op, err)
	}

	itemCount := 0
	computed := decimal.Zero
	for _, item := range req.Items {
		itemCount += item.Quantity
		computed = computed.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	if !computed.Equal(req.TotalAmount) {
		// the declared total is stored as sent
		s.logger.Warn("declared total differs from cart sum",
			zap.String("user_id", req.UserID),
			zap.String("declared", req.TotalAmount.StringFixed(2)),
			zap.String("computed", computed.StringFixed(2)),
		)
	}

	order := &model.Order{
		UserID:        req.UserID,
		Total:         req.TotalAmount,
		TotalProducts: itemCount,
	}
	var reserved []reservation

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return newError(KindStorage, op, fmt.Errorf("save order: %w", err))
		}

		items := make([]*model.OrderItem, len(req.Items))
		for i, item := range req.Items {
			items[i] = &model.OrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.Price,
			}
		}
		if err := s.orderItemRepo.AddBatch(ctx, tx, order.ID, items); err != nil {
			return newError(KindStorage, op, fmt.Errorf("save order details: %w", err))
		}

		reserved = reserved[:0]
		for _, want := range stockPlan(req.Items) {
			err := s.inventoryRepo.Decrement(ctx, tx, want.productID, want.quantity)
			switch {
			case errors.Is(err, repository.ErrInsufficientStock):
				s.metrics.StockDecrements.WithLabelValues(metrics.ResultInsufficient).Inc()
				s.logger.Warn("insufficient stock, item not reserved",
					zap.Uint("order_id", order.ID),
					zap.Uint("product_id", want.productID),
					zap.Int("quantity", want.quantity),
				)
			case err != nil:
				s.metrics.StockDecrements.WithLabelValues(metrics.ResultError).Inc()
				return newError(KindStorage, op, fmt.Errorf("reserve stock: %w", err))
			default:
				s.metrics.StockDecrements.WithLabelValues(metrics.ResultOK).Inc()
				reserved = append(reserved, want)
			}
		}

		return nil
	})
	if err != nil {
		if KindOf(err) == 0 {
			err = newError(KindStorage, op, fmt.Errorf("commit order: %w", err))
		}
		s.logger.Error("checkout aborted, nothing persisted", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, err
	}
	span.SetAttributes(attribute.Int64("order.id", int64(order.ID)))

	lineItems := make([]client.CheckoutLineItem, len(req.Items))
	for i, item := range req.Items {
		lineItems[i] = client.CheckoutLineItem{
			Name:       item.Name,
			UnitAmount: minorUnits(item.Price),
			Quantity:   int64(item.Quantity),
		}
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, &client.CheckoutSessionRequest{
		OrderID:   order.ID,
		LineItems: lineItems,
	})
	if err != nil {
		s.logger.Error("checkout session creation failed", zap.Uint("order_id", order.ID), zap.Error(err))
		s.compensate(context.WithoutCancel(ctx), order.ID, reserved)
		return nil, newError(KindGateway, op, err)
	}

	s.logger.Info("order created and checkout session opened",
		zap.Uint("order_id", order.ID),
		zap.String("session_id", session.ID),
		zap.Int("total_products", itemCount),
		zap.Int("reserved_items", len(reserved)),
	)

	return &CheckoutResult{
		OrderID:   order.ID,
		SessionID: session.ID,
		URL:       session.URL,
	}, nil
}

// compensate undoes a committed order whose payment session could not be opened.
func (s *checkoutServiceImpl) compensate(ctx context.Context, orderID uint, reserved []reservation) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, r := range reserved {
			if err := s.inventoryRepo.Restock(ctx, tx, r.productID, r.quantity); err != nil {
				return fmt.Errorf("restock product %d: %w", r.productID, err)
			}
		}
		return s.orderRepo.Delete(ctx, tx, orderID)
	})
	if err != nil {
		s.logger.Error("compensation failed, order left in processing",
			zap.Uint("order_id", orderID),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("order rolled back after gateway failure",
		zap.Uint("order_id", orderID),
		zap.Int("restocked_items", len(reserved)),
	)
}

func validateCheckout(req *dto.CheckoutRequest) error {
	if req == nil {
		return errors.New("missing order data")
	}
	if req.UserID == "" {
		return errors.New("missing userId")
	}
	if !req.TotalAmount.IsPositive() {
		return errors.New("missing totalAmount")
	}
	if len(req.Items) == 0 {
		return errors.New("missing items")
	}
	var totalQuantity int64
	for i, item := range req.Items {
		if item == nil {
			return fmt.Errorf("items[%d]: missing item", i)
		}
		if item.ProductID == 0 {
			return fmt.Errorf("items[%d]: missing productId", i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("items[%d]: quantity must be positive", i)
		}
		if item.Price.IsNegative() {
			return fmt.Errorf("items[%d]: price must not be negative", i)
		}
		if item.Price.Mul(decimal.NewFromInt(100)).Round(0).GreaterThan(maxMinorUnits) {
			return fmt.Errorf("items[%d]: price too large", i)
		}
		// total_products is an int column
		if item.Quantity > math.MaxInt32 {
			return fmt.Errorf("items[%d]: quantity too large", i)
		}
		totalQuantity += int64(item.Quantity)
		if totalQuantity > math.MaxInt32 {
			return fmt.Errorf("items[%d]: quantity too large", i)
		}
		if item.Name == "" {
			return fmt.Errorf("items[%d]: missing name", i)
		}
	}
	return nil
}

var maxMinorUnits = decimal.NewFromInt(math.MaxInt64)

func minorUnits(price decimal.Decimal) int64 {
	return price.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
