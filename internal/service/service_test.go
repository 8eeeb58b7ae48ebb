package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"derby-shop-api/internal/client"
	"derby-shop-api/internal/config"
	"derby-shop-api/internal/metrics"
	"derby-shop-api/internal/model"
	"derby-shop-api/internal/repository"
	"derby-shop-api/internal/testutil"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const webhookSecret = "whsec_test_secret"

// fakeGateway opens sessions locally and verifies signatures with the real client.
type fakeGateway struct {
	client.PaymentGateway

	err      error
	requests []*client.CheckoutSessionRequest
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		PaymentGateway: client.NewStripeClient(&config.Stripe{
			SecretKey:     "sk_test_unused",
			WebhookSecret: webhookSecret,
			Currency:      "eur",
		}),
	}
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req *client.CheckoutSessionRequest) (*client.CheckoutSession, error) {
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	id := fmt.Sprintf("cs_test_%d", req.OrderID)
	return &client.CheckoutSession{
		ID:  id,
		URL: "https://checkout.stripe.test/pay/" + id,
	}, nil
}

// failingInventory fails decrements of one product with a storage error.
type failingInventory struct {
	repository.InventoryRepository
	productID uint
}

func (f *failingInventory) Decrement(ctx context.Context, tx *gorm.DB, productID uint, quantity int) error {
	if productID == f.productID {
		return fmt.Errorf("decrement product %d: connection reset", productID)
	}
	return f.InventoryRepository.Decrement(ctx, tx, productID, quantity)
}

type fixture struct {
	db         *gorm.DB
	gateway    *fakeGateway
	metrics    *metrics.Metrics
	orders     repository.OrderRepository
	orderItems repository.OrderItemRepository
	inventory  repository.InventoryRepository
	events     repository.WebhookEventRepository
	logger     *zap.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	return &fixture{
		db:         db,
		gateway:    newFakeGateway(),
		metrics:    metrics.New(prometheus.NewRegistry()),
		orders:     repository.NewOrderRepository(db),
		orderItems: repository.NewOrderItemRepository(db),
		inventory:  repository.NewInventoryRepository(db),
		events:     repository.NewWebhookEventRepository(db),
		logger:     zap.NewNop(),
	}
}

type decrementCall struct {
	productID uint
	quantity  int
}

// recordingInventory records the decrements it forwards.
type recordingInventory struct {
	repository.InventoryRepository
	calls []decrementCall
}

func (r *recordingInventory) Decrement(ctx context.Context, tx *gorm.DB, productID uint, quantity int) error {
	r.calls = append(r.calls, decrementCall{productID: productID, quantity: quantity})
	return r.InventoryRepository.Decrement(ctx, tx, productID, quantity)
}

// failingOrders fails every status update with a storage error.
type failingOrders struct {
	repository.OrderRepository
}

func (failingOrders) UpdateStatus(context.Context, *gorm.DB, uint, model.OrderStatus) (int64, error) {
	return 0, errors.New("update orders: connection reset")
}
