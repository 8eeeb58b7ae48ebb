package repository_test

import (
	"context"
	"testing"
	"time"

	"derby-shop-api/internal/model"
	"derby-shop-api/internal/repository"
	"derby-shop-api/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newOrder(userID string, createdAt time.Time) *model.Order {
	return &model.Order{
		UserID:        userID,
		Total:         decimal.RequireFromString("20.00"),
		TotalProducts: 2,
		CreatedAt:     createdAt,
	}
}

func TestOrderRepository_CreateStartsProcessing(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repository.NewOrderRepository(db)

	order := newOrder("u1", time.Time{})
	order.Status = model.OrderStatusPaid
	require.NoError(t, repo.Create(ctx, nil, order))
	require.NotZero(t, order.ID)

	got, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusProcessing, got.Status)
	assert.Equal(t, "u1", got.UserID)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("20.00")))
	assert.False(t, got.CreatedAt.IsZero())
}

func TestOrderRepository_UpdateStatusIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repository.NewOrderRepository(db)

	order := newOrder("u1", time.Now())
	require.NoError(t, repo.Create(ctx, nil, order))

	for i := 0; i < 2; i++ {
		_, err := repo.UpdateStatus(ctx, nil, order.ID, model.OrderStatusPaid)
		require.NoError(t, err)
	}

	got, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPaid, got.Status)

	rows, err := repo.UpdateStatus(ctx, nil, 999, model.OrderStatusPaid)
	require.NoError(t, err)
	assert.Zero(t, rows)
}

func TestOrderRepository_FindAllNewestFirst(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repository.NewOrderRepository(db)

	now := time.Now()
	older := newOrder("u1", now.Add(-time.Hour))
	newer := newOrder("u2", now)
	sameTime := newOrder("u3", now)
	require.NoError(t, repo.Create(ctx, nil, older))
	require.NoError(t, repo.Create(ctx, nil, newer))
	require.NoError(t, repo.Create(ctx, nil, sameTime))

	orders, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, []uint{sameTime.ID, newer.ID, older.ID}, []uint{orders[0].ID, orders[1].ID, orders[2].ID})
}

func TestOrderRepository_FindByIDNotFound(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewOrderRepository(db)

	_, err := repo.FindByID(context.Background(), 42)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepository_DeleteRemovesLineItems(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	orders := repository.NewOrderRepository(db)
	items := repository.NewOrderItemRepository(db)
	product := testutil.SeedProduct(t, db, "skates", "10.00", 5)

	order := newOrder("u1", time.Now())
	require.NoError(t, orders.Create(ctx, nil, order))
	require.NoError(t, items.AddBatch(ctx, nil, order.ID, []*model.OrderItem{
		{ProductID: product.ID, Quantity: 1, UnitPrice: product.Price},
	}))

	require.NoError(t, orders.Delete(ctx, nil, order.ID))

	_, err := orders.FindByID(ctx, order.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	remaining, err := items.FindByOrderID(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	assert.ErrorIs(t, orders.Delete(ctx, nil, order.ID), gorm.ErrRecordNotFound)
}
