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
)

func TestOrderItemRepository_AddBatchAndJoinedView(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	orders := repository.NewOrderRepository(db)
	items := repository.NewOrderItemRepository(db)
	skates := testutil.SeedProduct(t, db, "skates", "10.00", 5)
	helmet := testutil.SeedProduct(t, db, "helmet", "30.00", 5)

	order := newOrder("u1", time.Now())
	require.NoError(t, orders.Create(ctx, nil, order))

	batch := []*model.OrderItem{
		{ProductID: skates.ID, Quantity: 2, UnitPrice: skates.Price},
		{ProductID: helmet.ID, Quantity: 1, UnitPrice: helmet.Price},
		{ProductID: skates.ID, Quantity: 1, UnitPrice: skates.Price},
	}
	require.NoError(t, items.AddBatch(ctx, nil, order.ID, batch))

	got, err := items.FindByOrderID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "skates", got[0].Title)
	assert.Equal(t, "skates.png", got[0].Picture)
	assert.Equal(t, 2, got[0].Quantity)
	assert.Equal(t, "helmet", got[1].Title)
	assert.Equal(t, skates.ID, got[2].ProductID)
	for _, item := range got {
		assert.Equal(t, order.ID, item.OrderID)
	}
}

func TestOrderItemRepository_AddBatchRejectsEmpty(t *testing.T) {
	db := testutil.NewDB(t)
	items := repository.NewOrderItemRepository(db)

	assert.Error(t, items.AddBatch(context.Background(), nil, 1, nil))
}

func TestOrderItemRepository_UnitPriceIsSnapshot(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	orders := repository.NewOrderRepository(db)
	items := repository.NewOrderItemRepository(db)
	products := repository.NewProductRepository(db)
	product := testutil.SeedProduct(t, db, "wheels", "45.00", 5)

	order := newOrder("u1", time.Now())
	require.NoError(t, orders.Create(ctx, nil, order))
	require.NoError(t, items.AddBatch(ctx, nil, order.ID, []*model.OrderItem{
		{ProductID: product.ID, Quantity: 1, UnitPrice: product.Price},
	}))

	require.NoError(t, products.UpdatePrice(ctx, product.ID, decimal.RequireFromString("60.00")))

	updated, err := products.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(decimal.RequireFromString("60.00")))

	got, err := items.FindByOrderID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].UnitPrice.Equal(decimal.RequireFromString("45.00")), "got %s", got[0].UnitPrice)
}
