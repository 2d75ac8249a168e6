package persistence

import (
	"context"
	"testing"

	"github.com/erp/orderdesk/internal/domain/inventory"
	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormStockRepository_SaveWithTransactions(t *testing.T) {
	repo := NewGormStockRepository(newTestDB(t))
	ctx := context.Background()
	warehouseID, productID := uuid.New(), uuid.New()

	item, err := repo.FindOrCreateItem(ctx, warehouseID, productID)
	require.NoError(t, err)
	assert.Zero(t, item.StoredVersion())

	receipt, err := inventory.Apply(item, inventory.TransactionTypeReceipt, 10, "initial receipt")
	require.NoError(t, err)
	orderID := uuid.New()
	receipt.OrderID = &orderID
	require.NoError(t, repo.SaveWithTransactions(ctx, []*inventory.StockItem{item}, []*inventory.StockTransaction{receipt}))

	t.Run("stored item is found", func(t *testing.T) {
		found, err := repo.FindItem(ctx, warehouseID, productID)
		require.NoError(t, err)
		assert.Equal(t, int64(10), found.Quantity)
		assert.Equal(t, found.Version, found.StoredVersion())
	})

	t.Run("existing item is updated", func(t *testing.T) {
		found, err := repo.FindOrCreateItem(ctx, warehouseID, productID)
		require.NoError(t, err)
		delivery, err := inventory.Apply(found, inventory.TransactionTypeDelivery, 4, "")
		require.NoError(t, err)
		require.NoError(t, repo.SaveWithTransactions(ctx, []*inventory.StockItem{found}, []*inventory.StockTransaction{delivery}))

		reloaded, err := repo.FindItem(ctx, warehouseID, productID)
		require.NoError(t, err)
		assert.Equal(t, int64(6), reloaded.Quantity)
	})

	t.Run("stale item is rejected", func(t *testing.T) {
		a, err := repo.FindItem(ctx, warehouseID, productID)
		require.NoError(t, err)
		b, err := repo.FindItem(ctx, warehouseID, productID)
		require.NoError(t, err)

		txA, err := inventory.Apply(a, inventory.TransactionTypeDelivery, 1, "")
		require.NoError(t, err)
		require.NoError(t, repo.SaveWithTransactions(ctx, []*inventory.StockItem{a}, []*inventory.StockTransaction{txA}))

		txB, err := inventory.Apply(b, inventory.TransactionTypeDelivery, 1, "")
		require.NoError(t, err)
		err = repo.SaveWithTransactions(ctx, []*inventory.StockItem{b}, []*inventory.StockTransaction{txB})
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)

		count, err := repo.CountTransactions(ctx, inventory.StockFilter{Filter: shared.DefaultFilter()})
		require.NoError(t, err)
		assert.Equal(t, int64(3), count, "rejected save must not append its ledger entry")
	})

	t.Run("ledger filters by order", func(t *testing.T) {
		entries, err := repo.FindTransactions(ctx, inventory.StockFilter{Filter: shared.DefaultFilter(), OrderID: &orderID})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, inventory.TransactionTypeReceipt, entries[0].Type)
		assert.Equal(t, int64(10), entries[0].BalanceAfter)
	})
}

func TestGormStockRepository_FindItems(t *testing.T) {
	repo := NewGormStockRepository(newTestDB(t))
	ctx := context.Background()
	main, annex := uuid.New(), uuid.New()
	productID := uuid.New()

	var items []*inventory.StockItem
	var txs []*inventory.StockTransaction
	for _, wh := range []uuid.UUID{main, annex} {
		item := inventory.NewStockItem(wh, productID)
		tx, err := inventory.Apply(item, inventory.TransactionTypeReceipt, 5, "")
		require.NoError(t, err)
		items = append(items, item)
		txs = append(txs, tx)
	}
	items = append(items, inventory.NewStockItem(main, uuid.New()))
	require.NoError(t, repo.SaveWithTransactions(ctx, items, txs))

	all, err := repo.FindItems(ctx, inventory.StockFilter{Filter: shared.DefaultFilter()})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byWarehouse := inventory.StockFilter{Filter: shared.DefaultFilter(), WarehouseID: &main}
	count, err := repo.CountItems(ctx, byWarehouse)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	inStock := inventory.StockFilter{Filter: shared.DefaultFilter(), WarehouseID: &main}
	inStock.Filters["in_stock"] = true
	found, err := repo.FindItems(ctx, inStock)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, productID, found[0].ProductID)

	_, err = repo.FindItem(ctx, annex, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
