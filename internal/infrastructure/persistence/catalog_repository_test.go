package persistence

import (
	"context"
	"testing"

	"github.com/erp/orderdesk/internal/domain/catalog"
	"github.com/erp/orderdesk/internal/domain/partner"
	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormCategoryRepository(t *testing.T) {
	db := newTestDB(t)
	categories := NewGormCategoryRepository(db)
	products := NewGormProductRepository(db)
	ctx := context.Background()

	bolts, err := catalog.NewCategory("Bolts", "Hex and carriage bolts")
	require.NoError(t, err)
	nuts, err := catalog.NewCategory("Nuts", "")
	require.NoError(t, err)
	require.NoError(t, categories.Save(ctx, bolts))
	require.NoError(t, categories.Save(ctx, nuts))

	t.Run("name key collides case-insensitively", func(t *testing.T) {
		exists, err := categories.ExistsByNameKey(ctx, catalog.FoldName("BOLTS"), uuid.Nil)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = categories.ExistsByNameKey(ctx, bolts.NameKey, bolts.ID)
		require.NoError(t, err)
		assert.False(t, exists, "a category does not collide with itself")
	})

	t.Run("has products", func(t *testing.T) {
		product, err := catalog.NewProduct(catalog.ProductInput{
			SKU: "blt-m8", Name: "M8 bolt", CategoryID: bolts.ID, UnitPrice: 30, UnitCost: 12,
		})
		require.NoError(t, err)
		require.NoError(t, products.Save(ctx, product))

		has, err := categories.HasProducts(ctx, bolts.ID)
		require.NoError(t, err)
		assert.True(t, has)

		has, err = categories.HasProducts(ctx, nuts.ID)
		require.NoError(t, err)
		assert.False(t, has)

		found, err := products.FindBySKU(ctx, "blt-m8")
		require.NoError(t, err)
		assert.Equal(t, product.ID, found.ID)
		assert.Equal(t, "BLT-M8", found.SKU)
	})

	t.Run("search and count", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "carriage"
		found, err := categories.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, bolts.ID, found[0].ID)

		count, err := categories.Count(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, categories.Delete(ctx, nuts.ID))
		assert.ErrorIs(t, categories.Delete(ctx, nuts.ID), shared.ErrNotFound)
	})
}

func TestGormPartnerRepositories(t *testing.T) {
	db := newTestDB(t)
	suppliers := NewGormSupplierRepository(db)
	customers := NewGormCustomerRepository(db)
	warehouses := NewGormWarehouseRepository(db)
	ctx := context.Background()

	supplier, err := partner.NewSupplier("Osaka Metal Works", partner.Contact{ContactName: "Sato", Phone: "06-1234-5678"})
	require.NoError(t, err)
	require.NoError(t, suppliers.Save(ctx, supplier))

	customer, err := partner.NewCustomer("Kobe Builders", partner.Contact{Email: "buy@kobe.example.jp"})
	require.NoError(t, err)
	require.NoError(t, customers.Save(ctx, customer))

	found, err := suppliers.FindByID(ctx, supplier.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sato", found.ContactName)

	filter := shared.DefaultFilter()
	filter.Search = "kobe"
	list, err := customers.FindAll(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	main, err := partner.NewWarehouse("Main", "Chiba")
	require.NoError(t, err)
	require.NoError(t, warehouses.Save(ctx, main))
	exists, err := warehouses.ExistsByNameKey(ctx, main.NameKey, uuid.Nil)
	require.NoError(t, err)
	assert.True(t, exists)

	dup, err := partner.NewWarehouse("MAIN", "Tokyo")
	require.NoError(t, err)
	assert.ErrorIs(t, warehouses.Save(ctx, dup), shared.ErrAlreadyExists)
}
