//go:build integration

package persistence

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/erp/orderdesk/internal/domain/partner"
	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/erp/orderdesk/internal/domain/trade"
	"github.com/erp/orderdesk/internal/infrastructure/migration"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newPostgresDB starts a throwaway postgres, applies the embedded migrations
// and returns a GORM handle on it
func newPostgresDB(t *testing.T) (*gorm.DB, *migration.Migrator) {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("orderdesk_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	m, err := migration.New(sqlDB, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())

	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db, m
}

func TestPostgres_Migrations(t *testing.T) {
	_, m := newPostgresDB(t)

	versions, err := migration.Versions()
	require.NoError(t, err)
	require.NotEmpty(t, versions)

	version, dirty, err := m.Version()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, versions[len(versions)-1], version)

	require.NoError(t, m.Steps(-1))
	version, _, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, versions[len(versions)-2], version)

	require.NoError(t, m.Up())
}

func TestPostgres_OrderLifecycle(t *testing.T) {
	db, _ := newPostgresDB(t)
	ctx := context.Background()
	orders := NewGormOrderRepository(db)
	fulfillments := NewGormFulfillmentRepository(db)
	warehouses := NewGormWarehouseRepository(db)

	warehouse, err := partner.NewWarehouse("Osaka DC", "Osaka")
	require.NoError(t, err)
	require.NoError(t, warehouses.Save(ctx, warehouse))

	number, err := orders.GenerateOrderNumber(ctx, trade.OrderKindPurchase)
	require.NoError(t, err)
	order := newTestOrder(t, trade.OrderKindPurchase, number, 10, 4)
	require.NoError(t, orders.Save(ctx, order))

	t.Run("stale writer gets a conflict", func(t *testing.T) {
		a, err := orders.FindByID(ctx, order.ID)
		require.NoError(t, err)
		b, err := orders.FindByID(ctx, order.ID)
		require.NoError(t, err)

		require.NoError(t, a.Place())
		require.NoError(t, orders.SaveWithLock(ctx, a))

		require.NoError(t, b.SetDescription("late edit"))
		assert.ErrorIs(t, orders.SaveWithLock(ctx, b), shared.ErrConcurrencyConflict)
	})

	t.Run("summary sums concurrent receipts", func(t *testing.T) {
		lineID := order.Lines[0].ID
		var wg sync.WaitGroup
		errs := make(chan error, 5)
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- fulfillments.Create(ctx, &trade.FulfillmentEvent{
					ID:          uuid.New(),
					OrderID:     order.ID,
					LineID:      lineID,
					WarehouseID: warehouse.ID,
					Quantity:    2,
					RecordedAt:  time.Now().UTC(),
				})
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		summary, err := fulfillments.SummaryByOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(10), summary.FulfilledFor(lineID))
		assert.Zero(t, summary.FulfilledFor(order.Lines[1].ID))
	})

	t.Run("unknown warehouse violates the foreign key", func(t *testing.T) {
		err := fulfillments.Create(ctx, &trade.FulfillmentEvent{
			ID:          uuid.New(),
			OrderID:     order.ID,
			LineID:      order.Lines[1].ID,
			WarehouseID: uuid.New(),
			Quantity:    1,
			RecordedAt:  time.Now().UTC(),
		})
		assert.Error(t, err)
	})
}
