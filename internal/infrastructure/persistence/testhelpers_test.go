package persistence

import (
	"testing"

	"github.com/erp/orderdesk/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an in-memory sqlite database with the full schema
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

// newTestOrder builds an unsaved order with the given line quantities
func newTestOrder(t *testing.T, kind trade.OrderKind, number string, quantities ...int64) *trade.Order {
	t.Helper()

	order, err := trade.NewOrder(kind, number, uuid.New(), "Yamada Trading")
	require.NoError(t, err)
	for i, qty := range quantities {
		_, err := order.AddLine(trade.LineInput{
			ProductID:   uuid.New(),
			ProductName: "Item " + string(rune('A'+i)),
			SKU:         "SKU-" + string(rune('A'+i)),
			Quantity:    qty,
			UnitPrice:   100,
		})
		require.NoError(t, err)
	}
	return order
}

func tradeFilter(kind, status string) trade.OrderFilter {
	return trade.OrderFilter{Kind: trade.OrderKind(kind), Status: trade.OrderStatus(status)}
}
