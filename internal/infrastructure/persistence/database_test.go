package persistence

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/erp/orderdesk/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDatabase creates a Database instance with a mocked SQL connection
func newMockDatabase(t *testing.T) (*Database, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err)

	return &Database{DB: gormDB, Driver: "postgres"}, mock, mockDB
}

func TestDatabase_Ping(t *testing.T) {
	t.Run("successful ping", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing()

		assert.NoError(t, db.Ping())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed ping", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		mock.ExpectPing().WillReturnError(sql.ErrConnDone)

		assert.Error(t, db.Ping())
	})
}

func TestDatabase_Stats(t *testing.T) {
	db, _, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	stats, err := db.Stats()
	assert.NoError(t, err)
	assert.IsType(t, ConnectionStats{}, stats)
}

func TestNewDatabase(t *testing.T) {
	t.Run("rejects unknown driver", func(t *testing.T) {
		_, err := NewDatabase(&config.DatabaseConfig{Driver: "oracle"}, nil)
		assert.ErrorContains(t, err, "unsupported database driver")
	})

	t.Run("opens sqlite file and migrates", func(t *testing.T) {
		db, err := NewDatabase(&config.DatabaseConfig{
			Driver:     "sqlite",
			SQLitePath: filepath.Join(t.TempDir(), "orderdesk.db"),
		}, nil)
		require.NoError(t, err)
		defer db.Close()

		require.NoError(t, AutoMigrate(db.DB))
		assert.True(t, db.DB.Migrator().HasTable("stock_items"))
		assert.NoError(t, db.Ping())
	})
}

func TestGormWarehouseRepository_FindByID_Postgres(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewGormWarehouseRepository(db.DB)

	t.Run("finds existing warehouse", func(t *testing.T) {
		id := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "name", "name_key", "location", "status", "version"}).
			AddRow(id.String(), "Main", "main", "Chiba", "active", 3)

		mock.ExpectQuery(`SELECT \* FROM "warehouses" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(id, 1).
			WillReturnRows(rows)

		warehouse, err := repo.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "Main", warehouse.Name)
		assert.Equal(t, 3, warehouse.StoredVersion())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps record not found", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "warehouses" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(id, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindByID(context.Background(), id)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderRepository_Count_Postgres(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewGormOrderRepository(db.DB)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "orders" WHERE kind = \$1 AND status = \$2`).
		WithArgs("SALE", "PENDING").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.Count(context.Background(), tradeFilter("SALE", "PENDING"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOrderRepository_FindByID_LocksInTransaction(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewGormOrderRepository(db.DB)
	txm := NewGormTransactionManager(db.DB)

	orderRows := func(id uuid.UUID) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "kind", "order_number", "status", "version"}).
			AddRow(id.String(), "PURCHASE", "PO-20261015-0001", "PENDING", 2)
	}
	lineRows := sqlmock.NewRows([]string{"id", "order_id"})

	t.Run("outside a transaction no lock is taken", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1 ORDER BY .* LIMIT \$2$`).
			WithArgs(id, 1).
			WillReturnRows(orderRows(id))
		mock.ExpectQuery(`SELECT \* FROM "order_lines" WHERE "order_lines"."order_id" = \$1`).
			WithArgs(id).
			WillReturnRows(lineRows)

		order, err := repo.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "PO-20261015-0001", order.OrderNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("inside a transaction the order row is locked", func(t *testing.T) {
		id := uuid.New()
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1 ORDER BY .* LIMIT \$2 FOR UPDATE`).
			WithArgs(id, 1).
			WillReturnRows(orderRows(id))
		mock.ExpectQuery(`SELECT \* FROM "order_lines" WHERE "order_lines"."order_id" = \$1`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id"}))
		mock.ExpectCommit()

		err := txm.Transaction(context.Background(), func(ctx context.Context) error {
			_, err := repo.FindByID(ctx, id)
			return err
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
