package persistence

import (
	"context"
	"errors"

	"github.com/erp/orderdesk/internal/domain/inventory"
	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/erp/orderdesk/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStockRepository implements StockRepository using GORM
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// FindItem finds the stock of a product in a warehouse. Inside a postgres
// transaction the row is locked until commit.
func (r *GormStockRepository) FindItem(ctx context.Context, warehouseID, productID uuid.UUID) (*inventory.StockItem, error) {
	var model models.StockItemModel
	err := lockingDBFor(ctx, r.db).Where("warehouse_id = ? AND product_id = ?", warehouseID, productID).
		First(&model).Error
	if err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindOrCreateItem returns the stock item, or a new empty one that is not yet stored
func (r *GormStockRepository) FindOrCreateItem(ctx context.Context, warehouseID, productID uuid.UUID) (*inventory.StockItem, error) {
	item, err := r.FindItem(ctx, warehouseID, productID)
	if errors.Is(err, shared.ErrNotFound) {
		return inventory.NewStockItem(warehouseID, productID), nil
	}
	return item, err
}

// FindItems lists stock items
func (r *GormStockRepository) FindItems(ctx context.Context, filter inventory.StockFilter) ([]inventory.StockItem, error) {
	var rows []models.StockItemModel
	query := paginate(r.itemFilter(dbFor(ctx, r.db).Model(&models.StockItemModel{}), filter),
		filter.Filter, StockItemSortFields, "updated_at")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]inventory.StockItem, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items, nil
}

// CountItems counts stock items
func (r *GormStockRepository) CountItems(ctx context.Context, filter inventory.StockFilter) (int64, error) {
	var count int64
	err := r.itemFilter(dbFor(ctx, r.db).Model(&models.StockItemModel{}), filter).Count(&count).Error
	return count, err
}

// SaveWithTransactions stores the items and appends the ledger entries in one
// transaction. An item changed by someone else since it was read yields
// CONCURRENCY_CONFLICT.
func (r *GormStockRepository) SaveWithTransactions(ctx context.Context, items []*inventory.StockItem, txs []*inventory.StockTransaction) error {
	err := inTransaction(ctx, r.db, func(tx *gorm.DB) error {
		for _, item := range items {
			model := models.StockItemModelFromDomain(item)
			if item.StoredVersion() == 0 {
				if err := tx.Create(model).Error; err != nil {
					if errors.Is(err, gorm.ErrDuplicatedKey) {
						return shared.ErrConcurrencyConflict
					}
					return err
				}
				continue
			}

			result := tx.Model(&models.StockItemModel{}).
				Where("id = ? AND version = ?", item.ID, item.StoredVersion()).
				Updates(map[string]any{
					"quantity":   model.Quantity,
					"version":    model.Version,
					"updated_at": model.UpdatedAt,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return shared.ErrConcurrencyConflict
			}
		}

		for _, t := range txs {
			if err := tx.Create(models.StockTransactionModelFromDomain(t)).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, item := range items {
		item.MarkStored()
	}
	return nil
}

// FindTransactions lists ledger entries, newest first by default
func (r *GormStockRepository) FindTransactions(ctx context.Context, filter inventory.StockFilter) ([]inventory.StockTransaction, error) {
	var rows []models.StockTransactionModel
	query := paginate(r.transactionFilter(dbFor(ctx, r.db).Model(&models.StockTransactionModel{}), filter),
		filter.Filter, StockTransactionSortFields, "created_at")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make([]inventory.StockTransaction, len(rows))
	for i := range rows {
		entries[i] = rows[i].ToDomain()
	}
	return entries, nil
}

// CountTransactions counts ledger entries
func (r *GormStockRepository) CountTransactions(ctx context.Context, filter inventory.StockFilter) (int64, error) {
	var count int64
	err := r.transactionFilter(dbFor(ctx, r.db).Model(&models.StockTransactionModel{}), filter).Count(&count).Error
	return count, err
}

func (r *GormStockRepository) itemFilter(query *gorm.DB, filter inventory.StockFilter) *gorm.DB {
	if filter.WarehouseID != nil {
		query = query.Where("warehouse_id = ?", *filter.WarehouseID)
	}
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if v, ok := filter.Filters["in_stock"].(bool); ok && v {
		query = query.Where("quantity > 0")
	}
	return query
}

func (r *GormStockRepository) transactionFilter(query *gorm.DB, filter inventory.StockFilter) *gorm.DB {
	if filter.WarehouseID != nil {
		query = query.Where("warehouse_id = ?", *filter.WarehouseID)
	}
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.OrderID != nil {
		query = query.Where("order_id = ?", *filter.OrderID)
	}
	if t, ok := filter.Filters["type"]; ok {
		query = query.Where("type = ?", t)
	}
	return query
}

var _ inventory.StockRepository = (*GormStockRepository)(nil)
