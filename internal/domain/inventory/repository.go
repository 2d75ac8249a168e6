package inventory

import (
	"context"

	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/google/uuid"
)

// StockFilter narrows stock and ledger listings
type StockFilter struct {
	shared.Filter
	WarehouseID *uuid.UUID
	ProductID   *uuid.UUID
	OrderID     *uuid.UUID
}

// StockRepository persists stock items and the transaction ledger
type StockRepository interface {
	// FindItem finds the stock of a product in a warehouse
	FindItem(ctx context.Context, warehouseID, productID uuid.UUID) (*StockItem, error)
	// FindOrCreateItem returns the stock item, or a new empty one that is not yet stored
	FindOrCreateItem(ctx context.Context, warehouseID, productID uuid.UUID) (*StockItem, error)
	FindItems(ctx context.Context, filter StockFilter) ([]StockItem, error)
	CountItems(ctx context.Context, filter StockFilter) (int64, error)
	// SaveWithTransactions stores the items (version checked) and appends the ledger entries atomically
	SaveWithTransactions(ctx context.Context, items []*StockItem, txs []*StockTransaction) error
	FindTransactions(ctx context.Context, filter StockFilter) ([]StockTransaction, error)
	CountTransactions(ctx context.Context, filter StockFilter) (int64, error)
}
