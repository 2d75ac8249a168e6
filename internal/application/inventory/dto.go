package inventory

import (
	"time"

	"github.com/erp/orderdesk/internal/domain/inventory"
	"github.com/google/uuid"
)

// StockItemResponse is the on-hand quantity of a product in a warehouse
type StockItemResponse struct {
	ID          uuid.UUID `json:"id"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
	ProductID   uuid.UUID `json:"product_id"`
	Quantity    int64     `json:"quantity"`
	Version     int       `json:"version"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToStockItemResponse converts a stock item
func ToStockItemResponse(item *inventory.StockItem) StockItemResponse {
	return StockItemResponse{
		ID:          item.ID,
		WarehouseID: item.WarehouseID,
		ProductID:   item.ProductID,
		Quantity:    item.Quantity,
		Version:     item.Version,
		UpdatedAt:   item.UpdatedAt,
	}
}

// StockTransactionResponse is one stock ledger entry
type StockTransactionResponse struct {
	ID            uuid.UUID  `json:"id"`
	Type          string     `json:"type"`
	WarehouseID   uuid.UUID  `json:"warehouse_id"`
	ProductID     uuid.UUID  `json:"product_id"`
	Quantity      int64      `json:"quantity"`
	BalanceAfter  int64      `json:"balance_after"`
	OrderID       *uuid.UUID `json:"order_id,omitempty"`
	FulfillmentID *uuid.UUID `json:"fulfillment_id,omitempty"`
	Note          string     `json:"note,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ToStockTransactionResponse converts a ledger entry
func ToStockTransactionResponse(tx *inventory.StockTransaction) StockTransactionResponse {
	return StockTransactionResponse{
		ID:            tx.ID,
		Type:          string(tx.Type),
		WarehouseID:   tx.WarehouseID,
		ProductID:     tx.ProductID,
		Quantity:      tx.Quantity,
		BalanceAfter:  tx.BalanceAfter,
		OrderID:       tx.OrderID,
		FulfillmentID: tx.FulfillmentID,
		Note:          tx.Note,
		CreatedAt:     tx.CreatedAt,
	}
}

// StockListFilter filters stock and ledger listings
type StockListFilter struct {
	Page        int
	PageSize    int
	OrderBy     string
	OrderDir    string
	WarehouseID *uuid.UUID
	ProductID   *uuid.UUID
	OrderID     *uuid.UUID
	Type        inventory.TransactionType
	InStock     *bool
}
