package models

import (
	"time"

	"github.com/erp/orderdesk/internal/domain/inventory"
	"github.com/google/uuid"
)

// StockItemModel is the persistence model for on-hand stock of one product in one warehouse.
type StockItemModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	WarehouseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_stock_items_location,priority:1"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_stock_items_location,priority:2"`
	Quantity    int64     `gorm:"not null;default:0;check:chk_stock_items_quantity,quantity >= 0"`
	Version     int       `gorm:"not null;default:1"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockItemModel) TableName() string {
	return "stock_items"
}

// ToDomain converts the persistence model to a domain StockItem
func (m *StockItemModel) ToDomain() *inventory.StockItem {
	item := &inventory.StockItem{
		ID:          m.ID,
		WarehouseID: m.WarehouseID,
		ProductID:   m.ProductID,
		Quantity:    m.Quantity,
		Version:     m.Version,
		UpdatedAt:   m.UpdatedAt,
	}
	item.MarkStored()
	return item
}

// StockItemModelFromDomain creates a new persistence model from a domain StockItem
func StockItemModelFromDomain(s *inventory.StockItem) *StockItemModel {
	return &StockItemModel{
		ID:          s.ID,
		WarehouseID: s.WarehouseID,
		ProductID:   s.ProductID,
		Quantity:    s.Quantity,
		Version:     s.Version,
		UpdatedAt:   s.UpdatedAt,
	}
}

// StockTransactionModel is the persistence model for a stock ledger entry.
type StockTransactionModel struct {
	ID            uuid.UUID                 `gorm:"type:uuid;primaryKey"`
	Type          inventory.TransactionType `gorm:"type:varchar(20);not null"`
	WarehouseID   uuid.UUID                 `gorm:"type:uuid;not null;index:idx_stock_transactions_item,priority:1"`
	ProductID     uuid.UUID                 `gorm:"type:uuid;not null;index:idx_stock_transactions_item,priority:2"`
	Quantity      int64                     `gorm:"not null"`
	BalanceAfter  int64                     `gorm:"not null"`
	OrderID       *uuid.UUID                `gorm:"type:uuid;index:idx_stock_transactions_order"`
	FulfillmentID *uuid.UUID                `gorm:"type:uuid"`
	Note          string                    `gorm:"type:varchar(500);not null;default:''"`
	CreatedAt     time.Time                 `gorm:"not null;index:idx_stock_transactions_item,priority:3"`
}

// TableName returns the table name for GORM
func (StockTransactionModel) TableName() string {
	return "stock_transactions"
}

// ToDomain converts the persistence model to a domain StockTransaction
func (m *StockTransactionModel) ToDomain() inventory.StockTransaction {
	return inventory.StockTransaction{
		ID:            m.ID,
		Type:          m.Type,
		WarehouseID:   m.WarehouseID,
		ProductID:     m.ProductID,
		Quantity:      m.Quantity,
		BalanceAfter:  m.BalanceAfter,
		OrderID:       m.OrderID,
		FulfillmentID: m.FulfillmentID,
		Note:          m.Note,
		CreatedAt:     m.CreatedAt,
	}
}

// StockTransactionModelFromDomain creates a new persistence model from a domain StockTransaction
func StockTransactionModelFromDomain(t *inventory.StockTransaction) *StockTransactionModel {
	return &StockTransactionModel{
		ID:            t.ID,
		Type:          t.Type,
		WarehouseID:   t.WarehouseID,
		ProductID:     t.ProductID,
		Quantity:      t.Quantity,
		BalanceAfter:  t.BalanceAfter,
		OrderID:       t.OrderID,
		FulfillmentID: t.FulfillmentID,
		Note:          t.Note,
		CreatedAt:     t.CreatedAt,
	}
}
