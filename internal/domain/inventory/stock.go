package inventory

import (
	"fmt"
	"time"

	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/google/uuid"
)

// TransactionType represents the kind of stock movement
type TransactionType string

const (
	// TransactionTypeReceipt is stock received against a purchase order
	TransactionTypeReceipt TransactionType = "RECEIPT"
	// TransactionTypeDelivery is stock delivered against a sale order
	TransactionTypeDelivery TransactionType = "DELIVERY"
	// TransactionTypeTransferIn is stock moved in from another warehouse
	TransactionTypeTransferIn TransactionType = "TRANSFER_IN"
	// TransactionTypeTransferOut is stock moved out to another warehouse
	TransactionTypeTransferOut TransactionType = "TRANSFER_OUT"
)

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeReceipt, TransactionTypeDelivery,
		TransactionTypeTransferIn, TransactionTypeTransferOut:
		return true
	}
	return false
}

// IsIncrease returns true if this transaction type adds stock
func (t TransactionType) IsIncrease() bool {
	return t == TransactionTypeReceipt || t == TransactionTypeTransferIn
}

// StockItem is the on-hand quantity of one product in one warehouse
type StockItem struct {
	ID          uuid.UUID
	WarehouseID uuid.UUID
	ProductID   uuid.UUID
	Quantity    int64
	Version     int
	UpdatedAt   time.Time

	storedVersion int
}

// NewStockItem creates an empty stock item
func NewStockItem(warehouseID, productID uuid.UUID) *StockItem {
	return &StockItem{
		ID:          uuid.New(),
		WarehouseID: warehouseID,
		ProductID:   productID,
		Version:     1,
		UpdatedAt:   time.Now(),
	}
}

// StoredVersion returns the version last read from or written to storage,
// 0 when the item has never been stored
func (s *StockItem) StoredVersion() int {
	return s.storedVersion
}

// MarkStored records the current version as the stored one
func (s *StockItem) MarkStored() {
	s.storedVersion = s.Version
}

// Increase adds stock
func (s *StockItem) Increase(qty int64) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	s.Quantity += qty
	s.touch()
	return nil
}

// Decrease removes stock; the on-hand quantity never goes negative
func (s *StockItem) Decrease(qty int64) error {
	if qty <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if qty > s.Quantity {
		return shared.NewDomainError(shared.ErrInsufficientStock.Code,
			fmt.Sprintf("Insufficient stock: requested %d, available %d", qty, s.Quantity))
	}
	s.Quantity -= qty
	s.touch()
	return nil
}

// CanSupply returns true if qty can be taken from this item
func (s *StockItem) CanSupply(qty int64) bool {
	return qty <= s.Quantity
}

func (s *StockItem) touch() {
	s.UpdatedAt = time.Now()
	s.Version++
}

// StockTransaction is an append-only ledger entry
type StockTransaction struct {
	ID            uuid.UUID
	Type          TransactionType
	WarehouseID   uuid.UUID
	ProductID     uuid.UUID
	Quantity      int64
	BalanceAfter  int64
	OrderID       *uuid.UUID
	FulfillmentID *uuid.UUID
	Note          string
	CreatedAt     time.Time
}

// Apply moves stock on the item and returns the matching ledger entry
func Apply(item *StockItem, txType TransactionType, qty int64, note string) (*StockTransaction, error) {
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Unknown stock transaction type")
	}
	var err error
	if txType.IsIncrease() {
		err = item.Increase(qty)
	} else {
		err = item.Decrease(qty)
	}
	if err != nil {
		return nil, err
	}
	return &StockTransaction{
		ID:           uuid.New(),
		Type:         txType,
		WarehouseID:  item.WarehouseID,
		ProductID:    item.ProductID,
		Quantity:     qty,
		BalanceAfter: item.Quantity,
		Note:         note,
		CreatedAt:    item.UpdatedAt,
	}, nil
}

// Transfer moves qty of a product between two stock items of different warehouses
func Transfer(from, to *StockItem, qty int64, note string) (out, in *StockTransaction, err error) {
	if from.ProductID != to.ProductID {
		return nil, nil, shared.NewDomainError("INVALID_TRANSFER", "Transfer must move a single product")
	}
	if from.WarehouseID == to.WarehouseID {
		return nil, nil, shared.NewDomainError("INVALID_TRANSFER", "Source and destination warehouse must differ")
	}
	out, err = Apply(from, TransactionTypeTransferOut, qty, note)
	if err != nil {
		return nil, nil, err
	}
	in, err = Apply(to, TransactionTypeTransferIn, qty, note)
	if err != nil {
		return nil, nil, err
	}
	return out, in, nil
}
