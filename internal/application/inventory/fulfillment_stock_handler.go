package inventory

import (
	"context"
	"fmt"

	"github.com/erp/orderdesk/internal/domain/inventory"
	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/erp/orderdesk/internal/domain/trade"
	"go.uber.org/zap"
)

// FulfillmentStockHandler moves stock for every recorded fulfillment:
// receipts on purchase orders add stock, deliveries on sale orders remove
// it. It runs inside the fulfillment transaction, so a delivery that would
// take stock below zero rejects the whole fulfillment.
type FulfillmentStockHandler struct {
	repo   inventory.StockRepository
	logger *zap.Logger
}

// NewFulfillmentStockHandler creates a new FulfillmentStockHandler
func NewFulfillmentStockHandler(repo inventory.StockRepository, logger *zap.Logger) *FulfillmentStockHandler {
	return &FulfillmentStockHandler{repo: repo, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *FulfillmentStockHandler) EventTypes() []string {
	return []string{trade.EventTypeFulfillmentRecorded}
}

// Handle processes a FulfillmentRecordedEvent
func (h *FulfillmentStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	recorded, ok := event.(*trade.FulfillmentRecordedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", trade.EventTypeFulfillmentRecorded),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			trade.EventTypeFulfillmentRecorded, event.EventType())
	}

	txType := inventory.TransactionTypeReceipt
	if recorded.Kind == trade.OrderKindSale {
		txType = inventory.TransactionTypeDelivery
	}

	item, err := h.repo.FindOrCreateItem(ctx, recorded.WarehouseID, recorded.ProductID)
	if err != nil {
		return fmt.Errorf("load stock: %w", err)
	}
	note := fmt.Sprintf("%s %s", recorded.OrderNumber, recorded.Kind.FulfillmentName())
	tx, err := inventory.Apply(item, txType, recorded.Quantity, note)
	if err != nil {
		h.logger.Warn("stock movement rejected",
			zap.String("order_number", recorded.OrderNumber),
			zap.String("product_id", recorded.ProductID.String()),
			zap.String("warehouse_id", recorded.WarehouseID.String()),
			zap.Int64("quantity", recorded.Quantity),
			zap.Error(err),
		)
		return err
	}
	tx.OrderID = &recorded.OrderID
	tx.FulfillmentID = &recorded.FulfillmentID

	if err := h.repo.SaveWithTransactions(ctx, []*inventory.StockItem{item}, []*inventory.StockTransaction{tx}); err != nil {
		return fmt.Errorf("save stock: %w", err)
	}

	h.logger.Debug("stock moved",
		zap.String("type", string(txType)),
		zap.String("order_number", recorded.OrderNumber),
		zap.Int64("quantity", recorded.Quantity),
		zap.Int64("balance", item.Quantity),
	)
	return nil
}
