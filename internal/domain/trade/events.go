package trade

import (
	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/google/uuid"
)

// AggregateTypeOrder is the aggregate type recorded on order events
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderPlaced         = "OrderPlaced"
	EventTypeFulfillmentRecorded = "FulfillmentRecorded"
	EventTypeOrderCompleted      = "OrderCompleted"
	EventTypeOrderCancelled      = "OrderCancelled"
)

// OrderPlacedEvent is raised when an order leaves NEW
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID `json:"order_id"`
	OrderNumber    string    `json:"order_number"`
	Kind           OrderKind `json:"kind"`
	CounterpartyID uuid.UUID `json:"counterparty_id"`
	TotalAmount    int64     `json:"total_amount"`
	LineCount      int       `json:"line_count"`
}

// NewOrderPlacedEvent creates a new OrderPlacedEvent
func NewOrderPlacedEvent(order *Order) *OrderPlacedEvent {
	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderPlaced, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		Kind:            order.Kind,
		CounterpartyID:  order.CounterpartyID,
		TotalAmount:     order.Total(),
		LineCount:       len(order.Lines),
	}
}

// FulfillmentRecordedEvent is raised for every receipt or delivery.
// Stock handlers use it to move inventory.
type FulfillmentRecordedEvent struct {
	shared.BaseDomainEvent
	OrderID       uuid.UUID `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	Kind          OrderKind `json:"kind"`
	FulfillmentID uuid.UUID `json:"fulfillment_id"`
	LineID        uuid.UUID `json:"line_id"`
	ProductID     uuid.UUID `json:"product_id"`
	ProductName   string    `json:"product_name"`
	WarehouseID   uuid.UUID `json:"warehouse_id"`
	Quantity      int64     `json:"quantity"`
	UnitPrice     int64     `json:"unit_price"`
	Remainder     int64     `json:"remainder"`
}

// NewFulfillmentRecordedEvent creates a new FulfillmentRecordedEvent
func NewFulfillmentRecordedEvent(order *Order, line *OrderLine, event *FulfillmentEvent) *FulfillmentRecordedEvent {
	return &FulfillmentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFulfillmentRecorded, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		Kind:            order.Kind,
		FulfillmentID:   event.ID,
		LineID:          line.ID,
		ProductID:       line.ProductID,
		ProductName:     line.ProductName,
		WarehouseID:     event.WarehouseID,
		Quantity:        event.Quantity,
		UnitPrice:       line.UnitPrice,
		Remainder:       line.Remainder(),
	}
}

// OrderCompletedEvent is raised when every line reaches remainder 0
type OrderCompletedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Kind        OrderKind `json:"kind"`
	TotalAmount int64     `json:"total_amount"`
}

// NewOrderCompletedEvent creates a new OrderCompletedEvent
func NewOrderCompletedEvent(order *Order) *OrderCompletedEvent {
	return &OrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCompleted, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		Kind:            order.Kind,
		TotalAmount:     order.Total(),
	}
}

// OrderCancelledEvent is raised when an order is cancelled
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID      uuid.UUID `json:"order_id"`
	OrderNumber  string    `json:"order_number"`
	Kind         OrderKind `json:"kind"`
	CancelReason string    `json:"cancel_reason"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(order *Order) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, AggregateTypeOrder, order.ID),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		Kind:            order.Kind,
		CancelReason:    order.CancelReason,
	}
}
