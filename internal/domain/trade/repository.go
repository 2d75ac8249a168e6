package trade

import (
	"context"

	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderFilter narrows order listings
type OrderFilter struct {
	shared.Filter
	Kind           OrderKind
	Status         OrderStatus
	CounterpartyID *uuid.UUID
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order with its lines by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by its number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindAll finds orders with filtering and pagination
	FindAll(ctx context.Context, filter OrderFilter) ([]Order, error)

	// Count counts orders matching the filter
	Count(ctx context.Context, filter OrderFilter) (int64, error)

	// Save creates or updates an order and its lines
	Save(ctx context.Context, order *Order) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, order *Order) error

	// Delete deletes a NEW order
	Delete(ctx context.Context, id uuid.UUID) error

	// GenerateOrderNumber generates a unique order number for the kind
	GenerateOrderNumber(ctx context.Context, kind OrderKind) (string, error)
}

// FulfillmentRepository persists receipt/delivery events
type FulfillmentRepository interface {
	// Create stores a fulfillment event
	Create(ctx context.Context, event *FulfillmentEvent) error

	// FindByOrder lists the events of an order, oldest first
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]FulfillmentEvent, error)

	// SummaryByOrder returns the aggregate fulfilled quantity per line
	SummaryByOrder(ctx context.Context, orderID uuid.UUID) (FulfillmentSummary, error)
}
