package trade

import (
	"context"

	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/erp/orderdesk/internal/domain/trade"
)

// TransitionRecorder counts order status changes and fulfillments
type TransitionRecorder interface {
	RecordFulfillment(kind string, quantity int64)
	RecordTransition(kind, status string)
}

// OrderMetricsHandler turns order events into metrics
type OrderMetricsHandler struct {
	recorder TransitionRecorder
}

// NewOrderMetricsHandler creates a new OrderMetricsHandler
func NewOrderMetricsHandler(recorder TransitionRecorder) *OrderMetricsHandler {
	return &OrderMetricsHandler{recorder: recorder}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderMetricsHandler) EventTypes() []string {
	return []string{
		trade.EventTypeOrderPlaced,
		trade.EventTypeFulfillmentRecorded,
		trade.EventTypeOrderCompleted,
		trade.EventTypeOrderCancelled,
	}
}

// Handle records the event. Unknown events are ignored.
func (h *OrderMetricsHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *trade.OrderPlacedEvent:
		h.recorder.RecordTransition(string(e.Kind), string(trade.OrderStatusPending))
	case *trade.FulfillmentRecordedEvent:
		h.recorder.RecordFulfillment(string(e.Kind), e.Quantity)
	case *trade.OrderCompletedEvent:
		h.recorder.RecordTransition(string(e.Kind), string(trade.OrderStatusCompleted))
	case *trade.OrderCancelledEvent:
		h.recorder.RecordTransition(string(e.Kind), string(trade.OrderStatusCancelled))
	}
	return nil
}
