package trade

import (
	"time"

	"github.com/erp/orderdesk/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLineResponse is one line of an order
type OrderLineResponse struct {
	ID              uuid.UUID `json:"id"`
	ProductID       uuid.UUID `json:"product_id"`
	ProductName     string    `json:"product_name"`
	SKU             string    `json:"sku"`
	OrderedQuantity int64     `json:"ordered_quantity"`
	UnitPrice       int64     `json:"unit_price"`
	Amount          int64     `json:"amount"`
	Remark          string    `json:"remark,omitempty"`
}

// OrderResponse is the order payload. Fulfilled quantities are served by
// the fulfillment summary endpoint.
type OrderResponse struct {
	ID               uuid.UUID           `json:"id"`
	Kind             string              `json:"kind"`
	OrderNumber      string              `json:"order_number"`
	CounterpartyID   uuid.UUID           `json:"counterparty_id"`
	CounterpartyName string              `json:"counterparty_name"`
	Status           string              `json:"status"`
	Description      string              `json:"description"`
	TotalAmount      int64               `json:"total_amount"`
	LineCount        int                 `json:"line_count"`
	Lines            []OrderLineResponse `json:"lines"`
	Version          int                 `json:"version"`
	OrderedAt        time.Time           `json:"ordered_at"`
	PlacedAt         *time.Time          `json:"placed_at,omitempty"`
	CompletedAt      *time.Time          `json:"completed_at,omitempty"`
	CancelledAt      *time.Time          `json:"cancelled_at,omitempty"`
	CancelReason     string              `json:"cancel_reason,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// ToOrderResponse converts an order to its payload
func ToOrderResponse(o *trade.Order) OrderResponse {
	lines := make([]OrderLineResponse, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = OrderLineResponse{
			ID:              l.ID,
			ProductID:       l.ProductID,
			ProductName:     l.ProductName,
			SKU:             l.SKU,
			OrderedQuantity: l.OrderedQuantity,
			UnitPrice:       l.UnitPrice,
			Amount:          l.Amount(),
			Remark:          l.Remark,
		}
	}
	return OrderResponse{
		ID:               o.ID,
		Kind:             string(o.Kind),
		OrderNumber:      o.OrderNumber,
		CounterpartyID:   o.CounterpartyID,
		CounterpartyName: o.CounterpartyName,
		Status:           string(o.Status),
		Description:      o.Description,
		TotalAmount:      o.Total(),
		LineCount:        len(o.Lines),
		Lines:            lines,
		Version:          o.Version,
		OrderedAt:        o.OrderedAt,
		PlacedAt:         o.PlacedAt,
		CompletedAt:      o.CompletedAt,
		CancelledAt:      o.CancelledAt,
		CancelReason:     o.CancelReason,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

// ToOrderResponses converts a slice of orders
func ToOrderResponses(orders []trade.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = ToOrderResponse(&orders[i])
	}
	return out
}

// LineSummaryResponse is the fulfillment state of one line
type LineSummaryResponse struct {
	LineID            uuid.UUID `json:"line_id"`
	OrderedQuantity   int64     `json:"ordered_quantity"`
	FulfilledQuantity int64     `json:"fulfilled_quantity"`
	Remainder         int64     `json:"remainder"`
}

// FulfillmentSummaryResponse is the payload of the fulfillment summary endpoint
type FulfillmentSummaryResponse struct {
	OrderID        uuid.UUID             `json:"order_id"`
	Status         string                `json:"status"`
	Lines          []LineSummaryResponse `json:"lines"`
	Outstanding    int64                 `json:"outstanding_quantity"`
	Progress       decimal.Decimal       `json:"progress"`
	FullyFulfilled bool                  `json:"fully_fulfilled"`
}

// ToSummaryResponse builds the summary of an order whose lines carry the
// aggregate fulfilled quantities
func ToSummaryResponse(o *trade.Order) FulfillmentSummaryResponse {
	lines := make([]LineSummaryResponse, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = LineSummaryResponse{
			LineID:            l.ID,
			OrderedQuantity:   l.OrderedQuantity,
			FulfilledQuantity: l.FulfilledQuantity,
			Remainder:         l.Remainder(),
		}
	}
	return FulfillmentSummaryResponse{
		OrderID:        o.ID,
		Status:         string(o.Status),
		Lines:          lines,
		Outstanding:    trade.OutstandingQuantity(o.Lines),
		Progress:       trade.Progress(o.Lines),
		FullyFulfilled: o.IsFullyFulfilled(),
	}
}

// FulfillmentResponse is one recorded receipt or delivery
type FulfillmentResponse struct {
	ID          uuid.UUID `json:"id"`
	OrderID     uuid.UUID `json:"order_id"`
	LineID      uuid.UUID `json:"line_id"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
	Quantity    int64     `json:"quantity"`
	Note        string    `json:"note,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// ToFulfillmentResponse converts a fulfillment event
func ToFulfillmentResponse(e *trade.FulfillmentEvent) FulfillmentResponse {
	return FulfillmentResponse{
		ID:          e.ID,
		OrderID:     e.OrderID,
		LineID:      e.LineID,
		WarehouseID: e.WarehouseID,
		Quantity:    e.Quantity,
		Note:        e.Note,
		RecordedAt:  e.RecordedAt,
	}
}

// FulfillmentResultResponse answers a recorded fulfillment. OrderStatus is
// the status the server moved the order to. Replayed marks an answer
// repeated for a retried Idempotency-Key; nothing was recorded again.
type FulfillmentResultResponse struct {
	Fulfillment FulfillmentResponse `json:"fulfillment"`
	OrderStatus string              `json:"order_status"`
	Remainder   int64               `json:"remainder"`
	Replayed    bool                `json:"replayed"`
}

// OrderListFilter filters the order list
type OrderListFilter struct {
	Page           int
	PageSize       int
	OrderBy        string
	OrderDir       string
	Search         string
	Kind           trade.OrderKind
	Status         trade.OrderStatus
	CounterpartyID *uuid.UUID
	OrderedFrom    *time.Time
	OrderedTo      *time.Time
}
