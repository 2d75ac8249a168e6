package remote

import (
	"time"

	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/erp/orderdesk/internal/domain/trade"
	"github.com/google/uuid"
)

// Order is the order payload of GET /orders/:id
type Order struct {
	ID               uuid.UUID   `json:"id" validate:"required"`
	Kind             string      `json:"kind" validate:"oneof=PURCHASE SALE"`
	OrderNumber      string      `json:"order_number" validate:"required"`
	CounterpartyID   uuid.UUID   `json:"counterparty_id" validate:"required"`
	CounterpartyName string      `json:"counterparty_name"`
	Status           string      `json:"status" validate:"oneof=NEW PENDING PROCESSING COMPLETED CANCELLED"`
	Description      string      `json:"description"`
	TotalAmount      int64       `json:"total_amount" validate:"gte=0"`
	Lines            []OrderLine `json:"lines" validate:"dive"`
	Version          int         `json:"version" validate:"gte=1"`
	OrderedAt        time.Time   `json:"ordered_at"`
	PlacedAt         *time.Time  `json:"placed_at,omitempty"`
	CompletedAt      *time.Time  `json:"completed_at,omitempty"`
	CancelledAt      *time.Time  `json:"cancelled_at,omitempty"`
	CancelReason     string      `json:"cancel_reason,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// OrderLine is one line of an Order payload
type OrderLine struct {
	ID              uuid.UUID `json:"id" validate:"required"`
	ProductID       uuid.UUID `json:"product_id" validate:"required"`
	ProductName     string    `json:"product_name" validate:"required"`
	SKU             string    `json:"sku"`
	OrderedQuantity int64     `json:"ordered_quantity" validate:"gte=0"`
	UnitPrice       int64     `json:"unit_price" validate:"gte=0"`
	Amount          int64     `json:"amount"`
	Remark          string    `json:"remark,omitempty"`
}

// ToDomain converts the payload to a trade.Order. Fulfilled quantities are
// not part of the order payload; apply a FulfillmentSummary afterwards.
func (o Order) ToDomain() *trade.Order {
	order := &trade.Order{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{ID: o.ID, CreatedAt: o.CreatedAt, UpdatedAt: o.UpdatedAt},
			Version:    o.Version,
		},
		Kind:             trade.OrderKind(o.Kind),
		OrderNumber:      o.OrderNumber,
		CounterpartyID:   o.CounterpartyID,
		CounterpartyName: o.CounterpartyName,
		Status:           trade.OrderStatus(o.Status),
		Description:      o.Description,
		OrderedAt:        o.OrderedAt,
		PlacedAt:         o.PlacedAt,
		CompletedAt:      o.CompletedAt,
		CancelledAt:      o.CancelledAt,
		CancelReason:     o.CancelReason,
		Lines:            make([]trade.OrderLine, 0, len(o.Lines)),
	}
	for _, l := range o.Lines {
		order.Lines = append(order.Lines, trade.OrderLine{
			ID:              l.ID,
			OrderID:         o.ID,
			ProductID:       l.ProductID,
			ProductName:     l.ProductName,
			SKU:             l.SKU,
			OrderedQuantity: l.OrderedQuantity,
			UnitPrice:       l.UnitPrice,
			Remark:          l.Remark,
		})
	}
	return order
}

// FulfillmentSummary is the payload of GET /orders/:id/fulfillment-summary
type FulfillmentSummary struct {
	OrderID uuid.UUID         `json:"order_id" validate:"required"`
	Lines   []LineFulfillment `json:"lines" validate:"dive"`
}

// LineFulfillment is the aggregate fulfilled quantity of one line
type LineFulfillment struct {
	LineID            uuid.UUID `json:"line_id" validate:"required"`
	FulfilledQuantity int64     `json:"fulfilled_quantity" validate:"gte=0"`
}

// ToDomain converts the payload to a line -> quantity map
func (s FulfillmentSummary) ToDomain() trade.FulfillmentSummary {
	out := make(trade.FulfillmentSummary, len(s.Lines))
	for _, l := range s.Lines {
		out[l.LineID] += l.FulfilledQuantity
	}
	return out
}

// FulfillmentInput is the body of POST /orders/:id/fulfillments
type FulfillmentInput struct {
	LineID      uuid.UUID `json:"line_id"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
	Quantity    int64     `json:"quantity"`
	Note        string    `json:"note,omitempty"`
}

// FulfillmentResult is the server's answer to a recorded fulfillment.
// OrderStatus is authoritative; the client never derives it.
type FulfillmentResult struct {
	Fulfillment Fulfillment `json:"fulfillment"`
	OrderStatus string      `json:"order_status" validate:"oneof=PENDING PROCESSING COMPLETED"`
	Remainder   int64       `json:"remainder" validate:"gte=0"`
	Replayed    bool        `json:"replayed"`
}

// Fulfillment is one recorded receipt or delivery
type Fulfillment struct {
	ID          uuid.UUID `json:"id" validate:"required"`
	OrderID     uuid.UUID `json:"order_id" validate:"required"`
	LineID      uuid.UUID `json:"line_id" validate:"required"`
	WarehouseID uuid.UUID `json:"warehouse_id" validate:"required"`
	Quantity    int64     `json:"quantity" validate:"gt=0"`
	Note        string    `json:"note,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// OrderQuery filters GET /orders
type OrderQuery struct {
	Kind     string
	Status   string
	Search   string
	Page     int
	PageSize int
}

// Page is one page of a list endpoint
type Page[T any] struct {
	Items []T
	Meta  PageMeta
}

// Category is a product category
type Category struct {
	ID          uuid.UUID `json:"id" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	Status      string    `json:"status" validate:"oneof=active inactive"`
}

// Product is a catalog product
type Product struct {
	ID          uuid.UUID  `json:"id" validate:"required"`
	SKU         string     `json:"sku" validate:"required"`
	Name        string     `json:"name" validate:"required"`
	CategoryID  uuid.UUID  `json:"category_id" validate:"required"`
	SupplierID  *uuid.UUID `json:"supplier_id,omitempty"`
	UnitPrice   int64      `json:"unit_price" validate:"gte=0"`
	UnitCost    int64      `json:"unit_cost" validate:"gte=0"`
	Description string     `json:"description"`
	Status      string     `json:"status" validate:"oneof=active inactive"`
}

// Partner is a supplier or a customer
type Partner struct {
	ID          uuid.UUID `json:"id" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	ContactName string    `json:"contact_name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	PostalCode  string    `json:"postal_code"`
	Address     string    `json:"address"`
	Notes       string    `json:"notes"`
	Status      string    `json:"status" validate:"oneof=active inactive"`
}

// Warehouse is a stock location
type Warehouse struct {
	ID       uuid.UUID `json:"id" validate:"required"`
	Name     string    `json:"name" validate:"required"`
	Location string    `json:"location"`
	Status   string    `json:"status" validate:"oneof=active inactive"`
}

// StockItem is the on-hand quantity of a product in a warehouse
type StockItem struct {
	ID          uuid.UUID `json:"id" validate:"required"`
	WarehouseID uuid.UUID `json:"warehouse_id" validate:"required"`
	ProductID   uuid.UUID `json:"product_id" validate:"required"`
	Quantity    int64     `json:"quantity" validate:"gte=0"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StockTransaction is a stock ledger entry
type StockTransaction struct {
	ID           uuid.UUID  `json:"id" validate:"required"`
	Type         string     `json:"type" validate:"oneof=RECEIPT DELIVERY TRANSFER_IN TRANSFER_OUT"`
	WarehouseID  uuid.UUID  `json:"warehouse_id" validate:"required"`
	ProductID    uuid.UUID  `json:"product_id" validate:"required"`
	Quantity     int64      `json:"quantity" validate:"gt=0"`
	BalanceAfter int64      `json:"balance_after" validate:"gte=0"`
	OrderID      *uuid.UUID `json:"order_id,omitempty"`
	Note         string     `json:"note,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// User is an account of the order desk
type User struct {
	ID          uuid.UUID `json:"id" validate:"required"`
	Username    string    `json:"username" validate:"required"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role" validate:"oneof=admin staff viewer"`
	Status      string    `json:"status" validate:"oneof=active deactivated"`
}
