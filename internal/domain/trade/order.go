package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderKind distinguishes purchase orders (fulfilled by receipts) from
// sale orders (fulfilled by deliveries)
type OrderKind string

const (
	OrderKindPurchase OrderKind = "PURCHASE"
	OrderKindSale     OrderKind = "SALE"
)

// IsValid checks if the kind is a known OrderKind
func (k OrderKind) IsValid() bool {
	return k == OrderKindPurchase || k == OrderKindSale
}

// String returns the string representation of OrderKind
func (k OrderKind) String() string {
	return string(k)
}

// FulfillmentName returns the user-facing name of a fulfillment for this kind
func (k OrderKind) FulfillmentName() string {
	if k == OrderKindSale {
		return "delivery"
	}
	return "receipt"
}

// NumberPrefix returns the order number prefix (PO or SO)
func (k OrderKind) NumberPrefix() string {
	if k == OrderKindSale {
		return "SO"
	}
	return "PO"
}

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "NEW"
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusNew, OrderStatusPending, OrderStatusProcessing,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsEditable returns true if lines and description may still change
func (s OrderStatus) IsEditable() bool {
	return s == OrderStatusNew
}

// CanFulfill returns true if receipts/deliveries may be recorded in this status
func (s OrderStatus) CanFulfill() bool {
	return s == OrderStatusPending || s == OrderStatusProcessing
}

// IsTerminal returns true for COMPLETED and CANCELLED
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusNew:
		return target == OrderStatusPending || target == OrderStatusCancelled
	case OrderStatusPending:
		return target == OrderStatusProcessing || target == OrderStatusCompleted || target == OrderStatusCancelled
	case OrderStatusProcessing:
		return target == OrderStatusProcessing || target == OrderStatusCompleted
	case OrderStatusCompleted, OrderStatusCancelled:
		return false
	}
	return false
}

// OrderLine is one product/quantity/price entry of an order
type OrderLine struct {
	ID                uuid.UUID
	OrderID           uuid.UUID
	ProductID         uuid.UUID
	ProductName       string
	SKU               string
	OrderedQuantity   int64
	UnitPrice         int64 // whole yen
	FulfilledQuantity int64 // aggregate received/delivered, maintained by the server
	Remark            string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// LineInput describes a line to add to an order
type LineInput struct {
	ProductID   uuid.UUID
	ProductName string
	SKU         string
	Quantity    int64
	UnitPrice   int64
	Remark      string
}

// NewOrderLine creates a new order line
func NewOrderLine(orderID uuid.UUID, in LineInput) (*OrderLine, error) {
	if in.ProductID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if strings.TrimSpace(in.ProductName) == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if in.Quantity <= 0 {
		return nil, shared.NewDomainError(CodeInvalidQuantity, "Quantity must be positive")
	}
	if in.UnitPrice <= 0 {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price must be positive")
	}

	now := time.Now()
	return &OrderLine{
		ID:              uuid.New(),
		OrderID:         orderID,
		ProductID:       in.ProductID,
		ProductName:     strings.TrimSpace(in.ProductName),
		SKU:             strings.TrimSpace(in.SKU),
		OrderedQuantity: in.Quantity,
		UnitPrice:       in.UnitPrice,
		Remark:          in.Remark,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// Amount returns ordered quantity × unit price
func (l *OrderLine) Amount() int64 {
	return l.OrderedQuantity * l.UnitPrice
}

// Remainder returns the quantity still to be received or delivered
func (l *OrderLine) Remainder() int64 {
	return Remainder(l.OrderedQuantity, l.FulfilledQuantity)
}

// IsFullyFulfilled returns true if nothing is outstanding on the line
func (l *OrderLine) IsFullyFulfilled() bool {
	return l.Remainder() == 0
}

// Order is the aggregate root for purchase and sale orders
type Order struct {
	shared.BaseAggregateRoot
	Kind             OrderKind
	OrderNumber      string
	CounterpartyID   uuid.UUID // supplier for purchases, customer for sales
	CounterpartyName string
	Status           OrderStatus
	Description      string
	OrderedAt        time.Time
	Lines            []OrderLine
	PlacedAt         *time.Time
	CompletedAt      *time.Time
	CancelledAt      *time.Time
	CancelReason     string
}

// NewOrder creates a new order in NEW status
func NewOrder(kind OrderKind, orderNumber string, counterpartyID uuid.UUID, counterpartyName string) (*Order, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Order kind must be PURCHASE or SALE")
	}
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if counterpartyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COUNTERPARTY", "Supplier or customer ID cannot be empty")
	}
	if strings.TrimSpace(counterpartyName) == "" {
		return nil, shared.NewDomainError("INVALID_COUNTERPARTY_NAME", "Supplier or customer name cannot be empty")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Kind:              kind,
		OrderNumber:       orderNumber,
		CounterpartyID:    counterpartyID,
		CounterpartyName:  strings.TrimSpace(counterpartyName),
		Status:            OrderStatusNew,
		Lines:             make([]OrderLine, 0),
	}
	order.OrderedAt = order.CreatedAt

	return order, nil
}

// AddLine adds a new line. Only allowed in NEW status.
func (o *Order) AddLine(in LineInput) (*OrderLine, error) {
	if !o.Status.IsEditable() {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add lines to an order that has been placed")
	}
	for _, line := range o.Lines {
		if line.ProductID == in.ProductID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already exists in order, update quantity instead")
		}
	}

	line, err := NewOrderLine(o.ID, in)
	if err != nil {
		return nil, err
	}

	o.Lines = append(o.Lines, *line)
	o.touch()
	return &o.Lines[len(o.Lines)-1], nil
}

// UpdateLineQuantity changes the ordered quantity of a line. Only allowed in NEW status.
func (o *Order) UpdateLineQuantity(lineID uuid.UUID, quantity int64) error {
	if !o.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATE", "Ordered quantity cannot change once the order is placed")
	}
	if quantity <= 0 {
		return shared.NewDomainError(CodeInvalidQuantity, "Quantity must be positive")
	}
	line := o.GetLine(lineID)
	if line == nil {
		return shared.NewDomainError("LINE_NOT_FOUND", "Order line not found")
	}

	line.OrderedQuantity = quantity
	line.UpdatedAt = time.Now()
	o.touch()
	return nil
}

// RemoveLine removes a line. Only allowed in NEW status.
func (o *Order) RemoveLine(lineID uuid.UUID) error {
	if !o.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove lines from an order that has been placed")
	}
	for idx, line := range o.Lines {
		if line.ID == lineID {
			o.Lines = append(o.Lines[:idx], o.Lines[idx+1:]...)
			o.touch()
			return nil
		}
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Order line not found")
}

// SetDescription sets the free-text description. Only allowed in NEW status.
func (o *Order) SetDescription(description string) error {
	if !o.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATE", "Cannot edit an order that has been placed")
	}
	o.Description = description
	o.touch()
	return nil
}

// ApplyUpdate applies a validated draft edit (description and line quantities)
func (o *Order) ApplyUpdate(update OrderUpdate) error {
	if !o.Status.IsEditable() {
		return shared.NewDomainError("INVALID_STATE", "Cannot edit an order that has been placed")
	}
	// Validate everything before mutating so a rejected update leaves the order intact
	for _, lu := range update.Lines {
		if o.GetLine(lu.LineID) == nil {
			return shared.NewDomainError("LINE_NOT_FOUND", fmt.Sprintf("Order line %s not found", lu.LineID))
		}
		if lu.Quantity <= 0 {
			return shared.NewDomainError(CodeInvalidQuantity, "Quantity must be positive")
		}
	}
	for _, lu := range update.Lines {
		line := o.GetLine(lu.LineID)
		line.OrderedQuantity = lu.Quantity
		line.UpdatedAt = time.Now()
	}
	o.Description = update.Description
	o.touch()
	return nil
}

// Place submits the order: NEW -> PENDING. Requires at least one line.
func (o *Order) Place() error {
	if !o.Status.CanTransitionTo(OrderStatusPending) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot place order in %s status", o.Status))
	}
	if len(o.Lines) == 0 {
		return shared.NewDomainError("NO_LINES", "Cannot place an order without lines")
	}

	now := time.Now()
	o.Status = OrderStatusPending
	o.PlacedAt = &now
	o.touch()

	o.AddDomainEvent(NewOrderPlacedEvent(o))
	return nil
}

// Fulfill records a receipt or delivery against one line. The request is
// re-validated against the line's current remainder; the order moves to
// PROCESSING, or COMPLETED once every line is fully fulfilled.
func (o *Order) Fulfill(req FulfillmentRequest) (*FulfillmentEvent, error) {
	if !o.Status.CanFulfill() {
		return nil, shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot record a %s for order in %s status", o.Kind.FulfillmentName(), o.Status))
	}
	line := o.GetLine(req.LineID)
	if line == nil {
		return nil, shared.NewDomainError("LINE_NOT_FOUND", "Order line not found")
	}

	req.OrderID = o.ID
	event, err := ValidateSubmission(req, line.Remainder())
	if err != nil {
		return nil, err
	}

	line.FulfilledQuantity += event.Quantity
	line.UpdatedAt = event.RecordedAt

	o.AddDomainEvent(NewFulfillmentRecordedEvent(o, line, &event))

	if IsFullyFulfilled(o.Lines) {
		o.Status = OrderStatusCompleted
		o.CompletedAt = &event.RecordedAt
		o.AddDomainEvent(NewOrderCompletedEvent(o))
	} else {
		o.Status = OrderStatusProcessing
	}
	o.touch()

	return &event, nil
}

// Cancel cancels the order. Not allowed once anything has been received or delivered.
func (o *Order) Cancel(reason string) error {
	if !o.Status.CanTransitionTo(OrderStatusCancelled) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}
	if FulfilledQuantity(o.Lines) > 0 {
		return shared.NewDomainError("ALREADY_FULFILLED",
			fmt.Sprintf("Cannot cancel order after a %s has been recorded", o.Kind.FulfillmentName()))
	}

	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.touch()

	o.AddDomainEvent(NewOrderCancelledEvent(o))
	return nil
}

// ApplySummary sets each line's fulfilled quantity from a server summary
func (o *Order) ApplySummary(summary FulfillmentSummary) {
	ApplySummary(o.Lines, summary)
}

// Summary returns the fulfilled quantity per line
func (o *Order) Summary() FulfillmentSummary {
	summary := make(FulfillmentSummary, len(o.Lines))
	for _, line := range o.Lines {
		summary[line.ID] = line.FulfilledQuantity
	}
	return summary
}

// Total returns the order amount in whole yen
func (o *Order) Total() int64 {
	return Total(o.Lines)
}

// IsFullyFulfilled returns true if every line has been fully received/delivered
func (o *Order) IsFullyFulfilled() bool {
	return IsFullyFulfilled(o.Lines)
}

// GetLine returns a line by its ID
func (o *Order) GetLine(lineID uuid.UUID) *OrderLine {
	for idx := range o.Lines {
		if o.Lines[idx].ID == lineID {
			return &o.Lines[idx]
		}
	}
	return nil
}

// LineCount returns the number of lines
func (o *Order) LineCount() int {
	return len(o.Lines)
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}
