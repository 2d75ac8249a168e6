package trade

import (
	"fmt"
	"strings"

	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxDescriptionLength bounds the free-text order description
const MaxDescriptionLength = 1000

// LineUpdate changes the ordered quantity of one existing line
type LineUpdate struct {
	LineID   uuid.UUID `json:"line_id"`
	Quantity int64     `json:"quantity"`
}

// OrderUpdate is the payload of an order edit while the order is NEW
type OrderUpdate struct {
	Description string       `json:"description"`
	Lines       []LineUpdate `json:"lines"`
	Version     int          `json:"version"`
}

// OrderDraft is a local, unsaved copy of an order being edited before it is
// placed. Nothing is persisted until the caller saves ToUpdate().
type OrderDraft struct {
	OrderID     uuid.UUID
	Status      OrderStatus
	Description string
	Lines       []OrderLine
	Version     int
	dirty       bool
}

// NewDraft copies an order into an editable draft
func NewDraft(order *Order) *OrderDraft {
	lines := make([]OrderLine, len(order.Lines))
	copy(lines, order.Lines)
	return &OrderDraft{
		OrderID:     order.ID,
		Status:      order.Status,
		Description: order.Description,
		Lines:       lines,
		Version:     order.Version,
	}
}

// IsReadOnly returns true once the order has left NEW
func (d *OrderDraft) IsReadOnly() bool {
	return !d.Status.IsEditable()
}

// IsDirty returns true if the draft has unsaved edits
func (d *OrderDraft) IsDirty() bool {
	return d.dirty
}

// SetQuantity edits a line quantity in place. Any value is accepted here so
// the running total can follow the input; Validate reports bad quantities.
func (d *OrderDraft) SetQuantity(lineID uuid.UUID, quantity int64) error {
	if d.IsReadOnly() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Order is %s and can no longer be edited", d.Status))
	}
	for i := range d.Lines {
		if d.Lines[i].ID == lineID {
			d.Lines[i].OrderedQuantity = quantity
			d.dirty = true
			return nil
		}
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Order line not found")
}

// SetDescription edits the description
func (d *OrderDraft) SetDescription(description string) error {
	if d.IsReadOnly() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Order is %s and can no longer be edited", d.Status))
	}
	d.Description = description
	d.dirty = true
	return nil
}

// Total returns the running total of the draft
func (d *OrderDraft) Total() int64 {
	return Total(d.Lines)
}

// Validate checks the whole line set and returns per-field help text.
// Field paths look like "lines[0].quantity".
func (d *OrderDraft) Validate() shared.FieldErrors {
	errs := shared.FieldErrors{}
	if d.IsReadOnly() {
		errs.Add("status", fmt.Sprintf("Order is %s and can no longer be edited", d.Status))
		return errs
	}
	if len(d.Lines) == 0 {
		errs.Add("lines", "At least one line is required")
	}
	if len([]rune(d.Description)) > MaxDescriptionLength {
		errs.Add("description", fmt.Sprintf("Description must be at most %d characters", MaxDescriptionLength))
	}
	for i, line := range d.Lines {
		prefix := fmt.Sprintf("lines[%d]", i)
		if line.OrderedQuantity <= 0 {
			errs.Add(prefix+".quantity", "Quantity must be a positive integer")
		}
		if line.ProductID == uuid.Nil || strings.TrimSpace(line.ProductName) == "" {
			errs.Add(prefix+".product", "Product is required")
		}
		if line.UnitPrice <= 0 {
			errs.Add(prefix+".unit_price", "Unit price must be a positive integer")
		}
	}
	return errs
}

// ToUpdate builds the update payload for the remote mutation.
// Callers must check Validate first.
func (d *OrderDraft) ToUpdate() OrderUpdate {
	lines := make([]LineUpdate, len(d.Lines))
	for i, line := range d.Lines {
		lines[i] = LineUpdate{LineID: line.ID, Quantity: line.OrderedQuantity}
	}
	return OrderUpdate{
		Description: strings.TrimSpace(d.Description),
		Lines:       lines,
		Version:     d.Version,
	}
}
