package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxFulfillmentNoteLength is the longest note accepted on a receipt or delivery
const MaxFulfillmentNoteLength = 500

// Validation codes raised by ValidateSubmission
const (
	CodeInvalidQuantity  = "INVALID_QUANTITY"
	CodeQuantityExceeded = "QUANTITY_EXCEEDED"
	CodeInvalidLine      = "INVALID_LINE"
	CodeInvalidWarehouse = "INVALID_WAREHOUSE"
	CodeInvalidNote      = "INVALID_NOTE"
)

// FulfillmentEvent is a recorded receipt (purchase orders) or delivery
// (sale orders) against exactly one order line
type FulfillmentEvent struct {
	ID          uuid.UUID `json:"id"`
	OrderID     uuid.UUID `json:"order_id"`
	LineID      uuid.UUID `json:"line_id"`
	WarehouseID uuid.UUID `json:"warehouse_id"`
	Quantity    int64     `json:"quantity"`
	Note        string    `json:"note,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// FulfillmentRequest is a proposed fulfillment event before validation
type FulfillmentRequest struct {
	OrderID     uuid.UUID
	LineID      uuid.UUID
	WarehouseID uuid.UUID
	Quantity    int64
	Note        string
}

// FulfillmentSummary maps a line ID to the aggregate quantity already
// received or delivered on that line
type FulfillmentSummary map[uuid.UUID]int64

// FulfilledFor returns the fulfilled quantity of a line, 0 when the line has no events
func (s FulfillmentSummary) FulfilledFor(lineID uuid.UUID) int64 {
	if s == nil {
		return 0
	}
	return s[lineID]
}

// Remainder returns the outstanding quantity of a line: max(ordered - fulfilled, 0).
// Negative inputs are treated as 0, so inconsistent upstream data never
// produces a negative remainder.
func Remainder(orderedQty, fulfilledQty int64) int64 {
	if orderedQty < 0 {
		orderedQty = 0
	}
	if fulfilledQty < 0 {
		fulfilledQty = 0
	}
	if fulfilledQty >= orderedQty {
		return 0
	}
	return orderedQty - fulfilledQty
}

// ValidateSubmission checks a proposed fulfillment against the line's current
// remainder and returns the normalized event ready to be sent.
// It is synchronous and side-effect free; the server re-validates independently.
func ValidateSubmission(req FulfillmentRequest, remainder int64) (FulfillmentEvent, error) {
	if req.Quantity <= 0 {
		return FulfillmentEvent{}, shared.NewValidationError("quantity", CodeInvalidQuantity,
			"Quantity must be a positive integer")
	}
	if req.Quantity > remainder {
		return FulfillmentEvent{}, shared.NewValidationError("quantity", CodeQuantityExceeded,
			fmt.Sprintf("Quantity %d exceeds the remaining %d", req.Quantity, Remainder(remainder, 0)))
	}
	if req.LineID == uuid.Nil {
		return FulfillmentEvent{}, shared.NewValidationError("line_id", CodeInvalidLine,
			"Order line is required")
	}
	if req.WarehouseID == uuid.Nil {
		return FulfillmentEvent{}, shared.NewValidationError("warehouse_id", CodeInvalidWarehouse,
			"Warehouse is required")
	}
	note := strings.TrimSpace(req.Note)
	if len([]rune(note)) > MaxFulfillmentNoteLength {
		return FulfillmentEvent{}, shared.NewValidationError("note", CodeInvalidNote,
			fmt.Sprintf("Note must be at most %d characters", MaxFulfillmentNoteLength))
	}

	return FulfillmentEvent{
		ID:          uuid.New(),
		OrderID:     req.OrderID,
		LineID:      req.LineID,
		WarehouseID: req.WarehouseID,
		Quantity:    req.Quantity,
		Note:        note,
		RecordedAt:  time.Now(),
	}, nil
}

// Total returns the order amount in whole yen: the sum of ordered quantity × unit price
func Total(lines []OrderLine) int64 {
	var total int64
	for _, line := range lines {
		total += line.Amount()
	}
	return total
}

// IsFullyFulfilled returns true iff every line has a remainder of 0.
// A line set with no lines has nothing outstanding and reports true.
func IsFullyFulfilled(lines []OrderLine) bool {
	for _, line := range lines {
		if line.Remainder() > 0 {
			return false
		}
	}
	return true
}

// OutstandingQuantity returns the sum of remainders across lines
func OutstandingQuantity(lines []OrderLine) int64 {
	var total int64
	for _, line := range lines {
		total += line.Remainder()
	}
	return total
}

// OrderedQuantity returns the sum of ordered quantities across lines
func OrderedQuantity(lines []OrderLine) int64 {
	var total int64
	for _, line := range lines {
		total += line.OrderedQuantity
	}
	return total
}

// FulfilledQuantity returns the aggregate received/delivered quantity, capped per line at the ordered quantity
func FulfilledQuantity(lines []OrderLine) int64 {
	var total int64
	for _, line := range lines {
		total += line.OrderedQuantity - line.Remainder()
	}
	return total
}

// Progress returns the fulfillment progress as a percentage (0-100, 2dp)
func Progress(lines []OrderLine) decimal.Decimal {
	ordered := OrderedQuantity(lines)
	if ordered <= 0 {
		return decimal.Zero
	}
	fulfilled := decimal.NewFromInt(FulfilledQuantity(lines))
	return fulfilled.Div(decimal.NewFromInt(ordered)).Mul(decimal.NewFromInt(100)).Round(2)
}

// ApplySummary copies the server's aggregate fulfilled quantities onto the lines.
// Lines missing from the summary have no events and get 0.
func ApplySummary(lines []OrderLine, summary FulfillmentSummary) {
	for i := range lines {
		lines[i].FulfilledQuantity = summary.FulfilledFor(lines[i].ID)
	}
}
