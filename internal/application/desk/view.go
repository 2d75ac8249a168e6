package desk

import (
	"github.com/erp/orderdesk/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineView is one order line with its reconciliation figures
type LineView struct {
	LineID    uuid.UUID
	ProductID uuid.UUID
	Product   string
	SKU       string
	Ordered   int64
	Fulfilled int64
	Remainder int64
	UnitPrice int64
	Amount    int64
}

// OrderView is an order as the desk shows it: the server's order with the
// fulfillment summary applied
type OrderView struct {
	Order          *trade.Order
	Lines          []LineView
	Total          int64
	Outstanding    int64
	FullyFulfilled bool
	Progress       decimal.Decimal
}

// Line returns the view of one line, or nil
func (v *OrderView) Line(lineID uuid.UUID) *LineView {
	for i := range v.Lines {
		if v.Lines[i].LineID == lineID {
			return &v.Lines[i]
		}
	}
	return nil
}

func newOrderView(order *trade.Order, summary trade.FulfillmentSummary) *OrderView {
	trade.ApplySummary(order.Lines, summary)

	lines := make([]LineView, len(order.Lines))
	for i := range order.Lines {
		l := &order.Lines[i]
		lines[i] = LineView{
			LineID:    l.ID,
			ProductID: l.ProductID,
			Product:   l.ProductName,
			SKU:       l.SKU,
			Ordered:   l.OrderedQuantity,
			Fulfilled: l.FulfilledQuantity,
			Remainder: l.Remainder(),
			UnitPrice: l.UnitPrice,
			Amount:    l.Amount(),
		}
	}

	return &OrderView{
		Order:          order,
		Lines:          lines,
		Total:          trade.Total(order.Lines),
		Outstanding:    trade.OutstandingQuantity(order.Lines),
		FullyFulfilled: trade.IsFullyFulfilled(order.Lines),
		Progress:       trade.Progress(order.Lines),
	}
}
