package report

import (
	"sort"
	"time"

	"github.com/erp/orderdesk/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultTopN is the number of products ranked when the caller does not say
const DefaultTopN = 5

// DashboardRange selects the sale orders summarised by the dashboard
type DashboardRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
	TopN int       `json:"top_n,omitempty"`
}

// Contains reports whether t falls in [From, To)
func (r DashboardRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && !t.Before(r.To) {
		return false
	}
	return true
}

// DailySales is the sales total of one calendar day
type DailySales struct {
	Date        string `json:"date"` // YYYY-MM-DD
	OrderCount  int64  `json:"order_count"`
	TotalAmount int64  `json:"total_amount"`
}

// ProductSales ranks a product by sold amount
type ProductSales struct {
	Rank        int       `json:"rank"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	SKU         string    `json:"sku"`
	Quantity    int64     `json:"quantity"`
	Amount      int64     `json:"amount"`
}

// SalesDashboard is a read model of sale order activity
type SalesDashboard struct {
	From              time.Time                   `json:"from"`
	To                time.Time                   `json:"to"`
	OrderCount        int64                       `json:"order_count"`
	TotalAmount       int64                       `json:"total_amount"`
	DeliveredQuantity int64                       `json:"delivered_quantity"`
	OutstandingAmount int64                       `json:"outstanding_amount"`
	AverageOrderValue decimal.Decimal             `json:"average_order_value"`
	ByStatus          map[trade.OrderStatus]int64 `json:"by_status"`
	DailyTotals       []DailySales                `json:"daily_totals"`
	TopProducts       []ProductSales              `json:"top_products"`
}

// BuildSalesDashboard summarises the sale orders whose ordered-at falls in the range.
// Cancelled orders are counted by status but excluded from amounts.
func BuildSalesDashboard(orders []trade.Order, rng DashboardRange) SalesDashboard {
	topN := rng.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	dash := SalesDashboard{
		From:              rng.From,
		To:                rng.To,
		AverageOrderValue: decimal.Zero,
		ByStatus:          make(map[trade.OrderStatus]int64),
		DailyTotals:       make([]DailySales, 0),
		TopProducts:       make([]ProductSales, 0),
	}

	daily := make(map[string]*DailySales)
	products := make(map[uuid.UUID]*ProductSales)

	for i := range orders {
		order := &orders[i]
		if order.Kind != trade.OrderKindSale || !rng.Contains(order.OrderedAt) {
			continue
		}
		dash.ByStatus[order.Status]++
		if order.Status == trade.OrderStatusCancelled {
			continue
		}

		total := order.Total()
		dash.OrderCount++
		dash.TotalAmount += total
		dash.DeliveredQuantity += trade.FulfilledQuantity(order.Lines)
		for _, line := range order.Lines {
			dash.OutstandingAmount += line.Remainder() * line.UnitPrice
		}

		day := order.OrderedAt.Format("2006-01-02")
		d, ok := daily[day]
		if !ok {
			d = &DailySales{Date: day}
			daily[day] = d
		}
		d.OrderCount++
		d.TotalAmount += total

		for _, line := range order.Lines {
			p, ok := products[line.ProductID]
			if !ok {
				p = &ProductSales{ProductID: line.ProductID, ProductName: line.ProductName, SKU: line.SKU}
				products[line.ProductID] = p
			}
			p.Quantity += line.OrderedQuantity
			p.Amount += line.Amount()
		}
	}

	if dash.OrderCount > 0 {
		dash.AverageOrderValue = decimal.NewFromInt(dash.TotalAmount).
			Div(decimal.NewFromInt(dash.OrderCount)).Round(2)
	}

	for _, d := range daily {
		dash.DailyTotals = append(dash.DailyTotals, *d)
	}
	sort.Slice(dash.DailyTotals, func(i, j int) bool {
		return dash.DailyTotals[i].Date < dash.DailyTotals[j].Date
	})

	ranked := make([]ProductSales, 0, len(products))
	for _, p := range products {
		ranked = append(ranked, *p)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Amount != ranked[j].Amount {
			return ranked[i].Amount > ranked[j].Amount
		}
		return ranked[i].ProductName < ranked[j].ProductName
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	dash.TopProducts = ranked

	return dash
}
