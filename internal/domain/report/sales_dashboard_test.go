package report

import (
	"testing"
	"time"

	"github.com/erp/orderdesk/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	bolt = uuid.New()
	nut  = uuid.New()
)

func saleOrder(t *testing.T, at time.Time, status trade.OrderStatus, lines ...trade.OrderLine) trade.Order {
	order, err := trade.NewOrder(trade.OrderKindSale, "SO-1", uuid.New(), "Osaka Retail")
	require.NoError(t, err)
	order.OrderedAt = at
	order.Status = status
	order.Lines = lines
	return *order
}

func saleLine(productID uuid.UUID, name string, qty, price, fulfilled int64) trade.OrderLine {
	return trade.OrderLine{
		ID:                uuid.New(),
		ProductID:         productID,
		ProductName:       name,
		OrderedQuantity:   qty,
		UnitPrice:         price,
		FulfilledQuantity: fulfilled,
	}
}

func TestBuildSalesDashboard(t *testing.T) {
	day1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	orders := []trade.Order{
		saleOrder(t, day1, trade.OrderStatusCompleted, saleLine(bolt, "Bolt", 5, 100, 5), saleLine(nut, "Nut", 2, 250, 2)),
		saleOrder(t, day2, trade.OrderStatusProcessing, saleLine(bolt, "Bolt", 10, 100, 4)),
		saleOrder(t, day2, trade.OrderStatusCancelled, saleLine(nut, "Nut", 99, 250, 0)),
		saleOrder(t, day2.Add(48*time.Hour), trade.OrderStatusPending, saleLine(nut, "Nut", 1, 250, 0)),
	}
	purchase, err := trade.NewOrder(trade.OrderKindPurchase, "PO-1", uuid.New(), "Tokyo Parts")
	require.NoError(t, err)
	purchase.OrderedAt = day1
	orders = append(orders, *purchase)

	dash := BuildSalesDashboard(orders, DashboardRange{From: day1, To: day2.Add(24 * time.Hour)})

	assert.Equal(t, int64(2), dash.OrderCount)
	assert.Equal(t, int64(2000), dash.TotalAmount)
	assert.Equal(t, int64(11), dash.DeliveredQuantity)
	assert.Equal(t, int64(600), dash.OutstandingAmount)
	assert.True(t, decimal.NewFromInt(1000).Equal(dash.AverageOrderValue))
	assert.Equal(t, int64(1), dash.ByStatus[trade.OrderStatusCancelled])
	assert.Equal(t, int64(1), dash.ByStatus[trade.OrderStatusCompleted])

	require.Len(t, dash.DailyTotals, 2)
	assert.Equal(t, "2026-03-01", dash.DailyTotals[0].Date)
	assert.Equal(t, int64(1000), dash.DailyTotals[1].TotalAmount)

	require.Len(t, dash.TopProducts, 2)
	assert.Equal(t, "Bolt", dash.TopProducts[0].ProductName)
	assert.Equal(t, int64(1500), dash.TopProducts[0].Amount)
	assert.Equal(t, 1, dash.TopProducts[0].Rank)
	assert.Equal(t, 2, dash.TopProducts[1].Rank)
}

func TestBuildSalesDashboard_Empty(t *testing.T) {
	dash := BuildSalesDashboard(nil, DashboardRange{})
	assert.Zero(t, dash.OrderCount)
	assert.True(t, dash.AverageOrderValue.IsZero())
	assert.NotNil(t, dash.DailyTotals)
	assert.NotNil(t, dash.TopProducts)
}

func TestBuildSalesDashboard_TopN(t *testing.T) {
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	orders := []trade.Order{
		saleOrder(t, at, trade.OrderStatusPending,
			saleLine(uuid.New(), "A", 1, 300, 0),
			saleLine(uuid.New(), "B", 1, 200, 0),
			saleLine(uuid.New(), "C", 1, 100, 0)),
	}
	dash := BuildSalesDashboard(orders, DashboardRange{TopN: 2})
	require.Len(t, dash.TopProducts, 2)
	assert.Equal(t, "A", dash.TopProducts[0].ProductName)
	assert.Equal(t, "B", dash.TopProducts[1].ProductName)
}
