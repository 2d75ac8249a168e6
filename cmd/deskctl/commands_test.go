package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/erp/orderdesk/internal/application/desk"
	"github.com/erp/orderdesk/internal/domain/report"
	"github.com/erp/orderdesk/internal/domain/trade"
	"github.com/erp/orderdesk/internal/infrastructure/notify"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineQuantities_Set(t *testing.T) {
	id := uuid.New()
	q := lineQuantities{}

	require.NoError(t, q.Set(id.String()+"=12"))
	assert.Equal(t, int64(12), q[id])

	require.NoError(t, q.Set(" "+id.String()+" = 3 "))
	assert.Equal(t, int64(3), q[id])

	assert.Error(t, q.Set("no-separator"))
	assert.Error(t, q.Set("not-a-uuid=1"))
	assert.Error(t, q.Set(id.String()+"=many"))
}

func TestDateFlag(t *testing.T) {
	var d dateFlag
	assert.Equal(t, "", d.String())

	require.NoError(t, d.Set("2026-03-01"))
	assert.Equal(t, "2026-03-01", d.String())
	assert.Equal(t, time.UTC, time.Time(d).Location())

	assert.Error(t, d.Set("01/03/2026"))
}

func TestOrderArg(t *testing.T) {
	id := uuid.New()

	got, err := orderArg("show", []string{id.String()})
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = orderArg("show", nil)
	assert.IsType(t, usageError(""), err)

	_, err = orderArg("show", []string{"42"})
	assert.IsType(t, usageError(""), err)
}

func TestRun_UnknownCommand(t *testing.T) {
	c := &cli{out: &bytes.Buffer{}}
	err := c.run(context.Background(), "explode", nil)
	assert.IsType(t, usageError(""), err)
}

func TestWriteOrderView(t *testing.T) {
	order := &trade.Order{
		Kind:             trade.OrderKindPurchase,
		OrderNumber:      "PO-0001",
		Status:           trade.OrderStatusProcessing,
		CounterpartyName: "Acme Fasteners",
	}
	view := &desk.OrderView{
		Order: order,
		Lines: []desk.LineView{{
			LineID:    uuid.New(),
			SKU:       "BOLT-M8",
			Product:   "M8 bolt",
			Ordered:   1000,
			Fulfilled: 400,
			Remainder: 600,
			Amount:    1500,
		}},
		Total:       1500,
		Outstanding: 900,
		Progress:    decimal.NewFromInt(40),
	}

	var buf bytes.Buffer
	require.NoError(t, writeOrderView(&buf, view))

	out := buf.String()
	assert.Contains(t, out, "PO-0001")
	assert.Contains(t, out, "RECEIPT")
	assert.Contains(t, out, "BOLT-M8")
	assert.Contains(t, out, "1,000")
	assert.Contains(t, out, "total 1,500, outstanding 900, 40% done")
}

func TestWriteDashboard(t *testing.T) {
	d := &report.SalesDashboard{
		From:              time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		To:                time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		OrderCount:        3,
		TotalAmount:       12500,
		AverageOrderValue: decimal.RequireFromString("4166.67"),
		TopProducts: []report.ProductSales{
			{Rank: 1, SKU: "BOLT-M8", ProductName: "M8 bolt", Quantity: 50, Amount: 7500},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, writeDashboard(&buf, d))

	out := buf.String()
	assert.Contains(t, out, "sales 2026-03-01 to 2026-04-01")
	assert.Contains(t, out, "orders 3, total 12,500")
	assert.Contains(t, out, "average 4166.67")
	assert.Contains(t, out, "BOLT-M8")
}

func TestPrintNotifications(t *testing.T) {
	n := notify.New(4, nil)
	var buf bytes.Buffer

	done, err := printNotifications(n, &buf)
	require.NoError(t, err)

	n.Success("Order PO-0001 placed")
	n.Error("Quantity exceeds the remaining 600")
	n.Close()
	<-done

	assert.Equal(t, "[success] Order PO-0001 placed\n[error] Quantity exceeds the remaining 600\n", buf.String())

	_, err = printNotifications(n, &buf)
	assert.ErrorIs(t, err, notify.ErrClosed)
}

type memoryArchive struct {
	objects map[string][]byte
	ensured bool
}

func (m *memoryArchive) EnsureBucket(context.Context) error {
	m.ensured = true
	return nil
}

func (m *memoryArchive) Put(_ context.Context, name string, data []byte, _ string) (string, error) {
	key := "dashboards/" + name
	m.objects[key] = data
	return key, nil
}

func (m *memoryArchive) DownloadURL(_ context.Context, key string, _ time.Duration) (string, time.Time, error) {
	return "http://archive.local/" + key, time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC), nil
}

func TestArchiveDashboard(t *testing.T) {
	archive := &memoryArchive{objects: map[string][]byte{}}
	var buf bytes.Buffer
	c := &cli{archive: archive, out: &buf}

	d := &report.SalesDashboard{
		From:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		To:          time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		OrderCount:  3,
		TotalAmount: 12500,
	}
	require.NoError(t, c.archiveDashboard(context.Background(), d, 5))

	key := "dashboards/sales_2026-03-01_2026-04-01_top5.json"
	assert.True(t, archive.ensured)
	require.Contains(t, archive.objects, key)
	assert.Contains(t, string(archive.objects[key]), `"order_count": 3`)
	assert.Contains(t, buf.String(), "archived "+key)
	assert.Contains(t, buf.String(), "http://archive.local/"+key)
}

func TestDashboard_ArchiveNeedsStorage(t *testing.T) {
	c := &cli{out: &bytes.Buffer{}}
	err := c.run(context.Background(), "dashboard", []string{"-archive"})
	assert.IsType(t, usageError(""), err)
}
