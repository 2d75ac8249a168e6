package models

import (
	"testing"

	"github.com/erp/orderdesk/internal/domain/partner"
	"github.com/erp/orderdesk/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderModel_KeepsLinesAndStoredVersion(t *testing.T) {
	order, err := trade.NewOrder(trade.OrderKindSale, "SO-20260101-0001", uuid.New(), "Acme")
	require.NoError(t, err)
	_, err = order.AddLine(trade.LineInput{ProductID: uuid.New(), ProductName: "Bolt", SKU: "BLT-1", Quantity: 10, UnitPrice: 120})
	require.NoError(t, err)
	order.Lines[0].FulfilledQuantity = 4

	m := OrderModelFromDomain(order)
	require.Len(t, m.Lines, 1)
	assert.Equal(t, order.ID, m.Lines[0].OrderID)

	back := m.ToDomain()
	assert.Equal(t, order.ID, back.ID)
	assert.Equal(t, order.Version, back.Version)
	assert.Equal(t, order.Version, back.StoredVersion())
	assert.Equal(t, int64(6), back.Lines[0].Remainder())
	assert.Equal(t, order.Total(), back.Total())
}

func TestSupplierModel_FlattensContact(t *testing.T) {
	s, err := partner.NewSupplier("Tokyo Parts", partner.Contact{Phone: "03-1234-5678", PostalCode: "100-0001"})
	require.NoError(t, err)

	m := SupplierModelFromDomain(s)
	assert.Equal(t, "03-1234-5678", m.Phone)

	back := m.ToDomain()
	assert.Equal(t, s.Contact, back.Contact)
	assert.Equal(t, s.Status, back.Status)
}
