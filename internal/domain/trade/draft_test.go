package trade

import (
	"testing"

	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderDraft_LiveTotal(t *testing.T) {
	order := createTestOrder(t, OrderKindSale)
	l1 := addTestLine(t, order, 5, 100)
	addTestLine(t, order, 2, 250)

	draft := NewDraft(order)
	assert.False(t, draft.IsReadOnly())
	assert.Equal(t, int64(1000), draft.Total())

	require.NoError(t, draft.SetQuantity(l1.ID, 8))
	assert.Equal(t, int64(1300), draft.Total())
	assert.True(t, draft.IsDirty())

	// the order itself is untouched until the update is saved
	assert.Equal(t, int64(5), order.GetLine(l1.ID).OrderedQuantity)
}

func TestOrderDraft_ReadOnlyOncePlaced(t *testing.T) {
	order, lineID := placedOrder(t, 10)
	draft := NewDraft(order)

	assert.True(t, draft.IsReadOnly())
	assert.ErrorIs(t, draft.SetQuantity(lineID, 3), shared.ErrInvalidState)
	assert.ErrorIs(t, draft.SetDescription("x"), shared.ErrInvalidState)
	assert.Equal(t, int64(10), draft.Lines[0].OrderedQuantity)
	assert.False(t, draft.IsDirty())

	errs := draft.Validate()
	assert.Contains(t, errs, "status")
}

func TestOrderDraft_Validate(t *testing.T) {
	order := createTestOrder(t, OrderKindPurchase)
	l1 := addTestLine(t, order, 5, 100)
	addTestLine(t, order, 2, 250)

	draft := NewDraft(order)
	assert.False(t, draft.Validate().HasErrors())

	require.NoError(t, draft.SetQuantity(l1.ID, 0))
	errs := draft.Validate()
	require.True(t, errs.HasErrors())
	assert.Equal(t, []string{"lines[0].quantity"}, errs.Fields())
	assert.Equal(t, "Quantity must be a positive integer", errs["lines[0].quantity"])

	require.NoError(t, draft.SetQuantity(l1.ID, -3))
	assert.True(t, draft.Validate().HasErrors())
}

func TestOrderDraft_ValidateEmpty(t *testing.T) {
	order := createTestOrder(t, OrderKindPurchase)
	errs := NewDraft(order).Validate()
	assert.Contains(t, errs, "lines")
}

func TestOrderDraft_ToUpdate(t *testing.T) {
	order := createTestOrder(t, OrderKindPurchase)
	l1 := addTestLine(t, order, 5, 100)

	draft := NewDraft(order)
	require.NoError(t, draft.SetQuantity(l1.ID, 9))
	require.NoError(t, draft.SetDescription("  deliver to dock 2 "))

	update := draft.ToUpdate()
	assert.Equal(t, "deliver to dock 2", update.Description)
	assert.Equal(t, []LineUpdate{{LineID: l1.ID, Quantity: 9}}, update.Lines)
	assert.Equal(t, order.Version, update.Version)

	require.NoError(t, order.ApplyUpdate(update))
	assert.Equal(t, int64(900), order.Total())
}

func TestOrderDraft_UnknownLine(t *testing.T) {
	order := createTestOrder(t, OrderKindPurchase)
	draft := NewDraft(order)
	assert.Error(t, draft.SetQuantity(uuid.New(), 1))
}
