package trade

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/orderdesk/internal/application/validation"
	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/erp/orderdesk/internal/domain/trade"
	"github.com/erp/orderdesk/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockOrderRepository is a mock implementation of trade.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*trade.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter trade.OrderFilter) ([]trade.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.Order), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter trade.OrderFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, order *trade.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOrderRepository) GenerateOrderNumber(ctx context.Context, kind trade.OrderKind) (string, error) {
	args := m.Called(ctx, kind)
	return args.String(0), args.Error(1)
}

// MockFulfillmentRepository is a mock implementation of trade.FulfillmentRepository
type MockFulfillmentRepository struct {
	mock.Mock
}

func (m *MockFulfillmentRepository) Create(ctx context.Context, event *trade.FulfillmentEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockFulfillmentRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]trade.FulfillmentEvent, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]trade.FulfillmentEvent), args.Error(1)
}

func (m *MockFulfillmentRepository) SummaryByOrder(ctx context.Context, orderID uuid.UUID) (trade.FulfillmentSummary, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(trade.FulfillmentSummary), args.Error(1)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}

type mockMetrics struct {
	duplicates int
	rejections []string
}

func (m *mockMetrics) RecordDuplicate()            { m.duplicates++ }
func (m *mockMetrics) RecordRejection(code string) { m.rejections = append(m.rejections, code) }

// passthroughTx runs fn directly; repositories are mocked
type passthroughTx struct {
	calls int
}

func (p *passthroughTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}

type serviceFixture struct {
	service      *OrderService
	orders       *MockOrderRepository
	fulfillments *MockFulfillmentRepository
	publisher    *MockEventPublisher
	metrics      *mockMetrics
	tx           *passthroughTx
	store        *cache.InMemoryIdempotencyStore
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		orders:       new(MockOrderRepository),
		fulfillments: new(MockFulfillmentRepository),
		publisher:    new(MockEventPublisher),
		metrics:      &mockMetrics{},
		tx:           &passthroughTx{},
	}
	f.service = NewOrderService(f.orders, f.fulfillments, f.tx, zap.NewNop())
	f.service.SetEventPublisher(f.publisher)
	f.service.SetMetrics(f.metrics)

	f.store = cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = f.store.Close() })
	f.service.SetIdempotencyStore(f.store, shared.DefaultIdempotencyConfig())
	return f
}

// pendingOrder returns a placed order with one line per quantity
func pendingOrder(t *testing.T, kind trade.OrderKind, qtys ...int64) *trade.Order {
	t.Helper()
	order, err := trade.NewOrder(kind, "PO-20261015-0001", uuid.New(), "Yamada Trading")
	require.NoError(t, err)
	for i, qty := range qtys {
		_, err := order.AddLine(trade.LineInput{
			ProductID:   uuid.New(),
			ProductName: "Product " + string(rune('A'+i)),
			Quantity:    qty,
			UnitPrice:   100,
		})
		require.NoError(t, err)
	}
	require.NoError(t, order.Place())
	order.ClearDomainEvents()
	order.MarkStored()
	return order
}

func eventTypes(events []shared.DomainEvent) []string {
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.EventType()
	}
	return types
}

func TestOrderService_Create(t *testing.T) {
	t.Run("invalid form never reaches the repository", func(t *testing.T) {
		f := newServiceFixture(t)
		_, err := f.service.Create(context.Background(), validation.OrderForm{Kind: "SALE"})

		var fieldErrs shared.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Contains(t, fieldErrs, "lines")
		assert.Equal(t, 0, f.tx.calls)
		f.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("creates a NEW order with numbered lines", func(t *testing.T) {
		f := newServiceFixture(t)
		ctx := context.Background()
		f.orders.On("GenerateOrderNumber", ctx, trade.OrderKindPurchase).Return("PO-20261015-0007", nil)
		f.orders.On("Save", ctx, mock.AnythingOfType("*trade.Order")).Return(nil)

		form := validation.OrderForm{
			Kind:             "PURCHASE",
			CounterpartyID:   uuid.New(),
			CounterpartyName: "Suzuki Metals",
			Description:      "Monthly restock",
			Lines: []validation.OrderLineForm{
				{ProductID: uuid.New(), ProductName: "Hex bolt M8", Quantity: 10, UnitPrice: 120},
				{ProductID: uuid.New(), ProductName: "Washer M8", Quantity: 20, UnitPrice: 15},
			},
		}
		resp, err := f.service.Create(ctx, form)
		require.NoError(t, err)

		assert.Equal(t, "PO-20261015-0007", resp.OrderNumber)
		assert.Equal(t, string(trade.OrderStatusNew), resp.Status)
		assert.Equal(t, int64(10*120+20*15), resp.TotalAmount)
		assert.Len(t, resp.Lines, 2)
		f.orders.AssertExpectations(t)
	})
}

func TestOrderService_RecordFulfillment(t *testing.T) {
	t.Run("partial receipt moves the order to PROCESSING", func(t *testing.T) {
		f := newServiceFixture(t)
		ctx := context.Background()
		order := pendingOrder(t, trade.OrderKindPurchase, 10)
		line := order.Lines[0]

		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
		f.orders.On("SaveWithLock", ctx, order).Return(nil)
		f.fulfillments.On("Create", ctx, mock.AnythingOfType("*trade.FulfillmentEvent")).Return(nil)
		f.publisher.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return assert.ObjectsAreEqual([]string{trade.EventTypeFulfillmentRecorded}, eventTypes(events))
		})).Return(nil)

		result, err := f.service.RecordFulfillment(ctx, order.ID, validation.FulfillmentForm{
			LineID: line.ID, WarehouseID: uuid.New(), Quantity: 4, Note: "  first pallet ",
		}, "key-1")
		require.NoError(t, err)

		assert.Equal(t, string(trade.OrderStatusProcessing), result.OrderStatus)
		assert.Equal(t, int64(6), result.Remainder)
		assert.Equal(t, "first pallet", result.Fulfillment.Note)
		f.orders.AssertExpectations(t)
		f.fulfillments.AssertExpectations(t)
		f.publisher.AssertExpectations(t)
	})

	t.Run("last delivery completes the order", func(t *testing.T) {
		f := newServiceFixture(t)
		ctx := context.Background()
		order := pendingOrder(t, trade.OrderKindSale, 3)

		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
		f.orders.On("SaveWithLock", ctx, order).Return(nil)
		f.fulfillments.On("Create", ctx, mock.Anything).Return(nil)
		f.publisher.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return assert.ObjectsAreEqual(
				[]string{trade.EventTypeFulfillmentRecorded, trade.EventTypeOrderCompleted}, eventTypes(events))
		})).Return(nil)

		result, err := f.service.RecordFulfillment(ctx, order.ID, validation.FulfillmentForm{
			LineID: order.Lines[0].ID, WarehouseID: uuid.New(), Quantity: 3,
		}, "")
		require.NoError(t, err)
		assert.Equal(t, string(trade.OrderStatusCompleted), result.OrderStatus)
		assert.Equal(t, int64(0), result.Remainder)
	})

	t.Run("quantity above the remainder is rejected before saving", func(t *testing.T) {
		f := newServiceFixture(t)
		ctx := context.Background()
		order := pendingOrder(t, trade.OrderKindPurchase, 5)
		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)

		_, err := f.service.RecordFulfillment(ctx, order.ID, validation.FulfillmentForm{
			LineID: order.Lines[0].ID, WarehouseID: uuid.New(), Quantity: 6,
		}, "key-2")

		var fieldErrs shared.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Equal(t, "Must not exceed the remaining quantity", fieldErrs["quantity"])
		assert.Equal(t, []string{"VALIDATION_ERROR"}, f.metrics.rejections)
		f.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("NEW orders cannot be fulfilled", func(t *testing.T) {
		f := newServiceFixture(t)
		ctx := context.Background()
		order, err := trade.NewOrder(trade.OrderKindSale, "SO-20261015-0001", uuid.New(), "Kato Shoji")
		require.NoError(t, err)
		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)

		_, err = f.service.RecordFulfillment(ctx, order.ID, validation.FulfillmentForm{
			LineID: uuid.New(), WarehouseID: uuid.New(), Quantity: 1,
		}, "")
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("retry with the same key replays the first result", func(t *testing.T) {
		f := newServiceFixture(t)
		ctx := context.Background()
		order := pendingOrder(t, trade.OrderKindPurchase, 10)
		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
		f.orders.On("SaveWithLock", ctx, order).Return(nil)
		f.fulfillments.On("Create", ctx, mock.Anything).Return(nil)
		f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		form := validation.FulfillmentForm{LineID: order.Lines[0].ID, WarehouseID: uuid.New(), Quantity: 2}
		first, err := f.service.RecordFulfillment(ctx, order.ID, form, "same-key")
		require.NoError(t, err)
		assert.False(t, first.Replayed)

		again, err := f.service.RecordFulfillment(ctx, order.ID, form, "same-key")
		require.NoError(t, err)
		assert.True(t, again.Replayed)
		assert.Equal(t, first.Fulfillment.ID, again.Fulfillment.ID)
		assert.Equal(t, first.Remainder, again.Remainder)
		assert.Equal(t, first.OrderStatus, again.OrderStatus)

		assert.Equal(t, int64(8), order.Lines[0].Remainder(), "quantity applied once")
		assert.Equal(t, 1, f.metrics.duplicates)
		f.orders.AssertNumberOfCalls(t, "SaveWithLock", 1)
		f.fulfillments.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("same key while the first submission runs is a duplicate", func(t *testing.T) {
		f := newServiceFixture(t)
		ctx := context.Background()
		order := pendingOrder(t, trade.OrderKindPurchase, 10)

		_, err := f.store.MarkProcessed(ctx, "fulfillment:"+order.ID.String()+":busy-key", time.Minute)
		require.NoError(t, err)

		_, err = f.service.RecordFulfillment(ctx, order.ID, validation.FulfillmentForm{
			LineID: order.Lines[0].ID, WarehouseID: uuid.New(), Quantity: 2,
		}, "busy-key")
		assert.ErrorIs(t, err, shared.ErrDuplicateRequest)
		assert.Equal(t, 1, f.metrics.duplicates)
		f.orders.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("failed submission releases its key", func(t *testing.T) {
		f := newServiceFixture(t)
		ctx := context.Background()
		order := pendingOrder(t, trade.OrderKindPurchase, 10)
		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
		f.orders.On("SaveWithLock", ctx, order).Return(shared.ErrConcurrencyConflict).Once()
		f.orders.On("SaveWithLock", ctx, order).Return(nil).Once()
		f.fulfillments.On("Create", ctx, mock.Anything).Return(nil)
		f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

		form := validation.FulfillmentForm{LineID: order.Lines[0].ID, WarehouseID: uuid.New(), Quantity: 2}
		_, err := f.service.RecordFulfillment(ctx, order.ID, form, "retry-key")
		require.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Equal(t, []string{"CONCURRENCY_CONFLICT"}, f.metrics.rejections)

		_, err = f.service.RecordFulfillment(ctx, order.ID, form, "retry-key")
		assert.NoError(t, err)
	})

	t.Run("stock handler failure rolls the fulfillment back", func(t *testing.T) {
		f := newServiceFixture(t)
		ctx := context.Background()
		order := pendingOrder(t, trade.OrderKindSale, 10)
		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
		f.orders.On("SaveWithLock", ctx, order).Return(nil)
		f.fulfillments.On("Create", ctx, mock.Anything).Return(nil)
		f.publisher.On("Publish", ctx, mock.Anything).Return(shared.ErrInsufficientStock)

		_, err := f.service.RecordFulfillment(ctx, order.ID, validation.FulfillmentForm{
			LineID: order.Lines[0].ID, WarehouseID: uuid.New(), Quantity: 2,
		}, "")
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.Equal(t, []string{"INSUFFICIENT_STOCK"}, f.metrics.rejections)
	})
}

func TestOrderService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("stale version is a conflict", func(t *testing.T) {
		f := newServiceFixture(t)
		order, err := trade.NewOrder(trade.OrderKindPurchase, "PO-20261015-0002", uuid.New(), "Suzuki Metals")
		require.NoError(t, err)
		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)

		_, err = f.service.Update(ctx, order.ID, validation.OrderUpdateForm{Version: order.Version + 3})
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		f.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("edits quantities and description", func(t *testing.T) {
		f := newServiceFixture(t)
		order, err := trade.NewOrder(trade.OrderKindPurchase, "PO-20261015-0003", uuid.New(), "Suzuki Metals")
		require.NoError(t, err)
		line, err := order.AddLine(trade.LineInput{ProductID: uuid.New(), ProductName: "Nut", Quantity: 1, UnitPrice: 10})
		require.NoError(t, err)
		lineID := line.ID

		f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
		f.orders.On("SaveWithLock", ctx, order).Return(nil)

		resp, err := f.service.Update(ctx, order.ID, validation.OrderUpdateForm{
			Description: "rush",
			Lines:       []validation.LineQuantityForm{{LineID: lineID, Quantity: 7}},
			Version:     order.Version,
		})
		require.NoError(t, err)
		assert.Equal(t, "rush", resp.Description)
		assert.Equal(t, int64(70), resp.TotalAmount)
	})
}

func TestOrderService_PlaceAndCancel(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	order, err := trade.NewOrder(trade.OrderKindSale, "SO-20261015-0004", uuid.New(), "Kato Shoji")
	require.NoError(t, err)
	_, err = order.AddLine(trade.LineInput{ProductID: uuid.New(), ProductName: "Nut", Quantity: 1, UnitPrice: 10})
	require.NoError(t, err)

	f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
	f.orders.On("SaveWithLock", ctx, order).Return(nil)
	f.publisher.On("Publish", ctx, mock.Anything).Return(nil)

	resp, err := f.service.Place(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, string(trade.OrderStatusPending), resp.Status)

	_, err = f.service.Cancel(ctx, order.ID, validation.CancelForm{})
	var fieldErrs shared.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)

	resp, err = f.service.Cancel(ctx, order.ID, validation.CancelForm{Reason: "customer withdrew"})
	require.NoError(t, err)
	assert.Equal(t, string(trade.OrderStatusCancelled), resp.Status)
	assert.Equal(t, "customer withdrew", resp.CancelReason)

	published := f.publisher.Calls
	require.Len(t, published, 2)
	assert.Equal(t, []string{trade.EventTypeOrderPlaced}, eventTypes(published[0].Arguments.Get(1).([]shared.DomainEvent)))
	assert.Equal(t, []string{trade.EventTypeOrderCancelled}, eventTypes(published[1].Arguments.Get(1).([]shared.DomainEvent)))
}

func TestOrderService_Summary(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	order := pendingOrder(t, trade.OrderKindPurchase, 10, 4)

	f.orders.On("FindByID", ctx, order.ID).Return(order, nil)
	f.fulfillments.On("SummaryByOrder", ctx, order.ID).Return(trade.FulfillmentSummary{order.Lines[0].ID: 10}, nil)

	resp, err := f.service.Summary(ctx, order.ID)
	require.NoError(t, err)

	require.Len(t, resp.Lines, 2)
	assert.Equal(t, int64(0), resp.Lines[0].Remainder)
	assert.Equal(t, int64(4), resp.Lines[1].Remainder)
	assert.Equal(t, int64(4), resp.Outstanding)
	assert.False(t, resp.FullyFulfilled)
	assert.Equal(t, "71.43", resp.Progress.StringFixed(2))
}

func TestOrderService_ListFulfillments_UnknownOrder(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	id := uuid.New()
	f.orders.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

	_, err := f.service.ListFulfillments(ctx, id)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
	f.fulfillments.AssertNotCalled(t, "FindByOrder", mock.Anything, mock.Anything)
}

type recordedMetrics struct {
	fulfillments map[string]int64
	transitions  []string
}

func (r *recordedMetrics) RecordFulfillment(kind string, quantity int64) {
	r.fulfillments[kind] += quantity
}

func (r *recordedMetrics) RecordTransition(kind, status string) {
	r.transitions = append(r.transitions, kind+":"+status)
}

func TestOrderMetricsHandler(t *testing.T) {
	rec := &recordedMetrics{fulfillments: map[string]int64{}}
	h := NewOrderMetricsHandler(rec)
	order := pendingOrder(t, trade.OrderKindSale, 2)

	_, err := order.Fulfill(trade.FulfillmentRequest{LineID: order.Lines[0].ID, WarehouseID: uuid.New(), Quantity: 2})
	require.NoError(t, err)
	for _, e := range order.GetDomainEvents() {
		require.NoError(t, h.Handle(context.Background(), e))
	}
	require.NoError(t, h.Handle(context.Background(), trade.NewOrderPlacedEvent(order)))

	assert.Equal(t, int64(2), rec.fulfillments["SALE"])
	assert.Equal(t, []string{"SALE:COMPLETED", "SALE:PENDING"}, rec.transitions)
	assert.Len(t, h.EventTypes(), 4)
}
