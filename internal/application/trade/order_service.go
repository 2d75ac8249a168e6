package trade

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erp/orderdesk/internal/application/validation"
	"github.com/erp/orderdesk/internal/domain/catalog"
	"github.com/erp/orderdesk/internal/domain/partner"
	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/erp/orderdesk/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MetricsRecorder receives fulfillment outcomes that never become domain events
type MetricsRecorder interface {
	RecordDuplicate()
	RecordRejection(code string)
}

type nopMetrics struct{}

func (nopMetrics) RecordDuplicate()       {}
func (nopMetrics) RecordRejection(string) {}

// References resolves the products and counterparties a new order points
// at. Any nil repository skips that check.
type References struct {
	Products  catalog.ProductRepository
	Suppliers partner.SupplierRepository
	Customers partner.CustomerRepository
}

// OrderService handles purchase and sale order operations
type OrderService struct {
	orders         trade.OrderRepository
	fulfillments   trade.FulfillmentRepository
	txManager      shared.TransactionManager
	refs           References
	eventPublisher shared.EventPublisher
	idempotency    shared.IdempotencyStore
	idemConfig     shared.IdempotencyConfig
	metrics        MetricsRecorder
	logger         *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orders trade.OrderRepository,
	fulfillments trade.FulfillmentRepository,
	txManager shared.TransactionManager,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:       orders,
		fulfillments: fulfillments,
		txManager:    txManager,
		metrics:      nopMetrics{},
		logger:       logger,
	}
}

// SetEventPublisher sets the publisher that receives order events inside
// the saving transaction
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetReferences enables product and counterparty checks on Create
func (s *OrderService) SetReferences(refs References) {
	s.refs = refs
}

// SetIdempotencyStore enables duplicate detection for fulfillment submissions
func (s *OrderService) SetIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) {
	s.idempotency = store
	s.idemConfig = cfg
}

// SetMetrics sets the recorder for duplicates and rejections
func (s *OrderService) SetMetrics(m MetricsRecorder) {
	if m == nil {
		m = nopMetrics{}
	}
	s.metrics = m
}

// GetByID retrieves an order by ID
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// GetByOrderNumber retrieves an order by its number
func (s *OrderService) GetByOrderNumber(ctx context.Context, orderNumber string) (*OrderResponse, error) {
	order, err := s.orders.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// List retrieves orders with filtering and pagination
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) ([]OrderResponse, int64, error) {
	domainFilter := toDomainFilter(filter)

	orders, err := s.orders.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orders.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToOrderResponses(orders), total, nil
}

func toDomainFilter(filter OrderListFilter) trade.OrderFilter {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "ordered_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	f := trade.OrderFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
			Filters:  make(map[string]interface{}),
		},
		Kind:           filter.Kind,
		Status:         filter.Status,
		CounterpartyID: filter.CounterpartyID,
	}
	if filter.OrderedFrom != nil {
		f.Filters["ordered_from"] = *filter.OrderedFrom
	}
	if filter.OrderedTo != nil {
		f.Filters["ordered_to"] = *filter.OrderedTo
	}
	return f
}

// Create creates a NEW order with its lines
func (s *OrderService) Create(ctx context.Context, form validation.OrderForm) (*OrderResponse, error) {
	if err := validation.Check(form); err != nil {
		return nil, err
	}
	kind := trade.OrderKind(form.Kind)

	counterpartyName, err := s.resolveCounterparty(ctx, kind, form.CounterpartyID, form.CounterpartyName)
	if err != nil {
		return nil, err
	}

	var order *trade.Order
	err = s.txManager.Transaction(ctx, func(txCtx context.Context) error {
		number, err := s.orders.GenerateOrderNumber(txCtx, kind)
		if err != nil {
			return err
		}
		order, err = trade.NewOrder(kind, number, form.CounterpartyID, counterpartyName)
		if err != nil {
			return err
		}
		if err := order.SetDescription(form.Description); err != nil {
			return err
		}
		for i, line := range form.Lines {
			in, err := s.resolveLine(txCtx, line)
			if err != nil {
				return fmt.Errorf("line %d: %w", i+1, err)
			}
			if _, err := order.AddLine(in); err != nil {
				return err
			}
		}
		return s.orders.Save(txCtx, order)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("kind", string(order.Kind)),
		zap.Int("lines", order.LineCount()),
	)
	response := ToOrderResponse(order)
	return &response, nil
}

// resolveCounterparty checks the supplier (purchases) or customer (sales)
// is active and returns its current name
func (s *OrderService) resolveCounterparty(ctx context.Context, kind trade.OrderKind, id uuid.UUID, name string) (string, error) {
	switch {
	case kind == trade.OrderKindPurchase && s.refs.Suppliers != nil:
		supplier, err := s.refs.Suppliers.FindByID(ctx, id)
		if err != nil {
			return "", counterpartyError(err, "Supplier")
		}
		if !supplier.IsActive() {
			return "", shared.NewDomainError("INACTIVE_COUNTERPARTY", "Supplier is inactive")
		}
		return supplier.Name, nil
	case kind == trade.OrderKindSale && s.refs.Customers != nil:
		customer, err := s.refs.Customers.FindByID(ctx, id)
		if err != nil {
			return "", counterpartyError(err, "Customer")
		}
		if !customer.IsActive() {
			return "", shared.NewDomainError("INACTIVE_COUNTERPARTY", "Customer is inactive")
		}
		return customer.Name, nil
	}
	return name, nil
}

func counterpartyError(err error, what string) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewDomainError(shared.ErrNotFound.Code, what+" not found")
	}
	return err
}

func (s *OrderService) resolveLine(ctx context.Context, line validation.OrderLineForm) (trade.LineInput, error) {
	in := trade.LineInput{
		ProductID:   line.ProductID,
		ProductName: line.ProductName,
		SKU:         line.SKU,
		Quantity:    line.Quantity,
		UnitPrice:   line.UnitPrice,
		Remark:      line.Remark,
	}
	if s.refs.Products == nil {
		return in, nil
	}
	product, err := s.refs.Products.FindByID(ctx, line.ProductID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return in, shared.NewDomainError(shared.ErrNotFound.Code, "Product not found")
		}
		return in, err
	}
	if !product.IsActive() {
		return in, shared.NewDomainError("INACTIVE_PRODUCT", fmt.Sprintf("Product %s is inactive", product.SKU))
	}
	in.ProductName = product.Name
	in.SKU = product.SKU
	return in, nil
}

// Update edits the description and line quantities of a NEW order
func (s *OrderService) Update(ctx context.Context, id uuid.UUID, form validation.OrderUpdateForm) (*OrderResponse, error) {
	if err := validation.Check(form); err != nil {
		return nil, err
	}

	update := trade.OrderUpdate{Description: form.Description, Version: form.Version}
	for _, l := range form.Lines {
		update.Lines = append(update.Lines, trade.LineUpdate{LineID: l.LineID, Quantity: l.Quantity})
	}

	order, err := s.mutate(ctx, id, func(order *trade.Order) error {
		if update.Version != 0 && update.Version != order.Version {
			return shared.ErrConcurrencyConflict
		}
		return order.ApplyUpdate(update)
	})
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// Place submits a NEW order: NEW -> PENDING
func (s *OrderService) Place(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	order, err := s.mutate(ctx, id, func(order *trade.Order) error {
		return order.Place()
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
	)
	response := ToOrderResponse(order)
	return &response, nil
}

// Cancel cancels an order that has nothing fulfilled yet
func (s *OrderService) Cancel(ctx context.Context, id uuid.UUID, form validation.CancelForm) (*OrderResponse, error) {
	if err := validation.Check(form); err != nil {
		return nil, err
	}
	order, err := s.mutate(ctx, id, func(order *trade.Order) error {
		return order.Cancel(form.Reason)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("order cancelled",
		zap.String("order_id", order.ID.String()),
		zap.String("reason", form.Reason),
	)
	response := ToOrderResponse(order)
	return &response, nil
}

// Delete deletes a NEW order
func (s *OrderService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.orders.Delete(ctx, id)
}

// mutate loads the order, applies fn and saves with a version check,
// publishing the resulting events in the same transaction
func (s *OrderService) mutate(ctx context.Context, id uuid.UUID, fn func(order *trade.Order) error) (*trade.Order, error) {
	var order *trade.Order
	err := s.txManager.Transaction(ctx, func(txCtx context.Context) error {
		var err error
		order, err = s.orders.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := fn(order); err != nil {
			return err
		}
		if err := s.orders.SaveWithLock(txCtx, order); err != nil {
			return err
		}
		return s.publish(txCtx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) publish(ctx context.Context, order *trade.Order) error {
	events := order.GetDomainEvents()
	order.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return nil
	}
	return s.eventPublisher.Publish(ctx, events...)
}

// Summary returns the aggregate fulfilled quantity and remainder per line
func (s *OrderService) Summary(ctx context.Context, id uuid.UUID) (*FulfillmentSummaryResponse, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	summary, err := s.fulfillments.SummaryByOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	order.ApplySummary(summary)
	response := ToSummaryResponse(order)
	return &response, nil
}

// ListFulfillments returns the receipts or deliveries of an order, oldest first
func (s *OrderService) ListFulfillments(ctx context.Context, id uuid.UUID) ([]FulfillmentResponse, error) {
	if _, err := s.orders.FindByID(ctx, id); err != nil {
		return nil, err
	}
	events, err := s.fulfillments.FindByOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]FulfillmentResponse, len(events))
	for i := range events {
		out[i] = ToFulfillmentResponse(&events[i])
	}
	return out, nil
}

// RecordFulfillment records a receipt (purchase) or delivery (sale) against
// one line. The order, the event and the stock movement are written in one
// transaction with a version check on the order. A non-empty
// idempotencyKey is applied at most once: a retry after success gets the
// first result back with Replayed set, a retry while the first submission
// is still running fails with DUPLICATE_REQUEST.
func (s *OrderService) RecordFulfillment(ctx context.Context, orderID uuid.UUID, form validation.FulfillmentForm, idempotencyKey string) (*FulfillmentResultResponse, error) {
	claim, replay, err := s.claim(ctx, orderID, idempotencyKey)
	if err != nil {
		return nil, err
	}
	if replay != nil {
		return replay, nil
	}

	var result *FulfillmentResultResponse
	err = s.txManager.Transaction(ctx, func(txCtx context.Context) error {
		order, err := s.orders.FindByID(txCtx, orderID)
		if err != nil {
			return err
		}
		if !order.Status.CanFulfill() {
			return shared.NewDomainError(shared.ErrInvalidState.Code,
				fmt.Sprintf("Cannot record a %s for order in %s status", order.Kind.FulfillmentName(), order.Status))
		}
		line := order.GetLine(form.LineID)
		if line == nil {
			return shared.NewDomainError("LINE_NOT_FOUND", "Order line not found")
		}

		form.Remainder = line.Remainder()
		if err := validation.Check(form); err != nil {
			return err
		}

		event, err := order.Fulfill(trade.FulfillmentRequest{
			OrderID:     order.ID,
			LineID:      form.LineID,
			WarehouseID: form.WarehouseID,
			Quantity:    form.Quantity,
			Note:        form.Note,
		})
		if err != nil {
			return err
		}
		if err := s.orders.SaveWithLock(txCtx, order); err != nil {
			return err
		}
		if err := s.fulfillments.Create(txCtx, event); err != nil {
			return err
		}
		if err := s.publish(txCtx, order); err != nil {
			return err
		}

		result = &FulfillmentResultResponse{
			Fulfillment: ToFulfillmentResponse(event),
			OrderStatus: string(order.Status),
			Remainder:   order.GetLine(form.LineID).Remainder(),
		}
		return nil
	})
	if err != nil {
		claim.release()
		s.metrics.RecordRejection(errorCode(err))
		s.logger.Info("fulfillment rejected",
			zap.String("order_id", orderID.String()),
			zap.String("line_id", form.LineID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("fulfillment recorded",
		zap.String("order_id", orderID.String()),
		zap.String("fulfillment_id", result.Fulfillment.ID.String()),
		zap.Int64("quantity", result.Fulfillment.Quantity),
		zap.String("order_status", result.OrderStatus),
	)
	claim.complete(result)
	return result, nil
}

// fulfillmentClaim holds an idempotency key for one submission. The zero
// value guards nothing.
type fulfillmentClaim struct {
	s        *OrderService
	ctx      context.Context
	storeKey string
}

// claim marks the idempotency key as used. When the key already carries a
// completed result that result is returned for replay instead.
func (s *OrderService) claim(ctx context.Context, orderID uuid.UUID, key string) (fulfillmentClaim, *FulfillmentResultResponse, error) {
	if key == "" || s.idempotency == nil || !s.idemConfig.Enabled {
		return fulfillmentClaim{}, nil, nil
	}

	storeKey := "fulfillment:" + orderID.String() + ":" + key
	fresh, err := s.idempotency.MarkProcessed(ctx, storeKey, s.idemConfig.TTL)
	if err != nil {
		return fulfillmentClaim{}, nil, fmt.Errorf("idempotency check: %w", err)
	}
	if fresh {
		return fulfillmentClaim{s: s, ctx: ctx, storeKey: storeKey}, nil, nil
	}

	s.metrics.RecordDuplicate()
	stored, ok, err := s.idempotency.Result(ctx, storeKey)
	if err != nil {
		return fulfillmentClaim{}, nil, fmt.Errorf("idempotency result: %w", err)
	}
	if ok {
		var replay FulfillmentResultResponse
		if err := json.Unmarshal(stored, &replay); err == nil {
			replay.Replayed = true
			s.logger.Info("fulfillment replayed",
				zap.String("order_id", orderID.String()),
				zap.String("idempotency_key", key),
				zap.String("fulfillment_id", replay.Fulfillment.ID.String()),
			)
			return fulfillmentClaim{}, &replay, nil
		}
	}
	s.logger.Warn("duplicate fulfillment submission",
		zap.String("order_id", orderID.String()),
		zap.String("idempotency_key", key),
	)
	return fulfillmentClaim{}, nil, shared.ErrDuplicateRequest
}

func (c fulfillmentClaim) detached() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(c.ctx), 5*time.Second)
}

// release forgets the key so that a failed submission can be retried
func (c fulfillmentClaim) release() {
	if c.s == nil {
		return
	}
	ctx, cancel := c.detached()
	defer cancel()
	if err := c.s.idempotency.Forget(ctx, c.storeKey); err != nil {
		c.s.logger.Warn("failed to release idempotency key", zap.String("key", c.storeKey), zap.Error(err))
	}
}

// complete stores result so a retry of the same key can be answered with it
func (c fulfillmentClaim) complete(result *FulfillmentResultResponse) {
	if c.s == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		c.s.logger.Warn("failed to encode fulfillment result", zap.String("key", c.storeKey), zap.Error(err))
		return
	}
	ctx, cancel := c.detached()
	defer cancel()
	if err := c.s.idempotency.Complete(ctx, c.storeKey, payload, c.s.idemConfig.TTL); err != nil {
		c.s.logger.Warn("failed to store fulfillment result", zap.String("key", c.storeKey), zap.Error(err))
	}
}

func errorCode(err error) string {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	var validationErr *shared.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Code
	}
	var fieldErrs shared.FieldErrors
	if errors.As(err, &fieldErrs) {
		return "VALIDATION_ERROR"
	}
	return "INTERNAL_ERROR"
}
