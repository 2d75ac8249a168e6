// Package desk is the order desk workflow: it loads orders with their
// fulfillment state through the query cache, validates submissions locally
// and sends them to the order API.
package desk

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/erp/orderdesk/internal/domain/trade"
	"github.com/erp/orderdesk/internal/infrastructure/cache"
	"github.com/erp/orderdesk/internal/infrastructure/remote"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Remote is the part of the order API the desk uses
type Remote interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*remote.Order, error)
	GetFulfillmentSummary(ctx context.Context, orderID uuid.UUID) (trade.FulfillmentSummary, error)
	PostFulfillment(ctx context.Context, event trade.FulfillmentEvent, idempotencyKey string) (*remote.FulfillmentResult, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, update trade.OrderUpdate) (*remote.Order, error)
	ListOrders(ctx context.Context, q remote.OrderQuery) (*remote.Page[remote.Order], error)
	PlaceOrder(ctx context.Context, id uuid.UUID) (*remote.Order, error)
	CancelOrder(ctx context.Context, id uuid.UUID, reason string) (*remote.Order, error)
}

// Notifier receives the outcome messages of desk actions
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Desk runs the order desk actions
type Desk struct {
	remote   Remote
	cache    *cache.QueryCache
	notifier Notifier
	logger   *zap.Logger
}

// New creates a Desk
func New(r Remote, c *cache.QueryCache, n Notifier, logger *zap.Logger) *Desk {
	return &Desk{remote: r, cache: c, notifier: n, logger: logger}
}

// LoadOrder fetches the order and its fulfillment summary through the cache
// and reconciles them
func (d *Desk) LoadOrder(ctx context.Context, id uuid.UUID) (*OrderView, error) {
	payload, err := cache.Fetch(ctx, d.cache, cache.OrderKey(id), func(ctx context.Context) (*remote.Order, error) {
		return d.remote.GetOrder(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	summary, err := cache.Fetch(ctx, d.cache, cache.SummaryKey(id), func(ctx context.Context) (trade.FulfillmentSummary, error) {
		return d.remote.GetFulfillmentSummary(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	// ToDomain copies, so the cached payload is never mutated
	return newOrderView(payload.ToDomain(), summary), nil
}

// ListOrders returns one page of orders through the cache
func (d *Desk) ListOrders(ctx context.Context, q remote.OrderQuery) (*remote.Page[remote.Order], error) {
	return cache.Fetch(ctx, d.cache, cache.ListKey(cache.ResourceOrderList, q.Encode()),
		func(ctx context.Context) (*remote.Page[remote.Order], error) {
			return d.remote.ListOrders(ctx, q)
		})
}

// SubmitFulfillment validates req against the current remainder of its line
// and posts it. A local rejection never reaches the network. The returned
// order status is the server's. When a failed post may still have been
// recorded the cached order is dropped so the next load shows the server
// state.
func (d *Desk) SubmitFulfillment(ctx context.Context, orderID uuid.UUID, req trade.FulfillmentRequest) (*remote.FulfillmentResult, error) {
	req.OrderID = orderID

	view, err := d.LoadOrder(ctx, orderID)
	if err != nil {
		d.fail("Load order for fulfillment", orderID, err)
		return nil, err
	}

	event, err := d.prepare(view, req)
	if err != nil {
		d.fail("Fulfillment rejected locally", orderID, err)
		return nil, err
	}

	result, err := d.remote.PostFulfillment(ctx, event, uuid.NewString())
	if err != nil {
		if mayHaveApplied(err) {
			d.invalidateOrder(orderID)
		}
		d.fail("Fulfillment submission failed", orderID, err)
		return nil, err
	}

	d.invalidateOrder(orderID)
	d.notifier.Success(fmt.Sprintf("Recorded %s of %d on %s",
		view.Order.Kind.FulfillmentName(), event.Quantity, view.Order.OrderNumber))
	d.logger.Info("Fulfillment recorded",
		zap.String("order_id", orderID.String()),
		zap.String("line_id", event.LineID.String()),
		zap.Int64("quantity", event.Quantity),
		zap.String("order_status", result.OrderStatus),
		zap.Bool("replayed", result.Replayed))
	return result, nil
}

// mayHaveApplied reports whether a failed post could still have been
// recorded: the reply was lost, the server failed after committing, or
// the key is held by an attempt that is still running
func mayHaveApplied(err error) bool {
	if errors.Is(err, shared.ErrDuplicateRequest) {
		return true
	}
	var transportErr *remote.TransportError
	if errors.As(err, &transportErr) {
		return true
	}
	var remoteErr *remote.RemoteError
	return errors.As(err, &remoteErr) && remoteErr.Status >= http.StatusInternalServerError
}

func (d *Desk) prepare(view *OrderView, req trade.FulfillmentRequest) (trade.FulfillmentEvent, error) {
	if !view.Order.Status.CanFulfill() {
		return trade.FulfillmentEvent{}, shared.NewDomainError(shared.ErrInvalidState.Code,
			fmt.Sprintf("Order is %s and cannot be fulfilled", view.Order.Status))
	}
	line := view.Line(req.LineID)
	if line == nil {
		return trade.FulfillmentEvent{}, shared.NewValidationError("line_id", trade.CodeInvalidLine,
			"Order line not found")
	}
	return trade.ValidateSubmission(req, line.Remainder)
}

// SaveDraft sends the draft's edits. An invalid draft is returned as field
// errors without calling the remote.
func (d *Desk) SaveDraft(ctx context.Context, draft *trade.OrderDraft) (*OrderView, error) {
	if errs := draft.Validate(); errs.HasErrors() {
		return nil, errs
	}

	saved, err := d.remote.UpdateOrder(ctx, draft.OrderID, draft.ToUpdate())
	if err != nil {
		d.fail("Draft save failed", draft.OrderID, err)
		return nil, err
	}

	d.invalidateOrder(draft.OrderID)
	d.notifier.Success(fmt.Sprintf("Order %s saved", saved.OrderNumber))
	return d.LoadOrder(ctx, draft.OrderID)
}

// EditOrder loads an order into a new draft
func (d *Desk) EditOrder(ctx context.Context, id uuid.UUID) (*trade.OrderDraft, error) {
	view, err := d.LoadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return trade.NewDraft(view.Order), nil
}

// PlaceOrder moves a NEW order to PENDING
func (d *Desk) PlaceOrder(ctx context.Context, id uuid.UUID) (*remote.Order, error) {
	order, err := d.remote.PlaceOrder(ctx, id)
	if err != nil {
		d.fail("Place order failed", id, err)
		return nil, err
	}
	d.invalidateOrder(id)
	d.notifier.Success(fmt.Sprintf("Order %s placed", order.OrderNumber))
	return order, nil
}

// CancelOrder cancels an order with nothing fulfilled
func (d *Desk) CancelOrder(ctx context.Context, id uuid.UUID, reason string) (*remote.Order, error) {
	order, err := d.remote.CancelOrder(ctx, id, reason)
	if err != nil {
		d.fail("Cancel order failed", id, err)
		return nil, err
	}
	d.invalidateOrder(id)
	d.notifier.Success(fmt.Sprintf("Order %s cancelled", order.OrderNumber))
	return order, nil
}

func (d *Desk) invalidateOrder(id uuid.UUID) {
	d.cache.Invalidate(cache.OrderKey(id), cache.SummaryKey(id))
	d.cache.InvalidateResource(cache.ResourceOrderList, cache.ResourceStock, cache.ResourceDashboard)
}

func (d *Desk) fail(msg string, orderID uuid.UUID, err error) {
	d.notifier.Error(remote.ErrorMessage(err))
	d.logger.Warn(msg, zap.String("order_id", orderID.String()), zap.Error(err))
}
