package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/erp/orderdesk/internal/domain/trade"
	"github.com/google/uuid"
)

// GetOrder fetches one order
func (c *Client) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	var out Order
	if _, err := c.call(ctx, request{method: http.MethodGet, path: "orders/" + id.String()}, &out); err != nil {
		return nil, err
	}
	if out.ID != id {
		return nil, malformed(http.StatusOK, "order %s returned for %s", out.ID, id)
	}
	return &out, nil
}

// GetFulfillmentSummary fetches the aggregate fulfilled quantity per line
func (c *Client) GetFulfillmentSummary(ctx context.Context, orderID uuid.UUID) (trade.FulfillmentSummary, error) {
	var out FulfillmentSummary
	path := "orders/" + orderID.String() + "/fulfillment-summary"
	if _, err := c.call(ctx, request{method: http.MethodGet, path: path}, &out); err != nil {
		return nil, err
	}
	if out.OrderID != orderID {
		return nil, malformed(http.StatusOK, "summary of %s returned for %s", out.OrderID, orderID)
	}
	return out.ToDomain(), nil
}

// PostFulfillment records a receipt or delivery. A non-empty idempotencyKey
// makes the call safe to retry.
func (c *Client) PostFulfillment(ctx context.Context, event trade.FulfillmentEvent, idempotencyKey string) (*FulfillmentResult, error) {
	r := request{
		method: http.MethodPost,
		path:   "orders/" + event.OrderID.String() + "/fulfillments",
		body: FulfillmentInput{
			LineID:      event.LineID,
			WarehouseID: event.WarehouseID,
			Quantity:    event.Quantity,
			Note:        event.Note,
		},
	}
	if idempotencyKey != "" {
		r.headers = map[string]string{IdempotencyKeyHeader: idempotencyKey}
	}

	var out FulfillmentResult
	if _, err := c.call(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListFulfillments returns the recorded events of an order, oldest first
func (c *Client) ListFulfillments(ctx context.Context, orderID uuid.UUID) ([]Fulfillment, error) {
	var out []Fulfillment
	path := "orders/" + orderID.String() + "/fulfillments"
	if _, err := c.call(ctx, request{method: http.MethodGet, path: path}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateOrder saves a draft. Only NEW orders accept edits.
func (c *Client) UpdateOrder(ctx context.Context, id uuid.UUID, update trade.OrderUpdate) (*Order, error) {
	var out Order
	if _, err := c.call(ctx, request{method: http.MethodPut, path: "orders/" + id.String(), body: update}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateOrder creates a NEW order from a validated order form body
func (c *Client) CreateOrder(ctx context.Context, body any) (*Order, error) {
	var out Order
	if _, err := c.call(ctx, request{method: http.MethodPost, path: "orders", body: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PlaceOrder moves a NEW order to PENDING
func (c *Client) PlaceOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	var out Order
	if _, err := c.call(ctx, request{method: http.MethodPost, path: "orders/" + id.String() + "/place"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelOrder cancels an order that has nothing fulfilled yet
func (c *Client) CancelOrder(ctx context.Context, id uuid.UUID, reason string) (*Order, error) {
	var out Order
	body := map[string]string{"reason": reason}
	if _, err := c.call(ctx, request{method: http.MethodPost, path: "orders/" + id.String() + "/cancel", body: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOrders returns one page of orders
func (c *Client) ListOrders(ctx context.Context, q OrderQuery) (*Page[Order], error) {
	var out []Order
	meta, err := c.call(ctx, request{method: http.MethodGet, path: "orders", query: q.values()}, &out)
	if err != nil {
		return nil, err
	}
	return newPage(out, meta)
}

func (q OrderQuery) values() url.Values {
	v := url.Values{}
	if q.Kind != "" {
		v.Set("kind", q.Kind)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(q.PageSize))
	}
	return v
}

// Encode returns a stable string form of the query, used as a cache key ID
func (q OrderQuery) Encode() string {
	return q.values().Encode()
}

func newPage[T any](items []T, meta *PageMeta) (*Page[T], error) {
	if meta == nil {
		return nil, malformed(http.StatusOK, "list response has no pagination")
	}
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, Meta: *meta}, nil
}
