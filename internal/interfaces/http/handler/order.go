package handler

import (
	tradeapp "github.com/erp/orderdesk/internal/application/trade"
	"github.com/erp/orderdesk/internal/application/validation"
	"github.com/erp/orderdesk/internal/domain/trade"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader carries the client-chosen key of a fulfillment submission
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderHandler handles order and fulfillment endpoints
type OrderHandler struct {
	BaseHandler
	orderService *tradeapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService *tradeapp.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// List godoc
// @Summary      List orders
// @Description  List purchase and sale orders with filtering and pagination
// @Tags         orders
// @Produce      json
// @Param        kind            query string false "PURCHASE or SALE"
// @Param        status          query string false "Order status"
// @Param        counterparty_id query string false "Supplier or customer ID"
// @Param        search          query string false "Order number or counterparty name"
// @Param        page            query int    false "Page number" default(1)
// @Param        page_size       query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]tradeapp.OrderResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	var form validation.OrderListForm
	if !h.BindQuery(c, &form) {
		return
	}

	base := form.ListForm.Filter("ordered_at")
	filter := tradeapp.OrderListFilter{
		Page:           base.Page,
		PageSize:       base.PageSize,
		OrderBy:        base.OrderBy,
		OrderDir:       base.OrderDir,
		Search:         base.Search,
		Kind:           trade.OrderKind(form.Kind),
		Status:         trade.OrderStatus(form.Status),
		CounterpartyID: parseOptionalUUID(form.CounterpartyID),
	}
	if form.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	orders, total, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// Create godoc
// @Summary      Create an order
// @Description  Create a NEW purchase or sale order with its lines
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body validation.OrderForm true "Order"
// @Success      201 {object} dto.Response{data=tradeapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var form validation.OrderForm
	if !h.BindJSON(c, &form) {
		return
	}
	order, err := h.orderService.Create(c.Request.Context(), form)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// GetByID godoc
// @Summary      Get order by ID
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=tradeapp.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Update godoc
// @Summary      Edit a NEW order
// @Description  Change the description and line quantities. A non-zero version must match the stored one.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id      path string                     true "Order ID"
// @Param        request body validation.OrderUpdateForm true "Edits"
// @Success      200 {object} dto.Response{data=tradeapp.OrderResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id} [put]
func (h *OrderHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var form validation.OrderUpdateForm
	if !h.BindJSON(c, &form) {
		return
	}
	order, err := h.orderService.Update(c.Request.Context(), id, form)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Delete removes a NEW order
func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.orderService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Place moves a NEW order to PENDING
func (h *OrderHandler) Place(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.Place(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Cancel cancels an order with nothing fulfilled
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var form validation.CancelForm
	if !h.BindJSON(c, &form) {
		return
	}
	order, err := h.orderService.Cancel(c.Request.Context(), id, form)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Summary godoc
// @Summary      Fulfillment summary
// @Description  Ordered, fulfilled and remaining quantity per line
// @Tags         fulfillments
// @Produce      json
// @Param        id path string true "Order ID"
// @Success      200 {object} dto.Response{data=tradeapp.FulfillmentSummaryResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/fulfillment-summary [get]
func (h *OrderHandler) Summary(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	summary, err := h.orderService.Summary(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// ListFulfillments returns the recorded receipts or deliveries of an order
func (h *OrderHandler) ListFulfillments(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	events, err := h.orderService.ListFulfillments(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, events)
}

// RecordFulfillment godoc
// @Summary      Record a receipt or delivery
// @Description  Records a fulfillment against one order line. Resending a completed Idempotency-Key replays the first result with 200; resending one still in progress yields 409.
// @Tags         fulfillments
// @Accept       json
// @Produce      json
// @Param        id              path   string                     true  "Order ID"
// @Param        Idempotency-Key header string                     false "Client-chosen request key"
// @Param        request         body   validation.FulfillmentForm true  "Fulfillment"
// @Success      201 {object} dto.Response{data=tradeapp.FulfillmentResultResponse}
// @Success      200 {object} dto.Response{data=tradeapp.FulfillmentResultResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /orders/{id}/fulfillments [post]
func (h *OrderHandler) RecordFulfillment(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var form validation.FulfillmentForm
	if !h.BindJSON(c, &form) {
		return
	}
	result, err := h.orderService.RecordFulfillment(c.Request.Context(), id, form, c.GetHeader(IdempotencyKeyHeader))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.Replayed {
		h.Success(c, result)
		return
	}
	h.Created(c, result)
}
