package handler

import (
	inventoryapp "github.com/erp/orderdesk/internal/application/inventory"
	"github.com/erp/orderdesk/internal/application/validation"
	"github.com/erp/orderdesk/internal/domain/inventory"
	"github.com/gin-gonic/gin"
)

// StockHandler handles stock levels and the stock ledger
type StockHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *inventoryapp.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

func stockFilter(form validation.StockListForm) inventoryapp.StockListFilter {
	return inventoryapp.StockListFilter{
		Page:        form.Page,
		PageSize:    form.PageSize,
		OrderBy:     form.OrderBy,
		OrderDir:    form.OrderDir,
		WarehouseID: parseOptionalUUID(form.WarehouseID),
		ProductID:   parseOptionalUUID(form.ProductID),
		OrderID:     parseOptionalUUID(form.OrderID),
		Type:        inventory.TransactionType(form.Type),
		InStock:     form.InStock,
	}
}

// List godoc
// @Summary      List stock levels
// @Tags         stock
// @Produce      json
// @Param        warehouse_id query string false "Warehouse ID"
// @Param        product_id   query string false "Product ID"
// @Param        in_stock     query bool   false "Only items with quantity > 0"
// @Param        page         query int    false "Page number" default(1)
// @Param        page_size    query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]inventoryapp.StockItemResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /stock [get]
func (h *StockHandler) List(c *gin.Context) {
	var form validation.StockListForm
	if !h.BindQuery(c, &form) {
		return
	}
	filter := stockFilter(form)
	items, total, err := h.stockService.ListStock(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// ListTransactions godoc
// @Summary      List stock ledger entries
// @Description  Newest first unless order_by is given
// @Tags         stock
// @Produce      json
// @Param        warehouse_id query string false "Warehouse ID"
// @Param        product_id   query string false "Product ID"
// @Param        order_id     query string false "Order ID"
// @Param        type         query string false "RECEIPT, DELIVERY, TRANSFER_IN or TRANSFER_OUT"
// @Success      200 {object} dto.Response{data=[]inventoryapp.StockTransactionResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /stock/transactions [get]
func (h *StockHandler) ListTransactions(c *gin.Context) {
	var form validation.StockListForm
	if !h.BindQuery(c, &form) {
		return
	}
	filter := stockFilter(form)
	entries, total, err := h.stockService.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, entries, total, filter.Page, filter.PageSize)
}

// Transfer moves stock between warehouses
func (h *StockHandler) Transfer(c *gin.Context) {
	var form validation.StockTransferForm
	if !h.BindJSON(c, &form) {
		return
	}
	entries, err := h.stockService.Transfer(c.Request.Context(), form)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entries)
}
