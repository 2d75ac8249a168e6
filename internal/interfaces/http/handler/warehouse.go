package handler

import (
	partnerapp "github.com/erp/orderdesk/internal/application/partner"
	"github.com/erp/orderdesk/internal/application/validation"
	"github.com/gin-gonic/gin"
)

// WarehouseHandler handles warehouse endpoints
type WarehouseHandler struct {
	BaseHandler
	warehouseService *partnerapp.WarehouseService
}

// NewWarehouseHandler creates a new WarehouseHandler
func NewWarehouseHandler(warehouseService *partnerapp.WarehouseService) *WarehouseHandler {
	return &WarehouseHandler{warehouseService: warehouseService}
}

// List returns one page of warehouses
func (h *WarehouseHandler) List(c *gin.Context) {
	var form validation.ListForm
	if !h.BindQuery(c, &form) {
		return
	}
	filter := form.Filter("name")
	warehouses, total, err := h.warehouseService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, warehouses, total, filter.Page, filter.PageSize)
}

func (h *WarehouseHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	w, err := h.warehouseService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, w)
}

func (h *WarehouseHandler) Create(c *gin.Context) {
	var form validation.WarehouseForm
	if !h.BindJSON(c, &form) {
		return
	}
	w, err := h.warehouseService.Create(c.Request.Context(), form)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, w)
}

func (h *WarehouseHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var form validation.WarehouseForm
	if !h.BindJSON(c, &form) {
		return
	}
	w, err := h.warehouseService.Update(c.Request.Context(), id, form)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, w)
}

func (h *WarehouseHandler) Deactivate(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	w, err := h.warehouseService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, w)
}

func (h *WarehouseHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.warehouseService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
