package handler

import (
	"context"

	partnerapp "github.com/erp/orderdesk/internal/application/partner"
	"github.com/erp/orderdesk/internal/application/validation"
	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PartnerService is implemented by the supplier and customer services
type PartnerService interface {
	List(ctx context.Context, filter shared.Filter) ([]partnerapp.PartnerResponse, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*partnerapp.PartnerResponse, error)
	Create(ctx context.Context, form validation.PartnerForm) (*partnerapp.PartnerResponse, error)
	Update(ctx context.Context, id uuid.UUID, form validation.PartnerForm) (*partnerapp.PartnerResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*partnerapp.PartnerResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PartnerHandler serves either the supplier or the customer endpoints
type PartnerHandler struct {
	BaseHandler
	service PartnerService
}

// NewSupplierHandler creates the handler of /suppliers
func NewSupplierHandler(service *partnerapp.SupplierService) *PartnerHandler {
	return &PartnerHandler{service: service}
}

// NewCustomerHandler creates the handler of /customers
func NewCustomerHandler(service *partnerapp.CustomerService) *PartnerHandler {
	return &PartnerHandler{service: service}
}

// List godoc
// @Summary      List suppliers or customers
// @Tags         partners
// @Produce      json
// @Param        search    query string false "Name or contact contains"
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Success      200 {object} dto.Response{data=[]partnerapp.PartnerResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /suppliers [get]
// @Router       /customers [get]
func (h *PartnerHandler) List(c *gin.Context) {
	var form validation.ListForm
	if !h.BindQuery(c, &form) {
		return
	}
	filter := form.Filter("name")
	partners, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, partners, total, filter.Page, filter.PageSize)
}

// GetByID returns one partner
func (h *PartnerHandler) GetByID(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	p, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Create creates a partner
func (h *PartnerHandler) Create(c *gin.Context) {
	var form validation.PartnerForm
	if !h.BindJSON(c, &form) {
		return
	}
	p, err := h.service.Create(c.Request.Context(), form)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, p)
}

// Update replaces a partner's contact details
func (h *PartnerHandler) Update(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var form validation.PartnerForm
	if !h.BindJSON(c, &form) {
		return
	}
	p, err := h.service.Update(c.Request.Context(), id, form)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Deactivate stops new orders against a partner
func (h *PartnerHandler) Deactivate(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	p, err := h.service.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Delete removes a partner
func (h *PartnerHandler) Delete(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
