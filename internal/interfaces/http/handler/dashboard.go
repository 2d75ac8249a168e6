package handler

import (
	"time"

	reportapp "github.com/erp/orderdesk/internal/application/report"
	"github.com/erp/orderdesk/internal/application/validation"
	"github.com/erp/orderdesk/internal/domain/report"
	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the sales dashboard
type DashboardHandler struct {
	BaseHandler
	dashboardService *reportapp.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *reportapp.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Sales godoc
// @Summary      Sales dashboard
// @Description  Totals of sale orders ordered in [from, to). Without dates the current month is used.
// @Tags         dashboard
// @Produce      json
// @Param        from  query string false "First day, YYYY-MM-DD"
// @Param        to    query string false "Day after the last, YYYY-MM-DD"
// @Param        top_n query int    false "Number of top products" default(5)
// @Success      200 {object} dto.Response{data=report.SalesDashboard}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /dashboard/sales [get]
func (h *DashboardHandler) Sales(c *gin.Context) {
	var form validation.DashboardForm
	if !h.BindQuery(c, &form) {
		return
	}

	rng := h.dashboardService.DefaultRange()
	if form.From != "" || form.To != "" {
		rng = report.DashboardRange{}
	}
	// format already checked by the form
	if form.From != "" {
		rng.From, _ = time.Parse(time.DateOnly, form.From)
	}
	if form.To != "" {
		rng.To, _ = time.Parse(time.DateOnly, form.To)
	}
	rng.TopN = form.TopN

	dash, err := h.dashboardService.SalesDashboard(c.Request.Context(), rng)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dash)
}
