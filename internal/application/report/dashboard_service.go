package report

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/orderdesk/internal/domain/report"
	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/erp/orderdesk/internal/domain/trade"
	"github.com/erp/orderdesk/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// dashboardPageSize is the batch size used to read sale orders
const dashboardPageSize = 200

// DashboardService builds the sales dashboard. Results are cached per range
// until an order event invalidates them.
type DashboardService struct {
	orders trade.OrderRepository
	cache  *cache.QueryCache
	logger *zap.Logger
	now    func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(orders trade.OrderRepository, queryCache *cache.QueryCache, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		orders: orders,
		cache:  queryCache,
		logger: logger,
		now:    time.Now,
	}
}

// DefaultRange is the current calendar month up to and including today
func (s *DashboardService) DefaultRange() report.DashboardRange {
	now := s.now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return report.DashboardRange{From: from, To: to}
}

// SalesDashboard returns the dashboard of sale orders ordered in [rng.From, rng.To)
func (s *DashboardService) SalesDashboard(ctx context.Context, rng report.DashboardRange) (*report.SalesDashboard, error) {
	if !rng.From.IsZero() && !rng.To.IsZero() && !rng.From.Before(rng.To) {
		return nil, shared.NewValidationError("to", "INVALID_RANGE", "End date must be after the start date")
	}

	key := cache.ListKey(cache.ResourceDashboard, rangeKey(rng))
	dash, err := cache.Fetch(ctx, s.cache, key, func(ctx context.Context) (report.SalesDashboard, error) {
		return s.build(ctx, rng)
	})
	if err != nil {
		return nil, err
	}
	return &dash, nil
}

func rangeKey(rng report.DashboardRange) string {
	return fmt.Sprintf("%s_%s_%d", rng.From.Format(time.RFC3339), rng.To.Format(time.RFC3339), rng.TopN)
}

func (s *DashboardService) build(ctx context.Context, rng report.DashboardRange) (report.SalesDashboard, error) {
	filter := trade.OrderFilter{
		Filter: shared.Filter{
			Page:     1,
			PageSize: dashboardPageSize,
			OrderBy:  "ordered_at",
			OrderDir: "asc",
			Filters:  make(map[string]interface{}),
		},
		Kind: trade.OrderKindSale,
	}
	if !rng.From.IsZero() {
		filter.Filters["ordered_from"] = rng.From
	}
	if !rng.To.IsZero() {
		filter.Filters["ordered_to"] = rng.To
	}

	var orders []trade.Order
	for {
		page, err := s.orders.FindAll(ctx, filter)
		if err != nil {
			return report.SalesDashboard{}, fmt.Errorf("load sale orders: %w", err)
		}
		orders = append(orders, page...)
		if len(page) < filter.PageSize {
			break
		}
		filter.Page++
	}

	dash := report.BuildSalesDashboard(orders, rng)
	s.logger.Debug("sales dashboard built",
		zap.Int("orders", len(orders)),
		zap.Int64("total_amount", dash.TotalAmount),
	)
	return dash, nil
}
