package report

import (
	"context"

	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/erp/orderdesk/internal/domain/trade"
	"github.com/erp/orderdesk/internal/infrastructure/cache"
)

// DashboardInvalidator drops cached dashboards whenever an order changes
type DashboardInvalidator struct {
	cache *cache.QueryCache
}

// NewDashboardInvalidator creates a new DashboardInvalidator
func NewDashboardInvalidator(queryCache *cache.QueryCache) *DashboardInvalidator {
	return &DashboardInvalidator{cache: queryCache}
}

// EventTypes returns the event types this handler is interested in
func (h *DashboardInvalidator) EventTypes() []string {
	return []string{
		trade.EventTypeOrderPlaced,
		trade.EventTypeFulfillmentRecorded,
		trade.EventTypeOrderCompleted,
		trade.EventTypeOrderCancelled,
	}
}

// Handle invalidates every cached dashboard
func (h *DashboardInvalidator) Handle(_ context.Context, _ shared.DomainEvent) error {
	h.cache.InvalidateResource(cache.ResourceDashboard)
	return nil
}
