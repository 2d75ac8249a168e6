package persistence

import (
	"context"

	"github.com/erp/orderdesk/internal/domain/trade"
	"github.com/erp/orderdesk/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormFulfillmentRepository implements FulfillmentRepository using GORM
type GormFulfillmentRepository struct {
	db *gorm.DB
}

// NewGormFulfillmentRepository creates a new GormFulfillmentRepository
func NewGormFulfillmentRepository(db *gorm.DB) *GormFulfillmentRepository {
	return &GormFulfillmentRepository{db: db}
}

// Create stores a fulfillment event
func (r *GormFulfillmentRepository) Create(ctx context.Context, event *trade.FulfillmentEvent) error {
	return translateError(dbFor(ctx, r.db).Create(models.FulfillmentModelFromDomain(event)).Error)
}

// FindByOrder lists the events of an order, oldest first
func (r *GormFulfillmentRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]trade.FulfillmentEvent, error) {
	var rows []models.FulfillmentModel
	err := dbFor(ctx, r.db).
		Where("order_id = ?", orderID).
		Order("recorded_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	events := make([]trade.FulfillmentEvent, len(rows))
	for i := range rows {
		events[i] = rows[i].ToDomain()
	}
	return events, nil
}

// SummaryByOrder returns the aggregate fulfilled quantity per line.
// Lines without events are absent from the summary.
func (r *GormFulfillmentRepository) SummaryByOrder(ctx context.Context, orderID uuid.UUID) (trade.FulfillmentSummary, error) {
	var rows []struct {
		LineID   uuid.UUID
		Quantity int64
	}
	err := dbFor(ctx, r.db).Model(&models.FulfillmentModel{}).
		Select("line_id, SUM(quantity) AS quantity").
		Where("order_id = ?", orderID).
		Group("line_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summary := make(trade.FulfillmentSummary, len(rows))
	for _, row := range rows {
		summary[row.LineID] = row.Quantity
	}
	return summary, nil
}

var _ trade.FulfillmentRepository = (*GormFulfillmentRepository)(nil)
