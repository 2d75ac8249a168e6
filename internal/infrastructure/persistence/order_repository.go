package persistence

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/erp/orderdesk/internal/domain/trade"
	"github.com/erp/orderdesk/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db, now: time.Now}
}

func preloadLines(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, id ASC")
}

// FindByID finds an order with its lines by ID. Inside a postgres
// transaction the order row is locked until commit, so concurrent
// fulfillments of one order queue instead of failing the version check.
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var model models.OrderModel
	err := lockingDBFor(ctx, r.db).
		Preload("Lines", preloadLines).
		First(&model, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByOrderNumber finds an order by its number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*trade.Order, error) {
	var model models.OrderModel
	err := dbFor(ctx, r.db).
		Preload("Lines", preloadLines).
		First(&model, "order_number = ?", orderNumber).Error
	if err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds orders with filtering and pagination. Lines are loaded so
// list views can show totals and progress.
func (r *GormOrderRepository) FindAll(ctx context.Context, filter trade.OrderFilter) ([]trade.Order, error) {
	var rows []models.OrderModel
	query := r.applyFilter(dbFor(ctx, r.db).Model(&models.OrderModel{}), filter)
	query = paginate(query, filter.Filter, OrderSortFields, "ordered_at")
	if err := query.Preload("Lines", preloadLines).Find(&rows).Error; err != nil {
		return nil, err
	}

	orders := make([]trade.Order, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

// Count counts orders matching the filter
func (r *GormOrderRepository) Count(ctx context.Context, filter trade.OrderFilter) (int64, error) {
	var count int64
	err := r.applyFilter(dbFor(ctx, r.db).Model(&models.OrderModel{}), filter).Count(&count).Error
	return count, err
}

// Save creates or updates an order and its lines
func (r *GormOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	model := models.OrderModelFromDomain(order)
	err := inTransaction(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(model).Error; err != nil {
			return translateError(err)
		}
		return r.syncLines(tx, order.ID, model.Lines)
	})
	if err != nil {
		return err
	}
	order.MarkStored()
	return nil
}

// SaveWithLock updates an order only if nobody else saved it since it was
// loaded. A stale order yields CONCURRENCY_CONFLICT.
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, order *trade.Order) error {
	model := models.OrderModelFromDomain(order)
	err := inTransaction(ctx, r.db, func(tx *gorm.DB) error {
		result := tx.Model(&models.OrderModel{}).
			Where("id = ? AND version = ?", order.ID, order.StoredVersion()).
			Updates(map[string]any{
				"counterparty_id":   model.CounterpartyID,
				"counterparty_name": model.CounterpartyName,
				"status":            model.Status,
				"description":       model.Description,
				"placed_at":         model.PlacedAt,
				"completed_at":      model.CompletedAt,
				"cancelled_at":      model.CancelledAt,
				"cancel_reason":     model.CancelReason,
				"version":           model.Version,
				"updated_at":        model.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.OrderModel{}).Where("id = ?", order.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.ErrNotFound
			}
			return shared.ErrConcurrencyConflict
		}
		return r.syncLines(tx, order.ID, model.Lines)
	})
	if err != nil {
		return err
	}
	order.MarkStored()
	return nil
}

// syncLines makes the stored lines of an order match lines
func (r *GormOrderRepository) syncLines(tx *gorm.DB, orderID uuid.UUID, lines []models.OrderLineModel) error {
	keep := make([]uuid.UUID, len(lines))
	for i := range lines {
		keep[i] = lines[i].ID
	}

	stale := tx.Where("order_id = ?", orderID)
	if len(keep) > 0 {
		stale = stale.Where("id NOT IN ?", keep)
	}
	if err := stale.Delete(&models.OrderLineModel{}).Error; err != nil {
		return err
	}

	for i := range lines {
		if err := tx.Save(&lines[i]).Error; err != nil {
			return translateError(err)
		}
	}
	return nil
}

// Delete deletes a NEW order with its lines
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return inTransaction(ctx, r.db, func(tx *gorm.DB) error {
		var model models.OrderModel
		if err := tx.Select("id", "status").First(&model, "id = ?", id).Error; err != nil {
			return translateError(err)
		}
		if model.Status != trade.OrderStatusNew {
			return shared.NewDomainError(shared.ErrInvalidState.Code,
				fmt.Sprintf("Cannot delete order in %s status", model.Status))
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderLineModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.OrderModel{}, "id = ?", id).Error
	})
}

// GenerateOrderNumber returns the next number for the kind and day.
// Format: PREFIX-YYYYMMDD-NNNN (e.g., PO-20260115-0001)
func (r *GormOrderRepository) GenerateOrderNumber(ctx context.Context, kind trade.OrderKind) (string, error) {
	if !kind.IsValid() {
		return "", shared.NewDomainError("INVALID_KIND", "Order kind must be PURCHASE or SALE")
	}
	prefix := fmt.Sprintf("%s-%s-", kind.NumberPrefix(), r.now().Format("20060102"))

	var numbers []string
	err := dbFor(ctx, r.db).Model(&models.OrderModel{}).
		Where("order_number LIKE ?", prefix+"%").
		Order("order_number DESC").
		Limit(1).
		Pluck("order_number", &numbers).Error
	if err != nil {
		return "", err
	}

	next := 1
	if len(numbers) > 0 {
		if n, err := strconv.Atoi(strings.TrimPrefix(numbers[0], prefix)); err == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s%04d", prefix, next), nil
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter trade.OrderFilter) *gorm.DB {
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CounterpartyID != nil {
		query = query.Where("counterparty_id = ?", *filter.CounterpartyID)
	}
	query = whereSearch(query, filter.Search, "order_number", "counterparty_name", "description")

	for key, value := range filter.Filters {
		switch key {
		case "statuses":
			if statuses, ok := value.([]trade.OrderStatus); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "ordered_from":
			if t, ok := value.(time.Time); ok && !t.IsZero() {
				query = query.Where("ordered_at >= ?", t)
			}
		case "ordered_to":
			if t, ok := value.(time.Time); ok && !t.IsZero() {
				query = query.Where("ordered_at < ?", t)
			}
		}
	}
	return query
}

var _ trade.OrderRepository = (*GormOrderRepository)(nil)
