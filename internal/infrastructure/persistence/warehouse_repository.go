package persistence

import (
	"context"

	"github.com/erp/orderdesk/internal/domain/partner"
	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/erp/orderdesk/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormWarehouseRepository implements WarehouseRepository using GORM
type GormWarehouseRepository struct {
	db *gorm.DB
}

// NewGormWarehouseRepository creates a new GormWarehouseRepository
func NewGormWarehouseRepository(db *gorm.DB) *GormWarehouseRepository {
	return &GormWarehouseRepository{db: db}
}

// FindByID finds a warehouse by its ID
func (r *GormWarehouseRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Warehouse, error) {
	var model models.WarehouseModel
	if err := dbFor(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds all warehouses matching the filter
func (r *GormWarehouseRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Warehouse, error) {
	var rows []models.WarehouseModel
	query := paginate(r.applyFilter(dbFor(ctx, r.db).Model(&models.WarehouseModel{}), filter),
		filter, WarehouseSortFields, "name")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	warehouses := make([]partner.Warehouse, len(rows))
	for i := range rows {
		warehouses[i] = *rows[i].ToDomain()
	}
	return warehouses, nil
}

// Count counts warehouses matching the filter
func (r *GormWarehouseRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(dbFor(ctx, r.db).Model(&models.WarehouseModel{}), filter).Count(&count).Error
	return count, err
}

// ExistsByNameKey checks whether another warehouse uses the folded name
func (r *GormWarehouseRepository) ExistsByNameKey(ctx context.Context, nameKey string, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := dbFor(ctx, r.db).Model(&models.WarehouseModel{}).
		Where("name_key = ? AND id <> ?", nameKey, excludeID).
		Count(&count).Error
	return count > 0, err
}

// Save creates or updates a warehouse
func (r *GormWarehouseRepository) Save(ctx context.Context, warehouse *partner.Warehouse) error {
	if err := dbFor(ctx, r.db).Save(models.WarehouseModelFromDomain(warehouse)).Error; err != nil {
		return translateError(err)
	}
	warehouse.MarkStored()
	return nil
}

// Delete deletes a warehouse
func (r *GormWarehouseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFor(ctx, r.db).Delete(&models.WarehouseModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormWarehouseRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = whereSearch(query, filter.Search, "name", "location")
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	return query
}

var _ partner.WarehouseRepository = (*GormWarehouseRepository)(nil)
