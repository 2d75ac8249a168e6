package persistence

import (
	"context"

	"github.com/erp/orderdesk/internal/domain/catalog"
	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/erp/orderdesk/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	var model models.CategoryModel
	if err := dbFor(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds all categories matching the filter
func (r *GormCategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Category, error) {
	var rows []models.CategoryModel
	query := paginate(r.applyFilter(dbFor(ctx, r.db).Model(&models.CategoryModel{}), filter),
		filter, CategorySortFields, "name")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	categories := make([]catalog.Category, len(rows))
	for i := range rows {
		categories[i] = *rows[i].ToDomain()
	}
	return categories, nil
}

// Count counts categories matching the filter
func (r *GormCategoryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(dbFor(ctx, r.db).Model(&models.CategoryModel{}), filter).Count(&count).Error
	return count, err
}

// ExistsByNameKey checks whether another category uses the folded name
func (r *GormCategoryRepository) ExistsByNameKey(ctx context.Context, nameKey string, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := dbFor(ctx, r.db).Model(&models.CategoryModel{}).
		Where("name_key = ? AND id <> ?", nameKey, excludeID).
		Count(&count).Error
	return count > 0, err
}

// HasProducts checks if any product references the category
func (r *GormCategoryRepository) HasProducts(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := dbFor(ctx, r.db).Model(&models.ProductModel{}).
		Where("category_id = ?", id).
		Count(&count).Error
	return count > 0, err
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	if err := dbFor(ctx, r.db).Save(models.CategoryModelFromDomain(category)).Error; err != nil {
		return translateError(err)
	}
	category.MarkStored()
	return nil
}

// Delete deletes a category
func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFor(ctx, r.db).Delete(&models.CategoryModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormCategoryRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = whereSearch(query, filter.Search, "name", "description")
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	return query
}

var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
