package catalog

import (
	"context"

	"github.com/erp/orderdesk/internal/application/validation"
	"github.com/erp/orderdesk/internal/domain/catalog"
	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/google/uuid"
)

// CategoryService handles category business operations
type CategoryService struct {
	repo catalog.CategoryRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(repo catalog.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// List retrieves categories with filtering and pagination
func (s *CategoryService) List(ctx context.Context, filter shared.Filter) ([]CategoryResponse, int64, error) {
	categories, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]CategoryResponse, len(categories))
	for i := range categories {
		out[i] = ToCategoryResponse(&categories[i])
	}
	return out, total, nil
}

// GetByID retrieves a category
func (s *CategoryService) GetByID(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Create creates a category; names are unique ignoring case
func (s *CategoryService) Create(ctx context.Context, form validation.CategoryForm) (*CategoryResponse, error) {
	if err := validation.Check(form); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, form.Name, uuid.Nil); err != nil {
		return nil, err
	}
	category, err := catalog.NewCategory(form.Name, form.Description)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, category); err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Update renames or re-describes a category
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, form validation.CategoryForm) (*CategoryResponse, error) {
	if err := validation.Check(form); err != nil {
		return nil, err
	}
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, form.Name, id); err != nil {
		return nil, err
	}
	if err := category.Update(form.Name, form.Description); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, category); err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Deactivate hides a category from new products
func (s *CategoryService) Deactivate(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := category.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, category); err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Delete removes a category that no product uses
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	used, err := s.repo.HasProducts(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return shared.NewDomainError("CATEGORY_IN_USE", "Category has products; deactivate it instead")
	}
	return s.repo.Delete(ctx, id)
}

func (s *CategoryService) ensureUniqueName(ctx context.Context, name string, excludeID uuid.UUID) error {
	exists, err := s.repo.ExistsByNameKey(ctx, catalog.FoldName(name), excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError(shared.ErrAlreadyExists.Code, "A category with this name already exists")
	}
	return nil
}
