package catalog

import (
	"context"
	"testing"

	"github.com/erp/orderdesk/internal/application/validation"
	"github.com/erp/orderdesk/internal/domain/catalog"
	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockCategoryRepository is a mock implementation of CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Category, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCategoryRepository) ExistsByNameKey(ctx context.Context, nameKey string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, nameKey, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCategoryRepository) HasProducts(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func TestCategoryService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates category", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		svc := NewCategoryService(repo)
		repo.On("ExistsByNameKey", ctx, "fasteners", uuid.Nil).Return(false, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*catalog.Category")).Return(nil)

		resp, err := svc.Create(ctx, validation.CategoryForm{Name: " Fasteners ", Description: "Bolts and nuts"})
		require.NoError(t, err)
		assert.Equal(t, "Fasteners", resp.Name)
		assert.Equal(t, "active", resp.Status)
		repo.AssertExpectations(t)
	})

	t.Run("rejects duplicate name ignoring case", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		svc := NewCategoryService(repo)
		repo.On("ExistsByNameKey", ctx, "fasteners", uuid.Nil).Return(true, nil)

		_, err := svc.Create(ctx, validation.CategoryForm{Name: "FASTENERS"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("rejects empty name before touching the repository", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		svc := NewCategoryService(repo)

		_, err := svc.Create(ctx, validation.CategoryForm{})
		var fieldErrs shared.FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Equal(t, "This field is required", fieldErrs["name"])
		repo.AssertExpectations(t)
	})
}

func TestCategoryService_Delete(t *testing.T) {
	ctx := context.Background()
	category, err := catalog.NewCategory("Tools", "")
	require.NoError(t, err)

	t.Run("refuses a category with products", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		svc := NewCategoryService(repo)
		repo.On("FindByID", ctx, category.ID).Return(category, nil)
		repo.On("HasProducts", ctx, category.ID).Return(true, nil)

		err := svc.Delete(ctx, category.ID)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CATEGORY_IN_USE", domainErr.Code)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("deletes an unused category", func(t *testing.T) {
		repo := new(MockCategoryRepository)
		svc := NewCategoryService(repo)
		repo.On("FindByID", ctx, category.ID).Return(category, nil)
		repo.On("HasProducts", ctx, category.ID).Return(false, nil)
		repo.On("Delete", ctx, category.ID).Return(nil)

		require.NoError(t, svc.Delete(ctx, category.ID))
		repo.AssertExpectations(t)
	})
}

func TestCategoryService_Deactivate(t *testing.T) {
	ctx := context.Background()
	repo := new(MockCategoryRepository)
	svc := NewCategoryService(repo)
	category, err := catalog.NewCategory("Paint", "")
	require.NoError(t, err)
	repo.On("FindByID", ctx, category.ID).Return(category, nil)
	repo.On("Save", ctx, category).Return(nil)

	resp, err := svc.Deactivate(ctx, category.ID)
	require.NoError(t, err)
	assert.Equal(t, "inactive", resp.Status)
}
