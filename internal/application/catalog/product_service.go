package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/orderdesk/internal/application/validation"
	"github.com/erp/orderdesk/internal/domain/catalog"
	"github.com/erp/orderdesk/internal/domain/partner"
	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductService handles product business operations
type ProductService struct {
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
	suppliers  partner.SupplierRepository
}

// NewProductService creates a new ProductService
func NewProductService(products catalog.ProductRepository, categories catalog.CategoryRepository, suppliers partner.SupplierRepository) *ProductService {
	return &ProductService{
		products:   products,
		categories: categories,
		suppliers:  suppliers,
	}
}

// List retrieves products with filtering and pagination
func (s *ProductService) List(ctx context.Context, filter shared.Filter) ([]ProductResponse, int64, error) {
	products, err := s.products.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.products.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out, total, nil
}

// GetByID retrieves a product
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetBySKU retrieves a product by SKU, case-insensitively
func (s *ProductService) GetBySKU(ctx context.Context, sku string) (*ProductResponse, error) {
	product, err := s.products.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Create creates a product with a unique SKU
func (s *ProductService) Create(ctx context.Context, form validation.ProductForm) (*ProductResponse, error) {
	if err := validation.Check(form); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, form); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueSKU(ctx, form.SKU, uuid.Nil); err != nil {
		return nil, err
	}

	product, err := catalog.NewProduct(toInput(form))
	if err != nil {
		return nil, err
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Update replaces the editable fields of a product
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, form validation.ProductForm) (*ProductResponse, error) {
	if err := validation.Check(form); err != nil {
		return nil, err
	}
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, form); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueSKU(ctx, form.SKU, id); err != nil {
		return nil, err
	}
	if err := product.Update(toInput(form)); err != nil {
		return nil, err
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Deactivate stops a product from being ordered
func (s *ProductService) Deactivate(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.Deactivate(); err != nil {
		return nil, err
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Delete removes a product
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.products.Delete(ctx, id)
}

func toInput(form validation.ProductForm) catalog.ProductInput {
	return catalog.ProductInput{
		SKU:         form.SKU,
		Name:        form.Name,
		CategoryID:  form.CategoryID,
		SupplierID:  form.SupplierID,
		UnitPrice:   form.UnitPrice,
		UnitCost:    form.UnitCost,
		Description: form.Description,
	}
}

func (s *ProductService) checkReferences(ctx context.Context, form validation.ProductForm) error {
	category, err := s.categories.FindByID(ctx, form.CategoryID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewValidationError("category_id", "INVALID_CATEGORY", "Category does not exist")
		}
		return err
	}
	if category.Status != catalog.StatusActive {
		return shared.NewValidationError("category_id", "INVALID_CATEGORY", "Category is inactive")
	}

	if form.SupplierID != nil && s.suppliers != nil {
		if _, err := s.suppliers.FindByID(ctx, *form.SupplierID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewValidationError("supplier_id", "INVALID_SUPPLIER", "Supplier does not exist")
			}
			return err
		}
	}
	return nil
}

func (s *ProductService) ensureUniqueSKU(ctx context.Context, sku string, excludeID uuid.UUID) error {
	existing, err := s.products.FindBySKU(ctx, strings.TrimSpace(sku))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != excludeID {
		return shared.NewDomainError(shared.ErrAlreadyExists.Code, "A product with this SKU already exists")
	}
	return nil
}
