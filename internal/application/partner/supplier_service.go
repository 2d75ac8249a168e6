package partner

import (
	"context"
	"strings"

	"github.com/erp/orderdesk/internal/application/validation"
	"github.com/erp/orderdesk/internal/domain/partner"
	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/google/uuid"
)

// SupplierService handles supplier business operations
type SupplierService struct {
	repo partner.SupplierRepository
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(repo partner.SupplierRepository) *SupplierService {
	return &SupplierService{repo: repo}
}

// List retrieves suppliers with filtering and pagination
func (s *SupplierService) List(ctx context.Context, filter shared.Filter) ([]PartnerResponse, int64, error) {
	suppliers, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]PartnerResponse, len(suppliers))
	for i := range suppliers {
		out[i] = ToSupplierResponse(&suppliers[i])
	}
	return out, total, nil
}

// GetByID retrieves a supplier
func (s *SupplierService) GetByID(ctx context.Context, id uuid.UUID) (*PartnerResponse, error) {
	supplier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// Create creates a supplier
func (s *SupplierService) Create(ctx context.Context, form validation.SupplierForm) (*PartnerResponse, error) {
	if err := validation.Check(form); err != nil {
		return nil, err
	}
	supplier, err := partner.NewSupplier(form.Name, toContact(form))
	if err != nil {
		return nil, err
	}
	supplier.Notes = strings.TrimSpace(form.Notes)
	if err := s.repo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// Update replaces a supplier's details
func (s *SupplierService) Update(ctx context.Context, id uuid.UUID, form validation.SupplierForm) (*PartnerResponse, error) {
	if err := validation.Check(form); err != nil {
		return nil, err
	}
	supplier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := supplier.Update(form.Name, toContact(form)); err != nil {
		return nil, err
	}
	supplier.Notes = strings.TrimSpace(form.Notes)
	if err := s.repo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// Deactivate removes a supplier from new purchase orders
func (s *SupplierService) Deactivate(ctx context.Context, id uuid.UUID) (*PartnerResponse, error) {
	supplier, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	supplier.Deactivate()
	if err := s.repo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// Delete removes a supplier
func (s *SupplierService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
