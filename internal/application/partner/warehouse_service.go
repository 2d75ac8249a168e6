package partner

import (
	"context"

	"github.com/erp/orderdesk/internal/application/validation"
	"github.com/erp/orderdesk/internal/domain/catalog"
	"github.com/erp/orderdesk/internal/domain/partner"
	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/google/uuid"
)

// WarehouseService handles warehouse business operations
type WarehouseService struct {
	repo partner.WarehouseRepository
}

// NewWarehouseService creates a new WarehouseService
func NewWarehouseService(repo partner.WarehouseRepository) *WarehouseService {
	return &WarehouseService{repo: repo}
}

// List retrieves warehouses with filtering and pagination
func (s *WarehouseService) List(ctx context.Context, filter shared.Filter) ([]WarehouseResponse, int64, error) {
	warehouses, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]WarehouseResponse, len(warehouses))
	for i := range warehouses {
		out[i] = ToWarehouseResponse(&warehouses[i])
	}
	return out, total, nil
}

// GetByID retrieves a warehouse
func (s *WarehouseService) GetByID(ctx context.Context, id uuid.UUID) (*WarehouseResponse, error) {
	warehouse, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToWarehouseResponse(warehouse)
	return &resp, nil
}

// Create creates a warehouse; names are unique ignoring case
func (s *WarehouseService) Create(ctx context.Context, form validation.WarehouseForm) (*WarehouseResponse, error) {
	if err := validation.Check(form); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, form.Name, uuid.Nil); err != nil {
		return nil, err
	}
	warehouse, err := partner.NewWarehouse(form.Name, form.Location)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, warehouse); err != nil {
		return nil, err
	}
	resp := ToWarehouseResponse(warehouse)
	return &resp, nil
}

// Update renames or relocates a warehouse
func (s *WarehouseService) Update(ctx context.Context, id uuid.UUID, form validation.WarehouseForm) (*WarehouseResponse, error) {
	if err := validation.Check(form); err != nil {
		return nil, err
	}
	warehouse, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(ctx, form.Name, id); err != nil {
		return nil, err
	}
	if err := warehouse.Update(form.Name, form.Location); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, warehouse); err != nil {
		return nil, err
	}
	resp := ToWarehouseResponse(warehouse)
	return &resp, nil
}

// Deactivate closes a warehouse for fulfillments
func (s *WarehouseService) Deactivate(ctx context.Context, id uuid.UUID) (*WarehouseResponse, error) {
	warehouse, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	warehouse.Deactivate()
	if err := s.repo.Save(ctx, warehouse); err != nil {
		return nil, err
	}
	resp := ToWarehouseResponse(warehouse)
	return &resp, nil
}

// Delete removes a warehouse
func (s *WarehouseService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *WarehouseService) ensureUniqueName(ctx context.Context, name string, excludeID uuid.UUID) error {
	exists, err := s.repo.ExistsByNameKey(ctx, catalog.FoldName(name), excludeID)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError(shared.ErrAlreadyExists.Code, "A warehouse with this name already exists")
	}
	return nil
}
