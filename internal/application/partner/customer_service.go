package partner

import (
	"context"
	"strings"

	"github.com/erp/orderdesk/internal/application/validation"
	"github.com/erp/orderdesk/internal/domain/partner"
	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerService handles customer business operations
type CustomerService struct {
	repo partner.CustomerRepository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(repo partner.CustomerRepository) *CustomerService {
	return &CustomerService{repo: repo}
}

// List retrieves customers with filtering and pagination
func (s *CustomerService) List(ctx context.Context, filter shared.Filter) ([]PartnerResponse, int64, error) {
	customers, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]PartnerResponse, len(customers))
	for i := range customers {
		out[i] = ToCustomerResponse(&customers[i])
	}
	return out, total, nil
}

// GetByID retrieves a customer
func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*PartnerResponse, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// Create creates a customer
func (s *CustomerService) Create(ctx context.Context, form validation.CustomerForm) (*PartnerResponse, error) {
	if err := validation.Check(form); err != nil {
		return nil, err
	}
	customer, err := partner.NewCustomer(form.Name, toContact(form))
	if err != nil {
		return nil, err
	}
	customer.Notes = strings.TrimSpace(form.Notes)
	if err := s.repo.Save(ctx, customer); err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// Update replaces a customer's details
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, form validation.CustomerForm) (*PartnerResponse, error) {
	if err := validation.Check(form); err != nil {
		return nil, err
	}
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := customer.Update(form.Name, toContact(form)); err != nil {
		return nil, err
	}
	customer.Notes = strings.TrimSpace(form.Notes)
	if err := s.repo.Save(ctx, customer); err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// Deactivate removes a customer from new sale orders
func (s *CustomerService) Deactivate(ctx context.Context, id uuid.UUID) (*PartnerResponse, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	customer.Deactivate()
	if err := s.repo.Save(ctx, customer); err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// Delete removes a customer
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
