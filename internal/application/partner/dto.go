package partner

import (
	"time"

	"github.com/erp/orderdesk/internal/application/validation"
	"github.com/erp/orderdesk/internal/domain/partner"
	"github.com/google/uuid"
)

// PartnerResponse is the supplier and customer payload
type PartnerResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	ContactName string    `json:"contact_name"`
	Phone       string    `json:"phone"`
	Email       string    `json:"email"`
	PostalCode  string    `json:"postal_code"`
	Address     string    `json:"address"`
	Notes       string    `json:"notes"`
	Status      string    `json:"status"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToSupplierResponse converts a supplier
func ToSupplierResponse(s *partner.Supplier) PartnerResponse {
	return PartnerResponse{
		ID:          s.ID,
		Name:        s.Name,
		ContactName: s.ContactName,
		Phone:       s.Phone,
		Email:       s.Email,
		PostalCode:  s.PostalCode,
		Address:     s.Address,
		Notes:       s.Notes,
		Status:      string(s.Status),
		Version:     s.Version,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// ToCustomerResponse converts a customer
func ToCustomerResponse(c *partner.Customer) PartnerResponse {
	return PartnerResponse{
		ID:          c.ID,
		Name:        c.Name,
		ContactName: c.ContactName,
		Phone:       c.Phone,
		Email:       c.Email,
		PostalCode:  c.PostalCode,
		Address:     c.Address,
		Notes:       c.Notes,
		Status:      string(c.Status),
		Version:     c.Version,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// WarehouseResponse is the warehouse payload
type WarehouseResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Status    string    `json:"status"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToWarehouseResponse converts a warehouse
func ToWarehouseResponse(w *partner.Warehouse) WarehouseResponse {
	return WarehouseResponse{
		ID:        w.ID,
		Name:      w.Name,
		Location:  w.Location,
		Status:    string(w.Status),
		Version:   w.Version,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}

func toContact(form validation.PartnerForm) partner.Contact {
	return partner.Contact{
		ContactName: form.ContactName,
		Phone:       form.Phone,
		Email:       form.Email,
		PostalCode:  form.PostalCode,
		Address:     form.Address,
	}
}
