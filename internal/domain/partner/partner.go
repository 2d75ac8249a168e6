package partner

import (
	"regexp"
	"strings"
	"time"

	"github.com/erp/orderdesk/internal/domain/shared"
)

// Status represents whether a partner can be used on new orders
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

var (
	PhonePattern  = regexp.MustCompile(`^\+?[0-9][0-9-]{6,18}[0-9]$`)
	PostalPattern = regexp.MustCompile(`^[0-9]{3}-?[0-9]{4}$`)
	emailPattern  = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// Contact holds the contact details shared by suppliers and customers
type Contact struct {
	ContactName string
	Phone       string
	Email       string
	PostalCode  string
	Address     string
}

// Validate checks the optional contact fields that are present
func (c Contact) Validate() error {
	if c.Phone != "" && !PhonePattern.MatchString(c.Phone) {
		return shared.NewDomainError("INVALID_PHONE", "Invalid phone number")
	}
	if c.Email != "" && !emailPattern.MatchString(c.Email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	if c.PostalCode != "" && !PostalPattern.MatchString(c.PostalCode) {
		return shared.NewDomainError("INVALID_POSTAL_CODE", "Postal code must look like 123-4567")
	}
	return nil
}

// Supplier is a counterparty on purchase orders
type Supplier struct {
	shared.BaseAggregateRoot
	Name string
	Contact
	Status Status
	Notes  string
}

// NewSupplier creates a new active supplier
func NewSupplier(name string, contact Contact) (*Supplier, error) {
	s := &Supplier{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Status: StatusActive}
	if err := s.Update(name, contact); err != nil {
		return nil, err
	}
	s.Version = 1
	return s, nil
}

// Update replaces the supplier's name and contact details
func (s *Supplier) Update(name string, contact Contact) error {
	if err := validatePartnerName("Supplier", name); err != nil {
		return err
	}
	if err := contact.Validate(); err != nil {
		return err
	}
	s.Name = strings.TrimSpace(name)
	s.Contact = contact
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return nil
}

// Deactivate stops the supplier from appearing on new purchase orders
func (s *Supplier) Deactivate() {
	s.Status = StatusInactive
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// IsActive returns true if new orders may reference the supplier
func (s *Supplier) IsActive() bool {
	return s.Status == StatusActive
}

// Customer is a counterparty on sale orders
type Customer struct {
	shared.BaseAggregateRoot
	Name string
	Contact
	Status Status
	Notes  string
}

// NewCustomer creates a new active customer
func NewCustomer(name string, contact Contact) (*Customer, error) {
	c := &Customer{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Status: StatusActive}
	if err := c.Update(name, contact); err != nil {
		return nil, err
	}
	c.Version = 1
	return c, nil
}

// Update replaces the customer's name and contact details
func (c *Customer) Update(name string, contact Contact) error {
	if err := validatePartnerName("Customer", name); err != nil {
		return err
	}
	if err := contact.Validate(); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(name)
	c.Contact = contact
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Deactivate stops the customer from appearing on new sale orders
func (c *Customer) Deactivate() {
	c.Status = StatusInactive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// IsActive returns true if new orders may reference the customer
func (c *Customer) IsActive() bool {
	return c.Status == StatusActive
}

func validatePartnerName(kind, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", kind+" name cannot be empty")
	}
	if len([]rune(name)) > 200 {
		return shared.NewDomainError("INVALID_NAME", kind+" name cannot exceed 200 characters")
	}
	return nil
}
