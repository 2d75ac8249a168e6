package catalog

import (
	"regexp"
	"strings"
	"time"

	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/google/uuid"
)

// SKUPattern is the accepted stock keeping unit format
var SKUPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]{2,31}$`)

// Product is a sellable and purchasable item
type Product struct {
	shared.BaseAggregateRoot
	SKU         string
	Name        string
	CategoryID  uuid.UUID
	SupplierID  *uuid.UUID // preferred supplier
	UnitPrice   int64      // sale price, whole yen
	UnitCost    int64      // purchase cost, whole yen
	Description string
	Status      Status
}

// ProductInput carries the editable fields of a product
type ProductInput struct {
	SKU         string
	Name        string
	CategoryID  uuid.UUID
	SupplierID  *uuid.UUID
	UnitPrice   int64
	UnitCost    int64
	Description string
}

// NewProduct creates a new active product
func NewProduct(in ProductInput) (*Product, error) {
	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Status:            StatusActive,
	}
	if err := p.apply(in); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces the editable fields
func (p *Product) Update(in ProductInput) error {
	if err := p.apply(in); err != nil {
		return err
	}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// Deactivate stops the product from being added to new orders
func (p *Product) Deactivate() error {
	if p.Status == StatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Product is already inactive")
	}
	p.Status = StatusInactive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// IsActive returns true if the product can be ordered
func (p *Product) IsActive() bool {
	return p.Status == StatusActive
}

func (p *Product) apply(in ProductInput) error {
	sku := strings.ToUpper(strings.TrimSpace(in.SKU))
	if !SKUPattern.MatchString(sku) {
		return shared.NewDomainError("INVALID_SKU", "SKU must be 3-32 letters, digits or hyphens")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len([]rune(name)) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	if in.CategoryID == uuid.Nil {
		return shared.NewDomainError("INVALID_CATEGORY", "Category is required")
	}
	if in.UnitPrice <= 0 {
		return shared.NewDomainError("INVALID_PRICE", "Unit price must be positive")
	}
	if in.UnitCost < 0 {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	p.SKU = sku
	p.Name = name
	p.CategoryID = in.CategoryID
	p.SupplierID = in.SupplierID
	p.UnitPrice = in.UnitPrice
	p.UnitCost = in.UnitCost
	p.Description = in.Description
	return nil
}
