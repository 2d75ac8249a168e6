package partner

import (
	"strings"
	"time"

	"github.com/erp/orderdesk/internal/domain/catalog"
	"github.com/erp/orderdesk/internal/domain/shared"
)

// Warehouse is a stock location that receives purchases and ships sales
type Warehouse struct {
	shared.BaseAggregateRoot
	Name     string
	NameKey  string
	Location string
	Status   Status
}

// NewWarehouse creates a new active warehouse
func NewWarehouse(name, location string) (*Warehouse, error) {
	w := &Warehouse{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Status: StatusActive}
	if err := w.Update(name, location); err != nil {
		return nil, err
	}
	w.Version = 1
	return w, nil
}

// Update replaces the warehouse name and location
func (w *Warehouse) Update(name, location string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Warehouse name cannot be empty")
	}
	if len([]rune(name)) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Warehouse name cannot exceed 100 characters")
	}
	w.Name = name
	w.NameKey = catalog.FoldName(name)
	w.Location = strings.TrimSpace(location)
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
	return nil
}

// Deactivate closes the warehouse for new receipts and deliveries
func (w *Warehouse) Deactivate() {
	w.Status = StatusInactive
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
}

// IsActive returns true if fulfillments may use the warehouse
func (w *Warehouse) IsActive() bool {
	return w.Status == StatusActive
}
