package catalog

import (
	"strings"
	"time"

	"github.com/erp/orderdesk/internal/domain/shared"
	"golang.org/x/text/cases"
)

// Status is shared by catalog entities that can be retired without deletion
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

var folder = cases.Fold()

// FoldName returns the case-folded form of a display name, used for
// case-insensitive uniqueness checks ("Bolts" and "BOLTS" collide)
func FoldName(name string) string {
	return folder.String(strings.TrimSpace(name))
}

// Category groups products
type Category struct {
	shared.BaseAggregateRoot
	Name        string
	NameKey     string
	Description string
	Status      Status
}

// NewCategory creates a new active category
func NewCategory(name, description string) (*Category, error) {
	if err := validateCategoryName(name); err != nil {
		return nil, err
	}

	return &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		NameKey:           FoldName(name),
		Description:       description,
		Status:            StatusActive,
	}, nil
}

// Update updates the category's basic information
func (c *Category) Update(name, description string) error {
	if err := validateCategoryName(name); err != nil {
		return err
	}

	c.Name = strings.TrimSpace(name)
	c.NameKey = FoldName(name)
	c.Description = description
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Deactivate hides the category from new products
func (c *Category) Deactivate() error {
	if c.Status == StatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Category is already inactive")
	}
	c.Status = StatusInactive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

func validateCategoryName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if len([]rune(name)) > 100 {
		return shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	return nil
}
