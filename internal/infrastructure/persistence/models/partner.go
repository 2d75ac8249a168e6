package models

import (
	"github.com/erp/orderdesk/internal/domain/partner"
)

// ContactColumns holds the contact columns shared by suppliers and customers
type ContactColumns struct {
	ContactName string `gorm:"type:varchar(100);not null;default:''"`
	Phone       string `gorm:"type:varchar(30);not null;default:''"`
	Email       string `gorm:"type:varchar(200);not null;default:''"`
	PostalCode  string `gorm:"type:varchar(10);not null;default:''"`
	Address     string `gorm:"type:varchar(500);not null;default:''"`
}

func contactColumns(c partner.Contact) ContactColumns {
	return ContactColumns{
		ContactName: c.ContactName,
		Phone:       c.Phone,
		Email:       c.Email,
		PostalCode:  c.PostalCode,
		Address:     c.Address,
	}
}

func (c ContactColumns) toDomain() partner.Contact {
	return partner.Contact{
		ContactName: c.ContactName,
		Phone:       c.Phone,
		Email:       c.Email,
		PostalCode:  c.PostalCode,
		Address:     c.Address,
	}
}

// SupplierModel is the persistence model for the Supplier aggregate root.
type SupplierModel struct {
	AggregateModel
	Name string `gorm:"type:varchar(200);not null"`
	ContactColumns
	Notes  string         `gorm:"type:text;not null;default:''"`
	Status partner.Status `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (SupplierModel) TableName() string {
	return "suppliers"
}

// ToDomain converts the persistence model to a domain Supplier
func (m *SupplierModel) ToDomain() *partner.Supplier {
	return &partner.Supplier{
		BaseAggregateRoot: m.AggregateRoot(),
		Name:              m.Name,
		Contact:           m.ContactColumns.toDomain(),
		Status:            m.Status,
		Notes:             m.Notes,
	}
}

// SupplierModelFromDomain creates a new persistence model from a domain Supplier
func SupplierModelFromDomain(s *partner.Supplier) *SupplierModel {
	m := &SupplierModel{
		Name:           s.Name,
		ContactColumns: contactColumns(s.Contact),
		Notes:          s.Notes,
		Status:         s.Status,
	}
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	return m
}

// CustomerModel is the persistence model for the Customer aggregate root.
type CustomerModel struct {
	AggregateModel
	Name string `gorm:"type:varchar(200);not null"`
	ContactColumns
	Notes  string         `gorm:"type:text;not null;default:''"`
	Status partner.Status `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *partner.Customer {
	return &partner.Customer{
		BaseAggregateRoot: m.AggregateRoot(),
		Name:              m.Name,
		Contact:           m.ContactColumns.toDomain(),
		Status:            m.Status,
		Notes:             m.Notes,
	}
}

// CustomerModelFromDomain creates a new persistence model from a domain Customer
func CustomerModelFromDomain(c *partner.Customer) *CustomerModel {
	m := &CustomerModel{
		Name:           c.Name,
		ContactColumns: contactColumns(c.Contact),
		Notes:          c.Notes,
		Status:         c.Status,
	}
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	return m
}

// WarehouseModel is the persistence model for the Warehouse aggregate root.
type WarehouseModel struct {
	AggregateModel
	Name     string         `gorm:"type:varchar(100);not null"`
	NameKey  string         `gorm:"type:varchar(100);not null;uniqueIndex:uq_warehouses_name_key"`
	Location string         `gorm:"type:varchar(500);not null;default:''"`
	Status   partner.Status `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (WarehouseModel) TableName() string {
	return "warehouses"
}

// ToDomain converts the persistence model to a domain Warehouse
func (m *WarehouseModel) ToDomain() *partner.Warehouse {
	return &partner.Warehouse{
		BaseAggregateRoot: m.AggregateRoot(),
		Name:              m.Name,
		NameKey:           m.NameKey,
		Location:          m.Location,
		Status:            m.Status,
	}
}

// WarehouseModelFromDomain creates a new persistence model from a domain Warehouse
func WarehouseModelFromDomain(w *partner.Warehouse) *WarehouseModel {
	m := &WarehouseModel{
		Name:     w.Name,
		NameKey:  w.NameKey,
		Location: w.Location,
		Status:   w.Status,
	}
	m.FromDomainAggregateRoot(w.BaseAggregateRoot)
	return m
}
