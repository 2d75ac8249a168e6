package models

import (
	"github.com/erp/orderdesk/internal/domain/catalog"
	"github.com/google/uuid"
)

// CategoryModel is the persistence model for the Category aggregate root.
type CategoryModel struct {
	AggregateModel
	Name        string         `gorm:"type:varchar(100);not null"`
	NameKey     string         `gorm:"type:varchar(100);not null;uniqueIndex:uq_categories_name_key"`
	Description string         `gorm:"type:text;not null;default:''"`
	Status      catalog.Status `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseAggregateRoot: m.AggregateRoot(),
		Name:              m.Name,
		NameKey:           m.NameKey,
		Description:       m.Description,
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain Category
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.NameKey = c.NameKey
	m.Description = c.Description
	m.Status = c.Status
}

// CategoryModelFromDomain creates a new persistence model from a domain Category
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{}
	m.FromDomain(c)
	return m
}

// ProductModel is the persistence model for the Product aggregate root.
type ProductModel struct {
	AggregateModel
	SKU         string         `gorm:"column:sku;type:varchar(32);not null;uniqueIndex:uq_products_sku"`
	Name        string         `gorm:"type:varchar(200);not null"`
	CategoryID  uuid.UUID      `gorm:"type:uuid;not null;index:idx_products_category"`
	SupplierID  *uuid.UUID     `gorm:"type:uuid"`
	UnitPrice   int64          `gorm:"not null;check:chk_products_unit_price,unit_price >= 0"`
	UnitCost    int64          `gorm:"not null;default:0"`
	Description string         `gorm:"type:text;not null;default:''"`
	Status      catalog.Status `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.AggregateRoot(),
		SKU:               m.SKU,
		Name:              m.Name,
		CategoryID:        m.CategoryID,
		SupplierID:        m.SupplierID,
		UnitPrice:         m.UnitPrice,
		UnitCost:          m.UnitCost,
		Description:       m.Description,
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.SKU = p.SKU
	m.Name = p.Name
	m.CategoryID = p.CategoryID
	m.SupplierID = p.SupplierID
	m.UnitPrice = p.UnitPrice
	m.UnitCost = p.UnitCost
	m.Description = p.Description
	m.Status = p.Status
}

// ProductModelFromDomain creates a new persistence model from a domain Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
