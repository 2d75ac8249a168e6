package validation

import (
	"strings"

	"github.com/erp/orderdesk/internal/domain/shared"
	"github.com/google/uuid"
)

// CategoryForm creates or edits a category
type CategoryForm struct {
	Name        string `json:"name" validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

// ProductForm creates or edits a product
type ProductForm struct {
	SKU         string     `json:"sku" validate:"required,sku"`
	Name        string     `json:"name" validate:"required,min=1,max=200"`
	CategoryID  uuid.UUID  `json:"category_id" validate:"required"`
	SupplierID  *uuid.UUID `json:"supplier_id"`
	UnitPrice   int64      `json:"unit_price" validate:"gt=0"`
	UnitCost    int64      `json:"unit_cost" validate:"gte=0"`
	Description string     `json:"description" validate:"max=2000"`
}

// PartnerForm holds the fields suppliers and customers share
type PartnerForm struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	ContactName string `json:"contact_name" validate:"max=100"`
	Phone       string `json:"phone" validate:"omitempty,phone"`
	Email       string `json:"email" validate:"omitempty,email,max=100"`
	PostalCode  string `json:"postal_code" validate:"omitempty,postal"`
	Address     string `json:"address" validate:"max=500"`
	Notes       string `json:"notes" validate:"max=2000"`
}

// SupplierForm creates or edits a supplier
type SupplierForm = PartnerForm

// CustomerForm creates or edits a customer
type CustomerForm = PartnerForm

// WarehouseForm creates or edits a warehouse
type WarehouseForm struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Location string `json:"location" validate:"max=500"`
}

// UserForm creates a user account
type UserForm struct {
	Username        string `json:"username" validate:"required,min=3,max=50"`
	Email           string `json:"email" validate:"required,email,max=100"`
	DisplayName     string `json:"display_name" validate:"max=100"`
	Password        string `json:"password" validate:"required,min=8,max=72,password"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"required,oneof=admin staff viewer"`
}

// UserProfileForm edits an existing user
type UserProfileForm struct {
	Email       string `json:"email" validate:"required,email,max=100"`
	DisplayName string `json:"display_name" validate:"max=100"`
	Role        string `json:"role" validate:"required,oneof=admin staff viewer"`
}

// LoginForm is the body of the login request
type LoginForm struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,max=72"`
}

// OrderLineForm is one line of a new order
type OrderLineForm struct {
	ProductID   uuid.UUID `json:"product_id" validate:"required"`
	ProductName string    `json:"product_name" validate:"required,max=200"`
	SKU         string    `json:"sku" validate:"omitempty,sku"`
	Quantity    int64     `json:"quantity" validate:"gt=0"`
	UnitPrice   int64     `json:"unit_price" validate:"gt=0"`
	Remark      string    `json:"remark" validate:"max=500"`
}

// OrderForm creates a purchase or sale order
type OrderForm struct {
	Kind             string          `json:"kind" validate:"required,oneof=PURCHASE SALE"`
	CounterpartyID   uuid.UUID       `json:"counterparty_id" validate:"required"`
	CounterpartyName string          `json:"counterparty_name" validate:"required,max=200"`
	Description      string          `json:"description" validate:"max=1000"`
	Lines            []OrderLineForm `json:"lines" validate:"required,min=1,dive"`
}

// LineQuantityForm changes the quantity of one existing line
type LineQuantityForm struct {
	LineID   uuid.UUID `json:"line_id" validate:"required"`
	Quantity int64     `json:"quantity" validate:"gt=0"`
}

// OrderUpdateForm edits a NEW order. Version, when set, must match the
// stored order.
type OrderUpdateForm struct {
	Description string             `json:"description" validate:"max=1000"`
	Lines       []LineQuantityForm `json:"lines" validate:"dive"`
	Version     int                `json:"version" validate:"gte=0"`
}

// CancelForm is the body of an order cancellation
type CancelForm struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// FulfillmentForm records a receipt or delivery. Remainder is filled in
// by the server from the order line before validating.
type FulfillmentForm struct {
	LineID      uuid.UUID `json:"line_id" validate:"required"`
	WarehouseID uuid.UUID `json:"warehouse_id" validate:"required"`
	Quantity    int64     `json:"quantity" validate:"gt=0,ltefield=Remainder"`
	Note        string    `json:"note" validate:"max=500"`
	Remainder   int64     `json:"-" validate:"-"`
}

// StockTransferForm moves stock between warehouses. Available is the
// on-hand quantity of the source, filled in before validating.
type StockTransferForm struct {
	ProductID       uuid.UUID `json:"product_id" validate:"required"`
	FromWarehouseID uuid.UUID `json:"from_warehouse_id" validate:"required"`
	ToWarehouseID   uuid.UUID `json:"to_warehouse_id" validate:"required"`
	Quantity        int64     `json:"quantity" validate:"gt=0,ltefield=Available"`
	Note            string    `json:"note" validate:"max=500"`
	Available       int64     `json:"-" validate:"-"`
}

// ListForm carries the common list query parameters
type ListForm struct {
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"page_size" validate:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" validate:"max=50"`
	OrderDir string `form:"order_dir" validate:"omitempty,oneof=asc desc ASC DESC"`
	Search   string `form:"search" validate:"max=100"`
}

// OrderListForm filters the order list
type OrderListForm struct {
	ListForm
	Kind           string `form:"kind" validate:"omitempty,oneof=PURCHASE SALE"`
	Status         string `form:"status" validate:"omitempty,oneof=NEW PENDING PROCESSING COMPLETED CANCELLED"`
	CounterpartyID string `form:"counterparty_id" validate:"omitempty,uuid"`
}

// StockListForm filters stock and ledger listings
type StockListForm struct {
	ListForm
	WarehouseID string `form:"warehouse_id" validate:"omitempty,uuid"`
	ProductID   string `form:"product_id" validate:"omitempty,uuid"`
	OrderID     string `form:"order_id" validate:"omitempty,uuid"`
	Type        string `form:"type" validate:"omitempty,oneof=RECEIPT DELIVERY TRANSFER_IN TRANSFER_OUT"`
	InStock     *bool  `form:"in_stock"`
}

// DashboardForm selects the dashboard range; dates are YYYY-MM-DD
type DashboardForm struct {
	From string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" validate:"omitempty,datetime=2006-01-02"`
	TopN int    `form:"top_n" validate:"omitempty,min=1,max=50"`
}

// Filter converts the list query into a repository filter, applying the
// default page size and sort
func (f ListForm) Filter(defaultOrderBy string) shared.Filter {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	filter.OrderBy = defaultOrderBy
	if f.OrderBy != "" {
		filter.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		filter.OrderDir = strings.ToLower(f.OrderDir)
	}
	filter.Search = strings.TrimSpace(f.Search)
	return filter
}
