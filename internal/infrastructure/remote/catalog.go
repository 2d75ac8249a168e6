package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/erp/orderdesk/internal/domain/report"
	"github.com/google/uuid"
)

// ListQuery is the common page/search query of catalog lists
type ListQuery struct {
	Search   string
	Page     int
	PageSize int
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(q.PageSize))
	}
	return v
}

// Encode returns a stable string form of the query
func (q ListQuery) Encode() string {
	return q.values().Encode()
}

func list[T any](ctx context.Context, c *Client, path string, query url.Values) (*Page[T], error) {
	var out []T
	meta, err := c.call(ctx, request{method: http.MethodGet, path: path, query: query}, &out)
	if err != nil {
		return nil, err
	}
	return newPage(out, meta)
}

func get[T any](ctx context.Context, c *Client, path string) (*T, error) {
	var out T
	if _, err := c.call(ctx, request{method: http.MethodGet, path: path}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func send[T any](ctx context.Context, c *Client, method, path string, body any) (*T, error) {
	var out T
	if _, err := c.call(ctx, request{method: method, path: path, body: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListCategories returns one page of categories
func (c *Client) ListCategories(ctx context.Context, q ListQuery) (*Page[Category], error) {
	return list[Category](ctx, c, "categories", q.values())
}

// GetCategory fetches one category
func (c *Client) GetCategory(ctx context.Context, id uuid.UUID) (*Category, error) {
	return get[Category](ctx, c, "categories/"+id.String())
}

// CreateCategory creates a category from a validated form body
func (c *Client) CreateCategory(ctx context.Context, body any) (*Category, error) {
	return send[Category](ctx, c, http.MethodPost, "categories", body)
}

// UpdateCategory replaces a category
func (c *Client) UpdateCategory(ctx context.Context, id uuid.UUID, body any) (*Category, error) {
	return send[Category](ctx, c, http.MethodPut, "categories/"+id.String(), body)
}

// ListProducts returns one page of products
func (c *Client) ListProducts(ctx context.Context, q ListQuery) (*Page[Product], error) {
	return list[Product](ctx, c, "products", q.values())
}

// GetProduct fetches one product
func (c *Client) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	return get[Product](ctx, c, "products/"+id.String())
}

// CreateProduct creates a product
func (c *Client) CreateProduct(ctx context.Context, body any) (*Product, error) {
	return send[Product](ctx, c, http.MethodPost, "products", body)
}

// UpdateProduct replaces a product
func (c *Client) UpdateProduct(ctx context.Context, id uuid.UUID, body any) (*Product, error) {
	return send[Product](ctx, c, http.MethodPut, "products/"+id.String(), body)
}

// ListSuppliers returns one page of suppliers
func (c *Client) ListSuppliers(ctx context.Context, q ListQuery) (*Page[Partner], error) {
	return list[Partner](ctx, c, "suppliers", q.values())
}

// CreateSupplier creates a supplier
func (c *Client) CreateSupplier(ctx context.Context, body any) (*Partner, error) {
	return send[Partner](ctx, c, http.MethodPost, "suppliers", body)
}

// ListCustomers returns one page of customers
func (c *Client) ListCustomers(ctx context.Context, q ListQuery) (*Page[Partner], error) {
	return list[Partner](ctx, c, "customers", q.values())
}

// CreateCustomer creates a customer
func (c *Client) CreateCustomer(ctx context.Context, body any) (*Partner, error) {
	return send[Partner](ctx, c, http.MethodPost, "customers", body)
}

// ListWarehouses returns one page of warehouses
func (c *Client) ListWarehouses(ctx context.Context, q ListQuery) (*Page[Warehouse], error) {
	return list[Warehouse](ctx, c, "warehouses", q.values())
}

// CreateWarehouse creates a warehouse
func (c *Client) CreateWarehouse(ctx context.Context, body any) (*Warehouse, error) {
	return send[Warehouse](ctx, c, http.MethodPost, "warehouses", body)
}

// ListUsers returns one page of users
func (c *Client) ListUsers(ctx context.Context, q ListQuery) (*Page[User], error) {
	return list[User](ctx, c, "users", q.values())
}

// CreateUser creates a user account
func (c *Client) CreateUser(ctx context.Context, body any) (*User, error) {
	return send[User](ctx, c, http.MethodPost, "users", body)
}

// StockQuery filters the stock endpoints
type StockQuery struct {
	WarehouseID uuid.UUID
	ProductID   uuid.UUID
	OrderID     uuid.UUID
	Page        int
	PageSize    int
}

func (q StockQuery) values() url.Values {
	v := ListQuery{Page: q.Page, PageSize: q.PageSize}.values()
	if q.WarehouseID != uuid.Nil {
		v.Set("warehouse_id", q.WarehouseID.String())
	}
	if q.ProductID != uuid.Nil {
		v.Set("product_id", q.ProductID.String())
	}
	if q.OrderID != uuid.Nil {
		v.Set("order_id", q.OrderID.String())
	}
	return v
}

// Encode returns a stable string form of the query
func (q StockQuery) Encode() string {
	return q.values().Encode()
}

// ListStock returns on-hand quantities
func (c *Client) ListStock(ctx context.Context, q StockQuery) (*Page[StockItem], error) {
	return list[StockItem](ctx, c, "stock", q.values())
}

// ListStockTransactions returns stock ledger entries, newest first
func (c *Client) ListStockTransactions(ctx context.Context, q StockQuery) (*Page[StockTransaction], error) {
	return list[StockTransaction](ctx, c, "stock/transactions", q.values())
}

// GetSalesDashboard fetches the sales dashboard for [from, to)
func (c *Client) GetSalesDashboard(ctx context.Context, from, to time.Time, topN int) (*report.SalesDashboard, error) {
	v := url.Values{}
	if !from.IsZero() {
		v.Set("from", from.Format(time.DateOnly))
	}
	if !to.IsZero() {
		v.Set("to", to.Format(time.DateOnly))
	}
	if topN > 0 {
		v.Set("top_n", strconv.Itoa(topN))
	}
	var out report.SalesDashboard
	if _, err := c.call(ctx, request{method: http.MethodGet, path: "dashboard/sales", query: v}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
