package cache

import (
	"fmt"

	"github.com/google/uuid"
)

// Resource identifies a kind of remote data held in the query cache
type Resource string

const (
	ResourceOrder              Resource = "order"
	ResourceFulfillmentSummary Resource = "fulfillment_summary"
	ResourceOrderList          Resource = "order_list"
	ResourceCategory           Resource = "category"
	ResourceProduct            Resource = "product"
	ResourceSupplier           Resource = "supplier"
	ResourceCustomer           Resource = "customer"
	ResourceWarehouse          Resource = "warehouse"
	ResourceUser               Resource = "user"
	ResourceStock              Resource = "stock"
	ResourceDashboard          Resource = "dashboard"
)

// Key is a typed cache key. ID is empty for collection resources and may
// carry an encoded query for list resources.
type Key struct {
	Resource Resource
	ID       string
}

// OrderKey returns the key of a single order
func OrderKey(orderID uuid.UUID) Key {
	return Key{Resource: ResourceOrder, ID: orderID.String()}
}

// SummaryKey returns the key of an order's fulfillment summary
func SummaryKey(orderID uuid.UUID) Key {
	return Key{Resource: ResourceFulfillmentSummary, ID: orderID.String()}
}

// ListKey returns a key for a list resource filtered by query
func ListKey(resource Resource, query string) Key {
	return Key{Resource: resource, ID: query}
}

// String implements fmt.Stringer
func (k Key) String() string {
	if k.ID == "" {
		return string(k.Resource)
	}
	return fmt.Sprintf("%s:%s", k.Resource, k.ID)
}
