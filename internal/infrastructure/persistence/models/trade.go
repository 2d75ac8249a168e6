package models

import (
	"time"

	"github.com/erp/orderdesk/internal/domain/trade"
	"github.com/google/uuid"
)

// OrderModel is the persistence model for the Order aggregate root.
type OrderModel struct {
	AggregateModel
	Kind             trade.OrderKind   `gorm:"type:varchar(10);not null;index:idx_orders_kind_status,priority:1"`
	OrderNumber      string            `gorm:"type:varchar(50);not null;uniqueIndex:uq_orders_order_number"`
	CounterpartyID   uuid.UUID         `gorm:"type:uuid;not null;index:idx_orders_counterparty"`
	CounterpartyName string            `gorm:"type:varchar(200);not null;default:''"`
	Status           trade.OrderStatus `gorm:"type:varchar(20);not null;default:'NEW';index:idx_orders_kind_status,priority:2"`
	Description      string            `gorm:"type:text;not null;default:''"`
	OrderedAt        time.Time         `gorm:"not null;index:idx_orders_ordered_at"`
	PlacedAt         *time.Time
	CompletedAt      *time.Time
	CancelledAt      *time.Time
	CancelReason     string           `gorm:"type:varchar(500);not null;default:''"`
	Lines            []OrderLineModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order with its lines
func (m *OrderModel) ToDomain() *trade.Order {
	order := &trade.Order{
		BaseAggregateRoot: m.AggregateRoot(),
		Kind:              m.Kind,
		OrderNumber:       m.OrderNumber,
		CounterpartyID:    m.CounterpartyID,
		CounterpartyName:  m.CounterpartyName,
		Status:            m.Status,
		Description:       m.Description,
		OrderedAt:         m.OrderedAt,
		PlacedAt:          m.PlacedAt,
		CompletedAt:       m.CompletedAt,
		CancelledAt:       m.CancelledAt,
		CancelReason:      m.CancelReason,
		Lines:             make([]trade.OrderLine, len(m.Lines)),
	}
	for i := range m.Lines {
		order.Lines[i] = m.Lines[i].ToDomain()
	}
	return order
}

// FromDomain populates the persistence model, lines included, from a domain Order
func (m *OrderModel) FromDomain(o *trade.Order) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.Kind = o.Kind
	m.OrderNumber = o.OrderNumber
	m.CounterpartyID = o.CounterpartyID
	m.CounterpartyName = o.CounterpartyName
	m.Status = o.Status
	m.Description = o.Description
	m.OrderedAt = o.OrderedAt
	m.PlacedAt = o.PlacedAt
	m.CompletedAt = o.CompletedAt
	m.CancelledAt = o.CancelledAt
	m.CancelReason = o.CancelReason
	m.Lines = make([]OrderLineModel, len(o.Lines))
	for i := range o.Lines {
		m.Lines[i] = OrderLineModelFromDomain(o.ID, &o.Lines[i])
	}
}

// OrderModelFromDomain creates a new persistence model from a domain Order
func OrderModelFromDomain(o *trade.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// OrderLineModel is the persistence model for an order line.
type OrderLineModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID           uuid.UUID `gorm:"type:uuid;not null;index:idx_order_lines_order"`
	ProductID         uuid.UUID `gorm:"type:uuid;not null"`
	ProductName       string    `gorm:"type:varchar(200);not null"`
	SKU               string    `gorm:"column:sku;type:varchar(32);not null;default:''"`
	OrderedQuantity   int64     `gorm:"not null"`
	UnitPrice         int64     `gorm:"not null"`
	FulfilledQuantity int64     `gorm:"not null;default:0;check:chk_order_lines_fulfilled,fulfilled_quantity <= ordered_quantity"`
	Remark            string    `gorm:"type:varchar(500);not null;default:''"`
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderLineModel) TableName() string {
	return "order_lines"
}

// ToDomain converts the persistence model to a domain OrderLine
func (m *OrderLineModel) ToDomain() trade.OrderLine {
	return trade.OrderLine{
		ID:                m.ID,
		OrderID:           m.OrderID,
		ProductID:         m.ProductID,
		ProductName:       m.ProductName,
		SKU:               m.SKU,
		OrderedQuantity:   m.OrderedQuantity,
		UnitPrice:         m.UnitPrice,
		FulfilledQuantity: m.FulfilledQuantity,
		Remark:            m.Remark,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// OrderLineModelFromDomain creates a line model owned by the given order
func OrderLineModelFromDomain(orderID uuid.UUID, l *trade.OrderLine) OrderLineModel {
	return OrderLineModel{
		ID:                l.ID,
		OrderID:           orderID,
		ProductID:         l.ProductID,
		ProductName:       l.ProductName,
		SKU:               l.SKU,
		OrderedQuantity:   l.OrderedQuantity,
		UnitPrice:         l.UnitPrice,
		FulfilledQuantity: l.FulfilledQuantity,
		Remark:            l.Remark,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
	}
}

// FulfillmentModel is the persistence model for a receipt or delivery event.
type FulfillmentModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index:idx_fulfillments_order,priority:1"`
	LineID      uuid.UUID `gorm:"type:uuid;not null"`
	WarehouseID uuid.UUID `gorm:"type:uuid;not null"`
	Quantity    int64     `gorm:"not null;check:chk_fulfillments_quantity,quantity > 0"`
	Note        string    `gorm:"type:varchar(500);not null;default:''"`
	RecordedAt  time.Time `gorm:"not null;index:idx_fulfillments_order,priority:2"`
}

// TableName returns the table name for GORM
func (FulfillmentModel) TableName() string {
	return "fulfillments"
}

// ToDomain converts the persistence model to a domain FulfillmentEvent
func (m *FulfillmentModel) ToDomain() trade.FulfillmentEvent {
	return trade.FulfillmentEvent{
		ID:          m.ID,
		OrderID:     m.OrderID,
		LineID:      m.LineID,
		WarehouseID: m.WarehouseID,
		Quantity:    m.Quantity,
		Note:        m.Note,
		RecordedAt:  m.RecordedAt,
	}
}

// FulfillmentModelFromDomain creates a new persistence model from a domain FulfillmentEvent
func FulfillmentModelFromDomain(e *trade.FulfillmentEvent) *FulfillmentModel {
	return &FulfillmentModel{
		ID:          e.ID,
		OrderID:     e.OrderID,
		LineID:      e.LineID,
		WarehouseID: e.WarehouseID,
		Quantity:    e.Quantity,
		Note:        e.Note,
		RecordedAt:  e.RecordedAt,
	}
}
