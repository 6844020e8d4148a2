package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order represents a garment production order placed by a customer.
// Status is mutated only through the order status service.
type Order struct {
	ID          uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber string               `gorm:"type:varchar(100);uniqueIndex;not null" json:"order_number"`
	CustomerID  *uuid.UUID           `gorm:"type:uuid;index" json:"customer_id"`
	Customer    *Customer            `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Status      OrderStatus          `gorm:"type:varchar(30);not null;default:'ORDER_CREATED';index" json:"status"`
	Notes       string               `gorm:"type:text" json:"notes"`
	Items       []OrderItem          `gorm:"foreignKey:OrderID" json:"items"`
	History     []OrderStatusHistory `gorm:"foreignKey:OrderID" json:"history,omitempty"`
	CreatedBy   *uuid.UUID           `gorm:"type:uuid" json:"created_by"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
	DeletedAt   gorm.DeletedAt       `gorm:"index" json:"-"`
}

// OrderItem is a single garment line within an order.
type OrderItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	FabricID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"fabric_id"`
	Fabric        Fabric          `gorm:"foreignKey:FabricID" json:"fabric,omitempty"`
	ProductTypeID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_type_id"`
	ProductType   ProductType     `gorm:"foreignKey:ProductTypeID" json:"product_type,omitempty"`
	StyleCode     string          `gorm:"type:varchar(100)" json:"style_code"`
	Quantity      int             `gorm:"type:int;not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
}

// OrderStatusHistory is an append-only record of one status change.
// Rows are never updated or deleted.
type OrderStatusHistory struct {
	ID        uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID   uuid.UUID   `gorm:"type:uuid;not null;index" json:"order_id"`
	Status    OrderStatus `gorm:"type:varchar(30);not null" json:"status"`
	Notes     string      `gorm:"type:text" json:"notes"`
	ChangedBy *uuid.UUID  `gorm:"type:uuid" json:"changed_by"`
	User      *User       `gorm:"foreignKey:ChangedBy" json:"user,omitempty"`
	CreatedAt time.Time   `gorm:"index" json:"created_at"`
}
