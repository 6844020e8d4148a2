package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StoreItemQuality grades a physical batch of stock. WRITE_OFF is a
// terminal marker: once set, quantity is forced to zero.
type StoreItemQuality string

const (
	QualityNew      StoreItemQuality = "NEW"
	QualityGood     StoreItemQuality = "GOOD"
	QualityDamaged  StoreItemQuality = "DAMAGED"
	QualityWriteOff StoreItemQuality = "WRITE_OFF"
)

// AllStoreItemQualities lists every known quality grade.
var AllStoreItemQualities = []StoreItemQuality{
	QualityNew, QualityGood, QualityDamaged, QualityWriteOff,
}

// ParseStoreItemQuality maps a raw string to a known quality grade.
func ParseStoreItemQuality(s string) (StoreItemQuality, bool) {
	quality := StoreItemQuality(s)
	for _, known := range AllStoreItemQualities {
		if quality == known {
			return quality, true
		}
	}
	return "", false
}

// StoreSourceType records where a store item came from.
const (
	SourceReturnedOrder  = "RETURNED_ORDER"
	SourceCancelledOrder = "CANCELLED_ORDER"
	SourceManualEntry    = "MANUAL_ENTRY"
)

// StoreAdjustment type constants
const (
	AdjustmentAutoAdd     = "AUTO_ADD"
	AdjustmentManualEntry = "MANUAL_ENTRY"
)

// StoreAdjustment status constants
const (
	AdjustmentPending  = "PENDING"
	AdjustmentApproved = "APPROVED"
	AdjustmentRejected = "REJECTED"
)

// StoreTransaction kind constants. The quantity column holds the
// magnitude of the change; the kind implies its direction.
const (
	StoreTxReceive       = "RECEIVE"
	StoreTxAdjust        = "ADJUST"
	StoreTxUse           = "USE"
	StoreTxQualityChange = "QUALITY_CHANGE"
	StoreTxWriteOff      = "WRITE_OFF"
)

// StoreItem is a physical, SKU-identified batch of stock held in the
// store. It is created exactly once, at adjustment approval time, and
// mutated only through the store item service.
type StoreItem struct {
	ID                uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SKU               string           `gorm:"type:varchar(100);uniqueIndex;not null" json:"sku"`
	FabricID          uuid.UUID        `gorm:"type:uuid;not null;index" json:"fabric_id"`
	Fabric            Fabric           `gorm:"foreignKey:FabricID" json:"fabric,omitempty"`
	ProductTypeID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"product_type_id"`
	ProductType       ProductType      `gorm:"foreignKey:ProductTypeID" json:"product_type,omitempty"`
	StyleCode         string           `gorm:"type:varchar(100)" json:"style_code"`
	Quantity          int              `gorm:"type:int;not null;default:0" json:"quantity"`
	Quality           StoreItemQuality `gorm:"type:varchar(20);not null;index" json:"quality"`
	SourceType        string           `gorm:"type:varchar(30);not null;index" json:"source_type"`
	OrderItemID       *uuid.UUID       `gorm:"type:uuid;index" json:"order_item_id"`
	OrderNumber       string           `gorm:"type:varchar(100)" json:"order_number"`
	OriginalUnitPrice decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0" json:"original_unit_price"`
	Notes             string           `gorm:"type:text" json:"notes"`
	CreatedBy         *uuid.UUID       `gorm:"type:uuid" json:"created_by"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	DeletedAt         gorm.DeletedAt   `gorm:"index" json:"-"`
}

// StoreAdjustment is a two-phase proposal to create store stock. Auto
// adds are raised when an order turns RETURNED or CANCELLED (at most
// one per order line); manual entries are raised by operators. Only an
// approved adjustment produces a StoreItem.
type StoreAdjustment struct {
	ID                uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AdjustmentType    string           `gorm:"type:varchar(30);not null;index" json:"adjustment_type"`
	Status            string           `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	FabricID          uuid.UUID        `gorm:"type:uuid;not null" json:"fabric_id"`
	Fabric            Fabric           `gorm:"foreignKey:FabricID" json:"fabric,omitempty"`
	ProductTypeID     uuid.UUID        `gorm:"type:uuid;not null" json:"product_type_id"`
	ProductType       ProductType      `gorm:"foreignKey:ProductTypeID" json:"product_type,omitempty"`
	StyleCode         string           `gorm:"type:varchar(100)" json:"style_code"`
	Quantity          int              `gorm:"type:int;not null" json:"quantity"`
	Quality           StoreItemQuality `gorm:"type:varchar(20);not null" json:"quality"`
	SourceType        string           `gorm:"type:varchar(30);not null" json:"source_type"`
	OrderItemID       *uuid.UUID       `gorm:"type:uuid;uniqueIndex" json:"order_item_id"`
	OrderNumber       string           `gorm:"type:varchar(100)" json:"order_number"`
	OriginalUnitPrice decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0" json:"original_unit_price"`
	Reason            string           `gorm:"type:text" json:"reason"`
	Notes             string           `gorm:"type:text" json:"notes"`
	RequestedBy       *uuid.UUID       `gorm:"type:uuid;index" json:"requested_by"`
	Requester         *User            `gorm:"foreignKey:RequestedBy" json:"requester,omitempty"`
	ResolvedBy        *uuid.UUID       `gorm:"type:uuid" json:"resolved_by"`
	Resolver          *User            `gorm:"foreignKey:ResolvedBy" json:"resolver,omitempty"`
	ResolvedAt        *time.Time       `json:"resolved_at"`
	StoreItemID       *uuid.UUID       `gorm:"type:uuid" json:"store_item_id"`
	StoreItem         *StoreItem       `gorm:"foreignKey:StoreItemID" json:"store_item,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// StoreTransaction is an immutable audit record of one mutation to one
// StoreItem. Rows are never updated or deleted; an item's state must
// stay reconstructible by replaying its rows from the RECEIVE entry.
type StoreTransaction struct {
	ID            uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StoreItemID   uuid.UUID         `gorm:"type:uuid;not null;index" json:"store_item_id"`
	StoreItem     StoreItem         `gorm:"foreignKey:StoreItemID" json:"-"`
	Kind          string            `gorm:"type:varchar(20);not null;index" json:"kind"`
	Quantity      int               `gorm:"type:int;not null" json:"quantity"`
	QualityBefore *StoreItemQuality `gorm:"type:varchar(20)" json:"quality_before"`
	QualityAfter  *StoreItemQuality `gorm:"type:varchar(20)" json:"quality_after"`
	Notes         string            `gorm:"type:text" json:"notes"`
	CreatedBy     *uuid.UUID        `gorm:"type:uuid" json:"created_by"`
	CreatedAt     time.Time         `gorm:"index" json:"created_at"`
}
