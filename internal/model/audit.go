package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateOrder       = "CREATE_ORDER"
	ActionUpdateOrderStatus = "UPDATE_ORDER_STATUS"

	ActionCreateAdjustment  = "CREATE_STORE_ADJUSTMENT"
	ActionApproveAdjustment = "APPROVE_STORE_ADJUSTMENT"
	ActionRejectAdjustment  = "REJECT_STORE_ADJUSTMENT"

	ActionChangeItemQuality  = "CHANGE_ITEM_QUALITY"
	ActionAdjustItemQuantity = "ADJUST_ITEM_QUANTITY"
	ActionUseItem            = "USE_ITEM"
	ActionWriteOffItem       = "WRITE_OFF_ITEM"
	ActionDeleteStoreItem    = "DELETE_STORE_ITEM"

	ActionCreateFabric      = "CREATE_FABRIC"
	ActionUpdateFabric      = "UPDATE_FABRIC"
	ActionDeleteFabric      = "DELETE_FABRIC"
	ActionCreateProductType = "CREATE_PRODUCT_TYPE"
	ActionUpdateProductType = "UPDATE_PRODUCT_TYPE"
	ActionDeleteProductType = "DELETE_PRODUCT_TYPE"

	ActionCreateCustomer = "CREATE_CUSTOMER"
	ActionUpdateCustomer = "UPDATE_CUSTOMER"
	ActionDeleteCustomer = "DELETE_CUSTOMER"
)

// AuditLog tracks who did what and when for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable for automated actors
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
