package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Marketplace channel constants
const (
	MarketplaceShopee  = "SHOPEE"
	MarketplaceLazada  = "LAZADA"
	MarketplaceTiktok  = "TIKTOK"
	MarketplaceDirect  = "DIRECT"
	MarketplaceUnknown = "UNKNOWN"
)

// Customer is a buyer, optionally tied to the marketplace channel the
// order arrived through.
type Customer struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Phone       string         `gorm:"type:varchar(20)" json:"phone"`
	Email       string         `gorm:"type:varchar(255)" json:"email"`
	Marketplace string         `gorm:"type:varchar(30);default:'UNKNOWN'" json:"marketplace"`
	Address     string         `gorm:"type:text" json:"address"`
	Notes       string         `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
