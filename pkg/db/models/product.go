package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/keranjangku/keranjangku-backend/pkg/enums"
)

// Product is a catalog entry, get-or-created by name whenever stuff is
// added. IsCatalog marks curated entries visible to everyone.
type Product struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	IsEnabled bool      `gorm:"column:is_enabled;not null;default:true"`
	IsCatalog bool      `gorm:"column:is_catalog;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// ProductRate is a market-price observation recorded from a purchase. The
// latest rates per product feed price suggestions.
type ProductRate struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	PurchasedStuffID *uuid.UUID      `gorm:"column:purchased_stuff_id;type:uuid;index"`
	Name             string          `gorm:"column:name;not null;index"`
	Quantity         decimal.Decimal `gorm:"column:quantity;type:numeric(12,3);not null;default:1"`
	Metric           enums.Metric    `gorm:"column:metric;not null;default:unit;index"`
	Price            int64           `gorm:"column:price;not null"`
	Location         *string         `gorm:"column:location"`
	IsPrivate        bool            `gorm:"column:is_private;not null;default:false"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
