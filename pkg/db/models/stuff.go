package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/keranjangku/keranjangku-backend/pkg/enums"
)

// Stuff is a single wanted item on a basket. Prices live on the
// PurchasedStuff record, not here; stuff only describes what is wanted.
type Stuff struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BasketID     uuid.UUID       `gorm:"column:basket_id;type:uuid;not null;index"`
	UserID       uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index"`
	ProductID    *uuid.UUID      `gorm:"column:product_id;type:uuid;index"`
	Name         string          `gorm:"column:name;not null;index"`
	Quantity     decimal.Decimal `gorm:"column:quantity;type:numeric(12,3);not null;default:1"`
	Metric       enums.Metric    `gorm:"column:metric;not null;default:unit"`
	Note         *string         `gorm:"column:note"`
	Location     *string         `gorm:"column:location"`
	Sort         int             `gorm:"column:sort;not null;default:1;index"`
	DoneAt       *time.Time      `gorm:"column:done_at"`
	IsDone       bool            `gorm:"column:is_done;not null;default:false;index"`
	IsAdditional bool            `gorm:"column:is_additional;not null;default:false"`
	IsPurchased  bool            `gorm:"column:is_purchased;not null;default:false;index"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
