package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/keranjangku/keranjangku-backend/pkg/enums"
)

// Purchased is one user's shopping session against a basket. A user holds at
// most one row per basket (get-or-create semantics); PurchasedStuff rows hang
// off it.
type Purchased struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BasketID    uuid.UUID  `gorm:"column:basket_id;type:uuid;not null;uniqueIndex:ux_purchased_basket_user"`
	UserID      uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_purchased_basket_user;index"`
	StartedAt   *time.Time `gorm:"column:started_at"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	IsOngoing   bool       `gorm:"column:is_ongoing;not null;default:false;index"`
	IsComplete  bool       `gorm:"column:is_complete;not null;default:false"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// PurchasedStuff records the actual buy of a single stuff line. StuffID is
// unique: a line can be bought by at most one purchaser. Price is the unit
// price, Amount the total paid, both in integer currency minor units.
type PurchasedStuff struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PurchasedID uuid.UUID       `gorm:"column:purchased_id;type:uuid;not null;index"`
	BasketID    uuid.UUID       `gorm:"column:basket_id;type:uuid;not null;index"`
	UserID      uuid.UUID       `gorm:"column:user_id;type:uuid;not null;index"`
	StuffID     uuid.UUID       `gorm:"column:stuff_id;type:uuid;not null;uniqueIndex"`
	Name        string          `gorm:"column:name;not null"`
	Quantity    decimal.Decimal `gorm:"column:quantity;type:numeric(12,3);not null;default:1"`
	Metric      enums.Metric    `gorm:"column:metric;not null;default:unit"`
	Price       int64           `gorm:"column:price;not null;default:0"`
	Amount      int64           `gorm:"column:amount;not null;default:0"`
	Note        *string         `gorm:"column:note"`
	Location    *string         `gorm:"column:location"`
	IsFound     *bool           `gorm:"column:is_found"`
	IsPrivate   bool            `gorm:"column:is_private;not null;default:false"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// Found reports whether the item was actually located while shopping.
func (ps *PurchasedStuff) Found() bool {
	return ps != nil && ps.IsFound != nil && *ps.IsFound
}
