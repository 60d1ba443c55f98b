package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/keranjangku/keranjangku-backend/pkg/enums"
)

// Order is a basket escalated for assistant fulfillment. One order per
// basket; lines are snapshots of the basket's stuff at escalation time.
type Order struct {
	ID         uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID uuid.UUID           `gorm:"column:customer_id;type:uuid;not null;index"`
	BasketID   uuid.UUID           `gorm:"column:basket_id;type:uuid;not null;uniqueIndex"`
	Number     string              `gorm:"column:number;not null;uniqueIndex"`
	Status     enums.GeneralStatus `gorm:"column:status;not null;default:waiting;index"`
	Note       *string             `gorm:"column:note"`
	// Requested delivery time. Nil means the customer wants it as soon as
	// an assistant is free.
	ScheduledAt *time.Time `gorm:"column:scheduled_at;index"`
	IsOngoing   bool       `gorm:"column:is_ongoing;not null;default:false;index"`
	IsComplete  bool       `gorm:"column:is_complete;not null;default:false"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderLine snapshots one stuff line at escalation. The pair (order, stuff)
// is unique so re-escalation cannot duplicate lines.
type OrderLine struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID       `gorm:"column:order_id;type:uuid;not null;uniqueIndex:ux_order_lines_order_stuff"`
	CustomerID uuid.UUID       `gorm:"column:customer_id;type:uuid;not null;index"`
	StuffID    uuid.UUID       `gorm:"column:stuff_id;type:uuid;not null;uniqueIndex:ux_order_lines_order_stuff"`
	Name       string          `gorm:"column:name;not null"`
	Quantity   decimal.Decimal `gorm:"column:quantity;type:numeric(12,3);not null"`
	Metric     enums.Metric    `gorm:"column:metric;not null"`
	Note       *string         `gorm:"column:note"`
	Location   *string         `gorm:"column:location"`
	Price      int64           `gorm:"column:price;not null;default:0"`
	Amount     int64           `gorm:"column:amount;not null;default:0"`
	IsFound    *bool           `gorm:"column:is_found"`
	IsPrivate  bool            `gorm:"column:is_private;not null;default:false"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// Found reports whether the assistant located the item.
func (l *OrderLine) Found() bool {
	return l != nil && l.IsFound != nil && *l.IsFound
}
