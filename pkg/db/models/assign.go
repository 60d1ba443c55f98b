package models

import (
	"time"

	"github.com/google/uuid"
)

// Assign binds a shopping assistant to an order. One assignment per order;
// its is_ongoing/is_complete flags propagate to the order and basket.
type Assign struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID  `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	CustomerID  uuid.UUID  `gorm:"column:customer_id;type:uuid;not null;index"`
	AssistantID uuid.UUID  `gorm:"column:assistant_id;type:uuid;not null;index"`
	BasketID    uuid.UUID  `gorm:"column:basket_id;type:uuid;not null;index"`
	StartedAt   *time.Time `gorm:"column:started_at"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	IsOngoing   bool       `gorm:"column:is_ongoing;not null;default:false;index"`
	IsComplete  bool       `gorm:"column:is_complete;not null;default:false"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
