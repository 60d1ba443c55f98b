package models

import (
	"time"

	"github.com/google/uuid"
)

// Basket is the root collaborative shopping list. IsOrdered is tri-state:
// nil means no decision yet, true means escalated to a shopping assistant,
// false means the owner shops for themself.
type Basket struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	CompletedByID *uuid.UUID `gorm:"column:completed_by_id;type:uuid"`
	Name          string     `gorm:"column:name;not null;index"`
	Note          *string    `gorm:"column:note"`
	Sort          int        `gorm:"column:sort;not null;default:1;index"`
	CompleteSort  int        `gorm:"column:complete_sort;not null;default:1"`
	CompletedAt   *time.Time `gorm:"column:completed_at"`
	IsComplete    bool       `gorm:"column:is_complete;not null;default:false;index"`
	IsPurchased   bool       `gorm:"column:is_purchased;not null;default:false;index"`
	IsOrdered     *bool      `gorm:"column:is_ordered;index"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// Ordered reports whether the basket has been escalated to an assistant.
func (b *Basket) Ordered() bool {
	return b != nil && b.IsOrdered != nil && *b.IsOrdered
}
