package baskets

import (
	"time"

	"github.com/google/uuid"
)

// BasketDTO is the API representation of a basket row.
type BasketDTO struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	CompletedByID *uuid.UUID `json:"completed_by_id,omitempty"`
	Name          string     `json:"name"`
	Note          *string    `json:"note,omitempty"`
	Sort          int        `json:"sort"`
	CompleteSort  int        `json:"complete_sort"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	IsComplete    bool       `json:"is_complete"`
	IsPurchased   bool       `json:"is_purchased"`
	IsOrdered     *bool      `json:"is_ordered,omitempty"`
	IsShared      bool       `json:"is_shared"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// BasketPageDTO is a cursor page of baskets.
type BasketPageDTO struct {
	Items      []BasketDTO `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
}
