package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/keranjangku/keranjangku-backend/pkg/enums"
)

// BasketUpdatedEvent reflects any mutation to a basket's lifecycle flags.
type BasketUpdatedEvent struct {
	BasketID    uuid.UUID `json:"basket_id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	IsComplete  bool      `json:"is_complete"`
	IsPurchased bool      `json:"is_purchased"`
	IsOrdered   *bool     `json:"is_ordered,omitempty"`
}

// BasketCompletedEvent is emitted when a basket is marked complete.
type BasketCompletedEvent struct {
	BasketID      uuid.UUID `json:"basket_id"`
	OwnerID       uuid.UUID `json:"owner_id"`
	CompletedByID uuid.UUID `json:"completed_by_id"`
	CompletedAt   time.Time `json:"completed_at"`
}

// ShareChangedEvent covers create, update and delete of a share grant.
type ShareChangedEvent struct {
	ShareID   uuid.UUID           `json:"share_id"`
	BasketID  uuid.UUID           `json:"basket_id"`
	ToUserID  uuid.UUID           `json:"to_user_id"`
	Status    enums.GeneralStatus `json:"status"`
	IsAdmin   bool                `json:"is_admin"`
	IsCanCRUD bool                `json:"is_can_crud"`
	IsCanBuy  bool                `json:"is_can_buy"`
}

// StuffChangedEvent covers create, update and delete of a stuff line.
type StuffChangedEvent struct {
	StuffID      uuid.UUID `json:"stuff_id"`
	BasketID     uuid.UUID `json:"basket_id"`
	Name         string    `json:"name"`
	IsAdditional bool      `json:"is_additional"`
	IsPurchased  bool      `json:"is_purchased"`
}

// PurchaseRecordedEvent is emitted when a purchased-stuff row is written.
type PurchaseRecordedEvent struct {
	PurchasedID      uuid.UUID `json:"purchased_id"`
	PurchasedStuffID uuid.UUID `json:"purchased_stuff_id"`
	BasketID         uuid.UUID `json:"basket_id"`
	StuffID          uuid.UUID `json:"stuff_id"`
	IsFound          *bool     `json:"is_found,omitempty"`
	Price            int64     `json:"price"`
	Amount           int64     `json:"amount"`
}

// PurchaseRevertedEvent is emitted when a purchase is rolled back.
type PurchaseRevertedEvent struct {
	PurchasedID uuid.UUID `json:"purchased_id"`
	BasketID    uuid.UUID `json:"basket_id"`
	UserID      uuid.UUID `json:"user_id"`
}

// OrderCreatedEvent signals a basket escalated for assistant fulfillment.
type OrderCreatedEvent struct {
	OrderID    uuid.UUID `json:"order_id"`
	Number     string    `json:"number"`
	BasketID   uuid.UUID `json:"basket_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	LineCount  int       `json:"line_count"`
}

// OrderCanceledEvent is emitted when a waiting order is withdrawn.
type OrderCanceledEvent struct {
	OrderID    uuid.UUID `json:"order_id"`
	BasketID   uuid.UUID `json:"basket_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	CanceledAt time.Time `json:"canceled_at"`
}

// OrderStateChangedEvent reports a status transition on an order.
type OrderStateChangedEvent struct {
	OrderID    uuid.UUID           `json:"order_id"`
	BasketID   uuid.UUID           `json:"basket_id"`
	CustomerID uuid.UUID           `json:"customer_id"`
	Status     enums.GeneralStatus `json:"status"`
	IsOngoing  bool                `json:"is_ongoing"`
	IsComplete bool                `json:"is_complete"`
}

// AssignUpdatedEvent reports assistant assignment progress.
type AssignUpdatedEvent struct {
	AssignID    uuid.UUID `json:"assign_id"`
	OrderID     uuid.UUID `json:"order_id"`
	BasketID    uuid.UUID `json:"basket_id"`
	CustomerID  uuid.UUID `json:"customer_id"`
	AssistantID uuid.UUID `json:"assistant_id"`
	IsOngoing   bool      `json:"is_ongoing"`
	IsComplete  bool      `json:"is_complete"`
}
