package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
	"github.com/keranjangku/keranjangku-backend/pkg/enums"
)

// OrderDTO is the API representation of an order.
type OrderDTO struct {
	ID          uuid.UUID           `json:"id"`
	CustomerID  uuid.UUID           `json:"customer_id"`
	BasketID    uuid.UUID           `json:"basket_id"`
	Number      string              `json:"number"`
	Status      enums.GeneralStatus `json:"status"`
	Note        *string             `json:"note,omitempty"`
	ScheduledAt *time.Time          `json:"scheduled_at,omitempty"`
	IsOngoing   bool                `json:"is_ongoing"`
	IsComplete  bool                `json:"is_complete"`
	Lines       []OrderLineDTO      `json:"lines,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// OrderLineDTO is the API representation of a snapshot line.
type OrderLineDTO struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"order_id"`
	StuffID   uuid.UUID       `json:"stuff_id"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	Metric    enums.Metric    `json:"metric"`
	Note      *string         `json:"note,omitempty"`
	Location  *string         `json:"location,omitempty"`
	Price     int64           `json:"price"`
	Amount    int64           `json:"amount"`
	IsFound   *bool           `json:"is_found,omitempty"`
	IsPrivate bool            `json:"is_private"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AssignDTO is the API representation of an assistant assignment.
type AssignDTO struct {
	ID          uuid.UUID  `json:"id"`
	OrderID     uuid.UUID  `json:"order_id"`
	CustomerID  uuid.UUID  `json:"customer_id"`
	AssistantID uuid.UUID  `json:"assistant_id"`
	BasketID    uuid.UUID  `json:"basket_id"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	IsOngoing   bool       `json:"is_ongoing"`
	IsComplete  bool       `json:"is_complete"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// OrderPageDTO is a cursor page of orders.
type OrderPageDTO struct {
	Items      []OrderDTO `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// ToOrderDTO maps an order row and its lines to the API shape.
func ToOrderDTO(o *models.Order, lines []models.OrderLine) OrderDTO {
	dto := OrderDTO{
		ID:          o.ID,
		CustomerID:  o.CustomerID,
		BasketID:    o.BasketID,
		Number:      o.Number,
		Status:      o.Status,
		Note:        o.Note,
		ScheduledAt: o.ScheduledAt,
		IsOngoing:   o.IsOngoing,
		IsComplete:  o.IsComplete,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
	for i := range lines {
		dto.Lines = append(dto.Lines, ToLineDTO(&lines[i]))
	}
	return dto
}

// ToLineDTO maps an order-line row to the API shape.
func ToLineDTO(l *models.OrderLine) OrderLineDTO {
	return OrderLineDTO{
		ID:        l.ID,
		OrderID:   l.OrderID,
		StuffID:   l.StuffID,
		Name:      l.Name,
		Quantity:  l.Quantity,
		Metric:    l.Metric,
		Note:      l.Note,
		Location:  l.Location,
		Price:     l.Price,
		Amount:    l.Amount,
		IsFound:   l.IsFound,
		IsPrivate: l.IsPrivate,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

// ToAssignDTO maps an assignment row to the API shape.
func ToAssignDTO(a *models.Assign) AssignDTO {
	return AssignDTO{
		ID:          a.ID,
		OrderID:     a.OrderID,
		CustomerID:  a.CustomerID,
		AssistantID: a.AssistantID,
		BasketID:    a.BasketID,
		StartedAt:   a.StartedAt,
		CompletedAt: a.CompletedAt,
		IsOngoing:   a.IsOngoing,
		IsComplete:  a.IsComplete,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}
