package purchases

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
	"github.com/keranjangku/keranjangku-backend/pkg/enums"
)

// PurchasedDTO is the API representation of a shopping session.
type PurchasedDTO struct {
	ID          uuid.UUID           `json:"id"`
	BasketID    uuid.UUID           `json:"basket_id"`
	UserID      uuid.UUID           `json:"user_id"`
	StartedAt   *time.Time          `json:"started_at,omitempty"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
	IsOngoing   bool                `json:"is_ongoing"`
	IsComplete  bool                `json:"is_complete"`
	Items       []PurchasedStuffDTO `json:"items"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// PurchasedStuffDTO is the API representation of a purchase line.
type PurchasedStuffDTO struct {
	ID          uuid.UUID       `json:"id"`
	PurchasedID uuid.UUID       `json:"purchased_id"`
	BasketID    uuid.UUID       `json:"basket_id"`
	UserID      uuid.UUID       `json:"user_id"`
	StuffID     uuid.UUID       `json:"stuff_id"`
	Name        string          `json:"name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Metric      enums.Metric    `json:"metric"`
	Price       int64           `json:"price"`
	Amount      int64           `json:"amount"`
	Note        *string         `json:"note,omitempty"`
	Location    *string         `json:"location,omitempty"`
	IsFound     *bool           `json:"is_found,omitempty"`
	IsPrivate   bool            `json:"is_private"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToSessionDTO maps a purchased row and its lines to the API shape.
func ToSessionDTO(p *models.Purchased, items []models.PurchasedStuff) PurchasedDTO {
	dto := PurchasedDTO{
		ID:          p.ID,
		BasketID:    p.BasketID,
		UserID:      p.UserID,
		StartedAt:   p.StartedAt,
		CompletedAt: p.CompletedAt,
		IsOngoing:   p.IsOngoing,
		IsComplete:  p.IsComplete,
		Items:       make([]PurchasedStuffDTO, 0, len(items)),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	for i := range items {
		dto.Items = append(dto.Items, ToItemDTO(&items[i]))
	}
	return dto
}

// ToItemDTO maps a purchase-line row to the API shape.
func ToItemDTO(ps *models.PurchasedStuff) PurchasedStuffDTO {
	return PurchasedStuffDTO{
		ID:          ps.ID,
		PurchasedID: ps.PurchasedID,
		BasketID:    ps.BasketID,
		UserID:      ps.UserID,
		StuffID:     ps.StuffID,
		Name:        ps.Name,
		Quantity:    ps.Quantity,
		Metric:      ps.Metric,
		Price:       ps.Price,
		Amount:      ps.Amount,
		Note:        ps.Note,
		Location:    ps.Location,
		IsFound:     ps.IsFound,
		IsPrivate:   ps.IsPrivate,
		CreatedAt:   ps.CreatedAt,
		UpdatedAt:   ps.UpdatedAt,
	}
}
