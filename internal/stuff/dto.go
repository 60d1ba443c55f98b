package stuff

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
	"github.com/keranjangku/keranjangku-backend/pkg/enums"
)

// StuffDTO is the API representation of a basket line.
type StuffDTO struct {
	ID           uuid.UUID       `json:"id"`
	BasketID     uuid.UUID       `json:"basket_id"`
	UserID       uuid.UUID       `json:"user_id"`
	ProductID    *uuid.UUID      `json:"product_id,omitempty"`
	Name         string          `json:"name"`
	Quantity     decimal.Decimal `json:"quantity"`
	Metric       enums.Metric    `json:"metric"`
	Note         *string         `json:"note,omitempty"`
	Location     *string         `json:"location,omitempty"`
	Sort         int             `json:"sort"`
	DoneAt       *time.Time      `json:"done_at,omitempty"`
	IsDone       bool            `json:"is_done"`
	IsAdditional bool            `json:"is_additional"`
	IsPurchased  bool            `json:"is_purchased"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// StuffPageDTO is a cursor page of basket lines.
type StuffPageDTO struct {
	Items      []StuffDTO `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// ToDTO maps a stuff row to its API shape.
func ToDTO(s *models.Stuff) StuffDTO {
	return StuffDTO{
		ID:           s.ID,
		BasketID:     s.BasketID,
		UserID:       s.UserID,
		ProductID:    s.ProductID,
		Name:         s.Name,
		Quantity:     s.Quantity,
		Metric:       s.Metric,
		Note:         s.Note,
		Location:     s.Location,
		Sort:         s.Sort,
		DoneAt:       s.DoneAt,
		IsDone:       s.IsDone,
		IsAdditional: s.IsAdditional,
		IsPurchased:  s.IsPurchased,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}
