package shares

import (
	"time"

	"github.com/google/uuid"

	"github.com/keranjangku/keranjangku-backend/pkg/db/models"
	"github.com/keranjangku/keranjangku-backend/pkg/enums"
)

// ShareDTO is the API representation of a share grant.
type ShareDTO struct {
	ID         uuid.UUID           `json:"id"`
	BasketID   uuid.UUID           `json:"basket_id"`
	UserID     uuid.UUID           `json:"user_id"`
	ToUserID   uuid.UUID           `json:"to_user_id"`
	ToUsername string              `json:"to_username,omitempty"`
	Status     enums.GeneralStatus `json:"status"`
	Sort       int                 `json:"sort"`
	IsAdmin    bool                `json:"is_admin"`
	IsCanCRUD  bool                `json:"is_can_crud"`
	IsCanBuy   bool                `json:"is_can_buy"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// ToDTO maps a share row to its API shape. username may be empty when the
// caller did not join the users table.
func ToDTO(s *models.Share, username string) ShareDTO {
	return ShareDTO{
		ID:         s.ID,
		BasketID:   s.BasketID,
		UserID:     s.UserID,
		ToUserID:   s.ToUserID,
		ToUsername: username,
		Status:     s.Status,
		Sort:       s.Sort,
		IsAdmin:    s.IsAdmin,
		IsCanCRUD:  s.IsCanCRUD,
		IsCanBuy:   s.IsCanBuy,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}
